package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/service"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/util"
)

const (
	tripImageField     = "image"
	multipartMaxMemory = 8 << 20
)

var errInvalidPayload = errors.New("invalid trip payload")

type TripAPI interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Trip, error)
	Create(ctx context.Context, ownerID uuid.UUID, input service.TripCreateInput) (*domain.Trip, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input service.TripUpdateInput) (*domain.Trip, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type InsightsAPI interface {
	Overview(ctx context.Context, ownerID uuid.UUID, filter service.TripFilter) (*service.TripOverview, error)
	Map(ctx context.Context, ownerID uuid.UUID, filter service.TripFilter) (*service.TripMap, error)
	Peaks(ctx context.Context) []domain.MountainPeak
	Mountains(ctx context.Context, query string) []domain.MountainPeak
	Resolve(ctx context.Context, name string) (*domain.MountainPeak, error)
}

type TripHandler struct {
	trips    TripAPI
	insights InsightsAPI
	logger   *zap.Logger
}

// TripResponse wraps a single trip.
type TripResponse struct {
	Message string       `json:"message,omitempty" example:"Trip created successfully"`
	Trip    *domain.Trip `json:"trip"`
}

// TripListResponse wraps the owner's trips, newest first.
type TripListResponse struct {
	Trips []domain.Trip `json:"trips"`
}

// tripPayload mirrors the writable trip fields. A nil field was not sent.
type tripPayload struct {
	Title         *string  `json:"title"`
	Location      *string  `json:"location"`
	Date          *string  `json:"date"`
	Distance      *float64 `json:"distance"`
	ElevationGain *float64 `json:"elevationGain"`
	Difficulty    *string  `json:"difficulty"`
	Weather       *string  `json:"weather"`
	Notes         *string  `json:"notes"`
}

func RegisterTrips(e *echo.Echo, auth Authenticator, trips TripAPI, insights InsightsAPI, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &TripHandler{trips: trips, insights: insights, logger: logger}

	g := e.Group("/api/trips", RequireAuth(auth))
	g.GET("", h.listTrips)
	g.POST("", h.createTrip)
	g.GET("/stats", h.tripStats)
	g.GET("/map", h.tripMap)
	g.GET("/:id", h.getTrip)
	g.PUT("/:id", h.updateTrip)
	g.DELETE("/:id", h.deleteTrip)
}

// listTrips handles GET /api/trips
func (h *TripHandler) listTrips(c echo.Context) error {
	user, _ := CurrentUser(c)
	trips, err := h.trips.List(c.Request().Context(), user.ID)
	if err != nil {
		h.logger.Error("list trips", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, util.Error("Server error while fetching trips"))
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return c.JSON(http.StatusOK, TripListResponse{Trips: trips})
}

// getTrip handles GET /api/trips/{id}
func (h *TripHandler) getTrip(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("Invalid trip id"))
	}
	trip, err := h.trips.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return h.tripError(c, err, "Server error while fetching trip")
	}
	return c.JSON(http.StatusOK, TripResponse{Trip: trip})
}

// createTrip handles POST /api/trips (multipart with optional "image" file, or JSON)
func (h *TripHandler) createTrip(c echo.Context) error {
	user, _ := CurrentUser(c)
	payload, image, closer, err := parseTripPayload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(detail(err, errInvalidPayload)))
	}
	if closer != nil {
		defer closer.Close()
	}

	input := service.TripCreateInput{
		Location:      payload.Location,
		Distance:      payload.Distance,
		ElevationGain: payload.ElevationGain,
		Difficulty:    payload.Difficulty,
		Notes:         payload.Notes,
		Image:         image,
	}
	if payload.Title != nil {
		input.Title = *payload.Title
	}
	if payload.Date != nil {
		input.Date = *payload.Date
	}

	trip, err := h.trips.Create(c.Request().Context(), user.ID, input)
	if err != nil {
		return h.tripError(c, err, "Server error while creating trip")
	}
	return c.JSON(http.StatusCreated, TripResponse{Message: "Trip created successfully", Trip: trip})
}

// updateTrip handles PUT /api/trips/{id}
func (h *TripHandler) updateTrip(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("Invalid trip id"))
	}
	payload, image, closer, err := parseTripPayload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(detail(err, errInvalidPayload)))
	}
	if closer != nil {
		defer closer.Close()
	}

	trip, err := h.trips.Update(c.Request().Context(), user.ID, id, service.TripUpdateInput{
		Title:         payload.Title,
		Location:      payload.Location,
		Date:          payload.Date,
		Distance:      payload.Distance,
		ElevationGain: payload.ElevationGain,
		Difficulty:    payload.Difficulty,
		Weather:       payload.Weather,
		Notes:         payload.Notes,
		Image:         image,
	})
	if err != nil {
		return h.tripError(c, err, "Server error while updating trip")
	}
	return c.JSON(http.StatusOK, TripResponse{Message: "Trip updated successfully", Trip: trip})
}

// deleteTrip handles DELETE /api/trips/{id}
func (h *TripHandler) deleteTrip(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("Invalid trip id"))
	}
	if err := h.trips.Delete(c.Request().Context(), user.ID, id); err != nil {
		return h.tripError(c, err, "Server error while deleting trip")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Trip deleted successfully"})
}

// tripStats handles GET /api/trips/stats?difficulty=&sort=
func (h *TripHandler) tripStats(c echo.Context) error {
	user, _ := CurrentUser(c)
	overview, err := h.insights.Overview(c.Request().Context(), user.ID, parseTripFilter(c))
	if err != nil {
		h.logger.Error("trip stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, util.Error("Server error while computing stats"))
	}
	return c.JSON(http.StatusOK, overview)
}

// tripMap handles GET /api/trips/map?difficulty=&sort=
func (h *TripHandler) tripMap(c echo.Context) error {
	user, _ := CurrentUser(c)
	result, err := h.insights.Map(c.Request().Context(), user.ID, parseTripFilter(c))
	if err != nil {
		h.logger.Error("trip map", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, util.Error("Server error while building map"))
	}
	return c.JSON(http.StatusOK, result)
}

func (h *TripHandler) tripError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrTripValidation):
		return c.JSON(http.StatusBadRequest, util.Error(detail(err, service.ErrTripValidation)))
	case errors.Is(err, service.ErrImageValidation):
		return c.JSON(http.StatusBadRequest, util.Error(detail(err, service.ErrImageValidation)))
	case errors.Is(err, service.ErrImageUpload):
		return c.JSON(http.StatusBadRequest, util.Error("Failed to upload image"))
	case errors.Is(err, service.ErrImageHostUnavailable):
		return c.JSON(http.StatusServiceUnavailable, util.Error("Image uploads are not available"))
	case errors.Is(err, service.ErrTripNotFound):
		return c.JSON(http.StatusNotFound, util.Error("Trip not found"))
	default:
		h.logger.Error("trip request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}

func parseTripFilter(c echo.Context) service.TripFilter {
	difficulty := strings.TrimSpace(c.QueryParam("difficulty"))
	if difficulty == "" {
		difficulty = domain.DifficultyAll
	}
	return service.TripFilter{
		Difficulty: difficulty,
		Sort:       domain.ParseSortOrder(strings.ToLower(strings.TrimSpace(c.QueryParam("sort")))),
	}
}

// parseTripPayload reads JSON, urlencoded or multipart bodies. The returned
// closer, when non-nil, releases the uploaded file.
func parseTripPayload(c echo.Context) (tripPayload, *service.TripImageUpload, io.Closer, error) {
	var payload tripPayload
	req := c.Request()
	contentType := strings.ToLower(req.Header.Get(echo.HeaderContentType))

	switch {
	case strings.HasPrefix(contentType, echo.MIMEApplicationJSON):
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			return payload, nil, nil, fmt.Errorf("%w: invalid request body", errInvalidPayload)
		}
		return payload, nil, nil, nil
	case strings.HasPrefix(contentType, echo.MIMEMultipartForm):
		if err := req.ParseMultipartForm(multipartMaxMemory); err != nil {
			return payload, nil, nil, fmt.Errorf("%w: Invalid image upload payload", errInvalidPayload)
		}
	default:
		if err := req.ParseForm(); err != nil {
			return payload, nil, nil, fmt.Errorf("%w: invalid request body", errInvalidPayload)
		}
	}

	values := req.PostForm
	if req.MultipartForm != nil {
		values = url.Values(req.MultipartForm.Value)
	}
	payload.Title = formString(values, "title")
	payload.Location = formString(values, "location")
	payload.Date = formString(values, "date")
	payload.Difficulty = formString(values, "difficulty")
	payload.Weather = formString(values, "weather")
	payload.Notes = formString(values, "notes")

	var err error
	if payload.Distance, err = formFloat(values, "distance"); err != nil {
		return payload, nil, nil, err
	}
	if payload.ElevationGain, err = formFloat(values, "elevationGain"); err != nil {
		return payload, nil, nil, err
	}

	if req.MultipartForm == nil {
		return payload, nil, nil, nil
	}
	image, file, err := imageUpload(req.MultipartForm)
	if err != nil {
		return payload, nil, nil, err
	}
	return payload, image, file, nil
}

func imageUpload(form *multipart.Form) (*service.TripImageUpload, multipart.File, error) {
	headers := form.File[tripImageField]
	if len(headers) == 0 {
		return nil, nil, nil
	}
	if len(headers) > 1 {
		return nil, nil, fmt.Errorf("%w: only one image may be attached", errInvalidPayload)
	}
	header := headers[0]
	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: Invalid image upload payload", errInvalidPayload)
	}
	return &service.TripImageUpload{
		Reader:      file,
		Size:        header.Size,
		FileName:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
	}, file, nil
}

func formString(values url.Values, key string) *string {
	vals, ok := values[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// formFloat treats a blank value as absent.
func formFloat(values url.Values, key string) (*float64, error) {
	raw := formString(values, key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", errInvalidPayload, key)
	}
	return &v, nil
}
