package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/media"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/validation"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/weather"
)

var (
	ErrTripValidation       = errors.New("trip validation failed")
	ErrTripNotFound         = errors.New("trip not found")
	ErrImageValidation      = errors.New("image validation failed")
	ErrImageUpload          = errors.New("failed to upload image")
	ErrImageHostUnavailable = errors.New("image hosting is not configured")
)

const (
	defaultTripImageMaxBytes = int64(5 * 1024 * 1024)
	weatherMaxLength         = 120
	defaultWeatherTimeout    = 10 * time.Second
)

var tripDateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

type TripServiceConfig struct {
	Bucket            string
	MaxImageBytes     int64
	ImageProcessor    media.Processor
	ImageMaxDimension int
	WeatherTimeout    time.Duration
	Logger            *zap.Logger
}

type TripImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type TripCreateInput struct {
	Title         string
	Location      *string
	Date          string
	Distance      *float64
	ElevationGain *float64
	Difficulty    *string
	Notes         *string
	Image         *TripImageUpload
}

type TripUpdateInput struct {
	Title         *string
	Location      *string
	Date          *string
	Distance      *float64
	ElevationGain *float64
	Difficulty    *string
	Weather       *string
	Notes         *string
	Image         *TripImageUpload
}

// tripFields carries the per-field rules shared by create and update.
type tripFields struct {
	Title         *string  `json:"title" validate:"omitempty,min=2,max=200"`
	Location      *string  `json:"location" validate:"omitempty,max=200"`
	Distance      *float64 `json:"distance" validate:"omitempty,gte=0"`
	ElevationGain *float64 `json:"elevationGain" validate:"omitempty,gte=0"`
	Difficulty    *string  `json:"difficulty" validate:"omitempty,max=50"`
	Weather       *string  `json:"weather" validate:"omitempty,max=120"`
	Notes         *string  `json:"notes" validate:"omitempty,max=3000"`
}

type TripService struct {
	trips    ports.TripRepository
	storage  ports.ObjectStorage
	weather  weather.Summarizer
	validate *validation.Validator

	bucket            string
	maxImageBytes     int64
	allowedMIMEs      map[string]struct{}
	imageProcessor    media.Processor
	imageMaxDimension int
	weatherTimeout    time.Duration
	logger            *zap.Logger
	now               func() time.Time
}

// NewTripService wires the trip store with optional weather enrichment and
// image hosting. A nil storage makes photo uploads fail with ErrImageHostUnavailable.
func NewTripService(trips ports.TripRepository, storage ports.ObjectStorage, summarizer weather.Summarizer, cfg TripServiceConfig) *TripService {
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultTripImageMaxBytes
	}
	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}
	weatherTimeout := cfg.WeatherTimeout
	if weatherTimeout <= 0 {
		weatherTimeout = defaultWeatherTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mimeSet := make(map[string]struct{}, len(media.AllowedContentTypes))
	for _, mt := range media.AllowedContentTypes {
		mimeSet[mt] = struct{}{}
	}

	return &TripService{
		trips:             trips,
		storage:           storage,
		weather:           summarizer,
		validate:          validation.New(),
		bucket:            strings.TrimSpace(cfg.Bucket),
		maxImageBytes:     maxBytes,
		allowedMIMEs:      mimeSet,
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
		weatherTimeout:    weatherTimeout,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *TripService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	return s.trips.ListByOwner(ctx, ownerID)
}

func (s *TripService) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Trip, error) {
	trip, err := s.trips.GetByOwner(ctx, ownerID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return trip, nil
}

func (s *TripService) Create(ctx context.Context, ownerID uuid.UUID, input TripCreateInput) (*domain.Trip, error) {
	title := strings.TrimSpace(input.Title)
	dateText := strings.TrimSpace(input.Date)
	if title == "" || dateText == "" {
		return nil, fmt.Errorf("%w: Title and date are required", ErrTripValidation)
	}
	date, err := parseTripDate(dateText)
	if err != nil {
		return nil, err
	}

	location := domain.DefaultTripLocation
	if loc := normalizeString(input.Location); loc != nil {
		location = *loc
	}

	fields := tripFields{
		Title:         &title,
		Location:      &location,
		Distance:      input.Distance,
		ElevationGain: input.ElevationGain,
		Difficulty:    normalizeString(input.Difficulty),
		Notes:         normalizeString(input.Notes),
	}
	if err := s.validateFields(fields); err != nil {
		return nil, err
	}
	if err := s.validateImage(input.Image); err != nil {
		return nil, err
	}

	summary := s.weatherSummary(ctx, date, location)

	var (
		imageURL *string
		imageKey string
	)
	if input.Image != nil {
		url, key, err := s.uploadImage(ctx, ownerID, input.Image)
		if err != nil {
			return nil, err
		}
		imageURL, imageKey = &url, key
	}

	trip := &domain.Trip{
		OwnerID:       ownerID,
		Title:         title,
		Location:      location,
		Date:          date,
		Distance:      input.Distance,
		ElevationGain: input.ElevationGain,
		Difficulty:    fields.Difficulty,
		Weather:       &summary,
		Notes:         fields.Notes,
		ImageURL:      imageURL,
	}
	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		s.discardImage(imageKey)
		return nil, err
	}
	s.logger.Info("trip created",
		zap.String("trip_id", created.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.Bool("has_image", imageURL != nil),
	)
	return created, nil
}

// Update applies the present fields of input. Weather is never recomputed.
func (s *TripService) Update(ctx context.Context, ownerID, id uuid.UUID, input TripUpdateInput) (*domain.Trip, error) {
	patch, err := s.buildPatch(input)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() && input.Image == nil {
		return nil, fmt.Errorf("%w: No valid fields provided for update", ErrTripValidation)
	}
	if err := s.validateImage(input.Image); err != nil {
		return nil, err
	}

	var imageKey string
	if input.Image != nil {
		// Confirm ownership before storing a photo nobody could reference.
		if _, err := s.Get(ctx, ownerID, id); err != nil {
			return nil, err
		}
		url, key, err := s.uploadImage(ctx, ownerID, input.Image)
		if err != nil {
			return nil, err
		}
		patch.ImageURL, imageKey = &url, key
	}

	updated, err := s.trips.UpdateByOwner(ctx, ownerID, id, patch)
	if err != nil {
		s.discardImage(imageKey)
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *TripService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.trips.DeleteByOwner(ctx, ownerID, id); err != nil {
		if isNotFound(err) {
			return ErrTripNotFound
		}
		return err
	}
	s.logger.Info("trip deleted", zap.String("trip_id", id.String()), zap.String("owner_id", ownerID.String()))
	return nil
}

func (s *TripService) buildPatch(input TripUpdateInput) (domain.TripPatch, error) {
	var patch domain.TripPatch

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return domain.TripPatch{}, fmt.Errorf("%w: title is required", ErrTripValidation)
		}
		patch.Title = &title
	}
	if input.Location != nil {
		location := strings.TrimSpace(*input.Location)
		if location == "" {
			location = domain.DefaultTripLocation
		}
		patch.Location = &location
	}
	if input.Date != nil {
		date, err := parseTripDate(*input.Date)
		if err != nil {
			return domain.TripPatch{}, err
		}
		patch.Date = &date
	}
	patch.Distance = input.Distance
	patch.ElevationGain = input.ElevationGain
	patch.Difficulty = trimmed(input.Difficulty)
	patch.Weather = trimmed(input.Weather)
	patch.Notes = trimmed(input.Notes)

	fields := tripFields{
		Title:         patch.Title,
		Location:      patch.Location,
		Distance:      patch.Distance,
		ElevationGain: patch.ElevationGain,
		Difficulty:    patch.Difficulty,
		Weather:       patch.Weather,
		Notes:         patch.Notes,
	}
	if err := s.validateFields(fields); err != nil {
		return domain.TripPatch{}, err
	}
	return patch, nil
}

func (s *TripService) validateFields(fields tripFields) error {
	if err := s.validate.Validate(fields); err != nil {
		return fmt.Errorf("%w: %s", ErrTripValidation, err.Error())
	}
	return nil
}

func (s *TripService) validateImage(image *TripImageUpload) error {
	if image == nil {
		return nil
	}
	if image.Reader == nil || image.Size <= 0 {
		return fmt.Errorf("%w: image is empty", ErrImageValidation)
	}
	if image.Size > s.maxImageBytes {
		return fmt.Errorf("%w: Image is too large (max %dMB)", ErrImageValidation, s.maxImageBytes/(1024*1024))
	}
	contentType := media.NormalizeContentType(image.ContentType, image.FileName)
	if _, ok := s.allowedMIMEs[contentType]; !ok {
		return fmt.Errorf("%w: Only JPG, PNG, and WEBP images are allowed", ErrImageValidation)
	}
	image.ContentType = contentType
	return nil
}

// uploadImage stores the photo and returns its URL and object key.
func (s *TripService) uploadImage(ctx context.Context, ownerID uuid.UUID, image *TripImageUpload) (string, string, error) {
	if s.storage == nil {
		return "", "", ErrImageHostUnavailable
	}

	// Read once so the declared type can be checked against the bytes.
	data, err := io.ReadAll(io.LimitReader(image.Reader, s.maxImageBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrImageUpload, err)
	}
	if int64(len(data)) > s.maxImageBytes {
		return "", "", fmt.Errorf("%w: Image is too large (max %dMB)", ErrImageValidation, s.maxImageBytes/(1024*1024))
	}
	if sniffed := media.Sniff(data); sniffed != image.ContentType {
		return "", "", fmt.Errorf("%w: Only JPG, PNG, and WEBP images are allowed", ErrImageValidation)
	}

	reader, size, contentType, err := prepareImageForUpload(ctx, s.imageProcessor, media.Upload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    image.FileName,
		ContentType: image.ContentType,
	}, s.imageMaxDimension, s.logger)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrImageValidation, err)
	}

	now := s.now().UTC()
	objectKey := fmt.Sprintf("trips/%s/%s_%s%s", ownerID.String(), now.Format("20060102T150405Z"), uuid.NewString()[:8], media.Extension(contentType))

	url, err := s.storage.Upload(ctx, s.bucket, objectKey, contentType, reader, size)
	if err != nil {
		s.logger.Error("trip photo upload failed", zap.String("object_key", objectKey), zap.Error(err))
		return "", "", fmt.Errorf("%w: %v", ErrImageUpload, err)
	}
	return url, objectKey, nil
}

// discardImage removes a photo whose trip record was never written. It runs
// detached from the request so a cancelled client does not leave the object behind.
func (s *TripService) discardImage(objectKey string) {
	if objectKey == "" || s.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Remove(ctx, s.bucket, objectKey); err != nil {
		s.logger.Warn("orphaned trip photo not removed", zap.String("object_key", objectKey), zap.Error(err))
	}
}

func (s *TripService) weatherSummary(ctx context.Context, date time.Time, place string) string {
	if s.weather == nil {
		return domain.WeatherUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.weatherTimeout)
	defer cancel()

	summary, err := s.weather.Summarize(ctx, date, place)
	if err != nil {
		s.logger.Warn("historical weather lookup failed",
			zap.String("place", place),
			zap.String("date", date.Format("2006-01-02")),
			zap.Error(err),
		)
		return domain.WeatherUnavailable
	}
	return truncateRunes(summary, weatherMaxLength)
}

func parseTripDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range tripDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date must be a valid calendar date (YYYY-MM-DD)", ErrTripValidation)
}

func normalizeString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// trimmed keeps an explicitly empty value so updates can clear a field.
func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
