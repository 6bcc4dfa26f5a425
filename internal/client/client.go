// Package client talks to the logbook HTTP API and applies the checks the
// browser form performs before a trip is submitted.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

const DefaultBaseURL = "http://localhost:5000"

var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response. A 401 also matches ErrUnauthorized.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api responded with status %d", e.Status)
	}
	return fmt.Sprintf("api responded with status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	http    HTTPClient
}

func New(baseURL string, httpClient HTTPClient) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type AuthResponse struct {
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

// ImageFile is a photo attached to a trip form.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// TripForm is sent as multipart/form-data. Empty strings and nil numbers are
// left out of the request.
type TripForm struct {
	Title         string
	Location      string
	Date          string
	Distance      *float64
	ElevationGain *float64
	Difficulty    string
	Notes         string
	Image         *ImageFile
}

type tripEnvelope struct {
	Trip *domain.Trip `json:"trip"`
}

type tripList struct {
	Trips []domain.Trip `json:"trips"`
}

type mountainList struct {
	Mountains []domain.MountainPeak `json:"mountains"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// ListTrips returns the caller's trips, newest first.
func (c *Client) ListTrips(ctx context.Context, token string) ([]domain.Trip, error) {
	var out tripList
	if err := c.doJSON(ctx, http.MethodGet, "/api/trips", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Trips == nil {
		out.Trips = []domain.Trip{}
	}
	return out.Trips, nil
}

func (c *Client) CreateTrip(ctx context.Context, token string, form TripForm) (*domain.Trip, error) {
	return c.sendTrip(ctx, http.MethodPost, "/api/trips", token, form)
}

func (c *Client) UpdateTrip(ctx context.Context, token string, id uuid.UUID, form TripForm) (*domain.Trip, error) {
	return c.sendTrip(ctx, http.MethodPut, "/api/trips/"+id.String(), token, form)
}

func (c *Client) DeleteTrip(ctx context.Context, token string, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/trips/"+id.String(), token, nil, nil)
}

// Mountains returns gazetteer suggestions for query.
func (c *Client) Mountains(ctx context.Context, query string) ([]domain.MountainPeak, error) {
	q := url.Values{}
	q.Set("q", query)
	var out mountainList
	if err := c.doJSON(ctx, http.MethodGet, "/api/mountains?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Mountains, nil
}

// AllMountains returns the server's whole gazetteer.
func (c *Client) AllMountains(ctx context.Context) ([]domain.MountainPeak, error) {
	var out mountainList
	if err := c.doJSON(ctx, http.MethodGet, "/api/mountains/all", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Mountains, nil
}

func (c *Client) sendTrip(ctx context.Context, method, path, token string, form TripForm) (*domain.Trip, error) {
	body, contentType, err := encodeTripForm(form)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var out tripEnvelope
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.Trip == nil {
		return nil, errors.New("api response carried no trip")
	}
	return out.Trip, nil
}

func encodeTripForm(form TripForm) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ key, value string }{
		{"title", form.Title},
		{"location", form.Location},
		{"date", form.Date},
		{"distance", formatOptional(form.Distance)},
		{"elevationGain", formatOptional(form.ElevationGain)},
		{"difficulty", form.Difficulty},
		{"notes", form.Notes},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", err
		}
	}

	if img := form.Image; img != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, img.Name))
		contentType := img.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(img.Data)
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
