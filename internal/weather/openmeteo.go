// Package weather produces short historical weather summaries for trips.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultArchiveURL   = "https://archive-api.open-meteo.com/v1/archive"
	DefaultTimeout      = 10 * time.Second
)

var (
	ErrPlaceNotFound = errors.New("no coordinates found for place")
	ErrNoData        = errors.New("no historical weather data returned")
)

// Summarizer describes the weather of one day at one place.
type Summarizer interface {
	Summarize(ctx context.Context, date time.Time, place string) (string, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type OpenMeteoConfig struct {
	GeocodingURL string
	ArchiveURL   string
	APIKey       string
	Timeout      time.Duration
}

type OpenMeteoClient struct {
	cfg    OpenMeteoConfig
	client HTTPClient
}

var _ Summarizer = (*OpenMeteoClient)(nil)

func NewOpenMeteoClient(cfg OpenMeteoConfig, client HTTPClient) *OpenMeteoClient {
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = DefaultGeocodingURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenMeteoClient{cfg: cfg, client: client}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type archiveResponse struct {
	Daily *struct {
		Time             []string   `json:"time"`
		WeatherCode      []*float64 `json:"weathercode"`
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// Summarize geocodes place, reads the archive for date and renders
// "<name>: <conditions>, <min>C to <max>C, <p> mm precipitation".
func (c *OpenMeteoClient) Summarize(ctx context.Context, date time.Time, place string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("name", place)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	var geo geocodingResponse
	if err := c.getJSON(ctx, c.cfg.GeocodingURL+"?"+q.Encode(), &geo); err != nil {
		return "", fmt.Errorf("geocode %q: %w", place, err)
	}
	if len(geo.Results) == 0 {
		return "", fmt.Errorf("%w: %s", ErrPlaceNotFound, place)
	}
	hit := geo.Results[0]

	day := date.Format("2006-01-02")
	q = url.Values{}
	q.Set("latitude", formatNumber(hit.Latitude))
	q.Set("longitude", formatNumber(hit.Longitude))
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min,precipitation_sum")
	q.Set("timezone", "auto")
	if c.cfg.APIKey != "" {
		q.Set("apikey", c.cfg.APIKey)
	}

	var archive archiveResponse
	if err := c.getJSON(ctx, c.cfg.ArchiveURL+"?"+q.Encode(), &archive); err != nil {
		return "", fmt.Errorf("archive %s: %w", day, err)
	}
	if archive.Daily == nil || len(archive.Daily.Time) == 0 {
		return "", ErrNoData
	}
	d := archive.Daily

	tempPart := "temperature n/a"
	if minT, maxT := first(d.TemperatureMin), first(d.TemperatureMax); minT != nil && maxT != nil {
		tempPart = fmt.Sprintf("%sC to %sC", formatNumber(*minT), formatNumber(*maxT))
	}
	precipPart := "precipitation n/a"
	if p := first(d.PrecipitationSum); p != nil {
		precipPart = formatNumber(*p) + " mm precipitation"
	}

	return fmt.Sprintf("%s: %s, %s, %s", hit.Name, Describe(first(d.WeatherCode)), tempPart, precipPart), nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("weather api responded with status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func first(values []*float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
