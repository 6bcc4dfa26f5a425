package weather

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenMeteoServer(t *testing.T, geocode, archive string) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.String())
		io.WriteString(w, geocode)
	})
	mux.HandleFunc("/v1/archive", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.String())
		io.WriteString(w, archive)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestOpenMeteoSummarize(t *testing.T) {
	srv, seen := newOpenMeteoServer(t,
		`{"results":[{"name":"Tatra Mountains","latitude":49.17,"longitude":20.08}]}`,
		`{"daily":{"time":["2024-07-14"],"weathercode":[61],"temperature_2m_max":[18.4],"temperature_2m_min":[-1],"precipitation_sum":[2.3]}}`,
	)
	client := NewOpenMeteoClient(OpenMeteoConfig{
		GeocodingURL: srv.URL + "/v1/search",
		ArchiveURL:   srv.URL + "/v1/archive",
		APIKey:       "k3y",
	}, srv.Client())

	got, err := client.Summarize(context.Background(), time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC), "Tatry")
	require.NoError(t, err)
	assert.Equal(t, "Tatra Mountains: Slight rain, -1C to 18.4C, 2.3 mm precipitation", got)

	require.Len(t, *seen, 2)
	assert.Contains(t, (*seen)[0], "name=Tatry")
	assert.Contains(t, (*seen)[0], "count=1")
	assert.Contains(t, (*seen)[1], "start_date=2024-07-14")
	assert.Contains(t, (*seen)[1], "end_date=2024-07-14")
	assert.Contains(t, (*seen)[1], "latitude=49.17")
	assert.Contains(t, (*seen)[1], "timezone=auto")
	assert.Contains(t, (*seen)[1], "apikey=k3y")
}

func TestOpenMeteoSummarizeMissingValues(t *testing.T) {
	srv, _ := newOpenMeteoServer(t,
		`{"results":[{"name":"Rysy","latitude":49.18,"longitude":20.09}]}`,
		`{"daily":{"time":["2024-01-01"],"weathercode":[42],"temperature_2m_max":[null],"temperature_2m_min":[3],"precipitation_sum":[]}}`,
	)
	client := NewOpenMeteoClient(OpenMeteoConfig{
		GeocodingURL: srv.URL + "/v1/search",
		ArchiveURL:   srv.URL + "/v1/archive",
	}, srv.Client())

	got, err := client.Summarize(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Rysy")
	require.NoError(t, err)
	assert.Equal(t, "Rysy: Unknown conditions, temperature n/a, precipitation n/a", got)
}

func TestOpenMeteoSummarizeErrors(t *testing.T) {
	t.Run("no geocoding result", func(t *testing.T) {
		srv, _ := newOpenMeteoServer(t, `{"results":[]}`, `{}`)
		client := NewOpenMeteoClient(OpenMeteoConfig{GeocodingURL: srv.URL + "/v1/search", ArchiveURL: srv.URL + "/v1/archive"}, srv.Client())
		_, err := client.Summarize(context.Background(), time.Now(), "Nowhere")
		assert.True(t, errors.Is(err, ErrPlaceNotFound))
	})

	t.Run("empty archive", func(t *testing.T) {
		srv, _ := newOpenMeteoServer(t, `{"results":[{"name":"Rysy","latitude":1,"longitude":2}]}`, `{"daily":{"time":[]}}`)
		client := NewOpenMeteoClient(OpenMeteoConfig{GeocodingURL: srv.URL + "/v1/search", ArchiveURL: srv.URL + "/v1/archive"}, srv.Client())
		_, err := client.Summarize(context.Background(), time.Now(), "Rysy")
		assert.True(t, errors.Is(err, ErrNoData))
	})

	t.Run("upstream status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		client := NewOpenMeteoClient(OpenMeteoConfig{GeocodingURL: srv.URL, ArchiveURL: srv.URL}, srv.Client())
		_, err := client.Summarize(context.Background(), time.Now(), "Rysy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()
		client := NewOpenMeteoClient(OpenMeteoConfig{GeocodingURL: srv.URL, ArchiveURL: srv.URL, Timeout: 20 * time.Millisecond}, srv.Client())
		start := time.Now()
		_, err := client.Summarize(context.Background(), time.Now(), "Rysy")
		require.Error(t, err)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}

func TestDescribe(t *testing.T) {
	code := func(v float64) *float64 { return &v }
	assert.Equal(t, "Clear sky", Describe(code(0)))
	assert.Equal(t, "Thunderstorm with heavy hail", Describe(code(99)))
	assert.Equal(t, "Unknown conditions", Describe(code(4)))
	assert.Equal(t, "Unknown conditions", Describe(code(61.5)))
	assert.Equal(t, "Unknown conditions", Describe(nil))
}
