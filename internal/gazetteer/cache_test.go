package gazetteer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

type countingSource struct {
	calls atomic.Int32
	delay time.Duration
	peaks []domain.MountainPeak
	err   error
}

func (s *countingSource) Fetch(ctx context.Context) ([]domain.MountainPeak, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.peaks, nil
}

func TestCacheLoadMemoizes(t *testing.T) {
	src := &countingSource{peaks: []domain.MountainPeak{{Name: "Giewont"}, {Name: "Rysy"}, {Name: "giewont"}}}
	cache := NewCache(src)

	first := cache.Load(context.Background())
	second := cache.Load(context.Background())

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestCacheConcurrentFirstLoadsShareOneFetch(t *testing.T) {
	src := &countingSource{delay: 50 * time.Millisecond, peaks: []domain.MountainPeak{{Name: "Rysy"}}}
	cache := NewCache(src)

	var wg sync.WaitGroup
	results := make([][]domain.MountainPeak, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Load(context.Background())
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())
	for _, r := range results {
		require.Len(t, r, 1)
		assert.Equal(t, "Rysy", r[0].Name)
	}
}

func TestCacheFallsBackOnError(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	cache := NewCache(src)

	peaks := cache.Load(context.Background())
	assert.Equal(t, Fallback(), peaks)

	cache.Load(context.Background())
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestCacheFallsBackOnEmptyResult(t *testing.T) {
	cache := NewCache(&countingSource{peaks: []domain.MountainPeak{{Name: " "}}})
	assert.Equal(t, Fallback(), cache.Load(context.Background()))
}

func TestCacheTimeoutFallsBack(t *testing.T) {
	src := &countingSource{delay: time.Second, peaks: []domain.MountainPeak{{Name: "Rysy"}}}
	cache := NewCache(src, WithTimeout(20*time.Millisecond))

	start := time.Now()
	peaks := cache.Load(context.Background())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, Fallback(), peaks)
}

func TestCacheInvalidateRefetches(t *testing.T) {
	src := &countingSource{peaks: []domain.MountainPeak{{Name: "Rysy"}}}
	cache := NewCache(src)

	cache.Load(context.Background())
	cache.Invalidate()
	cache.Load(context.Background())

	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCacheResultIsACopy(t *testing.T) {
	cache := NewCache(&countingSource{peaks: []domain.MountainPeak{{Name: "Rysy", Aliases: []string{"rysy"}}}})
	peaks := cache.Load(context.Background())
	peaks[0].Name = "changed"
	peaks[0].Aliases[0] = "changed"

	again := cache.Load(context.Background())
	assert.Equal(t, "Rysy", again[0].Name)
	assert.Equal(t, "rysy", again[0].Aliases[0])
}

func TestOverpassSourceFetch(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"elements":[
			{"lat":49.1798,"lon":20.0886,"tags":{"name":"Rysy","name:en":"Rysy Peak"}},
			{"lat":49.2,"tags":{"name":"No lon"}},
			{"lat":49.3,"lon":20.1,"tags":{}},
			{"lat":49.25,"lon":19.93,"tags":{"name":"Giewont","name:pl":"Giewont"}}
		]}`)
	}))
	defer srv.Close()

	src := NewOverpassSource(srv.URL, srv.Client())
	peaks, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, peaks, 2)
	assert.Equal(t, "Rysy", peaks[0].Name)
	assert.Equal(t, []string{"Rysy Peak"}, peaks[0].Aliases)
	assert.Equal(t, domain.LatLng{Lat: 49.1798, Lng: 20.0886}, peaks[0].Coordinates)
	assert.Equal(t, []string{"Giewont"}, peaks[1].Aliases)

	assert.True(t, strings.Contains(gotBody, `node["natural"="peak"](area.pl)(49.12,19.7,49.34,20.38);`), gotBody)
}

func TestOverpassSourceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOverpassSource(srv.URL, srv.Client()).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCacheWithOverpassDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	}))
	defer srv.Close()

	cache := NewCache(NewOverpassSource(srv.URL, srv.Client()))
	assert.Equal(t, Fallback(), cache.Load(context.Background()))
}
