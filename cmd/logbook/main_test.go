package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/client"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

func newAPI(t *testing.T, posts *atomic.Int32) *httptest.Server {
	t.Helper()
	easy := "easy"
	distance := 12.5
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/trips", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized: invalid token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"trips": []domain.Trip{{
			ID:         uuid.New(),
			Title:      "Giewont",
			Date:       time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			Difficulty: &easy,
			Distance:   &distance,
		}}})
	})
	mux.HandleFunc("POST /api/trips", func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/mountains/all", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunTrips(t *testing.T) {
	var posts atomic.Int32
	srv := newAPI(t, &posts)
	t.Setenv("LOGBOOK_TOKEN", "tok")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-api", srv.URL, "-token-file", filepath.Join(t.TempDir(), "token"), "trips"}, &out)
	if err != nil {
		t.Fatalf("run trips: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Giewont", "2024-06-15", "easy", "12.5 km", "49.2"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q is missing %q", got, want)
		}
	}
}

func TestRunStats(t *testing.T) {
	var posts atomic.Int32
	srv := newAPI(t, &posts)
	t.Setenv("LOGBOOK_TOKEN", "tok")

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-api", srv.URL, "-token-file", filepath.Join(t.TempDir(), "token"), "stats", "-difficulty", "EASY"}, &out); err != nil {
		t.Fatalf("run stats: %v", err)
	}
	if !strings.Contains(out.String(), "Trips: 1") || !strings.Contains(out.String(), "Average difficulty: Easy") {
		t.Fatalf("unexpected stats output %q", out.String())
	}
}

func TestRunAddRejectsUnknownMountain(t *testing.T) {
	var posts atomic.Int32
	srv := newAPI(t, &posts)
	t.Setenv("LOGBOOK_TOKEN", "tok")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-api", srv.URL, "-token-file", filepath.Join(t.TempDir(), "token"), "add", "-mountain", "Matterhorn", "-date", "2024-06-15"}, &out)
	if !errors.Is(err, client.ErrUnknownMountain) {
		t.Fatalf("expected unknown mountain error, got %v", err)
	}
	if posts.Load() != 0 {
		t.Fatalf("expected no trip request, got %d", posts.Load())
	}
}

func TestRunUnauthorizedAsksForLogin(t *testing.T) {
	var posts atomic.Int32
	srv := newAPI(t, &posts)
	t.Setenv("LOGBOOK_TOKEN", "expired")

	err := run(context.Background(), []string{"-api", srv.URL, "-token-file", filepath.Join(t.TempDir(), "token"), "trips"}, &bytes.Buffer{})
	if !errors.Is(err, client.ErrUnauthorized) || !strings.Contains(err.Error(), "logbook login") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestOptionalFloat(t *testing.T) {
	if v, err := optionalFloat("distance", "  "); err != nil || v != nil {
		t.Fatalf("blank should be absent, got %v %v", v, err)
	}
	if v, err := optionalFloat("distance", "7.25"); err != nil || *v != 7.25 {
		t.Fatalf("unexpected %v %v", v, err)
	}
	if _, err := optionalFloat("distance", "far"); err == nil || err.Error() != "distance must be a number" {
		t.Fatalf("unexpected error %v", err)
	}
}
