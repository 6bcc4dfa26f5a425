package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/gazetteer"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/mapview"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/stats"
)

var (
	ErrSessionClosed   = errors.New("session closed")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrUnknownMountain = errors.New("pick a mountain from the suggestions so the map marker is placed correctly")
)

// PeakSource feeds a gazetteer.Cache from the server's gazetteer.
type PeakSource struct {
	client *Client
}

var _ gazetteer.Source = (*PeakSource)(nil)

func NewPeakSource(c *Client) *PeakSource {
	return &PeakSource{client: c}
}

func (s *PeakSource) Fetch(ctx context.Context) ([]domain.MountainPeak, error) {
	return s.client.AllMountains(ctx)
}

// TripDraft is what the user typed into the trip form. Mountain must match a
// gazetteer peak. A non-nil EditID updates that trip instead of creating one.
type TripDraft struct {
	EditID        *uuid.UUID
	Mountain      string
	Date          string
	Distance      *float64
	ElevationGain *float64
	Difficulty    string
	Notes         string
	Image         *ImageFile
}

type Overview struct {
	Trips   []domain.Trip
	Summary domain.TripSummary
	Daily   []domain.DailyAggregate
}

// Session holds one signed-in user's token, trips and gazetteer. Results of
// calls that finish after Close are dropped.
type Session struct {
	client *Client
	gaz    *gazetteer.Cache

	mu     sync.Mutex
	token  string
	user   *domain.User
	trips  []domain.Trip
	peaks  []domain.MountainPeak
	closed bool
}

// NewSession builds a session. A nil cache loads peaks from the server and
// falls back to the built-in list.
func NewSession(c *Client, cache *gazetteer.Cache) *Session {
	if cache == nil {
		cache = gazetteer.NewCache(NewPeakSource(c))
	}
	return &Session{client: c, gaz: cache}
}

// Resume reuses a token from an earlier login.
func (s *Session) Resume(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

func (s *Session) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.token = res.Token
	user := res.User
	s.user = &user
	s.trips = nil
	return &user, nil
}

func (s *Session) Logout(ctx context.Context) error {
	token, err := s.currentToken()
	if err != nil {
		return err
	}
	err = s.client.Logout(ctx, token)
	s.reset()
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

// User is the account from the last Login, or nil.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Load fetches the trips and the gazetteer concurrently.
func (s *Session) Load(ctx context.Context) error {
	token, err := s.currentToken()
	if err != nil {
		return err
	}

	var (
		trips []domain.Trip
		peaks []domain.MountainPeak
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trips, err = s.client.ListTrips(gctx, token)
		return err
	})
	g.Go(func() error {
		peaks = s.gaz.Load(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.trips = trips
	s.peaks = peaks
	return nil
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.token = ""
	s.user = nil
	s.trips = nil
}

func (s *Session) Trips() []domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Trip(nil), s.trips...)
}

func (s *Session) VisibleTrips(difficulty string, order domain.SortOrder) []domain.Trip {
	return stats.VisibleTrips(s.Trips(), difficulty, order)
}

func (s *Session) Stats(difficulty string, order domain.SortOrder) Overview {
	visible := s.VisibleTrips(difficulty, order)
	return Overview{
		Trips:   visible,
		Summary: stats.Summarize(visible),
		Daily:   stats.DailySeries(visible),
	}
}

func (s *Session) MapPoints(ctx context.Context, difficulty string, order domain.SortOrder) ([]domain.MapPoint, domain.MapView) {
	points := mapview.ProjectTrips(s.VisibleTrips(difficulty, order), s.loadedPeaks(ctx))
	return points, mapview.ComputeView(points)
}

// Suggest filters the loaded gazetteer the way the form's autocomplete does.
func (s *Session) Suggest(ctx context.Context, query string) []domain.MountainPeak {
	return gazetteer.Suggest(query, s.loadedPeaks(ctx))
}

// SubmitTrip resolves draft.Mountain to a known peak and sends the trip with
// the canonical peak name as its title. An unknown mountain never reaches the
// network.
func (s *Session) SubmitTrip(ctx context.Context, draft TripDraft) (*domain.Trip, error) {
	peak := gazetteer.FindByName(draft.Mountain, s.loadedPeaks(ctx))
	if peak == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMountain, strings.TrimSpace(draft.Mountain))
	}
	token, err := s.currentToken()
	if err != nil {
		return nil, err
	}

	form := TripForm{
		Title:         peak.Name,
		Location:      domain.DefaultTripLocation,
		Date:          strings.TrimSpace(draft.Date),
		Distance:      draft.Distance,
		ElevationGain: draft.ElevationGain,
		Difficulty:    strings.TrimSpace(draft.Difficulty),
		Notes:         strings.TrimSpace(draft.Notes),
		Image:         draft.Image,
	}

	var trip *domain.Trip
	if draft.EditID != nil {
		trip, err = s.client.UpdateTrip(ctx, token, *draft.EditID, form)
	} else {
		trip, err = s.client.CreateTrip(ctx, token, form)
	}
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.upsert(*trip)
	return trip, nil
}

func (s *Session) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	token, err := s.currentToken()
	if err != nil {
		return err
	}
	if err := s.client.DeleteTrip(ctx, token, id); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	for i := range s.trips {
		if s.trips[i].ID == id {
			s.trips = append(s.trips[:i], s.trips[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Session) loadedPeaks(ctx context.Context) []domain.MountainPeak {
	s.mu.Lock()
	peaks := s.peaks
	s.mu.Unlock()
	if peaks != nil {
		return peaks
	}
	return s.gaz.Load(ctx)
}

// upsert replaces the trip with the same id or prepends it. Caller holds mu.
func (s *Session) upsert(trip domain.Trip) {
	for i := range s.trips {
		if s.trips[i].ID == trip.ID {
			s.trips[i] = trip
			return
		}
	}
	s.trips = append([]domain.Trip{trip}, s.trips...)
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) currentToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	if s.token == "" {
		return "", ErrNotLoggedIn
	}
	return s.token, nil
}

// fail resets the signed-in state on a 401 and passes the error through.
func (s *Session) fail(err error) error {
	if errors.Is(err, ErrUnauthorized) {
		s.reset()
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}
	return err
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.trips = nil
}
