package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/gazetteer"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/mapview"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/stats"
)

var ErrMountainNotFound = errors.New("mountain not found")

// PeakLoader is satisfied by *gazetteer.Cache.
type PeakLoader interface {
	Load(ctx context.Context) []domain.MountainPeak
}

type TripFilter struct {
	Difficulty string
	Sort       domain.SortOrder
}

type TripOverview struct {
	Trips   []domain.Trip           `json:"trips"`
	Summary domain.TripSummary      `json:"summary"`
	Daily   []domain.DailyAggregate `json:"daily"`
}

type TripMap struct {
	Points []domain.MapPoint `json:"points"`
	View   domain.MapView    `json:"view"`
}

type InsightsService struct {
	trips ports.TripRepository
	peaks PeakLoader
}

func NewInsightsService(trips ports.TripRepository, peaks PeakLoader) *InsightsService {
	return &InsightsService{trips: trips, peaks: peaks}
}

func (s *InsightsService) Overview(ctx context.Context, ownerID uuid.UUID, filter TripFilter) (*TripOverview, error) {
	visible, err := s.visible(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	return &TripOverview{
		Trips:   visible,
		Summary: stats.Summarize(visible),
		Daily:   stats.DailySeries(visible),
	}, nil
}

func (s *InsightsService) Map(ctx context.Context, ownerID uuid.UUID, filter TripFilter) (*TripMap, error) {
	visible, err := s.visible(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	points := mapview.ProjectTrips(visible, s.peaks.Load(ctx))
	return &TripMap{Points: points, View: mapview.ComputeView(points)}, nil
}

// Peaks returns the whole gazetteer.
func (s *InsightsService) Peaks(ctx context.Context) []domain.MountainPeak {
	return s.peaks.Load(ctx)
}

func (s *InsightsService) Mountains(ctx context.Context, query string) []domain.MountainPeak {
	return gazetteer.Suggest(query, s.peaks.Load(ctx))
}

func (s *InsightsService) Resolve(ctx context.Context, name string) (*domain.MountainPeak, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrMountainNotFound)
	}
	peak := gazetteer.FindByName(name, s.peaks.Load(ctx))
	if peak == nil {
		return nil, fmt.Errorf("%w: %q is not a known Tatra peak", ErrMountainNotFound, name)
	}
	return peak, nil
}

func (s *InsightsService) visible(ctx context.Context, ownerID uuid.UUID, filter TripFilter) ([]domain.Trip, error) {
	trips, err := s.trips.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return stats.VisibleTrips(trips, filter.Difficulty, filter.Sort), nil
}
