// Package mapview places trips on the map and picks an advisory viewport.
package mapview

import (
	"github.com/golang/geo/s2"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/gazetteer"
)

const (
	EmptyZoom  = 9
	SingleZoom = 11
	FitPadding = 40
)

// ProjectTrips resolves each trip title against peaks. Unresolved trips are
// placed at the Tatra center and flagged.
func ProjectTrips(trips []domain.Trip, peaks []domain.MountainPeak) []domain.MapPoint {
	points := make([]domain.MapPoint, 0, len(trips))
	for _, trip := range trips {
		point := domain.MapPoint{Trip: trip, Coordinates: domain.TatryCenter}
		if peak := gazetteer.FindByName(trip.Title, peaks); peak != nil {
			point.Coordinates = peak.Coordinates
			point.Resolved = true
		}
		points = append(points, point)
	}
	return points
}

// ComputeView centers on the region when there is nothing to show, on the
// point when there is one, and fits the bounding rectangle otherwise.
func ComputeView(points []domain.MapPoint) domain.MapView {
	switch len(points) {
	case 0:
		return domain.MapView{Center: domain.TatryCenter, Zoom: EmptyZoom}
	case 1:
		return domain.MapView{Center: points[0].Coordinates, Zoom: SingleZoom}
	}

	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Coordinates.Lat, p.Coordinates.Lng))
	}
	center := rect.Center()
	return domain.MapView{
		Center: toLatLng(center),
		Zoom:   SingleZoom,
		Bounds: &domain.MapBounds{
			SouthWest: toLatLng(rect.Lo()),
			NorthEast: toLatLng(rect.Hi()),
		},
		PaddingPx: FitPadding,
	}
}

func toLatLng(ll s2.LatLng) domain.LatLng {
	return domain.LatLng{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}
}
