package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/gazetteer"
)

func TestProjectTrips(t *testing.T) {
	peaks := gazetteer.Fallback()
	trips := []domain.Trip{
		{Title: "Rysy"},
		{Title: "swinica"},
		{Title: "Mont Blanc"},
	}

	points := ProjectTrips(trips, peaks)
	require.Len(t, points, 3)

	assert.True(t, points[0].Resolved)
	assert.Equal(t, domain.LatLng{Lat: 49.1798, Lng: 20.0886}, points[0].Coordinates)
	assert.True(t, points[1].Resolved)
	assert.Equal(t, domain.LatLng{Lat: 49.2242, Lng: 20.0039}, points[1].Coordinates)
	assert.False(t, points[2].Resolved)
	assert.Equal(t, domain.TatryCenter, points[2].Coordinates)

	assert.Equal(t, "swinica", trips[1].Title)
	assert.Equal(t, "swinica", points[1].Trip.Title)
}

func TestComputeViewEmpty(t *testing.T) {
	view := ComputeView(nil)
	assert.Equal(t, domain.TatryCenter, view.Center)
	assert.Equal(t, EmptyZoom, view.Zoom)
	assert.Nil(t, view.Bounds)
}

func TestComputeViewSingle(t *testing.T) {
	at := domain.LatLng{Lat: 49.2511, Lng: 19.9349}
	view := ComputeView([]domain.MapPoint{{Coordinates: at}})
	assert.Equal(t, at, view.Center)
	assert.Equal(t, SingleZoom, view.Zoom)
	assert.Nil(t, view.Bounds)
}

func TestComputeViewFitsBounds(t *testing.T) {
	points := ProjectTrips([]domain.Trip{{Title: "Rysy"}, {Title: "Giewont"}, {Title: "Kościelec"}}, gazetteer.Fallback())
	view := ComputeView(points)

	require.NotNil(t, view.Bounds)
	assert.Equal(t, FitPadding, view.PaddingPx)
	assert.InDelta(t, 49.1798, view.Bounds.SouthWest.Lat, 1e-9)
	assert.InDelta(t, 19.9349, view.Bounds.SouthWest.Lng, 1e-9)
	assert.InDelta(t, 49.2511, view.Bounds.NorthEast.Lat, 1e-9)
	assert.InDelta(t, 20.0886, view.Bounds.NorthEast.Lng, 1e-9)
	assert.InDelta(t, (49.1798+49.2511)/2, view.Center.Lat, 1e-9)
	assert.InDelta(t, (19.9349+20.0886)/2, view.Center.Lng, 1e-9)

	for _, p := range points {
		assert.GreaterOrEqual(t, p.Coordinates.Lat, view.Bounds.SouthWest.Lat-1e-9)
		assert.LessOrEqual(t, p.Coordinates.Lat, view.Bounds.NorthEast.Lat+1e-9)
		assert.GreaterOrEqual(t, p.Coordinates.Lng, view.Bounds.SouthWest.Lng-1e-9)
		assert.LessOrEqual(t, p.Coordinates.Lng, view.Bounds.NorthEast.Lng+1e-9)
	}
}
