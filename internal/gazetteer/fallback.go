package gazetteer

import (
	"context"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

var fallbackPeaks = []domain.MountainPeak{
	{Name: "Rysy", Aliases: []string{"rysy"}, Coordinates: domain.LatLng{Lat: 49.1798, Lng: 20.0886}},
	{Name: "Kościelec", Aliases: []string{"koscielec", "kościelec"}, Coordinates: domain.LatLng{Lat: 49.2337, Lng: 20.0068}},
	{Name: "Kasprowy Wierch", Aliases: []string{"kasprowy", "kasprowy wierch"}, Coordinates: domain.LatLng{Lat: 49.2315, Lng: 19.9811}},
	{Name: "Giewont", Aliases: []string{"giewont"}, Coordinates: domain.LatLng{Lat: 49.2511, Lng: 19.9349}},
	{Name: "Świnica", Aliases: []string{"swinica", "świnica"}, Coordinates: domain.LatLng{Lat: 49.2242, Lng: 20.0039}},
	{Name: "Mnich", Aliases: []string{"mnich"}, Coordinates: domain.LatLng{Lat: 49.1922, Lng: 20.0666}},
	{Name: "Morskie Oko", Aliases: []string{"morskie oko", "morskie"}, Coordinates: domain.LatLng{Lat: 49.2008, Lng: 20.0717}},
	{Name: "Orla Perć", Aliases: []string{"orla perć", "orla"}, Coordinates: domain.LatLng{Lat: 49.2294, Lng: 20.0208}},
	{Name: "Dolina Pięciu Stawów", Aliases: []string{"piec stawow", "pięciu stawów"}, Coordinates: domain.LatLng{Lat: 49.2191, Lng: 20.0343}},
	{Name: "Tatry", Aliases: []string{"tatry", "tatra"}, Coordinates: domain.LatLng{Lat: 49.23, Lng: 20.05}},
}

// Fallback returns the built-in peak list, deduplicated and sorted.
func Fallback() []domain.MountainPeak {
	return Dedupe(fallbackPeaks)
}

// StaticSource serves a fixed list of peaks.
type StaticSource struct {
	Peaks []domain.MountainPeak
}

func (s StaticSource) Fetch(context.Context) ([]domain.MountainPeak, error) {
	return clonePeaks(s.Peaks), nil
}
