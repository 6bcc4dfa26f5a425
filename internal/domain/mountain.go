package domain

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MountainPeak struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases"`
	Coordinates LatLng   `json:"coordinates"`
}

// TatryCenter is the default map center for the supported region.
var TatryCenter = LatLng{Lat: 49.23, Lng: 20.05}
