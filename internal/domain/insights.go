package domain

const AverageDifficultyNone = "N/A"

type TripSummary struct {
	TripCount          int     `json:"tripCount"`
	TotalDistance      float64 `json:"totalDistance"`
	TotalElevationGain float64 `json:"totalElevationGain"`
	AverageDifficulty  string  `json:"averageDifficulty"`
}

type DailyAggregate struct {
	Date            string  `json:"date"`
	Distance        float64 `json:"distance"`
	ElevationGain   float64 `json:"elevationGain"`
	DifficultyScore float64 `json:"difficultyScore"`
}

type MapPoint struct {
	Trip        Trip   `json:"trip"`
	Coordinates LatLng `json:"coordinates"`
	Resolved    bool   `json:"resolved"`
}

type MapBounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

type MapView struct {
	Center    LatLng     `json:"center"`
	Zoom      int        `json:"zoom"`
	Bounds    *MapBounds `json:"bounds,omitempty"`
	PaddingPx int        `json:"paddingPx,omitempty"`
}
