package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTripLocation = "Tatry"
	WeatherUnavailable  = "Weather unavailable"
)

type Trip struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OwnerID       uuid.UUID `db:"owner_id" json:"ownerId"`
	Title         string    `db:"title" json:"title"`
	Location      string    `db:"location" json:"location"`
	Date          time.Time `db:"trip_date" json:"date"`
	Distance      *float64  `db:"distance" json:"distance,omitempty"`
	ElevationGain *float64  `db:"elevation_gain" json:"elevationGain,omitempty"`
	Difficulty    *string   `db:"difficulty" json:"difficulty,omitempty"`
	Weather       *string   `db:"weather" json:"weather,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	ImageURL      *string   `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// DifficultyText returns the raw difficulty or an empty string when unset.
func (t Trip) DifficultyText() string {
	if t.Difficulty == nil {
		return ""
	}
	return *t.Difficulty
}

// TripPatch is a partial update. A nil field is left untouched.
type TripPatch struct {
	Title         *string
	Location      *string
	Date          *time.Time
	Distance      *float64
	ElevationGain *float64
	Difficulty    *string
	Weather       *string
	Notes         *string
	ImageURL      *string
}

func (p TripPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Location == nil &&
		p.Date == nil &&
		p.Distance == nil &&
		p.ElevationGain == nil &&
		p.Difficulty == nil &&
		p.Weather == nil &&
		p.Notes == nil &&
		p.ImageURL == nil
}

// Apply returns a copy of trip with every present patch field written over it.
func (p TripPatch) Apply(trip Trip) Trip {
	if p.Title != nil {
		trip.Title = *p.Title
	}
	if p.Location != nil {
		trip.Location = *p.Location
	}
	if p.Date != nil {
		trip.Date = *p.Date
	}
	if p.Distance != nil {
		v := *p.Distance
		trip.Distance = &v
	}
	if p.ElevationGain != nil {
		v := *p.ElevationGain
		trip.ElevationGain = &v
	}
	if p.Difficulty != nil {
		v := *p.Difficulty
		trip.Difficulty = &v
	}
	if p.Weather != nil {
		v := *p.Weather
		trip.Weather = &v
	}
	if p.Notes != nil {
		v := *p.Notes
		trip.Notes = &v
	}
	if p.ImageURL != nil {
		v := *p.ImageURL
		trip.ImageURL = &v
	}
	return trip
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// ParseSortOrder maps free text to a sort order; anything but "asc" is newest first.
func ParseSortOrder(value string) SortOrder {
	if value == string(SortOrderAsc) {
		return SortOrderAsc
	}
	return SortOrderDesc
}

const DifficultyAll = "all"
