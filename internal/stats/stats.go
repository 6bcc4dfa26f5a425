// Package stats folds trip lists into the aggregates shown on the dashboard.
// Every function is pure and leaves its input untouched.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

var difficultyLabels = [...]string{domain.AverageDifficultyNone, "Easy", "Medium", "Hard"}

// VisibleTrips filters by difficulty (case-insensitive, "all" or empty keeps
// everything) and stable-sorts by calendar day. Trips on the same day keep
// their input order whatever their time of day.
func VisibleTrips(trips []domain.Trip, difficulty string, order domain.SortOrder) []domain.Trip {
	filter := strings.TrimSpace(difficulty)
	keepAll := filter == "" || strings.EqualFold(filter, domain.DifficultyAll)

	out := make([]domain.Trip, 0, len(trips))
	for _, trip := range trips {
		if keepAll || strings.EqualFold(trip.DifficultyText(), filter) {
			out = append(out, trip)
		}
	}

	asc := order == domain.SortOrderAsc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := dayKey(out[i]), dayKey(out[j])
		if asc {
			return a < b
		}
		return a > b
	})
	return out
}

// Totals is the sum of distance and elevation gain over a trip set.
type Totals struct {
	Distance      float64
	ElevationGain float64
}

func SummaryTotals(trips []domain.Trip) Totals {
	var totals Totals
	for _, trip := range trips {
		totals.Distance += finite(trip.Distance)
		totals.ElevationGain += finite(trip.ElevationGain)
	}
	return totals
}

// DifficultyScore maps easy, medium and hard to 1, 2 and 3. Anything else scores 0.
func DifficultyScore(difficulty string) int {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return 1
	case "medium":
		return 2
	case "hard":
		return 3
	default:
		return 0
	}
}

// AverageDifficulty rounds the mean of non-zero scores half up to a label.
func AverageDifficulty(trips []domain.Trip) string {
	sum, count := 0, 0
	for _, trip := range trips {
		if score := DifficultyScore(trip.DifficultyText()); score > 0 {
			sum += score
			count++
		}
	}
	if count == 0 {
		return domain.AverageDifficultyNone
	}
	idx := int(math.Floor(float64(sum)/float64(count) + 0.5))
	return difficultyLabels[idx]
}

type dayBucket struct {
	distance   float64
	elevation  float64
	scoreSum   int
	scoreCount int
}

// DailySeries groups trips by calendar day and returns one row per day in
// ascending key order. Days without trips are not filled in.
func DailySeries(trips []domain.Trip) []domain.DailyAggregate {
	buckets := make(map[string]*dayBucket)
	for _, trip := range trips {
		key := dayKey(trip)
		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{}
			buckets[key] = b
		}
		b.distance += finite(trip.Distance)
		b.elevation += finite(trip.ElevationGain)
		if score := DifficultyScore(trip.DifficultyText()); score > 0 {
			b.scoreSum += score
			b.scoreCount++
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := make([]domain.DailyAggregate, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		row := domain.DailyAggregate{
			Date:          key,
			Distance:      round2(b.distance),
			ElevationGain: math.Floor(b.elevation + 0.5),
		}
		if b.scoreCount > 0 {
			row.DifficultyScore = round2(float64(b.scoreSum) / float64(b.scoreCount))
		}
		series = append(series, row)
	}
	return series
}

func dayKey(trip domain.Trip) string {
	return trip.Date.Format("2006-01-02")
}

// Summarize bundles the totals, average difficulty and count of trips.
func Summarize(trips []domain.Trip) domain.TripSummary {
	totals := SummaryTotals(trips)
	return domain.TripSummary{
		TripCount:          len(trips),
		TotalDistance:      totals.Distance,
		TotalElevationGain: totals.ElevationGain,
		AverageDifficulty:  AverageDifficulty(trips),
	}
}

func finite(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
