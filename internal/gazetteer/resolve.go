package gazetteer

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

const SuggestionLimit = 20

// Dedupe drops entries whose normalized name is empty or already seen (first
// wins) and returns the rest sorted by display name with Polish collation.
func Dedupe(peaks []domain.MountainPeak) []domain.MountainPeak {
	seen := make(map[string]struct{}, len(peaks))
	out := make([]domain.MountainPeak, 0, len(peaks))
	for _, peak := range peaks {
		key := Normalize(peak.Name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, clonePeak(peak))
	}

	coll := collate.New(language.Polish)
	sort.SliceStable(out, func(i, j int) bool {
		return coll.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// FindByName returns the peak whose normalized name equals the normalized
// query, else the first peak with a matching alias, else nil.
func FindByName(query string, peaks []domain.MountainPeak) *domain.MountainPeak {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	for i := range peaks {
		if Normalize(peaks[i].Name) == q {
			peak := clonePeak(peaks[i])
			return &peak
		}
	}
	for i := range peaks {
		for _, alias := range peaks[i].Aliases {
			if Normalize(alias) == q {
				peak := clonePeak(peaks[i])
				return &peak
			}
		}
	}
	return nil
}

// Suggest returns up to SuggestionLimit peaks whose name or any alias contains
// the normalized query, in list order. An empty query yields the head of the list.
func Suggest(query string, peaks []domain.MountainPeak) []domain.MountainPeak {
	q := Normalize(query)
	out := make([]domain.MountainPeak, 0, SuggestionLimit)
	for _, peak := range peaks {
		if len(out) == SuggestionLimit {
			break
		}
		if q == "" || matches(peak, q) {
			out = append(out, clonePeak(peak))
		}
	}
	return out
}

func matches(peak domain.MountainPeak, q string) bool {
	if strings.Contains(Normalize(peak.Name), q) {
		return true
	}
	for _, alias := range peak.Aliases {
		if strings.Contains(Normalize(alias), q) {
			return true
		}
	}
	return false
}

func clonePeak(peak domain.MountainPeak) domain.MountainPeak {
	if peak.Aliases == nil {
		peak.Aliases = []string{}
		return peak
	}
	peak.Aliases = append([]string(nil), peak.Aliases...)
	return peak
}

func clonePeaks(peaks []domain.MountainPeak) []domain.MountainPeak {
	out := make([]domain.MountainPeak, len(peaks))
	for i, peak := range peaks {
		out[i] = clonePeak(peak)
	}
	return out
}
