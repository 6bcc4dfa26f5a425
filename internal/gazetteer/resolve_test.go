package gazetteer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Świnica ", "swinica"},
		{"KOŚCIELEC", "koscielec"},
		{"Dolina Pięciu Stawów", "dolina pieciu stawow"},
		{"", ""},
		{"   ", ""},
		{"Rysy", "rysy"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, peak := range Fallback() {
		once := Normalize(peak.Name)
		assert.Equal(t, once, Normalize(once), peak.Name)
	}
}

func TestFallbackIsSortedAndUnique(t *testing.T) {
	peaks := Fallback()
	require.Len(t, peaks, 10)
	assert.Equal(t, "Dolina Pięciu Stawów", peaks[0].Name)
	assert.Equal(t, "Tatry", peaks[len(peaks)-1].Name)

	seen := map[string]bool{}
	for _, p := range peaks {
		key := Normalize(p.Name)
		assert.False(t, seen[key], "duplicate %s", p.Name)
		seen[key] = true
	}
}

func TestDedupeFirstWinsAndDropsEmpty(t *testing.T) {
	peaks := Dedupe([]domain.MountainPeak{
		{Name: "Świnica", Coordinates: domain.LatLng{Lat: 1}},
		{Name: "  "},
		{Name: "swinica", Coordinates: domain.LatLng{Lat: 2}},
		{Name: "Giewont"},
	})
	require.Len(t, peaks, 2)
	assert.Equal(t, "Giewont", peaks[0].Name)
	assert.Equal(t, "Świnica", peaks[1].Name)
	assert.Equal(t, 1.0, peaks[1].Coordinates.Lat)
}

func TestDedupePolishCollation(t *testing.T) {
	peaks := Dedupe([]domain.MountainPeak{
		{Name: "Żółta Turnia"},
		{Name: "Świnica"},
		{Name: "Szpiglasowy Wierch"},
		{Name: "Zawrat"},
	})
	names := make([]string, len(peaks))
	for i, p := range peaks {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Szpiglasowy Wierch", "Świnica", "Zawrat", "Żółta Turnia"}, names)
}

func TestFindByName(t *testing.T) {
	peaks := Fallback()

	got := FindByName("swinica", peaks)
	require.NotNil(t, got)
	assert.Equal(t, "Świnica", got.Name)

	got = FindByName("  KASPROWY ", peaks)
	require.NotNil(t, got)
	assert.Equal(t, "Kasprowy Wierch", got.Name)

	got = FindByName("morskie", peaks)
	require.NotNil(t, got)
	assert.Equal(t, "Morskie Oko", got.Name)

	assert.Nil(t, FindByName("", peaks))
	assert.Nil(t, FindByName("Mont Blanc", peaks))
	assert.Nil(t, FindByName("Zzz Nonexistent Peak", peaks))
	assert.Nil(t, FindByName("Rysy", nil))
}

func TestFindByNamePrefersExactNameOverAlias(t *testing.T) {
	peaks := []domain.MountainPeak{
		{Name: "Kopa", Aliases: []string{"giewont"}},
		{Name: "Giewont"},
	}
	got := FindByName("Giewont", peaks)
	require.NotNil(t, got)
	assert.Equal(t, "Giewont", got.Name)
}

func TestFindByNameDoesNotAliasPeaks(t *testing.T) {
	peaks := Fallback()
	got := FindByName("rysy", peaks)
	require.NotNil(t, got)
	got.Aliases[0] = "changed"
	again := FindByName("rysy", peaks)
	require.NotNil(t, again)
	assert.Equal(t, "rysy", again.Aliases[0])
}

func TestSuggest(t *testing.T) {
	peaks := Fallback()

	got := Suggest("wierch", peaks)
	require.Len(t, got, 1)
	assert.Equal(t, "Kasprowy Wierch", got[0].Name)

	got = Suggest("STAWOW", peaks)
	require.Len(t, got, 1)
	assert.Equal(t, "Dolina Pięciu Stawów", got[0].Name)

	assert.Len(t, Suggest("", peaks), len(peaks))
	assert.Empty(t, Suggest("matterhorn", peaks))
}

func TestSuggestMatchesSubstring(t *testing.T) {
	tests := []struct {
		query   string
		include []string
		exclude []string
	}{
		{"kasp", []string{"Kasprowy Wierch"}, []string{"Giewont"}},
		{"ko", []string{"Kościelec"}, []string{"Rysy"}},
		{"Zzz Nonexistent Peak", nil, []string{"Rysy", "Giewont"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var names []string
			for _, p := range Suggest(tt.query, Fallback()) {
				names = append(names, p.Name)
			}
			for _, want := range tt.include {
				assert.Contains(t, names, want)
			}
			for _, unwanted := range tt.exclude {
				assert.NotContains(t, names, unwanted)
			}
		})
	}
}

func TestSuggestLimit(t *testing.T) {
	var peaks []domain.MountainPeak
	for i := 0; i < 30; i++ {
		peaks = append(peaks, domain.MountainPeak{Name: "Turnia " + string(rune('A'+i))})
	}
	assert.Len(t, Suggest("", peaks), SuggestionLimit)
	assert.Len(t, Suggest("turnia", peaks), SuggestionLimit)
	assert.Equal(t, peaks[:SuggestionLimit][0].Name, Suggest("", peaks)[0].Name)
}
