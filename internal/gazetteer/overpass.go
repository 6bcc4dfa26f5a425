package gazetteer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// BoundingBox is a south/west/north/east rectangle in degrees.
type BoundingBox struct {
	South, West, North, East float64
}

// TatryBBox covers the Polish side of the Tatra range.
var TatryBBox = BoundingBox{South: 49.12, West: 19.7, North: 49.34, East: 20.38}

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source yields raw peaks. The Cache deduplicates and sorts them.
type Source interface {
	Fetch(ctx context.Context) ([]domain.MountainPeak, error)
}

type OverpassSource struct {
	URL    string
	BBox   BoundingBox
	Client HTTPClient
}

func NewOverpassSource(url string, client HTTPClient) *OverpassSource {
	if strings.TrimSpace(url) == "" {
		url = DefaultOverpassURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OverpassSource{URL: url, BBox: TatryBBox, Client: client}
}

// Query renders the Overpass QL for natural=peak nodes inside Poland and the box.
func (s *OverpassSource) Query() string {
	return fmt.Sprintf(`
[out:json][timeout:30];
area["ISO3166-1"="PL"][admin_level=2]->.pl;
(
  node["natural"="peak"](area.pl)(%g,%g,%g,%g);
);
out body;
`, s.BBox.South, s.BBox.West, s.BBox.North, s.BBox.East)
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat  *float64          `json:"lat"`
	Lon  *float64          `json:"lon"`
	Tags map[string]string `json:"tags"`
}

func (s *OverpassSource) Fetch(ctx context.Context) ([]domain.MountainPeak, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, strings.NewReader(s.Query()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("overpass status %d", resp.StatusCode)
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	peaks := make([]domain.MountainPeak, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		name := el.Tags["name"]
		if name == "" || el.Lat == nil || el.Lon == nil {
			continue
		}
		aliases := make([]string, 0, 2)
		for _, key := range []string{"name:pl", "name:en"} {
			if v := el.Tags[key]; v != "" {
				aliases = append(aliases, v)
			}
		}
		peaks = append(peaks, domain.MountainPeak{
			Name:        name,
			Aliases:     aliases,
			Coordinates: domain.LatLng{Lat: *el.Lat, Lng: *el.Lon},
		})
	}
	return peaks, nil
}
