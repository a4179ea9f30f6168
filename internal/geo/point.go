package geo

import (
	"fmt"
	"strconv"
	"strings"
)

type LatLon struct {
	Lat float64 `json:"lat" csv:"lat"`
	Lon float64 `json:"lon" csv:"lon"`
}

func (p LatLon) Key() string { return PointKey(p.Lat, p.Lon) }

// PointKey identifies a sample location across every source.
func PointKey(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}

func ParseKey(key string) (LatLon, error) {
	lat, lon, ok := strings.Cut(key, ",")
	if !ok {
		return LatLon{}, fmt.Errorf("invalid point key %q", key)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return LatLon{}, fmt.Errorf("invalid latitude in %q: %w", key, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return LatLon{}, fmt.Errorf("invalid longitude in %q: %w", key, err)
	}
	return LatLon{Lat: la, Lon: lo}, nil
}

// Unique drops repeated points, keeping first occurrences.
func Unique(points []LatLon) []LatLon {
	seen := make(map[string]struct{}, len(points))
	out := make([]LatLon, 0, len(points))
	for _, p := range points {
		k := p.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
