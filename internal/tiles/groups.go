package tiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

// PointGroups is the extractor input: sample points grouped by tile for
// each program.
type PointGroups struct {
	Landsat  map[string][]geo.LatLon `json:"landsat"`
	Sentinel map[string][]geo.LatLon `json:"sentinel"`
	Modis    map[string][]geo.LatLon `json:"modis"`
}

func NewPointGroups() PointGroups {
	return PointGroups{
		Landsat:  map[string][]geo.LatLon{},
		Sentinel: map[string][]geo.LatLon{},
		Modis:    map[string][]geo.LatLon{},
	}
}

// Group assigns every point to its tiles. A nil index skips that program.
func Group(points []geo.LatLon, wrs, mgrs *Index) PointGroups {
	groups := NewPointGroups()
	if wrs == nil {
		logrus.Warn("no WRS2 index loaded, landsat groups left empty")
	}
	if mgrs == nil {
		logrus.Warn("no MGRS index loaded, sentinel groups left empty")
	}
	for _, p := range points {
		if wrs != nil {
			for _, id := range wrs.Lookup(p) {
				groups.Landsat[id] = append(groups.Landsat[id], p)
			}
		}
		if mgrs != nil {
			for _, id := range mgrs.Lookup(p) {
				groups.Sentinel[id] = append(groups.Sentinel[id], p)
			}
		}
		id := ModisTile(p.Lat, p.Lon)
		groups.Modis[id] = append(groups.Modis[id], p)
	}
	return groups
}

// LandsatPoints is the de-duplicated union of the landsat groups, visited
// in tile order.
func (g PointGroups) LandsatPoints() []geo.LatLon {
	all := []geo.LatLon{}
	for _, tile := range utils.GetSortedKeys(g.Landsat, true) {
		all = append(all, g.Landsat[tile]...)
	}
	return geo.Unique(all)
}

// Count is the number of distinct points across all programs.
func (g PointGroups) Count() int {
	all := []geo.LatLon{}
	for _, m := range []map[string][]geo.LatLon{g.Landsat, g.Sentinel, g.Modis} {
		for _, pts := range m {
			all = append(all, pts...)
		}
	}
	return len(geo.Unique(all))
}

func SaveGroups(path string, g PointGroups) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal point groups: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func LoadGroups(path string) (PointGroups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PointGroups{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	g := NewPointGroups()
	if err := json.Unmarshal(data, &g); err != nil {
		return PointGroups{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return g, nil
}

// TileFromName reads the WRS2 tile out of names like 26-35-20180401-cdl.tif
// and returns it zero padded, 026-035.
func TileFromName(name string) (string, error) {
	parts := strings.Split(filepath.Base(name), "-")
	if len(parts) < 2 {
		return "", fmt.Errorf("no path-row in %q", name)
	}
	path, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid path in %q: %w", name, err)
	}
	row, err := strconv.Atoi(strings.TrimSuffix(parts[1], filepath.Ext(parts[1])))
	if err != nil {
		return "", fmt.Errorf("invalid row in %q: %w", name, err)
	}
	return fmt.Sprintf("%03d-%03d", path, row), nil
}
