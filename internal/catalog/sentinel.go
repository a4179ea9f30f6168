package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

var s2BandSuffixes = []string{"_B02_20m", "_B03_20m", "_B04_20m", "_B8A_20m", "_B11_20m", "_B12_20m"}

// SentinelTilePath splits an MGRS tile into its archive folders, 15TVG
// becoming 15/T/VG.
func SentinelTilePath(tile string) (string, error) {
	if len(tile) != 5 {
		return "", fmt.Errorf("invalid MGRS tile %q", tile)
	}
	return tile[0:2] + "/" + tile[2:3] + "/" + tile[3:5], nil
}

// SentinelSceneDate reads .../SS/YYYY/M/D/... into YYYYMMDD.
func SentinelSceneDate(scene, tile string) (string, error) {
	if len(tile) != 5 {
		return "", fmt.Errorf("invalid MGRS tile %q", tile)
	}
	parts := strings.Split(filepath.ToSlash(scene), "/")
	for i, p := range parts {
		if p != tile[3:5] {
			continue
		}
		if i+3 >= len(parts) {
			break
		}
		return parts[i+1] + pad2(parts[i+2]) + pad2(parts[i+3]), nil
	}
	return "", fmt.Errorf("no date in scene %q", scene)
}

func pad2(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}

func SentinelScenes(entries, tiles []string, start, end string) (map[string][]string, error) {
	out := make(map[string][]string, len(tiles))
	for _, tile := range tiles {
		needle, err := SentinelTilePath(tile)
		if err != nil {
			return nil, err
		}
		scenes := []string{}
		for _, e := range entries {
			if !strings.Contains(e, needle) {
				continue
			}
			date, err := SentinelSceneDate(e, tile)
			if err != nil {
				continue
			}
			if start <= date && date <= end {
				scenes = append(scenes, e)
			}
		}
		out[tile] = scenes
	}
	return out, nil
}

// SentinelBandFiles finds the six 20 m bands inside a SAFE directory.
func SentinelBandFiles(safe string) (map[string]string, error) {
	jp2s, err := filepath.Glob(filepath.Join(safe, "GRANULE", "*", "IMG_DATA", "R20m", "*.jp2"))
	if err != nil {
		return nil, err
	}
	bands := make(map[string]string, len(s2BandSuffixes))
	for i, suffix := range s2BandSuffixes {
		for _, f := range jp2s {
			if strings.Contains(filepath.Base(f), suffix) {
				bands[series.SentinelBand(series.ReflectanceSuffixes[i])] = f
				break
			}
		}
		if _, ok := bands[series.SentinelBand(series.ReflectanceSuffixes[i])]; !ok {
			return nil, fmt.Errorf("%w: band %s missing in %s", ErrNoFiles, suffix, safe)
		}
	}
	return bands, nil
}

// SentinelCloudMask returns the cloud.img matching a SAFE scene. The mask
// folder mirrors the scene folder under Sentinel2_sr/cloudmask/sentinel/
// and is only trusted when it holds exactly four entries.
func SentinelCloudMask(safe string) (string, error) {
	dir, _, _ := strings.Cut(filepath.ToSlash(safe), "/S2")
	dir = strings.Replace(dir, "Sentinel2_sr/", "Sentinel2_sr/cloudmask/sentinel/", 1)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: cloud mask folder %s: %v", ErrNoFiles, dir, err)
	}
	mask := filepath.Join(dir, "cloud.img")
	if len(entries) != 4 || !fileExists(mask) {
		return "", fmt.Errorf("%w: incomplete cloud mask folder %s", ErrNoFiles, dir)
	}
	return mask, nil
}
