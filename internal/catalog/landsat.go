package catalog

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

var (
	tmBandSuffixes   = []string{"_sr_band1.img", "_sr_band2.img", "_sr_band3.img", "_sr_band4.img", "_sr_band5.img", "_sr_band7.img"}
	olisBandSuffixes = []string{"_sr_band2.img", "_sr_band3.img", "_sr_band4.img", "_sr_band5.img", "_sr_band6.img", "_sr_band7.img"}
)

// NormalizePR turns 26-35, 26/35 or 026035 into the 6 digit PPPRRR form.
func NormalizePR(pr string) (string, error) {
	pr = strings.TrimSpace(pr)
	var path, row string
	switch {
	case strings.ContainsAny(pr, "-/"):
		parts := strings.FieldsFunc(pr, func(r rune) bool { return r == '-' || r == '/' })
		if len(parts) != 2 {
			return "", fmt.Errorf("invalid path/row %q", pr)
		}
		path, row = parts[0], parts[1]
	case len(pr) == 6:
		path, row = pr[:3], pr[3:]
	default:
		return "", fmt.Errorf("invalid path/row %q", pr)
	}
	p, err := strconv.Atoi(path)
	if err != nil {
		return "", fmt.Errorf("invalid path in %q: %w", pr, err)
	}
	r, err := strconv.Atoi(row)
	if err != nil {
		return "", fmt.Errorf("invalid row in %q: %w", pr, err)
	}
	return fmt.Sprintf("%03d%03d", p, r), nil
}

// LandsatSceneDate reads the acquisition date, the fourth field from the
// end of an underscore separated scene path.
func LandsatSceneDate(scene string) (string, error) {
	parts := strings.Split(scene, "_")
	if len(parts) < 4 {
		return "", fmt.Errorf("no date in scene %q", scene)
	}
	return parts[len(parts)-4], nil
}

// LandsatScenes selects, for every tile, the scenes acquired in
// [start, end]. Tiles are PPP-RRR keys.
func LandsatScenes(entries, tiles []string, start, end string) (map[string][]string, error) {
	out := make(map[string][]string, len(tiles))
	for _, tile := range tiles {
		pr, err := NormalizePR(tile)
		if err != nil {
			return nil, err
		}
		needle := "/" + pr[:3] + "/" + pr[3:]
		scenes := []string{}
		for _, e := range entries {
			if !strings.Contains(e, needle) {
				continue
			}
			date, err := LandsatSceneDate(e)
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

// LandsatSatellite is the sensor folder, LT05, LE07 or LC08.
func LandsatSatellite(scene string) string {
	parts := strings.Split(filepath.ToSlash(scene), "/")
	if len(parts) < 5 {
		return ""
	}
	return parts[len(parts)-5]
}

// LandsatFiles locates the six reflectance bands and the pixel_qa file of
// a scene directory. Each file is looked up as .img first, then .tif.
func LandsatFiles(dir string) (map[string]string, string, error) {
	var suffixes []string
	switch sat := LandsatSatellite(dir); sat {
	case "LT05", "LE07":
		suffixes = tmBandSuffixes
	case "LC08":
		suffixes = olisBandSuffixes
	default:
		return nil, "", fmt.Errorf("unsupported satellite %q in %s", sat, dir)
	}

	base := filepath.Join(dir, filepath.Base(dir))
	bands := make(map[string]string, len(suffixes))
	for i, suffix := range suffixes {
		p := base + suffix
		if !fileExists(p) {
			p = strings.TrimSuffix(p, ".img") + ".tif"
		}
		bands[series.LandsatBand(series.ReflectanceSuffixes[i])] = p
	}

	qa := base + "_pixel_qa.img"
	if !fileExists(qa) {
		qa = base + "_pixel_qa.tif"
		if !fileExists(qa) {
			return nil, "", fmt.Errorf("%w: no pixel_qa in %s", ErrNoFiles, dir)
		}
	}
	return bands, qa, nil
}
