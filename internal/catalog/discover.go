package catalog

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// FindLandsat globs the archive for the scenes of every path/row in a
// year. Real-time (RT) scenes are skipped. Paths are returned relative to
// root.
func FindLandsat(root string, prs []string, year string) ([]string, error) {
	found := []string{}
	for _, raw := range prs {
		pr, err := NormalizePR(raw)
		if err != nil {
			return nil, err
		}
		pattern := filepath.Join(root, "*", "landsat_sr", "*", "01", pr[:3], pr[3:], fmt.Sprintf("*_%s_%s*", pr, year))
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		n := 0
		for _, m := range matches {
			rel := Relative(root, m)
			if strings.Contains(rel, "RT") {
				continue
			}
			found = append(found, rel)
			n++
		}
		logrus.Debugf("path/row %s: %d scenes", pr, n)
	}
	sort.Strings(found)
	return found, nil
}

// FindSentinel globs the SAFE products of a processing level (L2A, L1C)
// for the given MGRS tiles or two digit UTM zones.
func FindSentinel(root string, tiles []string, year, level string) ([]string, error) {
	found := []string{}
	for _, tile := range tiles {
		var tileDirs []string
		switch len(tile) {
		case 2:
			tileDirs = []string{tile, "*", "*"}
		case 5:
			tileDirs = []string{tile[:2], tile[2:3], tile[3:]}
		default:
			return nil, fmt.Errorf("invalid tile %q", tile)
		}
		parts := append([]string{root, "*", "Sentinel2_sr", "tiles"}, tileDirs...)
		parts = append(parts, year, "*", "*", fmt.Sprintf("*%s*SAFE", level))
		matches, err := filepath.Glob(filepath.Join(parts...))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			found = append(found, Relative(root, m))
		}
	}
	sort.Strings(found)
	return found, nil
}

// FindLandsatQA picks, for every path/row, the pixel_qa.tif of the first
// scene in the list covering it.
func FindLandsatQA(root string, scenes, prs []string) ([][2]string, error) {
	out := [][2]string{}
	for _, raw := range prs {
		pr, err := NormalizePR(raw)
		if err != nil {
			return nil, err
		}
		scene, ok := FindByToken(scenes, pr)
		if !ok {
			logrus.Warnf("no scene covers path/row %s", pr)
			continue
		}
		qa, err := filepath.Glob(filepath.Join(Resolve(root, scene), "*pixel_qa.tif"))
		if err != nil {
			return nil, err
		}
		if len(qa) == 0 {
			logrus.Warnf("no pixel_qa.tif in %s", scene)
			continue
		}
		out = append(out, [2]string{raw, Relative(root, qa[0])})
	}
	return out, nil
}
