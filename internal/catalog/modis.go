package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

const modisFolderLayout = "2006.01.02"

// ModisFiles lists the .hdf granules of a tile in the dated folders of
// root whose date falls in [start, end].
func ModisFiles(root, tile, start, end string) ([]string, error) {
	s, err := time.Parse(utils.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(utils.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	folders, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	files := []string{}
	for _, folder := range folders {
		if !folder.IsDir() {
			continue
		}
		date, err := time.Parse(modisFolderLayout, folder.Name())
		if err != nil || date.Before(s) || date.After(e) {
			continue
		}
		granules, err := os.ReadDir(filepath.Join(root, folder.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", folder.Name(), err)
		}
		for _, g := range granules {
			fields := strings.Split(g.Name(), ".")
			if len(fields) < 3 || fields[len(fields)-1] != "hdf" || fields[2] != tile {
				continue
			}
			files = append(files, filepath.Join(root, folder.Name(), g.Name()))
		}
	}
	return files, nil
}

// DayOfYear formats YYYYMMDD as YYYYDDD.
func DayOfYear(date string) (string, error) {
	t, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d%03d", t.Year(), t.YearDay()), nil
}

// CheckModisName checks that a granule sits in the folder of its own
// product and acquisition day and returns that day as YYYYMMDD.
//
//	.../MOD11A1.006/2018.04.01/MOD11A1.A2018091.h11v04.006.2018092.hdf
func CheckModisName(path string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) < 3 {
		return "", false
	}
	date := strings.ReplaceAll(parts[len(parts)-2], ".", "")
	product, _, _ := strings.Cut(parts[len(parts)-3], ".")
	fields := strings.Split(parts[len(parts)-1], ".")
	if len(fields) < 2 || fields[0] != product || len(fields[1]) < 2 {
		return "", false
	}
	doy, err := DayOfYear(date)
	if err != nil || doy != fields[1][1:] {
		return "", false
	}
	return date, true
}
