package delivery

import (
	"fmt"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/catalog"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
)

// RunCatalogLandsat lists the Landsat SR scenes of the path/rows in a year.
// An empty out writes the configured Landsat list.
func RunCatalogLandsat(prs []string, year, out string) ([]string, error) {
	r := newRun("catalog landsat")
	if out == "" {
		out = properties.LandsatListFile()
	}
	scenes, err := catalog.FindLandsat(properties.ArchiveRoot(), prs, year)
	if err != nil {
		return nil, r.fail(err)
	}
	return scenes, saveCatalog(r, out, scenes, len(prs))
}

func RunCatalogSentinel(tileIDs []string, year, level, out string) ([]string, error) {
	r := newRun("catalog sentinel")
	if out == "" {
		out = properties.SentinelListFile()
	}
	if level == "" {
		level = "L2A"
	}
	safes, err := catalog.FindSentinel(properties.ArchiveRoot(), tileIDs, year, level)
	if err != nil {
		return nil, r.fail(err)
	}
	return safes, saveCatalog(r, out, safes, len(tileIDs))
}

// RunCatalogQA pairs each path/row with a pixel_qa raster from a scene
// list.
func RunCatalogQA(sceneList string, prs []string, out string) ([][2]string, error) {
	r := newRun("catalog qa")
	scenes, err := catalog.LoadList(sceneList)
	if err != nil {
		return nil, r.fail(err)
	}
	pairs, err := catalog.FindLandsatQA(properties.ArchiveRoot(), scenes, prs)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := writeJSON(out, pairs); err != nil {
		return nil, r.fail(err)
	}
	failures := []error{}
	if len(pairs) < len(prs) {
		failures = append(failures, fmt.Errorf("%d path/rows without pixel_qa", len(prs)-len(pairs)))
	}
	return pairs, r.finish(len(prs), failures, fmt.Sprintf("%d qa rasters listed in %s", len(pairs), out))
}

func saveCatalog(r *run, out string, entries []string, searched int) error {
	if len(entries) == 0 {
		return r.fail(fmt.Errorf("%w for %d search keys", catalog.ErrNoFiles, searched))
	}
	if err := catalog.SaveList(out, entries); err != nil {
		return r.fail(err)
	}
	return r.finish(1, nil, fmt.Sprintf("%d entries listed in %s", len(entries), out))
}
