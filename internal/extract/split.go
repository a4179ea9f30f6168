package extract

import (
	"path/filepath"
	"strings"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

// SplitResults re-chunks a result file into <name>_{n}.json files next to
// it. The source and any other file in the directory are left alone.
func SplitResults(path string, size int) ([]string, error) {
	entries, err := series.LoadEntries(path)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return writeEntryChunks(filepath.Dir(path), prefix, entries, size)
}
