package extract

import (
	"sort"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
)

// BlockSort orders points by the raster block they fall in: first by block
// row, then by block column. It is stable, so points sharing a block keep
// their order. Reading in this order touches each JP2 block once.
func BlockSort(points []geo.Located, block int) {
	if block <= 0 {
		return
	}
	sort.SliceStable(points, func(i, j int) bool {
		bi, bj := points[i].Row/block, points[j].Row/block
		if bi != bj {
			return bi < bj
		}
		return points[i].Col/block < points[j].Col/block
	})
}
