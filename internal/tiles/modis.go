package tiles

import (
	"fmt"
	"math"
)

const (
	// sphere radius of the MODIS sinusoidal projection, in metres
	modisRadius = 6371007.181
	// width of one of the 36x18 tiles, in metres
	modisTileSize = 1111950.5197665
	modisXMin     = -20015109.354
	modisYMax     = 10007554.677
)

// ModisTile returns the hHHvVV tile of a WGS84 point.
func ModisTile(lat, lon float64) string {
	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180
	x := modisRadius * lonRad * math.Cos(latRad)
	y := modisRadius * latRad
	h := int(math.Floor((x - modisXMin) / modisTileSize))
	v := int(math.Floor((modisYMax - y) / modisTileSize))
	h = min(max(h, 0), 35)
	v = min(max(v, 0), 17)
	return fmt.Sprintf("h%02dv%02d", h, v)
}
