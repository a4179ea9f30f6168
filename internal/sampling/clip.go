package sampling

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/raster"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
)

// Footprint is the WGS84 outline of a raster, built from its four corners.
func Footprint(ds *godal.Dataset) (orb.Polygon, error) {
	info, err := raster.ReadInfo(ds)
	if err != nil {
		return nil, err
	}
	w, h := float64(info.Width), float64(info.Height)
	xs := make([]float64, 0, 4)
	ys := make([]float64, 0, 4)
	for _, c := range [][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}} {
		x, y := info.GeoTransform.PixelToGeo(c[0], c[1])
		xs = append(xs, x)
		ys = append(ys, y)
	}
	proj, err := geo.NewProjectorFromWKT(info.Projection)
	if err != nil {
		return nil, err
	}
	defer proj.Close()
	corners, err := proj.ToLatLon(xs, ys)
	if err != nil {
		return nil, err
	}
	ring := make(orb.Ring, 0, 5)
	for _, c := range corners {
		ring = append(ring, orb.Point{c.Lon, c.Lat})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}, nil
}

// WriteCutline saves a polygon as a single feature GeoJSON file.
func WriteCutline(path string, poly orb.Polygon) error {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(poly))
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode cutline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cutline: %w", err)
	}
	return nil
}

// ClipName is <label>_<tile>.clip.tif.
func ClipName(labelPath, tile string) string {
	base := strings.TrimSuffix(filepath.Base(labelPath), filepath.Ext(labelPath))
	return fmt.Sprintf("%s_%s.clip.tif", base, tile)
}

// ClipToTile cuts the label raster to the footprint of the tile raster and
// reprojects the result to the tile's spatial reference. It returns the
// path of the clipped raster in outDir.
func ClipToTile(tilePath, labelPath, outDir string) (string, error) {
	tile, err := tiles.TileFromName(tilePath)
	if err != nil {
		return "", err
	}
	tileDS, err := raster.Open(tilePath)
	if err != nil {
		return "", err
	}
	defer tileDS.Close()
	poly, err := Footprint(tileDS)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	cutline := filepath.Join(outDir, tile+"_cutline.geojson")
	if err := WriteCutline(cutline, poly); err != nil {
		return "", err
	}
	defer os.Remove(cutline)

	label, err := raster.Open(labelPath)
	if err != nil {
		return "", err
	}
	defer label.Close()

	clipped, err := label.Warp("", []string{
		"-of", "MEM",
		"-cutline", cutline,
		"-crop_to_cutline",
	}, godal.ConfigOption("GDALWARP_IGNORE_BAD_CUTLINE=YES"))
	if err != nil {
		return "", fmt.Errorf("failed to clip %s to %s: %w", filepath.Base(labelPath), tile, err)
	}
	defer clipped.Close()

	out := filepath.Join(outDir, ClipName(labelPath, tile))
	projected, err := clipped.Warp(out, []string{
		"-of", "GTiff",
		"-t_srs", tileDS.Projection(),
		"-r", "near",
	})
	if err != nil {
		return "", fmt.Errorf("failed to reproject clip of %s: %w", tile, err)
	}
	if err := projected.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", out, err)
	}
	logrus.Infof("clipped %s to %s", filepath.Base(labelPath), tile)
	return out, nil
}
