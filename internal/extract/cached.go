package extract

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/cache"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/geo"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

type cachedExtractor struct {
	inner TileExtractor
	cache cache.CacheService[series.Results]
}

// Cached memoizes per-tile results keyed by source, tile, period and the
// tile's points. A rerun after a crash only extracts the missing tiles.
func Cached(inner TileExtractor, c cache.CacheService[series.Results]) TileExtractor {
	if c == nil {
		return inner
	}
	return &cachedExtractor{inner: inner, cache: c}
}

func (c *cachedExtractor) Source() string { return c.inner.Source() }

func (c *cachedExtractor) ExtractTile(ctx context.Context, tile string, points []geo.LatLon, start, end string) (series.Results, error) {
	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = p.Key()
	}
	key := c.cache.GenerateKey(c.inner.Source(), tile, start, end, strings.Join(keys, ";"))
	if res, ok := c.cache.Get(key); ok {
		logrus.Debugf("%s tile %s served from cache", c.inner.Source(), tile)
		return res, nil
	}
	res, err := c.inner.ExtractTile(ctx, tile, points, start, end)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, res); err != nil {
		logrus.Warnf("failed to cache %s tile %s: %v", c.inner.Source(), tile, err)
	}
	return res, nil
}
