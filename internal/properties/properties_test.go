package properties

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataPathsFollowRootPath(t *testing.T) {
	t.Setenv("ROOT_PATH", "/srv/samples")
	t.Setenv("EXTRACTED_PATH", "")

	assert.Equal(t, "/srv/samples", RootPath())
	assert.Equal(t, "/srv/samples/data/extracted", ExtractedPath())
	assert.Equal(t, "/srv/samples/data/preprocessed", PreprocessedPath())
	assert.Equal(t, "/srv/samples/data/lists/crop_index.json", CropIndexFile())
}

func TestExplicitPathOverridesDefault(t *testing.T) {
	t.Setenv("ROOT_PATH", "/srv/samples")
	t.Setenv("PRETRAIN_PATH", "/mnt/pretrain")

	assert.Equal(t, "/mnt/pretrain", PretrainPath())
}

func TestTunablesFallBackWhenUnset(t *testing.T) {
	t.Setenv("WORKERS", "0")
	t.Setenv("CHUNK_SIZE", "250")

	assert.Equal(t, 6, Workers())
	assert.Equal(t, 250, ChunkSize())
	assert.Equal(t, 640, BlockSize())
}

func TestLoadConfigReadsYaml(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("fetch_threshold: 12\n"), 0o644))
	t.Cleanup(func() { viper.Reset(); setDefaults() })

	require.NoError(t, LoadConfig(cfg))
	assert.Equal(t, 12, FetchThreshold())
}

func TestLoadConfigMissingDefaultIsIgnored(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())
	assert.NoError(t, LoadConfig(""))
}

func TestWarnUrlFallsBackToErrorUrl(t *testing.T) {
	t.Setenv("DISCORD_ERROR_NOTIFICATION_URL", "http://errors")
	t.Setenv("DISCORD_WARN_NOTIFICATION_URL", "")

	assert.Equal(t, "http://errors", DiscordWarnNotificationUrl())
}

func TestSourcesSplitsCommaList(t *testing.T) {
	t.Setenv("SOURCES", "landsat,sentinel")
	assert.Equal(t, []string{"landsat", "sentinel"}, Sources())

	t.Setenv("SOURCES", "modis, precip landsat")
	assert.Equal(t, []string{"modis", "precip", "landsat"}, Sources())

	t.Setenv("SOURCES", " , ")
	assert.Equal(t, []string{"landsat"}, Sources())
}
