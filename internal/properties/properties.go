package properties

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func init() {
	setDefaults()
}

func setDefaults() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("workers", 6)
	viper.SetDefault("preprocess_workers", 2)
	viper.SetDefault("clip_workers", 10)
	viper.SetDefault("fetch_threshold", 5000)
	viper.SetDefault("chunk_size", 10000)
	viper.SetDefault("block_size", 640)
	viper.SetDefault("classifier_addr", "localhost:50051")
	viper.SetDefault("sources", []string{"landsat"})
}

// LoadEnv loads the first .env file it finds. A missing file is not an error.
func LoadEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{"../../.env", "../.env", ".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			logrus.Debugf("loaded environment from %s", p)
			return
		}
	}
}

// LoadConfig merges an optional yaml config file into viper. An empty path
// falls back to $ROOT_PATH/config.yaml when it exists.
func LoadConfig(cfgFile string) error {
	if cfgFile == "" {
		candidate := filepath.Join(RootPath(), "config.yaml")
		if _, err := os.Stat(candidate); err != nil {
			return nil
		}
		cfgFile = candidate
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}
	logrus.Infof("using config file %s", viper.ConfigFileUsed())
	return nil
}

func RootPath() string {
	if p := viper.GetString("root_path"); p != "" {
		return p
	}
	return "."
}

// ArchiveRoot is prepended to relative archive list entries.
func ArchiveRoot() string {
	if p := viper.GetString("archive_root"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return home
}

func dataPath(key, sub string) string {
	if p := viper.GetString(key); p != "" {
		return p
	}
	return fmt.Sprintf("%s/data/%s", RootPath(), sub)
}

func ExtractedPath() string    { return dataPath("extracted_path", "extracted") }
func IntermediatePath() string { return dataPath("intermediate_path", "intermediate") }
func PreprocessedPath() string { return dataPath("preprocessed_path", "preprocessed") }
func PretrainPath() string     { return dataPath("pretrain_path", "pretrain") }
func SamplePointsPath() string { return dataPath("sample_points_path", "sample_points") }
func ResultPath() string       { return dataPath("result_path", "result") }

func LandsatListFile() string  { return dataPath("landsat_list", "lists/landsat_sr.json") }
func SentinelListFile() string { return dataPath("sentinel_list", "lists/sentinel_sr.json") }
func GPMListFile() string      { return dataPath("gpm_list", "lists/GPM_list.txt") }
func TRMMListFile() string     { return dataPath("trmm_list", "lists/TRMM_list.txt") }
func CDLListFile() string      { return dataPath("cdl_list", "lists/cdl_list.json") }
func CropIndexFile() string    { return dataPath("crop_index", "lists/crop_index.json") }

func WRSShapefile() string  { return dataPath("wrs_shapefile", "tiles/wrs2_descending.shp") }
func MGRSShapefile() string { return dataPath("mgrs_shapefile", "tiles/sentinel2_tiles.shp") }

func MODPath() string {
	if p := viper.GetString("mod_path"); p != "" {
		return p
	}
	return filepath.Join(ArchiveRoot(), "modis", "MOD11A1")
}

func MYDPath() string {
	if p := viper.GetString("myd_path"); p != "" {
		return p
	}
	return filepath.Join(ArchiveRoot(), "modis", "MYD11A1")
}

func Workers() int           { return positive(viper.GetInt("workers"), 6) }
func PreprocessWorkers() int { return positive(viper.GetInt("preprocess_workers"), 2) }
func ClipWorkers() int       { return positive(viper.GetInt("clip_workers"), 10) }
func FetchThreshold() int    { return viper.GetInt("fetch_threshold") }
func ChunkSize() int         { return positive(viper.GetInt("chunk_size"), 10000) }
func BlockSize() int         { return positive(viper.GetInt("block_size"), 640) }
func ClassifierAddr() string { return viper.GetString("classifier_addr") }

// Sources lists the programs the extractor samples, e.g. landsat, sentinel, modis, precip.
// Entries may be separated by commas or whitespace.
func Sources() []string {
	sources := []string{}
	for _, v := range viper.GetStringSlice("sources") {
		sources = append(sources, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})...)
	}
	if len(sources) == 0 {
		return []string{"landsat"}
	}
	return sources
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

type Color struct {
	R, G, B uint8
}

var ColorMap = map[string]Color{
	"Corn":     {255, 211, 0},
	"Cotton":   {255, 37, 37},
	"Rice":     {0, 168, 228},
	"Soybeans": {38, 112, 0},
	"Peanuts":  {112, 168, 0},
	"unknown":  {255, 0, 0},
}

func DiscordErrorNotificationUrl() string {
	return viper.GetString("discord_error_notification_url")
}
func DiscordSuccessNotificationUrl() string {
	return viper.GetString("discord_success_notification_url")
}
func DiscordWarnNotificationUrl() string {
	if u := viper.GetString("discord_warn_notification_url"); u != "" {
		return u
	}
	return DiscordErrorNotificationUrl()
}
