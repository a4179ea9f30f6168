package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/delivery"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/extract"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
)

var extractCmd = &cobra.Command{
	Use:   "extract START END POINTS_FILE...",
	Short: "Extract band time series for sample points files",
	Long: `Extract the time series of every point of the given points files
between START and END (YYYYMMDD). Relative points files are read from the
sample points directory. Results are written in chunks to the extracted
directory.

The programs sampled come from --sources (landsat, sentinel, modis, precip).`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks := make([]extract.Task, 0, len(args)-2)
		for _, f := range args[2:] {
			if !filepath.IsAbs(f) {
				f = filepath.Join(properties.SamplePointsPath(), f)
			}
			tasks = append(tasks, extract.Task{PointsFile: f, Start: args[0], End: args[1]})
		}
		_, err := delivery.RunExtract(cmd.Context(), tasks, sources(cmd))
		return err
	},
}

// sources prefers the --sources flag over the configured programs.
func sources(cmd *cobra.Command) []string {
	if cmd.Flags().Changed("sources") {
		s, _ := cmd.Flags().GetStringSlice("sources")
		return s
	}
	return properties.Sources()
}

var splitCmd = &cobra.Command{
	Use:   "split RESULT_FILE",
	Short: "Re-chunk an extracted result file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunSplit(args[0], viper.GetInt("chunk_size"))
		return err
	},
}

var labelsCmd = &cobra.Command{
	Use:   "labels START END POINTS_FILE OUT",
	Short: "Label points with the Cropland Data Layer class of every year",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunLabels(cmd.Context(), args[2], args[0], args[1], args[3])
		return err
	},
}

func init() {
	rootCmd.AddCommand(extractCmd, splitCmd, labelsCmd)

	extractCmd.Flags().StringSliceP("sources", "s", nil, "programs to sample: landsat, sentinel, modis, precip")
	extractCmd.Flags().Int("fetch-threshold", 5000, "tiles with more points are read in strips")
	bindFlag(extractCmd, "fetch_threshold", "fetch-threshold", false)

	splitCmd.Flags().IntP("chunk-size", "c", 10000, "points per output file")
	bindFlag(splitCmd, "chunk_size", "chunk-size", false)
}
