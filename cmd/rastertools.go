package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/delivery"
)

var countCmd = &cobra.Command{
	Use:   "count RASTER OUT_CSV",
	Short: "Count the pixel values of a raster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunCount(args[0], args[1])
		return err
	},
}

var mosaicCmd = &cobra.Command{
	Use:   "mosaic A B OUT",
	Short: "Merge two binary classification rasters into a 0/1/2 raster",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return delivery.RunMosaic(args[0], args[1], args[2])
	},
}

var contourCmd = &cobra.Command{
	Use:   "contour RASTER VALUE MIN_AREA OUT",
	Short: "Keep the shapes of one class whose area reaches MIN_AREA pixels",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return err
		}
		minArea, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return err
		}
		return delivery.RunContour(args[0], value, minArea, args[3])
	},
}

var clipShapefile string

var clipCmd = &cobra.Command{
	Use:   "clip TIF...",
	Short: "Crop classified PP-RR tiles to their WRS2 footprint",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunClip(clipShapefile, args, viper.GetInt("clip_workers"))
		return err
	},
}

func init() {
	rootCmd.AddCommand(countCmd, mosaicCmd, contourCmd, clipCmd)
	clipCmd.Flags().StringVar(&clipShapefile, "shapefile", "", "WRS2 shapefile (default the configured one)")
	clipCmd.Flags().Int("clip-workers", 10, "concurrent clips")
	bindFlag(clipCmd, "clip_workers", "clip-workers", false)
}
