package main

import (
	"github.com/spf13/cobra"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/delivery"
)

var (
	catalogOut   string
	catalogLevel string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Build the archive lists the extractors read",
}

var catalogLandsatCmd = &cobra.Command{
	Use:   "landsat YEAR PATH_ROW...",
	Short: "List the Landsat SR scenes of path/rows in a year",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunCatalogLandsat(args[1:], args[0], catalogOut)
		return err
	},
}

var catalogSentinelCmd = &cobra.Command{
	Use:   "sentinel YEAR TILE...",
	Short: "List the Sentinel-2 SAFE products of MGRS tiles or UTM zones in a year",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunCatalogSentinel(args[1:], args[0], catalogLevel, catalogOut)
		return err
	},
}

var catalogQACmd = &cobra.Command{
	Use:   "qa SCENE_LIST OUT PATH_ROW...",
	Short: "Pair path/rows with a pixel_qa raster",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunCatalogQA(args[0], args[2:], args[1])
		return err
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogLandsatCmd, catalogSentinelCmd, catalogQACmd)
	catalogCmd.PersistentFlags().StringVarP(&catalogOut, "out", "o", "", "list file (default the configured list)")
	catalogSentinelCmd.Flags().StringVar(&catalogLevel, "level", "L2A", "processing level")
}
