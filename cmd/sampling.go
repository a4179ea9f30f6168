package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/delivery"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/tiles"
)

var sampleReq delivery.SampleRequest

var sampleCmd = &cobra.Command{
	Use:   "sample YEAR CROP REGION TILE_RASTER...",
	Short: "Draw random labelled points for every tile",
	Long: `Draw --n random pixels of CROP's class from every tile raster and save
them as YEAR_CROP_REGION_sample_points.json. Tile ids are read from the
raster names (PPP-RRR-...). With --label the label raster is first clipped
and reprojected to each tile raster.`,
	Args: cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", args[0], err)
		}
		req := sampleReq
		req.Year, req.Crop, req.Region = year, args[1], args[2]
		req.Tiles = map[string]string{}
		for _, path := range args[3:] {
			tile, err := tiles.TileFromName(path)
			if err != nil {
				return err
			}
			req.Tiles[tile] = path
		}
		path, err := delivery.RunSample(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var groupCmd = &cobra.Command{
	Use:   "group POINTS OUT",
	Short: "Group a csv or vector points file by WRS2, MGRS and MODIS tile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunGroup(args[0], args[1])
		return err
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd, groupCmd)
	sampleCmd.Flags().IntVar(&sampleReq.N, "n", 1000, "points per tile")
	sampleCmd.Flags().Int64Var(&sampleReq.Seed, "seed", 0, "random seed")
	sampleCmd.Flags().StringVar(&sampleReq.Label, "label", "", "label raster to clip to every tile")
}
