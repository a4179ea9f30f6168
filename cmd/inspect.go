package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/delivery"
)

var distributionCmd = &cobra.Command{
	Use:   "distribution OUT_BASE POINTS_FILE...",
	Short: "Map sample points as a shapefile, GeoJSON and PNG",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunDistribution(args[1:], args[0])
		return err
	},
}

var plotCmd = &cobra.Command{
	Use:   "plot NPZ OUT_PNG ROW...",
	Short: "Chart rows of a pretrain archive",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([]int, 0, len(args)-2)
		for _, a := range args[2:] {
			r, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("invalid row %q: %w", a, err)
			}
			rows = append(rows, r)
		}
		return delivery.RunPlot(args[0], rows, args[1])
	},
}

var (
	pcaComponents int
	pcaPerClass   int
	pcaSeed       int64
)

var pcaCmd = &cobra.Command{
	Use:   "pca NPZ OUT_DIR",
	Short: "Compare class mean curves with their PCA projections",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunPCA(args[0], pcaComponents, pcaPerClass, pcaSeed, args[1])
		return err
	},
}

var diffBands []string

var bandDiffCmd = &cobra.Command{
	Use:   "band-diff RESULTS_A RESULTS_B OUT_DIR",
	Short: "Chart the mean band curves of two extracted result files",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := delivery.RunBandDiff(args[0], args[1], diffBands, args[2])
		return err
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify NPZ OUT_CSV",
	Short: "Send a pretrain archive to the classifier and score the predictions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		accuracy, err := delivery.RunClassify(cmd.Context(), args[0], viper.GetString("classifier_addr"), args[1])
		if err != nil {
			return err
		}
		fmt.Printf("accuracy %.2f%%\n", 100*accuracy)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(distributionCmd, plotCmd, pcaCmd, bandDiffCmd, classifyCmd)

	pcaCmd.Flags().IntVarP(&pcaComponents, "components", "k", 10, "principal components kept")
	pcaCmd.Flags().IntVar(&pcaPerClass, "per-class", 100, "random rows averaged per class")
	pcaCmd.Flags().Int64Var(&pcaSeed, "seed", 0, "random seed")

	bandDiffCmd.Flags().StringSliceVar(&diffBands, "bands",
		[]string{"L_SWIR1", "L_SWIR2", "L_R_band", "L_G_band", "L_B_band", "L_NIR_band"}, "bands to compare")

	classifyCmd.Flags().String("addr", "localhost:50051", "classifier address")
	bindFlag(classifyCmd, "classifier_addr", "addr", false)
}
