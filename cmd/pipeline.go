package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/delivery"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/manifest"
)

var manifestPath string

func loadManifest() (*manifest.Manifest, error) {
	return delivery.LoadManifest(manifestPath)
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Truncate, fill and smooth extracted series for every manifest item",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		_, err = delivery.RunPreprocess(cmd.Context(), m)
		return err
	},
}

var pretrainCmd = &cobra.Command{
	Use:   "pretrain",
	Short: "Combine preprocessed files into train and test archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		_, err = delivery.RunPretrain(cmd.Context(), m)
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the steps a manifest selects",
	Long: `Run the extract section of the manifest, then preprocessing and
pretraining as selected by its state:

	0	preprocess and pretrain
	1	preprocess only
	2	pretrain only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		return delivery.RunManifest(cmd.Context(), m, sources(cmd))
	},
}

var stackWindow, stackPoly int

var stackSGCmd = &cobra.Command{
	Use:   "stack-sg STACK_JSON REF_SOURCE OUT_DIR",
	Short: "Gap fill a dated raster stack with a daily Savitzky-Golay fit",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := delivery.RunStackSG(args[0], args[1], args[2], stackWindow, stackPoly)
		if err != nil {
			return err
		}
		for key, items := range index {
			fmt.Printf("%s: %d rasters\n", key, len(items))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd, pretrainCmd, runCmd, stackSGCmd)
	for _, c := range []*cobra.Command{preprocessCmd, pretrainCmd, runCmd} {
		c.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest yaml (defaults when empty)")
	}
	runCmd.Flags().StringSliceP("sources", "s", nil, "programs to sample for the extract section")

	stackSGCmd.Flags().IntVar(&stackWindow, "window", 13, "Savitzky-Golay window, odd")
	stackSGCmd.Flags().IntVar(&stackPoly, "poly", 1, "Savitzky-Golay polynomial order")
}
