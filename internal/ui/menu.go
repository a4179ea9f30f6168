package ui

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type menuOption struct {
	title   string
	handler func()
}

func menuOptions() []menuOption {
	return []menuOption{
		{"Extract time series for sample points files", ExtractPoints},
		{"Run a manifest (extract, preprocess, pretrain)", RunManifest},
		{"Draw sample points from a label raster", SamplePoints},
		{"Group a points file by tile", GroupPoints},
		{"Count the pixel values of a raster", CountPixels},
		{"Map the distribution of sample points", MapDistribution},
		{"Inspect a pretrain archive (plot, PCA)", InspectArchive},
		{"Classify a pretrain archive", ClassifyArchive},
		{"Exit the application", func() { fmt.Fprintln(Out, "Exiting..."); os.Exit(0) }},
	}
}

// ShowMenu loops over the main menu until the user exits.
func ShowMenu() {
	options := menuOptions()
	for {
		fmt.Fprintf(Out, "%s===================%s\n", ColorBlue, ColorReset)
		for i, opt := range options {
			fmt.Fprintf(Out, "%s%d. %s%s\n", ColorBlue, i+1, opt.title, ColorReset)
		}
		choice, err := ReadInt("Please enter your choice: ", 1, len(options))
		if err != nil {
			PrintError(err.Error())
			continue
		}
		options[choice-1].handler()
	}
}

// parseInts reads a list of row numbers.
func parseInts(fields []string) ([]int, error) {
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", f)
		}
		out = append(out, v)
	}
	return out, nil
}
