package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/notification"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/ui"
)

var startTime time.Time

var rootCmd = &cobra.Command{
	Use:   "sample-extractor",
	Short: "Crop sample time series extraction and training data preparation",
	Long: `Samples per-point time series from the Landsat, Sentinel-2, MODIS and
precipitation archives, smooths them and packs them into training archives
for the crop type classifier.

Without a subcommand the interactive menu is shown.`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		startTime = time.Now()
		properties.LoadEnv()
		if err := properties.LoadConfig(viper.GetString("config")); err != nil {
			return err
		}
		setLogLevels()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		logrus.Debugf("command %s took %.1fs", cmd.Name(), time.Since(startTime).Seconds())
	},
	Run: func(cmd *cobra.Command, args []string) {
		initCLI()
	},
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// bindFlag exposes a flag through viper under key.
func bindFlag(cmd *cobra.Command, key, flag string, persistent bool) {
	set := cmd.Flags()
	if persistent {
		set = cmd.PersistentFlags()
	}
	if err := viper.BindPFlag(key, set.Lookup(flag)); err != nil {
		logrus.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $ROOT_PATH/config.yaml)")
	bindFlag(rootCmd, "config", "config", true)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log progress")
	bindFlag(rootCmd, "verbose", "verbose", true)
	rootCmd.PersistentFlags().Bool("debug", false, "log everything")
	bindFlag(rootCmd, "debug", "debug", true)
	rootCmd.PersistentFlags().IntP("workers", "w", 6, "worker pool size")
	bindFlag(rootCmd, "workers", "workers", true)
}

// reportPanic prints and forwards a panic with its location and stack.
func reportPanic(r any) {
	pc, file, line, ok := runtime.Caller(3)
	location := "Unknown location"
	if ok {
		location = fmt.Sprintf("%s:%d in %s", file, line, runtime.FuncForPC(pc).Name())
	}
	ui.PrintError(fmt.Sprintf("PANIC: %v", r))
	ui.PrintError("Location: " + location)

	msg := fmt.Sprintf("SAMPLE-EXTRACTOR panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, debug.Stack())
	if err := notification.SendDiscordErrorNotification("", msg); err != nil {
		ui.PrintError("Failed to send notification: " + err.Error())
	}
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			reportPanic(r)
			os.Exit(1)
		}
	}()
	ui.PrintBanner()
	ui.ShowMenu()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			reportPanic(r)
			os.Exit(1)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
