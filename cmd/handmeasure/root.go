package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/handmeasure/internal/config"
	"github.com/ayusman/handmeasure/internal/logging"
)

var (
	configPath string
	logLevel   string

	// cfg and logger are populated before any subcommand runs.
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "handmeasure",
	Short: "Measure hand width and height with a webcam",
	Long: `handmeasure opens the camera and draws a guide box of known real-world width.
Hold your hand inside the box with the fingertip and wrist near its top and
bottom edges; after a short countdown the frame is saved together with the
measured width, height and size score.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}

		logger, err = logging.New(logging.Options{
			Level: cfg.Log.Level,
			File:  cfg.Log.File,
		})
		return err
	},
}

func Execute() {
	// Ctrl+C (SIGINT) or SIGTERM cancels the running session.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "handmeasure.yaml", "YAML config file (skipped if missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}
