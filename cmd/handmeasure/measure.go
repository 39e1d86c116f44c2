package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayusman/handmeasure/internal/capture"
	"github.com/ayusman/handmeasure/internal/detector"
	"github.com/ayusman/handmeasure/internal/display"
	"github.com/ayusman/handmeasure/internal/hook"
	"github.com/ayusman/handmeasure/internal/server"
	"github.com/ayusman/handmeasure/internal/session"
	"github.com/ayusman/handmeasure/internal/store"
)

var measureFlags struct {
	camera     int
	savePath   string
	saveRaw    bool
	headless   bool
	listen     string
	storePath  string
	hookPath   string
	script     string
	countdown  float64
	noProgress bool
}

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Open the camera and measure a hand",
	Long: `Open the camera and show the guide box. The frame is saved when the hand has
been centered and close to both box edges for the countdown, or when the
capture key is pressed with a centered hand. ESC quits without saving.`,
	Args: cobra.NoArgs,
	RunE: runMeasure,
}

func init() {
	f := measureCmd.Flags()
	f.IntVar(&measureFlags.camera, "camera", capture.DefaultDeviceID, "camera device index")
	f.StringVarP(&measureFlags.savePath, "output", "o", capture.DefaultSavePath, "where to save the captured frame")
	f.BoolVar(&measureFlags.saveRaw, "raw", false, "save the frame without the overlay")
	f.BoolVar(&measureFlags.headless, "headless", false, "run without a preview window")
	f.StringVar(&measureFlags.listen, "listen", "", "serve the preview API on this address, e.g. :8090")
	f.StringVar(&measureFlags.storePath, "store", "", "capture history database path")
	f.StringVar(&measureFlags.hookPath, "hook", "", "executable to run after each capture")
	f.StringVar(&measureFlags.script, "detector-script", "", "path to the hand landmark script")
	f.Float64Var(&measureFlags.countdown, "countdown", 0, "seconds to hold still before auto capture")
	f.BoolVar(&measureFlags.noProgress, "no-progress", false, "hide the console countdown bar")

	rootCmd.AddCommand(measureCmd)
}

// applyMeasureFlags copies explicitly set flags over the loaded config.
func applyMeasureFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("camera") {
		cfg.Camera.Device = measureFlags.camera
	}
	if f.Changed("output") {
		cfg.Capture.SavePath = measureFlags.savePath
	}
	if f.Changed("raw") {
		cfg.Capture.SaveRaw = measureFlags.saveRaw
	}
	if f.Changed("headless") {
		cfg.Display.Headless = measureFlags.headless
	}
	if f.Changed("listen") {
		cfg.Server.Addr = measureFlags.listen
	}
	if f.Changed("store") {
		cfg.Store.Path = measureFlags.storePath
	}
	if f.Changed("hook") {
		cfg.Hook.Executable = measureFlags.hookPath
	}
	if f.Changed("detector-script") {
		cfg.Detector.Script = measureFlags.script
	}
	if f.Changed("countdown") {
		cfg.Measurement.CountdownSeconds = measureFlags.countdown
	}
	return cfg.Validate()
}

func runMeasure(cmd *cobra.Command, args []string) error {
	if err := applyMeasureFlags(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logger.WithField("component", "cli")

	// The history store opens first so a bad path fails before the
	// detector process and window exist.
	var st *store.Store
	if cfg.Store.Path != "" {
		var err error
		st, err = store.New(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig(), cfg.Detector.Script)
	if err != nil {
		return fmt.Errorf("hand detector unavailable: %w", err)
	}
	log.Info("using MediaPipe hand detection")

	var disp display.Display
	if cfg.Display.Headless {
		disp = display.NewHeadless()
	} else {
		disp = display.NewWindow(cfg.Display.WindowName)
	}

	sc := session.Config{
		Gate:     cfg.GateConfig(),
		SavePath: cfg.Capture.SavePath,
		SaveRaw:  cfg.Capture.SaveRaw,
		Camera:   capture.NewCamera(cfg.CameraOptions()),
		Detector: det,
		Display:  disp,
		Logger:   logger,
		Console:  cmd.OutOrStdout(),
	}
	if st != nil {
		sc.Store = st
	}
	if !measureFlags.noProgress {
		sc.Reporter = session.NewBarReporter(cmd.ErrOrStderr())
	}

	if cfg.Hook.Executable != "" {
		sc.Hook = hook.New(cfg.Hook.Executable, cfg.Hook.Timeout)
	}

	if cfg.Server.Addr != "" {
		hub := server.NewHub()
		sc.Publisher = hub

		srv := server.New(server.Config{
			StaticDir: findWebDir(),
			Store:     sc.Store,
			Hub:       hub,
			Logger:    logger,
		})

		srvCtx, stopServer := context.WithCancel(ctx)
		defer stopServer()
		go func() {
			if err := srv.Run(srvCtx, cfg.Server.Addr); err != nil {
				log.WithError(err).Error("preview server failed")
			}
		}()
	}

	s, err := session.New(sc)
	if err != nil {
		det.Close()
		disp.Close()
		return err
	}

	res, err := s.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted, nothing saved.")
		return nil
	case err != nil:
		return err
	case res.Aborted:
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled, nothing saved.")
	case res.Captured:
		fmt.Fprintf(cmd.OutOrStdout(), "Width: %.2f in  Height: %.2f in\n", res.Measurement.WidthIn, res.Measurement.HeightIn)
	}

	return nil
}

// findWebDir looks for a preview page in "web", "../web" and
// ~/.handmeasure/web and returns the first directory found, or "".
func findWebDir() string {
	candidates := []string{"web", filepath.Join("..", "web")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".handmeasure", "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
