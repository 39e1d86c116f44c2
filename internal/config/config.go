// Package config loads the measuring tool's settings from defaults, an
// optional YAML file and HANDMEASURE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/handmeasure/internal/capture"
	"github.com/ayusman/handmeasure/internal/detector"
	"github.com/ayusman/handmeasure/internal/display"
	"github.com/ayusman/handmeasure/internal/measure"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HANDMEASURE_"

// DefaultStorePath keeps the capture history next to the saved frame.
const DefaultStorePath = "assets/captures.db"

type Config struct {
	Camera      CameraConfig      `yaml:"camera"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Detector    DetectorConfig    `yaml:"detector"`
	Capture     CaptureConfig     `yaml:"capture"`
	Display     DisplayConfig     `yaml:"display"`
	Store       StoreConfig       `yaml:"store"`
	Server      ServerConfig      `yaml:"server"`
	Hook        HookConfig        `yaml:"hook"`
	Log         LogConfig         `yaml:"log"`
}

type CameraConfig struct {
	Device int `yaml:"device" validate:"gte=0"`
	Width  int `yaml:"width" validate:"gte=0"`
	Height int `yaml:"height" validate:"gte=0"`
	FPS    int `yaml:"fps" validate:"gte=0"`
}

type MeasurementConfig struct {
	ReferenceCM      float64 `yaml:"reference_cm" validate:"gt=0"`
	BoxWidthPx       int     `yaml:"box_width_px" validate:"gt=0"`
	MarginRatio      float64 `yaml:"margin_ratio" validate:"gte=0,lt=0.5"`
	DistThresholdCM  float64 `yaml:"dist_threshold_cm" validate:"gt=0"`
	CountdownSeconds float64 `yaml:"countdown_seconds" validate:"gt=0"`
	WidthAdjustIn    float64 `yaml:"width_adjust_in"`
	HeightAdjustIn   float64 `yaml:"height_adjust_in"`
}

type DetectorConfig struct {
	Script          string  `yaml:"script"`
	MaxHands        int     `yaml:"max_hands" validate:"gte=1"`
	MinConfidence   float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
	MinTrackingConf float64 `yaml:"min_tracking_conf" validate:"gte=0,lte=1"`
}

type CaptureConfig struct {
	SavePath   string `yaml:"save_path" validate:"required"`
	SaveRaw    bool   `yaml:"save_raw"`
	CaptureKey string `yaml:"capture_key" validate:"printascii,len=1"`
}

type DisplayConfig struct {
	WindowName string `yaml:"window_name" validate:"required"`
	Headless   bool   `yaml:"headless"`
}

type StoreConfig struct {
	// Path of the capture history database; empty disables history.
	Path string `yaml:"path"`
}

type ServerConfig struct {
	// Addr enables the preview server when set, e.g. ":8090".
	Addr string `yaml:"addr"`
}

type HookConfig struct {
	Executable string        `yaml:"executable"`
	Timeout    time.Duration `yaml:"timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File  string `yaml:"file"`
}

// Default returns the stock configuration: camera 0, a 225px guide box
// standing for 20cm, 1.6cm proximity and a 2 second countdown.
func Default() *Config {
	gate := measure.DefaultGateConfig()
	det := detector.DefaultConfig()

	return &Config{
		Camera: CameraConfig{Device: capture.DefaultDeviceID},
		Measurement: MeasurementConfig{
			ReferenceCM:      gate.Calibration.ReferenceCM,
			BoxWidthPx:       gate.Calibration.BoxWidthPx,
			MarginRatio:      gate.MarginRatio,
			DistThresholdCM:  gate.ThresholdCM,
			CountdownSeconds: gate.Countdown.Seconds(),
			WidthAdjustIn:    gate.Adjust.WidthIn,
			HeightAdjustIn:   gate.Adjust.HeightIn,
		},
		Detector: DetectorConfig{
			MaxHands:        det.MaxHands,
			MinConfidence:   det.MinConfidence,
			MinTrackingConf: det.MinTrackingConf,
		},
		Capture: CaptureConfig{
			SavePath:   capture.DefaultSavePath,
			CaptureKey: string(rune(gate.CaptureKey)),
		},
		Display: DisplayConfig{WindowName: display.DefaultWindowName},
		Store:   StoreConfig{Path: DefaultStorePath},
		Hook:    HookConfig{Timeout: 5 * time.Second},
		Log:     LogConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist) and environment overrides. A
// .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && err == nil {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = fmt.Errorf("%s%s: %w", EnvPrefix, key, perr)
				return
			}
			*dst = n
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && err == nil {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				err = fmt.Errorf("%s%s: %w", EnvPrefix, key, perr)
				return
			}
			*dst = f
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && err == nil {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				err = fmt.Errorf("%s%s: %w", EnvPrefix, key, perr)
				return
			}
			*dst = b
		}
	}

	setInt("CAMERA_DEVICE", &c.Camera.Device)
	setInt("CAMERA_WIDTH", &c.Camera.Width)
	setInt("CAMERA_HEIGHT", &c.Camera.Height)
	setFloat("REFERENCE_CM", &c.Measurement.ReferenceCM)
	setInt("BOX_WIDTH_PX", &c.Measurement.BoxWidthPx)
	setFloat("COUNTDOWN_SECONDS", &c.Measurement.CountdownSeconds)
	setString("DETECTOR_SCRIPT", &c.Detector.Script)
	setFloat("MIN_CONFIDENCE", &c.Detector.MinConfidence)
	setString("SAVE_PATH", &c.Capture.SavePath)
	setBool("SAVE_RAW", &c.Capture.SaveRaw)
	setBool("HEADLESS", &c.Display.Headless)
	setString("STORE_PATH", &c.Store.Path)
	setString("SERVER_ADDR", &c.Server.Addr)
	setString("HOOK", &c.Hook.Executable)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FILE", &c.Log.File)

	return err
}

// GateConfig converts the measurement section for measure.NewGate.
func (c *Config) GateConfig() measure.GateConfig {
	m := c.Measurement
	key := measure.KeyCaptureC
	if c.Capture.CaptureKey != "" {
		key = int(c.Capture.CaptureKey[0])
	}

	return measure.GateConfig{
		Calibration: measure.Calibration{ReferenceCM: m.ReferenceCM, BoxWidthPx: m.BoxWidthPx},
		MarginRatio: m.MarginRatio,
		ThresholdCM: m.DistThresholdCM,
		Adjust:      measure.Adjustment{WidthIn: m.WidthAdjustIn, HeightIn: m.HeightAdjustIn},
		Countdown:   time.Duration(math.Round(m.CountdownSeconds * float64(time.Second))),
		CaptureKey:  key,
	}
}

// DetectorConfig converts the detector section.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinConfidence,
		MinTrackingConf: c.Detector.MinTrackingConf,
	}
}

// CameraOptions converts the camera section.
func (c *Config) CameraOptions() capture.Options {
	return capture.Options{
		DeviceID: c.Camera.Device,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		FPS:      c.Camera.FPS,
	}
}
