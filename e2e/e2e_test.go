package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmeasure/internal/capture"
	"github.com/ayusman/handmeasure/internal/config"
	"github.com/ayusman/handmeasure/internal/detector"
	"github.com/ayusman/handmeasure/internal/display"
	"github.com/ayusman/handmeasure/internal/logging"
	"github.com/ayusman/handmeasure/internal/measure"
	"github.com/ayusman/handmeasure/internal/server"
	"github.com/ayusman/handmeasure/internal/session"
	"github.com/ayusman/handmeasure/internal/store"
)

func frames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	out := make([]*gocv.Mat, n)
	for i := range out {
		m := gocv.NewMatWithSize(detector.FixtureHeight, detector.FixtureWidth, gocv.MatTypeCV8UC3)
		out[i] = &m
	}
	t.Cleanup(func() {
		for _, m := range out {
			m.Close()
		}
	})
	return out
}

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func TestE2E_MeasureAndReview(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	cfgFile := filepath.Join(tmpDir, "handmeasure.yaml")
	cfgBody := "capture:\n  save_path: " + filepath.Join(tmpDir, "assets", "output.jpg") +
		"\nstore:\n  path: " + filepath.Join(tmpDir, "captures.db") +
		"\nmeasurement:\n  countdown_seconds: 1\n"
	if err := os.WriteFile(cfgFile, []byte(cfgBody), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Output: &logs})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}

	s, err := store.New(cfg.Store.Path)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	hub := server.NewHub()
	ts := httptest.NewServer(server.New(server.Config{Store: s, Hub: hub, Logger: logger}))
	defer ts.Close()
	client := ts.Client()

	// A hand that wanders off once, then holds still in the measuring pose.
	pose := []detector.HandLandmarks{detector.MeasuringPoseLandmarks()}
	script := detector.Repeat(pose, 5)
	script = append(script, nil)
	script = append(script, detector.Repeat(pose, 20)...)

	var console bytes.Buffer
	sess, err := session.New(session.Config{
		Gate:      cfg.GateConfig(),
		SavePath:  cfg.Capture.SavePath,
		Camera:    capture.NewMockCamera(frames(t, 30), false),
		Detector:  detector.NewScriptedDetector(script...),
		Display:   display.NewHeadless(),
		Store:     s,
		Publisher: hub,
		Logger:    logger,
		Console:   &console,
		Now:       (&stepClock{t: time.Now(), step: 100 * time.Millisecond}).Now,
	})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}

	var res session.Result
	t.Run("Measure", func(t *testing.T) {
		res, err = sess.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !res.Captured || res.Trigger != measure.TriggerAuto {
			t.Fatalf("Result = %+v, want auto capture", res)
		}
		// 5 frames, a break, then 11 frames for a one second countdown.
		if res.Frames != 17 {
			t.Errorf("Frames = %d, want 17", res.Frames)
		}
		if _, err := os.Stat(cfg.Capture.SavePath); err != nil {
			t.Errorf("frame not saved: %v", err)
		}
		if !strings.Contains(console.String(), "Hand size score: ") {
			t.Errorf("console = %q", console.String())
		}
		if !strings.Contains(logs.String(), "countdown reset") {
			t.Error("countdown reset should be logged at debug level")
		}
	})

	t.Run("ReviewHistory", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/captures/latest")
		if err != nil {
			t.Fatalf("GET latest error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var got store.Capture
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ID != res.CaptureID || got.SizeCategory != res.SizeCategory || got.Trigger != "auto" {
			t.Errorf("latest = %+v, result = %+v", got, res)
		}
	})

	t.Run("FetchImage", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/captures/" + res.CaptureID + "/image")
		if err != nil {
			t.Fatalf("GET image error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("Content-Type = %q, want image/jpeg", ct)
		}
	})

	t.Run("LastReading", func(t *testing.T) {
		_, reading, ok := hub.Latest()
		if !ok || !reading.Captured || reading.SizeCategory != res.SizeCategory {
			t.Errorf("hub reading = %+v", reading)
		}
	})
}
