package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/handmeasure/internal/detector"
	"github.com/ayusman/handmeasure/internal/store"
)

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	capturesJSON = false
	capturesLimit = 20

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// withStore writes a config pointing at a fresh history database and
// returns the config path and the database path.
func withStore(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "captures.db")
	configFile := filepath.Join(dir, "handmeasure.yaml")

	body := "store:\n  path: " + dbPath + "\nlog:\n  level: error\n"
	if err := os.WriteFile(configFile, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configFile, dbPath
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "handmeasure "+Version) {
		t.Errorf("output = %q", out)
	}
}

func TestCapturesCommands(t *testing.T) {
	configFile, dbPath := withStore(t)

	out, err := execute(t, "--config", configFile, "captures", "list")
	if err != nil {
		t.Fatalf("captures list error = %v", err)
	}
	if !strings.Contains(out, "No captures recorded.") {
		t.Errorf("empty list output = %q", out)
	}

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	first := &store.Capture{WidthIn: 3.25, HeightIn: 7.5, SizeCategory: 25, Trigger: "auto", ImagePath: "assets/output.jpg", CreatedAt: base}
	second := &store.Capture{WidthIn: 3.6, HeightIn: 8.1, SizeCategory: 30, Trigger: "manual", ImagePath: "assets/output.jpg", CreatedAt: base.Add(time.Hour)}
	for _, c := range []*store.Capture{first, second} {
		if err := st.Captures().Create(c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	st.Close()

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "--config", configFile, "captures", "list")
		if err != nil {
			t.Fatalf("captures list error = %v", err)
		}
		if !strings.Contains(out, first.ID) || !strings.Contains(out, second.ID) || !strings.Contains(out, "3.25") {
			t.Errorf("list output = %q", out)
		}
		if strings.Index(out, second.ID) > strings.Index(out, first.ID) {
			t.Error("list should be newest first")
		}
	})

	t.Run("show latest as json", func(t *testing.T) {
		out, err := execute(t, "--config", configFile, "captures", "show", "latest", "--json")
		if err != nil {
			t.Fatalf("captures show error = %v", err)
		}
		var got store.Capture
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		if got.ID != second.ID || got.SizeCategory != 30 {
			t.Errorf("show latest = %+v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		out, err := execute(t, "--config", configFile, "captures", "delete", first.ID)
		if err != nil {
			t.Fatalf("captures delete error = %v", err)
		}
		if !strings.Contains(out, "Deleted "+first.ID) {
			t.Errorf("delete output = %q", out)
		}

		if _, err := execute(t, "--config", configFile, "captures", "delete", first.ID); err == nil {
			t.Error("deleting twice should fail")
		}
		if _, err := execute(t, "--config", configFile, "captures", "show", first.ID); err == nil {
			t.Error("showing a deleted capture should fail")
		}
	})
}

func TestCaptures_InvalidConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configFile, []byte("measurement:\n  box_width_px: -5\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := execute(t, "--config", configFile, "captures", "list"); err == nil {
		t.Error("an invalid config should fail before the command runs")
	}
}

func TestMeasure_BadStorePathFailsFirst(t *testing.T) {
	configFile, _ := withStore(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	missingScript := filepath.Join(t.TempDir(), "missing.py")

	_, err := execute(t, "--config", configFile, "measure",
		"--store", filepath.Join(blocker, "captures.db"),
		"--detector-script", missingScript)
	if err == nil {
		t.Fatal("measure should fail with an unusable store path")
	}
	if errors.Is(err, detector.ErrScriptNotFound) {
		t.Errorf("error = %v; the store should be opened before the detector", err)
	}
	if !strings.Contains(err.Error(), "database directory") {
		t.Errorf("error = %v, want a database directory failure", err)
	}
}

func TestFindWebDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// The package directory has no web/ folder.
	if dir := findWebDir(); dir != "" {
		t.Errorf("findWebDir() = %q, want empty", dir)
	}
}
