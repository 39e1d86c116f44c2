package capture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestSaveFrame(t *testing.T) {
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(0, 128, 255, 0))

	path := filepath.Join(t.TempDir(), "assets", "output.jpg")

	if err := SaveFrame(&frame, path); err != nil {
		t.Fatalf("SaveFrame() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("saved file is empty")
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Cols() != 160 || img.Rows() != 120 {
		t.Errorf("saved image is %dx%d, want 160x120", img.Cols(), img.Rows())
	}
}

func TestSaveFrame_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.jpg")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	frame := gocv.NewMatWithSize(32, 32, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if err := SaveFrame(&frame, path); err != nil {
		t.Fatalf("SaveFrame() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "stale" {
		t.Error("existing file was not overwritten")
	}
}

func TestSaveFrame_Errors(t *testing.T) {
	t.Run("nil frame", func(t *testing.T) {
		err := SaveFrame(nil, filepath.Join(t.TempDir(), "x.jpg"))
		if !errors.Is(err, ErrSaveFailed) {
			t.Errorf("expected ErrSaveFailed, got %v", err)
		}
	})

	t.Run("empty frame", func(t *testing.T) {
		frame := gocv.NewMat()
		defer frame.Close()

		err := SaveFrame(&frame, filepath.Join(t.TempDir(), "x.jpg"))
		if !errors.Is(err, ErrSaveFailed) {
			t.Errorf("expected ErrSaveFailed, got %v", err)
		}
	})

	t.Run("parent is a file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		if err := os.WriteFile(blocker, nil, 0644); err != nil {
			t.Fatal(err)
		}

		frame := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
		defer frame.Close()

		err := SaveFrame(&frame, filepath.Join(blocker, "out.jpg"))
		if !errors.Is(err, ErrSaveFailed) {
			t.Errorf("expected ErrSaveFailed, got %v", err)
		}
	})
}
