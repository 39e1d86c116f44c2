package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// DefaultSavePath is where captured frames are written.
const DefaultSavePath = "assets/output.jpg"

// ErrSaveFailed is returned when a frame cannot be written to disk.
var ErrSaveFailed = errors.New("failed to save frame")

// SaveFrame writes frame to path, replacing any existing file. The parent
// directory is created if needed. The image format follows the file extension.
func SaveFrame(frame *gocv.Mat, path string) error {
	if frame == nil || frame.Empty() {
		return fmt.Errorf("%w: empty frame", ErrSaveFailed)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: create %s: %v", ErrSaveFailed, dir, err)
		}
	}

	if ok := gocv.IMWrite(path, *frame); !ok {
		return fmt.Errorf("%w: write %s", ErrSaveFailed, path)
	}

	return nil
}
