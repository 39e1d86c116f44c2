// Package hook runs an external executable after each capture so results
// can be forwarded to other tools (a shop system, a spreadsheet, a notifier).
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds a hook run when none is configured.
const DefaultTimeout = 5 * time.Second

// ErrRejected is returned when the hook ran but reported failure.
var ErrRejected = errors.New("hook reported failure")

// Request is written as JSON to the hook's stdin.
type Request struct {
	Event        string    `json:"event"`
	CaptureID    string    `json:"capture_id,omitempty"`
	WidthIn      float64   `json:"width_in"`
	HeightIn     float64   `json:"height_in"`
	SizeCategory int       `json:"size_category"`
	Trigger      string    `json:"trigger"`
	ImagePath    string    `json:"image_path"`
	CapturedAt   time.Time `json:"captured_at"`
}

// Response is read as JSON from the hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a configured executable.
type Hook struct {
	executable string
	timeout    time.Duration
}

// New returns a Hook for executable. A zero timeout means DefaultTimeout.
// Paths containing a separator are made absolute against the current
// directory; bare names are left for PATH lookup.
func New(executable string, timeout time.Duration) *Hook {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if strings.ContainsRune(executable, filepath.Separator) && !filepath.IsAbs(executable) {
		if abs, err := filepath.Abs(executable); err == nil {
			executable = abs
		}
	}
	return &Hook{
		executable: executable,
		timeout:    timeout,
	}
}

// Executable returns the configured program path.
func (h *Hook) Executable() string {
	return h.executable
}

// Run executes the hook with req on stdin and parses its stdout as a Response.
// The process is killed when the timeout elapses or ctx is cancelled.
func (h *Hook) Run(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.executable)
	if filepath.IsAbs(h.executable) {
		cmd.Dir = filepath.Dir(h.executable)
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("hook timed out after %s: %w", h.timeout, ctx.Err())
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("hook execution failed: %w, stderr: %s", err, s)
		}
		return nil, fmt.Errorf("hook execution failed: %w", err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse hook response: %w, stdout: %s", err, stdout.String())
	}

	if !response.Success {
		return &response, fmt.Errorf("%w: %s", ErrRejected, response.Error)
	}

	return &response, nil
}
