// Package display presents annotated frames and polls the keyboard.
package display

import (
	"sync"

	"gocv.io/x/gocv"
)

// DefaultWindowName is the title of the preview window.
const DefaultWindowName = "Hand Measurement"

// Display shows frames to the operator and reports key presses.
type Display interface {
	// Show presents frame. The display does not keep a reference to it.
	Show(frame *gocv.Mat)
	// WaitKey waits up to delayMs for a key press and returns its code, or -1.
	WaitKey(delayMs int) int
	Close() error
}

// Window is a Display backed by an OpenCV HighGUI window.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a preview window with the given title.
func NewWindow(name string) *Window {
	return &Window{window: gocv.NewWindow(name)}
}

// Show draws frame in the window.
func (w *Window) Show(frame *gocv.Mat) {
	w.window.IMShow(*frame)
}

// WaitKey pumps the window event loop and returns the pressed key or -1.
func (w *Window) WaitKey(delayMs int) int {
	return w.window.WaitKey(delayMs)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}

// Headless is a Display with no window. Each WaitKey call returns the next
// scripted key; once the script runs out it returns -1.
type Headless struct {
	keys   []int
	shown  int
	polls  int
	closed bool
	mu     sync.Mutex
}

// NewHeadless creates a headless display that plays back keys.
func NewHeadless(keys ...int) *Headless {
	return &Headless{keys: keys}
}

// KeyAt builds a key script that presses key on poll n (zero based).
func KeyAt(n, key int) []int {
	keys := make([]int, n+1)
	for i := range keys {
		keys[i] = -1
	}
	keys[n] = key
	return keys
}

// Show counts the frame.
func (h *Headless) Show(frame *gocv.Mat) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown++
}

// WaitKey returns the next scripted key without waiting.
func (h *Headless) WaitKey(delayMs int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.polls
	h.polls++
	if i >= len(h.keys) {
		return -1
	}
	return h.keys[i]
}

// Shown returns how many frames were shown.
func (h *Headless) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Closed reports whether Close was called.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close marks the display closed.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
