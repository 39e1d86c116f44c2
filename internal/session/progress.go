package session

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter mirrors the countdown outside the preview window.
type Reporter interface {
	// Countdown is called on every counting frame.
	Countdown(elapsed, total time.Duration)
	// Reset is called when a countdown ends without a capture.
	Reset()
}

type nopReporter struct{}

func (nopReporter) Countdown(elapsed, total time.Duration) {}
func (nopReporter) Reset()                                 {}

// BarReporter draws the countdown as a console progress bar.
type BarReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
	max int64
}

// NewBarReporter creates a BarReporter writing to w.
func NewBarReporter(w io.Writer) *BarReporter {
	return &BarReporter{w: w}
}

// Countdown advances the bar to elapsed, in milliseconds of total.
func (r *BarReporter) Countdown(elapsed, total time.Duration) {
	if r.bar == nil || r.max != total.Milliseconds() {
		r.max = total.Milliseconds()
		r.bar = progressbar.NewOptions64(r.max,
			progressbar.OptionSetDescription("Hold still"),
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(50*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	r.bar.Set64(min(elapsed.Milliseconds(), r.max))
}

// Reset clears the bar so the next countdown starts from zero.
func (r *BarReporter) Reset() {
	if r.bar == nil {
		return
	}
	r.bar.Clear()
	r.bar = nil
}
