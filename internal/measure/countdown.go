package measure

import "time"

// DefaultCountdown is how long a hand must hold position before auto-capture.
const DefaultCountdown = 2 * time.Second

// Phase is the state of a Countdown.
type Phase int

const (
	// PhaseIdle means no countdown is running.
	PhaseIdle Phase = iota
	// PhaseCounting means the hand is in position and the timer is running.
	PhaseCounting
	// PhaseCaptured is terminal: the countdown expired.
	PhaseCaptured
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCounting:
		return "counting"
	case PhaseCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

// Countdown gates auto-capture on a hand holding position continuously.
// Any break resets it completely; it never resumes from partial progress.
type Countdown struct {
	duration time.Duration
	phase    Phase
	start    time.Time
}

// NewCountdown creates an idle countdown of the given duration.
func NewCountdown(d time.Duration) *Countdown {
	return &Countdown{duration: d}
}

// Phase returns the current phase.
func (c *Countdown) Phase() Phase {
	return c.phase
}

// Duration returns the configured countdown length.
func (c *Countdown) Duration() time.Duration {
	return c.duration
}

// Reset returns a running countdown to idle. A captured countdown stays captured.
func (c *Countdown) Reset() {
	if c.phase == PhaseCaptured {
		return
	}
	c.phase = PhaseIdle
	c.start = time.Time{}
}

// finish moves the countdown straight to captured.
func (c *Countdown) finish() {
	c.phase = PhaseCaptured
}

// Update advances the countdown for one frame. ready is whether the hand is
// in position on this frame. It returns the time left and whether the
// countdown expired on this call; expiry is reported exactly once.
//
// The frame that starts the countdown never expires it, so a capture always
// needs at least two consecutive ready frames.
func (c *Countdown) Update(ready bool, now time.Time) (remaining time.Duration, expired bool) {
	switch c.phase {
	case PhaseCaptured:
		return 0, false
	case PhaseIdle:
		if !ready {
			return 0, false
		}
		c.phase = PhaseCounting
		c.start = now
		return c.duration, false
	}

	if !ready {
		c.Reset()
		return 0, false
	}

	elapsed := now.Sub(c.start)
	if elapsed >= c.duration {
		c.phase = PhaseCaptured
		return 0, true
	}
	return c.duration - elapsed, false
}
