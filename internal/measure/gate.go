package measure

import (
	"image"
	"time"

	"github.com/ayusman/handmeasure/internal/detector"
)

// Key codes understood by the gate.
const (
	KeyNone     = -1
	KeyEscape   = 27
	KeyCaptureC = 'c'
	keyCodeMask = 0xFF
)

// DefaultThresholdCM is how close, in centimeters, the fingertip and wrist
// must be to the top and bottom of the guide box to start the countdown.
const DefaultThresholdCM = 1.6

// Trigger records what caused a capture.
type Trigger string

const (
	// TriggerAuto is a capture fired by countdown expiry.
	TriggerAuto Trigger = "auto"
	// TriggerManual is a capture fired by the operator's capture key.
	TriggerManual Trigger = "manual"
)

// GateConfig holds the constants of a measuring session.
type GateConfig struct {
	Calibration Calibration
	MarginRatio float64
	ThresholdCM float64
	Adjust      Adjustment
	Countdown   time.Duration
	CaptureKey  int
}

// DefaultGateConfig returns a 225px box standing for 20cm, 1.6cm proximity,
// a 2 second countdown and 'c' as the capture key.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Calibration: Calibration{ReferenceCM: 20, BoxWidthPx: 225},
		MarginRatio: DefaultMarginRatio,
		ThresholdCM: DefaultThresholdCM,
		Adjust:      Adjustment{WidthIn: DefaultWidthAdjustIn, HeightIn: DefaultHeightAdjustIn},
		Countdown:   DefaultCountdown,
		CaptureKey:  KeyCaptureC,
	}
}

// Evaluation is the gate's verdict on one frame.
type Evaluation struct {
	Box         GuideBox
	HandPresent bool
	Centered    bool
	// Points are the landmark pixels; only meaningful when HandPresent.
	Points [detector.NumLandmarks]image.Point
	// Measurement is set only when the hand is centered.
	Measurement *Measurement
	// Ready is true when the hand is centered and within proximity.
	Ready     bool
	Phase     Phase
	Remaining time.Duration

	Capture      bool
	Trigger      Trigger
	SizeCategory int
	Abort        bool
}

// Gate turns per-frame detections and key presses into capture decisions.
// It owns the countdown and is the only state carried between frames.
type Gate struct {
	cfg       GateConfig
	ppcm      float64
	countdown *Countdown
}

// NewGate creates a gate for cfg. The pixel-per-cm ratio is fixed here for the session.
func NewGate(cfg GateConfig) *Gate {
	return &Gate{
		cfg:       cfg,
		ppcm:      cfg.Calibration.PixelsPerCM(),
		countdown: NewCountdown(cfg.Countdown),
	}
}

// Config returns the gate configuration.
func (g *Gate) Config() GateConfig { return g.cfg }

// PixelsPerCM returns the session's pixel-per-centimeter ratio.
func (g *Gate) PixelsPerCM() float64 { return g.ppcm }

// Phase returns the countdown phase.
func (g *Gate) Phase() Phase { return g.countdown.Phase() }

// Evaluate processes the detection result for one frame of the given size.
// hand is nil when nothing was detected. When the countdown expires on this
// frame the evaluation carries an auto capture and no key needs to be polled.
func (g *Gate) Evaluate(width, height int, hand *detector.HandLandmarks, now time.Time) Evaluation {
	ev := Evaluation{
		Box: NewGuideBox(width, height, g.cfg.Calibration.BoxWidthPx, g.cfg.MarginRatio),
	}

	if hand != nil {
		ev.HandPresent = true
		ev.Points = hand.Pixels(width, height)
		ev.Centered = ev.Box.Contains(ev.Points[:])
	}

	if ev.Centered {
		m := Measure(ev.Points, ev.Box, g.ppcm, g.cfg.Adjust)
		ev.Measurement = &m
		ev.Ready = m.WithinProximity(g.cfg.ThresholdCM)
	}

	remaining, expired := g.countdown.Update(ev.Ready, now)
	ev.Remaining = remaining
	ev.Phase = g.countdown.Phase()

	if expired {
		ev.Capture = true
		ev.Trigger = TriggerAuto
		ev.SizeCategory = ev.Measurement.SizeCategory()
	}

	return ev
}

// ApplyKey folds the key polled after the frame was shown into ev.
// Escape aborts at any time. The capture key only captures when the hand
// in ev is centered; otherwise it is ignored.
func (g *Gate) ApplyKey(ev Evaluation, key int) Evaluation {
	if ev.Capture || key == KeyNone {
		return ev
	}

	switch key & keyCodeMask {
	case KeyEscape:
		ev.Abort = true
	case g.cfg.CaptureKey & keyCodeMask:
		if !ev.Centered {
			return ev
		}
		g.countdown.finish()
		ev.Capture = true
		ev.Trigger = TriggerManual
		ev.Phase = PhaseCaptured
		ev.Remaining = 0
		ev.SizeCategory = ev.Measurement.SizeCategory()
	}

	return ev
}
