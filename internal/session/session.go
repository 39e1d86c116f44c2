// Package session runs the interactive measuring loop: read a frame, detect
// the hand, evaluate the guide box and countdown, draw, show, poll the
// keyboard, and save the frame when a capture fires.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/handmeasure/internal/capture"
	"github.com/ayusman/handmeasure/internal/detector"
	"github.com/ayusman/handmeasure/internal/display"
	"github.com/ayusman/handmeasure/internal/hook"
	"github.com/ayusman/handmeasure/internal/logging"
	"github.com/ayusman/handmeasure/internal/measure"
	"github.com/ayusman/handmeasure/internal/overlay"
	"github.com/ayusman/handmeasure/internal/server"
	"github.com/ayusman/handmeasure/internal/store"
)

// DefaultKeyPollMs is how long each iteration waits for a key press.
const DefaultKeyPollMs = 1

// Publisher receives every annotated frame; server.Hub implements it.
type Publisher interface {
	Publish(frame *gocv.Mat, reading server.Reading)
}

// Config wires a session. Camera, Detector and Display are required; the
// rest are optional.
type Config struct {
	Gate     measure.GateConfig
	SavePath string
	// SaveRaw writes the frame without the overlay.
	SaveRaw   bool
	KeyPollMs int

	Camera   capture.Camera
	Detector detector.Detector
	Display  display.Display

	Store     *store.Store
	Publisher Publisher
	Hook      *hook.Hook
	Reporter  Reporter

	Logger  logrus.FieldLogger
	Console io.Writer
	// Now is the clock; tests inject a fake one.
	Now func() time.Time
}

// Result describes how a session ended.
type Result struct {
	Captured     bool
	Aborted      bool
	Trigger      measure.Trigger
	Measurement  measure.Measurement
	SizeCategory int
	ImagePath    string
	// CaptureID is set when the capture was recorded in the store.
	CaptureID  string
	CapturedAt time.Time
	Frames     int
}

// Session is a single measuring run.
type Session struct {
	cfg Config
	log logrus.FieldLogger
}

// state is everything carried from one iteration to the next.
type state struct {
	gate      *measure.Gate
	frames    int
	lastPhase measure.Phase
}

// New validates cfg and fills in defaults.
func New(cfg Config) (*Session, error) {
	if cfg.Camera == nil || cfg.Detector == nil || cfg.Display == nil {
		return nil, errors.New("session: camera, detector and display are required")
	}
	if cfg.Gate.Calibration.BoxWidthPx <= 0 || cfg.Gate.Calibration.ReferenceCM <= 0 {
		return nil, fmt.Errorf("session: invalid calibration %+v", cfg.Gate.Calibration)
	}
	if cfg.SavePath == "" {
		cfg.SavePath = capture.DefaultSavePath
	}
	if cfg.KeyPollMs <= 0 {
		cfg.KeyPollMs = DefaultKeyPollMs
	}
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Reporter == nil {
		cfg.Reporter = nopReporter{}
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Session{
		cfg: cfg,
		log: log.WithField("component", "session"),
	}, nil
}

// Run measures until a capture, the escape key, a camera failure or ctx
// cancellation. Camera, detector and display are released on every exit
// path.
func (s *Session) Run(ctx context.Context) (res Result, err error) {
	defer s.release()

	if err := s.cfg.Camera.Open(); err != nil {
		return Result{}, fmt.Errorf("open camera: %w", err)
	}

	st := &state{gate: measure.NewGate(s.cfg.Gate)}

	s.log.WithFields(logging.Fields{
		"save_path": s.cfg.SavePath,
		"countdown": s.cfg.Gate.Countdown,
		"ppcm":      st.gate.PixelsPerCM(),
	}).Info("measuring session started")
	defer func() {
		s.log.WithFields(logging.Fields{
			"frames":   st.frames,
			"captured": res.Captured,
			"aborted":  res.Aborted,
		}).Info("measuring session stopped")
	}()

	for {
		if err := ctx.Err(); err != nil {
			return Result{Frames: st.frames}, err
		}

		frame, err := s.cfg.Camera.ReadFrame()
		if err != nil {
			return Result{Frames: st.frames}, fmt.Errorf("read frame: %w", err)
		}

		res, done, err := s.step(ctx, st, frame)
		frame.Close()
		if err != nil || done {
			res.Frames = st.frames
			return res, err
		}
	}
}

// step processes one frame. done is true when the session should end.
func (s *Session) step(ctx context.Context, st *state, frame *gocv.Mat) (Result, bool, error) {
	st.frames++
	now := s.cfg.Now()

	hand, err := detector.FirstHand(s.cfg.Detector, frame)
	if err != nil {
		s.log.WithError(err).Warn("hand detection failed, treating frame as empty")
		hand = nil
	}

	ev := st.gate.Evaluate(frame.Cols(), frame.Rows(), hand, now)

	// Capture needs a centered hand, so a clean copy is only worth taking then.
	var raw *gocv.Mat
	if s.cfg.SaveRaw && ev.Centered {
		clone := frame.Clone()
		raw = &clone
		defer raw.Close()
	}

	overlay.Draw(frame, ev, s.cfg.Gate.Calibration.ReferenceCM)
	s.cfg.Display.Show(frame)

	key := s.cfg.Display.WaitKey(s.cfg.KeyPollMs)
	ev = st.gate.ApplyKey(ev, key)

	s.trackPhase(st, ev)

	if s.cfg.Publisher != nil {
		s.cfg.Publisher.Publish(frame, server.NewReading(ev, now))
	}

	switch {
	case ev.Capture:
		out := frame
		if raw != nil {
			out = raw
		}
		res, err := s.finish(ctx, ev, out, now)
		return res, true, err
	case ev.Abort:
		s.log.Info("aborted by operator")
		return Result{Aborted: true}, true, nil
	}

	return Result{}, false, nil
}

// trackPhase logs countdown transitions and drives the progress reporter.
func (s *Session) trackPhase(st *state, ev measure.Evaluation) {
	switch {
	case ev.Phase == measure.PhaseCounting && st.lastPhase != measure.PhaseCounting:
		s.log.Debug("countdown started")
	case ev.Phase == measure.PhaseIdle && st.lastPhase == measure.PhaseCounting:
		s.log.Debug("countdown reset")
	}

	switch ev.Phase {
	case measure.PhaseCounting:
		s.cfg.Reporter.Countdown(s.cfg.Gate.Countdown-ev.Remaining, s.cfg.Gate.Countdown)
	default:
		if st.lastPhase == measure.PhaseCounting {
			s.cfg.Reporter.Reset()
		}
	}

	st.lastPhase = ev.Phase
}

func (s *Session) release() {
	if err := s.cfg.Camera.Close(); err != nil {
		s.log.WithError(err).Warn("closing camera")
	}
	if err := s.cfg.Display.Close(); err != nil {
		s.log.WithError(err).Warn("closing display")
	}
	if err := s.cfg.Detector.Close(); err != nil {
		s.log.WithError(err).Warn("closing detector")
	}
}
