package session

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmeasure/internal/capture"
	"github.com/ayusman/handmeasure/internal/hook"
	"github.com/ayusman/handmeasure/internal/logging"
	"github.com/ayusman/handmeasure/internal/measure"
	"github.com/ayusman/handmeasure/internal/store"
)

// finish saves the captured frame, reports it and runs the optional
// history and hook side effects. Only the save can fail the session.
func (s *Session) finish(ctx context.Context, ev measure.Evaluation, frame *gocv.Mat, at time.Time) (Result, error) {
	res := Result{
		Captured:     true,
		Trigger:      ev.Trigger,
		Measurement:  *ev.Measurement,
		SizeCategory: ev.SizeCategory,
		ImagePath:    s.cfg.SavePath,
		CapturedAt:   at,
	}

	fmt.Fprintf(s.cfg.Console, "Hand size score: %d\n", res.SizeCategory)

	if err := capture.SaveFrame(frame, s.cfg.SavePath); err != nil {
		return res, err
	}

	verb := "Captured"
	if ev.Trigger == measure.TriggerAuto {
		verb = "Auto-captured"
	}
	fmt.Fprintf(s.cfg.Console, "%s and saved to %s\n", verb, s.cfg.SavePath)

	log := s.log.WithFields(logging.Fields{
		"trigger":   ev.Trigger,
		"category":  res.SizeCategory,
		"width_in":  fmt.Sprintf("%.2f", res.Measurement.WidthIn),
		"height_in": fmt.Sprintf("%.2f", res.Measurement.HeightIn),
	})
	log.Info("hand captured")

	if s.cfg.Store != nil {
		rec := &store.Capture{
			WidthIn:      res.Measurement.WidthIn,
			HeightIn:     res.Measurement.HeightIn,
			SizeCategory: res.SizeCategory,
			Trigger:      string(res.Trigger),
			ImagePath:    res.ImagePath,
			CreatedAt:    at.UTC(),
		}
		if err := s.cfg.Store.Captures().Create(rec); err != nil {
			log.WithError(err).Warn("recording capture history failed")
		} else {
			res.CaptureID = rec.ID
		}
	}

	if s.cfg.Hook != nil {
		resp, err := s.cfg.Hook.Run(ctx, &hook.Request{
			Event:        "capture",
			CaptureID:    res.CaptureID,
			WidthIn:      res.Measurement.WidthIn,
			HeightIn:     res.Measurement.HeightIn,
			SizeCategory: res.SizeCategory,
			Trigger:      string(res.Trigger),
			ImagePath:    res.ImagePath,
			CapturedAt:   at,
		})
		if err != nil {
			log.WithError(err).WithField("hook", s.cfg.Hook.Executable()).Warn("capture hook failed")
		} else {
			log.WithField("hook", s.cfg.Hook.Executable()).Debugf("capture hook ok: %s", resp.Data)
		}
	}

	return res, nil
}
