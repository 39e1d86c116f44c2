// Package overlay draws the measuring guide and live readings onto frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmeasure/internal/detector"
	"github.com/ayusman/handmeasure/internal/measure"
)

// Colors used on the overlay.
var (
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

const lineThickness = 2

// Text is one line of overlay text.
type Text struct {
	Content string
	Org     image.Point
	Scale   float64
	Color   color.RGBA
}

// Segment is a straight line drawn over the frame.
type Segment struct {
	From, To image.Point
	Color    color.RGBA
}

// Texts lays out the overlay text for an evaluation.
func Texts(ev measure.Evaluation, referenceCM float64) []Text {
	texts := []Text{{
		Content: fmt.Sprintf("Fit wrist in %gcm box", referenceCM),
		Org:     image.Pt(ev.Box.Rect.Min.X, ev.Box.Rect.Min.Y-10),
		Scale:   0.6,
		Color:   Yellow,
	}}

	switch {
	case !ev.HandPresent:
		return texts
	case !ev.Centered:
		return append(texts, Text{Content: "Center hand in box", Org: image.Pt(30, 130), Scale: 0.8, Color: Red})
	}

	m := ev.Measurement
	texts = append(texts,
		Text{Content: fmt.Sprintf("W: %.2f in", m.WidthIn), Org: image.Pt(30, 50), Scale: 0.8, Color: Green},
		Text{Content: fmt.Sprintf("H: %.2f in", m.HeightIn), Org: image.Pt(30, 90), Scale: 0.8, Color: Blue},
		Text{Content: fmt.Sprintf("Top: %.2f cm", m.TopCM), Org: image.Pt(30, 170), Scale: 0.7, Color: Cyan},
		Text{Content: fmt.Sprintf("Bottom: %.2f cm", m.BottomCM), Org: image.Pt(30, 200), Scale: 0.7, Color: Magenta},
	)

	if !ev.Ready {
		return append(texts, Text{Content: "Move hand forward...", Org: image.Pt(30, 130), Scale: 0.8, Color: Red})
	}

	if ev.Phase == measure.PhaseCounting && ev.Remaining > 0 {
		secs := int(math.Ceil(ev.Remaining.Seconds()))
		texts = append(texts, Text{Content: fmt.Sprintf("Capturing in %ds...", secs), Org: image.Pt(30, 130), Scale: 0.8, Color: Yellow})
	}

	return texts
}

// Segments returns the measurement and proximity lines for a centered hand.
func Segments(ev measure.Evaluation) []Segment {
	if !ev.Centered {
		return nil
	}

	p := ev.Points
	tip, wrist := p[detector.MiddleTip], p[detector.Wrist]
	return []Segment{
		{From: p[detector.IndexMCP], To: p[detector.PinkyMCP], Color: Green},
		{From: wrist, To: tip, Color: Blue},
		{From: tip, To: image.Pt(tip.X, ev.Box.Top()), Color: Cyan},
		{From: wrist, To: image.Pt(wrist.X, ev.Box.Bottom()), Color: Magenta},
	}
}

// Draw renders the guide box, readings and, for a centered hand, the
// measurement lines and skeleton onto frame in place.
func Draw(frame *gocv.Mat, ev measure.Evaluation, referenceCM float64) {
	gocv.Rectangle(frame, ev.Box.Rect, Yellow, lineThickness)

	for _, s := range Segments(ev) {
		gocv.Line(frame, s.From, s.To, s.Color, lineThickness)
	}

	for _, t := range Texts(ev, referenceCM) {
		gocv.PutText(frame, t.Content, t.Org, gocv.FontHersheySimplex, t.Scale, t.Color, lineThickness)
	}

	if ev.Centered {
		drawSkeleton(frame, ev.Points)
	}
}

func drawSkeleton(frame *gocv.Mat, pts [detector.NumLandmarks]image.Point) {
	for _, c := range detector.HandConnections {
		gocv.Line(frame, pts[c[0]], pts[c[1]], White, lineThickness)
	}
	for _, pt := range pts {
		gocv.Circle(frame, pt, 3, Red, -1)
	}
}
