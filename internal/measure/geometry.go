// Package measure converts hand landmarks into physical measurements and
// decides when a frame should be captured.
package measure

import (
	"image"
	"math"
)

// CMPerInch is the number of centimeters in an inch.
const CMPerInch = 2.54

// Distance returns the Euclidean distance between two pixel points.
func Distance(a, b image.Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// PixelsToCM converts a pixel length to centimeters at ppcm pixels per centimeter.
func PixelsToCM(px, ppcm float64) float64 {
	return px / ppcm
}

// CMToInches converts centimeters to inches.
func CMToInches(cm float64) float64 {
	return cm / CMPerInch
}

// SizeCategory is the coarse size score of a hand: the measured
// width times height, in square inches, rounded up.
func SizeCategory(widthIn, heightIn float64) int {
	return int(math.Ceil(widthIn * heightIn))
}

// Calibration relates the on-screen guide box to a physical length.
type Calibration struct {
	// ReferenceCM is the real-world width the guide box represents.
	ReferenceCM float64
	// BoxWidthPx is the guide box side in pixels.
	BoxWidthPx int
}

// PixelsPerCM returns the fixed pixel-per-centimeter ratio of the session.
func (c Calibration) PixelsPerCM() float64 {
	return float64(c.BoxWidthPx) / c.ReferenceCM
}
