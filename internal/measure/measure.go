package measure

import (
	"image"
	"math"

	"github.com/ayusman/handmeasure/internal/detector"
)

// Default calibration offsets added to the raw landmark measurements.
// Landmarks sit on the joints, so the raw spans under-read the outline of the hand.
const (
	DefaultWidthAdjustIn  = 0.70
	DefaultHeightAdjustIn = 0.40
)

// Adjustment holds the fixed offsets, in inches, added to raw measurements.
type Adjustment struct {
	WidthIn  float64
	HeightIn float64
}

// Measurement is the physical size of a centered hand.
type Measurement struct {
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
	// TopCM is the gap between the middle fingertip and the top of the guide box.
	TopCM float64 `json:"top_cm"`
	// BottomCM is the gap between the wrist and the bottom of the guide box.
	BottomCM float64 `json:"bottom_cm"`
}

// SizeCategory returns the size score of the measurement.
func (m Measurement) SizeCategory() int {
	return SizeCategory(m.WidthIn, m.HeightIn)
}

// WithinProximity reports whether both the fingertip and the wrist are
// within thresholdCM of their guide box edges.
func (m Measurement) WithinProximity(thresholdCM float64) bool {
	return m.TopCM <= thresholdCM && m.BottomCM <= thresholdCM
}

// Measure computes hand width (index to pinky knuckle) and height
// (wrist to middle fingertip) from landmark pixels, along with the
// fingertip and wrist distances to the guide box.
func Measure(pts [detector.NumLandmarks]image.Point, box GuideBox, ppcm float64, adj Adjustment) Measurement {
	widthPx := Distance(pts[detector.IndexMCP], pts[detector.PinkyMCP])
	heightPx := Distance(pts[detector.Wrist], pts[detector.MiddleTip])

	tip := pts[detector.MiddleTip]
	wrist := pts[detector.Wrist]

	return Measurement{
		WidthIn:  CMToInches(PixelsToCM(widthPx, ppcm)) + adj.WidthIn,
		HeightIn: CMToInches(PixelsToCM(heightPx, ppcm)) + adj.HeightIn,
		TopCM:    PixelsToCM(math.Abs(float64(tip.Y-box.Top())), ppcm),
		BottomCM: PixelsToCM(math.Abs(float64(box.Bottom()-wrist.Y)), ppcm),
	}
}
