package measure

import (
	"image"
	"math"
	"testing"

	"github.com/ayusman/handmeasure/internal/detector"
)

func TestNewGuideBox(t *testing.T) {
	box := NewGuideBox(640, 480, 225, DefaultMarginRatio)

	want := image.Rect(208, 128, 432, 352)
	if box.Rect != want {
		t.Errorf("Rect = %v, want %v", box.Rect, want)
	}
	if box.Margin != 11 {
		t.Errorf("Margin = %d, want 11", box.Margin)
	}
	if box.Top() != 128 || box.Bottom() != 352 {
		t.Errorf("Top/Bottom = %d/%d, want 128/352", box.Top(), box.Bottom())
	}
}

func TestGuideBox_Contains(t *testing.T) {
	box := NewGuideBox(640, 480, 225, DefaultMarginRatio)
	// Strict interior after the 11px margin is x in (219, 421), y in (139, 341).

	tests := []struct {
		name   string
		points []image.Point
		want   bool
	}{
		{
			name:   "bounding box equal to guide box",
			points: []image.Point{image.Pt(208, 128), image.Pt(432, 352)},
			want:   false,
		},
		{
			name:   "on the margin line",
			points: []image.Point{image.Pt(219, 139), image.Pt(421, 341)},
			want:   false,
		},
		{
			name:   "one pixel inside the margin",
			points: []image.Point{image.Pt(220, 140), image.Pt(420, 340)},
			want:   true,
		},
		{
			name:   "single point at center",
			points: []image.Point{image.Pt(320, 240)},
			want:   true,
		},
		{
			name:   "one point outside",
			points: []image.Point{image.Pt(320, 240), image.Pt(320, 400)},
			want:   false,
		},
		{
			name:   "no points",
			points: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.points); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.points, got, tt.want)
			}
		})
	}
}

func TestGuideBox_ZeroMarginStillStrict(t *testing.T) {
	box := NewGuideBox(640, 480, 225, 0)
	if box.Contains([]image.Point{box.Rect.Min, box.Rect.Max}) {
		t.Error("points on the box edges must not count as inside")
	}
}

func TestBoundingBox(t *testing.T) {
	got := BoundingBox([]image.Point{image.Pt(5, 9), image.Pt(-2, 4), image.Pt(7, 1)})
	want := image.Rect(-2, 1, 7, 9)
	if got != want {
		t.Errorf("BoundingBox() = %v, want %v", got, want)
	}
}

func TestMeasure(t *testing.T) {
	hand := detector.MeasuringPoseLandmarks()
	pts := hand.Pixels(detector.FixtureWidth, detector.FixtureHeight)
	box := NewGuideBox(detector.FixtureWidth, detector.FixtureHeight, 225, DefaultMarginRatio)
	ppcm := 11.25
	adj := Adjustment{WidthIn: DefaultWidthAdjustIn, HeightIn: DefaultHeightAdjustIn}

	m := Measure(pts, box, ppcm, adj)

	widthPx := math.Hypot(360-280, 250-260)
	heightPx := math.Hypot(331-320, 142-338)

	wantWidth := widthPx/ppcm/2.54 + 0.70
	wantHeight := heightPx/ppcm/2.54 + 0.40

	if math.Abs(m.WidthIn-wantWidth) > epsilon {
		t.Errorf("WidthIn = %f, want %f", m.WidthIn, wantWidth)
	}
	if math.Abs(m.HeightIn-wantHeight) > epsilon {
		t.Errorf("HeightIn = %f, want %f", m.HeightIn, wantHeight)
	}

	// Fingertip at y=142, box top at 128; wrist at y=338, box bottom at 352.
	if math.Abs(m.TopCM-14/ppcm) > epsilon {
		t.Errorf("TopCM = %f, want %f", m.TopCM, 14/ppcm)
	}
	if math.Abs(m.BottomCM-14/ppcm) > epsilon {
		t.Errorf("BottomCM = %f, want %f", m.BottomCM, 14/ppcm)
	}

	if !m.WithinProximity(DefaultThresholdCM) {
		t.Error("measuring pose should be within proximity")
	}
	if m.WithinProximity(1.0) {
		t.Error("measuring pose should not be within a 1cm threshold")
	}

	if got, want := m.SizeCategory(), SizeCategory(wantWidth, wantHeight); got != want {
		t.Errorf("SizeCategory() = %d, want %d", got, want)
	}
}

func TestMeasurement_WithinProximity(t *testing.T) {
	tests := []struct {
		name string
		m    Measurement
		want bool
	}{
		{name: "both inside", m: Measurement{TopCM: 1.0, BottomCM: 1.5}, want: true},
		{name: "on threshold", m: Measurement{TopCM: 1.6, BottomCM: 1.6}, want: true},
		{name: "top too far", m: Measurement{TopCM: 1.7, BottomCM: 0.2}, want: false},
		{name: "bottom too far", m: Measurement{TopCM: 0.2, BottomCM: 3}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.WithinProximity(1.6); got != tt.want {
				t.Errorf("WithinProximity() = %v, want %v", got, tt.want)
			}
		})
	}
}
