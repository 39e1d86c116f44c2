package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ScriptedDetector returns one scripted result per Detect call, in order.
// A nil entry means "no hand" for that call. Once the script is exhausted
// every call reports no hand.
type ScriptedDetector struct {
	script [][]HandLandmarks
	calls  int
	closed bool
	mu     sync.Mutex
}

// NewScriptedDetector creates a detector that plays back script.
func NewScriptedDetector(script ...[]HandLandmarks) *ScriptedDetector {
	return &ScriptedDetector{script: script}
}

// Repeat builds a script that reports the same hands n times.
func Repeat(hands []HandLandmarks, n int) [][]HandLandmarks {
	out := make([][]HandLandmarks, n)
	for i := range out {
		out[i] = hands
	}
	return out
}

// Detect returns the next scripted result.
func (s *ScriptedDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	if i >= len(s.script) {
		return nil, nil
	}
	return s.script[i], nil
}

// Calls reports how many times Detect has been called.
func (s *ScriptedDetector) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Closed reports whether Close has been called.
func (s *ScriptedDetector) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close marks the detector closed.
func (s *ScriptedDetector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// FixtureWidth and FixtureHeight are the frame size the landmark presets are laid out for.
const (
	FixtureWidth  = 640
	FixtureHeight = 480
)

// measuringPosePixels is an open right hand, palm to camera, fingers up,
// with the middle fingertip just below the top of a 225px guide box and
// the wrist just above its bottom edge (on a 640x480 frame).
var measuringPosePixels = [NumLandmarks][2]float64{
	Wrist:     {320, 338},
	ThumbCMC:  {350, 320},
	ThumbMCP:  {375, 295},
	ThumbIP:   {392, 272},
	ThumbTip:  {405, 250},
	IndexMCP:  {360, 250},
	IndexPIP:  {364, 210},
	IndexDIP:  {366, 185},
	IndexTip:  {367, 162},
	MiddleMCP: {330, 245},
	MiddlePIP: {331, 200},
	MiddleDIP: {331, 170},
	MiddleTip: {331, 142},
	RingMCP:   {302, 250},
	RingPIP:   {298, 210},
	RingDIP:   {296, 185},
	RingTip:   {295, 165},
	PinkyMCP:  {280, 260},
	PinkyPIP:  {272, 230},
	PinkyDIP:  {268, 210},
	PinkyTip:  {265, 192},
}

// MeasuringPoseLandmarks returns a preset hand held in measuring position
// inside the default guide box of a FixtureWidth x FixtureHeight frame.
func MeasuringPoseLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Half-pixel offsets keep truncation landing on the intended pixel.
	for i, p := range measuringPosePixels {
		landmarks.Points[i] = Point3D{
			X: (p[0] + 0.5) / FixtureWidth,
			Y: (p[1] + 0.5) / FixtureHeight,
		}
	}

	return landmarks
}

// Translate returns a copy of h shifted by (dx, dy) in normalized units.
func Translate(h HandLandmarks, dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// ScaleAbout returns a copy of h scaled by f around the normalized point (cx, cy).
func ScaleAbout(h HandLandmarks, cx, cy, f float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X = cx + (out.Points[i].X-cx)*f
		out.Points[i].Y = cy + (out.Points[i].Y-cy)*f
	}
	return out
}
