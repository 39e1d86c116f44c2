package server

import (
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmeasure/internal/measure"
)

// Reading is the per-frame state pushed to preview clients.
type Reading struct {
	HandPresent  bool                 `json:"hand_present"`
	Centered     bool                 `json:"centered"`
	Ready        bool                 `json:"ready"`
	Phase        string               `json:"phase"`
	RemainingMs  int64                `json:"remaining_ms"`
	Measurement  *measure.Measurement `json:"measurement,omitempty"`
	Captured     bool                 `json:"captured"`
	SizeCategory int                  `json:"size_category,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
}

// NewReading summarizes a gate evaluation.
func NewReading(ev measure.Evaluation, at time.Time) Reading {
	r := Reading{
		HandPresent: ev.HandPresent,
		Centered:    ev.Centered,
		Ready:       ev.Ready,
		Phase:       ev.Phase.String(),
		Measurement: ev.Measurement,
		Captured:    ev.Capture,
		Timestamp:   at,
	}
	if ev.Phase == measure.PhaseCounting {
		r.RemainingMs = ev.Remaining.Milliseconds()
	}
	if ev.Capture {
		r.SizeCategory = ev.SizeCategory
	}
	return r
}

// Hub holds the latest annotated frame and reading published by the
// measuring loop. HTTP handlers read snapshots and wait for updates; the
// loop never blocks on slow clients.
type Hub struct {
	mu      sync.RWMutex
	jpeg    []byte
	reading Reading
	has     bool
	subs    map[chan struct{}]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan struct{}]struct{})}
}

// Publish encodes frame as JPEG and stores it with reading. A nil or empty
// frame updates the reading only.
func (h *Hub) Publish(frame *gocv.Mat, reading Reading) {
	var jpeg []byte
	if frame != nil && !frame.Empty() {
		buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
		if err == nil {
			jpeg = append([]byte(nil), buf.GetBytes()...)
			buf.Close()
		}
	}

	h.mu.Lock()
	if jpeg != nil {
		h.jpeg = jpeg
	}
	h.reading = reading
	h.has = true
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

// Latest returns the most recent frame and reading. ok is false until the
// first Publish.
func (h *Hub) Latest() (jpeg []byte, reading Reading, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.jpeg, h.reading, h.has
}

// Subscribe returns a channel that receives a signal after each Publish.
// Signals coalesce when the receiver falls behind.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
