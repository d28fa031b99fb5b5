// Package track turns raw hand landmarks into a stable pointer and gesture state.
package track

import (
	"sync"

	"github.com/ayusman/murmur/internal/detector"
	"github.com/ayusman/murmur/internal/filter"
	"github.com/ayusman/murmur/internal/gesture"
)

// State is the per-frame tracking snapshot published to downstream
// consumers. It is always passed by value; the formation engine and the
// websocket hub never see a reference into tracker-owned state.
type State struct {
	Detected   bool          `json:"detected"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Gesture    gesture.Label `json:"gesture"`
	Confidence float64       `json:"confidence"`
}

// Config holds tuning for the tracker and its sub-components.
type Config struct {
	// Filter tunes the two per-axis pointer filters.
	Filter filter.Config

	// Stabilizer tunes the gesture debounce thresholds.
	Stabilizer gesture.StabilizerConfig

	// TipWeight blends the index fingertip with its DIP joint when
	// deriving the pointer; the joint is steadier than the tip.
	TipWeight float64
}

// DefaultConfig returns standard tracker tuning.
func DefaultConfig() Config {
	return Config{
		Filter:     filter.DefaultConfig(),
		Stabilizer: gesture.DefaultStabilizerConfig(),
		TipWeight:  0.7,
	}
}

// Tracker owns the signal conditioning pipeline: per-axis adaptive filters,
// the gesture classifier and stabilizer, and the hold-last loss policy.
// Process must be called from a single goroutine; Latest is safe to call
// from anywhere.
type Tracker struct {
	config Config
	fx     *filter.OneEuro
	fy     *filter.OneEuro
	stab   *gesture.Stabilizer

	mu   sync.RWMutex
	last State
}

// New creates a Tracker. A zero TipWeight falls back to the default blend.
func New(config Config) *Tracker {
	if config.TipWeight <= 0 || config.TipWeight > 1 {
		config.TipWeight = DefaultConfig().TipWeight
	}

	return &Tracker{
		config: config,
		fx:     filter.New(config.Filter),
		fy:     filter.New(config.Filter),
		stab:   gesture.NewStabilizer(config.Stabilizer),
		last:   State{Gesture: gesture.Idle},
	}
}

// Process consumes one frame of detector output and returns the published
// state. An empty hand slice counts as a lost frame: the previous pointer
// and confidence are held until the loss threshold is crossed, at which
// point the state collapses to idle. This hold-last policy keeps a brief
// detector dropout from yanking the formation back to the origin.
func (t *Tracker) Process(hands []detector.HandLandmarks, timestampMs float64) State {
	if len(hands) == 0 {
		return t.processLost()
	}

	hand := &hands[0]
	rawX, rawY := t.pointer(hand)

	st := State{
		Detected:   true,
		X:          t.fx.Filter(rawX, timestampMs),
		Y:          t.fy.Filter(rawY, timestampMs),
		Gesture:    t.stab.Observe(gesture.Classify(hand), true),
		Confidence: clamp(hand.Score, 0, 1),
	}

	t.publish(st)
	return st
}

func (t *Tracker) processLost() State {
	committed := t.stab.Observe(gesture.Idle, false)

	if t.stab.TrackingLost() {
		st := State{Gesture: gesture.Idle}
		t.publish(st)
		return st
	}

	// Below the loss threshold: hold the last good pointer and keep
	// reporting the committed gesture.
	t.mu.RLock()
	st := t.last
	t.mu.RUnlock()
	st.Gesture = committed
	t.publish(st)
	return st
}

// Latest returns the most recently published state by value.
func (t *Tracker) Latest() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func (t *Tracker) publish(st State) {
	t.mu.Lock()
	t.last = st
	t.mu.Unlock()
}

// pointer derives the raw pointer sample from the index fingertip blended
// with its DIP joint, mirrored horizontally for a selfie-view camera and
// remapped from [0,1] image space to [-1,1] normalized device coordinates.
func (t *Tracker) pointer(h *detector.HandLandmarks) (float64, float64) {
	tip := h.Points[detector.IndexTip]
	dip := h.Points[detector.IndexDIP]

	w := t.config.TipWeight
	px := tip.X*w + dip.X*(1-w)
	py := tip.Y*w + dip.Y*(1-w)

	// Image x grows rightward and y grows downward; NDC is mirrored on x
	// and flipped on y.
	x := clamp((0.5-px)*2, -1, 1)
	y := clamp((0.5-py)*2, -1, 1)
	return x, y
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
