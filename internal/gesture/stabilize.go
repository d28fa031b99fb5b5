package gesture

// StabilizerConfig tunes the two hysteresis mechanisms of the Stabilizer.
type StabilizerConfig struct {
	// StableFrames is how many consecutive frames a candidate label must
	// repeat before it is committed.
	StableFrames int

	// LossFrames is how many consecutive undetected frames force a reset
	// to Idle. Shorter dropouts leave the committed label untouched.
	LossFrames int
}

// DefaultStabilizerConfig returns the standard debounce thresholds.
func DefaultStabilizerConfig() StabilizerConfig {
	return StabilizerConfig{
		StableFrames: 3,
		LossFrames:   3,
	}
}

// Stabilizer debounces per-frame classifier output. The committed label only
// changes after a candidate has repeated for StableFrames consecutive frames,
// and only falls back to Idle after LossFrames consecutive frames without a
// detected hand. Single-frame detector dropouts therefore never reset state.
type Stabilizer struct {
	config    StabilizerConfig
	committed Label
	candidate Label
	run       int
	lost      int
}

// NewStabilizer creates a Stabilizer committed to Idle. Non-positive
// thresholds are replaced with their defaults.
func NewStabilizer(config StabilizerConfig) *Stabilizer {
	def := DefaultStabilizerConfig()
	if config.StableFrames <= 0 {
		config.StableFrames = def.StableFrames
	}
	if config.LossFrames <= 0 {
		config.LossFrames = def.LossFrames
	}

	return &Stabilizer{
		config:    config,
		committed: Idle,
		candidate: Idle,
	}
}

// Observe feeds one frame of classifier output and returns the committed
// label. It always returns the committed label, never the raw candidate.
func (s *Stabilizer) Observe(candidate Label, handDetected bool) Label {
	if !handDetected {
		s.lost++
		if s.lost >= s.config.LossFrames {
			s.committed = Idle
			s.candidate = Idle
			s.run = 0
		}
		return s.committed
	}

	s.lost = 0

	if candidate == s.candidate {
		s.run++
	} else {
		s.candidate = candidate
		s.run = 1
	}

	if s.run >= s.config.StableFrames {
		s.committed = s.candidate
	}

	return s.committed
}

// Committed returns the current committed label without consuming a frame.
func (s *Stabilizer) Committed() Label {
	return s.committed
}

// TrackingLost reports whether the consecutive-loss counter has crossed the
// reset threshold. The tracker uses this to decide when to stop holding the
// last good pointer position.
func (s *Stabilizer) TrackingLost() bool {
	return s.lost >= s.config.LossFrames
}
