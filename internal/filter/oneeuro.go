// Package filter provides adaptive low-pass filtering for noisy pointer signals.
package filter

import "math"

// Config holds tuning parameters for a OneEuro filter instance.
type Config struct {
	// Rate is the nominal sample rate in Hz, used until the first real
	// timestamp delta has been observed.
	Rate float64

	// MinCutoff is the cutoff frequency in Hz applied when the signal is
	// at rest. Lower values smooth harder at the cost of lag.
	MinCutoff float64

	// Beta scales the cutoff with the estimated signal speed, so fast
	// motion is tracked with low lag while slow motion stays smooth.
	Beta float64

	// DerivCutoff is the cutoff frequency in Hz for the derivative smoother.
	DerivCutoff float64
}

// DefaultConfig returns filter tuning suited to a 30 FPS hand tracker.
func DefaultConfig() Config {
	return Config{
		Rate:        30.0,
		MinCutoff:   1.2,
		Beta:        0.08,
		DerivCutoff: 1.0,
	}
}

// OneEuro smooths a single scalar signal with a speed-adaptive cutoff.
// It maintains two cascaded exponential smoothers: one over the raw value
// and one over its estimated derivative. Each instance covers exactly one
// axis; axes never share state.
type OneEuro struct {
	config Config
	rate   float64
	value  float64
	deriv  float64
	lastMs float64
	seeded bool
}

// New creates a OneEuro filter. Non-positive config fields are replaced
// with their defaults.
func New(config Config) *OneEuro {
	def := DefaultConfig()
	if config.Rate <= 0 {
		config.Rate = def.Rate
	}
	if config.MinCutoff <= 0 {
		config.MinCutoff = def.MinCutoff
	}
	if config.Beta < 0 {
		config.Beta = def.Beta
	}
	if config.DerivCutoff <= 0 {
		config.DerivCutoff = def.DerivCutoff
	}

	return &OneEuro{
		config: config,
		rate:   config.Rate,
	}
}

// Filter smooths one sample taken at the given timestamp in milliseconds.
// Timestamps are expected to be non-decreasing; a zero or negative delta
// keeps the previous rate estimate rather than dividing by zero.
// The first call seeds the filter and returns the raw value unchanged.
func (f *OneEuro) Filter(raw, timestampMs float64) float64 {
	if !f.seeded {
		f.value = raw
		f.deriv = 0
		f.lastMs = timestampMs
		f.seeded = true
		return raw
	}

	if dt := (timestampMs - f.lastMs) / 1000.0; dt > 0 {
		f.rate = 1.0 / dt
		f.lastMs = timestampMs
	}

	// Smooth the derivative estimate first, then use its magnitude to
	// open up the position cutoff under fast motion.
	rawDeriv := (raw - f.value) * f.rate
	f.deriv = lowpass(rawDeriv, f.deriv, alpha(f.config.DerivCutoff, f.rate))

	cutoff := f.config.MinCutoff + f.config.Beta*math.Abs(f.deriv)
	f.value = lowpass(raw, f.value, alpha(cutoff, f.rate))

	return f.value
}

// Value returns the last smoothed value.
func (f *OneEuro) Value() float64 {
	return f.value
}

// alpha derives an exponential smoothing coefficient from a cutoff
// frequency in Hz and the current sample rate.
func alpha(cutoff, rate float64) float64 {
	tau := 1.0 / (2.0 * math.Pi * cutoff)
	return 1.0 / (1.0 + tau*rate)
}

func lowpass(raw, prev, a float64) float64 {
	return a*raw + (1.0-a)*prev
}
