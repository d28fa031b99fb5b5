// Package gesture classifies hand poses and stabilizes the resulting labels.
package gesture

// Label identifies the discrete hand pose driving the formation engine.
type Label string

const (
	// Idle means no hand is tracked.
	Idle Label = "idle"
	// Stream is a pointing hand: exactly the index finger extended.
	Stream Label = "stream"
	// Sphere is a closed fist.
	Sphere Label = "sphere"
	// Shield is an open palm with all four fingers extended.
	Shield Label = "shield"
)
