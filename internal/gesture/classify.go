package gesture

import (
	"math"

	"github.com/ayusman/murmur/internal/detector"
)

// Finger extension thresholds. A finger counts as open when its tip is
// meaningfully farther from the wrist than its base joint; the ratio margin
// suppresses flicker right at the open/closed boundary, where a raw sign
// comparison would oscillate frame to frame.
const (
	fingerOpenRatio = 1.10
	thumbOpenRatio  = 1.08
)

// Classify maps a single hand pose onto a Label. It is a pure function of
// the landmarks: identical input always produces an identical label.
//
// Decision order, first match wins:
//  1. exactly the index finger open    -> Stream
//  2. all fingers and the thumb closed -> Sphere
//  3. all four non-thumb fingers open  -> Shield
//  4. anything else                    -> Stream
//
// The default-to-Stream fallback is deliberate: an ambiguous pose degrades
// to the pointing behavior instead of flipping through unrelated labels.
func Classify(h *detector.HandLandmarks) Label {
	if h == nil {
		return Idle
	}

	wrist := h.Points[detector.Wrist]

	indexOpen := fingerOpen(wrist, h.Points[detector.IndexTip], h.Points[detector.IndexMCP], fingerOpenRatio)
	middleOpen := fingerOpen(wrist, h.Points[detector.MiddleTip], h.Points[detector.MiddleMCP], fingerOpenRatio)
	ringOpen := fingerOpen(wrist, h.Points[detector.RingTip], h.Points[detector.RingMCP], fingerOpenRatio)
	pinkyOpen := fingerOpen(wrist, h.Points[detector.PinkyTip], h.Points[detector.PinkyMCP], fingerOpenRatio)

	// The thumb is only consulted to sharpen fist detection; it is too
	// noisy to participate in the open-palm and pointing decisions.
	thumbOpen := fingerOpen(wrist, h.Points[detector.ThumbTip], h.Points[detector.ThumbMCP], thumbOpenRatio)

	openCount := 0
	for _, open := range []bool{indexOpen, middleOpen, ringOpen, pinkyOpen} {
		if open {
			openCount++
		}
	}

	switch {
	case indexOpen && openCount == 1:
		return Stream
	case openCount == 0 && !thumbOpen:
		return Sphere
	case openCount == 4:
		return Shield
	default:
		return Stream
	}
}

// fingerOpen reports whether a finger is extended, comparing the wrist
// distance of its tip against its base joint scaled by the ratio margin.
func fingerOpen(wrist, tip, base detector.Point3D, ratio float64) bool {
	return dist3(wrist, tip) > dist3(wrist, base)*ratio
}

func dist3(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
