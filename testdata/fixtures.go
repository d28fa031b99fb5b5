// Package testdata provides shared landmark sequences for pipeline tests.
package testdata

import (
	"github.com/ayusman/murmur/internal/detector"
)

// PointingDrift returns n pointing-hand observations whose landmarks drift
// horizontally by step (normalized image units) per frame.
func PointingDrift(n int, step float64) [][]detector.HandLandmarks {
	frames := make([][]detector.HandLandmarks, n)
	for i := 0; i < n; i++ {
		hand := detector.PointingLandmarks()
		dx := step * float64(i)
		for j := range hand.Points {
			hand.Points[j].X += dx
		}
		frames[i] = []detector.HandLandmarks{hand}
	}
	return frames
}

// Dropout returns a sequence of lead detected frames, gap empty frames,
// and tail detected frames, all showing the given hand.
func Dropout(hand detector.HandLandmarks, lead, gap, tail int) [][]detector.HandLandmarks {
	var frames [][]detector.HandLandmarks
	for i := 0; i < lead; i++ {
		frames = append(frames, []detector.HandLandmarks{hand})
	}
	for i := 0; i < gap; i++ {
		frames = append(frames, nil)
	}
	for i := 0; i < tail; i++ {
		frames = append(frames, []detector.HandLandmarks{hand})
	}
	return frames
}
