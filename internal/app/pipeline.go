package app

import (
	"log"
	"time"

	"github.com/ayusman/murmur/internal/capture"
	"github.com/ayusman/murmur/internal/detector"
	"github.com/ayusman/murmur/internal/formation"
	"github.com/ayusman/murmur/internal/server"
	"github.com/ayusman/murmur/internal/store"
	"github.com/ayusman/murmur/internal/track"
)

// runPipeline is the main tracking loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS)
// 2. On motion detected, switch to active mode (ActiveFPS)
// 3. Run hand detection and feed the tracker
// 4. Steer the formation engine from the tracking state
// 5. Advance the engine by the real frame delta and broadcast the frame
// 6. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	// Track whether we're in active mode
	activeMode := false

	// Track the last motion detection time
	lastMotionTime := time.Now()

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(capture.IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-a.stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTick).Seconds()
			lastTick = now

			// Skip processing if tracking is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = now

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(capture.ActiveFPS)
					frameInterval = time.Second / time.Duration(capture.ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if now.Sub(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(capture.IdleFPS)
					frameInterval = time.Second / time.Duration(capture.IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Step 2: Hand detection only while active; idle frames feed
			// the tracker an empty observation so its loss policy runs
			var hands []detector.HandLandmarks
			if activeMode && a.Detector() != nil {
				hands, err = a.Detector().Detect(frame)
				if err != nil {
					log.Printf("Error detecting hands: %v", err)
					hands = nil
				}
			}
			frame.Close()

			a.step(hands, now, dt)
		}
	}
}

// step runs one pipeline tick on an observation: tracker update, engine
// steering, broadcast, and optional session recording.
func (a *App) step(hands []detector.HandLandmarks, now time.Time, dt float64) {
	timestampMs := float64(now.UnixMilli())
	state := a.tracker.Process(hands, timestampMs)

	// Steer the formation. The target only moves while the hand is
	// tracked; the mode follows the committed gesture, which collapses
	// to idle once the loss threshold passes.
	if state.Detected {
		a.engine.SetTarget2D(state.X, state.Y)
	}
	a.engine.SetMode(formation.ModeFromLabel(state.Gesture))
	a.engine.Advance(dt)

	if hub := a.hubRef(); hub != nil {
		hub.Publish(server.Frame{
			State:     state,
			Agents:    server.SnapshotAgents(a.engine.Agents()),
			Timestamp: now.UnixMilli(),
		})
	}

	a.record(state, timestampMs)
}

// record appends the state to the active recording session, flushing in
// batches.
func (a *App) record(state track.State, timestampMs float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return
	}

	a.sampleBuf = append(a.sampleBuf, store.SessionSample{
		Seq:         a.seq,
		Detected:    state.Detected,
		X:           state.X,
		Y:           state.Y,
		Gesture:     string(state.Gesture),
		Confidence:  state.Confidence,
		TimestampMs: timestampMs,
	})
	a.seq++

	if len(a.sampleBuf) >= SampleFlushSize {
		if err := a.config.Store.Sessions().AppendSamples(a.session.ID, a.sampleBuf); err != nil {
			log.Printf("Error writing session samples: %v", err)
		}
		a.sampleBuf = a.sampleBuf[:0]
	}
}

func (a *App) hubRef() *server.StateHandler {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hub
}
