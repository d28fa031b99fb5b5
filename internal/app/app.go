// Package app provides the main application logic for the Murmur hand tracking system.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/murmur/internal/capture"
	"github.com/ayusman/murmur/internal/detector"
	"github.com/ayusman/murmur/internal/formation"
	"github.com/ayusman/murmur/internal/server"
	"github.com/ayusman/murmur/internal/store"
	"github.com/ayusman/murmur/internal/track"
)

// Pipeline timing constants.
const (
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
	// SampleFlushSize is the number of recorded samples buffered before a batch write.
	SampleFlushSize = 30
)

// Config holds configuration options for the application.
type Config struct {
	Store          *store.Store
	CameraID       int
	MotionThresh   float64
	Tracker        track.Config
	Formation      formation.Config
	RecordSessions bool
}

// App is the main application that orchestrates hand tracking and the
// formation engine.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	tracker  *track.Tracker
	engine   *formation.Engine
	hub      *server.StateHandler

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}

	session   *store.Session
	sampleBuf []store.SessionSample
	seq       int
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	// track.New and its sub-component constructors default their own zero
	// fields, so caller-supplied partial tuning passes through untouched.
	trackerCfg := config.Tracker

	formationCfg := config.Formation
	if formationCfg.AgentCount == 0 {
		formationCfg = formation.DefaultConfig()
	}

	a := &App{
		config:  config,
		camera:  capture.NewCamera(config.CameraID),
		motion:  capture.NewMotionDetector(motionThreshold),
		tracker: track.New(trackerCfg),
		engine:  formation.NewEngine(formationCfg),
		enabled: false,
		stopCh:  nil,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables hand tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether hand tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetHub sets the websocket hub that receives per-frame broadcasts.
func (a *App) SetHub(h *server.StateHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hub = h
}

// Start begins the tracking pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(capture.IdleFPS)

	if a.config.RecordSessions && a.config.Store != nil {
		session := &store.Session{
			ID:   uuid.New().String(),
			Name: time.Now().Format("session 2006-01-02 15:04:05"),
		}
		if err := a.config.Store.Sessions().Create(session); err != nil {
			log.Printf("Error creating recording session: %v", err)
		} else {
			a.session = session
			a.seq = 0
		}
	}

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts the tracking pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// Flush and close any recording session
	if a.session != nil {
		if len(a.sampleBuf) > 0 {
			if err := a.config.Store.Sessions().AppendSamples(a.session.ID, a.sampleBuf); err != nil {
				log.Printf("Error flushing session samples: %v", err)
			}
			a.sampleBuf = nil
		}
		if err := a.config.Store.Sessions().End(a.session.ID, a.seq); err != nil {
			log.Printf("Error ending session: %v", err)
		}
		a.session = nil
	}

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close motion detector
	a.motion.Close()

	// Close the hand detector if set
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Tracking pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Tracker returns the tracking state aggregator.
func (a *App) Tracker() *track.Tracker {
	return a.tracker
}

// Engine returns the formation engine.
func (a *App) Engine() *formation.Engine {
	return a.engine
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
