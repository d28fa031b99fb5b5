package e2e

import (
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"encoding/json"

	"github.com/golang/geo/r3"

	"github.com/ayusman/murmur/internal/detector"
	"github.com/ayusman/murmur/internal/formation"
	"github.com/ayusman/murmur/internal/gesture"
	"github.com/ayusman/murmur/internal/server"
	"github.com/ayusman/murmur/internal/store"
	"github.com/ayusman/murmur/internal/track"
	"github.com/ayusman/murmur/testdata"
)

const frameMs = 1000.0 / 30.0

// runSignalChain feeds observations through tracker and engine the way the
// pipeline does, returning the per-frame states.
func runSignalChain(tracker *track.Tracker, engine *formation.Engine, frames [][]detector.HandLandmarks) []track.State {
	states := make([]track.State, len(frames))
	ts := 1000.0
	for i, hands := range frames {
		state := tracker.Process(hands, ts)
		if state.Detected {
			engine.SetTarget2D(state.X, state.Y)
		}
		engine.SetMode(formation.ModeFromLabel(state.Gesture))
		engine.Advance(1.0 / 30.0)
		states[i] = state
		ts += frameMs
	}
	return states
}

func TestE2E_StreamFormationScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tracker := track.New(track.DefaultConfig())
	cfg := formation.DefaultConfig()
	cfg.AgentCount = 24
	engine := formation.NewEngine(cfg)

	frames := testdata.PointingDrift(5, 0.005)
	states := runSignalChain(tracker, engine, frames)

	// The gesture commits on the third stable frame
	if states[0].Gesture != gesture.Idle || states[1].Gesture != gesture.Idle {
		t.Errorf("gesture before commit = %s, %s, want idle", states[0].Gesture, states[1].Gesture)
	}
	for i := 2; i < 5; i++ {
		if states[i].Gesture != gesture.Stream {
			t.Errorf("frame %d gesture = %s, want %s", i, states[i].Gesture, gesture.Stream)
		}
	}
	if engine.Mode() != formation.ModeStream {
		t.Errorf("engine mode = %s, want %s", engine.Mode(), formation.ModeStream)
	}

	// Every frame was tracked
	for i, st := range states {
		if !st.Detected {
			t.Errorf("frame %d not detected", i)
		}
	}
}

func TestE2E_TargetApproachesPointer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tracker := track.New(track.DefaultConfig())
	cfg := formation.DefaultConfig()
	cfg.AgentCount = 8
	engine := formation.NewEngine(cfg)

	// A steady pointer: the filtered state settles immediately, so the
	// engine target must close in on the same plane point every frame
	frames := testdata.PointingDrift(12, 0)

	var prevDist float64
	ts := 1000.0
	for i, hands := range frames {
		state := tracker.Process(hands, ts)
		engine.SetTarget2D(state.X, state.Y)
		engine.SetMode(formation.ModeFromLabel(state.Gesture))
		engine.Advance(1.0 / 30.0)
		ts += frameMs

		want := r3.Vector{
			X: state.X * cfg.PlaneHalfWidth,
			Y: state.Y * cfg.PlaneHalfHeight,
		}
		dist := engine.Target().Sub(want).Norm()

		if i > 0 && dist >= prevDist {
			t.Fatalf("frame %d: target distance %f did not shrink (was %f)", i, dist, prevDist)
		}
		prevDist = dist
	}
}

func TestE2E_ColorsConvergeOnMode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tracker := track.New(track.DefaultConfig())
	cfg := formation.DefaultConfig()
	cfg.AgentCount = 8
	engine := formation.NewEngine(cfg)

	runSignalChain(tracker, engine, testdata.PointingDrift(5, 0))

	distAt := func() float64 {
		total := 0.0
		for _, a := range engine.Agents() {
			total += a.Color.DistanceRgb(cfg.StreamColor)
		}
		return total
	}

	before := distAt()
	runSignalChain(tracker, engine, testdata.PointingDrift(30, 0))
	after := distAt()

	if !(after < before) {
		t.Errorf("agent colors did not converge on stream color: before %f, after %f", before, after)
	}
}

func TestE2E_ShortDropoutHoldsFormation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tracker := track.New(track.DefaultConfig())
	cfg := formation.DefaultConfig()
	cfg.AgentCount = 8
	engine := formation.NewEngine(cfg)

	// Five fist frames, a two-frame gap, then the fist returns
	frames := testdata.Dropout(detector.FistLandmarks(), 5, 2, 1)
	states := runSignalChain(tracker, engine, frames)

	// During the short gap the last state is held
	for i := 5; i < 7; i++ {
		if !states[i].Detected {
			t.Errorf("frame %d should hold detected state through short dropout", i)
		}
		if states[i].Gesture != gesture.Sphere {
			t.Errorf("frame %d gesture = %s, want %s", i, states[i].Gesture, gesture.Sphere)
		}
	}
	if engine.Mode() != formation.ModeSphere {
		t.Errorf("engine mode = %s, want %s", engine.Mode(), formation.ModeSphere)
	}
}

func TestE2E_SustainedLossResetsToIdle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tracker := track.New(track.DefaultConfig())
	cfg := formation.DefaultConfig()
	cfg.AgentCount = 8
	engine := formation.NewEngine(cfg)

	frames := testdata.Dropout(detector.FistLandmarks(), 5, 3, 0)
	states := runSignalChain(tracker, engine, frames)

	last := states[len(states)-1]
	if last.Detected {
		t.Error("expected lost state after three-frame dropout")
	}
	if last.Gesture != gesture.Idle {
		t.Errorf("gesture = %s, want %s", last.Gesture, gesture.Idle)
	}
	if last.X != 0 || last.Y != 0 || last.Confidence != 0 {
		t.Errorf("expected zeroed state after loss, got %+v", last)
	}
	if engine.Mode() != formation.ModeIdle {
		t.Errorf("engine mode = %s, want %s", engine.Mode(), formation.ModeIdle)
	}
}

func TestE2E_SessionRecordingOverAPI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := server.New(server.Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// Start a session
	resp, err := client.Post(
		ts.URL+"/api/sessions",
		"application/json",
		strings.NewReader(`{"name": "pipeline run"}`),
	)
	if err != nil {
		t.Fatalf("create session error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	// Run the signal chain and record the resulting states
	tracker := track.New(track.DefaultConfig())
	cfg := formation.DefaultConfig()
	cfg.AgentCount = 8
	engine := formation.NewEngine(cfg)

	states := runSignalChain(tracker, engine, testdata.PointingDrift(5, 0.005))

	samples := make([]store.SessionSample, len(states))
	for i, st := range states {
		samples[i] = store.SessionSample{
			Seq:         i,
			Detected:    st.Detected,
			X:           st.X,
			Y:           st.Y,
			Gesture:     string(st.Gesture),
			Confidence:  st.Confidence,
			TimestampMs: 1000.0 + frameMs*float64(i),
		}
	}
	body, _ := json.Marshal(map[string]any{"samples": samples})

	resp, err = client.Post(
		ts.URL+"/api/sessions/"+created.ID+"/samples",
		"application/json",
		strings.NewReader(string(body)),
	)
	if err != nil {
		t.Fatalf("post samples error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("post samples status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	resp.Body.Close()

	// Read the recording back
	resp, err = client.Get(ts.URL + "/api/sessions/" + created.ID + "/samples")
	if err != nil {
		t.Fatalf("get samples error = %v", err)
	}

	var listed struct {
		Samples []store.SessionSample `json:"samples"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Samples) != len(samples) {
		t.Fatalf("len(samples) = %d, want %d", len(listed.Samples), len(samples))
	}
	if listed.Samples[4].Gesture != string(gesture.Stream) {
		t.Errorf("last recorded gesture = %s, want %s", listed.Samples[4].Gesture, gesture.Stream)
	}
	if math.Abs(listed.Samples[0].TimestampMs-1000.0) > 1e-6 {
		t.Errorf("first timestamp = %f, want 1000", listed.Samples[0].TimestampMs)
	}

	// End the session and confirm the frame count
	resp, _ = client.Post(
		ts.URL+"/api/sessions/"+created.ID+"/end",
		"application/json",
		strings.NewReader(`{"frames": 5}`),
	)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end session status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var ended store.Session
	json.NewDecoder(resp.Body).Decode(&ended)
	resp.Body.Close()

	if ended.EndedAt == nil {
		t.Error("expected ended session to carry EndedAt")
	}
}
