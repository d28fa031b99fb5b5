// Package formation animates a fixed swarm of agents toward gesture-driven
// shapes around a tracked pointer.
package formation

import (
	"math"
	"math/rand"

	"github.com/charmbracelet/harmonica"
	"github.com/golang/geo/r3"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/murmur/internal/gesture"
)

// Mode selects the active target formula and motion constants. It mirrors
// the committed gesture label on the engine side.
type Mode string

const (
	ModeIdle   Mode = "idle"
	ModeStream Mode = "stream"
	ModeSphere Mode = "sphere"
	ModeShield Mode = "shield"
)

// ModeFromLabel maps a committed gesture label onto a formation mode.
// Unknown labels fall back to ModeIdle.
func ModeFromLabel(l gesture.Label) Mode {
	switch l {
	case gesture.Stream:
		return ModeStream
	case gesture.Sphere:
		return ModeSphere
	case gesture.Shield:
		return ModeShield
	default:
		return ModeIdle
	}
}

// Motion holds the spring-damper constants applied to agents in one mode.
type Motion struct {
	// Spring scales the per-frame pull toward the target position.
	Spring float64
	// Damping multiplies the velocity each frame; values near 1 preserve
	// momentum, lower values settle faster.
	Damping float64
}

// Config holds all tunable constants of the formation engine.
type Config struct {
	// AgentCount is the fixed size of the swarm. Zero is legal and makes
	// the engine a no-op.
	AgentCount int

	// Seed drives the per-agent personality randomization. The same seed
	// always produces the same swarm.
	Seed int64

	// PlaneHalfWidth and PlaneHalfHeight map NDC pointer coordinates onto
	// the z=0 formation plane in scene units.
	PlaneHalfWidth  float64
	PlaneHalfHeight float64

	// TargetGain scales the pointer catch-up speed; the interpolation
	// factor is clamped to [TargetLerpMin, TargetLerpMax] so large jumps
	// catch up fast while small jitter stays heavily damped.
	TargetGain    float64
	TargetLerpMin float64
	TargetLerpMax float64

	SphereRadius    float64
	ShieldRadius    float64
	IdleOrbitRadius float64

	// RadiusFrequency and RadiusDamping tune the spring that eases the
	// formation radius between modes.
	RadiusFrequency float64
	RadiusDamping   float64

	// ColorBlend is the per-frame exponential blend factor toward the
	// active mode color.
	ColorBlend float64

	StreamMotion Motion
	SphereMotion Motion
	ShieldMotion Motion
	IdleMotion   Motion

	StreamColor colorful.Color
	SphereColor colorful.Color
	ShieldColor colorful.Color
	IdleColor   colorful.Color
}

// DefaultConfig returns the standard engine tuning for a 72-agent swarm.
func DefaultConfig() Config {
	return Config{
		AgentCount:      72,
		Seed:            1,
		PlaneHalfWidth:  3.0,
		PlaneHalfHeight: 2.0,
		TargetGain:      0.08,
		TargetLerpMin:   0.06,
		TargetLerpMax:   0.22,
		SphereRadius:    0.6,
		ShieldRadius:    1.4,
		IdleOrbitRadius: 2.2,
		RadiusFrequency: 4.5,
		RadiusDamping:   0.85,
		ColorBlend:      0.05,

		// Sphere is the stiffest and least damped mode so the fist snap
		// reads as a snap; idle is the softest drift.
		StreamMotion: Motion{Spring: 0.045, Damping: 0.90},
		SphereMotion: Motion{Spring: 0.09, Damping: 0.94},
		ShieldMotion: Motion{Spring: 0.05, Damping: 0.90},
		IdleMotion:   Motion{Spring: 0.02, Damping: 0.92},

		StreamColor: colorful.Color{R: 0.30, G: 0.85, B: 1.00},
		SphereColor: colorful.Color{R: 1.00, G: 0.36, B: 0.88},
		ShieldColor: colorful.Color{R: 0.49, G: 1.00, B: 0.70},
		IdleColor:   colorful.Color{R: 0.42, G: 0.47, B: 0.68},
	}
}

// Agent is one particle of the formation. Position, velocity, facing and
// color mutate every frame; the personality constants are fixed at creation
// so agents visibly differ in lag and wander even within one mode.
type Agent struct {
	ID    int
	Pos   r3.Vector
	Vel   r3.Vector
	Dir   r3.Vector
	Color colorful.Color

	responsiveness float64
	offset         r3.Vector
	freq           float64
	phaseX         float64
	phaseY         float64
	phaseZ         float64
}

// Engine owns the agent swarm, the shared smoothed target point and the
// active mode. All methods must be called from the single frame-loop
// goroutine; renderers read the agent slice between Advance calls.
type Engine struct {
	config Config
	agents []Agent
	target r3.Vector
	mode   Mode
	clock  float64

	radius       float64
	radiusVel    float64
	radiusSpring harmonica.Spring
}

// NewEngine creates an engine with AgentCount agents scattered on the idle
// orbit. A negative count is treated as zero.
func NewEngine(config Config) *Engine {
	if config.AgentCount < 0 {
		config.AgentCount = 0
	}

	e := &Engine{
		config:       config,
		mode:         ModeIdle,
		radius:       config.IdleOrbitRadius,
		radiusSpring: harmonica.NewSpring(harmonica.FPS(60), config.RadiusFrequency, config.RadiusDamping),
	}

	rng := rand.New(rand.NewSource(config.Seed))
	e.agents = make([]Agent, config.AgentCount)
	for i := range e.agents {
		a := &e.agents[i]
		a.ID = i
		a.responsiveness = 0.7 + rng.Float64()*0.6
		a.offset = r3.Vector{
			X: (rng.Float64() - 0.5) * 1.0,
			Y: (rng.Float64() - 0.5) * 0.8,
			Z: (rng.Float64() - 0.5) * 0.6,
		}
		a.freq = 0.6 + rng.Float64()*0.9
		a.phaseX = float64(i) * 1.7
		a.phaseY = float64(i)*2.3 + 1.0
		a.phaseZ = float64(i)*3.1 + 2.0

		angle := 2 * math.Pi * float64(i) / float64(max(1, config.AgentCount))
		a.Pos = r3.Vector{
			X: math.Cos(angle) * config.IdleOrbitRadius,
			Y: math.Sin(angle) * config.IdleOrbitRadius,
			Z: (rng.Float64() - 0.5) * 0.4,
		}
		a.Dir = r3.Vector{Z: 1}
		a.Color = config.IdleColor
	}

	return e
}

// SetTarget2D maps a pointer in normalized device coordinates onto the z=0
// formation plane and eases the shared target point toward it. The
// interpolation factor scales with distance so big pointer jumps catch up
// quickly while small jitter barely moves the target.
func (e *Engine) SetTarget2D(x, y float64) {
	p := r3.Vector{
		X: x * e.config.PlaneHalfWidth,
		Y: y * e.config.PlaneHalfHeight,
	}

	d := p.Sub(e.target).Norm()
	t := clamp(d*e.config.TargetGain, e.config.TargetLerpMin, e.config.TargetLerpMax)
	e.target = e.target.Add(p.Sub(e.target).Mul(t))
}

// SetMode switches the active formation mode. Unrecognized modes are kept
// as-is and resolve to the idle formula and color at use sites, so a bad
// label can never fail the engine.
func (e *Engine) SetMode(m Mode) {
	e.mode = m
}

// Advance steps the simulation by dt seconds: updates the eased formation
// radius, recomputes each agent's target for the active mode and integrates
// position, velocity, facing and color. It performs no heap allocation.
func (e *Engine) Advance(dt float64) {
	if dt > 0 {
		e.clock += dt
	}

	e.radius, e.radiusVel = e.radiusSpring.Update(e.radius, e.radiusVel, e.restRadius())

	motion := e.motionFor(e.mode)
	color := e.colorFor(e.mode)

	for i := range e.agents {
		a := &e.agents[i]
		target := e.targetFor(a)

		k := motion.Spring * a.responsiveness
		a.Vel = a.Vel.Add(target.Sub(a.Pos).Mul(k)).Mul(motion.Damping)
		a.Pos = a.Pos.Add(a.Vel)

		e.orient(a, target)
		a.Color = a.Color.BlendRgb(color, e.config.ColorBlend)
	}
}

// orient updates the agent's facing vector. Sphere mode bristles outward
// along the radius from the target point through the agent; every other
// mode faces the agent toward its own target.
func (e *Engine) orient(a *Agent, target r3.Vector) {
	var dir r3.Vector
	if e.mode == ModeSphere {
		dir = a.Pos.Sub(e.target)
	} else {
		dir = target.Sub(a.Pos)
	}

	if dir.Norm() < 1e-9 {
		return // degenerate; keep the previous facing
	}
	a.Dir = dir.Normalize()
}

// Agents returns the live agent slice for read-only rendering between
// Advance calls.
func (e *Engine) Agents() []Agent {
	return e.agents
}

// Mode returns the active formation mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Target returns the shared smoothed target point.
func (e *Engine) Target() r3.Vector {
	return e.target
}

// Radius returns the current eased formation radius.
func (e *Engine) Radius() float64 {
	return e.radius
}

func (e *Engine) motionFor(m Mode) Motion {
	switch m {
	case ModeStream:
		return e.config.StreamMotion
	case ModeSphere:
		return e.config.SphereMotion
	case ModeShield:
		return e.config.ShieldMotion
	default:
		return e.config.IdleMotion
	}
}

func (e *Engine) colorFor(m Mode) colorful.Color {
	switch m {
	case ModeStream:
		return e.config.StreamColor
	case ModeSphere:
		return e.config.SphereColor
	case ModeShield:
		return e.config.ShieldColor
	default:
		return e.config.IdleColor
	}
}

// restRadius is the equilibrium the radius spring settles toward in the
// active mode. Stream ignores the radius, so it settles at the idle orbit
// value and the sphere and shield always grow or shrink in from there.
func (e *Engine) restRadius() float64 {
	switch e.mode {
	case ModeSphere:
		return e.config.SphereRadius
	case ModeShield:
		return e.config.ShieldRadius
	default:
		return e.config.IdleOrbitRadius
	}
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
