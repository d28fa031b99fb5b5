package formation

import (
	"math"

	"github.com/golang/geo/r3"
)

// Animation constants for the per-mode target formulas.
const (
	streamBreathRate = 0.5
	streamBreathAmp  = 0.2
	streamWanderAmp  = 0.25

	sphereSpin = 0.3
	shieldSpin = 0.4

	idleSpin       = 0.25
	idleBreathRate = 0.4
	idleBreathAmp  = 0.15
	idleBobAmp     = 0.3

	// goldenAngle is the equal-area spherical increment used to spread
	// agents over the sphere without clustering.
	goldenAngle = math.Pi * (3.0 - 2.2360679774997896) // π(3-√5)
)

// targetFor computes the agent's current target position for the active
// mode. Unknown modes resolve to the idle formula.
func (e *Engine) targetFor(a *Agent) r3.Vector {
	switch e.mode {
	case ModeStream:
		return e.streamTarget(a)
	case ModeSphere:
		return e.sphereTarget(a)
	case ModeShield:
		return e.shieldTarget(a)
	default:
		return e.idleTarget(a)
	}
}

// streamTarget trails the pointer: the agent's static offset scaled by a
// slow global breathing oscillation, plus per-axis sinusoidal wander with
// identity-derived phases so neighbors never move in lockstep.
func (e *Engine) streamTarget(a *Agent) r3.Vector {
	breath := math.Sin(e.clock*streamBreathRate)*streamBreathAmp + 1.0

	return r3.Vector{
		X: e.target.X + a.offset.X*breath + math.Sin(e.clock*a.freq+a.phaseX)*streamWanderAmp,
		Y: e.target.Y + a.offset.Y*breath + math.Sin(e.clock*a.freq+a.phaseY)*streamWanderAmp,
		Z: e.target.Z + a.offset.Z*breath + math.Sin(e.clock*a.freq+a.phaseZ)*streamWanderAmp,
	}
}

// sphereTarget places the agent on a Fibonacci sphere around the target
// point, the whole shell rotating slowly. Every target sits exactly at the
// current eased radius from the target point.
func (e *Engine) sphereTarget(a *Agent) r3.Vector {
	n := float64(len(e.agents))
	i := float64(a.ID)

	y := 1.0 - 2.0*(i+0.5)/n
	ring := math.Sqrt(1.0 - y*y)
	theta := goldenAngle*i + e.clock*sphereSpin

	unit := r3.Vector{
		X: math.Cos(theta) * ring,
		Y: y,
		Z: math.Sin(theta) * ring,
	}
	return e.target.Add(unit.Mul(e.radius))
}

// shieldTarget spaces the agents evenly on a rotating circle in the
// formation plane around the target point.
func (e *Engine) shieldTarget(a *Agent) r3.Vector {
	n := float64(len(e.agents))
	angle := 2.0*math.Pi*float64(a.ID)/n + e.clock*shieldSpin

	return r3.Vector{
		X: e.target.X + math.Cos(angle)*e.radius,
		Y: e.target.Y + math.Sin(angle)*e.radius,
		Z: e.target.Z,
	}
}

// idleTarget orbits the world origin, not the target point: with no hand
// tracked the swarm drifts home. Each agent keeps an identity-derived
// angular offset and the orbit radius slowly breathes.
func (e *Engine) idleTarget(a *Agent) r3.Vector {
	n := float64(len(e.agents))
	angle := 2.0*math.Pi*float64(a.ID)/n + e.clock*idleSpin
	radius := e.radius * (1.0 + math.Sin(e.clock*idleBreathRate+a.phaseX)*idleBreathAmp)

	return r3.Vector{
		X: math.Cos(angle) * radius,
		Y: math.Sin(angle) * radius,
		Z: math.Sin(e.clock*a.freq+a.phaseZ) * idleBobAmp,
	}
}
