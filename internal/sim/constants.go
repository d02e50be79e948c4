package sim

import (
	"math"
	"time"
)

// Integrator and world constants, held fixed for determinism (§8: replay of
// a trajectory must reproduce its score to within 1e-9).
const (
	G       = 50.0
	MinDist = 10.0
	DtFixed = 0.033 // seconds

	HorizonTime = 360.0 // seconds
	SolidTime   = 320.0 // seconds

	MaxCatchup = 100 // frames appended to the tail per shift (steady state)

	CraftAccel      = 2.5
	CraftOrbitalAlt = 5.0

	MinLaunchLead       = 5.0   // seconds
	MinTrajectoryRunway = 200.0 // seconds
	BatchSize           = 50
	PreOptThreshold     = 20.0
	PostOptThreshold    = 5.0
	MaxIterations       = 10000

	// escapeCutoff is the factor applied to sqrt(2GM/r) at which the launch
	// boost is cleared. The spec's source comments describe "2x escape
	// velocity" but the normative cutoff is 1.1 * sqrt(2GM/r).
	escapeCutoff = 1.1
)

// HorizonFrames is ceil(HorizonTime / DtFixed).
func HorizonFrames() int {
	return int(math.Ceil(HorizonTime / DtFixed))
}

// SolidFrames is the solid (non-fade) prefix length of the prediction buffer.
func SolidFrames() int {
	return int(math.Ceil(SolidTime / DtFixed))
}

// correctionMaxDuration bounds a correction burn to at most 10 seconds of
// frames, per the optimizer's neighbor bound.
func correctionMaxDuration() int {
	return int(math.Ceil(10.0 / DtFixed))
}

// TickInterval is the wall-clock period of the ticker that engine.Engine's
// run loop uses to advance the simulation, alongside any ticks driven
// externally via the control API's /tick route.
const TickInterval = 16 * time.Millisecond
