package sim

// BodyID is a stable integer id into World's dense body array (§9:
// back-references are lookup relations via stable ids, not pointers).
type BodyID int

// Body is a gravitationally massive point. Mass and radius are immutable
// after init; position and velocity are owned by the PredictionBuffer head
// and only ever reflect the most recently popped frame.
type Body struct {
	ID       BodyID
	Name     string
	Position Vector2D
	Velocity Vector2D
	Mass     float64
	Radius   float64
}

// BodyFrame is one body's (position, velocity) at a single buffer frame.
type BodyFrame struct {
	Position Vector2D
	Velocity Vector2D
}

// BodyState is the dense, stable-order state vector the integrator advances.
type BodyState []BodyFrame

// Clone returns an independent copy of the state vector.
func (s BodyState) Clone() BodyState {
	out := make(BodyState, len(s))
	copy(out, s)
	return out
}

// Step advances every body in states by one fixed timestep under mutual
// gravitation, via explicit symplectic-Euler integration (§4.1). masses is
// indexed the same as states. The singularity at r=0 is clamped by MinDist,
// so step never divides by zero.
func Step(states BodyState, masses []float64, dt float64) BodyState {
	n := len(states)
	next := make(BodyState, n)

	for i := 0; i < n; i++ {
		acc := Vector2D{}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			r := states[j].Position.Sub(states[i].Position)
			dist := r.Magnitude()
			if dist < MinDist {
				dist = MinDist
			}
			factor := G * masses[j] / (dist * dist * dist)
			acc = acc.Add(r.Scale(factor))
		}
		v := states[i].Velocity.Add(acc.Scale(dt))
		p := states[i].Position.Add(v.Scale(dt))
		next[i] = BodyFrame{Position: p, Velocity: v}
	}

	return next
}

// Gravity returns the instantaneous gravitational acceleration at pos from
// every body in states, used by craft stepping where the craft itself
// contributes no mass.
func Gravity(states BodyState, masses []float64, pos Vector2D) Vector2D {
	acc := Vector2D{}
	for j, s := range states {
		r := s.Position.Sub(pos)
		dist := r.Magnitude()
		if dist < MinDist {
			dist = MinDist
		}
		factor := G * masses[j] / (dist * dist * dist)
		acc = acc.Add(r.Scale(factor))
	}
	return acc
}
