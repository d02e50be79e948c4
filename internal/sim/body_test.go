package sim

import (
	"math"
	"testing"
)

func TestStepDeterministic(t *testing.T) {
	masses := []float64{1000, 50}
	initial := BodyState{
		{Position: Vector2D{0, 0}, Velocity: Vector2D{0, 0}},
		{Position: Vector2D{600, 0}, Velocity: Vector2D{0, orbitalSpeed(1000, 600)}},
	}

	a := Step(initial.Clone(), masses, DtFixed)
	b := Step(initial.Clone(), masses, DtFixed)

	if a[0].Position != b[0].Position || a[1].Position != b[1].Position {
		t.Fatalf("Step is not deterministic: %v vs %v", a, b)
	}
}

func TestStepMinDistClamp(t *testing.T) {
	masses := []float64{1000, 50}
	initial := BodyState{
		{Position: Vector2D{0, 0}, Velocity: Vector2D{}},
		{Position: Vector2D{1, 0}, Velocity: Vector2D{}}, // well inside MinDist
	}

	next := Step(initial, masses, DtFixed)
	for i, f := range next {
		if math.IsNaN(f.Position.X) || math.IsNaN(f.Position.Y) || math.IsInf(f.Velocity.Magnitude(), 0) {
			t.Fatalf("body %d produced non-finite state at sub-MinDist separation: %+v", i, f)
		}
	}
}

func TestOrbitStability(t *testing.T) {
	// Scenario 1 (§8): Sol(mass=1000,r=80 @origin), Terra(mass=50,r=25
	// @(600,0), vy=sqrt(50*1000/600)). After one full period Terra returns
	// within 5 world units of (600,0).
	masses := []float64{1000, 50}
	vy := orbitalSpeed(1000, 600)
	state := BodyState{
		{Position: Vector2D{0, 0}, Velocity: Vector2D{0, 0}},
		{Position: Vector2D{600, 0}, Velocity: Vector2D{0, vy}},
	}

	period := 2 * math.Pi * 600 / vy
	steps := int(period / DtFixed)

	for i := 0; i < steps; i++ {
		state = Step(state, masses, DtFixed)
	}

	dist := state[1].Position.Distance(Vector2D{600, 0})
	if dist > 5 {
		t.Errorf("Terra drifted %.3f world units from start after one period, want <= 5", dist)
	}
	t.Logf("Terra position after one period: %+v (distance %.4f)", state[1].Position, dist)
}

func TestEnergyConservation(t *testing.T) {
	// Scenario 2 (§8): total energy drifts by less than 2% over 100s.
	masses := []float64{1000, 50}
	vy := orbitalSpeed(1000, 600)
	state := BodyState{
		{Position: Vector2D{0, 0}, Velocity: Vector2D{0, 0}},
		{Position: Vector2D{600, 0}, Velocity: Vector2D{0, vy}},
	}

	energy := func(s BodyState) float64 {
		ke := 0.0
		for i, f := range s {
			ke += 0.5 * masses[i] * f.Velocity.Dot(f.Velocity)
		}
		pe := 0.0
		for i := range s {
			for j := i + 1; j < len(s); j++ {
				d := s[i].Position.Distance(s[j].Position)
				if d < MinDist {
					d = MinDist
				}
				pe -= G * masses[i] * masses[j] / d
			}
		}
		return ke + pe
	}

	e0 := energy(state)
	simTime := 100.0
	steps := int(simTime / DtFixed)
	for i := 0; i < steps; i++ {
		state = Step(state, masses, DtFixed)
	}
	e1 := energy(state)

	drift := math.Abs((e1 - e0) / e0)
	if drift > 0.02 {
		t.Errorf("energy drifted %.4f%% over 100s, want <= 2%%", drift*100)
	}
}
