package sim

import (
	"math"
	"testing"
)

func TestOrbitPositionIsPureFunctionOfParent(t *testing.T) {
	parent := Body{Position: Vector2D{600, 0}, Radius: 25}
	cs := NewOrbiting(0, 5, 0, 1)

	pos := OrbitPosition(cs, parent)
	want := Vector2D{630, 0}
	if math.Abs(pos.X-want.X) > 1e-9 || math.Abs(pos.Y-want.Y) > 1e-9 {
		t.Fatalf("OrbitPosition = %+v, want %+v", pos, want)
	}
}

func TestAdvanceOrbitingWrapsAngle(t *testing.T) {
	parent := Body{Position: Vector2D{600, 0}, Radius: 25, Mass: 50}
	cs := NewOrbiting(0, 5, 2*math.Pi-0.001, 1)

	AdvanceOrbiting(&cs, parent, 10.0, 1) // large dt to force wraparound

	if cs.Angle < 0 || cs.Angle >= 2*math.Pi {
		t.Fatalf("Angle = %.6f not wrapped into [0, 2pi)", cs.Angle)
	}
}

func TestEscapeBoostClearsAtCutoff(t *testing.T) {
	// Launch a craft from a single, isolated parent and confirm IsAccelerating
	// clears once relative speed reaches 1.1*EscVel (§4.1, resolved Open
	// Question in §9).
	masses := []float64{1000}
	initial := BodyState{{Position: Vector2D{}, Velocity: Vector2D{}}}
	n := HorizonFrames()
	frames := make([]BodyState, n)
	state := initial
	for i := range frames {
		state = Step(state, masses, DtFixed)
		frames[i] = state
	}
	snap := Snapshot{Masses: masses, Frames: frames}

	cs := NewOrbiting(0, 5, 0, 1)
	launch := LaunchFrom(cs, BodyFrame{Position: Vector2D{}, Velocity: Vector2D{}}, 1000, 80, 1)

	traj := SimulateTrajectory(snap, 0, launch, 0, nil, true)

	clearedAt := -1
	for i, f := range traj {
		if !f.IsAccelerating {
			clearedAt = i
			break
		}
	}
	if clearedAt < 0 {
		t.Fatalf("boost never cleared over %d simulated frames", len(traj))
	}

	relSpeed := traj[clearedAt].Velocity.Magnitude()
	cutoff := escapeCutoff * launch.EscVel
	if relSpeed < cutoff*0.9 {
		t.Errorf("boost cleared too early: speed %.4f well under cutoff %.4f", relSpeed, cutoff)
	}
}

func TestAdvanceFreeRefillDoesNotReigniteClearedBoost(t *testing.T) {
	// A destinationless free craft whose escape boost has already cleared
	// (IsAccelerating false, low relative speed well under a generous
	// EscVel) drains its last buffered frame and must refill without
	// spuriously re-applying one frame of CraftAccel thrust (§4.3).
	masses := []float64{1000}
	initial := BodyState{{Position: Vector2D{}, Velocity: Vector2D{}}}
	n := HorizonFrames()
	frames := make([]BodyState, n)
	state := initial
	for i := range frames {
		state = Step(state, masses, DtFixed)
		frames[i] = state
	}
	snap := Snapshot{Masses: masses, Frames: frames}

	lastFrame := CraftFrame{Position: Vector2D{500, 0}, Velocity: Vector2D{0, 10}, IsAccelerating: false}
	cs := CraftState{
		Phase:          PhaseFree,
		Position:       lastFrame.Position,
		Velocity:       lastFrame.Velocity,
		IsAccelerating: false,
		EscVel:         1e6, // cutoff far out of reach at this speed
		LaunchBody:     0,
		OrbitDir:       1,
		Trajectory:     NewCraftTrajectoryBuffer([]CraftFrame{lastFrame}),
	}

	AdvanceFree(&cs, nil, snap)

	if cs.Trajectory.Len() == 0 {
		t.Fatalf("expected AdvanceFree to refill the trajectory buffer")
	}
	refilled, ok := cs.Trajectory.PopFront()
	if !ok {
		t.Fatalf("expected a refilled frame")
	}
	if refilled.IsAccelerating {
		t.Fatalf("refill re-ignited escape boost after cutoff had already cleared it")
	}
}

func TestCaptureIsIdempotent(t *testing.T) {
	dest := Body{ID: 1, Position: Vector2D{600, 0}, Velocity: Vector2D{0, 9}, Mass: 50, Radius: 25}
	cs := CraftState{
		Phase:    PhaseFree,
		Position: Vector2D{620, 10},
		OrbitDir: 1,
	}

	captured := capture(cs, dest)
	if captured.Phase != PhaseOrbiting {
		t.Fatalf("capture did not transition to Orbiting")
	}
	if captured.Parent != dest.ID {
		t.Fatalf("captured.Parent = %v, want %v", captured.Parent, dest.ID)
	}
	if captured.Altitude != CraftOrbitalAlt {
		t.Fatalf("captured.Altitude = %v, want %v", captured.Altitude, CraftOrbitalAlt)
	}

	pos := OrbitPosition(captured, dest)
	wantR := dest.Radius + CraftOrbitalAlt
	gotR := pos.Distance(dest.Position)
	if math.Abs(gotR-wantR) > 1e-9 {
		t.Errorf("captured position is %.6f from dest, want exactly %.6f", gotR, wantR)
	}

	// Advancing zero ticks must leave it unchanged (idempotence, §8): once
	// Orbiting, position is a pure function of (parent, altitude, angle),
	// none of which AdvanceOrbiting touches when dt is zero.
	before := captured
	AdvanceOrbiting(&captured, dest, 0, 1)
	if captured.Angle != before.Angle || captured.Parent != before.Parent || captured.Altitude != before.Altitude {
		t.Errorf("advancing zero ticks after capture changed state: %+v -> %+v", before, captured)
	}
}
