package sim

import "math"

// CraftID is a stable integer id into World's dense craft array.
type CraftID int

// Phase is the sum-type discriminant for CraftState (§9: variant state
// modeled as explicit data constructors and exhaustive dispatch, not
// subclassing).
type Phase int

const (
	// PhaseOrbiting covers both a craft's initial orbit and the Captured
	// state the spec describes as "an alias for Orbiting after transfer" —
	// there is no behavioral difference once capture has snapped the craft
	// onto its new parent.
	PhaseOrbiting Phase = iota
	PhaseFree
)

// CorrectionBurn is a timed thrust window attached to a craft on transfer
// launch (§3, §4.4 step 4).
type CorrectionBurn struct {
	Angle      float64 // radians
	Duration   int     // frames, >= 0
	StartFrame int     // relative to launch
}

// CraftFrame is one craft's (position, velocity, thrust flag) aligned 1:1
// with a PredictionBuffer frame at the same absolute time.
type CraftFrame struct {
	Position       Vector2D
	Velocity       Vector2D
	IsAccelerating bool
}

// CraftTrajectoryBuffer is the ordered queue of future CraftFrames driving a
// Free craft. Implemented as a slice with lazy head advancement: popping the
// front reslices rather than copying, so it behaves as an O(1) FIFO per the
// design note on avoiding O(n) head-removal.
type CraftTrajectoryBuffer struct {
	frames []CraftFrame
}

func NewCraftTrajectoryBuffer(frames []CraftFrame) *CraftTrajectoryBuffer {
	return &CraftTrajectoryBuffer{frames: frames}
}

func (t *CraftTrajectoryBuffer) Len() int { return len(t.frames) }

func (t *CraftTrajectoryBuffer) PopFront() (CraftFrame, bool) {
	if len(t.frames) == 0 {
		return CraftFrame{}, false
	}
	f := t.frames[0]
	t.frames = t.frames[1:]
	return f, true
}

func (t *CraftTrajectoryBuffer) Extend(more []CraftFrame) {
	t.frames = append(t.frames, more...)
}

// CraftState is the per-craft sum type: Orbiting{parent,altitude,angle} or
// Free{...}. Only the fields relevant to the current Phase are meaningful.
type CraftState struct {
	Phase Phase

	// Orbiting fields.
	Parent    BodyID
	Altitude  float64
	Angle     float64
	OrbitDir  int // +1 or -1

	// Free fields.
	Position       Vector2D
	Velocity       Vector2D
	IsAccelerating bool
	EscVel         float64
	LaunchBody     BodyID
	FlightFrame    int
	Correction     *CorrectionBurn
	Destination    *BodyID
	Trajectory     *CraftTrajectoryBuffer
	InsertionFrame int // trajectory-relative; set on transfer launch
}

// NewOrbiting constructs a craft state parked in circular orbit around
// parent at the given altitude and angle.
func NewOrbiting(parent BodyID, altitude, angle float64, dir int) CraftState {
	if dir == 0 {
		dir = 1
	}
	return CraftState{Phase: PhaseOrbiting, Parent: parent, Altitude: altitude, Angle: angle, OrbitDir: dir}
}

// OrbitPosition returns the world position of an Orbiting craft given its
// parent body's current state.
func OrbitPosition(cs CraftState, parent Body) Vector2D {
	r := parent.Radius + cs.Altitude
	return parent.Position.Add(Vector2D{math.Cos(cs.Angle), math.Sin(cs.Angle)}.Scale(r))
}

// orbitalSpeed is the circular-orbit speed at radius r around a mass m.
func orbitalSpeed(mass, r float64) float64 {
	return math.Sqrt(G * mass / r)
}

// EscapeVelocity is sqrt(2*G*m/r), the parabolic escape speed at radius r
// from a body of mass m.
func EscapeVelocity(mass, r float64) float64 {
	return math.Sqrt(2 * G * mass / r)
}

// AdvanceOrbiting wraps a craft's orbital angle forward by dtWall*speed
// seconds at its parent's current circular-orbit angular rate.
func AdvanceOrbiting(cs *CraftState, parent Body, dtWall, speed float64) {
	r := parent.Radius + cs.Altitude
	omega := orbitalSpeed(parent.Mass, r) / r
	cs.Angle += float64(cs.OrbitDir) * omega * dtWall * speed
	cs.Angle = wrapAngle(cs.Angle)
}

func wrapAngle(a float64) float64 {
	const twoPi = 2 * math.Pi
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

// LaunchState captures the kinematics needed to simulate a craft forward
// from a launch instant: its initial position/velocity, escape velocity
// threshold, and orbital direction (prograde sign).
type LaunchState struct {
	Position Vector2D
	Velocity Vector2D
	EscVel   float64
	Dir      int
}

// LaunchFrom computes the launch kinematics for a craft departing orbit at
// cs.Angle (used both for an immediate launch and for planner candidates
// probing future launch frames, which pass a state whose angle has already
// been advanced to the launch frame). parentAtLaunch is the launch body's
// (position, velocity) at that frame.
func LaunchFrom(cs CraftState, parentAtLaunch BodyFrame, parentMass, parentRadius float64, dir int) LaunchState {
	r := parentRadius + cs.Altitude
	tangent := Vector2D{math.Cos(cs.Angle), math.Sin(cs.Angle)}.Perp(dir)
	speed := orbitalSpeed(parentMass, r)
	pos := parentAtLaunch.Position.Add(Vector2D{math.Cos(cs.Angle), math.Sin(cs.Angle)}.Scale(r))
	vel := parentAtLaunch.Velocity.Add(tangent.Scale(speed))
	return LaunchState{
		Position: pos,
		Velocity: vel,
		EscVel:   EscapeVelocity(parentMass, r),
		Dir:      dir,
	}
}

// SimulateTrajectory steps a launched craft forward through snap, starting
// at snapshot frame startFrame, applying gravity, the escape boost (cleared
// once relative speed reaches escapeCutoff*EscVel), and an optional
// correction burn. It returns one CraftFrame per simulated step, aligned
//1:1 with snap.Frames[startFrame:]. This is the single simulation primitive
// shared by an in-line (non-transfer) launch and every planner candidate
// evaluation (§4.4 step 2) — both are "launch a craft and watch where
// gravity plus boost take it". startAccelerating seeds the escape-boost
// flag: true for a fresh launch, or the craft's live IsAccelerating when
// continuing an already-in-flight trajectory, so a tail refill never
// re-applies boost thrust after cutoff has already cleared it.
func SimulateTrajectory(snap Snapshot, startFrame int, launch LaunchState, launchBody BodyID, correction *CorrectionBurn, startAccelerating bool) []CraftFrame {
	n := snap.Length() - startFrame
	if n <= 0 {
		return nil
	}
	out := make([]CraftFrame, 0, n)

	pos := launch.Position
	vel := launch.Velocity
	accelerating := startAccelerating

	for k := 0; k < n; k++ {
		bodies := snap.Frame(startFrame + k)
		launchBodyFrame := bodies[launchBody]

		acc := Gravity(bodies, snap.Masses, pos)

		if accelerating {
			radial := pos.Sub(launchBodyFrame.Position).Normalize()
			prograde := radial.Perp(launch.Dir)
			acc = acc.Add(prograde.Scale(CraftAccel))

			relSpeed := vel.Sub(launchBodyFrame.Velocity).Magnitude()
			if relSpeed >= escapeCutoff*launch.EscVel {
				accelerating = false
			}
		}

		if correction != nil && k >= correction.StartFrame && k < correction.StartFrame+correction.Duration {
			acc = acc.Add(Vector2D{math.Cos(correction.Angle), math.Sin(correction.Angle)}.Scale(CraftAccel))
		}

		vel = vel.Add(acc.Scale(DtFixed))
		pos = pos.Add(vel.Scale(DtFixed))

		out = append(out, CraftFrame{Position: pos, Velocity: vel, IsAccelerating: accelerating})
	}

	return out
}

// Launch transitions an Orbiting craft to Free, either adopting a
// pre-computed trajectory from an accepted plan or generating one in-line
// by simulating against the current prediction buffer snapshot.
func Launch(cs CraftState, parent Body, snap Snapshot, trajectory *CraftTrajectoryBuffer, correction *CorrectionBurn, destination *BodyID, insertionFrame int) CraftState {
	launch := LaunchFrom(cs, BodyFrame{Position: parent.Position, Velocity: parent.Velocity}, parent.Mass, parent.Radius, cs.OrbitDir)

	if trajectory == nil {
		frames := SimulateTrajectory(snap, 0, launch, parent.ID, correction, true)
		trajectory = NewCraftTrajectoryBuffer(frames)
	}

	return CraftState{
		Phase:          PhaseFree,
		Position:       launch.Position,
		Velocity:       launch.Velocity,
		IsAccelerating: true,
		EscVel:         launch.EscVel,
		LaunchBody:     parent.ID,
		FlightFrame:    0,
		Correction:     correction,
		Destination:    destination,
		Trajectory:     trajectory,
		InsertionFrame: insertionFrame,
		OrbitDir:       cs.OrbitDir,
	}
}

// AdvanceFree pops the trajectory buffer's head frame and adopts it as the
// craft's current state, called once per shift event. If the buffer is
// empty and a destination is set, the craft captures into orbit around the
// destination; otherwise, for a non-transfer craft, the trajectory is
// extended at the tail to keep pace with the prediction buffer.
func AdvanceFree(cs *CraftState, dest *Body, extendSnap Snapshot) {
	frame, ok := cs.Trajectory.PopFront()
	if !ok {
		if cs.Destination != nil && dest != nil {
			*cs = capture(*cs, *dest)
		}
		return
	}

	cs.Position = frame.Position
	cs.Velocity = frame.Velocity
	cs.IsAccelerating = frame.IsAccelerating
	cs.FlightFrame++

	if cs.Destination == nil && cs.Trajectory.Len() == 0 && extendSnap.Length() > 0 {
		launch := LaunchState{Position: cs.Position, Velocity: cs.Velocity, EscVel: cs.EscVel, Dir: cs.OrbitDir}
		more := SimulateTrajectory(extendSnap, 0, launch, cs.LaunchBody, cs.Correction, cs.IsAccelerating)
		cs.Trajectory.Extend(more)
	}
}

// capture performs the orbit-insertion transition (§4.3): the craft snaps
// onto a circular orbit around dest at CraftOrbitalAlt, tangential velocity
// matching dest's own motion plus local orbital speed, and all transfer
// bookkeeping (correction, destination, escape state) is cleared.
func capture(cs CraftState, dest Body) CraftState {
	rel := cs.Position.Sub(dest.Position)
	angle := math.Atan2(rel.Y, rel.X)

	// Orbiting position (and implied velocity, via orbitalSpeed) is a pure
	// function of (parent, altitude, angle); nothing further is stored here.
	return CraftState{
		Phase:    PhaseOrbiting,
		Parent:   dest.ID,
		Altitude: CraftOrbitalAlt,
		Angle:    angle,
		OrbitDir: cs.OrbitDir,
	}
}
