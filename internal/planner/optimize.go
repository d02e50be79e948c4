package planner

import (
	"math"

	"github.com/orrery/core/internal/sim"
)

// candidate is the result of evaluating a single launch frame (§4.4).
type candidate struct {
	launchFrame    int
	score          float64
	trajectory     []sim.CraftFrame
	insertionFrame int
	correction     *sim.CorrectionBurn
	dir            int
}

// idealDistance is the target craft-to-destination distance at capture.
func idealDistance(dest sim.Body) float64 {
	return dest.Radius + sim.CraftOrbitalAlt
}

// baseScore returns |d_min - d_ideal| over trajectory and the frame index
// where the minimum distance occurs (§4.4).
func baseScore(trajectory []sim.CraftFrame, dest sim.Snapshot, destBody sim.BodyID, startFrame int, idealDist float64) (float64, int) {
	minDist := math.Inf(1)
	insertion := 0
	for k, f := range trajectory {
		frame := dest.Frame(startFrame + k)
		if frame == nil {
			break
		}
		d := f.Position.Distance(frame[destBody].Position)
		if math.IsNaN(d) {
			d = math.Inf(1)
		}
		if d < minDist {
			minDist = d
			insertion = k
		}
	}
	if math.IsInf(minDist, 1) {
		return math.Inf(1), 0
	}
	return math.Abs(minDist - idealDist), insertion
}

// correctedScore is the mean altitude error over the 20 frames starting at
// insertionFrame of trajectory, which the caller has already simulated with
// its correction burn applied (§4.4).
func correctedScore(trajectory []sim.CraftFrame, snap sim.Snapshot, destBody sim.BodyID, startFrame, insertionFrame int, idealDist float64) float64 {
	const window = 20
	sum := 0.0
	n := 0
	for k := insertionFrame; k < insertionFrame+window && k < len(trajectory); k++ {
		frame := snap.Frame(startFrame + k)
		if frame == nil {
			break
		}
		d := trajectory[k].Position.Distance(frame[destBody].Position)
		if math.IsNaN(d) {
			return math.Inf(1)
		}
		sum += math.Abs(d - idealDist)
		n++
	}
	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n)
}

// evaluateCandidate runs §4.4's per-launch-frame evaluation: simulate the
// base trajectory, score it, and — if promising — run the coordinate
// descent correction-burn optimizer.
func evaluateCandidate(snap sim.Snapshot, launchFrame int, craft sim.CraftState, launchBody sim.Body, dest sim.Body, dir int) *candidate {
	if launchFrame >= snap.Length() {
		return nil
	}
	parentFrame := snap.Frame(launchFrame)[launchBody.ID]
	// Carry the orbit angle forward to where the craft will be at launchFrame.
	sim.AdvanceOrbiting(&craft, launchBody, float64(launchFrame)*sim.DtFixed, 1)
	launch := sim.LaunchFrom(craft, parentFrame, launchBody.Mass, launchBody.Radius, dir)

	traj := sim.SimulateTrajectory(snap, launchFrame, launch, launchBody.ID, nil, true)
	if len(traj) == 0 {
		return nil
	}

	idealDist := idealDistance(dest)
	score, insertion := baseScore(traj, snap, dest.ID, launchFrame, idealDist)

	best := &candidate{launchFrame: launchFrame, score: score, trajectory: traj, insertionFrame: insertion, dir: dir}

	if score <= sim.PreOptThreshold {
		corrected, correction := optimizeCorrection(snap, launchFrame, launch, launchBody, dest, insertion, idealDist)
		if corrected != nil && corrected.score < best.score {
			best = corrected
			best.correction = correction
		}
	}

	return best
}

// optimizeCorrection runs the coordinate-descent correction-burn search
// described in §4.4 step 4: starting at correction_start =
// floor(insertion*2/3), angle = retrograde of velocity at the burn point,
// duration = 1; try angle +/- 0.1 degrees and duration +/- 1 frame each
// iteration, accepting any neighbor that lowers the corrected score, until
// no neighbor improves or MaxIterations is reached.
func optimizeCorrection(snap sim.Snapshot, launchFrame int, launch sim.LaunchState, launchBody, dest sim.Body, insertion int, idealDist float64) (*candidate, *sim.CorrectionBurn) {
	correctionStart := (insertion * 2) / 3
	maxDur := int(math.Ceil(10.0 / sim.DtFixed))

	// Recompute the velocity at the burn point from the uncorrected
	// trajectory to seed the retrograde angle.
	uncorrected := sim.SimulateTrajectory(snap, launchFrame, launch, launchBody.ID, nil, true)
	if correctionStart >= len(uncorrected) {
		return nil, nil
	}
	vAtStart := uncorrected[correctionStart].Velocity
	angle := math.Pi + math.Atan2(vAtStart.Y, vAtStart.X)
	duration := 1

	evalWith := func(angle float64, duration int) (float64, []sim.CraftFrame, int) {
		correction := &sim.CorrectionBurn{Angle: angle, Duration: duration, StartFrame: correctionStart}
		traj := sim.SimulateTrajectory(snap, launchFrame, launch, launchBody.ID, correction, true)
		_, ins := baseScore(traj, snap, dest.ID, launchFrame, idealDist)
		cs := correctedScore(traj, snap, dest.ID, launchFrame, ins, idealDist)
		return cs, traj, ins
	}

	bestScore, bestTraj, bestIns := evalWith(angle, duration)
	bestAngle, bestDuration := angle, duration

	const angleStep = 0.1 * math.Pi / 180.0

	for iter := 0; iter < sim.MaxIterations; iter++ {
		improved := false

		neighbors := [][2]float64{
			{bestAngle + angleStep, float64(bestDuration)},
			{bestAngle - angleStep, float64(bestDuration)},
			{bestAngle, float64(clampDuration(bestDuration+1, maxDur))},
			{bestAngle, float64(clampDuration(bestDuration-1, maxDur))},
		}

		for _, nb := range neighbors {
			a, d := nb[0], int(nb[1])
			score, traj, ins := evalWith(a, d)
			if score < bestScore {
				bestScore, bestTraj, bestIns = score, traj, ins
				bestAngle, bestDuration = a, d
				improved = true
			}
		}

		if !improved {
			break
		}
	}

	return &candidate{
		launchFrame:    launchFrame,
		score:          bestScore,
		trajectory:     bestTraj,
		insertionFrame: bestIns,
	}, &sim.CorrectionBurn{Angle: bestAngle, Duration: bestDuration, StartFrame: correctionStart}
}

func clampDuration(d, max int) int {
	if d < 0 {
		return 0
	}
	if d > max {
		return max
	}
	return d
}

// truncate cuts trajectory at insertionFrame+1, per §4.4 step 5.
func truncate(trajectory []sim.CraftFrame, insertionFrame int) []sim.CraftFrame {
	end := insertionFrame + 1
	if end > len(trajectory) {
		end = len(trajectory)
	}
	out := make([]sim.CraftFrame, end)
	copy(out, trajectory[:end])
	return out
}
