package planner

import (
	"log"
	"runtime"
	"sync"

	"github.com/orrery/core/internal/sim"
)

// batchJob is one unit of work: evaluate launch frames [Start, End) of a
// snapshot against a fixed craft/destination pair, tagged with the
// generation it was dispatched under (§4.4, §5).
type batchJob struct {
	handle         HandleID
	generation     Generation
	start, end     int
	snap           sim.Snapshot
	craft          sim.CraftState
	launchBody     sim.Body
	dest           sim.Body
	dispatchShifts int // snap.Shifts at dispatch time, for the ingest-side drift correction
}

// batchResult carries every acceptable trajectory a worker found in its
// batch, plus one non-acceptable fallback for UI display (§4.4 step 6).
type batchResult struct {
	handle            HandleID
	generation        Generation
	acceptable        []*AcceptableTrajectory
	bestNonAcceptable *AcceptableTrajectory
	dispatchShifts    int
}

// pool is a fixed-size worker pool, sized to the hardware parallelism hint
// (§4.4), dispatched over via small buffered channels — the same message-
// passing discipline (no shared mutable state, results merged by the
// caller) used by this codebase's coordinator/mission-monitoring loops.
type pool struct {
	jobs    chan batchJob
	results chan batchResult
	wg      sync.WaitGroup
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &pool{
		jobs:    make(chan batchJob, workers),
		results: make(chan batchResult, workers*2),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		// A panicking batch is logged and reported as an empty result, so
		// the worker stays alive and the handle's pending count still drains.
		p.results <- func() (res batchResult) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("planner worker: batch [%d, %d) failed: %v", job.start, job.end, r)
					res = batchResult{handle: job.handle, generation: job.generation, dispatchShifts: job.dispatchShifts}
				}
			}()
			return evaluateBatch(job)
		}()
	}
}

func (p *pool) submit(job batchJob) {
	p.jobs <- job
}

func (p *pool) close() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

// evaluateBatch evaluates every launch frame in [job.start, job.end),
// probing both orbital directions as candidate prograde signs, per §4.4
// step 1's "possibly for both +/- directions".
func evaluateBatch(job batchJob) batchResult {
	res := batchResult{handle: job.handle, generation: job.generation, dispatchShifts: job.dispatchShifts}

	var bestNonAcceptable *AcceptableTrajectory

	for frame := job.start; frame < job.end; frame++ {
		for _, dir := range []int{1, -1} {
			c := evaluateCandidate(job.snap, frame, job.craft, job.launchBody, job.dest, dir)
			if c == nil {
				continue
			}

			traj := truncate(c.trajectory, c.insertionFrame)
			at := &AcceptableTrajectory{
				LaunchFrame:    frame,
				ArrivalFrame:   frame + len(traj),
				Score:          c.score,
				Trajectory:     traj,
				InsertionFrame: c.insertionFrame,
				Correction:     c.correction,
				Destination:    job.dest.ID,
				LaunchDir:      dir,
			}

			if c.score <= sim.PostOptThreshold {
				res.acceptable = append(res.acceptable, at)
			} else if bestNonAcceptable == nil || at.Score < bestNonAcceptable.Score {
				bestNonAcceptable = at
			}
		}
	}

	res.bestNonAcceptable = bestNonAcceptable
	return res
}
