package planner

import "sort"

// Registry is the shift-aware container holding acceptable trajectories and
// the search cache (§4.5). All buffer-relative indices are decremented on
// every shift; entries whose LaunchFrame reaches zero are evicted.
type Registry struct {
	Acceptable        []*AcceptableTrajectory
	Cache             map[PlanKey]*AcceptableTrajectory
	BestNonAcceptable *AcceptableTrajectory
	SearchedUpToFrame int

	scheduled             *AcceptableTrajectory
	transferScheduledFrame int
	batchesInFlight       int
}

func NewRegistry() *Registry {
	return &Registry{Cache: make(map[PlanKey]*AcceptableTrajectory)}
}

// Add ingests a planner result, adjusting for the buffer-shift delta that
// occurred between snapshot issue and result receipt (§4.4's "Buffer-shift
// adjustment"). Results whose adjusted LaunchFrame <= 0 are discarded.
// Insertion-sorts into Acceptable by ArrivalFrame ascending; a duplicate
// LaunchFrame is idempotent (last write wins), matching the order-
// independence requirement in §5.
func (r *Registry) Add(plan *AcceptableTrajectory, key PlanKey, shiftDelta int) {
	adjusted := *plan
	adjusted.LaunchFrame -= shiftDelta
	adjusted.ArrivalFrame -= shiftDelta
	if adjusted.LaunchFrame <= 0 {
		return
	}

	for i, existing := range r.Acceptable {
		if existing.LaunchFrame == adjusted.LaunchFrame {
			r.Acceptable[i] = &adjusted
			r.resort()
			r.Cache[key] = &adjusted
			return
		}
	}

	r.Acceptable = append(r.Acceptable, &adjusted)
	r.resort()
	r.Cache[key] = &adjusted
}

func (r *Registry) resort() {
	sort.SliceStable(r.Acceptable, func(i, j int) bool {
		return r.Acceptable[i].ArrivalFrame < r.Acceptable[j].ArrivalFrame
	})
}

// ConsiderNonAcceptable records plan as the best-seen non-acceptable
// fallback if it scores lower than the current one.
func (r *Registry) ConsiderNonAcceptable(plan *AcceptableTrajectory) {
	if plan == nil {
		return
	}
	if r.BestNonAcceptable == nil || plan.Score < r.BestNonAcceptable.Score {
		cp := *plan
		r.BestNonAcceptable = &cp
	}
}

// OnShift decrements every buffer-relative index by one and evicts entries
// whose LaunchFrame has reached zero (§4.5). SearchedUpToFrame is
// decremented only when no batches are in flight, preserving search
// progress across shifts during an active sweep.
//
// Acceptable and Cache alias the same *AcceptableTrajectory pointers (Add
// stores one struct into both), so Cache only decrements entries it does
// not share with Acceptable this round — otherwise a plan present in both
// would be decremented twice per shift.
func (r *Registry) OnShift() (launched *AcceptableTrajectory) {
	inAcceptable := make(map[*AcceptableTrajectory]bool, len(r.Acceptable))
	for _, t := range r.Acceptable {
		inAcceptable[t] = true
	}

	kept := r.Acceptable[:0]
	for _, t := range r.Acceptable {
		t.LaunchFrame--
		t.ArrivalFrame--
		if t.LaunchFrame > 0 {
			kept = append(kept, t)
		}
	}
	r.Acceptable = kept

	for key, t := range r.Cache {
		if !inAcceptable[t] {
			t.LaunchFrame--
			t.ArrivalFrame--
		}
		if t.LaunchFrame <= 0 {
			delete(r.Cache, key)
		}
	}

	if r.batchesInFlight == 0 {
		r.SearchedUpToFrame--
		if r.SearchedUpToFrame < 0 {
			r.SearchedUpToFrame = 0
		}
	}

	if r.scheduled != nil {
		r.transferScheduledFrame--
		if r.transferScheduledFrame <= 0 {
			launched = r.scheduled
			r.scheduled = nil
		}
	}

	return launched
}

// CurrentBest returns the first entry of Acceptable (lowest arrival frame),
// or nil if none — driving the Searching vs Ready distinction (§4.5, §6).
func (r *Registry) CurrentBest() *AcceptableTrajectory {
	if len(r.Acceptable) == 0 {
		return nil
	}
	return r.Acceptable[0]
}

// Schedule arms plan for launch: transferScheduledFrame counts down to zero
// on successive shifts, at which point OnShift returns the plan so the
// caller can invoke craft.launch(plan) atomically (§4.5, §9's resolution of
// "fire exactly at the tick the decremented counter reaches 0").
func (r *Registry) Schedule(plan *AcceptableTrajectory) {
	r.scheduled = plan
	r.transferScheduledFrame = plan.LaunchFrame
}

// CancelScheduled clears any pending scheduled launch.
func (r *Registry) CancelScheduled() {
	r.scheduled = nil
	r.transferScheduledFrame = 0
}

func (r *Registry) SetBatchesInFlight(n int) { r.batchesInFlight = n }

// BatchesInFlight reports whether a sweep is currently outstanding.
func (r *Registry) BatchesInFlight() int { return r.batchesInFlight }
