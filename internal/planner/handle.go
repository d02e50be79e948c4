package planner

import (
	"sync"

	"github.com/orrery/core/internal/sim"
)

// TransferHandle is the external handle returned by RequestTransfer (§6): it
// exposes State, BestPlan, Schedule, and Cancel.
type TransferHandle struct {
	ID HandleID

	mu         sync.Mutex
	state      TransferState
	registry   *Registry
	generation Generation
	craftID    sim.CraftID
	source     sim.BodyID
	dest       sim.BodyID

	// craftState/launchBody/destBody are captured at RequestTransfer time
	// and reused by the planner to dispatch further tranches against later
	// snapshots as the buffer's tail grows (§4.4's incremental re-search).
	craftState sim.CraftState
	launchBody sim.Body
	destBody   sim.Body
}

func (h *TransferHandle) State() TransferState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// BestPlan returns the current best acceptable trajectory, or nil while
// still Searching.
func (h *TransferHandle) BestPlan() *AcceptableTrajectory {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.CurrentBest()
}

// BestNonAcceptable surfaces the lowest-scoring non-acceptable candidate
// seen so far, for UI display while still Searching (§7).
func (h *TransferHandle) BestNonAcceptable() *AcceptableTrajectory {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.BestNonAcceptable
}

// Schedule arms the handle's current best plan for launch. Returns a
// contract error if no plan is ready yet.
func (h *TransferHandle) Schedule() (*AcceptableTrajectory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	best := h.registry.CurrentBest()
	if best == nil {
		return nil, &sim.ContractError{Op: "schedule", Reason: "no acceptable plan is ready"}
	}
	h.registry.Schedule(best)
	h.state = StateScheduled
	return best, nil
}

// Cancel clears any scheduled launch and moves the handle to None.
func (h *TransferHandle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.CancelScheduled()
	h.state = StateNone
}

// onShift is invoked once per buffer shift to decrement the registry and
// react to state transitions: Ready -> Searching when the list empties
// (§6's TransferHandle.state transitions), and to detect a scheduled launch
// firing.
func (h *TransferHandle) onShift() (launched *AcceptableTrajectory) {
	h.mu.Lock()
	defer h.mu.Unlock()

	launched = h.registry.OnShift()
	if launched != nil {
		h.state = StateNone
		return launched
	}

	switch h.state {
	case StateReady:
		if h.registry.CurrentBest() == nil {
			h.state = StateSearching
		}
	}
	return nil
}

// ingest merges a batch result into the handle's registry if its generation
// is still current, and updates Searching -> Ready when the list becomes
// non-empty. shiftDelta is the number of buffer shifts that elapsed between
// when the batch's snapshot was issued and now (§4.4's buffer-shift
// adjustment); every buffer-relative index in the result is corrected by it.
func (h *TransferHandle) ingest(res batchResult, shiftDelta int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if Generation(res.generation) != h.generation {
		return // stale generation, dropped per §5
	}

	key := PlanKey{Source: h.source, Dest: h.dest}
	for _, t := range res.acceptable {
		h.registry.Add(t, key, shiftDelta)
	}
	h.registry.ConsiderNonAcceptable(res.bestNonAcceptable)

	if h.state == StateSearching && h.registry.CurrentBest() != nil {
		h.state = StateReady
	}
}
