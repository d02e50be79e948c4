package planner

import (
	"math"
	"sync"

	"github.com/orrery/core/internal/sim"
)

// Planner owns the worker pool and every live TransferHandle. It is driven
// entirely from the single-threaded main loop (engine package): RequestTransfer,
// Redispatch, and OnShift are called from there, never concurrently with each
// other, matching §5's "prediction buffer, craft states, and Plan Registry
// are accessed only from the main loop" — only the worker pool itself runs
// concurrently, over immutable snapshots.
type Planner struct {
	mu         sync.Mutex
	pool       *pool
	handles    map[HandleID]*TransferHandle
	pending    map[HandleID]int
	nextGen    Generation
	shiftCount int // mirrors the live buffer's ShiftCount(), kept current by the engine
}

func NewPlanner(workers int) *Planner {
	p := &Planner{
		pool:    newPool(workers),
		handles: make(map[HandleID]*TransferHandle),
		pending: make(map[HandleID]int),
	}
	go p.collect()
	return p
}

// SetShiftCount publishes the live prediction buffer's current ShiftCount(),
// called by the engine once per shift so collect() can compute how far a
// batch's snapshot has drifted by the time its result is ingested (§4.4).
func (p *Planner) SetShiftCount(n int) {
	p.mu.Lock()
	p.shiftCount = n
	p.mu.Unlock()
}

// collect is the single fan-in goroutine draining the shared worker pool's
// result channel and routing each result to its owning handle by id, so
// concurrently in-flight sweeps for different handles never race on each
// other's result counts.
func (p *Planner) collect() {
	for res := range p.pool.results {
		p.mu.Lock()
		h, ok := p.handles[res.handle]
		shiftDelta := p.shiftCount - res.dispatchShifts
		p.mu.Unlock()

		if !ok {
			continue // handle was cancelled/removed
		}
		h.ingest(res, shiftDelta)

		// Count the batch as done only after it has been ingested.
		p.mu.Lock()
		_, live := p.handles[res.handle]
		if live {
			p.pending[res.handle]--
		}
		remaining := p.pending[res.handle]
		p.mu.Unlock()

		if live && remaining == 0 {
			h.mu.Lock()
			h.registry.SetBatchesInFlight(0)
			h.mu.Unlock()
		}
	}
}

// RequestTransfer enters planning for craft -> destination (§4.4, §6). It
// is a contract error if destination == source or craft is not Orbiting.
func (p *Planner) RequestTransfer(craft sim.Craft, launchBody sim.Body, dest sim.Body, snap sim.Snapshot) (*TransferHandle, error) {
	if craft.State.Phase != sim.PhaseOrbiting {
		return nil, &sim.ContractError{Op: "request_transfer", Reason: "craft is not in Orbiting state"}
	}
	if launchBody.ID == dest.ID {
		return nil, &sim.ContractError{Op: "request_transfer", Reason: "destination == source"}
	}

	p.mu.Lock()
	p.nextGen++
	gen := p.nextGen
	p.mu.Unlock()

	handle := &TransferHandle{
		ID:         NewHandleID(),
		state:      StateSearching,
		registry:   NewRegistry(),
		generation: gen,
		craftID:    craft.ID,
		source:     launchBody.ID,
		dest:       dest.ID,
		craftState: craft.State,
		launchBody: launchBody,
		destBody:   dest,
	}

	p.mu.Lock()
	p.handles[handle.ID] = handle
	p.mu.Unlock()

	p.dispatchRange(handle, snap)

	return handle, nil
}

// Redispatch extends every live handle's sweep to cover frames that have
// newly appeared at the buffer's tail since its last dispatch, using a
// fresh snapshot (§4.4's "Incremental re-search": only the unsearched
// suffix is dispatched, and a fresh snapshot is used for the next tranche).
// Called by the engine once per tick, after the buffer has shifted.
func (p *Planner) Redispatch(snap sim.Snapshot) {
	p.mu.Lock()
	handles := make([]*TransferHandle, 0, len(p.handles))
	for _, h := range p.handles {
		handles = append(handles, h)
	}
	p.mu.Unlock()

	for _, h := range handles {
		p.dispatchRange(h, snap)
	}
}

// dispatchRange submits every unsearched batch from max(SearchedUpToFrame,
// MIN_LAUNCH_LEAD) frames up to HORIZON - MIN_TRAJECTORY_RUNWAY frames
// (§4.4's parallel scheduling and incremental re-search) to the worker pool;
// collect() ingests the results as they complete. Each batch carries the handle's current
// generation so a later Cancel/restart invalidates in-flight work. It is a
// no-op while a previous tranche for this handle is still in flight, or
// while the live buffer has not yet grown past the already-searched frame.
func (p *Planner) dispatchRange(handle *TransferHandle, snap sim.Snapshot) {
	leadFrames := int(math.Ceil(sim.MinLaunchLead / sim.DtFixed))
	runwayFrames := int(math.Ceil(sim.MinTrajectoryRunway / sim.DtFixed))
	limit := snap.Length() - runwayFrames

	handle.mu.Lock()
	if handle.registry.BatchesInFlight() > 0 {
		handle.mu.Unlock()
		return
	}
	start := handle.registry.SearchedUpToFrame
	if start < leadFrames {
		start = leadFrames
	}
	craft := handle.craftState
	launchBody := handle.launchBody
	dest := handle.destBody
	generation := handle.generation
	handle.mu.Unlock()

	if limit <= start {
		// Buffer hasn't grown far enough past the runway requirement yet
		// (e.g. a freshly (re)initialized world only holds MaxCatchup
		// frames); hold SearchedUpToFrame at the lead frame so the next
		// Redispatch, once the tail has extended, starts the sweep there.
		handle.mu.Lock()
		if handle.registry.SearchedUpToFrame < leadFrames {
			handle.registry.SearchedUpToFrame = leadFrames
		}
		handle.mu.Unlock()
		return
	}

	var jobs []batchJob
	for s := start; s < limit; s += sim.BatchSize {
		end := s + sim.BatchSize
		if end > limit {
			end = limit
		}
		jobs = append(jobs, batchJob{
			handle:         handle.ID,
			generation:     generation,
			start:          s,
			end:            end,
			snap:           snap,
			craft:          craft,
			launchBody:     launchBody,
			dest:           dest,
			dispatchShifts: snap.Shifts,
		})
	}

	handle.mu.Lock()
	handle.registry.SetBatchesInFlight(len(jobs))
	handle.registry.SearchedUpToFrame = limit
	handle.mu.Unlock()

	p.mu.Lock()
	p.pending[handle.ID] = len(jobs)
	p.mu.Unlock()

	for _, job := range jobs {
		p.pool.submit(job)
	}
}

// OnShift advances every live handle's registry by one shift and returns any
// plan whose scheduled countdown just reached zero, keyed by the craft it
// launches (§4.5, §4.3's launch(plan) transition).
func (p *Planner) OnShift() map[sim.CraftID]*AcceptableTrajectory {
	p.mu.Lock()
	handles := make([]*TransferHandle, 0, len(p.handles))
	for _, h := range p.handles {
		handles = append(handles, h)
	}
	p.mu.Unlock()

	fired := make(map[sim.CraftID]*AcceptableTrajectory)
	for _, h := range handles {
		if launched := h.onShift(); launched != nil {
			fired[h.craftID] = launched
		}
	}
	return fired
}

// Handle looks up a previously returned TransferHandle.
func (p *Planner) Handle(id HandleID) (*TransferHandle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.handles[id]
	return h, ok
}

// Cancel removes a handle after clearing any scheduled launch.
func (p *Planner) Cancel(id HandleID) {
	p.mu.Lock()
	h, ok := p.handles[id]
	if ok {
		delete(p.handles, id)
		delete(p.pending, id)
	}
	p.mu.Unlock()
	if ok {
		h.Cancel()
	}
}

// Close shuts down the worker pool. Call once, on process shutdown.
func (p *Planner) Close() {
	p.pool.close()
}
