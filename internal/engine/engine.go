// Package engine wires internal/sim's World and internal/planner's Planner
// into the single mutable aggregate the rest of the process depends on:
// one goroutine (Run) owns the simulation clock, every other caller goes
// through Engine's thread-safe methods, mirroring this codebase's
// Coordinator (mutex-guarded state plus a context/cancel/WaitGroup-managed
// background goroutine) rather than the Broadcaster's register/unregister
// channel pair — that shape fits fire-and-forget fan-out, not a
// synchronous request/response API like Reset or RequestTransfer.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/orrery/core/internal/planner"
	"github.com/orrery/core/internal/sim"
	"github.com/orrery/core/internal/telemetry"
)

// Engine is the process-wide owner of World, its Clock, and the Planner.
type Engine struct {
	mu      sync.Mutex
	world   *sim.World
	clock   *sim.Clock
	planner *planner.Planner

	broadcaster *telemetry.Broadcaster

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs an Engine loaded with preset and a Planner sized to
// workers (0 selects runtime.GOMAXPROCS(0), per planner.NewPlanner).
func New(preset string, workers int) (*Engine, error) {
	world, err := sim.NewWorld(preset)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		world:       world,
		clock:       sim.NewClock(),
		planner:     planner.NewPlanner(workers),
		broadcaster: telemetry.NewBroadcaster(),
	}
	return e, nil
}

// Broadcaster exposes the telemetry stream for the control API's /ws/world
// route to upgrade clients onto.
func (e *Engine) Broadcaster() *telemetry.Broadcaster { return e.broadcaster }

// Run starts the broadcaster's event loop and a fixed-rate ticker that
// drives the simulation clock until ctx is cancelled. Call Stop to block
// for a clean stop.
func (e *Engine) Run(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.broadcaster.Start()
	}()

	e.wg.Add(1)
	go e.tickLoop()
}

// Stop cancels the run loop, stops the broadcaster, waits for both to exit,
// and shuts down the planner's worker pool. Call once, on process shutdown.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.broadcaster.Stop()
	e.wg.Wait()
	e.planner.Close()
}

func (e *Engine) tickLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(sim.TickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-e.ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			e.tick(dt)
		}
	}
}

// tick advances the clock by dt (scaled internally by its own speed and
// pause state) and applies every resulting shift.
func (e *Engine) tick(dt float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked(dt)
}

func (e *Engine) tickLocked(dt float64) int {
	steps := e.clock.Advance(dt)
	if steps == 0 {
		return 0
	}

	applied := e.world.Tick(steps, e.onShiftLocked)
	telemetry.RecordTick(applied)
	if applied > 0 {
		// The buffer's tail has grown; extend every live handle's sweep
		// over the newly visible frames (§4.4's incremental re-search).
		e.planner.Redispatch(e.world.Buffer.Snapshot())
	}
	return applied
}

// onShiftLocked runs once per popped prediction-buffer frame, called while
// e.mu is held by tickLocked: it advances every live transfer handle's
// registry, applies any launch whose countdown just fired, and publishes a
// tick event to the telemetry stream.
func (e *Engine) onShiftLocked(popped sim.BodyState) {
	e.planner.SetShiftCount(e.world.Buffer.ShiftCount())

	fired := e.planner.OnShift()
	for craftID, plan := range fired {
		trajectory := sim.NewCraftTrajectoryBuffer(append([]sim.CraftFrame(nil), plan.Trajectory...))
		dest := plan.Destination
		if err := e.world.LaunchCraft(craftID, trajectory, plan.Correction, &dest, plan.InsertionFrame); err == nil {
			e.broadcaster.Broadcast("transfer_scheduled", map[string]interface{}{
				"craft_id": craftID,
				"dest":     dest,
			})
		}
	}

	e.broadcaster.Broadcast("tick", telemetry.WorldSnapshot{
		Bodies: append([]sim.Body(nil), e.world.Bodies...),
		Crafts: append([]sim.Craft(nil), e.world.Crafts...),
	})
}

// Reset discards all buffers, crafts, and in-flight transfer searches and
// loads preset fresh (§6).
func (e *Engine) Reset(preset string) error {
	world, err := sim.NewWorld(preset)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.planner.Close()
	e.world = world
	e.clock = sim.NewClock()
	e.planner = planner.NewPlanner(0)
	return nil
}

// Tick advances the simulation by dtSeconds immediately, for scripted
// clients driving the engine over the control API rather than its own
// ticker (§10.2).
func (e *Engine) Tick(dtSeconds float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked(dtSeconds)
}

// SetSpeed sets the clock's time-acceleration multiplier. Returns a
// contract error if multiplier is not one of the valid speeds.
func (e *Engine) SetSpeed(multiplier int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !sim.IsValidSpeed(multiplier) {
		return &sim.ContractError{Op: "set_speed", Reason: "invalid speed multiplier"}
	}
	e.clock.Speed = multiplier
	return nil
}

// Pause freezes the clock's accumulator without discarding state.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock.Paused = true
}

// Resume un-freezes the clock.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock.Paused = false
}

// Bodies returns a snapshot copy of every body's current state.
func (e *Engine) Bodies() []sim.Body {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sim.Body(nil), e.world.Bodies...)
}

// Crafts returns a snapshot copy of every craft's current state.
func (e *Engine) Crafts() []sim.Craft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sim.Craft(nil), e.world.Crafts...)
}

// Prediction returns a read-only snapshot of the prediction buffer, for the
// control API's /prediction route.
func (e *Engine) Prediction() sim.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Buffer.Snapshot()
}

// BodyByName resolves a preset body name to its id.
func (e *Engine) BodyByName(name string) (sim.BodyID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.BodyByName(name)
}

// RequestTransfer starts a transfer search from craftID's current orbit to
// destBodyID, returning the handle the caller polls/schedules/cancels
// through (§6).
func (e *Engine) RequestTransfer(craftID sim.CraftID, destBodyID sim.BodyID) (*planner.TransferHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	craft, ok := e.world.Craft(craftID)
	if !ok {
		return nil, &sim.ContractError{Op: "request_transfer", Reason: "unknown craft id"}
	}
	launchBody, ok := e.world.Body(craft.State.Parent)
	if !ok {
		return nil, &sim.ContractError{Op: "request_transfer", Reason: "craft's parent body no longer exists"}
	}
	destBody, ok := e.world.Body(destBodyID)
	if !ok {
		return nil, &sim.ContractError{Op: "request_transfer", Reason: "unknown destination body id"}
	}

	return e.planner.RequestTransfer(*craft, launchBody, destBody, e.world.Buffer.Snapshot())
}

// Handle looks up a previously returned transfer handle.
func (e *Engine) Handle(id planner.HandleID) (*planner.TransferHandle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.planner.Handle(id)
}

// CancelTransfer cancels a transfer handle by id.
func (e *Engine) CancelTransfer(id planner.HandleID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.planner.Cancel(id)
}
