package engine

import (
	"testing"

	"github.com/orrery/core/internal/sim"
)

func newTestEngine(t *testing.T, preset string) *Engine {
	t.Helper()
	e, err := New(preset, 1)
	if err != nil {
		t.Fatalf("New(%q) returned an error: %v", preset, err)
	}
	t.Cleanup(func() { e.planner.Close() })
	return e
}

func TestNewRejectsUnknownPreset(t *testing.T) {
	if _, err := New("not-a-real-preset", 1); err == nil {
		t.Fatalf("expected an error constructing an engine on an unknown preset")
	}
}

func TestNewLoadsPresetBodiesAndCrafts(t *testing.T) {
	e := newTestEngine(t, "sol-ember-terra")
	bodies := e.Bodies()
	if len(bodies) != 3 {
		t.Fatalf("len(Bodies()) = %d, want 3", len(bodies))
	}
	crafts := e.Crafts()
	if len(crafts) != 1 {
		t.Fatalf("len(Crafts()) = %d, want 1", len(crafts))
	}
}

func TestTickAdvancesTheBodyPositions(t *testing.T) {
	e := newTestEngine(t, "sol-terra")
	before := e.Bodies()

	applied := e.Tick(1.0)
	if applied == 0 {
		t.Fatalf("Tick(1.0) applied 0 shifts, want > 0")
	}

	after := e.Bodies()
	if after[1].Position == before[1].Position {
		t.Fatalf("Terra's position did not change after ticking forward")
	}
}

func TestPauseFreezesTheClock(t *testing.T) {
	e := newTestEngine(t, "sol-terra")
	e.Pause()
	if applied := e.Tick(5.0); applied != 0 {
		t.Fatalf("Tick while paused applied %d shifts, want 0", applied)
	}
	e.Resume()
	if applied := e.Tick(1.0); applied == 0 {
		t.Fatalf("Tick after Resume applied 0 shifts, want > 0")
	}
}

func TestSetSpeedRejectsInvalidMultiplier(t *testing.T) {
	e := newTestEngine(t, "sol-terra")
	if err := e.SetSpeed(3); err == nil {
		t.Fatalf("expected a contract error for an invalid speed multiplier")
	}
	if err := e.SetSpeed(4); err != nil {
		t.Fatalf("SetSpeed(4) returned an unexpected error: %v", err)
	}
}

func TestResetReplacesWorldAndPlanner(t *testing.T) {
	e := newTestEngine(t, "sol-terra")
	if len(e.Crafts()) != 0 {
		t.Fatalf("sol-terra should start with no crafts")
	}

	if err := e.Reset("sol-ember-terra"); err != nil {
		t.Fatalf("Reset returned an error: %v", err)
	}
	if len(e.Crafts()) != 1 {
		t.Fatalf("after Reset(sol-ember-terra), len(Crafts()) = %d, want 1", len(e.Crafts()))
	}
}

func TestRequestTransferRejectsUnknownCraft(t *testing.T) {
	e := newTestEngine(t, "sol-terra")
	if _, err := e.RequestTransfer(99, sim.BodyID(0)); err == nil {
		t.Fatalf("expected a contract error requesting a transfer for an unknown craft id")
	}
}

func TestRequestTransferRejectsUnknownDestination(t *testing.T) {
	e := newTestEngine(t, "sol-ember-terra")
	if _, err := e.RequestTransfer(0, sim.BodyID(99)); err == nil {
		t.Fatalf("expected a contract error requesting a transfer to an unknown body id")
	}
}
