// Package planner implements the parallel transfer-planning search: a
// worker pool over candidate launch frames, each producing a base
// trajectory and (conditionally) a correction-burn optimization, merged
// into a time-ordered list of acceptable intercept trajectories.
package planner

import (
	"github.com/google/uuid"

	"github.com/orrery/core/internal/sim"
)

// PlanKey identifies a (source, destination) pair for the plan cache (§3).
type PlanKey struct {
	Source sim.BodyID
	Dest   sim.BodyID
}

// AcceptableTrajectory is a scored, time-ordered candidate transfer (§3).
// LaunchFrame and ArrivalFrame are buffer-relative; InsertionFrame and
// SampleOffset are trajectory-relative and unaffected by buffer shifts.
type AcceptableTrajectory struct {
	LaunchFrame    int
	ArrivalFrame   int
	Score          float64
	Trajectory     []sim.CraftFrame
	InsertionFrame int
	Correction     *sim.CorrectionBurn
	SampleOffset   int
	Destination    sim.BodyID
	LaunchDir      int
}

// Generation is a monotonically increasing tag on dispatched batches; stale
// results (from a superseded generation) are dropped on receipt (§4.4, §5).
type Generation uint64

// TransferState is the TransferHandle's externally observable state (§6).
type TransferState int

const (
	StateSearching TransferState = iota
	StateReady
	StateScheduled
	StateNone
)

func (s TransferState) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateReady:
		return "ready"
	case StateScheduled:
		return "scheduled"
	default:
		return "none"
	}
}

// HandleID identifies a TransferHandle, surfaced to API clients.
type HandleID uuid.UUID

func NewHandleID() HandleID { return HandleID(uuid.New()) }

func (h HandleID) String() string { return uuid.UUID(h).String() }
