package sim

// PredictionBuffer is the FIFO lookahead of BodyStates that is the single
// source of truth for body motion (§4.2). It is implemented as a ring buffer
// over a fixed-capacity backing array so head-pop and tail-push are O(1),
// per the design note that dynamic FIFO containers should avoid O(n)
// head-removal in hot paths.
type PredictionBuffer struct {
	masses []float64

	frames []BodyState // ring storage, capacity = HorizonFrames()
	head   int
	count  int

	shifts int // total shift events emitted, for tests/telemetry
}

// NewPredictionBuffer allocates an empty buffer sized to the horizon.
func NewPredictionBuffer(masses []float64) *PredictionBuffer {
	return &PredictionBuffer{
		masses: masses,
		frames: make([]BodyState, HorizonFrames()),
	}
}

// Initialize fills the buffer up to MaxCatchup frames by repeated integrator
// calls starting from initial. The buffer is left sparse (shorter than the
// horizon) until subsequent Advance calls top it up.
func (b *PredictionBuffer) Initialize(initial BodyState) {
	b.head = 0
	b.count = 0
	state := initial
	n := MaxCatchup
	if n > len(b.frames) {
		n = len(b.frames)
	}
	for i := 0; i < n; i++ {
		state = Step(state, b.masses, DtFixed)
		b.pushTail(state)
	}
}

func (b *PredictionBuffer) pushTail(frame BodyState) bool {
	if b.count >= len(b.frames) {
		return false
	}
	idx := (b.head + b.count) % len(b.frames)
	b.frames[idx] = frame
	b.count++
	return true
}

// Length reports the number of frames currently held.
func (b *PredictionBuffer) Length() int { return b.count }

// ShiftCount reports the total number of Shift events emitted since the
// buffer was created (Initialize does not reset it), used to compute the drift between when a planner
// snapshot was issued and when its results are ingested (§4.4).
func (b *PredictionBuffer) ShiftCount() int { return b.shifts }

// Frame returns the BodyState at relative index i (i=0 is the next state
// after the currently visible one).
func (b *PredictionBuffer) Frame(i int) BodyState {
	idx := (b.head + i) % len(b.frames)
	return b.frames[idx]
}

// BodyStateAt returns a single body's frame at buffer index i.
func (b *PredictionBuffer) BodyStateAt(i int, body BodyID) BodyFrame {
	return b.Frame(i)[body]
}

// Tail returns the most recently pushed frame, or nil if the buffer is
// empty, used as the seed for further integration when extending.
func (b *PredictionBuffer) tail() (BodyState, bool) {
	if b.count == 0 {
		return nil, false
	}
	idx := (b.head + b.count - 1) % len(b.frames)
	return b.frames[idx], true
}

// Shift pops exactly one frame from the head (the authoritative new body
// state, passed to onShift) and then extends the tail by up to MaxCatchup
// fresh frames so steady state maintains a full horizon. It is a no-op if
// the buffer is empty. The Simulation Clock (clock.go) owns the wall-clock
// accumulator and reports how many dt_fixed steps have elapsed; World.Tick
// calls Shift once per such step, so shift events are
// emitted exactly once per step and in order, per §4.2's invariant.
func (b *PredictionBuffer) Shift(onShift func(popped BodyState)) bool {
	if b.count == 0 {
		return false
	}
	popped := b.frames[b.head]
	b.head = (b.head + 1) % len(b.frames)
	b.count--
	b.shifts++
	if onShift != nil {
		onShift(popped)
	}

	state, ok := b.tail()
	if !ok {
		state = popped
	}
	appended := 0
	for appended < MaxCatchup && b.count < len(b.frames) {
		state = Step(state, b.masses, DtFixed)
		if !b.pushTail(state) {
			break
		}
		appended++
	}
	return true
}

// Snapshot is an immutable, cheaply-shareable view of the buffer handed to
// planner workers (§4.4). It copies the frame slice once (so the ring
// buffer's wraparound is resolved into a flat, linear view) but the BodyState
// values themselves are never mutated after copy.
type Snapshot struct {
	Masses []float64
	Frames []BodyState

	// Shifts is the buffer's ShiftCount() at the moment this snapshot was
	// taken, carried through batchJob/batchResult so the Plan Registry can
	// adjust for drift between snapshot issue and result ingestion (§4.4).
	Shifts int
}

// Snapshot produces a linear, read-only copy of the currently buffered
// frames and the (immutable) mass table.
func (b *PredictionBuffer) Snapshot() Snapshot {
	frames := make([]BodyState, b.count)
	for i := 0; i < b.count; i++ {
		frames[i] = b.Frame(i)
	}
	return Snapshot{Masses: b.masses, Frames: frames, Shifts: b.shifts}
}

// Length of a snapshot, convenience for planner code.
func (s Snapshot) Length() int { return len(s.Frames) }

// Frame returns the i'th frame of the snapshot, or nil if out of range.
func (s Snapshot) Frame(i int) BodyState {
	if i < 0 || i >= len(s.Frames) {
		return nil
	}
	return s.Frames[i]
}
