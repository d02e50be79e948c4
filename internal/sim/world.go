package sim

// Craft pairs a stable id with its current state.
type Craft struct {
	ID    CraftID
	State CraftState
}

// World is the single mutable aggregate described in §9: PredictionBuffer,
// bodies, and crafts. Plan Registry and Clock live one layer up, in the
// engine package, because the planner depends on sim's types and sim must
// not depend back on the planner (accept interfaces, avoid import cycles).
// A World is only mutated under engine.Engine's mutex, by its tick loop or
// by its control methods; none of World's own methods are safe to call
// concurrently with Tick.
type World struct {
	PresetName string
	Bodies     []Body
	Crafts     []Craft
	Buffer     *PredictionBuffer

	bodyIndex map[string]BodyID
}

// NewWorld loads the named preset, exactly as reset(preset) discards all
// buffers and plans and loads the body/craft configuration (§6).
func NewWorld(presetName string) (*World, error) {
	preset, ok := Presets[presetName]
	if !ok {
		return nil, newContractError("reset", "unknown preset: "+presetName)
	}

	w := &World{PresetName: presetName, bodyIndex: make(map[string]BodyID)}
	masses := make([]float64, len(preset.Bodies))
	initial := make(BodyState, len(preset.Bodies))

	for i, bp := range preset.Bodies {
		id := BodyID(i)
		w.Bodies = append(w.Bodies, Body{
			ID: id, Name: bp.Name, Position: bp.Position, Velocity: bp.Velocity,
			Mass: bp.Mass, Radius: bp.Radius,
		})
		w.bodyIndex[bp.Name] = id
		masses[i] = bp.Mass
		initial[i] = BodyFrame{Position: bp.Position, Velocity: bp.Velocity}
	}

	w.Buffer = NewPredictionBuffer(masses)
	w.Buffer.Initialize(initial)

	for i, cp := range preset.Crafts {
		parent, ok := w.bodyIndex[cp.ParentName]
		if !ok {
			return nil, newContractError("reset", "craft references unknown parent: "+cp.ParentName)
		}
		w.Crafts = append(w.Crafts, Craft{ID: CraftID(i), State: NewOrbiting(parent, cp.Altitude, cp.Angle, 1)})
	}

	return w, nil
}

// BodyByName resolves a preset body name to its id, for convenience in API
// request bodies that name bodies rather than ids.
func (w *World) BodyByName(name string) (BodyID, bool) {
	id, ok := w.bodyIndex[name]
	return id, ok
}

func (w *World) Body(id BodyID) (Body, bool) {
	if int(id) < 0 || int(id) >= len(w.Bodies) {
		return Body{}, false
	}
	return w.Bodies[id], true
}

func (w *World) Craft(id CraftID) (*Craft, bool) {
	for i := range w.Crafts {
		if w.Crafts[i].ID == id {
			return &w.Crafts[i], true
		}
	}
	return nil, false
}

// ApplyShift applies one popped BodyState to the dense Body array (the
// Body's position/velocity are owned by the PredictionBuffer head; this is
// the one place that ownership is realized) and advances every Free craft by
// one frame.
func (w *World) ApplyShift(popped BodyState) {
	for i := range w.Bodies {
		w.Bodies[i].Position = popped[i].Position
		w.Bodies[i].Velocity = popped[i].Velocity
	}

	snap := w.Buffer.Snapshot()
	for i := range w.Crafts {
		cs := &w.Crafts[i].State
		switch cs.Phase {
		case PhaseOrbiting:
			parent, _ := w.Body(cs.Parent)
			AdvanceOrbiting(cs, parent, DtFixed, 1)
		case PhaseFree:
			var dest *Body
			if cs.Destination != nil {
				if b, ok := w.Body(*cs.Destination); ok {
					dest = &b
				}
			}
			AdvanceFree(cs, dest, snap)
		}
	}
}

// Tick applies steps shift events (the step count the caller got from
// Clock.Advance), applying each to bodies and crafts and invoking onShift
// once per popped frame so the engine's Plan Registry can react (§4.2,
// §4.5). It stops early if the buffer empties and returns the number of
// shifts applied.
func (w *World) Tick(steps int, onShift func(popped BodyState)) int {
	applied := 0
	for i := 0; i < steps; i++ {
		ok := w.Buffer.Shift(func(popped BodyState) {
			w.ApplyShift(popped)
			if onShift != nil {
				onShift(popped)
			}
		})
		if !ok {
			break
		}
		applied++
	}
	return applied
}

// LaunchCraft transitions craftID from Orbiting to Free, adopting the given
// pre-computed trajectory (from an accepted plan) or, if trajectory is nil,
// generating one in-line against the current buffer snapshot.
func (w *World) LaunchCraft(craftID CraftID, trajectory *CraftTrajectoryBuffer, correction *CorrectionBurn, destination *BodyID, insertionFrame int) error {
	craft, ok := w.Craft(craftID)
	if !ok {
		return newContractError("launch", "unknown craft id")
	}
	if craft.State.Phase != PhaseOrbiting {
		return newContractError("launch", "craft is not in Orbiting state")
	}
	parent, ok := w.Body(craft.State.Parent)
	if !ok {
		return newContractError("launch", "craft's parent body no longer exists")
	}

	craft.State = Launch(craft.State, parent, w.Buffer.Snapshot(), trajectory, correction, destination, insertionFrame)
	return nil
}
