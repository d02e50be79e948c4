// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/orrery/core/internal/api/validation"
	"github.com/orrery/core/internal/engine"
	"github.com/orrery/core/internal/sim"
)

// SimulationHandler handles the world-control endpoints: reset, tick,
// speed, pause, resume, and read access to bodies/crafts/prediction (§10.2).
type SimulationHandler struct {
	engine *engine.Engine
}

// NewSimulationHandler creates a new simulation handler.
func NewSimulationHandler(e *engine.Engine) *SimulationHandler {
	return &SimulationHandler{engine: e}
}

type resetRequest struct {
	Preset string `json:"preset"`
}

// Reset handles POST /api/v1/reset
func (h *SimulationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if err := validation.ValidateNonEmpty(req.Preset, "preset"); err != nil {
		handleError(w, err)
		return
	}
	if err := h.engine.Reset(req.Preset); err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"preset": req.Preset})
}

type tickRequest struct {
	DtSeconds float64 `json:"dt_seconds"`
}

// Tick handles POST /api/v1/tick
func (h *SimulationHandler) Tick(w http.ResponseWriter, r *http.Request) {
	var req tickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.DtSeconds <= 0 {
		jsonError(w, http.StatusBadRequest, "dt_seconds must be positive", "BAD_REQUEST")
		return
	}

	applied := h.engine.Tick(req.DtSeconds)
	jsonResponse(w, http.StatusOK, map[string]interface{}{"shifts_applied": applied})
}

type speedRequest struct {
	Multiplier int `json:"multiplier"`
}

// Speed handles POST /api/v1/speed
func (h *SimulationHandler) Speed(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if err := validation.ValidateSpeedMultiplier(req.Multiplier); err != nil {
		handleError(w, err)
		return
	}
	if err := h.engine.SetSpeed(req.Multiplier); err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"multiplier": req.Multiplier})
}

// Pause handles POST /api/v1/pause
func (h *SimulationHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.engine.Pause()
	jsonResponse(w, http.StatusOK, map[string]interface{}{"paused": true})
}

// Resume handles POST /api/v1/resume
func (h *SimulationHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.engine.Resume()
	jsonResponse(w, http.StatusOK, map[string]interface{}{"paused": false})
}

// Bodies handles GET /api/v1/bodies
func (h *SimulationHandler) Bodies(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{"bodies": h.engine.Bodies()})
}

// Crafts handles GET /api/v1/crafts
func (h *SimulationHandler) Crafts(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{"crafts": h.engine.Crafts()})
}

// predictionFrame is Snapshot.Frame(i), shaped for JSON: Snapshot itself
// only exposes Length/Frame accessors, not a serializable field.
type predictionFrame struct {
	Bodies []sim.BodyFrame `json:"bodies"`
}

// Prediction handles GET /api/v1/prediction
func (h *SimulationHandler) Prediction(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Prediction()
	frames := make([]predictionFrame, snap.Length())
	for i := range frames {
		frames[i] = predictionFrame{Bodies: snap.Frame(i)}
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"masses": snap.Masses,
		"frames": frames,
	})
}
