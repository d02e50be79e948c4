// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orrery/core/internal/engine"
	"github.com/orrery/core/internal/planner"
	"github.com/orrery/core/internal/sim"
)

// TransferHandler handles the transfer-planning endpoints: request a
// search, poll its handle, schedule the current best plan, or cancel it
// (§6, §10.2).
type TransferHandler struct {
	engine *engine.Engine
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(e *engine.Engine) *TransferHandler {
	return &TransferHandler{engine: e}
}

type createTransferRequest struct {
	CraftID    int `json:"craft_id"`
	DestBodyID int `json:"destination_body_id"`
}

type transferView struct {
	ID    string      `json:"id"`
	State string      `json:"state"`
	Best  interface{} `json:"best_plan,omitempty"`
}

// Create handles POST /api/v1/transfers
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	handle, err := h.engine.RequestTransfer(sim.CraftID(req.CraftID), sim.BodyID(req.DestBodyID))
	if err != nil {
		handleError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, transferView{ID: handle.ID.String(), State: handle.State().String()})
}

// Get handles GET /api/v1/transfers/{id}
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.lookup(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, transferView{
		ID:    handle.ID.String(),
		State: handle.State().String(),
		Best:  handle.BestPlan(),
	})
}

// Schedule handles POST /api/v1/transfers/{id}/schedule
func (h *TransferHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.lookup(w, r)
	if !ok {
		return
	}
	plan, err := handle.Schedule()
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"id":    handle.ID.String(),
		"state": handle.State().String(),
		"plan":  plan,
	})
}

// Cancel handles DELETE /api/v1/transfers/{id}
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.engine.CancelTransfer(handle.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransferHandler) lookup(w http.ResponseWriter, r *http.Request) (*planner.TransferHandle, bool) {
	raw := chi.URLParam(r, "id")
	parsed, err := uuid.Parse(raw)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid transfer id", "BAD_REQUEST")
		return nil, false
	}
	handle, ok := h.engine.Handle(planner.HandleID(parsed))
	if !ok {
		jsonError(w, http.StatusNotFound, "unknown transfer id", "NOT_FOUND")
		return nil, false
	}
	return handle, true
}
