package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	qhandlers "semcanvas/application/queries/handlers"
	"semcanvas/application/services/temporal"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/pkg/common"
)

// TemporalHandler handles draft lifecycle requests
type TemporalHandler struct {
	drafts *temporal.Service
	logger *zap.Logger
}

// NewTemporalHandler creates a new temporal handler
func NewTemporalHandler(drafts *temporal.Service, logger *zap.Logger) *TemporalHandler {
	return &TemporalHandler{drafts: drafts, logger: logger}
}

// CreateDraftRequest is the request body for opening a draft
type CreateDraftRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreateDraft handles POST /drafts
func (h *TemporalHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	draft, err := h.drafts.CreateDraft(r.Context(), req.X, req.Y, clientSource(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, qhandlers.DraftToView(draft))
}

// SetName handles PUT /drafts/{draftID}/name
func (h *TemporalHandler) SetName(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	draft, err := h.drafts.SetName(r.Context(), id, req.Name, clientSource(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, qhandlers.DraftToView(draft))
}

// SetDescription handles PUT /drafts/{draftID}/description
func (h *TemporalHandler) SetDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	draft, err := h.drafts.SetDescription(r.Context(), id, req.Description, clientSource(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, qhandlers.DraftToView(draft))
}

// SetType handles PUT /drafts/{draftID}/type
func (h *TemporalHandler) SetType(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	artType, err := valueobjects.ParseArtifactType(req.Type)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "unknown artifact type: "+req.Type)
		return
	}

	draft, err := h.drafts.SetType(r.Context(), id, artType, clientSource(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, qhandlers.DraftToView(draft))
}

// ConfirmName handles POST /drafts/{draftID}/confirm-name
func (h *TemporalHandler) ConfirmName(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	draft, err := h.drafts.ConfirmName(r.Context(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, qhandlers.DraftToView(draft))
}

// Commit handles POST /drafts/{draftID}/commit
func (h *TemporalHandler) Commit(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	artifact, err := h.drafts.Commit(r.Context(), id, clientSource(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, qhandlers.ArtifactToView(artifact))
}

// Discard handles DELETE /drafts/{draftID}
func (h *TemporalHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	if err := h.drafts.Discard(r.Context(), id, clientSource(r)); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "draft discarded"})
}

// draftID extracts and validates the draft identifier from the URL.
// On failure it writes the error response and returns ok false.
func draftID(w http.ResponseWriter, r *http.Request) (valueobjects.TemporalID, bool) {
	raw := chi.URLParam(r, "draftID")
	id, err := valueobjects.NewTemporalIDFromString(raw)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return valueobjects.TemporalID{}, false
	}
	return id, true
}
