package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"semcanvas/application/commands"
	"semcanvas/application/commands/bus"
	"semcanvas/application/queries"
	querybus "semcanvas/application/queries/bus"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/pkg/common"
)

// derivedID mirrors the id derivation rule: the name minus whitespace
func derivedID(name string) string {
	return valueobjects.StripWhitespace(name)
}

// clientSource identifies which view issued a mutation so event
// subscribers can filter out their own writes.
func clientSource(r *http.Request) string {
	if s := r.Header.Get("X-Client-Source"); s != "" {
		return s
	}
	return "api"
}

// ArtifactHandler handles artifact CRUD requests
type ArtifactHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *ArtifactHandler {
	return &ArtifactHandler{commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// CreateArtifactRequest is the request body for creating an artifact
type CreateArtifactRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// CreateArtifact handles POST /artifacts
func (h *ArtifactHandler) CreateArtifact(w http.ResponseWriter, r *http.Request) {
	var req CreateArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if req.Type == "" {
		req.Type = "concept"
	}

	cmd := commands.CreateArtifactCommand{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		X:           req.X,
		Y:           req.Y,
		Source:      clientSource(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	view, err := h.queryBus.Ask(r.Context(), queries.GetArtifactQuery{ID: derivedID(req.Name)})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, view)
}

// GetArtifact handles GET /artifacts/{artifactID}
func (h *ArtifactHandler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryBus.Ask(r.Context(), queries.GetArtifactQuery{ID: chi.URLParam(r, "artifactID")})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// ListArtifacts handles GET /artifacts?type=
func (h *ArtifactHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	views, err := h.queryBus.Ask(r.Context(), queries.ListArtifactsQuery{Type: r.URL.Query().Get("type")})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, views)
}

// UpdateArtifactRequest is the request body for updating a description
type UpdateArtifactRequest struct {
	Description string `json:"description"`
}

// UpdateArtifact handles PUT /artifacts/{artifactID}
func (h *ArtifactHandler) UpdateArtifact(w http.ResponseWriter, r *http.Request) {
	var req UpdateArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "artifactID")
	cmd := commands.UpdateArtifactCommand{
		ID:          id,
		Description: req.Description,
		Source:      clientSource(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	view, err := h.queryBus.Ask(r.Context(), queries.GetArtifactQuery{ID: id})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// MoveArtifactRequest is the request body for persisting a position
type MoveArtifactRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveArtifact handles PUT /artifacts/{artifactID}/position
func (h *ArtifactHandler) MoveArtifact(w http.ResponseWriter, r *http.Request) {
	var req MoveArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	cmd := commands.MoveArtifactCommand{
		ID:     chi.URLParam(r, "artifactID"),
		X:      req.X,
		Y:      req.Y,
		Source: clientSource(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"moved": true})
}

// DeleteArtifact handles DELETE /artifacts/{artifactID}
func (h *ArtifactHandler) DeleteArtifact(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteArtifactCommand{
		ID:     chi.URLParam(r, "artifactID"),
		Source: clientSource(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// BulkDeleteRequest is the request body for bulk deletion
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteArtifacts handles POST /artifacts/bulk-delete
func (h *ArtifactHandler) BulkDeleteArtifacts(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	cmd := commands.BulkDeleteArtifactsCommand{
		IDs:    req.IDs,
		Source: clientSource(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"deleted": len(req.IDs)})
}

// ListArtifactRelationships handles GET /artifacts/{artifactID}/relationships
func (h *ArtifactHandler) ListArtifactRelationships(w http.ResponseWriter, r *http.Request) {
	views, err := h.queryBus.Ask(r.Context(),
		queries.ListRelationshipsQuery{ArtifactID: chi.URLParam(r, "artifactID")})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, views)
}
