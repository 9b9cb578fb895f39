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
	"semcanvas/pkg/common"
)

// RelationshipHandler handles edge CRUD requests
type RelationshipHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// CreateRelationshipRequest is the request body for creating an edge
type CreateRelationshipRequest struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	Type     string  `json:"type,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
}

// CreateRelationship handles POST /relationships
func (h *RelationshipHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	cmd := commands.CreateRelationshipCommand{
		SourceID: req.SourceID,
		TargetID: req.TargetID,
		Type:     req.Type,
		Weight:   req.Weight,
		Source:   clientSource(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"id": req.SourceID + "->" + req.TargetID,
	})
}

// ListRelationships handles GET /relationships?artifact=
func (h *RelationshipHandler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	views, err := h.queryBus.Ask(r.Context(),
		queries.ListRelationshipsQuery{ArtifactID: r.URL.Query().Get("artifact")})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, views)
}

// DeleteRelationship handles DELETE /relationships/{relationshipID}
func (h *RelationshipHandler) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteRelationshipCommand{
		ID:     chi.URLParam(r, "relationshipID"),
		Source: clientSource(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
