package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"semcanvas/application/queries"
	qhandlers "semcanvas/application/queries/handlers"
	"semcanvas/application/services/sync"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/parser"
	"semcanvas/pkg/common"
)

// OutlineHandler handles the text projection of the collection
type OutlineHandler struct {
	outline *sync.Service
	logger  *zap.Logger
}

// NewOutlineHandler creates a new outline handler
func NewOutlineHandler(outline *sync.Service, logger *zap.Logger) *OutlineHandler {
	return &OutlineHandler{outline: outline, logger: logger}
}

// OutlineResponse carries the rendered outline text
type OutlineResponse struct {
	Text string `json:"text"`
}

// ApplyOutlineRequest is the request body for replacing the outline
type ApplyOutlineRequest struct {
	Text string `json:"text"`
}

// CommitReferenceRequest is the request body for inserting an artifact
// into outline text under its category section
type CommitReferenceRequest struct {
	Text string `json:"text"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// CommitReferenceResponse carries the rewritten outline and the graph
// that results from applying it
type CommitReferenceResponse struct {
	Text  string            `json:"text"`
	Graph queries.GraphData `json:"graph"`
}

// GetOutline handles GET /outline
func (h *OutlineHandler) GetOutline(w http.ResponseWriter, r *http.Request) {
	text, err := h.outline.RenderOutline(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, OutlineResponse{Text: text})
}

// ApplyOutline handles PUT /outline
func (h *OutlineHandler) ApplyOutline(w http.ResponseWriter, r *http.Request) {
	var req ApplyOutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	doc, err := h.outline.ApplyText(r.Context(), req.Text, clientSource(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, documentToGraph(doc))
}

// CommitReference handles POST /outline/reference
func (h *OutlineHandler) CommitReference(w http.ResponseWriter, r *http.Request) {
	var req CommitReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "name is required")
		return
	}

	artType, err := valueobjects.ParseArtifactType(req.Type)
	if err != nil {
		artType = valueobjects.TypeConcept
	}

	text, doc, err := h.outline.CommitReference(r.Context(), req.Text, req.Name, artType, clientSource(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, CommitReferenceResponse{
		Text:  text,
		Graph: documentToGraph(doc),
	})
}

// documentToGraph projects a parsed document onto the render shape
func documentToGraph(doc parser.Document) queries.GraphData {
	nodes := make([]queries.ArtifactView, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes = append(nodes, qhandlers.ArtifactToView(n))
	}
	links := make([]queries.RelationshipView, 0, len(doc.Links))
	for _, l := range doc.Links {
		links = append(links, queries.RelationshipView{
			ID:     l.ID(),
			Source: l.SourceID().String(),
			Target: l.TargetID().String(),
			Type:   l.Type(),
			Weight: l.Weight(),
		})
	}
	return queries.GraphData{
		Nodes:  nodes,
		Drafts: []queries.DraftView{},
		Links:  links,
	}
}
