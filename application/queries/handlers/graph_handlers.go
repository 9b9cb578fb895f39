package handlers

import (
	"context"

	"go.uber.org/zap"

	"semcanvas/application/ports"
	"semcanvas/application/queries"
	"semcanvas/application/queries/bus"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/parser"
	pkgerrors "semcanvas/pkg/errors"
)

// GetGraphHandler assembles the render-ready graph
type GetGraphHandler struct {
	artifacts     ports.ArtifactRepository
	relationships ports.RelationshipRepository
	temporals     ports.TemporalRepository
	logger        *zap.Logger
}

// NewGetGraphHandler creates a new handler instance
func NewGetGraphHandler(artifacts ports.ArtifactRepository, relationships ports.RelationshipRepository, temporals ports.TemporalRepository, logger *zap.Logger) *GetGraphHandler {
	return &GetGraphHandler{artifacts: artifacts, relationships: relationships, temporals: temporals, logger: logger}
}

// Handle executes the graph query. Links are re-resolved against the
// current node set so a view can never receive a dangling edge.
func (h *GetGraphHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	if _, ok := q.(queries.GetGraphQuery); !ok {
		return nil, pkgerrors.NewInternalError("unexpected query type")
	}

	nodes, err := h.artifacts.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	links, err := h.relationships.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	drafts, err := h.temporals.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	valid := parser.ResolveLinks(nodes, links)

	data := queries.GraphData{
		Nodes:  make([]queries.ArtifactView, 0, len(nodes)),
		Drafts: make([]queries.DraftView, 0, len(drafts)),
		Links:  make([]queries.RelationshipView, 0, len(valid)),
	}
	for _, n := range nodes {
		data.Nodes = append(data.Nodes, ArtifactToView(n))
	}
	for _, d := range drafts {
		data.Drafts = append(data.Drafts, DraftToView(d))
	}
	for _, l := range valid {
		data.Links = append(data.Links, queries.RelationshipView{
			ID:     l.ID(),
			Source: l.SourceID().String(),
			Target: l.TargetID().String(),
			Type:   l.Type(),
			Weight: l.Weight(),
		})
	}

	return data, nil
}

// GetCoherenceHandler computes collection statistics
type GetCoherenceHandler struct {
	artifacts     ports.ArtifactRepository
	relationships ports.RelationshipRepository
	logger        *zap.Logger
}

// NewGetCoherenceHandler creates a new handler instance
func NewGetCoherenceHandler(artifacts ports.ArtifactRepository, relationships ports.RelationshipRepository, logger *zap.Logger) *GetCoherenceHandler {
	return &GetCoherenceHandler{artifacts: artifacts, relationships: relationships, logger: logger}
}

// Handle executes the coherence query
func (h *GetCoherenceHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	if _, ok := q.(queries.GetCoherenceQuery); !ok {
		return nil, pkgerrors.NewInternalError("unexpected query type")
	}

	nodes, err := h.artifacts.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	links, err := h.relationships.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report := queries.CoherenceReport{
		TotalArtifacts:     len(nodes),
		TotalRelationships: len(links),
		ByType:             map[string]int{},
		DanglingReferences: parser.DanglingReferences(nodes, links),
	}
	for _, n := range nodes {
		report.ByType[n.Type().String()]++
	}
	report.Valid = len(report.DanglingReferences) == 0

	return report, nil
}

// SearchArtifactsHandler runs substring search over the collection
type SearchArtifactsHandler struct {
	artifacts ports.ArtifactRepository
	logger    *zap.Logger
}

// NewSearchArtifactsHandler creates a new handler instance
func NewSearchArtifactsHandler(artifacts ports.ArtifactRepository, logger *zap.Logger) *SearchArtifactsHandler {
	return &SearchArtifactsHandler{artifacts: artifacts, logger: logger}
}

// Handle executes the search query
func (h *SearchArtifactsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.SearchArtifactsQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("unexpected query type")
	}

	criteria := ports.SearchCriteria{Query: query.Query, Limit: query.Limit}
	for _, t := range query.Types {
		artType, err := valueobjects.ParseArtifactType(t)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		criteria.Types = append(criteria.Types, artType)
	}

	found, err := h.artifacts.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	views := make([]queries.ArtifactView, 0, len(found))
	for _, n := range found {
		views = append(views, ArtifactToView(n))
	}
	return views, nil
}

// ArtifactToView projects an artifact entity onto its render shape
func ArtifactToView(a *entities.Artifact) queries.ArtifactView {
	pos := a.Position()
	vis := a.Visual()
	return queries.ArtifactView{
		ID:          a.ID().String(),
		Name:        a.Name().String(),
		Type:        a.Type().String(),
		Description: a.Description().String(),
		X:           pos.X,
		Y:           pos.Y,
		FX:          pos.FX,
		FY:          pos.FY,
		Color:       vis.Color,
		Radius:      vis.Radius,
		Opacity:     vis.Opacity,
	}
}

// DraftToView projects a temporal artifact onto its render shape
func DraftToView(d *entities.TemporalArtifact) queries.DraftView {
	pos := d.Position()
	return queries.DraftView{
		TemporaryID:      d.ID().String(),
		Name:             d.Name(),
		Type:             d.Type().String(),
		Description:      d.Description(),
		X:                pos.X,
		Y:                pos.Y,
		Status:           string(d.Status()),
		ValidationErrors: d.ValidationErrors(),
	}
}
