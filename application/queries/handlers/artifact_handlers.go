package handlers

import (
	"context"

	"go.uber.org/zap"

	"semcanvas/application/ports"
	"semcanvas/application/queries"
	"semcanvas/application/queries/bus"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	pkgerrors "semcanvas/pkg/errors"
)

// GetArtifactHandler fetches one artifact
type GetArtifactHandler struct {
	artifacts ports.ArtifactRepository
	logger    *zap.Logger
}

// NewGetArtifactHandler creates a new handler instance
func NewGetArtifactHandler(artifacts ports.ArtifactRepository, logger *zap.Logger) *GetArtifactHandler {
	return &GetArtifactHandler{artifacts: artifacts, logger: logger}
}

// Handle executes the query
func (h *GetArtifactHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetArtifactQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("unexpected query type")
	}

	id, err := valueobjects.NewArtifactIDFromString(query.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	artifact, err := h.artifacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ArtifactToView(artifact), nil
}

// ListArtifactsHandler lists the collection, optionally by type
type ListArtifactsHandler struct {
	artifacts ports.ArtifactRepository
	logger    *zap.Logger
}

// NewListArtifactsHandler creates a new handler instance
func NewListArtifactsHandler(artifacts ports.ArtifactRepository, logger *zap.Logger) *ListArtifactsHandler {
	return &ListArtifactsHandler{artifacts: artifacts, logger: logger}
}

// Handle executes the query
func (h *ListArtifactsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.ListArtifactsQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("unexpected query type")
	}

	var (
		found []*entities.Artifact
		err   error
	)
	if query.Type != "" {
		artType, perr := valueobjects.ParseArtifactType(query.Type)
		if perr != nil {
			return nil, pkgerrors.NewValidationError(perr.Error())
		}
		found, err = h.artifacts.GetByType(ctx, artType)
	} else {
		found, err = h.artifacts.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	views := make([]queries.ArtifactView, 0, len(found))
	for _, a := range found {
		views = append(views, ArtifactToView(a))
	}
	return views, nil
}

// ListRelationshipsHandler lists relationships, optionally filtered to
// one artifact's edges
type ListRelationshipsHandler struct {
	relationships ports.RelationshipRepository
	logger        *zap.Logger
}

// NewListRelationshipsHandler creates a new handler instance
func NewListRelationshipsHandler(relationships ports.RelationshipRepository, logger *zap.Logger) *ListRelationshipsHandler {
	return &ListRelationshipsHandler{relationships: relationships, logger: logger}
}

// Handle executes the query
func (h *ListRelationshipsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.ListRelationshipsQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("unexpected query type")
	}

	var (
		found []*entities.Relationship
		err   error
	)
	if query.ArtifactID != "" {
		id, perr := valueobjects.NewArtifactIDFromString(query.ArtifactID)
		if perr != nil {
			return nil, pkgerrors.NewValidationError(perr.Error())
		}
		found, err = h.relationships.GetByArtifactID(ctx, id)
	} else {
		found, err = h.relationships.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return relationshipViews(found), nil
}

func relationshipViews(rels []*entities.Relationship) []queries.RelationshipView {
	views := make([]queries.RelationshipView, 0, len(rels))
	for _, l := range rels {
		views = append(views, queries.RelationshipView{
			ID:     l.ID(),
			Source: l.SourceID().String(),
			Target: l.TargetID().String(),
			Type:   l.Type(),
			Weight: l.Weight(),
		})
	}
	return views
}
