package entities

import (
	"time"

	"semcanvas/domain/config"
	"semcanvas/domain/core/valueobjects"
	pkgerrors "semcanvas/pkg/errors"
)

// Relationship is a directed, weighted edge between two artifacts.
// Its id is derived from the ordered endpoint pair, so the same pair can
// never exist under two different identities.
type Relationship struct {
	id       string
	sourceID valueobjects.ArtifactID
	targetID valueobjects.ArtifactID
	relType  string
	weight   float64

	createdAt time.Time
}

// RelationshipID derives the deterministic edge identity for an ordered pair
func RelationshipID(sourceID, targetID valueobjects.ArtifactID) string {
	return sourceID.String() + "->" + targetID.String()
}

// NewRelationship creates a directed edge with default weight and type
func NewRelationship(sourceID, targetID valueobjects.ArtifactID, cfg *config.DomainConfig) (*Relationship, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return NewRelationshipWithOptions(sourceID, targetID, cfg.DefaultRelationshipType, cfg.DefaultRelationshipWeight, cfg)
}

// NewRelationshipWithOptions creates a directed edge with explicit type and weight
func NewRelationshipWithOptions(sourceID, targetID valueobjects.ArtifactID, relType string, weight float64, cfg *config.DomainConfig) (*Relationship, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if sourceID.IsZero() || targetID.IsZero() {
		return nil, pkgerrors.NewValidationError("relationship endpoints cannot be empty")
	}
	if sourceID.Equals(targetID) {
		return nil, pkgerrors.NewValidationError("cannot relate an artifact to itself")
	}
	if weight < cfg.MinRelationshipWeight || weight > cfg.MaxRelationshipWeight {
		return nil, pkgerrors.NewValidationError("relationship weight out of range")
	}
	if relType == "" {
		relType = cfg.DefaultRelationshipType
	}

	return &Relationship{
		id:        RelationshipID(sourceID, targetID),
		sourceID:  sourceID,
		targetID:  targetID,
		relType:   relType,
		weight:    weight,
		createdAt: time.Now(),
	}, nil
}

// ReconstructRelationship rebuilds an edge from repository data
func ReconstructRelationship(sourceID, targetID valueobjects.ArtifactID, relType string, weight float64, createdAt time.Time) *Relationship {
	return &Relationship{
		id:        RelationshipID(sourceID, targetID),
		sourceID:  sourceID,
		targetID:  targetID,
		relType:   relType,
		weight:    weight,
		createdAt: createdAt,
	}
}

// ID returns the derived edge identity
func (r *Relationship) ID() string {
	return r.id
}

// SourceID returns the origin artifact id
func (r *Relationship) SourceID() valueobjects.ArtifactID {
	return r.sourceID
}

// TargetID returns the destination artifact id
func (r *Relationship) TargetID() valueobjects.ArtifactID {
	return r.targetID
}

// Type returns the relationship type tag
func (r *Relationship) Type() string {
	return r.relType
}

// Weight returns the edge weight
func (r *Relationship) Weight() float64 {
	return r.weight
}

// CreatedAt returns when the edge was created
func (r *Relationship) CreatedAt() time.Time {
	return r.createdAt
}

// Touches reports whether the edge has the given artifact as an endpoint
func (r *Relationship) Touches(id valueobjects.ArtifactID) bool {
	return r.sourceID.Equals(id) || r.targetID.Equals(id)
}
