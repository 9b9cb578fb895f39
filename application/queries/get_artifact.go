package queries

import (
	"semcanvas/pkg/utils"
)

// GetArtifactQuery fetches one artifact by id
type GetArtifactQuery struct {
	ID string `json:"id" validate:"required"`
}

// Validate implements bus.Query
func (q GetArtifactQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListArtifactsQuery fetches all artifacts, optionally one type only
type ListArtifactsQuery struct {
	Type string `json:"type" validate:"omitempty"`
}

// Validate implements bus.Query
func (q ListArtifactsQuery) Validate() error { return nil }

// ListRelationshipsQuery fetches relationships, optionally only those
// touching one artifact
type ListRelationshipsQuery struct {
	ArtifactID string `json:"artifact_id" validate:"omitempty"`
}

// Validate implements bus.Query
func (q ListRelationshipsQuery) Validate() error { return nil }
