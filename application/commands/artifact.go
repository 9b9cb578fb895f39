package commands

import (
	"semcanvas/pkg/utils"
)

// CreateArtifactCommand commits a new artifact to the collection
type CreateArtifactCommand struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Type        string  `json:"type" validate:"required"`
	Description string  `json:"description" validate:"omitempty,max=1000"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Source      string  `json:"source" validate:"required"`
}

// Validate implements bus.Command
func (c CreateArtifactCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UpdateArtifactCommand changes an artifact's description
type UpdateArtifactCommand struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Source      string `json:"source" validate:"required"`
}

// Validate implements bus.Command
func (c UpdateArtifactCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// MoveArtifactCommand persists an artifact's post-drag position. It is
// issued once per drag, on release, never per animation frame.
type MoveArtifactCommand struct {
	ID     string  `json:"id" validate:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Source string  `json:"source" validate:"required"`
}

// Validate implements bus.Command
func (c MoveArtifactCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteArtifactCommand removes one artifact and its relationships
type DeleteArtifactCommand struct {
	ID     string `json:"id" validate:"required"`
	Source string `json:"source" validate:"required"`
}

// Validate implements bus.Command
func (c DeleteArtifactCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// BulkDeleteArtifactsCommand removes a selection of artifacts. Partial
// failure is tolerated; every id that could be deleted is deleted.
type BulkDeleteArtifactsCommand struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
	Source string   `json:"source" validate:"required"`
}

// Validate implements bus.Command
func (c BulkDeleteArtifactsCommand) Validate() error {
	return utils.ValidateStruct(c)
}
