package commands

import (
	"semcanvas/pkg/utils"
)

// CreateRelationshipCommand links two committed artifacts. Weight and
// type fall back to the configured defaults when omitted.
type CreateRelationshipCommand struct {
	SourceID string  `json:"source_id" validate:"required"`
	TargetID string  `json:"target_id" validate:"required"`
	Type     string  `json:"type" validate:"omitempty,max=50"`
	Weight   float64 `json:"weight" validate:"gte=0,lte=1"`
	Source   string  `json:"source" validate:"required"`
}

// Validate implements bus.Command
func (c CreateRelationshipCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteRelationshipCommand removes a link by its derived id
type DeleteRelationshipCommand struct {
	ID     string `json:"id" validate:"required"`
	Source string `json:"source" validate:"required"`
}

// Validate implements bus.Command
func (c DeleteRelationshipCommand) Validate() error {
	return utils.ValidateStruct(c)
}
