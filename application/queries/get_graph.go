package queries

import (
	"semcanvas/pkg/utils"
)

// GetGraphQuery asks for the full render-ready graph: every committed
// artifact plus outstanding drafts, with links already validated against
// the node set.
type GetGraphQuery struct{}

// Validate implements bus.Query
func (q GetGraphQuery) Validate() error { return nil }

// ArtifactView is the render-ready projection of an artifact
type ArtifactView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	FX          *float64 `json:"fx,omitempty"`
	FY          *float64 `json:"fy,omitempty"`
	Color       string   `json:"color,omitempty"`
	Radius      float64  `json:"radius,omitempty"`
	Opacity     float64  `json:"opacity,omitempty"`
}

// DraftView is the render-ready projection of a temporal artifact
type DraftView struct {
	TemporaryID      string   `json:"temporaryId"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Description      string   `json:"description,omitempty"`
	X                float64  `json:"x"`
	Y                float64  `json:"y"`
	Status           string   `json:"status"`
	ValidationErrors []string `json:"validationErrors,omitempty"`
}

// RelationshipView is the render-ready projection of a link
type RelationshipView struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// GraphData is the result of GetGraphQuery
type GraphData struct {
	Nodes  []ArtifactView     `json:"nodes"`
	Drafts []DraftView        `json:"drafts"`
	Links  []RelationshipView `json:"links"`
}

// GetCoherenceQuery asks for collection-level statistics: artifact
// counts per type and unresolved references
type GetCoherenceQuery struct{}

// Validate implements bus.Query
func (q GetCoherenceQuery) Validate() error { return nil }

// CoherenceReport is the result of GetCoherenceQuery
type CoherenceReport struct {
	Valid              bool           `json:"valid"`
	TotalArtifacts     int            `json:"totalArtifacts"`
	TotalRelationships int            `json:"totalRelationships"`
	ByType             map[string]int `json:"byType"`
	DanglingReferences []string       `json:"danglingReferences,omitempty"`
}

// SearchArtifactsQuery finds artifacts by substring over name and
// description, optionally narrowed to a set of types
type SearchArtifactsQuery struct {
	Query string   `json:"query" validate:"required,min=1"`
	Types []string `json:"types" validate:"omitempty,dive,required"`
	Limit int      `json:"limit" validate:"gte=0,lte=500"`
}

// Validate implements bus.Query
func (q SearchArtifactsQuery) Validate() error {
	return utils.ValidateStruct(q)
}
