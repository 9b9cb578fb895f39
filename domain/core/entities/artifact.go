package entities

import (
	"time"

	"semcanvas/domain/config"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/events"
	pkgerrors "semcanvas/pkg/errors"
)

// VisualProperties are render hints the canvas layer may honor.
// They never influence domain behavior.
type VisualProperties struct {
	Color   string  `json:"color,omitempty"`
	Radius  float64 `json:"radius,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Artifact is a committed, persisted knowledge node.
// This is a rich domain model with encapsulated business logic.
type Artifact struct {
	// Private fields ensure encapsulation
	id          valueobjects.ArtifactID
	name        valueobjects.ArtifactName
	artType     valueobjects.ArtifactType
	description valueobjects.Description
	position    valueobjects.Position
	visual      VisualProperties
	createdAt   time.Time
	updatedAt   time.Time

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewArtifact creates a new artifact with full business rule validation.
// The id is derived from the name so outline text and graph agree on
// identity without a lookup table.
func NewArtifact(name valueobjects.ArtifactName, artType valueobjects.ArtifactType, description valueobjects.Description, position valueobjects.Position, source string) (*Artifact, error) {
	if name.IsZero() {
		return nil, pkgerrors.NewValidationError("name cannot be empty")
	}
	if !artType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown artifact type")
	}

	id, err := valueobjects.NewArtifactIDFromName(name.String())
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	now := time.Now()
	artifact := &Artifact{
		id:          id,
		name:        name,
		artType:     artType,
		description: description,
		position:    position,
		createdAt:   now,
		updatedAt:   now,
		events:      []events.DomainEvent{},
	}

	artifact.addEvent(events.NewArtifactCreated(id, name.String(), artType, source, now))

	return artifact, nil
}

// NewReferencePlaceholder synthesizes an artifact for an @id mention that
// has no explicit definition. Placeholders are regenerated on every parse
// and never persisted on their own.
func NewReferencePlaceholder(refID string) (*Artifact, error) {
	id, err := valueobjects.NewArtifactIDFromString(refID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	now := time.Now()
	return &Artifact{
		id:        id,
		artType:   valueobjects.TypeReference,
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}, nil
}

// ReconstructArtifact rebuilds an artifact from repository data with
// preserved timestamps. No creation event is raised.
func ReconstructArtifact(
	id valueobjects.ArtifactID,
	name valueobjects.ArtifactName,
	artType valueobjects.ArtifactType,
	description valueobjects.Description,
	position valueobjects.Position,
	visual VisualProperties,
	createdAt, updatedAt time.Time,
) (*Artifact, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("artifact ID cannot be empty")
	}
	if !artType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown artifact type")
	}

	return &Artifact{
		id:          id,
		name:        name,
		artType:     artType,
		description: description,
		position:    position,
		visual:      visual,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		events:      []events.DomainEvent{},
	}, nil
}

// ID returns the artifact's unique identifier
func (a *Artifact) ID() valueobjects.ArtifactID {
	return a.id
}

// Name returns the artifact's display label
func (a *Artifact) Name() valueobjects.ArtifactName {
	return a.name
}

// Type returns the artifact's type
func (a *Artifact) Type() valueobjects.ArtifactType {
	return a.artType
}

// Description returns the artifact's description
func (a *Artifact) Description() valueobjects.Description {
	return a.description
}

// Position returns the artifact's position
func (a *Artifact) Position() valueobjects.Position {
	return a.position
}

// Visual returns the artifact's render hints
func (a *Artifact) Visual() VisualProperties {
	return a.visual
}

// IsReference reports whether the artifact is an auto-materialized placeholder
func (a *Artifact) IsReference() bool {
	return a.artType.IsReference()
}

// UpdateDescription updates the description with validation
func (a *Artifact) UpdateDescription(description valueobjects.Description, source string) error {
	if description.Equals(a.description) {
		return nil // No change needed
	}

	a.description = description
	a.updatedAt = time.Now()

	a.addEvent(events.NewArtifactUpdated(a.id, source, a.updatedAt))

	return nil
}

// Rename changes the display label. The derived id must stay stable, so a
// rename whose whitespace-stripped form differs from the id is rejected;
// that case is a delete-and-recreate at the application layer.
func (a *Artifact) Rename(name valueobjects.ArtifactName, source string) error {
	if name.IsZero() {
		return pkgerrors.NewValidationError("name cannot be empty")
	}
	if valueobjects.StripWhitespace(name.String()) != a.id.String() {
		return pkgerrors.NewConflictError("rename would change the artifact identity")
	}
	if name.Equals(a.name) {
		return nil
	}

	a.name = name
	a.updatedAt = time.Now()

	a.addEvent(events.NewArtifactUpdated(a.id, source, a.updatedAt))

	return nil
}

// MoveTo moves the artifact to a new committed position
func (a *Artifact) MoveTo(position valueobjects.Position, source string) error {
	if position.Equals(a.position) {
		return nil // No movement needed
	}

	oldPosition := a.position
	a.position = position
	a.updatedAt = time.Now()

	a.addEvent(events.NewArtifactMoved(a.id, oldPosition, position, source, a.updatedAt))

	return nil
}

// SetVisual replaces the render hints
func (a *Artifact) SetVisual(visual VisualProperties) {
	a.visual = visual
	a.updatedAt = time.Now()
}

// Promote upgrades a reference placeholder to a full artifact once the
// user defines it explicitly. Non-placeholders cannot be promoted.
func (a *Artifact) Promote(artType valueobjects.ArtifactType, name valueobjects.ArtifactName, description valueobjects.Description, source string) error {
	if !a.IsReference() {
		return pkgerrors.NewConflictError("only reference placeholders can be promoted")
	}
	if artType.IsReference() || !artType.IsValid() {
		return pkgerrors.NewValidationError("promotion requires a concrete artifact type")
	}

	a.artType = artType
	a.name = name
	a.description = description
	a.updatedAt = time.Now()

	a.addEvent(events.NewArtifactUpdated(a.id, source, a.updatedAt))

	return nil
}

// ApplyDefaultVisual fills render hints from the type color table when unset
func (a *Artifact) ApplyDefaultVisual(cfg *config.DomainConfig) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if a.visual.Color == "" {
		if c, ok := cfg.Colors[a.artType.String()]; ok {
			a.visual.Color = c
		} else {
			a.visual.Color = cfg.DefaultColor
		}
	}
	if a.visual.Radius == 0 {
		a.visual.Radius = cfg.NodeRadiusPx
	}
	if a.visual.Opacity == 0 {
		a.visual.Opacity = 1
	}
}

// CreatedAt returns when the artifact was created
func (a *Artifact) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt returns when the artifact was last updated
func (a *Artifact) UpdatedAt() time.Time {
	return a.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (a *Artifact) GetUncommittedEvents() []events.DomainEvent {
	return a.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (a *Artifact) MarkEventsAsCommitted() {
	a.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (a *Artifact) addEvent(event events.DomainEvent) {
	a.events = append(a.events, event)
}
