package entities

import (
	"time"

	"semcanvas/domain/config"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/events"
	pkgerrors "semcanvas/pkg/errors"
)

// TemporalStatus is the lifecycle state of an uncommitted draft
type TemporalStatus string

const (
	StatusCreating TemporalStatus = "creating"
	StatusEditing  TemporalStatus = "editing"
	StatusSaving   TemporalStatus = "saving"
	StatusError    TemporalStatus = "error"
)

// TemporalArtifact is an uncommitted draft. It shares the artifact shape
// but lives in its own id namespace and its own collection; a draft and a
// permanent artifact never coexist for the same identity.
type TemporalArtifact struct {
	id               valueobjects.TemporalID
	name             string
	artType          valueobjects.ArtifactType
	description      string
	position         valueobjects.Position
	status           TemporalStatus
	validationErrors []string
	createdAt        time.Time
	updatedAt        time.Time

	events []events.DomainEvent
}

// NewTemporalArtifact instantiates a draft at the coordinates of a canvas
// click. The name starts empty; validation runs on every keystroke but
// never blocks input.
func NewTemporalArtifact(artType valueobjects.ArtifactType, position valueobjects.Position, source string) (*TemporalArtifact, error) {
	if !artType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown artifact type")
	}

	now := time.Now()
	draft := &TemporalArtifact{
		id:        valueobjects.NewTemporalID(),
		artType:   artType,
		position:  position,
		status:    StatusCreating,
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}

	draft.addEvent(events.NewTemporalCreated(draft.id, source, now))

	return draft, nil
}

// ReconstructTemporalArtifact rebuilds a draft from repository data
func ReconstructTemporalArtifact(
	id valueobjects.TemporalID,
	name string,
	artType valueobjects.ArtifactType,
	description string,
	position valueobjects.Position,
	status TemporalStatus,
	validationErrors []string,
	createdAt, updatedAt time.Time,
) *TemporalArtifact {
	return &TemporalArtifact{
		id:               id,
		name:             name,
		artType:          artType,
		description:      description,
		position:         position,
		status:           status,
		validationErrors: validationErrors,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
		events:           []events.DomainEvent{},
	}
}

// ID returns the draft identifier
func (t *TemporalArtifact) ID() valueobjects.TemporalID {
	return t.id
}

// Name returns the draft's current name text
func (t *TemporalArtifact) Name() string {
	return t.name
}

// Type returns the draft's artifact type
func (t *TemporalArtifact) Type() valueobjects.ArtifactType {
	return t.artType
}

// Description returns the draft's current description text
func (t *TemporalArtifact) Description() string {
	return t.description
}

// Position returns the draft's canvas position
func (t *TemporalArtifact) Position() valueobjects.Position {
	return t.position
}

// Status returns the draft's lifecycle state
func (t *TemporalArtifact) Status() TemporalStatus {
	return t.status
}

// ValidationErrors returns the messages attached by the last validation pass
func (t *TemporalArtifact) ValidationErrors() []string {
	errs := make([]string, len(t.validationErrors))
	copy(errs, t.validationErrors)
	return errs
}

// SetName records a name keystroke and re-validates. A non-empty name
// moves the draft from creating to editing; errors are attached, not
// returned, so typing is never interrupted.
func (t *TemporalArtifact) SetName(name string, cfg *config.DomainConfig, source string) {
	t.name = name
	t.updatedAt = time.Now()
	t.revalidate(cfg)

	if t.status == StatusCreating && name != "" {
		t.status = StatusEditing
	}

	t.addEvent(events.NewTemporalUpdated(t.id, source, t.updatedAt))
}

// SetDescription records a description keystroke and re-validates
func (t *TemporalArtifact) SetDescription(description string, cfg *config.DomainConfig, source string) {
	t.description = description
	t.updatedAt = time.Now()
	t.revalidate(cfg)

	t.addEvent(events.NewTemporalUpdated(t.id, source, t.updatedAt))
}

// SetType changes the draft's artifact type
func (t *TemporalArtifact) SetType(artType valueobjects.ArtifactType, source string) error {
	if !artType.IsValid() {
		return pkgerrors.NewValidationError("unknown artifact type")
	}
	t.artType = artType
	t.updatedAt = time.Now()
	t.addEvent(events.NewTemporalUpdated(t.id, source, t.updatedAt))
	return nil
}

// BeginSave transitions to saving. The commit itself happens at the
// application layer; a validation failure there calls MarkError.
func (t *TemporalArtifact) BeginSave(cfg *config.DomainConfig) error {
	t.revalidate(cfg)
	if len(t.validationErrors) > 0 {
		t.status = StatusError
		return pkgerrors.NewValidationError(t.validationErrors[0])
	}
	t.status = StatusSaving
	t.updatedAt = time.Now()
	return nil
}

// MarkError records a failed commit; the draft persists for correction
func (t *TemporalArtifact) MarkError(messages ...string) {
	t.status = StatusError
	t.validationErrors = append(t.validationErrors, messages...)
	t.updatedAt = time.Now()
}

// ToArtifact builds the permanent artifact from the accumulated fields.
// Callers re-validate first; this is the promotion half of the atomic
// promote-then-delete commit.
func (t *TemporalArtifact) ToArtifact(cfg *config.DomainConfig, source string) (*Artifact, error) {
	name, err := valueobjects.NewArtifactNameWithConfig(t.name, cfg)
	if err != nil {
		return nil, err
	}
	description, err := valueobjects.NewDescriptionWithConfig(t.description, cfg)
	if err != nil {
		return nil, err
	}
	return NewArtifact(name, t.artType, description, t.position.Unpin(), source)
}

// revalidate recomputes validationErrors from the current fields
func (t *TemporalArtifact) revalidate(cfg *config.DomainConfig) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	t.validationErrors = nil

	if _, err := valueobjects.NewArtifactNameWithConfig(t.name, cfg); err != nil {
		t.validationErrors = append(t.validationErrors, err.Error())
	}
	if _, err := valueobjects.NewDescriptionWithConfig(t.description, cfg); err != nil {
		t.validationErrors = append(t.validationErrors, err.Error())
	}
}

// CreatedAt returns when the draft was instantiated
func (t *TemporalArtifact) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt returns when the draft was last touched
func (t *TemporalArtifact) UpdatedAt() time.Time {
	return t.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (t *TemporalArtifact) GetUncommittedEvents() []events.DomainEvent {
	return t.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (t *TemporalArtifact) MarkEventsAsCommitted() {
	t.events = []events.DomainEvent{}
}

func (t *TemporalArtifact) addEvent(event events.DomainEvent) {
	t.events = append(t.events, event)
}
