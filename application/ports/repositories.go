package ports

import (
	"context"

	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/events"
)

// ArtifactRepository defines the interface for artifact persistence.
// This is a port in hexagonal architecture - the domain doesn't know
// about the implementation.
type ArtifactRepository interface {
	// Save persists an artifact (create or update)
	Save(ctx context.Context, artifact *entities.Artifact) error

	// GetByID retrieves an artifact by its ID
	GetByID(ctx context.Context, id valueobjects.ArtifactID) (*entities.Artifact, error)

	// GetAll retrieves every committed artifact
	GetAll(ctx context.Context) ([]*entities.Artifact, error)

	// GetByType retrieves all artifacts of one type
	GetByType(ctx context.Context, artType valueobjects.ArtifactType) ([]*entities.Artifact, error)

	// Search finds artifacts matching the given criteria
	Search(ctx context.Context, criteria SearchCriteria) ([]*entities.Artifact, error)

	// ExistsByName reports whether a committed artifact already uses the
	// name, compared case-insensitively
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Delete removes an artifact
	Delete(ctx context.Context, id valueobjects.ArtifactID) error

	// BulkSave saves multiple artifacts in one transaction
	BulkSave(ctx context.Context, artifacts []*entities.Artifact) error

	// DeleteBatch removes multiple artifacts in one transaction
	DeleteBatch(ctx context.Context, ids []valueobjects.ArtifactID) error
}

// RelationshipRepository defines the interface for edge persistence
type RelationshipRepository interface {
	// Save persists a relationship
	Save(ctx context.Context, rel *entities.Relationship) error

	// GetByID retrieves a relationship by its derived ID
	GetByID(ctx context.Context, id string) (*entities.Relationship, error)

	// GetAll retrieves every relationship
	GetAll(ctx context.Context) ([]*entities.Relationship, error)

	// GetByArtifactID retrieves all relationships touching an artifact
	GetByArtifactID(ctx context.Context, id valueobjects.ArtifactID) ([]*entities.Relationship, error)

	// Delete removes a relationship
	Delete(ctx context.Context, id string) error

	// DeleteByArtifactIDs removes every relationship touching any of the
	// given artifacts
	DeleteByArtifactIDs(ctx context.Context, ids []valueobjects.ArtifactID) error
}

// TemporalRepository defines the interface for draft persistence
type TemporalRepository interface {
	// Save persists a draft (create or update)
	Save(ctx context.Context, draft *entities.TemporalArtifact) error

	// GetByID retrieves a draft by its ID
	GetByID(ctx context.Context, id valueobjects.TemporalID) (*entities.TemporalArtifact, error)

	// GetAll retrieves every outstanding draft
	GetAll(ctx context.Context) ([]*entities.TemporalArtifact, error)

	// Delete removes a draft
	Delete(ctx context.Context, id valueobjects.TemporalID) error
}

// SnapshotStore serializes the whole collection for backup/restore
type SnapshotStore interface {
	// Export produces a serialized snapshot of all data
	Export(ctx context.Context) (string, error)

	// Import replaces all data from a serialized snapshot
	Import(ctx context.Context, snapshot string) error
}

// SearchCriteria defines search parameters
type SearchCriteria struct {
	Query string
	Types []valueobjects.ArtifactType
	Limit int
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for event distribution between views
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler; call on component teardown to
	// prevent leaks
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Simulation is the force-directed renderer collaborator. The core feeds
// it data and drag pins; it reports positions through the tick callback.
// It is never the source of truth for committed coordinates.
type Simulation interface {
	// SetGraph replaces the simulated node and link sets
	SetGraph(nodes []*entities.Artifact, links []*entities.Relationship)

	// Pin fixes a node at the given coordinates while it is gripped
	Pin(id valueobjects.ArtifactID, x, y float64)

	// Unpin releases a gripped node back to the simulation
	Unpin(id valueobjects.ArtifactID)

	// OnTick registers the per-step position callback
	OnTick(fn func(positions map[string]valueobjects.Position))
}

// Notifier surfaces transient, user-visible notifications. Repository
// failures during optimistic interactions go here instead of rolling
// back local state.
type Notifier interface {
	Info(message string)
	Error(message string)
}
