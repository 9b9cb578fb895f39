package events

import (
	"time"

	"semcanvas/domain/core/valueobjects"
)

// Event type names, one per mutating repository operation.
const (
	TypeArtifactCreated     = "artifact:created"
	TypeArtifactUpdated     = "artifact:updated"
	TypeArtifactMoved       = "artifact:moved"
	TypeArtifactDeleted     = "artifact:deleted"
	TypeRelationshipCreated = "relationship:created"
	TypeRelationshipDeleted = "relationship:deleted"
	TypeTemporalCreated     = "temporal:created"
	TypeTemporalUpdated     = "temporal:updated"
	TypeTemporalPromoted    = "temporal:promoted"
	TypeTemporalDeleted     = "temporal:deleted"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	// GetSource identifies the view or service that issued the mutation.
	// Subscribers filter on it so a view never reacts to its own
	// just-issued mutation twice.
	GetSource() string
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetSource() string       { return e.Source }

// Artifact events

// ArtifactCreated is raised when a new artifact is committed
type ArtifactCreated struct {
	BaseEvent
	ArtifactID valueobjects.ArtifactID   `json:"artifact_id"`
	Name       string                    `json:"name"`
	Type       valueobjects.ArtifactType `json:"type"`
}

// NewArtifactCreated creates an ArtifactCreated event
func NewArtifactCreated(id valueobjects.ArtifactID, name string, t valueobjects.ArtifactType, source string, timestamp time.Time) ArtifactCreated {
	return ArtifactCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeArtifactCreated,
			Timestamp:   timestamp,
			Source:      source,
		},
		ArtifactID: id,
		Name:       name,
		Type:       t,
	}
}

// ArtifactUpdated is raised when an artifact's name or description changes
type ArtifactUpdated struct {
	BaseEvent
	ArtifactID valueobjects.ArtifactID `json:"artifact_id"`
}

// NewArtifactUpdated creates an ArtifactUpdated event
func NewArtifactUpdated(id valueobjects.ArtifactID, source string, timestamp time.Time) ArtifactUpdated {
	return ArtifactUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeArtifactUpdated,
			Timestamp:   timestamp,
			Source:      source,
		},
		ArtifactID: id,
	}
}

// ArtifactMoved is raised when an artifact's committed position changes
type ArtifactMoved struct {
	BaseEvent
	ArtifactID  valueobjects.ArtifactID `json:"artifact_id"`
	OldPosition valueobjects.Position   `json:"old_position"`
	NewPosition valueobjects.Position   `json:"new_position"`
}

// NewArtifactMoved creates an ArtifactMoved event
func NewArtifactMoved(id valueobjects.ArtifactID, oldPos, newPos valueobjects.Position, source string, timestamp time.Time) ArtifactMoved {
	return ArtifactMoved{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeArtifactMoved,
			Timestamp:   timestamp,
			Source:      source,
		},
		ArtifactID:  id,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// ArtifactDeleted is raised when an artifact is removed
type ArtifactDeleted struct {
	BaseEvent
	ArtifactID valueobjects.ArtifactID `json:"artifact_id"`
}

// NewArtifactDeleted creates an ArtifactDeleted event
func NewArtifactDeleted(id valueobjects.ArtifactID, source string, timestamp time.Time) ArtifactDeleted {
	return ArtifactDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeArtifactDeleted,
			Timestamp:   timestamp,
			Source:      source,
		},
		ArtifactID: id,
	}
}

// Relationship events

// RelationshipCreated is raised when two artifacts are linked
type RelationshipCreated struct {
	BaseEvent
	RelationshipID string                  `json:"relationship_id"`
	SourceID       valueobjects.ArtifactID `json:"source_id"`
	TargetID       valueobjects.ArtifactID `json:"target_id"`
}

// NewRelationshipCreated creates a RelationshipCreated event
func NewRelationshipCreated(relID string, sourceID, targetID valueobjects.ArtifactID, source string, timestamp time.Time) RelationshipCreated {
	return RelationshipCreated{
		BaseEvent: BaseEvent{
			AggregateID: relID,
			EventType:   TypeRelationshipCreated,
			Timestamp:   timestamp,
			Source:      source,
		},
		RelationshipID: relID,
		SourceID:       sourceID,
		TargetID:       targetID,
	}
}

// RelationshipDeleted is raised when a link is removed
type RelationshipDeleted struct {
	BaseEvent
	RelationshipID string `json:"relationship_id"`
}

// NewRelationshipDeleted creates a RelationshipDeleted event
func NewRelationshipDeleted(relID string, source string, timestamp time.Time) RelationshipDeleted {
	return RelationshipDeleted{
		BaseEvent: BaseEvent{
			AggregateID: relID,
			EventType:   TypeRelationshipDeleted,
			Timestamp:   timestamp,
			Source:      source,
		},
		RelationshipID: relID,
	}
}

// Temporal artifact events

// TemporalCreated is raised when a draft artifact is instantiated
type TemporalCreated struct {
	BaseEvent
	TemporalID valueobjects.TemporalID `json:"temporal_id"`
}

// NewTemporalCreated creates a TemporalCreated event
func NewTemporalCreated(id valueobjects.TemporalID, source string, timestamp time.Time) TemporalCreated {
	return TemporalCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeTemporalCreated,
			Timestamp:   timestamp,
			Source:      source,
		},
		TemporalID: id,
	}
}

// TemporalUpdated is raised when a draft's name or description changes
type TemporalUpdated struct {
	BaseEvent
	TemporalID valueobjects.TemporalID `json:"temporal_id"`
}

// NewTemporalUpdated creates a TemporalUpdated event
func NewTemporalUpdated(id valueobjects.TemporalID, source string, timestamp time.Time) TemporalUpdated {
	return TemporalUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeTemporalUpdated,
			Timestamp:   timestamp,
			Source:      source,
		},
		TemporalID: id,
	}
}

// TemporalPromoted is raised when a draft becomes a permanent artifact
type TemporalPromoted struct {
	BaseEvent
	TemporalID valueobjects.TemporalID `json:"temporal_id"`
	ArtifactID valueobjects.ArtifactID `json:"artifact_id"`
}

// NewTemporalPromoted creates a TemporalPromoted event
func NewTemporalPromoted(tmpID valueobjects.TemporalID, artifactID valueobjects.ArtifactID, source string, timestamp time.Time) TemporalPromoted {
	return TemporalPromoted{
		BaseEvent: BaseEvent{
			AggregateID: tmpID.String(),
			EventType:   TypeTemporalPromoted,
			Timestamp:   timestamp,
			Source:      source,
		},
		TemporalID: tmpID,
		ArtifactID: artifactID,
	}
}

// TemporalDeleted is raised when a draft is discarded
type TemporalDeleted struct {
	BaseEvent
	TemporalID valueobjects.TemporalID `json:"temporal_id"`
}

// NewTemporalDeleted creates a TemporalDeleted event
func NewTemporalDeleted(id valueobjects.TemporalID, source string, timestamp time.Time) TemporalDeleted {
	return TemporalDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeTemporalDeleted,
			Timestamp:   timestamp,
			Source:      source,
		},
		TemporalID: id,
	}
}
