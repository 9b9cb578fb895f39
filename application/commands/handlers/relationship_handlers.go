package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"semcanvas/application/commands"
	"semcanvas/application/commands/bus"
	"semcanvas/application/ports"
	"semcanvas/domain/config"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/events"
	pkgerrors "semcanvas/pkg/errors"
)

// CreateRelationshipHandler handles CreateRelationshipCommand
type CreateRelationshipHandler struct {
	artifacts     ports.ArtifactRepository
	relationships ports.RelationshipRepository
	eventBus      ports.EventBus
	cfg           *config.DomainConfig
	logger        *zap.Logger
}

// NewCreateRelationshipHandler creates a new handler instance
func NewCreateRelationshipHandler(artifacts ports.ArtifactRepository, relationships ports.RelationshipRepository, eventBus ports.EventBus, cfg *config.DomainConfig, logger *zap.Logger) *CreateRelationshipHandler {
	return &CreateRelationshipHandler{artifacts: artifacts, relationships: relationships, eventBus: eventBus, cfg: cfg, logger: logger}
}

// Handle executes the create relationship command. Both endpoints must
// resolve to committed artifacts (reference placeholders included).
func (h *CreateRelationshipHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.CreateRelationshipCommand)
	if !ok {
		return pkgerrors.NewInternalError("unexpected command type")
	}

	sourceID, err := valueobjects.NewArtifactIDFromString(cmd.SourceID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	targetID, err := valueobjects.NewArtifactIDFromString(cmd.TargetID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	if _, err := h.artifacts.GetByID(ctx, sourceID); err != nil {
		return pkgerrors.Wrap(err, "relationship source")
	}
	if _, err := h.artifacts.GetByID(ctx, targetID); err != nil {
		return pkgerrors.Wrap(err, "relationship target")
	}

	weight := cmd.Weight
	if weight == 0 {
		weight = h.cfg.DefaultRelationshipWeight
	}

	rel, err := entities.NewRelationshipWithOptions(sourceID, targetID, cmd.Type, weight, h.cfg)
	if err != nil {
		return err
	}

	if existing, err := h.relationships.GetByID(ctx, rel.ID()); err == nil && existing != nil {
		// The ordered pair already has an identity; creating it again is
		// a no-op rather than a duplicate edge.
		return nil
	}

	if err := h.relationships.Save(ctx, rel); err != nil {
		return err
	}

	ev := events.NewRelationshipCreated(rel.ID(), sourceID, targetID, cmd.Source, time.Now())
	if err := h.eventBus.Publish(ctx, ev); err != nil {
		h.logger.Warn("event publish failed", zap.Error(err))
	}

	h.logger.Info("relationship created", zap.String("id", rel.ID()))
	return nil
}

// DeleteRelationshipHandler handles DeleteRelationshipCommand
type DeleteRelationshipHandler struct {
	relationships ports.RelationshipRepository
	eventBus      ports.EventBus
	logger        *zap.Logger
}

// NewDeleteRelationshipHandler creates a new handler instance
func NewDeleteRelationshipHandler(relationships ports.RelationshipRepository, eventBus ports.EventBus, logger *zap.Logger) *DeleteRelationshipHandler {
	return &DeleteRelationshipHandler{relationships: relationships, eventBus: eventBus, logger: logger}
}

// Handle executes the delete relationship command
func (h *DeleteRelationshipHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.DeleteRelationshipCommand)
	if !ok {
		return pkgerrors.NewInternalError("unexpected command type")
	}

	if err := h.relationships.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	ev := events.NewRelationshipDeleted(cmd.ID, cmd.Source, time.Now())
	if err := h.eventBus.Publish(ctx, ev); err != nil {
		h.logger.Warn("event publish failed", zap.Error(err))
	}
	return nil
}
