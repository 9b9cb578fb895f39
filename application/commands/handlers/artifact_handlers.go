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

// CreateArtifactHandler handles CreateArtifactCommand
type CreateArtifactHandler struct {
	artifacts ports.ArtifactRepository
	eventBus  ports.EventBus
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewCreateArtifactHandler creates a new handler instance
func NewCreateArtifactHandler(artifacts ports.ArtifactRepository, eventBus ports.EventBus, cfg *config.DomainConfig, logger *zap.Logger) *CreateArtifactHandler {
	return &CreateArtifactHandler{artifacts: artifacts, eventBus: eventBus, cfg: cfg, logger: logger}
}

// Handle executes the create artifact command
func (h *CreateArtifactHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.CreateArtifactCommand)
	if !ok {
		return pkgerrors.NewInternalError("unexpected command type")
	}

	name, err := valueobjects.NewArtifactNameWithConfig(cmd.Name, h.cfg)
	if err != nil {
		return err
	}
	artType, err := valueobjects.ParseArtifactType(cmd.Type)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	description, err := valueobjects.NewDescriptionWithConfig(cmd.Description, h.cfg)
	if err != nil {
		return err
	}

	if h.cfg.RequireUniqueNames {
		exists, err := h.artifacts.ExistsByName(ctx, cmd.Name)
		if err != nil {
			return err
		}
		if exists {
			return pkgerrors.NewConflictError("an artifact with this name already exists")
		}
	}

	artifact, err := entities.NewArtifact(name, artType, description, valueobjects.NewPosition(cmd.X, cmd.Y), cmd.Source)
	if err != nil {
		return err
	}
	artifact.ApplyDefaultVisual(h.cfg)

	if err := h.artifacts.Save(ctx, artifact); err != nil {
		return err
	}

	h.publish(ctx, artifact.GetUncommittedEvents())
	artifact.MarkEventsAsCommitted()

	h.logger.Info("artifact created",
		zap.String("id", artifact.ID().String()),
		zap.String("type", artType.String()))
	return nil
}

func (h *CreateArtifactHandler) publish(ctx context.Context, evs []events.DomainEvent) {
	if err := h.eventBus.PublishBatch(ctx, evs); err != nil {
		h.logger.Warn("event publish failed", zap.Error(err))
	}
}

// UpdateArtifactHandler handles UpdateArtifactCommand
type UpdateArtifactHandler struct {
	artifacts ports.ArtifactRepository
	eventBus  ports.EventBus
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewUpdateArtifactHandler creates a new handler instance
func NewUpdateArtifactHandler(artifacts ports.ArtifactRepository, eventBus ports.EventBus, cfg *config.DomainConfig, logger *zap.Logger) *UpdateArtifactHandler {
	return &UpdateArtifactHandler{artifacts: artifacts, eventBus: eventBus, cfg: cfg, logger: logger}
}

// Handle executes the update artifact command
func (h *UpdateArtifactHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.UpdateArtifactCommand)
	if !ok {
		return pkgerrors.NewInternalError("unexpected command type")
	}

	id, err := valueobjects.NewArtifactIDFromString(cmd.ID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	description, err := valueobjects.NewDescriptionWithConfig(cmd.Description, h.cfg)
	if err != nil {
		return err
	}

	artifact, err := h.artifacts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := artifact.UpdateDescription(description, cmd.Source); err != nil {
		return err
	}
	if err := h.artifacts.Save(ctx, artifact); err != nil {
		return err
	}

	if err := h.eventBus.PublishBatch(ctx, artifact.GetUncommittedEvents()); err != nil {
		h.logger.Warn("event publish failed", zap.Error(err))
	}
	artifact.MarkEventsAsCommitted()
	return nil
}

// MoveArtifactHandler handles MoveArtifactCommand
type MoveArtifactHandler struct {
	artifacts ports.ArtifactRepository
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewMoveArtifactHandler creates a new handler instance
func NewMoveArtifactHandler(artifacts ports.ArtifactRepository, eventBus ports.EventBus, logger *zap.Logger) *MoveArtifactHandler {
	return &MoveArtifactHandler{artifacts: artifacts, eventBus: eventBus, logger: logger}
}

// Handle executes the move artifact command
func (h *MoveArtifactHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.MoveArtifactCommand)
	if !ok {
		return pkgerrors.NewInternalError("unexpected command type")
	}

	id, err := valueobjects.NewArtifactIDFromString(cmd.ID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	artifact, err := h.artifacts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := artifact.MoveTo(valueobjects.NewPosition(cmd.X, cmd.Y), cmd.Source); err != nil {
		return err
	}
	if err := h.artifacts.Save(ctx, artifact); err != nil {
		return err
	}

	if err := h.eventBus.PublishBatch(ctx, artifact.GetUncommittedEvents()); err != nil {
		h.logger.Warn("event publish failed", zap.Error(err))
	}
	artifact.MarkEventsAsCommitted()
	return nil
}

// DeleteArtifactHandler handles DeleteArtifactCommand
type DeleteArtifactHandler struct {
	artifacts     ports.ArtifactRepository
	relationships ports.RelationshipRepository
	eventBus      ports.EventBus
	logger        *zap.Logger
}

// NewDeleteArtifactHandler creates a new handler instance
func NewDeleteArtifactHandler(artifacts ports.ArtifactRepository, relationships ports.RelationshipRepository, eventBus ports.EventBus, logger *zap.Logger) *DeleteArtifactHandler {
	return &DeleteArtifactHandler{artifacts: artifacts, relationships: relationships, eventBus: eventBus, logger: logger}
}

// Handle executes the delete artifact command
func (h *DeleteArtifactHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.DeleteArtifactCommand)
	if !ok {
		return pkgerrors.NewInternalError("unexpected command type")
	}

	id, err := valueobjects.NewArtifactIDFromString(cmd.ID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	// Relationships go first so the node set never renders dangling edges.
	if err := h.relationships.DeleteByArtifactIDs(ctx, []valueobjects.ArtifactID{id}); err != nil {
		return err
	}
	if err := h.artifacts.Delete(ctx, id); err != nil {
		return err
	}

	ev := events.NewArtifactDeleted(id, cmd.Source, time.Now())
	if err := h.eventBus.Publish(ctx, ev); err != nil {
		h.logger.Warn("event publish failed", zap.Error(err))
	}
	return nil
}

// BulkDeleteArtifactsHandler handles BulkDeleteArtifactsCommand
type BulkDeleteArtifactsHandler struct {
	artifacts     ports.ArtifactRepository
	relationships ports.RelationshipRepository
	eventBus      ports.EventBus
	logger        *zap.Logger
}

// NewBulkDeleteArtifactsHandler creates a new handler instance
func NewBulkDeleteArtifactsHandler(artifacts ports.ArtifactRepository, relationships ports.RelationshipRepository, eventBus ports.EventBus, logger *zap.Logger) *BulkDeleteArtifactsHandler {
	return &BulkDeleteArtifactsHandler{artifacts: artifacts, relationships: relationships, eventBus: eventBus, logger: logger}
}

// Handle executes the bulk delete command. Ids that fail to delete are
// logged and skipped; every id that can be deleted is deleted, so the
// caller may clear its selection unconditionally.
func (h *BulkDeleteArtifactsHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.BulkDeleteArtifactsCommand)
	if !ok {
		return pkgerrors.NewInternalError("unexpected command type")
	}

	ids := make([]valueobjects.ArtifactID, 0, len(cmd.IDs))
	for _, raw := range cmd.IDs {
		id, err := valueobjects.NewArtifactIDFromString(raw)
		if err != nil {
			h.logger.Warn("skipping invalid artifact id in bulk delete", zap.String("id", raw))
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return pkgerrors.NewValidationError("no valid artifact ids to delete")
	}

	if err := h.relationships.DeleteByArtifactIDs(ctx, ids); err != nil {
		return err
	}

	var deleted []valueobjects.ArtifactID
	if err := h.artifacts.DeleteBatch(ctx, ids); err != nil {
		// Fall back to one-by-one so a single bad row cannot block the
		// rest of the selection.
		for _, id := range ids {
			if derr := h.artifacts.Delete(ctx, id); derr != nil {
				h.logger.Warn("bulk delete failed for artifact",
					zap.String("id", id.String()), zap.Error(derr))
				continue
			}
			deleted = append(deleted, id)
		}
	} else {
		deleted = ids
	}

	now := time.Now()
	evs := make([]events.DomainEvent, 0, len(deleted))
	for _, id := range deleted {
		evs = append(evs, events.NewArtifactDeleted(id, cmd.Source, now))
	}
	if err := h.eventBus.PublishBatch(ctx, evs); err != nil {
		h.logger.Warn("event publish failed", zap.Error(err))
	}

	h.logger.Info("bulk delete completed",
		zap.Int("requested", len(cmd.IDs)),
		zap.Int("deleted", len(deleted)))
	return nil
}
