// Package temporal drives the draft artifact lifecycle: a canvas click
// spawns a draft, keystrokes edit and revalidate it, and an explicit
// save promotes it to a permanent artifact or records its errors.
package temporal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"semcanvas/application/ports"
	"semcanvas/domain/config"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/events"
	pkgerrors "semcanvas/pkg/errors"
)

// Service owns all draft mutations. Repository calls are issued
// optimistically; a draft discarded while a save is in flight is
// tolerated through existence checks rather than cancellation.
type Service struct {
	cfg       *config.DomainConfig
	drafts    ports.TemporalRepository
	artifacts ports.ArtifactRepository
	eventBus  ports.EventPublisher
	notifier  ports.Notifier
	logger    *zap.Logger

	// active is the single draft whose editor overlay is open. Opening
	// a new draft resolves the previous one first.
	active *valueobjects.TemporalID
}

// NewService creates the draft lifecycle service
func NewService(cfg *config.DomainConfig, drafts ports.TemporalRepository, artifacts ports.ArtifactRepository, eventBus ports.EventPublisher, notifier ports.Notifier, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		drafts:    drafts,
		artifacts: artifacts,
		eventBus:  eventBus,
		notifier:  notifier,
		logger:    logger,
	}
}

// ActiveDraft returns the draft currently being edited, if any
func (s *Service) ActiveDraft() (valueobjects.TemporalID, bool) {
	if s.active == nil {
		return valueobjects.TemporalID{}, false
	}
	return *s.active, true
}

// CreateDraft spawns a new draft at a canvas position. A previous draft
// still in the creating state (nothing typed yet) is discarded first;
// only one draft editor is open at a time.
func (s *Service) CreateDraft(ctx context.Context, x, y float64, source string) (*entities.TemporalArtifact, error) {
	if s.active != nil {
		if err := s.resolveActive(ctx, source); err != nil {
			return nil, err
		}
	}

	draft, err := entities.NewTemporalArtifact(valueobjects.TypeConcept, valueobjects.NewPosition(x, y), source)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(err, "save draft")
	}
	s.publishEvents(ctx, draft.GetUncommittedEvents())
	draft.MarkEventsAsCommitted()

	id := draft.ID()
	s.active = &id
	return draft, nil
}

// SetName applies a name keystroke. Validation runs on every change
// without blocking input; errors ride on the returned draft.
func (s *Service) SetName(ctx context.Context, id valueobjects.TemporalID, name, source string) (*entities.TemporalArtifact, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	draft.SetName(name, s.cfg, source)
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(err, "save draft")
	}
	s.publishEvents(ctx, draft.GetUncommittedEvents())
	draft.MarkEventsAsCommitted()
	return draft, nil
}

// SetDescription applies a description keystroke
func (s *Service) SetDescription(ctx context.Context, id valueobjects.TemporalID, description, source string) (*entities.TemporalArtifact, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	draft.SetDescription(description, s.cfg, source)
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(err, "save draft")
	}
	s.publishEvents(ctx, draft.GetUncommittedEvents())
	draft.MarkEventsAsCommitted()
	return draft, nil
}

// SetType overrides the default artifact type before commit
func (s *Service) SetType(ctx context.Context, id valueobjects.TemporalID, artType valueobjects.ArtifactType, source string) (*entities.TemporalArtifact, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := draft.SetType(artType, source); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(err, "save draft")
	}
	s.publishEvents(ctx, draft.GetUncommittedEvents())
	draft.MarkEventsAsCommitted()
	return draft, nil
}

// ConfirmName re-validates the name step. With zero errors the caller
// opens the description editor; with errors the draft stays put and the
// errors are surfaced on it.
func (s *Service) ConfirmName(ctx context.Context, id valueobjects.TemporalID) (*entities.TemporalArtifact, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Name() == "" {
		return draft, pkgerrors.NewValidationError("name is required")
	}
	if len(draft.ValidationErrors()) > 0 {
		return draft, pkgerrors.NewValidationError(draft.ValidationErrors()[0])
	}
	return draft, nil
}

// Commit promotes the draft to a permanent artifact and deletes the
// draft record, atomically from the caller's point of view. Validation
// failures move the draft to the error state and keep it for
// correction; nothing typed is ever lost.
func (s *Service) Commit(ctx context.Context, id valueobjects.TemporalID, source string) (*entities.Artifact, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := draft.BeginSave(s.cfg); err != nil {
		s.persistErrored(ctx, draft)
		return nil, err
	}

	if s.cfg.RequireUniqueNames {
		exists, err := s.artifacts.ExistsByName(ctx, draft.Name())
		if err != nil {
			draft.MarkError("could not verify name uniqueness")
			s.persistErrored(ctx, draft)
			return nil, pkgerrors.Wrap(err, "check name uniqueness")
		}
		if exists {
			msg := fmt.Sprintf("an artifact named %q already exists", draft.Name())
			draft.MarkError(msg)
			s.persistErrored(ctx, draft)
			return nil, pkgerrors.NewConflictError(msg)
		}
	}

	artifact, err := draft.ToArtifact(s.cfg, source)
	if err != nil {
		draft.MarkError(err.Error())
		s.persistErrored(ctx, draft)
		return nil, err
	}
	artifact.ApplyDefaultVisual(s.cfg)

	if err := s.artifacts.Save(ctx, artifact); err != nil {
		draft.MarkError("could not save artifact")
		s.persistErrored(ctx, draft)
		return nil, pkgerrors.Wrap(err, "save promoted artifact")
	}

	if err := s.drafts.Delete(ctx, id); err != nil {
		// The permanent artifact exists; log the orphaned draft rather
		// than failing the commit.
		s.logger.Warn("promoted draft could not be deleted",
			zap.String("temporal_id", id.String()),
			zap.Error(err))
	}

	batch := append(artifact.GetUncommittedEvents(),
		events.NewTemporalPromoted(id, artifact.ID(), source, artifact.UpdatedAt()))
	s.publishEvents(ctx, batch)
	artifact.MarkEventsAsCommitted()

	if s.active != nil && s.active.Equals(id) {
		s.active = nil
	}
	if s.notifier != nil {
		s.notifier.Info(fmt.Sprintf("created %s", artifact.Name().String()))
	}
	return artifact, nil
}

// Discard drops the draft without creating anything permanent. A draft
// already gone (committed or discarded elsewhere) is not an error.
func (s *Service) Discard(ctx context.Context, id valueobjects.TemporalID, source string) error {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			s.clearActive(id)
			return nil
		}
		return err
	}

	if err := s.drafts.Delete(ctx, draft.ID()); err != nil {
		return pkgerrors.Wrap(err, "delete draft")
	}
	s.publishEvents(ctx, []events.DomainEvent{
		events.NewTemporalDeleted(id, source, draft.UpdatedAt()),
	})
	s.clearActive(id)
	return nil
}

// resolveActive closes out the current draft before a new one opens:
// an untouched draft is discarded, an edited one keeps its record but
// loses the editor.
func (s *Service) resolveActive(ctx context.Context, source string) error {
	id := *s.active
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			s.active = nil
			return nil
		}
		return err
	}
	if draft.Status() == entities.StatusCreating {
		if err := s.Discard(ctx, id, source); err != nil {
			return err
		}
	}
	s.active = nil
	return nil
}

func (s *Service) persistErrored(ctx context.Context, draft *entities.TemporalArtifact) {
	if err := s.drafts.Save(ctx, draft); err != nil {
		s.logger.Error("could not persist draft error state",
			zap.String("temporal_id", draft.ID().String()),
			zap.Error(err))
	}
	s.publishEvents(ctx, draft.GetUncommittedEvents())
	draft.MarkEventsAsCommitted()
}

func (s *Service) publishEvents(ctx context.Context, batch []events.DomainEvent) {
	if s.eventBus == nil || len(batch) == 0 {
		return
	}
	if err := s.eventBus.PublishBatch(ctx, batch); err != nil {
		s.logger.Error("could not publish draft events", zap.Error(err))
	}
}

func (s *Service) clearActive(id valueobjects.TemporalID) {
	if s.active != nil && s.active.Equals(id) {
		s.active = nil
	}
}
