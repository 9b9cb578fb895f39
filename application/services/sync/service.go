// Package sync keeps the outline text and the stored graph in step.
// Applying edited text reconciles the artifact collection against the
// parsed document; rendering walks the collection back out as outline
// text. The renderer simulation is refreshed after every reconcile.
package sync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"semcanvas/application/ports"
	"semcanvas/domain/config"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/events"
	"semcanvas/domain/parser"
	pkgerrors "semcanvas/pkg/errors"
)

// sectionOrder fixes the rendering order of outline sections
var sectionOrder = []valueobjects.ArtifactType{
	valueobjects.TypePurpose,
	valueobjects.TypeVision,
	valueobjects.TypePolicy,
	valueobjects.TypePrinciple,
	valueobjects.TypeGuideline,
	valueobjects.TypeContext,
	valueobjects.TypeActor,
	valueobjects.TypeConcept,
	valueobjects.TypeProcess,
	valueobjects.TypeProcedure,
	valueobjects.TypeEvent,
	valueobjects.TypeResult,
	valueobjects.TypeObservation,
	valueobjects.TypeEvaluation,
	valueobjects.TypeIndicator,
	valueobjects.TypeArea,
	valueobjects.TypeAuthority,
}

// Service reconciles the outline text representation with the stored
// graph
type Service struct {
	cfg           *config.DomainConfig
	parser        *parser.Parser
	writer        *parser.Writer
	artifacts     ports.ArtifactRepository
	relationships ports.RelationshipRepository
	sim           ports.Simulation
	eventBus      ports.EventPublisher
	logger        *zap.Logger
}

// NewService creates the synchronizer
func NewService(cfg *config.DomainConfig, artifacts ports.ArtifactRepository, relationships ports.RelationshipRepository, sim ports.Simulation, eventBus ports.EventPublisher, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:           cfg,
		parser:        parser.New(cfg),
		writer:        parser.NewWriter(cfg),
		artifacts:     artifacts,
		relationships: relationships,
		sim:           sim,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// ApplyText makes the stored graph match the outline text: parsed
// definitions are upserted with their stored positions preserved,
// artifacts no longer present in the text are removed along with their
// relationships, and the link set is replaced by the parsed one.
func (s *Service) ApplyText(ctx context.Context, text, source string) (parser.Document, error) {
	doc := s.parser.Parse(text)

	existing, err := s.artifacts.GetAll(ctx)
	if err != nil {
		return parser.Document{}, pkgerrors.Wrap(err, "load artifacts")
	}
	byID := make(map[string]*entities.Artifact, len(existing))
	for _, a := range existing {
		byID[a.ID().String()] = a
	}

	now := time.Now()
	var batch []events.DomainEvent

	merged := make([]*entities.Artifact, 0, len(doc.Nodes))
	for _, node := range doc.Nodes {
		prev, known := byID[node.ID().String()]
		next := node
		if known {
			// Positions and render hints belong to the canvas, not the
			// text; carry them over.
			next, err = entities.ReconstructArtifact(
				node.ID(), node.Name(), node.Type(), node.Description(),
				prev.Position(), prev.Visual(), prev.CreatedAt(), now,
			)
			if err != nil {
				return parser.Document{}, err
			}
			next.ApplyDefaultVisual(s.cfg)
		}
		merged = append(merged, next)

		switch {
		case !known:
			batch = append(batch, events.NewArtifactCreated(next.ID(), next.Name().String(), next.Type(), source, now))
		case artifactChanged(prev, next):
			batch = append(batch, events.NewArtifactUpdated(next.ID(), source, now))
		}
	}

	if err := s.artifacts.BulkSave(ctx, merged); err != nil {
		return parser.Document{}, pkgerrors.Wrap(err, "save parsed artifacts")
	}

	// Anything the text no longer mentions goes, relationships first.
	var removed []valueobjects.ArtifactID
	present := make(map[string]struct{}, len(merged))
	for _, a := range merged {
		present[a.ID().String()] = struct{}{}
	}
	for _, a := range existing {
		if _, ok := present[a.ID().String()]; !ok {
			removed = append(removed, a.ID())
			batch = append(batch, events.NewArtifactDeleted(a.ID(), source, now))
		}
	}
	if len(removed) > 0 {
		if err := s.relationships.DeleteByArtifactIDs(ctx, removed); err != nil {
			return parser.Document{}, pkgerrors.Wrap(err, "delete relationships of removed artifacts")
		}
		if err := s.artifacts.DeleteBatch(ctx, removed); err != nil {
			return parser.Document{}, pkgerrors.Wrap(err, "delete removed artifacts")
		}
	}

	linkEvents, err := s.reconcileLinks(ctx, doc, source)
	if err != nil {
		return parser.Document{}, err
	}
	batch = append(batch, linkEvents...)

	doc.Nodes = merged
	doc.Links = parser.ResolveLinks(doc.Nodes, doc.Links)
	if s.sim != nil {
		s.sim.SetGraph(doc.Nodes, doc.Links)
	}
	s.publish(ctx, batch)
	return doc, nil
}

// reconcileLinks replaces the stored link set with the parsed one
func (s *Service) reconcileLinks(ctx context.Context, doc parser.Document, source string) ([]events.DomainEvent, error) {
	stored, err := s.relationships.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load relationships")
	}
	storedByID := make(map[string]*entities.Relationship, len(stored))
	for _, r := range stored {
		storedByID[r.ID()] = r
	}

	var batch []events.DomainEvent
	wanted := make(map[string]struct{}, len(doc.Links))
	for _, link := range doc.Links {
		wanted[link.ID()] = struct{}{}
		if _, ok := storedByID[link.ID()]; ok {
			continue
		}
		if err := s.relationships.Save(ctx, link); err != nil {
			return nil, pkgerrors.Wrap(err, "save parsed relationship")
		}
		batch = append(batch, events.NewRelationshipCreated(link.ID(), link.SourceID(), link.TargetID(), source, link.CreatedAt()))
	}
	for id, r := range storedByID {
		if _, ok := wanted[id]; ok {
			continue
		}
		if err := s.relationships.Delete(ctx, id); err != nil {
			return nil, pkgerrors.Wrap(err, "delete stale relationship")
		}
		batch = append(batch, events.NewRelationshipDeleted(id, source, r.CreatedAt()))
	}
	return batch, nil
}

// RenderOutline walks the stored collection back out as outline text.
// Reference placeholders have no definition line of their own; they
// reappear as @mentions inside the descriptions that spawned them.
func (s *Service) RenderOutline(ctx context.Context) (string, error) {
	all, err := s.artifacts.GetAll(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(err, "load artifacts")
	}

	grouped := make(map[valueobjects.ArtifactType][]*entities.Artifact)
	for _, a := range all {
		if a.IsReference() {
			continue
		}
		grouped[a.Type()] = append(grouped[a.Type()], a)
	}

	var b strings.Builder
	for _, t := range sectionOrder {
		section := grouped[t]
		if len(section) == 0 {
			continue
		}
		sort.Slice(section, func(i, j int) bool {
			return section[i].Name().String() < section[j].Name().String()
		})
		header, ok := s.cfg.Sections[t.String()]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(header)
		b.WriteString("\n")
		for _, a := range section {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", a.Name().String(), a.Description().String()))
		}
	}
	return b.String(), nil
}

// CommitReference finishes an autocomplete commit that chose the
// "create new artifact" entry: the named artifact is inserted into its
// category section of the outline and the whole text is re-applied.
func (s *Service) CommitReference(ctx context.Context, text, name string, artType valueobjects.ArtifactType, source string) (string, parser.Document, error) {
	if !artType.IsValid() {
		artType = valueobjects.TypeConcept
	}
	next := s.writer.InsertArtifact(text, name, "", artType)
	doc, err := s.ApplyText(ctx, next, source)
	if err != nil {
		return "", parser.Document{}, err
	}
	return next, doc, nil
}

func artifactChanged(prev, next *entities.Artifact) bool {
	return prev.Type() != next.Type() ||
		prev.Name().String() != next.Name().String() ||
		prev.Description().String() != next.Description().String()
}

func (s *Service) publish(ctx context.Context, batch []events.DomainEvent) {
	if s.eventBus == nil || len(batch) == 0 {
		return
	}
	if err := s.eventBus.PublishBatch(ctx, batch); err != nil {
		s.logger.Error("could not publish sync events", zap.Error(err))
	}
}
