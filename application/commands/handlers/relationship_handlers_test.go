package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"semcanvas/application/commands"
	"semcanvas/domain/config"
	"semcanvas/domain/events"
	pkgerrors "semcanvas/pkg/errors"
)

func TestCreateRelationshipHandlerDefaultsTypeAndWeight(t *testing.T) {
	ctx := context.Background()
	artifacts := newFakeArtifacts()
	seedArtifact(t, artifacts, "Origen")
	seedArtifact(t, artifacts, "Destino")
	relationships := newFakeRelationships()
	eventBus := &fakeBus{}
	cfg := config.DefaultDomainConfig()
	handler := NewCreateRelationshipHandler(artifacts, relationships, eventBus, cfg, zap.NewNop())

	err := handler.Handle(ctx, commands.CreateRelationshipCommand{
		SourceID: "Origen",
		TargetID: "Destino",
		Source:   "canvas",
	})
	require.NoError(t, err)

	rel, ok := relationships.byID["Origen->Destino"]
	require.True(t, ok)
	assert.Equal(t, "references", rel.Type())
	assert.Equal(t, cfg.DefaultRelationshipWeight, rel.Weight())
	assert.Contains(t, eventBus.types(), events.TypeRelationshipCreated)
}

func TestCreateRelationshipHandlerRequiresBothEndpoints(t *testing.T) {
	ctx := context.Background()
	artifacts := newFakeArtifacts()
	seedArtifact(t, artifacts, "Origen")
	handler := NewCreateRelationshipHandler(artifacts, newFakeRelationships(), &fakeBus{}, config.DefaultDomainConfig(), zap.NewNop())

	err := handler.Handle(ctx, commands.CreateRelationshipCommand{
		SourceID: "Origen",
		TargetID: "Fantasma",
		Source:   "canvas",
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCreateRelationshipHandlerIdempotentForSamePair(t *testing.T) {
	ctx := context.Background()
	artifacts := newFakeArtifacts()
	seedArtifact(t, artifacts, "Origen")
	seedArtifact(t, artifacts, "Destino")
	relationships := newFakeRelationships()
	eventBus := &fakeBus{}
	handler := NewCreateRelationshipHandler(artifacts, relationships, eventBus, config.DefaultDomainConfig(), zap.NewNop())

	cmd := commands.CreateRelationshipCommand{SourceID: "Origen", TargetID: "Destino", Source: "canvas"}
	require.NoError(t, handler.Handle(ctx, cmd))
	require.NoError(t, handler.Handle(ctx, cmd))

	assert.Len(t, relationships.byID, 1)
	assert.Len(t, eventBus.published, 1)
}

func TestDeleteRelationshipHandler(t *testing.T) {
	ctx := context.Background()
	artifacts := newFakeArtifacts()
	origen := seedArtifact(t, artifacts, "Origen")
	destino := seedArtifact(t, artifacts, "Destino")
	relationships := newFakeRelationships()
	eventBus := &fakeBus{}

	cfg := config.DefaultDomainConfig()
	create := NewCreateRelationshipHandler(artifacts, relationships, eventBus, cfg, zap.NewNop())
	require.NoError(t, create.Handle(ctx, commands.CreateRelationshipCommand{
		SourceID: origen.ID().String(),
		TargetID: destino.ID().String(),
		Source:   "canvas",
	}))

	handler := NewDeleteRelationshipHandler(relationships, eventBus, zap.NewNop())
	require.NoError(t, handler.Handle(ctx, commands.DeleteRelationshipCommand{
		ID:     "Origen->Destino",
		Source: "canvas",
	}))

	assert.Empty(t, relationships.byID)
	assert.Contains(t, eventBus.types(), events.TypeRelationshipDeleted)
}

func TestDeleteRelationshipHandlerUnknownID(t *testing.T) {
	handler := NewDeleteRelationshipHandler(newFakeRelationships(), &fakeBus{}, zap.NewNop())

	err := handler.Handle(context.Background(), commands.DeleteRelationshipCommand{
		ID:     "Nada->Nadie",
		Source: "canvas",
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}
