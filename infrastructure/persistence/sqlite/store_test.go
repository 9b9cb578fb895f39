package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semcanvas/application/ports"
	"semcanvas/domain/config"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	pkgerrors "semcanvas/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "semcanvas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newArtifact(t *testing.T, name, description string, artType valueobjects.ArtifactType) *entities.Artifact {
	t.Helper()
	cfg := config.DefaultDomainConfig()
	n, err := valueobjects.NewArtifactNameWithConfig(name, cfg)
	require.NoError(t, err)
	d := valueobjects.RawDescription(description)
	a, err := entities.NewArtifact(n, artType, d, valueobjects.NewPosition(10, 20), "test")
	require.NoError(t, err)
	a.ApplyDefaultVisual(cfg)
	return a
}

func TestArtifactSaveAndGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	repo := NewArtifactRepository(store)
	ctx := context.Background()

	original := newArtifact(t, "Mapa Mental", "Representación visual del conocimiento", valueobjects.TypeConcept)
	require.NoError(t, repo.Save(ctx, original))

	loaded, err := repo.GetByID(ctx, original.ID())
	require.NoError(t, err)
	assert.Equal(t, "MapaMental", loaded.ID().String())
	assert.Equal(t, "Mapa Mental", loaded.Name().String())
	assert.Equal(t, valueobjects.TypeConcept, loaded.Type())
	assert.Equal(t, original.Description().String(), loaded.Description().String())
	assert.Equal(t, 10.0, loaded.Position().X)
	assert.Equal(t, 20.0, loaded.Position().Y)
	assert.Equal(t, original.Visual().Color, loaded.Visual().Color)
}

func TestArtifactSaveIsUpsert(t *testing.T) {
	store := openTestStore(t)
	repo := NewArtifactRepository(store)
	ctx := context.Background()

	a := newArtifact(t, "Visión", "Estado futuro deseado del sistema completo", valueobjects.TypeVision)
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, a.MoveTo(valueobjects.NewPosition(99, 77), "test"))
	require.NoError(t, repo.Save(ctx, a))

	loaded, err := repo.GetByID(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, 99.0, loaded.Position().X)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestArtifactPinIsNeverPersisted(t *testing.T) {
	store := openTestStore(t)
	repo := NewArtifactRepository(store)
	ctx := context.Background()

	a := newArtifact(t, "Proceso", "Secuencia de pasos repetible y observable", valueobjects.TypeProcess)
	require.NoError(t, a.MoveTo(a.Position().Pin(5, 5), "test"))
	require.NoError(t, repo.Save(ctx, a))

	loaded, err := repo.GetByID(ctx, a.ID())
	require.NoError(t, err)
	assert.False(t, loaded.Position().IsPinned())
}

func TestGetByTypeAndSearch(t *testing.T) {
	store := openTestStore(t)
	repo := NewArtifactRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newArtifact(t, "Equipo", "Personas que mantienen el sistema", valueobjects.TypeActor)))
	require.NoError(t, repo.Save(ctx, newArtifact(t, "Consejo", "Órgano que decide la dirección", valueobjects.TypeAuthority)))
	require.NoError(t, repo.Save(ctx, newArtifact(t, "Claridad", "Propiedad del sistema comprensible", valueobjects.TypePurpose)))

	actors, err := repo.GetByType(ctx, valueobjects.TypeActor)
	require.NoError(t, err)
	require.Len(t, actors, 1)
	assert.Equal(t, "Equipo", actors[0].Name().String())

	// Matches name or description, case-insensitively.
	found, err := repo.Search(ctx, ports.SearchCriteria{Query: "SISTEMA"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.Search(ctx, ports.SearchCriteria{
		Query: "sistema",
		Types: []valueobjects.ArtifactType{valueobjects.TypeActor},
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Equipo", found[0].Name().String())

	found, err = repo.Search(ctx, ports.SearchCriteria{Query: "sistema", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestExistsByNameIsCaseInsensitive(t *testing.T) {
	store := openTestStore(t)
	repo := NewArtifactRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newArtifact(t, "Equipo", "Personas que mantienen el sistema", valueobjects.TypeActor)))

	exists, err := repo.ExistsByName(ctx, "equipo")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, "Otro")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteBatchRemovesAllGiven(t *testing.T) {
	store := openTestStore(t)
	repo := NewArtifactRepository(store)
	ctx := context.Background()

	a := newArtifact(t, "Uno", "Primer artefacto de la colección", valueobjects.TypeConcept)
	b := newArtifact(t, "Dos", "Segundo artefacto de la colección", valueobjects.TypeConcept)
	c := newArtifact(t, "Tres", "Tercer artefacto de la colección", valueobjects.TypeConcept)
	require.NoError(t, repo.BulkSave(ctx, []*entities.Artifact{a, b, c}))

	require.NoError(t, repo.DeleteBatch(ctx, []valueobjects.ArtifactID{a.ID(), c.ID()}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Dos", all[0].ID().String())
}

func TestGetByIDNotFound(t *testing.T) {
	store := openTestStore(t)
	repo := NewArtifactRepository(store)

	id, err := valueobjects.NewArtifactIDFromString("Inexistente")
	require.NoError(t, err)
	_, err = repo.GetByID(context.Background(), id)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRelationshipRoundTripAndCascade(t *testing.T) {
	store := openTestStore(t)
	artifacts := NewArtifactRepository(store)
	relationships := NewRelationshipRepository(store)
	ctx := context.Background()
	cfg := config.DefaultDomainConfig()

	a := newArtifact(t, "Origen", "Nodo desde el que parte la relación", valueobjects.TypeConcept)
	b := newArtifact(t, "Destino", "Nodo al que llega la relación dada", valueobjects.TypeConcept)
	require.NoError(t, artifacts.Save(ctx, a))
	require.NoError(t, artifacts.Save(ctx, b))

	rel, err := entities.NewRelationship(a.ID(), b.ID(), cfg)
	require.NoError(t, err)
	require.NoError(t, relationships.Save(ctx, rel))

	loaded, err := relationships.GetByID(ctx, "Origen->Destino")
	require.NoError(t, err)
	assert.Equal(t, "Origen", loaded.SourceID().String())
	assert.Equal(t, 0.5, loaded.Weight())
	assert.Equal(t, "references", loaded.Type())

	touching, err := relationships.GetByArtifactID(ctx, b.ID())
	require.NoError(t, err)
	assert.Len(t, touching, 1)

	require.NoError(t, relationships.DeleteByArtifactIDs(ctx, []valueobjects.ArtifactID{b.ID()}))
	remaining, err := relationships.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestTemporalDraftRoundTrip(t *testing.T) {
	store := openTestStore(t)
	repo := NewTemporalRepository(store)
	ctx := context.Background()
	cfg := config.DefaultDomainConfig()

	draft, err := entities.NewTemporalArtifact(valueobjects.TypeConcept, valueobjects.NewPosition(40, 60), "canvas")
	require.NoError(t, err)
	draft.SetName("X", cfg, "canvas") // too short on purpose
	require.NoError(t, repo.Save(ctx, draft))

	loaded, err := repo.GetByID(ctx, draft.ID())
	require.NoError(t, err)
	assert.Equal(t, "X", loaded.Name())
	assert.Equal(t, entities.StatusEditing, loaded.Status())
	assert.NotEmpty(t, loaded.ValidationErrors())
	assert.Equal(t, 40.0, loaded.Position().X)

	require.NoError(t, repo.Delete(ctx, draft.ID()))
	_, err = repo.GetByID(ctx, draft.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	store := openTestStore(t)
	artifacts := NewArtifactRepository(store)
	relationships := NewRelationshipRepository(store)
	snapshots := NewSnapshotStore(store)
	ctx := context.Background()
	cfg := config.DefaultDomainConfig()

	a := newArtifact(t, "Origen", "Nodo desde el que parte la relación", valueobjects.TypeConcept)
	b := newArtifact(t, "Destino", "Nodo al que llega la relación dada", valueobjects.TypeActor)
	require.NoError(t, artifacts.Save(ctx, a))
	require.NoError(t, artifacts.Save(ctx, b))
	rel, err := entities.NewRelationship(a.ID(), b.ID(), cfg)
	require.NoError(t, err)
	require.NoError(t, relationships.Save(ctx, rel))

	raw, err := snapshots.Export(ctx)
	require.NoError(t, err)

	// Restore into a fresh database.
	other := openTestStore(t)
	require.NoError(t, NewSnapshotStore(other).Import(ctx, raw))

	restored, err := NewArtifactRepository(other).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, restored, 2)

	rels, err := NewRelationshipRepository(other).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "Origen->Destino", rels[0].ID())
}

func TestSnapshotImportRejectsGarbage(t *testing.T) {
	store := openTestStore(t)
	err := NewSnapshotStore(store).Import(context.Background(), "{not json")
	assert.True(t, pkgerrors.IsValidation(err))
}
