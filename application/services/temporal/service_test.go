package temporal

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semcanvas/application/ports"
	"semcanvas/domain/config"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/events"
	pkgerrors "semcanvas/pkg/errors"
)

type fakeDraftRepo struct {
	byID map[string]*entities.TemporalArtifact
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{byID: make(map[string]*entities.TemporalArtifact)}
}

func (r *fakeDraftRepo) Save(_ context.Context, draft *entities.TemporalArtifact) error {
	r.byID[draft.ID().String()] = draft
	return nil
}

func (r *fakeDraftRepo) GetByID(_ context.Context, id valueobjects.TemporalID) (*entities.TemporalArtifact, error) {
	draft, ok := r.byID[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("draft " + id.String())
	}
	return draft, nil
}

func (r *fakeDraftRepo) GetAll(_ context.Context) ([]*entities.TemporalArtifact, error) {
	out := make([]*entities.TemporalArtifact, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDraftRepo) Delete(_ context.Context, id valueobjects.TemporalID) error {
	if _, ok := r.byID[id.String()]; !ok {
		return pkgerrors.NewNotFoundError("draft " + id.String())
	}
	delete(r.byID, id.String())
	return nil
}

type fakeArtifactRepo struct {
	byID map[string]*entities.Artifact
}

func newFakeArtifactRepo() *fakeArtifactRepo {
	return &fakeArtifactRepo{byID: make(map[string]*entities.Artifact)}
}

func (r *fakeArtifactRepo) Save(_ context.Context, a *entities.Artifact) error {
	r.byID[a.ID().String()] = a
	return nil
}

func (r *fakeArtifactRepo) GetByID(_ context.Context, id valueobjects.ArtifactID) (*entities.Artifact, error) {
	a, ok := r.byID[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("artifact " + id.String())
	}
	return a, nil
}

func (r *fakeArtifactRepo) GetAll(_ context.Context) ([]*entities.Artifact, error) {
	out := make([]*entities.Artifact, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeArtifactRepo) GetByType(_ context.Context, t valueobjects.ArtifactType) ([]*entities.Artifact, error) {
	var out []*entities.Artifact
	for _, a := range r.byID {
		if a.Type() == t {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeArtifactRepo) Search(_ context.Context, _ ports.SearchCriteria) ([]*entities.Artifact, error) {
	return nil, nil
}

func (r *fakeArtifactRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, a := range r.byID {
		if strings.EqualFold(a.Name().String(), name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeArtifactRepo) Delete(_ context.Context, id valueobjects.ArtifactID) error {
	delete(r.byID, id.String())
	return nil
}

func (r *fakeArtifactRepo) BulkSave(ctx context.Context, artifacts []*entities.Artifact) error {
	for _, a := range artifacts {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeArtifactRepo) DeleteBatch(_ context.Context, ids []valueobjects.ArtifactID) error {
	for _, id := range ids {
		delete(r.byID, id.String())
	}
	return nil
}

type capturingBus struct {
	published []events.DomainEvent
}

func (b *capturingBus) Publish(_ context.Context, e events.DomainEvent) error {
	b.published = append(b.published, e)
	return nil
}

func (b *capturingBus) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	b.published = append(b.published, batch...)
	return nil
}

func (b *capturingBus) types() []string {
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.GetEventType())
	}
	return out
}

type testEnv struct {
	service   *Service
	drafts    *fakeDraftRepo
	artifacts *fakeArtifactRepo
	bus       *capturingBus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		drafts:    newFakeDraftRepo(),
		artifacts: newFakeArtifactRepo(),
		bus:       &capturingBus{},
	}
	env.service = NewService(config.DefaultDomainConfig(), env.drafts, env.artifacts, env.bus, nil, nil)
	return env
}

func TestDraftLifecycleClosure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.service.CreateDraft(ctx, 120, 80, "canvas")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCreating, draft.Status())

	_, err = env.service.SetName(ctx, draft.ID(), "Observador", "canvas")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusEditing, draft.Status())

	_, err = env.service.ConfirmName(ctx, draft.ID())
	require.NoError(t, err)

	_, err = env.service.SetDescription(ctx, draft.ID(), "Actor que observa los resultados del sistema", "canvas")
	require.NoError(t, err)

	artifact, err := env.service.Commit(ctx, draft.ID(), "canvas")
	require.NoError(t, err)
	assert.Equal(t, "Observador", artifact.ID().String())

	// Promoted and gone as a draft: never both at once.
	_, err = env.drafts.GetByID(ctx, draft.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = env.artifacts.GetByID(ctx, artifact.ID())
	assert.NoError(t, err)

	assert.Contains(t, env.bus.types(), events.TypeTemporalCreated)
	assert.Contains(t, env.bus.types(), events.TypeArtifactCreated)
	assert.Contains(t, env.bus.types(), events.TypeTemporalPromoted)

	_, active := env.service.ActiveDraft()
	assert.False(t, active)
}

func TestCommitValidationFailureRetainsDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.service.CreateDraft(ctx, 0, 0, "canvas")
	require.NoError(t, err)
	_, err = env.service.SetName(ctx, draft.ID(), "Meta", "canvas")
	require.NoError(t, err)
	_, err = env.service.SetDescription(ctx, draft.ID(), "corta", "canvas")
	require.NoError(t, err)

	_, err = env.service.Commit(ctx, draft.ID(), "canvas")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	kept, err := env.drafts.GetByID(ctx, draft.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.StatusError, kept.Status())
	assert.NotEmpty(t, kept.ValidationErrors())
	assert.Equal(t, "corta", kept.Description())

	all, _ := env.artifacts.GetAll(ctx)
	assert.Empty(t, all)
}

func TestCommitRejectsDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.service.CreateDraft(ctx, 0, 0, "canvas")
	require.NoError(t, err)
	_, err = env.service.SetName(ctx, first.ID(), "Proceso", "canvas")
	require.NoError(t, err)
	_, err = env.service.SetDescription(ctx, first.ID(), "Secuencia de pasos que produce un resultado", "canvas")
	require.NoError(t, err)
	_, err = env.service.Commit(ctx, first.ID(), "canvas")
	require.NoError(t, err)

	second, err := env.service.CreateDraft(ctx, 10, 10, "canvas")
	require.NoError(t, err)
	_, err = env.service.SetName(ctx, second.ID(), "proceso", "canvas")
	require.NoError(t, err)
	_, err = env.service.SetDescription(ctx, second.ID(), "Otro intento con el mismo nombre registrado", "canvas")
	require.NoError(t, err)

	_, err = env.service.Commit(ctx, second.ID(), "canvas")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	kept, err := env.drafts.GetByID(ctx, second.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.StatusError, kept.Status())
}

func TestDiscardRemovesDraftOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.service.CreateDraft(ctx, 0, 0, "canvas")
	require.NoError(t, err)
	_, err = env.service.SetName(ctx, draft.ID(), "Borrador", "canvas")
	require.NoError(t, err)

	require.NoError(t, env.service.Discard(ctx, draft.ID(), "canvas"))

	_, err = env.drafts.GetByID(ctx, draft.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	all, _ := env.artifacts.GetAll(ctx)
	assert.Empty(t, all)
	assert.Contains(t, env.bus.types(), events.TypeTemporalDeleted)
}

func TestDiscardToleratesLateCallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.service.CreateDraft(ctx, 0, 0, "canvas")
	require.NoError(t, err)
	require.NoError(t, env.service.Discard(ctx, draft.ID(), "canvas"))

	// A second discard can arrive after the record is gone.
	assert.NoError(t, env.service.Discard(ctx, draft.ID(), "canvas"))
}

func TestNewDraftDiscardsUntouchedPredecessor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.service.CreateDraft(ctx, 0, 0, "canvas")
	require.NoError(t, err)

	second, err := env.service.CreateDraft(ctx, 50, 50, "canvas")
	require.NoError(t, err)

	_, err = env.drafts.GetByID(ctx, first.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	active, ok := env.service.ActiveDraft()
	require.True(t, ok)
	assert.True(t, active.Equals(second.ID()))
}

func TestNewDraftKeepsEditedPredecessorRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.service.CreateDraft(ctx, 0, 0, "canvas")
	require.NoError(t, err)
	_, err = env.service.SetName(ctx, first.ID(), "Primero", "canvas")
	require.NoError(t, err)

	_, err = env.service.CreateDraft(ctx, 50, 50, "canvas")
	require.NoError(t, err)

	kept, err := env.drafts.GetByID(ctx, first.ID())
	require.NoError(t, err)
	assert.Equal(t, "Primero", kept.Name())
}

func TestConfirmNameRequiresNonEmptyName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.service.CreateDraft(ctx, 0, 0, "canvas")
	require.NoError(t, err)

	_, err = env.service.ConfirmName(ctx, draft.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}
