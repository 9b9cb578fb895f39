package sync

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

const sampleOutline = `Propósitos
  - Claridad: Mantener el sistema comprensible para @Equipo

Actores
  - Equipo: Personas que mantienen y evolucionan el sistema
`

type memArtifacts struct {
	byID map[string]*entities.Artifact
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{byID: make(map[string]*entities.Artifact)}
}

func (r *memArtifacts) Save(_ context.Context, a *entities.Artifact) error {
	r.byID[a.ID().String()] = a
	return nil
}

func (r *memArtifacts) GetByID(_ context.Context, id valueobjects.ArtifactID) (*entities.Artifact, error) {
	a, ok := r.byID[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("artifact " + id.String())
	}
	return a, nil
}

func (r *memArtifacts) GetAll(_ context.Context) ([]*entities.Artifact, error) {
	out := make([]*entities.Artifact, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *memArtifacts) GetByType(_ context.Context, t valueobjects.ArtifactType) ([]*entities.Artifact, error) {
	var out []*entities.Artifact
	for _, a := range r.byID {
		if a.Type() == t {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memArtifacts) Search(_ context.Context, _ ports.SearchCriteria) ([]*entities.Artifact, error) {
	return nil, nil
}

func (r *memArtifacts) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, a := range r.byID {
		if strings.EqualFold(a.Name().String(), name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memArtifacts) Delete(_ context.Context, id valueobjects.ArtifactID) error {
	delete(r.byID, id.String())
	return nil
}

func (r *memArtifacts) BulkSave(ctx context.Context, artifacts []*entities.Artifact) error {
	for _, a := range artifacts {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *memArtifacts) DeleteBatch(_ context.Context, ids []valueobjects.ArtifactID) error {
	for _, id := range ids {
		delete(r.byID, id.String())
	}
	return nil
}

type memRelationships struct {
	byID map[string]*entities.Relationship
}

func newMemRelationships() *memRelationships {
	return &memRelationships{byID: make(map[string]*entities.Relationship)}
}

func (r *memRelationships) Save(_ context.Context, rel *entities.Relationship) error {
	r.byID[rel.ID()] = rel
	return nil
}

func (r *memRelationships) GetByID(_ context.Context, id string) (*entities.Relationship, error) {
	rel, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("relationship " + id)
	}
	return rel, nil
}

func (r *memRelationships) GetAll(_ context.Context) ([]*entities.Relationship, error) {
	out := make([]*entities.Relationship, 0, len(r.byID))
	for _, rel := range r.byID {
		out = append(out, rel)
	}
	return out, nil
}

func (r *memRelationships) GetByArtifactID(_ context.Context, id valueobjects.ArtifactID) ([]*entities.Relationship, error) {
	var out []*entities.Relationship
	for _, rel := range r.byID {
		if rel.Touches(id) {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (r *memRelationships) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *memRelationships) DeleteByArtifactIDs(_ context.Context, ids []valueobjects.ArtifactID) error {
	for id, rel := range r.byID {
		for _, aid := range ids {
			if rel.Touches(aid) {
				delete(r.byID, id)
				break
			}
		}
	}
	return nil
}

type memBus struct {
	published []events.DomainEvent
}

func (b *memBus) Publish(_ context.Context, e events.DomainEvent) error {
	b.published = append(b.published, e)
	return nil
}

func (b *memBus) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	b.published = append(b.published, batch...)
	return nil
}

type memSim struct {
	nodes int
	links int
	calls int
}

func (s *memSim) SetGraph(nodes []*entities.Artifact, links []*entities.Relationship) {
	s.nodes, s.links = len(nodes), len(links)
	s.calls++
}

func (s *memSim) Pin(valueobjects.ArtifactID, float64, float64) {}
func (s *memSim) Unpin(valueobjects.ArtifactID)                 {}
func (s *memSim) OnTick(func(map[string]valueobjects.Position)) {}

type syncEnv struct {
	service       *Service
	artifacts     *memArtifacts
	relationships *memRelationships
	bus           *memBus
	sim           *memSim
}

func newSyncEnv(t *testing.T) *syncEnv {
	t.Helper()
	env := &syncEnv{
		artifacts:     newMemArtifacts(),
		relationships: newMemRelationships(),
		bus:           &memBus{},
		sim:           &memSim{},
	}
	env.service = NewService(config.DefaultDomainConfig(), env.artifacts, env.relationships, env.sim, env.bus, nil)
	return env
}

func TestApplyTextPopulatesStore(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	doc, err := env.service.ApplyText(ctx, sampleOutline, "outline")
	require.NoError(t, err)

	assert.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Links, 1)
	assert.Equal(t, "Claridad->Equipo", doc.Links[0].ID())

	stored, _ := env.artifacts.GetAll(ctx)
	assert.Len(t, stored, 2)
	rels, _ := env.relationships.GetAll(ctx)
	assert.Len(t, rels, 1)

	assert.Equal(t, 2, env.sim.nodes)
	assert.Equal(t, 1, env.sim.links)
}

func TestApplyTextPreservesStoredPositions(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	_, err := env.service.ApplyText(ctx, sampleOutline, "outline")
	require.NoError(t, err)

	id, err := valueobjects.NewArtifactIDFromString("Equipo")
	require.NoError(t, err)
	a, err := env.artifacts.GetByID(ctx, id)
	require.NoError(t, err)
	require.NoError(t, a.MoveTo(valueobjects.NewPosition(420, 240), "canvas"))

	edited := strings.Replace(sampleOutline,
		"Personas que mantienen y evolucionan el sistema",
		"Personas responsables del mantenimiento continuo", 1)
	_, err = env.service.ApplyText(ctx, edited, "outline")
	require.NoError(t, err)

	after, err := env.artifacts.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 420.0, after.Position().X)
	assert.Equal(t, 240.0, after.Position().Y)
	assert.Equal(t, "Personas responsables del mantenimiento continuo", after.Description().String())
}

func TestApplyTextRemovesVanishedArtifactsAndLinks(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	_, err := env.service.ApplyText(ctx, sampleOutline, "outline")
	require.NoError(t, err)

	trimmed := `Actores
  - Equipo: Personas que mantienen y evolucionan el sistema
`
	doc, err := env.service.ApplyText(ctx, trimmed, "outline")
	require.NoError(t, err)

	assert.Len(t, doc.Nodes, 1)
	assert.Empty(t, doc.Links)

	id, err := valueobjects.NewArtifactIDFromString("Claridad")
	require.NoError(t, err)
	_, err = env.artifacts.GetByID(ctx, id)
	assert.True(t, pkgerrors.IsNotFound(err))

	rels, _ := env.relationships.GetAll(ctx)
	assert.Empty(t, rels)
}

func TestApplyTextIsIdempotent(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	first, err := env.service.ApplyText(ctx, sampleOutline, "outline")
	require.NoError(t, err)
	firstEvents := len(env.bus.published)

	second, err := env.service.ApplyText(ctx, sampleOutline, "outline")
	require.NoError(t, err)

	assert.Len(t, second.Nodes, len(first.Nodes))
	assert.Len(t, second.Links, len(first.Links))
	// Unchanged text produces no further mutation events.
	assert.Len(t, env.bus.published, firstEvents)
}

func TestRenderOutlineRoundTrips(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	_, err := env.service.ApplyText(ctx, sampleOutline, "outline")
	require.NoError(t, err)

	text, err := env.service.RenderOutline(ctx)
	require.NoError(t, err)

	assert.Contains(t, text, "Propósitos\n")
	assert.Contains(t, text, "  - Claridad: Mantener el sistema comprensible para @Equipo\n")
	assert.Contains(t, text, "Actores\n")
	// Placeholder-only references never render a definition line.
	assert.NotContains(t, text, "- Equipo: \n")

	doc, err := env.service.ApplyText(ctx, text, "outline")
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Links, 1)
}

func TestCommitReferenceInsertsAndCreates(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	text, doc, err := env.service.CommitReference(ctx, sampleOutline, "Consejo", valueobjects.TypeAuthority, "editor")
	require.NoError(t, err)

	assert.Contains(t, text, "Autoridades")
	assert.Contains(t, text, "- Consejo:")

	var found bool
	for _, n := range doc.Nodes {
		if n.ID().String() == "Consejo" {
			found = true
			assert.Equal(t, valueobjects.TypeAuthority, n.Type())
		}
	}
	assert.True(t, found)
}
