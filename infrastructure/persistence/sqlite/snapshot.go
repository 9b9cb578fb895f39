package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	pkgerrors "semcanvas/pkg/errors"
)

// SnapshotStore serializes the whole collection to a JSON document,
// the same backup shape the browser-only predecessor kept in
// localStorage.
type SnapshotStore struct {
	store *Store
}

// NewSnapshotStore creates the snapshot store
func NewSnapshotStore(store *Store) *SnapshotStore {
	return &SnapshotStore{store: store}
}

type snapshotArtifact struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Color       string  `json:"color,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

type snapshotRelationship struct {
	SourceID  string  `json:"source_id"`
	TargetID  string  `json:"target_id"`
	Type      string  `json:"type"`
	Weight    float64 `json:"weight"`
	CreatedAt int64   `json:"created_at"`
}

type snapshot struct {
	Version       int                    `json:"version"`
	ExportedAt    int64                  `json:"exported_at"`
	Artifacts     []snapshotArtifact     `json:"artifacts"`
	Relationships []snapshotRelationship `json:"relationships"`
}

// Export produces a serialized snapshot of all committed data. Drafts
// are transient editor state and stay out of backups.
func (s *SnapshotStore) Export(ctx context.Context) (string, error) {
	artifacts := NewArtifactRepository(s.store)
	relationships := NewRelationshipRepository(s.store)

	all, err := artifacts.GetAll(ctx)
	if err != nil {
		return "", err
	}
	rels, err := relationships.GetAll(ctx)
	if err != nil {
		return "", err
	}

	snap := snapshot{
		Version:       1,
		ExportedAt:    time.Now().UnixMilli(),
		Artifacts:     make([]snapshotArtifact, 0, len(all)),
		Relationships: make([]snapshotRelationship, 0, len(rels)),
	}
	for _, a := range all {
		pos := a.Position()
		visual := a.Visual()
		snap.Artifacts = append(snap.Artifacts, snapshotArtifact{
			ID:          a.ID().String(),
			Name:        a.Name().String(),
			Type:        a.Type().String(),
			Description: a.Description().String(),
			X:           pos.X,
			Y:           pos.Y,
			Color:       visual.Color,
			Radius:      visual.Radius,
			Opacity:     visual.Opacity,
			CreatedAt:   a.CreatedAt().UnixMilli(),
			UpdatedAt:   a.UpdatedAt().UnixMilli(),
		})
	}
	for _, rel := range rels {
		snap.Relationships = append(snap.Relationships, snapshotRelationship{
			SourceID:  rel.SourceID().String(),
			TargetID:  rel.TargetID().String(),
			Type:      rel.Type(),
			Weight:    rel.Weight(),
			CreatedAt: rel.CreatedAt().UnixMilli(),
		})
	}

	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", pkgerrors.Wrap(err, "encode snapshot")
	}
	return string(encoded), nil
}

// Import replaces all committed data from a serialized snapshot
func (s *SnapshotStore) Import(ctx context.Context, raw string) error {
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return pkgerrors.NewValidationError("snapshot is not valid JSON: " + err.Error())
	}

	artifacts := make([]*entities.Artifact, 0, len(snap.Artifacts))
	for _, sa := range snap.Artifacts {
		id, err := valueobjects.NewArtifactIDFromString(sa.ID)
		if err != nil {
			return pkgerrors.NewValidationError("snapshot artifact id: " + err.Error())
		}
		artType, err := valueobjects.ParseArtifactType(sa.Type)
		if err != nil {
			return pkgerrors.NewValidationError("snapshot artifact type: " + err.Error())
		}
		artifact, err := entities.ReconstructArtifact(
			id,
			valueobjects.RawName(sa.Name),
			artType,
			valueobjects.RawDescription(sa.Description),
			valueobjects.Position{X: sa.X, Y: sa.Y},
			entities.VisualProperties{Color: sa.Color, Radius: sa.Radius, Opacity: sa.Opacity},
			time.UnixMilli(sa.CreatedAt),
			time.UnixMilli(sa.UpdatedAt),
		)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, artifact)
	}

	relationships := make([]*entities.Relationship, 0, len(snap.Relationships))
	for _, sr := range snap.Relationships {
		src, err := valueobjects.NewArtifactIDFromString(sr.SourceID)
		if err != nil {
			return pkgerrors.NewValidationError("snapshot relationship source: " + err.Error())
		}
		dst, err := valueobjects.NewArtifactIDFromString(sr.TargetID)
		if err != nil {
			return pkgerrors.NewValidationError("snapshot relationship target: " + err.Error())
		}
		relationships = append(relationships,
			entities.ReconstructRelationship(src, dst, sr.Type, sr.Weight, time.UnixMilli(sr.CreatedAt)))
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("begin import", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"relationships", "artifacts", "temporal_artifacts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return pkgerrors.NewDatabaseError("clear "+table, err)
		}
	}
	for _, a := range artifacts {
		pos := a.Position()
		visual := a.Visual()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO artifacts (`+artifactColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID().String(), a.Name().String(), a.Type().String(), a.Description().String(),
			pos.X, pos.Y, pos.VX, pos.VY,
			visual.Color, visual.Radius, visual.Opacity,
			a.CreatedAt().UnixMilli(), a.UpdatedAt().UnixMilli(),
		); err != nil {
			return pkgerrors.NewDatabaseError("import artifact", err)
		}
	}
	for _, rel := range relationships {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO relationships (`+relationshipColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rel.ID(), rel.SourceID().String(), rel.TargetID().String(),
			rel.Type(), rel.Weight(), rel.CreatedAt().UnixMilli(),
		); err != nil {
			return pkgerrors.NewDatabaseError("import relationship", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("commit import", err)
	}
	return nil
}
