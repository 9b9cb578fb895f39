package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"semcanvas/application/ports"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	pkgerrors "semcanvas/pkg/errors"
)

// ArtifactRepository persists committed artifacts
type ArtifactRepository struct {
	store *Store
}

// NewArtifactRepository creates the artifact repository
func NewArtifactRepository(store *Store) *ArtifactRepository {
	return &ArtifactRepository{store: store}
}

const artifactColumns = "id, name, type, description, x, y, vx, vy, color, radius, opacity, created_at, updated_at"

// Save persists an artifact (create or update). Pins are a drag-time
// concern and are never stored.
func (r *ArtifactRepository) Save(ctx context.Context, artifact *entities.Artifact) error {
	pos := artifact.Position().Unpin()
	visual := artifact.Visual()
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO artifacts (`+artifactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			x = excluded.x, y = excluded.y,
			vx = excluded.vx, vy = excluded.vy,
			color = excluded.color, radius = excluded.radius, opacity = excluded.opacity,
			updated_at = excluded.updated_at`,
		artifact.ID().String(),
		artifact.Name().String(),
		artifact.Type().String(),
		artifact.Description().String(),
		pos.X, pos.Y, pos.VX, pos.VY,
		visual.Color, visual.Radius, visual.Opacity,
		artifact.CreatedAt().UnixMilli(),
		artifact.UpdatedAt().UnixMilli(),
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("save artifact", err)
	}
	return nil
}

// GetByID retrieves an artifact by its ID
func (r *ArtifactRepository) GetByID(ctx context.Context, id valueobjects.ArtifactID) (*entities.Artifact, error) {
	row := r.store.db.QueryRowContext(ctx,
		"SELECT "+artifactColumns+" FROM artifacts WHERE id = ?", id.String())
	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("artifact " + id.String())
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get artifact", err)
	}
	return artifact, nil
}

// GetAll retrieves every committed artifact
func (r *ArtifactRepository) GetAll(ctx context.Context) ([]*entities.Artifact, error) {
	return r.queryArtifacts(ctx, "SELECT "+artifactColumns+" FROM artifacts ORDER BY created_at, id")
}

// GetByType retrieves all artifacts of one type
func (r *ArtifactRepository) GetByType(ctx context.Context, artType valueobjects.ArtifactType) ([]*entities.Artifact, error) {
	return r.queryArtifacts(ctx,
		"SELECT "+artifactColumns+" FROM artifacts WHERE type = ? ORDER BY created_at, id",
		artType.String())
}

// Search finds artifacts whose name or description contains the query,
// case-insensitively, optionally restricted by type
func (r *ArtifactRepository) Search(ctx context.Context, criteria ports.SearchCriteria) ([]*entities.Artifact, error) {
	var (
		where []string
		args  []interface{}
	)
	if criteria.Query != "" {
		where = append(where, "(instr(lower(name), lower(?)) > 0 OR instr(lower(description), lower(?)) > 0)")
		args = append(args, criteria.Query, criteria.Query)
	}
	if len(criteria.Types) > 0 {
		placeholders := make([]string, len(criteria.Types))
		for i, t := range criteria.Types {
			placeholders[i] = "?"
			args = append(args, t.String())
		}
		where = append(where, "type IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := "SELECT " + artifactColumns + " FROM artifacts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id"
	if criteria.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", criteria.Limit)
	}
	return r.queryArtifacts(ctx, query, args...)
}

// ExistsByName reports whether a committed artifact already uses the
// name, compared case-insensitively
func (r *ArtifactRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.store.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM artifacts WHERE lower(name) = lower(?)", name).Scan(&count)
	if err != nil {
		return false, pkgerrors.NewDatabaseError("check artifact name", err)
	}
	return count > 0, nil
}

// Delete removes an artifact
func (r *ArtifactRepository) Delete(ctx context.Context, id valueobjects.ArtifactID) error {
	res, err := r.store.db.ExecContext(ctx, "DELETE FROM artifacts WHERE id = ?", id.String())
	if err != nil {
		return pkgerrors.NewDatabaseError("delete artifact", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pkgerrors.NewNotFoundError("artifact " + id.String())
	}
	return nil
}

// BulkSave saves multiple artifacts in one transaction
func (r *ArtifactRepository) BulkSave(ctx context.Context, artifacts []*entities.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("begin bulk save", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO artifacts (`+artifactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			x = excluded.x, y = excluded.y,
			vx = excluded.vx, vy = excluded.vy,
			color = excluded.color, radius = excluded.radius, opacity = excluded.opacity,
			updated_at = excluded.updated_at`)
	if err != nil {
		return pkgerrors.NewDatabaseError("prepare bulk save", err)
	}
	defer stmt.Close()

	for _, artifact := range artifacts {
		pos := artifact.Position().Unpin()
		visual := artifact.Visual()
		if _, err := stmt.ExecContext(ctx,
			artifact.ID().String(),
			artifact.Name().String(),
			artifact.Type().String(),
			artifact.Description().String(),
			pos.X, pos.Y, pos.VX, pos.VY,
			visual.Color, visual.Radius, visual.Opacity,
			artifact.CreatedAt().UnixMilli(),
			artifact.UpdatedAt().UnixMilli(),
		); err != nil {
			return pkgerrors.NewDatabaseError("bulk save artifact", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("commit bulk save", err)
	}
	return nil
}

// DeleteBatch removes multiple artifacts in one transaction
func (r *ArtifactRepository) DeleteBatch(ctx context.Context, ids []valueobjects.ArtifactID) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("begin batch delete", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM artifacts WHERE id = ?", id.String()); err != nil {
			return pkgerrors.NewDatabaseError("batch delete artifact", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("commit batch delete", err)
	}
	return nil
}

func (r *ArtifactRepository) queryArtifacts(ctx context.Context, query string, args ...interface{}) ([]*entities.Artifact, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query artifacts", err)
	}
	defer rows.Close()

	var out []*entities.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan artifact", err)
		}
		out = append(out, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("iterate artifacts", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row rowScanner) (*entities.Artifact, error) {
	var (
		id, name, typ, description, color string
		x, y, vx, vy, radius, opacity     float64
		createdAt, updatedAt              int64
	)
	if err := row.Scan(&id, &name, &typ, &description, &x, &y, &vx, &vy,
		&color, &radius, &opacity, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	artifactID, err := valueobjects.NewArtifactIDFromString(id)
	if err != nil {
		return nil, err
	}
	artType, err := valueobjects.ParseArtifactType(typ)
	if err != nil {
		return nil, err
	}

	return entities.ReconstructArtifact(
		artifactID,
		valueobjects.RawName(name),
		artType,
		valueobjects.RawDescription(description),
		valueobjects.Position{X: x, Y: y, VX: vx, VY: vy},
		entities.VisualProperties{Color: color, Radius: radius, Opacity: opacity},
		time.UnixMilli(createdAt),
		time.UnixMilli(updatedAt),
	)
}
