package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	pkgerrors "semcanvas/pkg/errors"
)

// RelationshipRepository persists the directed, weighted edges
type RelationshipRepository struct {
	store *Store
}

// NewRelationshipRepository creates the relationship repository
func NewRelationshipRepository(store *Store) *RelationshipRepository {
	return &RelationshipRepository{store: store}
}

const relationshipColumns = "id, source_id, target_id, type, weight, created_at"

// Save persists a relationship
func (r *RelationshipRepository) Save(ctx context.Context, rel *entities.Relationship) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO relationships (`+relationshipColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			weight = excluded.weight`,
		rel.ID(),
		rel.SourceID().String(),
		rel.TargetID().String(),
		rel.Type(),
		rel.Weight(),
		rel.CreatedAt().UnixMilli(),
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("save relationship", err)
	}
	return nil
}

// GetByID retrieves a relationship by its derived ID
func (r *RelationshipRepository) GetByID(ctx context.Context, id string) (*entities.Relationship, error) {
	row := r.store.db.QueryRowContext(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE id = ?", id)
	rel, err := scanRelationship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("relationship " + id)
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get relationship", err)
	}
	return rel, nil
}

// GetAll retrieves every relationship
func (r *RelationshipRepository) GetAll(ctx context.Context) ([]*entities.Relationship, error) {
	return r.queryRelationships(ctx,
		"SELECT "+relationshipColumns+" FROM relationships ORDER BY created_at, id")
}

// GetByArtifactID retrieves all relationships touching an artifact
func (r *RelationshipRepository) GetByArtifactID(ctx context.Context, id valueobjects.ArtifactID) ([]*entities.Relationship, error) {
	return r.queryRelationships(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE source_id = ? OR target_id = ? ORDER BY created_at, id",
		id.String(), id.String())
}

// Delete removes a relationship
func (r *RelationshipRepository) Delete(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete relationship", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pkgerrors.NewNotFoundError("relationship " + id)
	}
	return nil
}

// DeleteByArtifactIDs removes every relationship touching any of the
// given artifacts
func (r *RelationshipRepository) DeleteByArtifactIDs(ctx context.Context, ids []valueobjects.ArtifactID) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)*2)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id.String())
	}
	in := strings.Join(placeholders, ", ")
	args = append(args, args...)

	_, err := r.store.db.ExecContext(ctx,
		"DELETE FROM relationships WHERE source_id IN ("+in+") OR target_id IN ("+in+")", args...)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete relationships by artifact", err)
	}
	return nil
}

func (r *RelationshipRepository) queryRelationships(ctx context.Context, query string, args ...interface{}) ([]*entities.Relationship, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query relationships", err)
	}
	defer rows.Close()

	var out []*entities.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan relationship", err)
		}
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("iterate relationships", err)
	}
	return out, nil
}

func scanRelationship(row rowScanner) (*entities.Relationship, error) {
	var (
		id, sourceID, targetID, relType string
		weight                          float64
		createdAt                       int64
	)
	if err := row.Scan(&id, &sourceID, &targetID, &relType, &weight, &createdAt); err != nil {
		return nil, err
	}

	src, err := valueobjects.NewArtifactIDFromString(sourceID)
	if err != nil {
		return nil, err
	}
	dst, err := valueobjects.NewArtifactIDFromString(targetID)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructRelationship(src, dst, relType, weight, time.UnixMilli(createdAt)), nil
}
