package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
	pkgerrors "semcanvas/pkg/errors"
)

// TemporalRepository persists uncommitted draft artifacts
type TemporalRepository struct {
	store *Store
}

// NewTemporalRepository creates the draft repository
func NewTemporalRepository(store *Store) *TemporalRepository {
	return &TemporalRepository{store: store}
}

const temporalColumns = "id, name, type, description, x, y, status, validation_errors, created_at, updated_at"

// Save persists a draft (create or update)
func (r *TemporalRepository) Save(ctx context.Context, draft *entities.TemporalArtifact) error {
	validationErrors, err := json.Marshal(draft.ValidationErrors())
	if err != nil {
		return pkgerrors.NewDatabaseError("encode validation errors", err)
	}
	pos := draft.Position()
	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO temporal_artifacts (`+temporalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			x = excluded.x, y = excluded.y,
			status = excluded.status,
			validation_errors = excluded.validation_errors,
			updated_at = excluded.updated_at`,
		draft.ID().String(),
		draft.Name(),
		draft.Type().String(),
		draft.Description(),
		pos.X, pos.Y,
		string(draft.Status()),
		string(validationErrors),
		draft.CreatedAt().UnixMilli(),
		draft.UpdatedAt().UnixMilli(),
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("save draft", err)
	}
	return nil
}

// GetByID retrieves a draft by its ID
func (r *TemporalRepository) GetByID(ctx context.Context, id valueobjects.TemporalID) (*entities.TemporalArtifact, error) {
	row := r.store.db.QueryRowContext(ctx,
		"SELECT "+temporalColumns+" FROM temporal_artifacts WHERE id = ?", id.String())
	draft, err := scanTemporal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("draft " + id.String())
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get draft", err)
	}
	return draft, nil
}

// GetAll retrieves every outstanding draft
func (r *TemporalRepository) GetAll(ctx context.Context) ([]*entities.TemporalArtifact, error) {
	rows, err := r.store.db.QueryContext(ctx,
		"SELECT "+temporalColumns+" FROM temporal_artifacts ORDER BY created_at, id")
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query drafts", err)
	}
	defer rows.Close()

	var out []*entities.TemporalArtifact
	for rows.Next() {
		draft, err := scanTemporal(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan draft", err)
		}
		out = append(out, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("iterate drafts", err)
	}
	return out, nil
}

// Delete removes a draft
func (r *TemporalRepository) Delete(ctx context.Context, id valueobjects.TemporalID) error {
	res, err := r.store.db.ExecContext(ctx,
		"DELETE FROM temporal_artifacts WHERE id = ?", id.String())
	if err != nil {
		return pkgerrors.NewDatabaseError("delete draft", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pkgerrors.NewNotFoundError("draft " + id.String())
	}
	return nil
}

func scanTemporal(row rowScanner) (*entities.TemporalArtifact, error) {
	var (
		id, name, typ, description, status, rawErrors string
		x, y                                          float64
		createdAt, updatedAt                          int64
	)
	if err := row.Scan(&id, &name, &typ, &description, &x, &y, &status,
		&rawErrors, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	temporalID, err := valueobjects.NewTemporalIDFromString(id)
	if err != nil {
		return nil, err
	}
	artType, err := valueobjects.ParseArtifactType(typ)
	if err != nil {
		return nil, err
	}
	var validationErrors []string
	if err := json.Unmarshal([]byte(rawErrors), &validationErrors); err != nil {
		return nil, err
	}

	return entities.ReconstructTemporalArtifact(
		temporalID,
		name,
		artType,
		description,
		valueobjects.Position{X: x, Y: y},
		entities.TemporalStatus(status),
		validationErrors,
		time.UnixMilli(createdAt),
		time.UnixMilli(updatedAt),
	), nil
}
