package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type pgStateRepository struct {
	db *sqlx.DB
}

func (r *pgStateRepository) Load(ctx context.Context, namespace string) (*Record, error) {
	var row sqlRecord
	err := r.db.GetContext(ctx, &row,
		`SELECT namespace, version, payload, updated_at FROM persisted_state WHERE namespace = $1`, namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toRecord(), nil
}

func (r *pgStateRepository) Save(ctx context.Context, record Record) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO persisted_state (namespace, version, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace) DO UPDATE SET
			version = EXCLUDED.version,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, record.Namespace, record.Version, string(record.Payload), record.UpdatedAt)
	return err
}
