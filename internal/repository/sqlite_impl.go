package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type sqliteStateRepository struct {
	db *sqlx.DB
}

type sqlRecord struct {
	Namespace string    `db:"namespace"`
	Version   int       `db:"version"`
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r sqlRecord) toRecord() *Record {
	return &Record{
		Namespace: r.Namespace,
		Version:   r.Version,
		Payload:   []byte(r.Payload),
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *sqliteStateRepository) Load(ctx context.Context, namespace string) (*Record, error) {
	var row sqlRecord
	err := r.db.GetContext(ctx, &row,
		`SELECT namespace, version, payload, updated_at FROM persisted_state WHERE namespace = ?`, namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toRecord(), nil
}

func (r *sqliteStateRepository) Save(ctx context.Context, record Record) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO persisted_state (namespace, version, payload, updated_at)
		VALUES (:namespace, :version, :payload, :updated_at)
		ON CONFLICT(namespace) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, sqlRecord{
		Namespace: record.Namespace,
		Version:   record.Version,
		Payload:   string(record.Payload),
		UpdatedAt: record.UpdatedAt,
	})
	return err
}
