package repository

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/jmoiron/sqlx"

	"github.com/alexivanou/placefinder/internal/config"
)

// ErrRecordNotFound is returned when a namespace has never been saved
var ErrRecordNotFound = errors.New("persisted record not found")

// Record is one namespaced, versioned blob of persisted state
type Record struct {
	Namespace string    `db:"namespace" json:"namespace"`
	Version   int       `db:"version" json:"version"`
	Payload   []byte    `db:"payload" json:"payload"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// StateRepository stores persisted state records
type StateRepository interface {
	Load(ctx context.Context, namespace string) (*Record, error)
	Save(ctx context.Context, record Record) error
}

// NewStateRepository creates the SQL implementation matching the DB type
func NewStateRepository(db *sqlx.DB, dbType config.DBType) StateRepository {
	if dbType == config.DBTypePostgreSQL {
		return &pgStateRepository{db: db}
	}

	// Default to SQLite
	return &sqliteStateRepository{db: db}
}

// NewBadgerStateRepository creates the key-value implementation
func NewBadgerStateRepository(db *badger.DB) StateRepository {
	return &badgerStateRepository{db: db}
}
