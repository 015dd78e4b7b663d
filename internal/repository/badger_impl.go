package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const statePrefix = "state:"

type badgerStateRepository struct {
	db *badger.DB
}

func stateKey(namespace string) []byte {
	return []byte(statePrefix + namespace)
}

func (r *badgerStateRepository) Load(ctx context.Context, namespace string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var record Record
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey(namespace))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", namespace, err)
	}
	return &record, nil
}

func (r *badgerStateRepository) Save(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey(record.Namespace), data)
	})
}
