// Package persist saves the history-only projection of PlacesState and
// restores it at startup.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/store"
)

// Namespace is the key of the persisted history record
const Namespace = "placefinder:places"

// CurrentVersion is the schema version written by Encode
const CurrentVersion = 1

// ErrUnsupportedVersion is returned for payloads written by a newer schema
var ErrUnsupportedVersion = errors.New("unsupported persisted state version")

type envelope struct {
	Version       int                       `json:"version"`
	SearchHistory []model.SearchHistoryItem `json:"searchHistory"`
}

// Encode serializes history into the current schema
func Encode(history []model.SearchHistoryItem) ([]byte, error) {
	if history == nil {
		history = []model.SearchHistoryItem{}
	}
	return json.Marshal(envelope{Version: CurrentVersion, SearchHistory: history})
}

// Decoder turns persisted payloads back into history. Missing fields are
// defaulted and the result obeys the history invariants.
type Decoder struct {
	Limit int
	Now   func() time.Time
	NewID func() string
}

// Decode parses payload. Version 0 is a bare JSON array of items.
func (d Decoder) Decode(payload []byte) ([]model.SearchHistoryItem, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return []model.SearchHistoryItem{}, nil
	}

	var items []model.SearchHistoryItem
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode v0 history: %w", err)
		}
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to decode history: %w", err)
		}
		if env.Version > CurrentVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
		items = env.SearchHistory
	}

	now := d.Now
	if now == nil {
		now = time.Now
	}

	out := make([]model.SearchHistoryItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Place.ID) == "" {
			continue
		}
		if item.ID == "" && d.NewID != nil {
			item.ID = d.NewID()
		}
		if item.Timestamp <= 0 {
			item.Timestamp = now().UnixMilli()
		}
		if item.Query == "" {
			item.Query = item.Place.Name
		}
		out = append(out, item)
	}

	return store.Normalize(out, d.Limit), nil
}
