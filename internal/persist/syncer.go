package persist

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/repository"
	"github.com/alexivanou/placefinder/internal/store"
)

const saveTimeout = 5 * time.Second

// Syncer mirrors store history into a StateRepository. Writes happen on a
// single background goroutine; bursts of transitions coalesce into one write.
type Syncer struct {
	repo    repository.StateRepository
	store   *store.Store
	decoder Decoder
	logger  *zap.Logger

	mu          sync.Mutex
	last        []model.SearchHistoryItem
	pending     []model.SearchHistoryItem
	dirty       bool
	wake        chan struct{}
	unsubscribe func()
}

// NewSyncer creates a syncer for s and starts observing it. Changes are
// written once Run is called.
func NewSyncer(repo repository.StateRepository, s *store.Store, decoder Decoder, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if decoder.Limit <= 0 {
		decoder.Limit = s.Limit()
	}
	syncer := &Syncer{
		repo:    repo,
		store:   s,
		decoder: decoder,
		logger:  logger,
		last:    []model.SearchHistoryItem{},
		wake:    make(chan struct{}, 1),
	}
	syncer.unsubscribe = s.Subscribe(syncer.observe)
	return syncer
}

// Restore loads persisted history into the store. A missing or corrupt
// record leaves the history empty and is not an error.
func (s *Syncer) Restore(ctx context.Context) error {
	record, err := s.repo.Load(ctx, Namespace)
	if errors.Is(err, repository.ErrRecordNotFound) {
		s.logger.Info("No persisted history found")
		return nil
	}
	if err != nil {
		return err
	}

	history, err := s.decoder.Decode(record.Payload)
	if err != nil {
		s.logger.Warn("Discarding unreadable persisted history", zap.Error(err))
		history = []model.SearchHistoryItem{}
	}

	s.mu.Lock()
	s.last = history
	s.mu.Unlock()

	s.store.Hydrate(history)
	s.logger.Info("Restored search history", zap.Int("items", len(history)), zap.Int("version", record.Version))
	return nil
}

// Run writes history changes until ctx is done. A final pending write is
// flushed before returning and the syncer stops observing the store.
func (s *Syncer) Run(ctx context.Context) {
	defer s.unsubscribe()

	for {
		select {
		case <-ctx.Done():
			s.flush(context.Background())
			return
		case <-s.wake:
			s.flush(ctx)
		}
	}
}

func (s *Syncer) observe(state model.PlacesState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reflect.DeepEqual(state.SearchHistory, s.last) && !s.dirty {
		return
	}
	s.pending = state.SearchHistory
	s.dirty = true
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Syncer) flush(ctx context.Context) {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	history := s.pending
	s.last = history
	s.dirty = false
	s.mu.Unlock()

	if err := s.save(ctx, history); err != nil {
		s.logger.Error("Failed to persist search history", zap.Int("items", len(history)), zap.Error(err))
	}
}

func (s *Syncer) save(ctx context.Context, history []model.SearchHistoryItem) error {
	payload, err := Encode(history)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	return s.repo.Save(ctx, repository.Record{
		Namespace: Namespace,
		Version:   CurrentVersion,
		Payload:   payload,
	})
}
