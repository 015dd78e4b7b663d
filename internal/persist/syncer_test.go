package persist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/repository"
	"github.com/alexivanou/placefinder/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]repository.Record
	saves   int
	saved   chan struct{}
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[string]repository.Record{}, saved: make(chan struct{}, 100)}
}

func (r *memoryRepo) Load(ctx context.Context, namespace string) (*repository.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[namespace]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *memoryRepo) Save(ctx context.Context, record repository.Record) error {
	r.mu.Lock()
	r.records[record.Namespace] = record
	r.saves++
	r.mu.Unlock()
	r.saved <- struct{}{}
	return nil
}

func (r *memoryRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func waitSaved(t *testing.T, repo *memoryRepo) {
	t.Helper()
	select {
	case <-repo.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save")
	}
}

func testPlace(id string) model.Place {
	return model.Place{ID: id, Name: "Place " + id, Location: model.Location{Lat: 1, Lng: 1}}
}

func TestSyncer_RestoreMissing(t *testing.T) {
	repo := newMemoryRepo()
	s := store.New()
	syncer := NewSyncer(repo, s, Decoder{}, nil)
	defer syncer.unsubscribe()

	require.NoError(t, syncer.Restore(context.Background()))
	assert.Empty(t, s.History())
	assert.Equal(t, 0, repo.saveCount())
}

func TestSyncer_RestoreCorrupt(t *testing.T) {
	repo := newMemoryRepo()
	repo.records[Namespace] = repository.Record{Namespace: Namespace, Version: 1, Payload: []byte("{not json")}
	s := store.New()
	syncer := NewSyncer(repo, s, Decoder{}, nil)
	defer syncer.unsubscribe()

	require.NoError(t, syncer.Restore(context.Background()))
	assert.Empty(t, s.History())
}

func TestSyncer_RoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	first := store.New()
	syncer := NewSyncer(repo, first, Decoder{}, nil)
	require.NoError(t, syncer.Restore(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		syncer.Run(ctx)
		close(done)
	}()

	first.SetCurrentPlaceWithHistory(testPlace("p1"), "q1")
	waitSaved(t, repo)

	first.SetCurrentPlace(testPlace("p2")) // history unchanged
	first.SetCurrentPlaceWithHistory(testPlace("p3"), "q3")
	waitSaved(t, repo)

	cancel()
	<-done
	assert.Equal(t, 2, repo.saveCount())

	second := store.New(store.WithInitialPlace(testPlace("default")))
	restorer := NewSyncer(repo, second, Decoder{}, nil)
	defer restorer.unsubscribe()
	require.NoError(t, restorer.Restore(context.Background()))

	history := second.History()
	require.Len(t, history, 2)
	assert.Equal(t, "p3", history[0].Place.ID)
	assert.Equal(t, "p1", history[1].Place.ID)
	assert.Equal(t, "default", second.CurrentPlace().ID, "only history is restored")
	assert.False(t, second.IsLoading())
}

func TestSyncer_FlushOnShutdown(t *testing.T) {
	repo := newMemoryRepo()
	s := store.New()
	syncer := NewSyncer(repo, s, Decoder{}, nil)

	s.SetCurrentPlaceWithHistory(testPlace("p1"), "q1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	syncer.Run(ctx)

	assert.Equal(t, 1, repo.saveCount())
	record, err := repo.Load(context.Background(), Namespace)
	require.NoError(t, err)
	assert.Contains(t, string(record.Payload), "p1")
}
