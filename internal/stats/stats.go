package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/jmoiron/sqlx"

	"github.com/alexivanou/placefinder/internal/config"
	"github.com/alexivanou/placefinder/internal/model"
)

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	History   HistoryStats  `json:"history"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc"`
	TotalAlloc   uint64 `json:"total_alloc"`
	Sys          uint64 `json:"sys"`
	NumGC        uint32 `json:"num_gc"`
	HeapAlloc    uint64 `json:"heap_alloc"`
	HeapSys      uint64 `json:"heap_sys"`
	HeapInuse    uint64 `json:"heap_inuse"`
	HeapReleased uint64 `json:"heap_released"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// HistoryStats summarises the search history currently held in memory
type HistoryStats struct {
	Entries         int   `json:"entries"`
	Limit           int   `json:"limit"`
	DistinctPlaces  int   `json:"distinct_places"`
	NewestTimestamp int64 `json:"newest_timestamp,omitempty"`
	OldestTimestamp int64 `json:"oldest_timestamp,omitempty"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// HistorySource exposes the search history, implemented by the state store
type HistorySource interface {
	History() []model.SearchHistoryItem
	Limit() int
}

type Collector struct {
	db         *sqlx.DB
	kv         *badger.DB
	history    HistorySource
	config     config.DBConfig
	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.RWMutex
}

var (
	memStatsCacheDuration = 5 * time.Second

	sqlTables = []string{"persisted_state", "schema_migrations"}
)

// Option configures a Collector
type Option func(*Collector)

// WithBadger reports on a key-value backend instead of SQL tables
func WithBadger(db *badger.DB) Option {
	return func(c *Collector) { c.kv = db }
}

// WithHistory adds search history counts
func WithHistory(src HistorySource) Option {
	return func(c *Collector) { c.history = src }
}

// NewCollector creates a collector. db may be nil when the backend is Badger.
func NewCollector(db *sqlx.DB, cfg config.DBConfig, opts ...Option) *Collector {
	c := &Collector{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
	}

	stats.Memory = c.collectMemoryStats()

	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Database = *dbStats
	stats.History = c.collectHistoryStats()
	stats.Runtime = c.collectRuntimeStats()

	return stats, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:        m.Alloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		HeapInuse:    m.HeapInuse,
		HeapReleased: m.HeapReleased,
	}

	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{
		Type:       string(c.config.Type),
		TableStats: []TableStat{},
	}

	if c.kv != nil {
		return c.collectBadgerStats(stats)
	}
	if c.db == nil {
		return stats, nil
	}

	if totalSize, err := c.getDatabaseSize(ctx); err == nil {
		stats.SizeBytes = totalSize
	}

	for _, table := range sqlTables {
		stat, err := c.getTableStat(ctx, table)
		if err != nil {
			continue
		}
		stats.TableStats = append(stats.TableStats, *stat)
	}

	// only persisted records count, migration bookkeeping does not
	for _, ts := range stats.TableStats {
		if ts.Name == "persisted_state" {
			stats.TotalRecords = ts.RowCount
		}
	}

	return stats, nil
}

func (c *Collector) collectBadgerStats(stats *DatabaseStats) (*DatabaseStats, error) {
	lsm, vlog := c.kv.Size()
	stats.SizeBytes = lsm + vlog

	var keys int64
	err := c.kv.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count badger keys: %w", err)
	}

	stats.TotalRecords = keys
	stats.TableStats = append(stats.TableStats,
		TableStat{Name: "lsm", SizeBytes: lsm},
		TableStat{Name: "vlog", SizeBytes: vlog},
	)
	return stats, nil
}

func (c *Collector) getDatabaseSize(ctx context.Context) (int64, error) {
	var size int64
	var err error

	if c.config.Type == config.DBTypePostgreSQL {
		err = c.db.GetContext(ctx, &size, "SELECT pg_database_size(current_database())")
	} else {
		err = c.db.GetContext(ctx, &size, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	}

	if err != nil {
		return 0, err
	}
	return size, nil
}

func (c *Collector) getTableStat(ctx context.Context, tableName string) (*TableStat, error) {
	stat := &TableStat{Name: tableName}

	countQuery := "SELECT COUNT(*) FROM " + tableName
	var count int64
	err := c.db.GetContext(ctx, &count, countQuery)
	if err != nil {
		return nil, err
	}
	stat.RowCount = count

	if c.config.Type == config.DBTypePostgreSQL {
		sizeQuery := `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`
		var size int64
		err = c.db.GetContext(ctx, &size, sizeQuery, tableName)
		if err == nil {
			stat.SizeBytes = size
		}
	} else {
		// dbstat is only compiled into some sqlite builds
		sizeQuery := `SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?`
		var size int64
		_ = c.db.GetContext(ctx, &size, sizeQuery, tableName)
		stat.SizeBytes = size
	}

	return stat, nil
}

func (c *Collector) collectHistoryStats() HistoryStats {
	if c.history == nil {
		return HistoryStats{}
	}

	history := c.history.History()
	stats := HistoryStats{
		Entries: len(history),
		Limit:   c.history.Limit(),
	}

	places := make(map[string]struct{}, len(history))
	for _, item := range history {
		places[item.Place.ID] = struct{}{}
		if stats.NewestTimestamp == 0 || item.Timestamp > stats.NewestTimestamp {
			stats.NewestTimestamp = item.Timestamp
		}
		if stats.OldestTimestamp == 0 || item.Timestamp < stats.OldestTimestamp {
			stats.OldestTimestamp = item.Timestamp
		}
	}
	stats.DistinctPlaces = len(places)

	return stats
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	uptime := time.Since(c.startTime).Seconds()
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(uptime),
	}
}
