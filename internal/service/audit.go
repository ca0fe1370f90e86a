package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/logger"
	"github.com/guttosm/bundle-service/internal/metrics"
)

// AuditSink accepts audit entries without blocking the caller.
type AuditSink interface {
	// Log enqueues an entry. It returns false when the entry was dropped.
	Log(entry *model.LogEntry) bool
}

// AuditReader searches stored audit entries.
type AuditReader interface {
	Search(ctx context.Context, opts model.LogQueryOptions) (*AuditPage, error)
}

// AsyncAuditLoggerConfig sizes the audit worker pool.
type AsyncAuditLoggerConfig struct {
	// BufferSize bounds the queue; entries beyond it are dropped.
	BufferSize int
	NumWorkers int
	// BatchSize is the largest batch a worker writes at once.
	BatchSize int
	// FlushInterval bounds how long a partial batch waits.
	FlushInterval time.Duration
	WriteTimeout  time.Duration
}

// DefaultAsyncAuditLoggerConfig returns the production pool settings.
func DefaultAsyncAuditLoggerConfig() AsyncAuditLoggerConfig {
	return AsyncAuditLoggerConfig{
		BufferSize:    1000,
		NumWorkers:    2,
		BatchSize:     50,
		FlushInterval: 500 * time.Millisecond,
		WriteTimeout:  5 * time.Second,
	}
}

// AuditStats counts entries by outcome.
type AuditStats struct {
	Enqueued int64
	Dropped  int64
	Written  int64
	Failed   int64
}

// AsyncAuditLogger batches audit entries and writes them from a small worker pool.
// Cart requests never wait on the audit store.
type AsyncAuditLogger struct {
	store    LoggingService
	cfg      AsyncAuditLoggerConfig
	queue    chan *model.LogEntry
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	enqueued atomic.Int64
	dropped  atomic.Int64
	written  atomic.Int64
	failed   atomic.Int64
}

// NewAsyncAuditLogger starts the workers. It returns nil without a store.
func NewAsyncAuditLogger(store LoggingService, cfg AsyncAuditLoggerConfig) *AsyncAuditLogger {
	if store == nil {
		return nil
	}
	def := DefaultAsyncAuditLoggerConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	al := &AsyncAuditLogger{
		store:  store,
		cfg:    cfg,
		queue:  make(chan *model.LogEntry, cfg.BufferSize),
		stopCh: make(chan struct{}),
	}
	al.wg.Add(cfg.NumWorkers)
	for i := 0; i < cfg.NumWorkers; i++ {
		go al.run()
	}
	return al
}

func (al *AsyncAuditLogger) run() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]*model.LogEntry, 0, al.cfg.BatchSize)
	add := func(entry *model.LogEntry) {
		batch = append(batch, entry)
		if len(batch) >= al.cfg.BatchSize {
			al.flush(batch)
			batch = make([]*model.LogEntry, 0, al.cfg.BatchSize)
		}
	}

	for {
		select {
		case entry := <-al.queue:
			add(entry)
		case <-ticker.C:
			if len(batch) > 0 {
				al.flush(batch)
				batch = make([]*model.LogEntry, 0, al.cfg.BatchSize)
			}
		case <-al.stopCh:
			for {
				select {
				case entry := <-al.queue:
					add(entry)
				default:
					if len(batch) > 0 {
						al.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (al *AsyncAuditLogger) flush(batch []*model.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), al.cfg.WriteTimeout)
	defer cancel()

	if err := al.store.CreateLogs(ctx, batch); err != nil {
		al.failed.Add(int64(len(batch)))
		metrics.RecordAuditEntries("failed", len(batch))
		log := logger.Logger()
		log.Warn().Err(err).Int("entries", len(batch)).Msg("Failed to write audit batch")
		return
	}
	al.written.Add(int64(len(batch)))
	metrics.RecordAuditEntries("written", len(batch))
}

// Log enqueues entry. It returns false when the logger is stopped or the queue is full.
func (al *AsyncAuditLogger) Log(entry *model.LogEntry) bool {
	if al == nil || entry == nil {
		return false
	}
	select {
	case <-al.stopCh:
		al.drop()
		return false
	default:
	}
	select {
	case al.queue <- entry:
		al.enqueued.Add(1)
		return true
	default:
		al.drop()
		return false
	}
}

func (al *AsyncAuditLogger) drop() {
	al.dropped.Add(1)
	metrics.RecordAuditEntries("dropped", 1)
}

// Search reads back stored entries through the underlying store.
func (al *AsyncAuditLogger) Search(ctx context.Context, opts model.LogQueryOptions) (*AuditPage, error) {
	if al == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return al.store.Search(ctx, opts)
}

// Stop flushes queued entries and waits for the workers. It is safe to call more than once.
func (al *AsyncAuditLogger) Stop() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() {
		close(al.stopCh)
		al.wg.Wait()
	})
}

// Stats returns the entry counters.
func (al *AsyncAuditLogger) Stats() AuditStats {
	if al == nil {
		return AuditStats{}
	}
	return AuditStats{
		Enqueued: al.enqueued.Load(),
		Dropped:  al.dropped.Load(),
		Written:  al.written.Load(),
		Failed:   al.failed.Load(),
	}
}

// auditEntry builds an info-level domain audit entry carrying the request and session ids on ctx.
func auditEntry(ctx context.Context, actionType, message string, fields map[string]interface{}) *model.LogEntry {
	return &model.LogEntry{
		Timestamp:  time.Now().UTC(),
		Level:      model.LevelInfo,
		Message:    message,
		RequestID:  logger.RequestIDFromContext(ctx),
		SessionID:  logger.SessionIDFromContext(ctx),
		ActionType: actionType,
		Fields:     fields,
	}
}

func recordAudit(sink AuditSink, entry *model.LogEntry) {
	if sink == nil {
		return
	}
	sink.Log(entry)
}
