package service

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/repository"
)

// AuditPage is one page of audit entries and the total matching the filter.
type AuditPage struct {
	Entries []model.LogEntry `json:"entries"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Skip    int              `json:"skip"`
} // @name AuditPage

// LoggingService persists and searches audit entries.
type LoggingService interface {
	CreateLog(ctx context.Context, entry *model.LogEntry) error
	CreateLogs(ctx context.Context, entries []*model.LogEntry) error
	Search(ctx context.Context, opts model.LogQueryOptions) (*AuditPage, error)
}

// LoggingServiceImpl implements LoggingService over a logs repository.
type LoggingServiceImpl struct {
	repo repository.LogsRepositoryInterface
	now  func() time.Time
}

// NewLoggingService creates a logging service on repo.
func NewLoggingService(repo repository.LogsRepositoryInterface) LoggingService {
	return &LoggingServiceImpl{repo: repo, now: time.Now}
}

// CreateLog stores one entry.
func (s *LoggingServiceImpl) CreateLog(ctx context.Context, entry *model.LogEntry) error {
	if entry == nil {
		return nil
	}
	entry.Stamp(s.now())
	return s.repo.Create(ctx, entry)
}

// CreateLogs stores a batch. An empty batch is a no-op.
func (s *LoggingServiceImpl) CreateLogs(ctx context.Context, entries []*model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := s.now()
	for _, entry := range entries {
		if entry != nil {
			entry.Stamp(now)
		}
	}
	return s.repo.CreateMany(ctx, entries)
}

// Search returns the requested page with the unpaged total.
func (s *LoggingServiceImpl) Search(ctx context.Context, opts model.LogQueryOptions) (*AuditPage, error) {
	opts = opts.Normalized()

	entries, err := s.repo.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	total, err := s.repo.Count(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("count audit entries: %w", err)
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	return &AuditPage{Entries: entries, Total: total, Limit: opts.Limit, Skip: opts.Skip}, nil
}
