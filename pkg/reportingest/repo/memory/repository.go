package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streetfix/report-ingest/pkg/reportingest"
)

// Repository is an in-memory implementation of reportingest.Repository,
// used in tests. Identifiers are monotonic within the process lifetime.
type Repository struct {
	mu      sync.RWMutex
	reports []*reportingest.Report
	nextID  int64

	// FailInserts makes every InsertReport call fail, for exercising
	// failure paths
	FailInserts bool
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{nextID: 1}
}

func (r *Repository) InsertReport(ctx context.Context, report *reportingest.Report) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailInserts {
		return 0, fmt.Errorf("%w: insert disabled", reportingest.ErrMetadataWriteFailed)
	}

	stored := *report
	stored.ID = r.nextID
	stored.DateCreated = time.Now().UTC()
	r.nextID++
	r.reports = append(r.reports, &stored)

	report.ID = stored.ID
	report.DateCreated = stored.DateCreated
	return stored.ID, nil
}

func (r *Repository) ListReports(ctx context.Context) ([]*reportingest.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest first; inserts are appended so walk backwards.
	reports := make([]*reportingest.Report, 0, len(r.reports))
	for i := len(r.reports) - 1; i >= 0; i-- {
		copied := *r.reports[i]
		reports = append(reports, &copied)
	}
	return reports, nil
}

// Len returns the number of committed reports
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports)
}
