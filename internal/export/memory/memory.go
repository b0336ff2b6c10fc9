package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finsight/internal/core"
)

// ExportedReport is one report captured by the in-memory exporter.
type ExportedReport struct {
	ID          string
	GeneratedAt time.Time
	Report      core.Report
}

// Store is an in-memory report exporter for local development and tests.
type Store struct {
	mu    sync.Mutex
	items []ExportedReport
}

func New() *Store {
	return &Store{}
}

// ExportReport stores the report and returns a synthetic row reference.
func (s *Store) ExportReport(_ context.Context, id string, generatedAt time.Time, report core.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, ExportedReport{ID: id, GeneratedAt: generatedAt, Report: report})
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Exported returns a copy of all captured reports.
func (s *Store) Exported() []ExportedReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ExportedReport(nil), s.items...)
}
