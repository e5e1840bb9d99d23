package memory

import (
	"context"
	"fmt"
	"sync"

	"hearth/internal/core"
)

// Store is an in-memory report sink, used in tests and when no
// spreadsheet is configured.
type Store struct {
	mu      sync.Mutex
	reports []core.MonthlyReport
}

func New() *Store {
	return &Store{}
}

// AppendMonthlyReport upserts the report by (household, year, month)
// and returns a synthetic row reference.
func (s *Store) AppendMonthlyReport(_ context.Context, r core.MonthlyReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.reports {
		if existing.HouseholdID == r.HouseholdID && existing.Year == r.Year && existing.Month == r.Month {
			s.reports[i] = r
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of the stored reports in insertion order.
func (s *Store) Reports() []core.MonthlyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MonthlyReport(nil), s.reports...)
}
