package sheets

import (
	"context"

	"hearth/internal/core"
)

// Ports for outbound report adapters.
type (
	// ReportWriter upserts one household month into a report sheet. A
	// report for a (household, year, month) key that already exists is
	// overwritten in place, so re-deliveries refresh rather than
	// duplicate.
	ReportWriter interface {
		AppendMonthlyReport(ctx context.Context, r core.MonthlyReport) (rowRef string, err error)
	}
)
