package worker

import (
	"context"
	"errors"
	"fmt"

	"hearth/internal/amqp"
	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/sheets"
	"hearth/internal/storage"
)

// ReportWorker refreshes the external monthly report whenever a ledger
// event announces that a household month changed. The event carries
// only the bucket key; the current figures are read back from storage,
// so stale or duplicated deliveries converge on the same row.
type ReportWorker struct {
	households storage.HouseholdRepository
	dashboards storage.DashboardRepository
	writer     sheets.ReportWriter
	logger     *log.Logger
}

func NewReportWorker(households storage.HouseholdRepository, dashboards storage.DashboardRepository, writer sheets.ReportWriter, logger *log.Logger) *ReportWorker {
	return &ReportWorker{
		households: households,
		dashboards: dashboards,
		writer:     writer,
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerEvent processes a single ledger event message from AMQP
func (w *ReportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.Month < 1 || msg.Month > 12 {
		// Drop malformed buckets instead of requeueing them forever.
		w.logger.WarnContext(ctx, "Dropping ledger event with invalid month",
			log.FieldEventKind, msg.Kind,
			log.FieldHouseholdID, msg.HouseholdID,
			log.FieldMonth, msg.Month)
		return nil
	}

	household, err := w.households.GetHousehold(ctx, msg.HouseholdID)
	if errors.Is(err, storage.ErrNotFound) {
		// The household vanished between publish and consume.
		w.logger.WarnContext(ctx, "Dropping ledger event for missing household",
			log.FieldHouseholdID, msg.HouseholdID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get household: %w", err)
	}

	income, err := w.dashboards.MonthlyIncome(ctx, msg.HouseholdID, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("monthly income: %w", err)
	}
	expenses, err := w.dashboards.MonthlyExpenses(ctx, msg.HouseholdID, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("monthly expenses: %w", err)
	}

	report := core.NewMonthlyReport(household, msg.Year, msg.Month, income, expenses)
	ref, err := w.writer.AppendMonthlyReport(ctx, report)
	if err != nil {
		return fmt.Errorf("write monthly report: %w", err)
	}

	w.logger.InfoContext(ctx, "Monthly report refreshed",
		log.FieldEventKind, msg.Kind,
		log.FieldHouseholdID, msg.HouseholdID,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month,
		log.FieldReportRef, ref)
	return nil
}
