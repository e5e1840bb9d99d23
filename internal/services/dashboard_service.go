package services

import (
	"context"
	"fmt"
	"time"

	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/storage"
)

// DashboardService derives the read-only dashboard view from the ledger.
// It never mutates state.
type DashboardService struct {
	dashboards storage.DashboardRepository
	users      storage.UserRepository
	currency   string
	logger     *log.Logger
}

func NewDashboardService(dashboards storage.DashboardRepository, users storage.UserRepository, currency string, logger *log.Logger) *DashboardService {
	return &DashboardService{
		dashboards: dashboards,
		users:      users,
		currency:   currency,
		logger:     logger.WithComponent("dashboard_service"),
	}
}

// Compute builds the dashboard for the target month (current UTC month
// when year/month are zero) and a trendMonths-long window. An
// unauthorized caller gets a zeroed view rather than an error.
//
// The five store reads run sequentially on purpose: they share one
// logical session, which is not safe for concurrent use.
func (s *DashboardService) Compute(ctx context.Context, householdID, userID string, year, month, trendMonths int) (*core.Dashboard, error) {
	now := time.Now().UTC()
	targetYear, targetMonth := year, month
	if targetYear == 0 {
		targetYear = now.Year()
	}
	if targetMonth == 0 {
		targetMonth = int(now.Month())
	}

	ok, err := userInHousehold(ctx, s.users, userID, householdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.DebugContext(ctx, "Dashboard denied, returning empty view",
			"household_id", householdID, "user_id", userID)
		return emptyDashboard(s.currency, targetYear, targetMonth), nil
	}

	totalBalance, err := s.dashboards.TotalBalance(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("total balance: %w", err)
	}
	monthlyIncome, err := s.dashboards.MonthlyIncome(ctx, householdID, targetYear, targetMonth)
	if err != nil {
		return nil, fmt.Errorf("monthly income: %w", err)
	}
	monthlyExpenses, err := s.dashboards.MonthlyExpenses(ctx, householdID, targetYear, targetMonth)
	if err != nil {
		return nil, fmt.Errorf("monthly expenses: %w", err)
	}
	byCategory, err := s.dashboards.ExpensesByCategory(ctx, householdID, targetYear, targetMonth)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	trend, err := s.dashboards.MonthlyTrend(ctx, householdID, trendMonths)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}

	return &core.Dashboard{
		TotalBalance:       totalBalance,
		Currency:           s.currency,
		Year:               targetYear,
		Month:              targetMonth,
		MonthlyIncome:      monthlyIncome,
		MonthlyExpenses:    monthlyExpenses,
		ExpensesByCategory: core.BuildCategoryBreakdown(byCategory, monthlyExpenses),
		MonthlyTrend:       core.BuildTrend(trend),
	}, nil
}

func emptyDashboard(currency string, year, month int) *core.Dashboard {
	return &core.Dashboard{
		Currency: currency,
		Year:     year,
		Month:    month,
	}
}
