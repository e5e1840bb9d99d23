package http

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
	"hearth/internal/services"
)

// dateLayout is the wire format for transaction dates.
const dateLayout = "2006-01-02"

type (
	userPayload struct {
		ID          string    `json:"id"`
		Email       string    `json:"email"`
		FirstName   string    `json:"first_name"`
		LastName    string    `json:"last_name"`
		HouseholdID string    `json:"household_id"`
		CreatedAt   time.Time `json:"created_at"`
	}

	sessionPayload struct {
		User        userPayload `json:"user"`
		AccessToken string      `json:"access_token"`
		TokenType   string      `json:"token_type"`
		ExpiresIn   int64       `json:"expires_in"`
	}

	householdPayload struct {
		ID        string    `json:"id"`
		Type      string    `json:"type"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	accountPayload struct {
		ID          string          `json:"id"`
		HouseholdID string          `json:"household_id"`
		Name        string          `json:"name"`
		Type        string          `json:"type"`
		Balance     decimal.Decimal `json:"balance"`
		Currency    string          `json:"currency"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	splitPayload struct {
		UserID     string          `json:"user_id"`
		Percentage decimal.Decimal `json:"percentage"`
	}

	transactionPayload struct {
		ID          string          `json:"id"`
		AccountID   string          `json:"account_id"`
		HouseholdID string          `json:"household_id"`
		Type        string          `json:"type"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Splits      []splitPayload  `json:"splits"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	categoryExpensePayload struct {
		Category     string          `json:"category"`
		CategoryName string          `json:"category_name"`
		Amount       decimal.Decimal `json:"amount"`
		Percentage   decimal.Decimal `json:"percentage"`
	}

	trendPointPayload struct {
		Year     int             `json:"year"`
		Month    int             `json:"month"`
		Label    string          `json:"label"`
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
		Savings  decimal.Decimal `json:"savings"`
	}

	dashboardPayload struct {
		TotalBalance       decimal.Decimal          `json:"total_balance"`
		Currency           string                   `json:"currency"`
		Year               int                      `json:"year"`
		Month              int                      `json:"month"`
		MonthlyIncome      decimal.Decimal          `json:"monthly_income"`
		MonthlyExpenses    decimal.Decimal          `json:"monthly_expenses"`
		ExpensesByCategory []categoryExpensePayload `json:"expenses_by_category"`
		MonthlyTrend       []trendPointPayload      `json:"monthly_trend"`
	}
)

func newUserPayload(u *core.User) userPayload {
	return userPayload{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		HouseholdID: u.HouseholdID,
		CreatedAt:   u.CreatedAt,
	}
}

func newSessionPayload(s *services.Session) sessionPayload {
	return sessionPayload{
		User:        newUserPayload(s.User),
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		ExpiresIn:   s.ExpiresIn,
	}
}

func newHouseholdPayload(h *core.Household) householdPayload {
	return householdPayload{
		ID:        h.ID,
		Type:      string(h.Type),
		Name:      h.Name,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func newAccountPayload(a *core.Account) accountPayload {
	return accountPayload{
		ID:          a.ID,
		HouseholdID: a.HouseholdID,
		Name:        a.Name,
		Type:        string(a.Type),
		Balance:     a.Balance,
		Currency:    a.Currency,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func newTransactionPayload(t *core.Transaction) transactionPayload {
	p := transactionPayload{
		ID:          t.ID,
		AccountID:   t.AccountID,
		HouseholdID: t.HouseholdID,
		Type:        string(t.Type),
		Category:    string(t.Category),
		Amount:      t.Amount,
		Date:        t.Date.Format(dateLayout),
		Description: t.Description,
		Splits:      make([]splitPayload, 0, len(t.Splits)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for _, sp := range t.Splits {
		p.Splits = append(p.Splits, splitPayload{UserID: sp.UserID, Percentage: sp.Percentage})
	}
	return p
}

func newDashboardPayload(d *core.Dashboard) dashboardPayload {
	p := dashboardPayload{
		TotalBalance:       d.TotalBalance,
		Currency:           d.Currency,
		Year:               d.Year,
		Month:              d.Month,
		MonthlyIncome:      d.MonthlyIncome,
		MonthlyExpenses:    d.MonthlyExpenses,
		ExpensesByCategory: make([]categoryExpensePayload, 0, len(d.ExpensesByCategory)),
		MonthlyTrend:       make([]trendPointPayload, 0, len(d.MonthlyTrend)),
	}
	for _, c := range d.ExpensesByCategory {
		p.ExpensesByCategory = append(p.ExpensesByCategory, categoryExpensePayload{
			Category:     string(c.Category),
			CategoryName: c.CategoryName,
			Amount:       c.Amount,
			Percentage:   c.Percentage,
		})
	}
	for _, t := range d.MonthlyTrend {
		p.MonthlyTrend = append(p.MonthlyTrend, trendPointPayload{
			Year:     t.Year,
			Month:    t.Month,
			Label:    t.Label,
			Income:   t.Income,
			Expenses: t.Expenses,
			Savings:  t.Savings,
		})
	}
	return p
}

type (
	registerRequest struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	householdRequest struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}

	accountRequest struct {
		Name     string          `json:"name"`
		Type     string          `json:"type"`
		Balance  decimal.Decimal `json:"balance"`
		Currency string          `json:"currency"`
	}

	splitRequest struct {
		UserID     string          `json:"user_id"`
		Percentage decimal.Decimal `json:"percentage"`
	}

	transactionRequest struct {
		AccountID   string          `json:"account_id"`
		Type        string          `json:"type"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Splits      []splitRequest  `json:"splits"`
	}
)

func (req transactionRequest) toInput() (services.TransactionInput, error) {
	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		return services.TransactionInput{}, fmt.Errorf("%w: date must be YYYY-MM-DD", services.ErrValidation)
	}

	input := services.TransactionInput{
		AccountID:   req.AccountID,
		Type:        core.TransactionType(req.Type),
		Category:    core.TransactionCategory(req.Category),
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		Splits:      make([]core.SplitInput, 0, len(req.Splits)),
	}
	for _, sp := range req.Splits {
		input.Splits = append(input.Splits, core.SplitInput{UserID: sp.UserID, Percentage: sp.Percentage})
	}
	return input, nil
}

func (req accountRequest) toInput() services.AccountInput {
	return services.AccountInput{
		Name:     req.Name,
		Type:     core.AccountType(req.Type),
		Balance:  req.Balance,
		Currency: req.Currency,
	}
}
