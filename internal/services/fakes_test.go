package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/storage"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

// memStore is an in-memory stand-in for the SQLite repository. It keeps
// the same observable semantics: copies on read, household-scoped
// listings, cascade on account delete, and Go-side decimal aggregation.
type memStore struct {
	mu           sync.Mutex
	users        map[string]*core.User
	households   map[string]*core.Household
	accounts     map[string]*core.Account
	transactions map[string]*core.Transaction
}

var (
	_ storage.UserRepository        = (*memStore)(nil)
	_ storage.HouseholdRepository   = (*memStore)(nil)
	_ storage.AccountRepository     = (*memStore)(nil)
	_ storage.TransactionRepository = (*memStore)(nil)
	_ storage.DashboardRepository   = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*core.User),
		households:   make(map[string]*core.Household),
		accounts:     make(map[string]*core.Account),
		transactions: make(map[string]*core.Transaction),
	}
}

func (s *memStore) GetUser(_ context.Context, id string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.GetUserByEmail(ctx, email)
	if err == storage.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *memStore) ListUsersByHousehold(_ context.Context, householdID string) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.User
	for _, u := range s.users {
		if u.HouseholdID == householdID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) CreateUser(_ context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *memStore) UpdateUser(_ context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *memStore) GetHousehold(_ context.Context, id string) (*core.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.households[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *h
	return &out, nil
}

func (s *memStore) CreateHousehold(_ context.Context, h *core.Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *h
	s.households[c.ID] = &c
	return nil
}

func (s *memStore) SaveHousehold(_ context.Context, h *core.Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.households[h.ID]; !ok {
		return storage.ErrNotFound
	}
	c := *h
	s.households[c.ID] = &c
	return nil
}

func (s *memStore) CreateHouseholdForUser(_ context.Context, h *core.Household, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return "", storage.ErrNotFound
	}
	if u.HouseholdID != "" {
		return u.HouseholdID, nil
	}
	c := *h
	s.households[c.ID] = &c
	u.HouseholdID = c.ID
	return c.ID, nil
}

func (s *memStore) CreateUserWithHousehold(_ context.Context, user *core.User, h *core.Household) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hc := *h
	uc := *user
	s.households[hc.ID] = &hc
	s.users[uc.ID] = &uc
	return nil
}

func (s *memStore) GetAccount(_ context.Context, id string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (s *memStore) ListAccountsByHousehold(_ context.Context, householdID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.HouseholdID == householdID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) CreateAccount(_ context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	s.accounts[c.ID] = &c
	return nil
}

func (s *memStore) UpdateAccount(_ context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return storage.ErrNotFound
	}
	c := *a
	s.accounts[c.ID] = &c
	return nil
}

func (s *memStore) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.accounts, id)
	for tid, t := range s.transactions {
		if t.AccountID == id {
			delete(s.transactions, tid)
		}
	}
	return nil
}

func (s *memStore) GetTransaction(_ context.Context, id string) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *t
	out.Splits = append([]core.TransactionSplit(nil), t.Splits...)
	return &out, nil
}

func (s *memStore) ListTransactionsByHousehold(_ context.Context, householdID string, filter storage.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.HouseholdID != householdID {
			continue
		}
		if filter.AccountID != "" && t.AccountID != filter.AccountID {
			continue
		}
		if !filter.From.IsZero() && t.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && t.Date.After(filter.To) {
			continue
		}
		c := *t
		c.Splits = append([]core.TransactionSplit(nil), t.Splits...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) CreateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	c.Splits = append([]core.TransactionSplit(nil), t.Splits...)
	s.transactions[c.ID] = &c
	return nil
}

func (s *memStore) UpdateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return storage.ErrNotFound
	}
	c := *t
	c.Splits = append([]core.TransactionSplit(nil), t.Splits...)
	s.transactions[c.ID] = &c
	return nil
}

func (s *memStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *memStore) TotalBalance(_ context.Context, householdID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, a := range s.accounts {
		if a.HouseholdID == householdID {
			total = total.Add(a.Balance)
		}
	}
	return total, nil
}

func (s *memStore) sumMonthly(householdID string, year, month int, tType core.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range s.transactions {
		if t.HouseholdID == householdID && t.Type == tType &&
			t.Date.Year() == year && int(t.Date.Month()) == month {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func (s *memStore) MonthlyIncome(_ context.Context, householdID string, year, month int) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sumMonthly(householdID, year, month, core.TransactionIncome), nil
}

func (s *memStore) MonthlyExpenses(_ context.Context, householdID string, year, month int) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sumMonthly(householdID, year, month, core.TransactionExpense), nil
}

func (s *memStore) ExpensesByCategory(_ context.Context, householdID string, year, month int) ([]core.CategoryAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := make(map[core.TransactionCategory]decimal.Decimal)
	for _, t := range s.transactions {
		if t.HouseholdID == householdID && t.Type == core.TransactionExpense &&
			t.Date.Year() == year && int(t.Date.Month()) == month {
			sums[t.Category] = sums[t.Category].Add(t.Amount)
		}
	}
	out := make([]core.CategoryAmount, 0, len(sums))
	for c, amount := range sums {
		out = append(out, core.CategoryAmount{Category: c, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *memStore) MonthlyTrend(_ context.Context, householdID string, monthsBack int) ([]core.MonthTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := time.Now().UTC()
	start := end.AddDate(0, -monthsBack, 0)

	type bucketKey struct{ year, month int }
	buckets := make(map[bucketKey]*core.MonthTotals)
	for _, t := range s.transactions {
		if t.HouseholdID != householdID || t.Date.Before(start) || !t.Date.Before(end) {
			continue
		}
		key := bucketKey{t.Date.Year(), int(t.Date.Month())}
		b, ok := buckets[key]
		if !ok {
			b = &core.MonthTotals{Year: key.year, Month: key.month}
			buckets[key] = b
		}
		switch t.Type {
		case core.TransactionIncome:
			b.Income = b.Income.Add(t.Amount)
		case core.TransactionExpense:
			b.Expenses = b.Expenses.Add(t.Amount)
		}
	}

	out := make([]core.MonthTotals, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

// capturePublisher records published ledger events, optionally failing
// every publish.
type capturePublisher struct {
	mu     sync.Mutex
	events []LedgerEvent
	err    error
}

func (p *capturePublisher) PublishLedgerEvent(_ context.Context, ev LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) published() []LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]LedgerEvent(nil), p.events...)
}
