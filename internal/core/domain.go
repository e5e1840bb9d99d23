// Package core defines the domain model for the household ledger:
// households, users, accounts, transactions and their splits, plus the
// validation rules the service layer enforces on them.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	HouseholdIndividual HouseholdType = "individual"
	HouseholdCouple     HouseholdType = "couple"
)

const (
	AccountBank       AccountType = "bank"
	AccountCash       AccountType = "cash"
	AccountCreditCard AccountType = "credit_card"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

const (
	// Income categories
	CategorySalary     TransactionCategory = "salary"
	CategoryFreelance  TransactionCategory = "freelance"
	CategoryInvestment TransactionCategory = "investment"
	CategoryGift       TransactionCategory = "gift"
	CategoryRefund     TransactionCategory = "refund"
	// Expense categories
	CategoryFood          TransactionCategory = "food"
	CategoryTransport     TransactionCategory = "transport"
	CategoryHousing       TransactionCategory = "housing"
	CategoryUtilities     TransactionCategory = "utilities"
	CategoryHealth        TransactionCategory = "health"
	CategoryEntertainment TransactionCategory = "entertainment"
	CategoryShopping      TransactionCategory = "shopping"
	CategoryEducation     TransactionCategory = "education"
	// Shared
	CategoryOther TransactionCategory = "other"
)

// MaxDescriptionLength bounds transaction descriptions at the request boundary.
const MaxDescriptionLength = 500

type (
	HouseholdType       string
	AccountType         string
	TransactionType     string
	TransactionCategory string

	Household struct {
		ID        string
		Type      HouseholdType
		Name      string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		FirstName    string
		LastName     string
		// HouseholdID is empty only before the user's first household is
		// resolved or created.
		HouseholdID string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Account struct {
		ID          string
		HouseholdID string
		Name        string
		Type        AccountType
		Balance     decimal.Decimal
		Currency    string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Transaction struct {
		ID          string
		AccountID   string
		HouseholdID string
		Type        TransactionType
		Category    TransactionCategory
		Amount      decimal.Decimal
		Date        time.Time
		Description string
		Splits      []TransactionSplit
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	TransactionSplit struct {
		TransactionID string
		UserID        string
		Percentage    decimal.Decimal
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCurrency    = errors.New("currency must be a 3-letter code")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyName          = errors.New("empty name")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidCategory    = errors.New("invalid category")
)

var validHouseholdTypes = map[HouseholdType]bool{
	HouseholdIndividual: true,
	HouseholdCouple:     true,
}

var validAccountTypes = map[AccountType]bool{
	AccountBank:       true,
	AccountCash:       true,
	AccountCreditCard: true,
	AccountSavings:    true,
	AccountInvestment: true,
	AccountOther:      true,
}

var validCategories = map[TransactionCategory]bool{
	CategorySalary:        true,
	CategoryFreelance:     true,
	CategoryInvestment:    true,
	CategoryGift:          true,
	CategoryRefund:        true,
	CategoryFood:          true,
	CategoryTransport:     true,
	CategoryHousing:       true,
	CategoryUtilities:     true,
	CategoryHealth:        true,
	CategoryEntertainment: true,
	CategoryShopping:      true,
	CategoryEducation:     true,
	CategoryOther:         true,
}

func (t HouseholdType) Valid() bool {
	return validHouseholdTypes[t]
}

func (t AccountType) Valid() bool {
	return validAccountTypes[t]
}

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

func (c TransactionCategory) Valid() bool {
	return validCategories[c]
}

// DisplayName returns the human-readable name of the category.
func (c TransactionCategory) DisplayName() string {
	switch c {
	case CategorySalary:
		return "Salary"
	case CategoryFreelance:
		return "Freelance"
	case CategoryInvestment:
		return "Investment"
	case CategoryGift:
		return "Gift"
	case CategoryRefund:
		return "Refund"
	case CategoryFood:
		return "Food"
	case CategoryTransport:
		return "Transport"
	case CategoryHousing:
		return "Housing"
	case CategoryUtilities:
		return "Utilities"
	case CategoryHealth:
		return "Health"
	case CategoryEntertainment:
		return "Entertainment"
	case CategoryShopping:
		return "Shopping"
	case CategoryEducation:
		return "Education"
	default:
		return "Other"
	}
}

// NormalizeCurrency uppercases and trims a currency code, validating the
// 3-uppercase-letter form.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return code, nil
}

// NormalizeDate reinterprets a timestamp as UTC. A timestamp that already
// carries UTC keeps its instant; anything else keeps its wall-clock fields
// and is stamped UTC, matching how dates are persisted.
func NormalizeDate(t time.Time) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// NormalizeDescription trims a free-text description, collapsing blank
// input to the empty string.
func NormalizeDescription(s string) string {
	return strings.TrimSpace(s)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidType
	}
	if _, err := NormalizeCurrency(a.Currency); err != nil {
		return err
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if t.Amount.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
