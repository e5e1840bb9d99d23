package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"EUR", "EUR", false},
		{"eur", "EUR", false},
		{" usd ", "USD", false},
		{"EU", "", true},
		{"EURO", "", true},
		{"E1R", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeCurrency(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCurrency) {
				t.Errorf("NormalizeCurrency(%q): expected ErrInvalidCurrency, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeCurrency(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	utc := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	if got := NormalizeDate(utc); !got.Equal(utc) {
		t.Errorf("UTC date changed: %v", got)
	}

	// A zoned timestamp keeps its wall clock and is restamped UTC, not converted.
	loc := time.FixedZone("CEST", 2*60*60)
	zoned := time.Date(2026, 3, 15, 10, 30, 0, 0, loc)
	got := NormalizeDate(zoned)
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
	if got.Hour() != 10 || got.Day() != 15 {
		t.Errorf("wall clock changed: %v", got)
	}
}

func TestAccountValidate(t *testing.T) {
	valid := Account{Name: "Checking", Type: AccountBank, Currency: "EUR"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Account)
		wantErr error
	}{
		{"blank name", func(a *Account) { a.Name = "  " }, ErrEmptyName},
		{"bad type", func(a *Account) { a.Type = "wallet" }, ErrInvalidType},
		{"bad currency", func(a *Account) { a.Currency = "EURO" }, ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			if err := a.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Type:     TransactionExpense,
		Category: CategoryFood,
		Amount:   decimal.New(200, 0),
		Date:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"bad type", func(tr *Transaction) { tr.Type = "transfer" }, ErrInvalidType},
		{"bad category", func(tr *Transaction) { tr.Category = "misc" }, ErrInvalidCategory},
		{"zero amount", func(tr *Transaction) { tr.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(tr *Transaction) { tr.Amount = decimal.New(-1, 0) }, ErrInvalidAmount},
		{"zero date", func(tr *Transaction) { tr.Date = time.Time{} }, ErrInvalidDate},
		{"long description", func(tr *Transaction) { tr.Description = strings.Repeat("x", MaxDescriptionLength+1) }, ErrDescriptionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			if err := tr.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCategoryDisplayName(t *testing.T) {
	if got := CategoryFood.DisplayName(); got != "Food" {
		t.Errorf("Food display name = %q", got)
	}
	if got := TransactionCategory("bogus").DisplayName(); got != "Other" {
		t.Errorf("unknown category display name = %q", got)
	}
}
