package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hearth/internal/core"
)

const accountColumns = "id, household_id, name, type, balance, currency, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (*core.Account, error) {
	var (
		a         core.Account
		aType     string
		balance   string
		createdAt string
		updatedAt sql.NullString
	)
	if err := row.Scan(&a.ID, &a.HouseholdID, &a.Name, &aType, &balance, &a.Currency, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.Type = core.AccountType(aType)

	var err error
	if a.Balance, err = parseDecimal(balance); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if a.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (*core.Account, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccountsByHousehold(ctx context.Context, householdID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE household_id = ? ORDER BY name", householdID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a *core.Account) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts ("+accountColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.HouseholdID, a.Name, string(a.Type), a.Balance.String(), a.Currency,
		fmtTime(a.CreatedAt), nullString(""),
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a *core.Account) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, type = ?, balance = ?, currency = ?, updated_at = ? WHERE id = ?",
		a.Name, string(a.Type), a.Balance.String(), a.Currency, fmtTime(a.UpdatedAt), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes the account; its transactions (and their splits)
// cascade at the schema level.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
