package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hearth/internal/core"
)

const transactionColumns = "id, account_id, household_id, type, category, amount, date, description, created_at, updated_at"

func scanTransaction(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var (
		t           core.Transaction
		tType       string
		category    string
		amount      string
		date        string
		description sql.NullString
		createdAt   string
		updatedAt   sql.NullString
	)
	if err := row.Scan(&t.ID, &t.AccountID, &t.HouseholdID, &tType, &category, &amount, &date, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Type = core.TransactionType(tType)
	t.Category = core.TransactionCategory(category)
	t.Description = description.String

	var err error
	if t.Amount, err = parseDecimal(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if t.Date, err = parseTime(date); err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &t, nil
}

func (r *SQLiteRepository) loadSplits(ctx context.Context, transactionIDs []string) (map[string][]core.TransactionSplit, error) {
	if len(transactionIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(transactionIDs)), ",")
	args := make([]any, len(transactionIDs))
	for i, id := range transactionIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT transaction_id, user_id, percentage FROM transaction_splits WHERE transaction_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("load splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[string][]core.TransactionSplit)
	for rows.Next() {
		var (
			s          core.TransactionSplit
			percentage string
		)
		if err := rows.Scan(&s.TransactionID, &s.UserID, &percentage); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		if s.Percentage, err = parseDecimal(percentage); err != nil {
			return nil, fmt.Errorf("parse percentage: %w", err)
		}
		splits[s.TransactionID] = append(splits[s.TransactionID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate splits: %w", err)
	}
	return splits, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	splits, err := r.loadSplits(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Splits = splits[t.ID]
	return t, nil
}

func (r *SQLiteRepository) ListTransactionsByHousehold(ctx context.Context, householdID string, filter TransactionFilter) ([]core.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions WHERE household_id = ?"
	args := []any{householdID}

	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if !filter.From.IsZero() {
		query += " AND date >= ?"
		args = append(args, fmtTime(filter.From))
	}
	if !filter.To.IsZero() {
		query += " AND date <= ?"
		args = append(args, fmtTime(filter.To))
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var (
		transactions []core.Transaction
		ids          []string
	)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	splits, err := r.loadSplits(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		transactions[i].Splits = splits[transactions[i].ID]
	}
	return transactions, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.AccountID, t.HouseholdID, string(t.Type), string(t.Category),
		t.Amount.String(), fmtTime(t.Date), nullString(t.Description),
		fmtTime(t.CreatedAt), nullString(""),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if err := insertSplits(ctx, tx, t.ID, t.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE transactions SET account_id = ?, type = ?, category = ?, amount = ?, date = ?, description = ?, updated_at = ? WHERE id = ?",
		t.AccountID, string(t.Type), string(t.Category), t.Amount.String(),
		fmtTime(t.Date), nullString(t.Description), fmtTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	// Splits are replaced wholesale on every update.
	if _, err := tx.ExecContext(ctx, "DELETE FROM transaction_splits WHERE transaction_id = ?", t.ID); err != nil {
		return fmt.Errorf("delete splits: %w", err)
	}
	if err := insertSplits(ctx, tx, t.ID, t.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, transactionID string, splits []core.TransactionSplit) error {
	for _, s := range splits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO transaction_splits (transaction_id, user_id, percentage) VALUES (?, ?, ?)",
			transactionID, s.UserID, s.Percentage.String(),
		)
		if err != nil {
			return fmt.Errorf("insert split: %w", err)
		}
	}
	return nil
}
