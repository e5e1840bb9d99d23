package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hearth/internal/core"
)

func scanHousehold(row interface{ Scan(...any) error }) (*core.Household, error) {
	var (
		h         core.Household
		hType     string
		createdAt string
		updatedAt sql.NullString
	)
	if err := row.Scan(&h.ID, &hType, &h.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	h.Type = core.HouseholdType(hType)

	var err error
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if h.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &h, nil
}

func (r *SQLiteRepository) GetHousehold(ctx context.Context, id string) (*core.Household, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, type, name, created_at, updated_at FROM households WHERE id = ?", id)
	h, err := scanHousehold(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (r *SQLiteRepository) CreateHousehold(ctx context.Context, h *core.Household) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO households (id, type, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		h.ID, string(h.Type), h.Name, fmtTime(h.CreatedAt), nullString(""),
	)
	if err != nil {
		return fmt.Errorf("create household: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveHousehold(ctx context.Context, h *core.Household) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE households SET type = ?, name = ?, updated_at = ? WHERE id = ?",
		string(h.Type), h.Name, fmtTime(h.UpdatedAt), h.ID,
	)
	if err != nil {
		return fmt.Errorf("save household: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save household rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateHouseholdForUser(ctx context.Context, h *core.Household, userID string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-check inside the transaction so two concurrent first requests
	// cannot both create a household for the same user.
	var existing sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT household_id FROM users WHERE id = ?", userID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("check user household: %w", err)
	}
	if existing.Valid && existing.String != "" {
		return existing.String, nil
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO households (id, type, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		h.ID, string(h.Type), h.Name, fmtTime(h.CreatedAt), nullString(""),
	)
	if err != nil {
		return "", fmt.Errorf("create household: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET household_id = ?, updated_at = ? WHERE id = ?",
		h.ID, fmtTime(h.CreatedAt), userID,
	)
	if err != nil {
		return "", fmt.Errorf("assign household: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return h.ID, nil
}

func (r *SQLiteRepository) CreateUserWithHousehold(ctx context.Context, user *core.User, h *core.Household) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO households (id, type, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		h.ID, string(h.Type), h.Name, fmtTime(h.CreatedAt), nullString(""),
	)
	if err != nil {
		return fmt.Errorf("create household: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		nullString(user.HouseholdID), fmtTime(user.CreatedAt), nullString(""),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
