package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/birrflow/birrflow/internal/common"
	"github.com/birrflow/birrflow/internal/model"
	"github.com/birrflow/birrflow/internal/service"
)

// dateLayout is how transaction dates are stored; day precision only.
const dateLayout = "2006-01-02"

// CreateTransfer inserts a new transfer record. The UNIQUE(user_id,
// reference) constraint makes the duplicate check and the insert a single
// atomic unit; a violation surfaces as common.ErrDuplicateReference.
func (s *SQLiteStorage) CreateTransfer(ctx context.Context, record *model.TransferRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transfers (
			id, user_id, bank_name, amount, currency, description,
			reference, date, status, account_number, phone_number,
			balance, raw_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.UserID,
		record.BankName,
		record.Amount,
		record.Currency,
		record.Description,
		record.Reference,
		record.Date.Format(dateLayout),
		string(record.Status),
		nullString(record.AccountNumber),
		nullString(record.PhoneNumber),
		nullFloat(record.Balance),
		nullString(record.RawMessage),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", common.ErrDuplicateReference, record.Reference)
		}
		return fmt.Errorf("failed to insert transfer %s: %w", record.Reference, err)
	}

	return nil
}

// GetTransfer retrieves a single transfer by owner and reference.
func (s *SQLiteStorage) GetTransfer(ctx context.Context, userID, reference string) (*model.TransferRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(reference, "reference"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, bank_name, amount, currency, description,
		       reference, date, status, account_number, phone_number,
		       balance, raw_message, created_at, updated_at
		FROM transfers
		WHERE user_id = ? AND reference = ?
	`, userID, reference)

	record, err := scanTransfer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transfer %s", common.ErrNotFound, reference)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return record, nil
}

// GetTransfers retrieves a user's transfers newest-first with optional
// status, bank-name, and date-range filters.
func (s *SQLiteStorage) GetTransfers(ctx context.Context, filter service.TransferFilter) ([]model.TransferRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(filter.UserID, "filter.UserID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: %v after %v", ErrInvalidDateRange, filter.StartDate, filter.EndDate)
	}

	query := `
		SELECT id, user_id, bank_name, amount, currency, description,
		       reference, date, status, account_number, phone_number,
		       balance, raw_message, created_at, updated_at
		FROM transfers
		WHERE user_id = ?`
	args := []any{filter.UserID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.BankName != "" {
		query += " AND bank_name LIKE ?"
		args = append(args, "%"+filter.BankName+"%")
	}
	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, filter.StartDate.Format(dateLayout))
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, filter.EndDate.Format(dateLayout))
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.TransferRecord
	for rows.Next() {
		record, scanErr := scanTransfer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", scanErr)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// CountTransfers returns the total number of transfers owned by a user.
func (s *SQLiteStorage) CountTransfers(ctx context.Context, userID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transfers WHERE user_id = ?
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	return count, nil
}

// UpdateTransferStatus transitions a transfer out of pending_verification.
// The status guard lives in the UPDATE itself so two concurrent transitions
// cannot both succeed from the same starting state.
func (s *SQLiteStorage) UpdateTransferStatus(ctx context.Context, userID, reference string, status model.TransferStatus) (*model.TransferRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(reference, "reference"); err != nil {
		return nil, err
	}
	if !model.StatusPendingVerification.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %q is not a legal target status", common.ErrInvalidTransition, status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transfers
		SET status = ?, updated_at = ?
		WHERE user_id = ? AND reference = ? AND status = ?
	`, string(status), time.Now().UTC(), userID, reference, string(model.StatusPendingVerification))
	if err != nil {
		return nil, fmt.Errorf("failed to update transfer status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Either the record does not exist or it is already terminal.
		existing, getErr := s.GetTransfer(ctx, userID, reference)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: transfer %s is already %s", common.ErrInvalidTransition, reference, existing.Status)
	}

	return s.GetTransfer(ctx, userID, reference)
}

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanTransfer(row scannable) (*model.TransferRecord, error) {
	var (
		record     model.TransferRecord
		date       string
		status     string
		account    sql.NullString
		phone      sql.NullString
		balance    sql.NullFloat64
		rawMessage sql.NullString
	)

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.BankName,
		&record.Amount,
		&record.Currency,
		&record.Description,
		&record.Reference,
		&date,
		&status,
		&account,
		&phone,
		&balance,
		&rawMessage,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	record.Status = model.TransferStatus(status)
	if account.Valid {
		record.AccountNumber = account.String
	}
	if phone.Valid {
		record.PhoneNumber = phone.String
	}
	if balance.Valid {
		b := balance.Float64
		record.Balance = &b
	}
	if rawMessage.Valid {
		record.RawMessage = rawMessage.String
	}

	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
