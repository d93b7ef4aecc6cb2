// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/birrflow/birrflow/internal/common"
)

// Currency is the canonical currency code for all extracted amounts.
// Locale notations are rewritten to this code before extraction.
const Currency = "ETB"

// TransferStatus indicates where a transfer record is in its lifecycle.
type TransferStatus string

// Transfer status constants.
const (
	StatusPendingVerification TransferStatus = "pending_verification"
	StatusVerified            TransferStatus = "verified"
	StatusFraud               TransferStatus = "fraud"
	StatusCancelled           TransferStatus = "cancelled"
)

// Valid reports whether s is one of the recognized statuses.
func (s TransferStatus) Valid() bool {
	switch s {
	case StatusPendingVerification, StatusVerified, StatusFraud, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s TransferStatus) Terminal() bool {
	return s == StatusVerified || s == StatusFraud || s == StatusCancelled
}

// CanTransitionTo reports whether a record in status s may move to next.
// Only pending_verification records may transition, and only to a terminal
// status.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	return s == StatusPendingVerification && next.Valid() && next.Terminal()
}

// TransferCandidate is the extraction engine's output before lifecycle
// assignment. Exactly one of AccountNumber or PhoneNumber is populated
// depending on the provider kind; either may be empty when the text did not
// contain one.
type TransferCandidate struct {
	Date          time.Time
	Balance       *float64
	BankName      string
	Description   string
	Reference     string
	AccountNumber string
	PhoneNumber   string
	RawMessage    string
	Amount        float64
}

// Validate checks the invariants a candidate must satisfy before admission.
func (c *TransferCandidate) Validate() error {
	if c.Amount == 0 {
		return common.ErrMissingAmount
	}
	if c.Amount < 0 {
		return fmt.Errorf("%w: %.2f", common.ErrInvalidAmount, c.Amount)
	}
	if c.Reference == "" {
		return fmt.Errorf("transfer reference is required")
	}
	return nil
}

// TransferRecord is an admitted candidate with lifecycle status and owner
// identity. Records are created once and mutated only through status
// transitions.
type TransferRecord struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Date          time.Time
	Balance       *float64
	ID            string
	UserID        string
	BankName      string
	Currency      string
	Description   string
	Reference     string
	Status        TransferStatus
	AccountNumber string
	PhoneNumber   string
	RawMessage    string
	Amount        float64
}

// transferRecordJSON is the wire shape of a record: dates are day-precision
// strings and optional fields are omitted when absent.
type transferRecordJSON struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	BankName      string         `json:"bank_name"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Description   string         `json:"description"`
	Reference     string         `json:"reference"`
	Date          string         `json:"date"`
	Status        TransferStatus `json:"status"`
	AccountNumber string         `json:"account_number,omitempty"`
	PhoneNumber   string         `json:"phone_number,omitempty"`
	Balance       *float64       `json:"balance,omitempty"`
	RawMessage    string         `json:"raw_message,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// MarshalJSON serializes the record with its transaction date as YYYY-MM-DD.
func (r TransferRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(transferRecordJSON{
		ID:            r.ID,
		UserID:        r.UserID,
		BankName:      r.BankName,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Description:   r.Description,
		Reference:     r.Reference,
		Date:          r.Date.Format("2006-01-02"),
		Status:        r.Status,
		AccountNumber: r.AccountNumber,
		PhoneNumber:   r.PhoneNumber,
		Balance:       r.Balance,
		RawMessage:    r.RawMessage,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *TransferRecord) UnmarshalJSON(data []byte) error {
	var raw transferRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", raw.Date)
	if err != nil {
		return fmt.Errorf("invalid transfer date %q: %w", raw.Date, err)
	}
	*r = TransferRecord{
		ID:            raw.ID,
		UserID:        raw.UserID,
		BankName:      raw.BankName,
		Amount:        raw.Amount,
		Currency:      raw.Currency,
		Description:   raw.Description,
		Reference:     raw.Reference,
		Date:          date,
		Status:        raw.Status,
		AccountNumber: raw.AccountNumber,
		PhoneNumber:   raw.PhoneNumber,
		Balance:       raw.Balance,
		RawMessage:    raw.RawMessage,
		CreatedAt:     raw.CreatedAt,
		UpdatedAt:     raw.UpdatedAt,
	}
	return nil
}
