// Package lifecycle governs how extracted transfer candidates become stored
// records and how records move between verification statuses.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/birrflow/birrflow/internal/common"
	"github.com/birrflow/birrflow/internal/model"
	"github.com/birrflow/birrflow/internal/service"
)

// Manager assigns lifecycle state to transfer records. The storage
// collaborator is injected at construction; uniqueness and transition
// atomicity are enforced at the point of persistence, so multiple Manager
// instances may run concurrently across processes.
type Manager struct {
	storage service.Storage
	now     func() time.Time
}

// NewManager creates a lifecycle manager backed by the given storage.
func NewManager(storage service.Storage) *Manager {
	return &Manager{
		storage: storage,
		now:     time.Now,
	}
}

// Admit validates a candidate and stores it as a pending_verification record
// owned by userID. A reference already recorded for the same user yields
// common.ErrDuplicateReference and leaves storage unchanged.
func (m *Manager) Admit(ctx context.Context, candidate model.TransferCandidate, userID string) (*model.TransferRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID", common.ErrMissingConfig)
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	record := &model.TransferRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		BankName:      candidate.BankName,
		Amount:        candidate.Amount,
		Currency:      model.Currency,
		Description:   candidate.Description,
		Reference:     candidate.Reference,
		Date:          candidate.Date,
		Status:        model.StatusPendingVerification,
		AccountNumber: candidate.AccountNumber,
		PhoneNumber:   candidate.PhoneNumber,
		Balance:       candidate.Balance,
		RawMessage:    candidate.RawMessage,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.storage.CreateTransfer(ctx, record); err != nil {
		return nil, err
	}

	slog.Info("Transfer admitted",
		"user", userID,
		"reference", record.Reference,
		"bank", record.BankName,
		"amount", record.Amount)

	return record, nil
}

// Transition moves a pending record to a terminal status. Transitions from
// any terminal status fail with common.ErrInvalidTransition and have no side
// effects. Permission checks beyond ownership belong to the caller.
func (m *Manager) Transition(ctx context.Context, userID, reference string, next model.TransferStatus) (*model.TransferRecord, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrInvalidTransition, next)
	}
	if !next.Terminal() {
		return nil, fmt.Errorf("%w: cannot transition back to %q", common.ErrInvalidTransition, next)
	}

	record, err := m.storage.UpdateTransferStatus(ctx, userID, reference, next)
	if err != nil {
		return nil, err
	}

	slog.Info("Transfer status updated",
		"user", userID,
		"reference", reference,
		"status", next)

	return record, nil
}
