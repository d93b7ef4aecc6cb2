// Package service defines the interfaces between the core components and
// their collaborators.
package service

import (
	"context"
	"time"

	"github.com/birrflow/birrflow/internal/model"
)

// TransferFilter defines filtering options for transfer queries. UserID is
// required; all other fields are optional.
type TransferFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	UserID    string
	Status    model.TransferStatus
	BankName  string
	Limit     int
	Offset    int
}

// Storage defines the contract for the persistence collaborator.
//
// CreateTransfer must enforce uniqueness of (user, reference) atomically and
// return common.ErrDuplicateReference on violation. UpdateTransferStatus
// must apply the pending-only transition guard as a single atomic
// read-modify-write.
type Storage interface {
	CreateTransfer(ctx context.Context, record *model.TransferRecord) error
	GetTransfer(ctx context.Context, userID, reference string) (*model.TransferRecord, error)
	GetTransfers(ctx context.Context, filter TransferFilter) ([]model.TransferRecord, error)
	CountTransfers(ctx context.Context, userID string) (int, error)
	UpdateTransferStatus(ctx context.Context, userID, reference string, status model.TransferStatus) (*model.TransferRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
