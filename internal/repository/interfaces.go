package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sitewise/contractvault/internal/domain"
)

// ContractVersionRepository defines the append-only store of contract
// snapshots. There is deliberately no update or delete operation.
type ContractVersionRepository interface {
	// Create appends a snapshot and assigns the next version number for the
	// contract atomically.
	Create(ctx context.Context, draft domain.NewVersion) (domain.ContractVersion, error)
	// ListByContract returns all versions for a contract, newest first.
	// A contract with no versions yields an empty slice.
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.ContractVersion, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.ContractVersion, error)
	GetByNumber(ctx context.Context, contractID uuid.UUID, number int) (domain.ContractVersion, error)
}
