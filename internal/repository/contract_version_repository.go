package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sitewise/contractvault/internal/db"
	"github.com/sitewise/contractvault/internal/domain"
)

const uniqueViolationCode = "23505"

// createVersionAttempts bounds the retry loop for concurrent writers racing
// on the same contract. The number is assigned inside the INSERT itself, so
// a retry can never double-increment.
const createVersionAttempts = 3

// contractVersionRepository implements ContractVersionRepository over Postgres.
type contractVersionRepository struct {
	db db.Querier
}

// NewContractVersionRepository creates a repository backed by a pgx pool or
// transaction.
func NewContractVersionRepository(exec db.Querier) ContractVersionRepository {
	return &contractVersionRepository{db: exec}
}

// Create inserts a snapshot with the next version number for the contract.
// The number is computed by the database in the same statement that inserts
// the row; the UNIQUE constraint on (contract_id, version_number) catches
// the remaining race between concurrent writers, which is resolved by
// re-running the statement.
func (r *contractVersionRepository) Create(ctx context.Context, draft domain.NewVersion) (domain.ContractVersion, error) {
	contentJSON, err := json.Marshal(draft.Content)
	if err != nil {
		return domain.ContractVersion{}, fmt.Errorf("failed to marshal version content: %w", err)
	}

	const query = `
		INSERT INTO contract_versions (contract_id, version_number, content, changes_summary, created_by)
		VALUES (
			$1,
			(SELECT COALESCE(MAX(version_number), 0) + 1 FROM contract_versions WHERE contract_id = $1),
			$2, $3, $4
		)
		RETURNING id, contract_id, version_number, content, changes_summary, created_by, created_at`

	var lastErr error
	for attempt := 0; attempt < createVersionAttempts; attempt++ {
		row := r.db.QueryRow(ctx, query, draft.ContractID, contentJSON, draft.SummaryOrDefault(), draft.CreatedBy)

		version, err := scanVersion(row)
		if err == nil {
			return version, nil
		}
		if !isUniqueViolation(err) {
			return domain.ContractVersion{}, fmt.Errorf("failed to create contract version: %w", err)
		}
		lastErr = err
	}

	return domain.ContractVersion{}, fmt.Errorf("failed to create contract version after %d attempts: %w", createVersionAttempts, lastErr)
}

// ListByContract returns every version of a contract in descending version
// order, so the first element is the current one.
func (r *contractVersionRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.ContractVersion, error) {
	const query = `
		SELECT id, contract_id, version_number, content, changes_summary, created_by, created_at
		FROM contract_versions
		WHERE contract_id = $1
		ORDER BY version_number DESC`

	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract versions: %w", err)
	}
	defer rows.Close()

	versions := []domain.ContractVersion{}
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contract versions: %w", err)
	}

	return versions, nil
}

// GetByID fetches a single snapshot, used when restoring.
func (r *contractVersionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.ContractVersion, error) {
	const query = `
		SELECT id, contract_id, version_number, content, changes_summary, created_by, created_at
		FROM contract_versions
		WHERE id = $1`

	version, err := scanVersion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ContractVersion{}, domain.ErrVersionNotFound
		}
		return domain.ContractVersion{}, fmt.Errorf("failed to get contract version: %w", err)
	}

	return version, nil
}

// GetByNumber fetches the snapshot holding one version number of a contract.
func (r *contractVersionRepository) GetByNumber(ctx context.Context, contractID uuid.UUID, number int) (domain.ContractVersion, error) {
	const query = `
		SELECT id, contract_id, version_number, content, changes_summary, created_by, created_at
		FROM contract_versions
		WHERE contract_id = $1 AND version_number = $2`

	version, err := scanVersion(r.db.QueryRow(ctx, query, contractID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ContractVersion{}, domain.ErrVersionNotFound
		}
		return domain.ContractVersion{}, fmt.Errorf("failed to get contract version %d: %w", number, err)
	}

	return version, nil
}

func scanVersion(row pgx.Row) (domain.ContractVersion, error) {
	var (
		version     domain.ContractVersion
		contentJSON []byte
	)

	err := row.Scan(
		&version.ID,
		&version.ContractID,
		&version.VersionNumber,
		&contentJSON,
		&version.ChangesSummary,
		&version.CreatedBy,
		&version.CreatedAt,
	)
	if err != nil {
		return domain.ContractVersion{}, err
	}

	if err := json.Unmarshal(contentJSON, &version.Content); err != nil {
		return domain.ContractVersion{}, fmt.Errorf("failed to unmarshal version content: %w", err)
	}

	return version, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
