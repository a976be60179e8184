package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitewise/contractvault/internal/domain"
	"github.com/sitewise/contractvault/internal/repository"
)

// Service orchestrates the version history workflow: capturing snapshots,
// listing them, restoring old ones and comparing any two.
type Service struct {
	versions repository.ContractVersionRepository
	logger   *zap.SugaredLogger
}

// NewService creates a new history service.
func NewService(versions repository.ContractVersionRepository, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{versions: versions, logger: logger}
}

// Comparison is the result of diffing two versions of one contract. Older
// always holds the lower version number, whatever order the caller selected.
type Comparison struct {
	Older   domain.ContractVersion `json:"older"`
	Newer   domain.ContractVersion `json:"newer"`
	Changes []domain.Change        `json:"changes"`
	Unified string                 `json:"unified"`
}

// CreateVersion validates and appends a snapshot. Blank content is rejected
// before any write; a blank summary becomes the manual-save default.
func (s *Service) CreateVersion(ctx context.Context, contractID uuid.UUID, text, summary string, createdBy *uuid.UUID) (domain.ContractVersion, error) {
	draft := domain.NewVersion{
		ContractID: contractID,
		Content:    domain.VersionContent{Text: text},
		Summary:    summary,
		CreatedBy:  createdBy,
	}
	if err := draft.Validate(); err != nil {
		return domain.ContractVersion{}, err
	}

	version, err := s.versions.Create(ctx, draft)
	if err != nil {
		return domain.ContractVersion{}, err
	}

	s.logger.Infow("contract version created",
		"contract_id", contractID,
		"version_number", version.VersionNumber,
	)

	return version, nil
}

// ListVersions returns a contract's versions, newest first. A contract with
// no versions yields an empty list.
func (s *Service) ListVersions(ctx context.Context, contractID uuid.UUID) ([]domain.ContractVersion, error) {
	return s.versions.ListByContract(ctx, contractID)
}

// GetVersion fetches one snapshot by id.
func (s *Service) GetVersion(ctx context.Context, id uuid.UUID) (domain.ContractVersion, error) {
	return s.versions.GetByID(ctx, id)
}

// Restore appends a new version whose content duplicates an older version's
// content. The old row is never touched, so a failed restore cannot corrupt
// history. Restoring the current version is refused.
func (s *Service) Restore(ctx context.Context, contractID uuid.UUID, versionNumber int, actor *uuid.UUID) (domain.ContractVersion, error) {
	target, err := s.versions.GetByNumber(ctx, contractID, versionNumber)
	if err != nil {
		return domain.ContractVersion{}, err
	}

	existing, err := s.versions.ListByContract(ctx, contractID)
	if err != nil {
		return domain.ContractVersion{}, err
	}
	if len(existing) > 0 && existing[0].VersionNumber == target.VersionNumber {
		return domain.ContractVersion{}, domain.ErrRestoreCurrentVersion
	}

	restored, err := s.versions.Create(ctx, domain.NewVersion{
		ContractID: contractID,
		Content:    target.Content,
		Summary:    fmt.Sprintf("Restored from version %d", target.VersionNumber),
		CreatedBy:  actor,
	})
	if err != nil {
		return domain.ContractVersion{}, err
	}

	s.logger.Infow("contract version restored",
		"contract_id", contractID,
		"restored_from", target.VersionNumber,
		"version_number", restored.VersionNumber,
	)

	return restored, nil
}

// Compare diffs two versions of a contract. The pair is ordered by version
// number, so the lower number is always treated as the older side.
func (s *Service) Compare(ctx context.Context, contractID uuid.UUID, a, b int) (Comparison, error) {
	if a > b {
		a, b = b, a
	}

	older, err := s.versions.GetByNumber(ctx, contractID, a)
	if err != nil {
		return Comparison{}, err
	}

	newer := older
	if b != a {
		newer, err = s.versions.GetByNumber(ctx, contractID, b)
		if err != nil {
			return Comparison{}, err
		}
	}

	unified, err := domain.UnifiedDiff(
		fmt.Sprintf("version %d", older.VersionNumber),
		fmt.Sprintf("version %d", newer.VersionNumber),
		older.Content.Text,
		newer.Content.Text,
	)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Older:   older,
		Newer:   newer,
		Changes: domain.DiffLines(older.Content.Text, newer.Content.Text),
		Unified: unified,
	}, nil
}
