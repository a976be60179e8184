package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/sitewise/contractvault/internal/domain"
	"github.com/sitewise/contractvault/internal/repository"
)

const historySheet = "Version History"

var historyHeaders = []string{"Version", "Summary", "Created By", "Created At", "Content Length"}

// Service renders a contract's version history as a spreadsheet for
// back-office review. Only metadata and content length are exported; the
// full text stays in the store.
type Service struct {
	versions repository.ContractVersionRepository
}

// NewService creates a new export service.
func NewService(versions repository.ContractVersionRepository) *Service {
	return &Service{versions: versions}
}

// HistoryWorkbook builds an xlsx workbook listing the contract's versions,
// newest first. A contract with no versions produces a header-only sheet.
func (s *Service) HistoryWorkbook(ctx context.Context, contractID uuid.UUID) (*excelize.File, error) {
	versions, err := s.versions.ListByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for export: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, fmt.Errorf("failed to name export sheet: %w", err)
	}

	for col, header := range historyHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(historySheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, version := range versions {
		values := []any{
			version.VersionNumber,
			version.ChangesSummary,
			createdByLabel(version),
			version.CreatedAt.Format("2006-01-02 15:04:05"),
			len(version.Content.Text),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(historySheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write version row: %w", err)
			}
		}
	}

	return f, nil
}

func createdByLabel(version domain.ContractVersion) string {
	if version.CreatedBy == nil {
		return "system"
	}
	return version.CreatedBy.String()
}
