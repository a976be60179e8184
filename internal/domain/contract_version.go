package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultChangesSummary is recorded when a caller saves a version without
// describing what changed.
const DefaultChangesSummary = "Manual save"

// VersionContent is the snapshot payload stored with every version. It always
// holds the complete document body, never a delta.
type VersionContent struct {
	Text string `json:"text"`
}

// ContractVersion is an immutable full-text snapshot of a contract. Version
// numbers are assigned by the store, start at 1, and strictly increase per
// contract. Rows are never updated or deleted; restoring an old version
// appends a new row.
type ContractVersion struct {
	ID             uuid.UUID      `json:"id"`
	ContractID     uuid.UUID      `json:"contract_id"`
	VersionNumber  int            `json:"version_number"`
	Content        VersionContent `json:"content"`
	ChangesSummary string         `json:"changes_summary"`
	CreatedBy      *uuid.UUID     `json:"created_by,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewVersion describes a snapshot to be appended. VersionNumber is always
// assigned by the store, never by the caller.
type NewVersion struct {
	ContractID uuid.UUID
	Content    VersionContent
	Summary    string
	CreatedBy  *uuid.UUID
}

// Validate rejects snapshots that must never reach the store.
func (v NewVersion) Validate() error {
	if v.ContractID == uuid.Nil {
		return &ValidationError{Field: "contract_id", Reason: "contract id is required"}
	}
	if strings.TrimSpace(v.Content.Text) == "" {
		return &ValidationError{Field: "content", Reason: "contract content is required"}
	}
	return nil
}

// SummaryOrDefault returns the caller-supplied summary, falling back to
// DefaultChangesSummary for blank input.
func (v NewVersion) SummaryOrDefault() string {
	if strings.TrimSpace(v.Summary) == "" {
		return DefaultChangesSummary
	}
	return v.Summary
}
