package history

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/sitewise/contractvault/internal/domain"
)

// SessionState names the phases of one open history view.
type SessionState string

const (
	StateClosed   SessionState = "closed"
	StateLoading  SessionState = "loading"
	StateListed   SessionState = "listed"
	StateCompared SessionState = "compared"
	StateError    SessionState = "error"
)

// maxSelected bounds the comparison selection. Selecting a third version
// evicts the least recently selected one, keeping a sliding window of two.
const maxSelected = 2

var (
	// ErrSessionClosed is returned for actions on a session that is not open.
	ErrSessionClosed = errors.New("history session is not open")
	// ErrSelectionIncomplete is returned when compare is triggered with
	// fewer than two versions selected.
	ErrSelectionIncomplete = errors.New("two versions must be selected to compare")
	// ErrRestoreInFlight rejects a duplicate restore submission while one is
	// still running.
	ErrRestoreInFlight = errors.New("a restore is already in progress")
)

// Session drives one user's history view for a single contract: open fetches
// the list, toggling builds a two-version selection, compare diffs the pair
// and restore appends a copy of an old snapshot. Selection and comparison
// state live only in memory and are discarded on Close.
type Session struct {
	service    *Service
	contractID uuid.UUID

	mu              sync.Mutex
	state           SessionState
	versions        []domain.ContractVersion
	selection       []uuid.UUID
	comparison      *Comparison
	restoreInFlight bool
	epoch           uint64
}

// NewSession creates a closed session for one contract.
func NewSession(service *Service, contractID uuid.UUID) *Session {
	return &Session{
		service:    service,
		contractID: contractID,
		state:      StateClosed,
	}
}

// Open fetches the version list from the store. Opening always re-fetches;
// nothing is cached across sessions. A listing failure leaves the session in
// a visible error state, retried by reopening.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.selection = nil
	s.comparison = nil
	epoch := s.epoch
	s.mu.Unlock()

	versions, err := s.service.ListVersions(ctx, s.contractID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		// Closed while the request was in flight; the stale result is
		// discarded rather than applied to a dismissed view.
		return nil
	}

	if err != nil {
		s.state = StateError
		s.versions = nil
		return err
	}

	s.versions = versions
	s.state = StateListed
	return nil
}

// Toggle flips a version in or out of the comparison selection. A third
// selection evicts the oldest of the two already held.
func (s *Session) Toggle(versionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateListed && s.state != StateCompared {
		return ErrSessionClosed
	}
	if !s.knownVersionLocked(versionID) {
		return domain.ErrVersionNotFound
	}

	// Any selection change invalidates a rendered comparison.
	s.comparison = nil
	s.state = StateListed

	for i, selected := range s.selection {
		if selected == versionID {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
			return nil
		}
	}

	s.selection = append(s.selection, versionID)
	if len(s.selection) > maxSelected {
		s.selection = s.selection[len(s.selection)-maxSelected:]
	}
	return nil
}

// Compare diffs the two selected versions, older side first regardless of
// selection order. The result stays rendered until the selection changes or
// the session closes.
func (s *Session) Compare(ctx context.Context) (Comparison, error) {
	s.mu.Lock()
	if s.state != StateListed && s.state != StateCompared {
		s.mu.Unlock()
		return Comparison{}, ErrSessionClosed
	}
	if len(s.selection) != maxSelected {
		s.mu.Unlock()
		return Comparison{}, ErrSelectionIncomplete
	}

	first, okFirst := s.versionNumberLocked(s.selection[0])
	second, okSecond := s.versionNumberLocked(s.selection[1])
	epoch := s.epoch
	s.mu.Unlock()

	if !okFirst || !okSecond {
		return Comparison{}, domain.ErrVersionNotFound
	}

	comparison, err := s.service.Compare(ctx, s.contractID, first, second)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return Comparison{}, ErrSessionClosed
	}
	if err != nil {
		return Comparison{}, err
	}

	s.comparison = &comparison
	s.state = StateCompared
	return comparison, nil
}

// Restore appends a copy of the given version and refreshes the list, so the
// restored content becomes current. Only one restore may run at a time per
// session; duplicate submissions are rejected while one is in flight.
func (s *Session) Restore(ctx context.Context, versionNumber int, actor *uuid.UUID) (domain.ContractVersion, error) {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateLoading {
		s.mu.Unlock()
		return domain.ContractVersion{}, ErrSessionClosed
	}
	if s.restoreInFlight {
		s.mu.Unlock()
		return domain.ContractVersion{}, ErrRestoreInFlight
	}
	s.restoreInFlight = true
	epoch := s.epoch
	s.mu.Unlock()

	restored, err := s.service.Restore(ctx, s.contractID, versionNumber, actor)

	var versions []domain.ContractVersion
	var listErr error
	if err == nil {
		versions, listErr = s.service.ListVersions(ctx, s.contractID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreInFlight = false

	if s.epoch != epoch {
		return domain.ContractVersion{}, ErrSessionClosed
	}
	if err != nil {
		// Existing versions are untouched on failure; the pre-failure list
		// stays visible.
		return domain.ContractVersion{}, err
	}
	if listErr != nil {
		s.state = StateError
		return restored, listErr
	}

	s.versions = versions
	s.selection = nil
	s.comparison = nil
	s.state = StateListed
	return restored, nil
}

// Close discards all in-memory state. In-flight requests resolving after
// Close are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = StateClosed
	s.versions = nil
	s.selection = nil
	s.comparison = nil
	s.restoreInFlight = false
}

// State reports the session phase.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Versions returns the listed versions, newest first.
func (s *Session) Versions() []domain.ContractVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ContractVersion, len(s.versions))
	copy(out, s.versions)
	return out
}

// Selected returns the selected version ids in selection order.
func (s *Session) Selected() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.selection))
	copy(out, s.selection)
	return out
}

func (s *Session) knownVersionLocked(versionID uuid.UUID) bool {
	for _, version := range s.versions {
		if version.ID == versionID {
			return true
		}
	}
	return false
}

func (s *Session) versionNumberLocked(versionID uuid.UUID) (int, bool) {
	for _, version := range s.versions {
		if version.ID == versionID {
			return version.VersionNumber, true
		}
	}
	return 0, false
}
