package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sitewise/contractvault/internal/domain"
	"github.com/sitewise/contractvault/internal/repository"
)

// stubVersionRepository is an in-memory append-only store with the same
// numbering contract as the Postgres repository.
type stubVersionRepository struct {
	mu       sync.Mutex
	versions map[uuid.UUID][]domain.ContractVersion // ascending per contract

	createGate    chan struct{} // when set, Create blocks until the gate closes
	createEntered chan struct{} // when set, Create signals on entry
	listGate      chan struct{} // when set, ListByContract blocks until the gate closes
	createErr     error
	listErr       error
}

var _ repository.ContractVersionRepository = (*stubVersionRepository)(nil)

func newStubVersionRepository() *stubVersionRepository {
	return &stubVersionRepository{versions: map[uuid.UUID][]domain.ContractVersion{}}
}

func (s *stubVersionRepository) Create(ctx context.Context, draft domain.NewVersion) (domain.ContractVersion, error) {
	if s.createEntered != nil {
		s.createEntered <- struct{}{}
	}
	if s.createGate != nil {
		<-s.createGate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return domain.ContractVersion{}, s.createErr
	}

	existing := s.versions[draft.ContractID]
	next := 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].VersionNumber + 1
	}

	version := domain.ContractVersion{
		ID:             uuid.New(),
		ContractID:     draft.ContractID,
		VersionNumber:  next,
		Content:        draft.Content,
		ChangesSummary: draft.SummaryOrDefault(),
		CreatedBy:      draft.CreatedBy,
		CreatedAt:      time.Now(),
	}
	s.versions[draft.ContractID] = append(existing, version)
	return version, nil
}

func (s *stubVersionRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.ContractVersion, error) {
	if s.listGate != nil {
		<-s.listGate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	ascending := s.versions[contractID]
	descending := make([]domain.ContractVersion, len(ascending))
	for i, version := range ascending {
		descending[len(ascending)-1-i] = version
	}
	return descending, nil
}

func (s *stubVersionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.ContractVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, versions := range s.versions {
		for _, version := range versions {
			if version.ID == id {
				return version, nil
			}
		}
	}
	return domain.ContractVersion{}, domain.ErrVersionNotFound
}

func (s *stubVersionRepository) GetByNumber(ctx context.Context, contractID uuid.UUID, number int) (domain.ContractVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, version := range s.versions[contractID] {
		if version.VersionNumber == number {
			return version, nil
		}
	}
	return domain.ContractVersion{}, domain.ErrVersionNotFound
}

func newTestService(repo repository.ContractVersionRepository) *Service {
	return NewService(repo, nil)
}

func TestCreateVersionMonotonicNumbering(t *testing.T) {
	repo := newStubVersionRepository()
	service := newTestService(repo)
	contractID := uuid.New()

	for i := 1; i <= 5; i++ {
		version, err := service.CreateVersion(context.Background(), contractID, "draft body\n", "", nil)
		if err != nil {
			t.Fatalf("unexpected error creating version %d: %v", i, err)
		}
		if version.VersionNumber != i {
			t.Fatalf("expected version number %d, got %d", i, version.VersionNumber)
		}
	}
}

func TestCreateVersionDefaultSummary(t *testing.T) {
	repo := newStubVersionRepository()
	service := newTestService(repo)

	version, err := service.CreateVersion(context.Background(), uuid.New(), "body\n", "  ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version.ChangesSummary != domain.DefaultChangesSummary {
		t.Fatalf("expected default summary, got %q", version.ChangesSummary)
	}
}

func TestCreateVersionRejectsEmptyContent(t *testing.T) {
	repo := newStubVersionRepository()
	service := newTestService(repo)
	contractID := uuid.New()

	_, err := service.CreateVersion(context.Background(), contractID, "  \n", "", nil)
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	stored, err := repo.ListByContract(context.Background(), contractID)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected no rows written after rejected create, got %d", len(stored))
	}
}

func TestListVersionsNewestFirst(t *testing.T) {
	repo := newStubVersionRepository()
	service := newTestService(repo)
	contractID := uuid.New()

	texts := []string{"v1\n", "v1\nplus more\n", "v1\nplus more\nplus final\n"}
	for _, text := range texts {
		if _, err := service.CreateVersion(context.Background(), contractID, text, "", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	versions, err := service.ListVersions(context.Background(), contractID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(versions))
	}
	for i, expected := range []int{3, 2, 1} {
		if versions[i].VersionNumber != expected {
			t.Errorf("position %d: expected version %d, got %d", i, expected, versions[i].VersionNumber)
		}
	}
}

func TestListVersionsEmptyContract(t *testing.T) {
	service := newTestService(newStubVersionRepository())

	versions, err := service.ListVersions(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected empty list for unknown contract, got error: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected empty list, got %d versions", len(versions))
	}
}

func TestRestoreIsAdditive(t *testing.T) {
	repo := newStubVersionRepository()
	service := newTestService(repo)
	contractID := uuid.New()

	texts := []string{"v1\n", "v1\nplus more\n", "v1\nplus more\nplus final\n"}
	for _, text := range texts {
		if _, err := service.CreateVersion(context.Background(), contractID, text, "", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	original, err := repo.GetByNumber(context.Background(), contractID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored, err := service.Restore(context.Background(), contractID, 1, nil)
	if err != nil {
		t.Fatalf("unexpected restore error: %v", err)
	}
	if restored.VersionNumber != 4 {
		t.Fatalf("expected restore to create version 4, got %d", restored.VersionNumber)
	}
	if restored.Content.Text != "v1\n" {
		t.Fatalf("expected restored content to equal version 1, got %q", restored.Content.Text)
	}
	if restored.ChangesSummary != "Restored from version 1" {
		t.Fatalf("unexpected restore summary: %q", restored.ChangesSummary)
	}

	// The restored-from row is untouched.
	after, err := repo.GetByNumber(context.Background(), contractID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.ID != original.ID || after.Content.Text != original.Content.Text || !after.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("version 1 changed after restore: before %+v after %+v", original, after)
	}

	versions, err := service.ListVersions(context.Background(), contractID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 4 {
		t.Fatalf("expected 4 versions after restore, got %d", len(versions))
	}
}

func TestRestoreCurrentVersionRefused(t *testing.T) {
	repo := newStubVersionRepository()
	service := newTestService(repo)
	contractID := uuid.New()

	for _, text := range []string{"v1\n", "v2\n"} {
		if _, err := service.CreateVersion(context.Background(), contractID, text, "", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := service.Restore(context.Background(), contractID, 2, nil); !errors.Is(err, domain.ErrRestoreCurrentVersion) {
		t.Fatalf("expected ErrRestoreCurrentVersion, got %v", err)
	}
}

func TestRestoreUnknownVersion(t *testing.T) {
	service := newTestService(newStubVersionRepository())

	if _, err := service.Restore(context.Background(), uuid.New(), 7, nil); !errors.Is(err, domain.ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestCompareOrdersByVersionNumber(t *testing.T) {
	repo := newStubVersionRepository()
	service := newTestService(repo)
	contractID := uuid.New()

	texts := []string{"v1\n", "v1\nplus more\n", "v1\nplus more\nplus final\n"}
	for _, text := range texts {
		if _, err := service.CreateVersion(context.Background(), contractID, text, "", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Selection order is newest-then-oldest; the diff must still treat the
	// lower number as the older side.
	comparison, err := service.Compare(context.Background(), contractID, 3, 1)
	if err != nil {
		t.Fatalf("unexpected compare error: %v", err)
	}

	if comparison.Older.VersionNumber != 1 || comparison.Newer.VersionNumber != 3 {
		t.Fatalf("expected older=1 newer=3, got older=%d newer=%d", comparison.Older.VersionNumber, comparison.Newer.VersionNumber)
	}

	addedLines := 0
	for _, change := range comparison.Changes {
		switch change.Kind {
		case domain.ChangeRemoved:
			t.Errorf("unexpected removed change: %+v", change)
		case domain.ChangeAdded:
			addedLines += countLines(change.Value)
		}
	}
	if addedLines != 2 {
		t.Fatalf("expected 2 added lines comparing versions 1 and 3, got %d", addedLines)
	}

	if comparison.Unified == "" {
		t.Fatal("expected unified diff output")
	}
}

func TestCompareIdenticalVersions(t *testing.T) {
	repo := newStubVersionRepository()
	service := newTestService(repo)
	contractID := uuid.New()

	if _, err := service.CreateVersion(context.Background(), contractID, "body\n", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	comparison, err := service.Compare(context.Background(), contractID, 1, 1)
	if err != nil {
		t.Fatalf("unexpected compare error: %v", err)
	}
	if len(comparison.Changes) != 1 || comparison.Changes[0].Kind != domain.ChangeUnchanged {
		t.Fatalf("expected a single unchanged change, got %+v", comparison.Changes)
	}
}

func countLines(value string) int {
	count := 0
	for _, r := range value {
		if r == '\n' {
			count++
		}
	}
	if len(value) > 0 && value[len(value)-1] != '\n' {
		count++
	}
	return count
}
