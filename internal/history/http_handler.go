package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sitewise/contractvault/internal/auth"
	"github.com/sitewise/contractvault/internal/domain"
)

// Handler exposes the version history workflow over JSON HTTP:
//
//	GET  /contracts/{contractId}/versions
//	POST /contracts/{contractId}/versions
//	GET  /contracts/{contractId}/versions/compare?from=N&to=M
//	POST /contracts/{contractId}/versions/{n}/restore
//	GET  /contracts/{contractId}/versions/export   (delegated)
//	GET  /versions/{versionId}
//
// There is no update or delete endpoint; the store is append-only.
type Handler struct {
	service *Service
	export  http.Handler
}

// NewHTTPHandler wraps the service with the REST endpoints. The export
// handler may be nil when spreadsheet export is disabled.
func NewHTTPHandler(service *Service, export http.Handler) http.Handler {
	return &Handler{service: service, export: export}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2 && parts[0] == "versions" && r.Method == http.MethodGet:
		h.handleGetVersion(w, r, parts[1])
	case len(parts) >= 3 && parts[0] == "contracts" && parts[2] == "versions":
		h.serveContractVersions(w, r, parts)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) serveContractVersions(w http.ResponseWriter, r *http.Request, parts []string) {
	contractID, err := uuid.Parse(parts[1])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid contract id: %v", err), http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 3 && r.Method == http.MethodGet:
		h.handleList(w, r, contractID)
	case len(parts) == 3 && r.Method == http.MethodPost:
		h.handleCreate(w, r, contractID)
	case len(parts) == 4 && parts[3] == "compare" && r.Method == http.MethodGet:
		h.handleCompare(w, r, contractID)
	case len(parts) == 4 && parts[3] == "export" && h.export != nil && r.Method == http.MethodGet:
		h.export.ServeHTTP(w, r)
	case len(parts) == 5 && parts[4] == "restore" && r.Method == http.MethodPost:
		h.handleRestore(w, r, contractID, parts[3])
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, contractID uuid.UUID) {
	versions, err := h.service.ListVersions(r.Context(), contractID)
	if err != nil {
		writeVersionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, versions)
}

type createVersionPayload struct {
	Content string `json:"content"`
	Summary string `json:"summary"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request, contractID uuid.UUID) {
	var payload createVersionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	version, err := h.service.CreateVersion(r.Context(), contractID, payload.Content, payload.Summary, actorFromRequest(r))
	if err != nil {
		writeVersionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, version)
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request, contractID uuid.UUID) {
	from, err := strconv.Atoi(r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "from must be a version number", http.StatusBadRequest)
		return
	}
	to, err := strconv.Atoi(r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "to must be a version number", http.StatusBadRequest)
		return
	}

	comparison, err := h.service.Compare(r.Context(), contractID, from, to)
	if err != nil {
		writeVersionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comparison)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request, contractID uuid.UUID, rawNumber string) {
	number, err := strconv.Atoi(rawNumber)
	if err != nil || number < 1 {
		http.Error(w, "invalid version number", http.StatusBadRequest)
		return
	}

	restored, err := h.service.Restore(r.Context(), contractID, number, actorFromRequest(r))
	if err != nil {
		writeVersionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restored)
}

func (h *Handler) handleGetVersion(w http.ResponseWriter, r *http.Request, rawID string) {
	versionID, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid version id: %v", err), http.StatusBadRequest)
		return
	}

	version, err := h.service.GetVersion(r.Context(), versionID)
	if err != nil {
		writeVersionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, version)
}

func actorFromRequest(r *http.Request) *uuid.UUID {
	actor, ok := auth.ActorIDFromContext(r.Context())
	if !ok {
		return nil
	}
	return &actor
}

func writeVersionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrVersionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case domain.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrRestoreCurrentVersion):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
