package export

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Handler serves the version history workbook as a download:
//
//	GET /contracts/{contractId}/versions/export
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the download endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "contracts" || parts[2] != "versions" || parts[3] != "export" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	contractID, err := uuid.Parse(parts[1])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid contract id: %v", err), http.StatusBadRequest)
		return
	}

	workbook, err := h.service.HistoryWorkbook(r.Context(), contractID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() { _ = workbook.Close() }()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=contract-%s-versions.xlsx", contractID))
	if err := workbook.Write(w); err != nil {
		// Headers are already sent; nothing useful left to report to the client.
		return
	}
}
