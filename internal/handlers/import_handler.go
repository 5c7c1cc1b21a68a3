package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/clearbooks/backend/internal/middleware"
	"github.com/clearbooks/backend/internal/quickbooks"
	"github.com/clearbooks/backend/internal/services"
)

// maxImportBytes caps an uploaded CSV; general-ledger exports run large.
const maxImportBytes = 20 << 20

type ImportHandler struct {
	service *services.ImportService
}

func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// readCSV authorizes the request and reads the raw CSV body.
func readCSV(w http.ResponseWriter, r *http.Request) (organizationID, csvData string, ok bool) {
	organizationID, found := middleware.OrganizationID(r.Context())
	if !found {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return "", "", false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		services.SendErrorResponse(w, "Failed to read request body", http.StatusBadRequest, nil)
		return "", "", false
	}
	if len(body) == 0 {
		services.SendErrorResponse(w, "Request body is empty", http.StatusBadRequest, nil)
		return "", "", false
	}
	return organizationID, string(body), true
}

// ImportAccounts imports a chart-of-accounts CSV export.
func (h *ImportHandler) ImportAccounts(w http.ResponseWriter, r *http.Request) {
	organizationID, csvData, ok := readCSV(w, r)
	if !ok {
		return
	}

	result, err := h.service.ImportAccounts(r.Context(), organizationID, csvData)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ImportPayees imports a vendor or customer CSV export.
func (h *ImportHandler) ImportPayees(w http.ResponseWriter, r *http.Request) {
	organizationID, csvData, ok := readCSV(w, r)
	if !ok {
		return
	}

	result, err := h.service.ImportPayees(r.Context(), organizationID, csvData)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ImportClasses imports a classes CSV export.
func (h *ImportHandler) ImportClasses(w http.ResponseWriter, r *http.Request) {
	organizationID, csvData, ok := readCSV(w, r)
	if !ok {
		return
	}

	result, err := h.service.ImportClasses(r.Context(), organizationID, csvData)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ImportLedger imports a general-ledger CSV export into transactions.
func (h *ImportHandler) ImportLedger(w http.ResponseWriter, r *http.Request) {
	organizationID, csvData, ok := readCSV(w, r)
	if !ok {
		return
	}

	result, err := h.service.ImportLedger(r.Context(), organizationID, csvData)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, quickbooks.ErrHeaderNotFound) || errors.Is(err, services.ErrEmptyChartOfAccounts) {
			status = http.StatusBadRequest
		}
		services.SendErrorResponse(w, err.Error(), status, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
