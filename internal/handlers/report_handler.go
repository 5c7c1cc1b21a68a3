package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/clearbooks/backend/internal/middleware"
	"github.com/clearbooks/backend/internal/models"
	"github.com/clearbooks/backend/internal/reports"
	"github.com/clearbooks/backend/internal/services"
)

type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func sendReportError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrEmptyChartOfAccounts) {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
}

// BalanceSheet renders the balance sheet as of the asOf query parameter. With
// no asOf every entry counts, future-dated ones included.
func (h *ReportHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var asOf *time.Time
	if s := r.URL.Query().Get("asOf"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			services.SendErrorResponse(w, "Invalid asOf date, expected YYYY-MM-DD", http.StatusBadRequest, nil)
			return
		}
		asOf = &parsed
	}

	report, err := h.service.BalanceSheet(r.Context(), organizationID, asOf)
	if err != nil {
		sendReportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"report": report,
		"lines":  reports.Flatten(report.Accounts),
	})
}

// ProfitAndLoss renders the P&L for a preset or explicit date range,
// optionally filtered by class.
func (h *ReportHandler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	q := r.URL.Query()
	var dateRange models.DateRange
	if start, end := q.Get("startDate"), q.Get("endDate"); start != "" || end != "" {
		startDate, err := time.Parse("2006-01-02", start)
		if err != nil {
			services.SendErrorResponse(w, "Invalid startDate, expected YYYY-MM-DD", http.StatusBadRequest, nil)
			return
		}
		endDate, err := time.Parse("2006-01-02", end)
		if err != nil {
			services.SendErrorResponse(w, "Invalid endDate, expected YYYY-MM-DD", http.StatusBadRequest, nil)
			return
		}
		dateRange = models.DateRange{StartDate: startDate, EndDate: endDate}
	} else {
		preset := services.DateRangePreset(q.Get("preset"))
		if preset == "" {
			preset = services.PresetAll
		}
		dateRange = services.GetDateRange(preset)
	}

	report, err := h.service.ProfitAndLoss(r.Context(), organizationID, dateRange, q.Get("classId"))
	if err != nil {
		sendReportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"report": report,
		"lines":  reports.Flatten(report.Accounts),
	})
}
