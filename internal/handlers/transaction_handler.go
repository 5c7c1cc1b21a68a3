package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/clearbooks/backend/internal/middleware"
	"github.com/clearbooks/backend/internal/models"
	"github.com/clearbooks/backend/internal/services"
)

type TransactionHandler struct {
	service   *services.LedgerService
	validator *services.ValidationHelper
}

func NewTransactionHandler(service *services.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type entryRequest struct {
	AccountID string          `json:"accountId" validate:"required"`
	PayeeID   *string         `json:"payeeId"`
	ClassID   *string         `json:"classId"`
	Number    string          `json:"number"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

type transactionRequest struct {
	Date            string         `json:"date" validate:"required"`
	TransactionType string         `json:"transactionType" validate:"required,oneof=journal_entry check deposit transfer expense invoice"`
	Description     string         `json:"description"`
	Attachments     *string        `json:"attachments"`
	Entries         []entryRequest `json:"entries" validate:"required,min=2,dive"`
}

// decodeTransaction decodes and validates a transaction payload, converting
// it to the service's input types.
func (h *TransactionHandler) decodeTransaction(w http.ResponseWriter, r *http.Request) (services.TransactionInput, []services.EntryInput, bool) {
	var req transactionRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return services.TransactionInput{}, nil, false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return services.TransactionInput{}, nil, false
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return services.TransactionInput{}, nil, false
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		services.SendErrorResponse(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest, nil)
		return services.TransactionInput{}, nil, false
	}

	input := services.TransactionInput{
		Date:            date,
		TransactionType: models.TransactionType(req.TransactionType),
		Description:     req.Description,
		Attachments:     req.Attachments,
	}
	entries := make([]services.EntryInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, services.EntryInput{
			AccountID: e.AccountID,
			PayeeID:   e.PayeeID,
			ClassID:   e.ClassID,
			Number:    e.Number,
			Debit:     e.Debit,
			Credit:    e.Credit,
			Memo:      e.Memo,
		})
	}
	return input, entries, true
}

// sendLedgerError maps service errors onto HTTP statuses.
func sendLedgerError(w http.ResponseWriter, err error) {
	var unbalanced *services.UnbalancedTransactionError
	var invalidSide *services.InvalidEntrySideError
	switch {
	case errors.Is(err, services.ErrTransactionNotFound):
		services.SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, services.ErrInsufficientEntries),
		errors.As(err, &unbalanced),
		errors.As(err, &invalidSide):
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
	default:
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
	}
}

// Create records a new transaction with its entries.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	input, entries, ok := h.decodeTransaction(w, r)
	if !ok {
		return
	}

	transaction, err := h.service.CreateTransactionWithEntries(r.Context(), organizationID, input, entries)
	if err != nil {
		sendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
}

// Update rewrites a transaction's header and entry set.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	transactionID := chi.URLParam(r, "id")

	input, entries, ok := h.decodeTransaction(w, r)
	if !ok {
		return
	}

	transaction, err := h.service.UpdateTransactionWithEntries(r.Context(), organizationID, transactionID, input, entries)
	if err != nil {
		sendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transaction)
}

// Delete removes a transaction and its entries.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	transactionID := chi.URLParam(r, "id")

	if err := h.service.DeleteTransaction(r.Context(), organizationID, transactionID); err != nil {
		sendLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get fetches one transaction with its entries.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	transactionID := chi.URLParam(r, "id")

	transaction, err := h.service.GetTransaction(r.Context(), organizationID, transactionID)
	if err != nil {
		sendLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transaction)
}

// List returns the organization's transactions, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), organizationID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"transactions": transactions,
	})
}
