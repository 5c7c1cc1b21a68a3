package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearbooks/backend/internal/middleware"
	"github.com/clearbooks/backend/internal/models"
	"github.com/clearbooks/backend/internal/services"
)

// Catalog handlers cover the reference data transactions point at: accounts,
// payees and classes.

type AccountHandler struct {
	service   *services.AccountService
	validator *services.ValidationHelper
}

func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type accountRequest struct {
	Name            string  `json:"name" validate:"required"`
	Number          string  `json:"number"`
	Type            string  `json:"type" validate:"required,oneof=asset liability equity revenue expense"`
	SubType         string  `json:"subType" validate:"omitempty,oneof=bank cash fixed_asset credit_card other"`
	Description     string  `json:"description"`
	ParentAccountID *string `json:"parentAccountId"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, validator *services.ValidationHelper, req any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := validator.ValidateStruct(req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

// List returns the organization's chart of accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	accounts, err := h.service.GetAccounts(r.Context(), organizationID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"accounts": accounts})
}

// Create adds one account to the chart.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req accountRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	account, err := h.service.CreateAccount(r.Context(), models.Account{
		Name:            req.Name,
		Number:          req.Number,
		Type:            models.AccountType(req.Type),
		SubType:         models.AccountSubType(req.SubType),
		Description:     req.Description,
		ParentAccountID: req.ParentAccountID,
		OrganizationID:  organizationID,
	})
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
}

// Update edits an account's fields. Its type is fixed at creation.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req accountRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	account := models.Account{
		ID:              chi.URLParam(r, "id"),
		Name:            req.Name,
		Number:          req.Number,
		SubType:         models.AccountSubType(req.SubType),
		Description:     req.Description,
		ParentAccountID: req.ParentAccountID,
		OrganizationID:  organizationID,
	}
	if err := h.service.UpdateAccount(r.Context(), account); err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			services.SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
			return
		}
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

type PayeeHandler struct {
	service   *services.PayeeService
	validator *services.ValidationHelper
}

func NewPayeeHandler(service *services.PayeeService) *PayeeHandler {
	return &PayeeHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type payeeRequest struct {
	Name         string  `json:"name" validate:"required"`
	Address1     string  `json:"address1"`
	Address2     string  `json:"address2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email" validate:"omitempty,email"`
	IsW9Vendor   bool    `json:"isW9Vendor"`
	W9Attachment *string `json:"w9Attachment"`
}

func (h *PayeeHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	payees, err := h.service.GetPayees(r.Context(), organizationID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"payees": payees})
}

func (h *PayeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req payeeRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	payee, err := h.service.CreatePayee(r.Context(), models.Payee{
		Name:           req.Name,
		Address1:       req.Address1,
		Address2:       req.Address2,
		City:           req.City,
		State:          req.State,
		Zip:            req.Zip,
		Phone:          req.Phone,
		Email:          req.Email,
		IsW9Vendor:     req.IsW9Vendor,
		W9Attachment:   req.W9Attachment,
		OrganizationID: organizationID,
	})
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(payee)
}

func (h *PayeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req payeeRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	payee := models.Payee{
		ID:             chi.URLParam(r, "id"),
		Name:           req.Name,
		Address1:       req.Address1,
		Address2:       req.Address2,
		City:           req.City,
		State:          req.State,
		Zip:            req.Zip,
		Phone:          req.Phone,
		Email:          req.Email,
		IsW9Vendor:     req.IsW9Vendor,
		W9Attachment:   req.W9Attachment,
		OrganizationID: organizationID,
	}
	if err := h.service.UpdatePayee(r.Context(), payee); err != nil {
		if errors.Is(err, services.ErrPayeeNotFound) {
			services.SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
			return
		}
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

type ClassHandler struct {
	service   *services.ClassService
	validator *services.ValidationHelper
}

func NewClassHandler(service *services.ClassService) *ClassHandler {
	return &ClassHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type classRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	classes, err := h.service.GetClasses(r.Context(), organizationID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"classes": classes})
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req classRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	class, err := h.service.CreateClass(r.Context(), models.Class{
		Name:           req.Name,
		Description:    req.Description,
		OrganizationID: organizationID,
	})
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(class)
}

func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := middleware.OrganizationID(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req classRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	class := models.Class{
		ID:             chi.URLParam(r, "id"),
		Name:           req.Name,
		Description:    req.Description,
		OrganizationID: organizationID,
	}
	if err := h.service.UpdateClass(r.Context(), class); err != nil {
		if errors.Is(err, services.ErrClassNotFound) {
			services.SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
			return
		}
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}
