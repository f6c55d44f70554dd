package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tricket/backend/internal/auth"
	"tricket/backend/internal/models"
	"tricket/backend/internal/repository"

	"github.com/shopspring/decimal"
)

type adminUserPatchRequest struct {
	FirstName *string          `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string          `json:"lastName" validate:"omitempty,max=100"`
	Phone     *string          `json:"phone" validate:"omitempty,max=32"`
	Address   *string          `json:"address" validate:"omitempty,max=255"`
	Points    *decimal.Decimal `json:"points"`
}

type adminOrganizerPatchRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=150"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

type adminTransactionPatchRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=PAID UNPAID"`
}

func (h *Handler) handleAdminError(logger interface {
	Error(string, ...any)
	Warn(string, ...any)
}, w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrOrganizerNotFound),
		errors.Is(err, repository.ErrTransactionNotFound):
		logger.Warn(action, "status", "not_found", "error", err)
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrEmailTaken):
		logger.Warn(action, "status", "conflict", "error", err)
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(action, "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) ListAdminUsers(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	users, err := h.repo.ListUsers(ctx, queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		logger.Error("admin_list_users", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) GetAdminUser(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := urlID(r, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		h.handleAdminError(logger, w, "admin_get_user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateAdminUser creates an account directly, without the referral flow.
func (h *Handler) CreateAdminUser(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("admin_create_user", "status", "hash_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.repo.CreateUser(ctx, models.RegisterUserParams{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		ReferralCode: referralCodeFor(strings.TrimSpace(req.FirstName), email),
	})
	if err != nil {
		h.handleAdminError(logger, w, "admin_create_user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) UpdateAdminUser(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := urlID(r, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req adminUserPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Points != nil && req.Points.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	user, err := h.repo.UpdateUser(ctx, id, models.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		Points:    req.Points,
	})
	if err != nil {
		h.handleAdminError(logger, w, "admin_update_user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) ArchiveAdminUser(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := urlID(r, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.repo.ArchiveUser(ctx, id); err != nil {
		h.handleAdminError(logger, w, "admin_archive_user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAdminOrganizers(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	organizers, err := h.repo.ListOrganizers(ctx, queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		logger.Error("admin_list_organizers", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"organizers": organizers})
}

func (h *Handler) GetAdminOrganizer(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := urlID(r, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid organizer id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	organizer, err := h.repo.GetOrganizerByID(ctx, id)
	if err != nil {
		h.handleAdminError(logger, w, "admin_get_organizer", err)
		return
	}
	writeJSON(w, http.StatusOK, organizer)
}

func (h *Handler) UpdateAdminOrganizer(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := urlID(r, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid organizer id")
		return
	}

	var req adminOrganizerPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	organizer, err := h.repo.UpdateOrganizer(ctx, id, models.OrganizerPatch{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.handleAdminError(logger, w, "admin_update_organizer", err)
		return
	}
	writeJSON(w, http.StatusOK, organizer)
}

func (h *Handler) ArchiveAdminOrganizer(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := urlID(r, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid organizer id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.repo.ArchiveOrganizer(ctx, id); err != nil {
		h.handleAdminError(logger, w, "admin_archive_organizer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateAdminTransaction(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := urlID(r, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req adminTransactionPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	txn, err := h.repo.UpdateTransaction(ctx, id, models.TransactionPatch{Status: req.Status})
	if err != nil {
		h.handleAdminError(logger, w, "admin_update_transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *Handler) ArchiveAdminTransaction(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := urlID(r, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.repo.ArchiveTransaction(ctx, id); err != nil {
		h.handleAdminError(logger, w, "admin_archive_transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
