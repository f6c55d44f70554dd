package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tricket/backend/internal/http/middleware"
	"tricket/backend/internal/models"
	"tricket/backend/internal/repository"

	"github.com/jackc/pgx/v5"
)

type purchaseRequest struct {
	TicketID          int64  `json:"ticketId" validate:"required,gt=0"`
	Quantity          int    `json:"quantity" validate:"required,gte=1,lte=10"`
	PaymentTypeID     int64  `json:"paymentTypeId" validate:"required,gt=0"`
	DatePromoID       *int64 `json:"datePromoId" validate:"omitempty,gt=0"`
	ReferralCode      string `json:"referralCode" validate:"max=255"`
	ReferralPromoID   *int64 `json:"referralPromoId" validate:"omitempty,gt=0"`
	UsePoints         bool   `json:"usePoints"`
	UseRegisterCoupon bool   `json:"useRegisterCoupon"`
}

// CreatePurchase runs the purchase engine for one ticket line.
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("create_purchase", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("create_purchase", "status", "invalid_request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	detail, err := h.repo.CreatePurchase(ctx, models.PurchaseParams{
		UserID:            userID,
		TicketID:          req.TicketID,
		Quantity:          req.Quantity,
		PaymentTypeID:     req.PaymentTypeID,
		DatePromoID:       req.DatePromoID,
		ReferralCode:      strings.TrimSpace(req.ReferralCode),
		ReferralPromoID:   req.ReferralPromoID,
		UsePoints:         req.UsePoints,
		UseRegisterCoupon: req.UseRegisterCoupon,
	})
	if err != nil {
		h.handlePurchaseError(logger, w, "create_purchase", err)
		return
	}

	logger.Info("create_purchase", "status", "ok", "transaction_id", detail.Transaction.ID, "total", detail.Transaction.Total)
	writeJSON(w, http.StatusCreated, detail)
}

func (h *Handler) handlePurchaseError(logger interface {
	Error(string, ...any)
	Warn(string, ...any)
}, w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrPromoNotFound),
		errors.Is(err, repository.ErrReferralPromoNotFound),
		errors.Is(err, repository.ErrReferredUserNotFound),
		errors.Is(err, pgx.ErrNoRows):
		logger.Warn(action, "status", "not_found", "error", err)
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrPaymentTypeNotFound),
		errors.Is(err, repository.ErrQuantityOutOfRange),
		errors.Is(err, repository.ErrNotEnoughTickets):
		logger.Warn(action, "status", "invalid_request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(action, "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
