package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tricket/backend/internal/http/middleware"
	"tricket/backend/internal/models"
	"tricket/backend/internal/repository"

	"github.com/go-chi/chi/v5"
)

// ListMyTransactions returns the caller's purchase history.
func (h *Handler) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	items, err := h.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		logger.Error("list_transactions", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": items})
}

// getOwnTransaction loads the transaction and enforces ownership.
func (h *Handler) getOwnTransaction(w http.ResponseWriter, r *http.Request) (models.Transaction, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return models.Transaction{}, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return models.Transaction{}, false
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	txn, err := h.repo.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return models.Transaction{}, false
		}
		h.loggerForRequest(r).Error("get_transaction", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return models.Transaction{}, false
	}
	if txn.UserID != userID {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return models.Transaction{}, false
	}
	return txn, true
}

func (h *Handler) GetMyTransaction(w http.ResponseWriter, r *http.Request) {
	txn, ok := h.getOwnTransaction(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *Handler) ListMyTransactionItems(w http.ResponseWriter, r *http.Request) {
	txn, ok := h.getOwnTransaction(w, r)
	if !ok {
		return
	}
	id := txn.ID

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	items, err := h.repo.ListTransactionItems(ctx, id)
	if err != nil {
		h.loggerForRequest(r).Error("list_transaction_items", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
