package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tricket/backend/internal/models"
	"tricket/backend/internal/repository"

	"github.com/go-chi/chi/v5"
)

// ListEvents is the public event listing with name/location/date filters.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	filter := models.EventFilter{
		Name:     r.URL.Query().Get("name"),
		Location: r.URL.Query().Get("location"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 20),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	events, err := h.repo.ListEvents(ctx, filter)
	if err != nil {
		logger.Error("list_events", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events, "page": filter.Page})
}

// GetEvent returns a single event plus its tickets.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	detail, err := h.repo.GetEventDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Error("get_event", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListPaymentTypes returns the supported payment methods.
func (h *Handler) ListPaymentTypes(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	types, err := h.repo.ListPaymentTypes(ctx)
	if err != nil {
		logger.Error("list_payment_types", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"paymentTypes": types})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
