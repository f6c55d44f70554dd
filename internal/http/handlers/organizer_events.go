package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tricket/backend/internal/http/middleware"
	"tricket/backend/internal/models"
	"tricket/backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type eventRequest struct {
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	ShowTime    time.Time `json:"showTime" validate:"required"`
	Location    string    `json:"location" validate:"max=255"`
	IsPaidEvent bool      `json:"isPaidEvent"`
}

type eventPatchRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	ShowTime    *time.Time `json:"showTime"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
	IsPaidEvent *bool      `json:"isPaidEvent"`
}

type ticketRequest struct {
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description" validate:"max=2000"`
	Price           decimal.Decimal `json:"price"`
	RemainingAmount int             `json:"remainingAmount" validate:"gte=0"`
}

type ticketPatchRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=2000"`
	Price           *decimal.Decimal `json:"price"`
	RemainingAmount *int             `json:"remainingAmount" validate:"omitempty,gte=0"`
}

type datePromoRequest struct {
	Name            string          `json:"name" validate:"max=200"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        time.Time       `json:"startsAt" validate:"required"`
	EndsAt          time.Time       `json:"endsAt" validate:"required"`
}

type referralPromoRequest struct {
	Name            string          `json:"name" validate:"max=200"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

func (h *Handler) organizerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return id, true
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) handleOrganizerError(logger interface {
	Error(string, ...any)
	Warn(string, ...any)
}, w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrPromoNotFound),
		errors.Is(err, repository.ErrReferralPromoNotFound):
		logger.Warn(action, "status", "not_found", "error", err)
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrNotEventOwner):
		logger.Warn(action, "status", "forbidden", "error", err)
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error(action, "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	events, err := h.repo.ListEventsByOrganizer(ctx, organizerID)
	if err != nil {
		logger.Error("list_my_events", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("create_event", "status", "invalid_request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	event, err := h.repo.CreateEvent(ctx, organizerID, models.EventInput{
		Name:        req.Name,
		Description: req.Description,
		ShowTime:    req.ShowTime,
		Location:    req.Location,
		IsPaidEvent: req.IsPaidEvent,
	})
	if err != nil {
		logger.Error("create_event", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	logger.Info("create_event", "status", "ok", "event_id", event.ID)
	writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req eventPatchRequest
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

	event, err := h.repo.UpdateEvent(ctx, organizerID, eventID, models.EventPatch{
		Name:        req.Name,
		Description: req.Description,
		ShowTime:    req.ShowTime,
		Location:    req.Location,
		IsPaidEvent: req.IsPaidEvent,
	})
	if err != nil {
		h.handleOrganizerError(logger, w, "update_event", err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) ArchiveEvent(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.repo.ArchiveEvent(ctx, organizerID, eventID); err != nil {
		h.handleOrganizerError(logger, w, "archive_event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadEventBanner accepts a multipart image, stores it in S3 and saves the
// public URL on the event.
func (h *Handler) UploadEventBanner(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	if h.s3 == nil {
		writeError(w, http.StatusServiceUnavailable, "media storage is not configured")
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("banner")
	if err != nil {
		writeError(w, http.StatusBadRequest, "banner file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	url, err := h.s3.UploadBanner(ctx, header.Filename, contentType, file, header.Size)
	if err != nil {
		logger.Error("upload_banner", "status", "s3_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	event, err := h.repo.SetEventBanner(ctx, organizerID, eventID, url)
	if err != nil {
		h.handleOrganizerError(logger, w, "upload_banner", err)
		return
	}
	logger.Info("upload_banner", "status", "ok", "event_id", eventID)
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req ticketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil || req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	ticket, err := h.repo.CreateTicket(ctx, organizerID, eventID, models.TicketInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		RemainingAmount: req.RemainingAmount,
	})
	if err != nil {
		h.handleOrganizerError(logger, w, "create_ticket", err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	ticketID, err := urlID(r, "ticketId")
	if err != nil || ticketID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	var req ticketPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	ticket, err := h.repo.UpdateTicket(ctx, organizerID, eventID, ticketID, models.TicketPatch{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		RemainingAmount: req.RemainingAmount,
	})
	if err != nil {
		h.handleOrganizerError(logger, w, "update_ticket", err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) ArchiveTicket(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	ticketID, err := urlID(r, "ticketId")
	if err != nil || ticketID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.repo.ArchiveTicket(ctx, organizerID, eventID, ticketID); err != nil {
		h.handleOrganizerError(logger, w, "archive_ticket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListDatePromos(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	promos, err := h.repo.ListDatePromos(ctx, eventID)
	if err != nil {
		logger.Error("list_date_promos", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"promos": promos})
}

func (h *Handler) CreateDatePromo(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req datePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil || !validPercent(req.DiscountPercent) || !req.EndsAt.After(req.StartsAt) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	promo, err := h.repo.CreateDatePromo(ctx, organizerID, eventID, models.DatePromoInput{
		Name:            req.Name,
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	})
	if err != nil {
		h.handleOrganizerError(logger, w, "create_date_promo", err)
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

func (h *Handler) ArchiveDatePromo(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	promoID, err := urlID(r, "promoId")
	if err != nil || promoID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid promo id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.repo.ArchiveDatePromo(ctx, organizerID, eventID, promoID); err != nil {
		h.handleOrganizerError(logger, w, "archive_date_promo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListReferralPromos(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	promos, err := h.repo.ListReferralPromos(ctx, eventID)
	if err != nil {
		logger.Error("list_referral_promos", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"promos": promos})
}

func (h *Handler) CreateReferralPromo(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req referralPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil || !validPercent(req.DiscountPercent) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	promo, err := h.repo.CreateReferralPromo(ctx, organizerID, eventID, models.ReferralPromoInput{
		Name:            req.Name,
		DiscountPercent: req.DiscountPercent,
	})
	if err != nil {
		h.handleOrganizerError(logger, w, "create_referral_promo", err)
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

func (h *Handler) ArchiveReferralPromo(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	organizerID, ok := h.organizerID(w, r)
	if !ok {
		return
	}
	eventID, err := urlID(r, "id")
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	promoID, err := urlID(r, "promoId")
	if err != nil || promoID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid promo id")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.repo.ArchiveReferralPromo(ctx, organizerID, eventID, promoID); err != nil {
		h.handleOrganizerError(logger, w, "archive_referral_promo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(decimal.NewFromInt(100))
}
