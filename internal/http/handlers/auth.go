package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tricket/backend/internal/auth"
	"tricket/backend/internal/models"
	"tricket/backend/internal/repository"
)

type registerUserRequest struct {
	FirstName    string `json:"firstName" validate:"required,min=1,max=100"`
	LastName     string `json:"lastName" validate:"max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	Phone        string `json:"phone" validate:"max=32"`
	Address      string `json:"address" validate:"max=255"`
	ReferralCode string `json:"referralCode" validate:"max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerOrganizerRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"max=32"`
	Address  string `json:"address" validate:"max=255"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// referralCodeFor derives the stable referral code handed to a new user.
func referralCodeFor(firstName, email string) string {
	return base64.StdEncoding.EncodeToString([]byte(firstName + email))
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("register_user", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("register_user", "status", "invalid_request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("register_user", "status", "hash_error", "error", err)
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
		ReferrerCode: strings.TrimSpace(req.ReferralCode),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			logger.Warn("register_user", "status", "email_taken")
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, repository.ErrReferredUserNotFound):
			logger.Warn("register_user", "status", "referrer_not_found")
			writeError(w, http.StatusNotFound, err.Error())
		default:
			logger.Error("register_user", "status", "internal_error", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	token, err := auth.SignAccessToken(h.cfg.JWTSecret, user.ID, user.FirstName, user.Email, auth.RoleUser)
	if err != nil {
		logger.Error("register_user", "status", "token_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Info("register_user", "status", "ok", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	if !h.loginLimiter.Allow(r.RemoteAddr) {
		logger.Warn("login_user", "status", "rate_limited", "ip", r.RemoteAddr)
		writeError(w, http.StatusTooManyRequests, "too many attempts")
		return
	}

	var req loginRequest
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

	user, hash, err := h.repo.GetUserCredentials(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPassword(hash, req.Password) {
		logger.Warn("login_user", "status", "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	role := auth.RoleUser
	if user.IsAdmin {
		role = auth.RoleAdmin
	}
	token, err := auth.SignAccessToken(h.cfg.JWTSecret, user.ID, user.FirstName, user.Email, role)
	if err != nil {
		logger.Error("login_user", "status", "token_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Info("login_user", "status", "ok", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// LoginAdmin is the admin login: same credential table, but only accounts
// flagged as admin get a token.
func (h *Handler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	if !h.loginLimiter.Allow(r.RemoteAddr) {
		logger.Warn("login_admin", "status", "rate_limited", "ip", r.RemoteAddr)
		writeError(w, http.StatusTooManyRequests, "too many attempts")
		return
	}

	var req loginRequest
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

	user, hash, err := h.repo.GetUserCredentials(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPassword(hash, req.Password) || !user.IsAdmin {
		logger.Warn("login_admin", "status", "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.SignAccessToken(h.cfg.JWTSecret, user.ID, user.FirstName, user.Email, auth.RoleAdmin)
	if err != nil {
		logger.Error("login_admin", "status", "token_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Info("login_admin", "status", "ok", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) RegisterOrganizer(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	var req registerOrganizerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("register_organizer", "status", "invalid_request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("register_organizer", "status", "hash_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	organizer, err := h.repo.CreateOrganizer(ctx, models.RegisterOrganizerParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			logger.Warn("register_organizer", "status", "email_taken")
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		logger.Error("register_organizer", "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := auth.SignAccessToken(h.cfg.JWTSecret, organizer.ID, organizer.Name, organizer.Email, auth.RoleOrganizer)
	if err != nil {
		logger.Error("register_organizer", "status", "token_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Info("register_organizer", "status", "ok", "organizer_id", organizer.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: organizer})
}

func (h *Handler) LoginOrganizer(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	if !h.loginLimiter.Allow(r.RemoteAddr) {
		logger.Warn("login_organizer", "status", "rate_limited", "ip", r.RemoteAddr)
		writeError(w, http.StatusTooManyRequests, "too many attempts")
		return
	}

	var req loginRequest
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

	organizer, hash, err := h.repo.GetOrganizerCredentials(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPassword(hash, req.Password) {
		logger.Warn("login_organizer", "status", "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.SignAccessToken(h.cfg.JWTSecret, organizer.ID, organizer.Name, organizer.Email, auth.RoleOrganizer)
	if err != nil {
		logger.Error("login_organizer", "status", "token_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Info("login_organizer", "status", "ok", "organizer_id", organizer.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: organizer})
}
