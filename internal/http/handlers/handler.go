package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tricket/backend/internal/config"
	authmw "tricket/backend/internal/http/middleware"
	"tricket/backend/internal/integrations"
	"tricket/backend/internal/rate"
	"tricket/backend/internal/repository"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	repo         *repository.Repository
	s3           *integrations.S3Client
	cfg          *config.Config
	logger       *slog.Logger
	validator    *validator.Validate
	loginLimiter *rate.KeyLimiter
}

func New(repo *repository.Repository, s3 *integrations.S3Client, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		repo:         repo,
		s3:           s3,
		cfg:          cfg,
		logger:       logger,
		validator:    validator.New(),
		loginLimiter: rate.NewKeyLimiter(1, 5),
	}
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

func (h *Handler) loggerForRequest(r *http.Request) *slog.Logger {
	logger := h.logger
	if logger == nil {
		return slog.Default()
	}
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if userID, ok := authmw.UserIDFromContext(r.Context()); ok {
		logger = logger.With("user_id", userID)
	}
	return logger
}
