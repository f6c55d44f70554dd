package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tricket/backend/internal/auth"
	"tricket/backend/internal/config"
	"tricket/backend/internal/db"
	"tricket/backend/internal/http/handlers"
	"tricket/backend/internal/http/middleware"
	"tricket/backend/internal/integrations"
	"tricket/backend/internal/logging"
	"tricket/backend/internal/repository"
	"tricket/backend/migrations"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	defer func() {
		_ = cleanup()
	}()
	logger = logger.With("service", "api")
	slog.SetDefault(logger)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db error", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Error("migration error", "error", err)
		os.Exit(1)
	}

	repo := repository.New(pool)

	var s3Client *integrations.S3Client
	if cfg.S3.Bucket != "" {
		s3Client, err = integrations.NewS3(ctx, cfg.S3)
		if err != nil {
			logger.Error("s3 error", "error", err)
			os.Exit(1)
		}
	}

	h := handlers.New(repo, s3Client, cfg, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/auth/user/register", h.RegisterUser)
	r.Post("/auth/user/login", h.LoginUser)
	r.Post("/auth/organizer/register", h.RegisterOrganizer)
	r.Post("/auth/organizer/login", h.LoginOrganizer)
	r.Post("/auth/admin/login", h.LoginAdmin)

	r.Get("/payment-types", h.ListPaymentTypes)
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)
	r.Get("/events/{id}/promos/date", h.ListDatePromos)
	r.Get("/events/{id}/promos/referral", h.ListReferralPromos)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Get("/me", h.Me)
		r.Post("/transactions", h.CreatePurchase)
		r.Get("/transactions", h.ListMyTransactions)
		r.Get("/transactions/{id}", h.GetMyTransaction)
		r.Get("/transactions/{id}/items", h.ListMyTransactionItems)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Use(middleware.RequireRole(auth.RoleOrganizer))
		r.Get("/organizer/events", h.ListMyEvents)
		r.Post("/organizer/events", h.CreateEvent)
		r.Patch("/organizer/events/{id}", h.UpdateEvent)
		r.Delete("/organizer/events/{id}", h.ArchiveEvent)
		r.Post("/organizer/events/{id}/banner", h.UploadEventBanner)
		r.Post("/organizer/events/{id}/tickets", h.CreateTicket)
		r.Patch("/organizer/events/{id}/tickets/{ticketId}", h.UpdateTicket)
		r.Delete("/organizer/events/{id}/tickets/{ticketId}", h.ArchiveTicket)
		r.Post("/organizer/events/{id}/promos/date", h.CreateDatePromo)
		r.Delete("/organizer/events/{id}/promos/date/{promoId}", h.ArchiveDatePromo)
		r.Post("/organizer/events/{id}/promos/referral", h.CreateReferralPromo)
		r.Delete("/organizer/events/{id}/promos/referral/{promoId}", h.ArchiveReferralPromo)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/admin/users", h.ListAdminUsers)
		r.Post("/admin/users", h.CreateAdminUser)
		r.Get("/admin/users/{id}", h.GetAdminUser)
		r.Patch("/admin/users/{id}", h.UpdateAdminUser)
		r.Delete("/admin/users/{id}", h.ArchiveAdminUser)
		r.Get("/admin/organizers", h.ListAdminOrganizers)
		r.Get("/admin/organizers/{id}", h.GetAdminOrganizer)
		r.Patch("/admin/organizers/{id}", h.UpdateAdminOrganizer)
		r.Delete("/admin/organizers/{id}", h.ArchiveAdminOrganizer)
		r.Patch("/admin/transactions/{id}", h.UpdateAdminTransaction)
		r.Delete("/admin/transactions/{id}", h.ArchiveAdminTransaction)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.Info("api_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutdown", "service", "api")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
