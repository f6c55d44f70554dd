package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tricket/backend/internal/auth"
	"tricket/backend/internal/config"
	"tricket/backend/internal/http/middleware"
	"tricket/backend/internal/repository"

	"github.com/go-chi/chi/v5"
)

func newPurchaseTestRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(repository.New(nil), nil, cfg, logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Post("/transactions", handler.CreatePurchase)
	})

	token, err := auth.SignAccessToken(cfg.JWTSecret, 42, "Tester", "tester@test.local", auth.RoleUser)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return r, token
}

// TestCreatePurchaseRequiresAuth verifies create purchase requires auth behavior.
func TestCreatePurchaseRequiresAuth(t *testing.T) {
	r, _ := newPurchaseTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

// TestCreatePurchaseRejectsInvalidBody verifies create purchase rejects invalid body behavior.
func TestCreatePurchaseRejectsInvalidBody(t *testing.T) {
	r, token := newPurchaseTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing ticket", `{"quantity":1,"paymentTypeId":1}`},
		{"zero quantity", `{"ticketId":1,"quantity":0,"paymentTypeId":1}`},
		{"quantity over cap", `{"ticketId":1,"quantity":11,"paymentTypeId":1}`},
		{"missing payment type", `{"ticketId":1,"quantity":1}`},
		{"negative promo id", `{"ticketId":1,"quantity":1,"paymentTypeId":1,"datePromoId":-2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tc.body))
			req.Header.Set("Authorization", "Bearer "+token)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

// TestOrganizerRoutesRejectUserRole verifies organizer routes reject user role behavior.
func TestOrganizerRoutesRejectUserRole(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(repository.New(nil), nil, cfg, logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Use(middleware.RequireRole(auth.RoleOrganizer))
		r.Get("/organizer/events", handler.ListMyEvents)
	})

	token, err := auth.SignAccessToken(cfg.JWTSecret, 42, "Tester", "tester@test.local", auth.RoleUser)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/organizer/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}
