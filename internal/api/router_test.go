package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/core/service"
	"github.com/energycompany/energy-registry/internal/infrastructure/db/memory"
)

type nameRenderer struct{}

func (nameRenderer) Render(w io.Writer, name string, _ interface{}, _ echo.Context) error {
	_, err := io.WriteString(w, name)
	return err
}

// newTestApp wires the application on in-memory stores with the demo seed
// and returns session tokens for the three demo accounts.
func newTestApp(t *testing.T) (*echo.Echo, map[string]string) {
	t.Helper()
	e, sessions, _ := newTestAppWithAuth(t)
	return e, sessions
}

func newTestAppWithAuth(t *testing.T) (*echo.Echo, map[string]string, *service.AuthService) {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()

	objects := memory.NewEnergyObjectRepository()
	users := memory.NewUserRepository()
	tokens := memory.NewTokenStore()

	seed := service.NewBootstrap(objects, users, service.SeedPasswords{
		Admin: "admin123", Moderator: "mod123", User: "user123",
	}, log)
	if err := seed.Run(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	auth := service.NewAuthService(users, tokens, "secret", time.Hour, log)
	e := echo.New()
	NewRouter(e, Dependencies{
		Objects:     service.NewEnergyObjectService(objects, log),
		Auth:        auth,
		Users:       service.NewUserService(users, tokens, time.Hour, log),
		Renderer:    nameRenderer{},
		FlashSecret: "secret",
		Log:         log,
	})

	sessions := map[string]string{}
	for name, password := range map[string]string{"admin": "admin123", "moderator": "mod123", "user": "user123"} {
		s, _, err := auth.Login(ctx, name, password)
		if err != nil {
			t.Fatalf("login %s: %v", name, err)
		}
		sessions[name] = s.Token
	}
	return e, sessions, auth
}

func TestRouter_AccessPolicy(t *testing.T) {
	e, sessions := newTestApp(t)

	cases := []struct {
		as     string
		method string
		path   string
		status int
		body   string
	}{
		{"", http.MethodGet, "/", http.StatusOK, "home.html"},
		{"", http.MethodGet, "/energy-objects", http.StatusSeeOther, ""},
		{"", http.MethodGet, "/energy-objects/all", http.StatusUnauthorized, ""},
		{"user", http.MethodGet, "/energy-objects", http.StatusOK, "objects.html"},
		{"user", http.MethodGet, "/energy-objects/1", http.StatusOK, "object_detail.html"},
		{"user", http.MethodGet, "/energy-objects?page=1000000000000000000&size=10", http.StatusOK, "objects.html"},
		{"user", http.MethodGet, "/energy-objects?sortBy=COMMISSIONING_YEAR&direction=desc", http.StatusOK, "objects.html"},
		{"user", http.MethodGet, "/energy-objects/create", http.StatusForbidden, "access_denied.html"},
		{"user", http.MethodGet, "/energy-objects/statistics", http.StatusForbidden, "access_denied.html"},
		{"user", http.MethodGet, "/admin/users", http.StatusForbidden, "access_denied.html"},
		{"moderator", http.MethodGet, "/energy-objects/create", http.StatusOK, "object_form.html"},
		{"moderator", http.MethodGet, "/energy-objects/edit/1", http.StatusOK, "object_form.html"},
		{"moderator", http.MethodGet, "/energy-objects/statistics", http.StatusForbidden, "access_denied.html"},
		{"admin", http.MethodGet, "/energy-objects/statistics", http.StatusOK, "statistics.html"},
		{"admin", http.MethodGet, "/admin/users", http.StatusOK, "users.html"},
		{"admin", http.MethodGet, "/profile", http.StatusOK, "profile.html"},
	}

	for _, tc := range cases {
		t.Run(tc.as+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.as != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+sessions[tc.as])
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rec.Code, rec.Body.String())
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("expected %s, got %s", tc.body, rec.Body.String())
			}
		})
	}
}

func TestRouter_AnonymousRedirectsToLogin(t *testing.T) {
	e, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRouter_RoleChangeRevokesSessions(t *testing.T) {
	e, sessions := newTestApp(t)

	// The seeded "user" account has id 3.
	req := httptest.NewRequest(http.MethodPost, "/admin/users/update-roles/3", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+sessions["admin"])
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/energy-objects/all", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+sessions["user"])
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked session to get 401, got %d", rec.Code)
	}
}

func TestRouter_AccountWithoutRoles(t *testing.T) {
	e, sessions, auth := newTestAppWithAuth(t)

	// An empty role submission strips every role from the seeded "user" (id 3).
	req := httptest.NewRequest(http.MethodPost, "/admin/users/update-roles/3", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+sessions["admin"])
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	// Signing in again right away must yield a working session.
	session, _, err := auth.Login(context.Background(), "user", "user123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/energy-objects", http.StatusOK, "objects.html"},
		{"/energy-objects/1", http.StatusOK, "object_detail.html"},
		{"/energy-objects/all", http.StatusOK, ""},
		{"/profile", http.StatusOK, "profile.html"},
		{"/energy-objects/create", http.StatusForbidden, "access_denied.html"},
		{"/energy-objects/statistics", http.StatusForbidden, "access_denied.html"},
		{"/admin/users", http.StatusForbidden, "access_denied.html"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+session.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.path, tc.status, rec.Code, rec.Body.String())
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%s: expected %s, got %s", tc.path, tc.body, rec.Body.String())
		}
	}
}
