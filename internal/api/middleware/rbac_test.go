package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

func TestRBAC_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextRoles, domain.NewRoleSet(domain.RoleModerator))

	called := false
	handler := RBAC(domain.RoleModerator, domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextRoles, domain.NewRoleSet(domain.RoleUser))

	handler := RBAC(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	e.HTTPErrorHandler(err, c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequire_EmptyRoleSet(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/energy-objects", nil), httptest.NewRecorder())
	c.Set(ContextRoles, domain.RoleSet{})
	called := false
	err := Require(domain.CapViewObjects)(func(echo.Context) error {
		called = true
		return nil
	})(c)
	if err != nil || !called {
		t.Fatalf("expected a signed-in account without roles to view objects, got %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/energy-objects/create", nil), httptest.NewRecorder())
	c.Set(ContextRoles, domain.RoleSet{})
	err = Require(domain.CapEditObjects)(func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequire_MissingClaims(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Require(domain.CapViewObjects)(func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRBAC_MissingClaims(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	handler := RBAC(domain.RoleUser)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequire_PolicyTable(t *testing.T) {
	cases := []struct {
		capability domain.Capability
		roles      domain.RoleSet
		allowed    bool
	}{
		{domain.CapViewObjects, domain.NewRoleSet(domain.RoleUser), true},
		{domain.CapViewObjects, domain.RoleSet{}, true},
		{domain.CapEditObjects, domain.RoleSet{}, false},
		{domain.CapEditObjects, domain.NewRoleSet(domain.RoleUser), false},
		{domain.CapEditObjects, domain.NewRoleSet(domain.RoleModerator), true},
		{domain.CapEditObjects, domain.NewRoleSet(domain.RoleAdmin), true},
		{domain.CapViewStatistics, domain.NewRoleSet(domain.RoleModerator), false},
		{domain.CapViewStatistics, domain.NewRoleSet(domain.RoleAdmin), true},
		{domain.CapManageUsers, domain.NewRoleSet(domain.RoleUser, domain.RoleModerator), false},
		{domain.CapManageUsers, domain.NewRoleSet(domain.RoleAdmin), true},
	}

	e := echo.New()
	for _, tc := range cases {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(ContextRoles, tc.roles)

		called := false
		err := Require(tc.capability)(func(echo.Context) error {
			called = true
			return nil
		})(c)

		if called != tc.allowed {
			t.Fatalf("%s with %v: allowed=%v, want %v (err=%v)", tc.capability, tc.roles.Strings(), called, tc.allowed, err)
		}
	}
}
