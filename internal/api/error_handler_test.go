package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	ve := &domain.ValidationError{}
	ve.Add("name", "is required")

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest},
		{"object not found", fmt.Errorf("get: %w", domain.ErrEnergyObjectNotFound), http.StatusNotFound},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"validation", ve, http.StatusUnprocessableEntity},
		{"duplicate email", domain.ErrEmailTaken, http.StatusConflict},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := resolveError(tc.err, zerolog.Nop(), c)
			if code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, code)
			}
		})
	}
}

func TestHTTPErrorHandler_JSONEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/energy-objects/all", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("secret detail"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}

func TestHTTPErrorHandler_HTMLPages(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		code     int
		body     string
		location string
	}{
		{"unauthenticated redirects", echo.NewHTTPError(http.StatusUnauthorized).SetInternal(domain.ErrUnauthenticated), http.StatusSeeOther, "", "/login"},
		{"forbidden page", domain.ErrForbidden, http.StatusForbidden, "access_denied.html", ""},
		{"not found page", echo.ErrNotFound, http.StatusNotFound, "error.html", ""},
		{"unexpected page", errors.New("boom"), http.StatusInternalServerError, "error.html", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.Renderer = nameRenderer{}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/energy-objects", nil)
			req.Header.Set(echo.HeaderAccept, "text/html,application/xhtml+xml")
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("expected %s, got %s", tc.body, rec.Body.String())
			}
			if tc.location != "" && rec.Header().Get(echo.HeaderLocation) != tc.location {
				t.Fatalf("expected redirect to %s, got %q", tc.location, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestHTTPErrorHandler_NoRendererFallsBackToText(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/missing", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(echo.ErrNotFound, c)

	if rec.Code != http.StatusNotFound || rec.Body.String() != "Not Found" {
		t.Fatalf("expected plain 404, got %d %q", rec.Code, rec.Body.String())
	}
}
