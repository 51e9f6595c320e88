package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/api/handler"
	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/web"
)

// errorResponse is the canonical error envelope for JSON endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

type errorView struct {
	Status  int
	Message string
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Answers JSON clients with {"error": "<message>"} and browsers with a page.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if wantsJSON(c) {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		switch code {
		case http.StatusUnauthorized:
			_ = c.Redirect(http.StatusSeeOther, "/login")
			return
		case http.StatusForbidden:
			renderPage(c, code, "access_denied.html", "Access denied", nil, msg)
			return
		}
		renderPage(c, code, "error.html", http.StatusText(code), errorView{Status: code, Message: msg}, msg)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, auth middleware).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrEnergyObjectNotFound):
		return http.StatusNotFound, "energy object not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// wantsJSON reports whether the request targets a JSON endpoint.
func wantsJSON(c echo.Context) bool {
	path := c.Request().URL.Path
	if path == "/energy-objects/all" || strings.HasPrefix(path, "/health") {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// renderPage falls back to plain text when no template can be rendered.
func renderPage(c echo.Context, code int, name, title string, data any, msg string) {
	err := c.Render(code, name, web.Page{
		Title:  title,
		Viewer: handler.ViewerFrom(c),
		Data:   data,
	})
	if err != nil {
		_ = c.String(code, msg)
	}
}
