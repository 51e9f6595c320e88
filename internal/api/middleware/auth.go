package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

// Context keys set by Auth and Identify.
const (
	ContextClaims   = "claims"
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRoles    = "roles"
)

// Authenticator verifies session tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*ports.Claims, error)
}

// Auth requires a valid session token, taken from the session cookie or a
// Bearer Authorization header, and injects the claims into the context.
// A failing revocation store rejects the request.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := tokenFrom(c)
			if err != nil {
				return err
			}
			if token == "" {
				return unauthorized("missing session")
			}

			claims, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return unauthorized("invalid session")
				}
				return err
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

// Identify injects the claims when a valid session is present and lets
// anonymous requests through otherwise.
func Identify(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := tokenFrom(c)
			if err != nil || token == "" {
				return next(c)
			}
			if claims, err := auth.Authenticate(c.Request().Context(), token); err == nil {
				setClaims(c, claims)
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims injected by Auth or Identify, or nil.
func ClaimsFrom(c echo.Context) *ports.Claims {
	claims, _ := c.Get(ContextClaims).(*ports.Claims)
	return claims
}

func setClaims(c echo.Context, claims *ports.Claims) {
	c.Set(ContextClaims, claims)
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextRoles, claims.Roles)
}

func tokenFrom(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", unauthorized("invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value, nil
	}
	return "", nil
}

func unauthorized(msg string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, msg).SetInternal(domain.ErrUnauthenticated)
}
