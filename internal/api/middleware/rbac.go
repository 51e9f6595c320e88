package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

// RBAC allows the request when the caller holds at least one of allowedRoles.
// It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(ContextRoles).(domain.RoleSet)
			if !ok {
				return unauthorized("missing authentication claims")
			}
			if !roles.HasAny(allowedRoles...) {
				return forbidden()
			}
			return next(c)
		}
	}
}

// Require gates a route on a capability of the access policy. It must run
// after Auth.
func Require(capability domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(ContextRoles).(domain.RoleSet)
			if !ok {
				return unauthorized("missing authentication claims")
			}
			if !roles.Allows(capability) {
				return forbidden()
			}
			return next(c)
		}
	}
}

func forbidden() error {
	return echo.NewHTTPError(http.StatusForbidden, "access forbidden").SetInternal(domain.ErrForbidden)
}
