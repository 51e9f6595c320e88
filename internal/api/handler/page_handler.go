package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
	"github.com/energycompany/energy-registry/internal/web"
)

// PageHandler serves the public pages and the profile.
type PageHandler struct {
	pages
	users ports.UserService
	log   zerolog.Logger
}

func NewPageHandler(users ports.UserService, flash *Flasher, log zerolog.Logger) *PageHandler {
	return &PageHandler{pages: pages{flash: flash}, users: users, log: log}
}

type homeView struct {
	UserCount int64
}

// Home shows the landing page with the number of registered users.
func (h *PageHandler) Home(c echo.Context) error {
	count, err := h.users.Count(c.Request().Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("user count unavailable")
	}
	return h.render(c, http.StatusOK, "home.html", "Home", homeView{UserCount: count})
}

func (h *PageHandler) About(c echo.Context) error {
	return h.render(c, http.StatusOK, "about.html", "About", nil)
}

func (h *PageHandler) AccessDenied(c echo.Context) error {
	return h.render(c, http.StatusForbidden, "access_denied.html", "Access denied", nil)
}

// Profile shows the signed-in account.
func (h *PageHandler) Profile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "profile.html", "Profile", user)
}

// ChangePassword verifies the current password and stores the new one.
func (h *PageHandler) ChangePassword(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var form passwordForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	err = c.Validate(&form)
	if err == nil {
		err = h.users.ChangePassword(c.Request().Context(), claims.UserID, form.CurrentPassword, form.NewPassword)
	}
	if err == nil {
		return h.redirect(c, "/profile", web.FlashSuccess, "Password changed")
	}
	if errors.Is(err, domain.ErrPasswordMismatch) {
		return h.profileError(c, claims.UserID, map[string]string{"current_password": "is incorrect"})
	}
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return h.profileError(c, claims.UserID, ve.Fields())
}

func (h *PageHandler) profileError(c echo.Context, userID int64, errs map[string]string) error {
	user, err := h.users.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return h.renderErrors(c, http.StatusUnprocessableEntity, "profile.html", "Profile", user, errs)
}
