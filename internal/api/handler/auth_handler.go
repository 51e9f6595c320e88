package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/api/metrics"
	"github.com/energycompany/energy-registry/internal/api/middleware"
	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
	"github.com/energycompany/energy-registry/internal/web"
)

type AuthHandler struct {
	pages
	authService ports.AuthService
	secure      bool
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, flash *Flasher, secureCookies bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{pages: pages{flash: flash}, authService: authService, secure: secureCookies, log: log}
}

type loginView struct {
	Identifier string
}

// LoginForm renders the login page. Signed-in users go straight to the list.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	if middleware.ClaimsFrom(c) != nil {
		return c.Redirect(http.StatusSeeOther, objectsPath)
	}
	return h.render(c, http.StatusOK, "login.html", "Log in", loginView{})
}

// Login verifies the credentials and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	session, _, err := h.authService.Login(c.Request().Context(), form.Identifier, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return h.renderErrors(c, http.StatusUnauthorized, "login.html", "Log in",
				loginView{Identifier: form.Identifier},
				map[string]string{"login": "Invalid username or password"})
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetCookie(h.sessionCookie(session.Token, maxAge))
	return c.Redirect(http.StatusSeeOther, objectsPath)
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "register.html", "Register", registerForm{})
}

// Register creates a USER account and redirects to the login page.
func (h *AuthHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	_, err := h.authService.Register(c.Request().Context(), form.toDomain())
	if err != nil {
		// Passwords are never echoed back.
		redisplay := registerForm{Username: form.Username, Email: form.Email}

		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return h.renderErrors(c, http.StatusUnprocessableEntity, "register.html", "Register", redisplay, ve.Fields())
		case errors.Is(err, domain.ErrUsernameTaken):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return h.renderErrors(c, http.StatusConflict, "register.html", "Register", redisplay,
				map[string]string{"username": "is already taken"})
		case errors.Is(err, domain.ErrEmailTaken):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return h.renderErrors(c, http.StatusConflict, "register.html", "Register", redisplay,
				map[string]string{"email": "is already registered"})
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	return h.redirect(c, "/login", web.FlashSuccess, "Registration complete, you can now log in")
}

// Logout revokes the session and clears the cookie. It never fails for the
// user: a revocation error is logged and the cookie is dropped anyway.
func (h *AuthHandler) Logout(c echo.Context) error {
	if claims := middleware.ClaimsFrom(c); claims != nil {
		if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
			h.log.Error().Err(err).Int64("user_id", claims.UserID).Msg("failed to revoke session")
		}
	}
	c.SetCookie(h.sessionCookie("", -1))
	return h.redirect(c, "/", web.FlashInfo, "You have been logged out")
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
