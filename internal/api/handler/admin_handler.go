package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/energycompany/energy-registry/internal/api/metrics"
	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
	"github.com/energycompany/energy-registry/internal/web"
)

const usersPath = "/admin/users"

// AdminHandler serves user management for administrators.
type AdminHandler struct {
	pages
	users ports.UserService
}

func NewAdminHandler(users ports.UserService, flash *Flasher) *AdminHandler {
	return &AdminHandler{pages: pages{flash: flash}, users: users}
}

type roleOption struct {
	Name    string
	Checked bool
}

type userEditView struct {
	User  *domain.User
	Roles []roleOption
}

// Users lists every account.
func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "users.html", "Users", users)
}

// EditUser renders the role checkboxes of one account.
func (h *AdminHandler) EditUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, usersPath, web.FlashError, "User not found")
	}
	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return h.redirect(c, usersPath, web.FlashError, "User not found")
		}
		return err
	}

	view := userEditView{User: user}
	for _, r := range domain.AllRoles() {
		view.Roles = append(view.Roles, roleOption{Name: string(r), Checked: user.Roles.Has(r)})
	}
	return h.render(c, http.StatusOK, "user_edit.html", "Edit roles", view)
}

// UpdateRoles replaces the role set with the submitted checkboxes. Submitting
// none leaves the account without roles.
func (h *AdminHandler) UpdateRoles(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, usersPath, web.FlashError, "User not found")
	}

	var form rolesForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	user, err := h.users.ReplaceRoles(c.Request().Context(), id, domain.ParseRoleSet(form.Roles))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return h.redirect(c, usersPath, web.FlashError, "User not found")
		}
		return err
	}

	metrics.RoleChangesTotal.Inc()
	if len(user.Roles) == 0 {
		return h.redirect(c, usersPath, web.FlashInfo, "User "+user.Username+" now has no roles")
	}
	return h.redirect(c, usersPath, web.FlashSuccess, "Roles of "+user.Username+" updated")
}

// DeleteUser removes an account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, usersPath, web.FlashError, "User not found")
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return h.redirect(c, usersPath, web.FlashError, "User not found")
		}
		return h.redirect(c, usersPath, web.FlashError, "User could not be deleted")
	}
	return h.redirect(c, usersPath, web.FlashSuccess, "User deleted")
}
