package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/energycompany/energy-registry/internal/api/middleware"
	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
	"github.com/energycompany/energy-registry/internal/web"
)

// ctxClaims returns the claims injected by the Auth middleware. Their absence
// means the route was mounted without Auth and is reported as 401.
func ctxClaims(c echo.Context) (*ports.Claims, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims").
			SetInternal(domain.ErrUnauthenticated)
	}
	return claims, nil
}

// ViewerFrom builds the template view of the signed-in user, or nil for
// anonymous requests.
func ViewerFrom(c echo.Context) *web.Viewer {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return nil
	}
	return &web.Viewer{
		UserID:            claims.UserID,
		Username:          claims.Username,
		Roles:             claims.Roles.Strings(),
		CanEdit:           claims.Roles.Allows(domain.CapEditObjects),
		CanViewStatistics: claims.Roles.Allows(domain.CapViewStatistics),
		CanManageUsers:    claims.Roles.Allows(domain.CapManageUsers),
	}
}

// pathID parses the :id route parameter. Malformed ids are reported as
// not found by the caller's sentinel.
func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pages renders templates wrapped in the common page data.
type pages struct {
	flash *Flasher
}

func (p pages) render(c echo.Context, status int, name, title string, data any) error {
	return p.renderErrors(c, status, name, title, data, nil)
}

func (p pages) renderErrors(c echo.Context, status int, name, title string, data any, errs map[string]string) error {
	return c.Render(status, name, web.Page{
		Title:  title,
		Viewer: ViewerFrom(c),
		Flash:  p.flash.Pop(c),
		Errors: errs,
		Data:   data,
	})
}

// redirect sets a flash message and redirects with 303 See Other.
func (p pages) redirect(c echo.Context, to, kind, message string) error {
	if message != "" {
		p.flash.Set(c, kind, message)
	}
	return c.Redirect(http.StatusSeeOther, to)
}
