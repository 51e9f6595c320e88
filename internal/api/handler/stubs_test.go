package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/energycompany/energy-registry/internal/api/middleware"
	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
	"github.com/energycompany/energy-registry/internal/web"
)

const testSecret = "test-secret"

// recordingRenderer captures the last rendered template instead of executing it.
type recordingRenderer struct {
	name string
	page web.Page
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.page, _ = data.(web.Page)
	_, err := io.WriteString(w, name)
	return err
}

func newTestEcho() (*echo.Echo, *recordingRenderer) {
	e := echo.New()
	r := &recordingRenderer{}
	e.Renderer = r
	e.Validator = NewValidator()
	return e, r
}

func newFlasher() *Flasher {
	return NewFlasher(testSecret, false)
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func signIn(c echo.Context, id int64, roles ...domain.Role) {
	c.Set(middleware.ContextClaims, &ports.Claims{
		UserID:   id,
		Username: "alice",
		Roles:    domain.NewRoleSet(roles...),
		TokenID:  "jti-1",
	})
}

// flashFrom decodes the flash cookie set on rec.
func flashFrom(t *testing.T, rec *httptest.ResponseRecorder) *web.Flash {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != flashCookieName || ck.Value == "" {
			continue
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(ck)
		c := echo.New().NewContext(req, httptest.NewRecorder())
		return newFlasher().Pop(c)
	}
	t.Fatalf("no flash cookie set")
	return nil
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, to string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != to {
		t.Fatalf("expected redirect to %q, got %q", to, loc)
	}
}

// --- Service stubs ---

type stubObjectService struct {
	searchFn     func(ctx context.Context, q domain.ObjectQuery) (*ports.ObjectPage, error)
	getFn        func(ctx context.Context, id int64) (*domain.EnergyObject, error)
	createFn     func(ctx context.Context, o *domain.EnergyObject) (*domain.EnergyObject, error)
	updateFn     func(ctx context.Context, id int64, o *domain.EnergyObject) (*domain.EnergyObject, error)
	deleteFn     func(ctx context.Context, id int64) error
	allFn        func(ctx context.Context) ([]*domain.EnergyObject, error)
	statisticsFn func(ctx context.Context) (*domain.StatisticsReport, error)
}

func (s *stubObjectService) Search(ctx context.Context, q domain.ObjectQuery) (*ports.ObjectPage, error) {
	return s.searchFn(ctx, q)
}

func (s *stubObjectService) Get(ctx context.Context, id int64) (*domain.EnergyObject, error) {
	return s.getFn(ctx, id)
}

func (s *stubObjectService) Create(ctx context.Context, o *domain.EnergyObject) (*domain.EnergyObject, error) {
	return s.createFn(ctx, o)
}

func (s *stubObjectService) Update(ctx context.Context, id int64, o *domain.EnergyObject) (*domain.EnergyObject, error) {
	return s.updateFn(ctx, id, o)
}

func (s *stubObjectService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubObjectService) All(ctx context.Context) ([]*domain.EnergyObject, error) {
	return s.allFn(ctx)
}

func (s *stubObjectService) Statistics(ctx context.Context) (*domain.StatisticsReport, error) {
	return s.statisticsFn(ctx)
}

type stubAuthService struct {
	registerFn     func(ctx context.Context, in domain.Registration) (*domain.User, error)
	loginFn        func(ctx context.Context, identifier, password string) (*ports.Session, *domain.User, error)
	authenticateFn func(ctx context.Context, token string) (*ports.Claims, error)
	logoutFn       func(ctx context.Context, claims *ports.Claims) error
}

func (s *stubAuthService) Register(ctx context.Context, in domain.Registration) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, identifier, password string) (*ports.Session, *domain.User, error) {
	return s.loginFn(ctx, identifier, password)
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (*ports.Claims, error) {
	return s.authenticateFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, claims *ports.Claims) error {
	return s.logoutFn(ctx, claims)
}

type stubUserService struct {
	listFn           func(ctx context.Context) ([]*domain.User, error)
	getFn            func(ctx context.Context, id int64) (*domain.User, error)
	replaceRolesFn   func(ctx context.Context, id int64, roles domain.RoleSet) (*domain.User, error)
	deleteFn         func(ctx context.Context, id int64) error
	changePasswordFn func(ctx context.Context, id int64, current, next string) error
	countFn          func(ctx context.Context) (int64, error)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) ReplaceRoles(ctx context.Context, id int64, roles domain.RoleSet) (*domain.User, error) {
	return s.replaceRolesFn(ctx, id, roles)
}

func (s *stubUserService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	return s.changePasswordFn(ctx, id, current, next)
}

func (s *stubUserService) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
