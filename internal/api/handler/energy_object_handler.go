package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/energycompany/energy-registry/internal/api/metrics"
	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
	"github.com/energycompany/energy-registry/internal/web"
)

const objectsPath = "/energy-objects"

// commonTypes are suggested in the type field; any free text is accepted.
var commonTypes = []string{"АЭС", "ГЭС", "ТЭЦ", "СЭС", "ВЭС"}

var pageSizes = []int{5, 10, 20, 50, 100}

// EnergyObjectHandler serves the registry pages and the JSON export.
type EnergyObjectHandler struct {
	pages
	service ports.EnergyObjectService
}

func NewEnergyObjectHandler(service ports.EnergyObjectService, flash *Flasher) *EnergyObjectHandler {
	return &EnergyObjectHandler{pages: pages{flash: flash}, service: service}
}

// --- View models ---

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type objectListView struct {
	Items      []*domain.EnergyObject
	Keyword    string
	SortBy     string
	Direction  string
	Size       int
	Total      int64
	TotalPages int
	SortFields []domain.SortField
	Sizes      []int
	Pages      []pageLink
	PrevURL    string
	NextURL    string
}

type objectFormView struct {
	Heading string
	Action  string
	Form    objectForm
	Types   []string
}

// parseListQuery reads the list parameters. Without sortBy the list is
// ordered by id descending; with sortBy and no valid direction, ascending.
func parseListQuery(c echo.Context) domain.ObjectQuery {
	q := domain.ObjectQuery{
		Keyword:   c.QueryParam("search"),
		SortField: domain.SortByID,
		Direction: domain.SortDesc,
	}
	if q.Keyword == "" {
		q.Keyword = c.QueryParam("keyword")
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.QueryParam("size")); err == nil {
		q.PageSize = size
	}
	if raw := c.QueryParam("sortBy"); raw != "" {
		q.Direction = domain.SortAsc
		if f, ok := domain.ParseSortField(raw); ok {
			q.SortField = f
		}
	}
	if d, ok := domain.ParseSortDirection(c.QueryParam("direction")); ok {
		q.Direction = d
	}
	return q
}

func listURL(q domain.ObjectQuery, page int) string {
	v := url.Values{}
	if q.Keyword != "" {
		v.Set("search", q.Keyword)
	}
	v.Set("sortBy", string(q.SortField))
	v.Set("direction", string(q.Direction))
	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(q.PageSize))
	return objectsPath + "?" + v.Encode()
}

// List renders one page of the registry.
func (h *EnergyObjectHandler) List(c echo.Context) error {
	result, err := h.service.Search(c.Request().Context(), parseListQuery(c))
	if err != nil {
		return err
	}
	metrics.SearchMatches.Observe(float64(result.Total))

	q := result.Query
	view := objectListView{
		Items:      result.Items,
		Keyword:    q.Keyword,
		SortBy:     string(q.SortField),
		Direction:  string(q.Direction),
		Size:       q.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
		SortFields: domain.SortFields(),
		Sizes:      pageSizes,
	}
	for i := 0; i < result.TotalPages; i++ {
		view.Pages = append(view.Pages, pageLink{Number: i + 1, URL: listURL(q, i), Current: i == q.Page})
	}
	if q.Page > 0 {
		view.PrevURL = listURL(q, min(q.Page-1, max(result.TotalPages-1, 0)))
	}
	if q.Page+1 < result.TotalPages {
		view.NextURL = listURL(q, q.Page+1)
	}

	return h.render(c, http.StatusOK, "objects.html", "Energy objects", view)
}

// All returns every energy object as JSON.
//
// @Summary      Export energy objects
// @Description  Returns all energy objects ordered by id.
// @Tags         energy-objects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.EnergyObject
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /energy-objects/all [get]
func (h *EnergyObjectHandler) All(c echo.Context) error {
	items, err := h.service.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Detail renders a single energy object.
func (h *EnergyObjectHandler) Detail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, objectsPath, web.FlashError, "Energy object not found")
	}
	o, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrEnergyObjectNotFound) {
			return h.redirect(c, objectsPath, web.FlashError, "Energy object not found")
		}
		return err
	}
	return h.render(c, http.StatusOK, "object_detail.html", o.Name, o)
}

// CreateForm renders an empty form.
func (h *EnergyObjectHandler) CreateForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "object_form.html", "New energy object", h.formView(0, objectForm{Active: "true"}))
}

// Create validates the submitted form and stores a new object. Invalid input
// re-renders the form with 422.
func (h *EnergyObjectHandler) Create(c echo.Context) error {
	form, obj, err := h.bindForm(c)
	if err != nil {
		return h.formError(c, "create", 0, form, err)
	}

	created, err := h.service.Create(c.Request().Context(), obj)
	if err != nil {
		return h.formError(c, "create", 0, form, err)
	}

	metrics.ObjectMutationsTotal.WithLabelValues("create", "ok").Inc()
	return h.redirect(c, objectsPath, web.FlashSuccess, "Energy object \""+created.Name+"\" created")
}

// EditForm renders the form pre-filled with the stored object.
func (h *EnergyObjectHandler) EditForm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, objectsPath, web.FlashError, "Energy object not found")
	}
	o, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrEnergyObjectNotFound) {
			return h.redirect(c, objectsPath, web.FlashError, "Energy object not found")
		}
		return err
	}
	return h.render(c, http.StatusOK, "object_form.html", "Edit "+o.Name, h.formView(id, objectFormFrom(o)))
}

// Update overwrites the object with the submitted form.
func (h *EnergyObjectHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, objectsPath, web.FlashError, "Energy object not found")
	}

	form, obj, err := h.bindForm(c)
	if err != nil {
		return h.formError(c, "update", id, form, err)
	}

	updated, err := h.service.Update(c.Request().Context(), id, obj)
	if err != nil {
		return h.formError(c, "update", id, form, err)
	}

	metrics.ObjectMutationsTotal.WithLabelValues("update", "ok").Inc()
	return h.redirect(c, objectsPath, web.FlashSuccess, "Energy object \""+updated.Name+"\" updated")
}

// Delete removes the object and redirects to the list.
func (h *EnergyObjectHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.redirect(c, objectsPath, web.FlashError, "Energy object not found")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrEnergyObjectNotFound) {
			metrics.ObjectMutationsTotal.WithLabelValues("delete", "not_found").Inc()
			return h.redirect(c, objectsPath, web.FlashError, "Energy object not found")
		}
		metrics.ObjectMutationsTotal.WithLabelValues("delete", "error").Inc()
		return h.redirect(c, objectsPath, web.FlashError, "Energy object could not be deleted")
	}

	metrics.ObjectMutationsTotal.WithLabelValues("delete", "ok").Inc()
	return h.redirect(c, objectsPath, web.FlashSuccess, "Energy object deleted")
}

// Statistics renders the aggregate report.
func (h *EnergyObjectHandler) Statistics(c echo.Context) error {
	report, err := h.service.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	metrics.StatisticsViewsTotal.Inc()
	return h.render(c, http.StatusOK, "statistics.html", "Statistics", report)
}

func (h *EnergyObjectHandler) bindForm(c echo.Context) (objectForm, *domain.EnergyObject, error) {
	var form objectForm
	if err := c.Bind(&form); err != nil {
		return form, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	form.normalize()
	if err := c.Validate(&form); err != nil {
		return form, nil, err
	}
	obj, err := form.toDomain()
	return form, obj, err
}

// formError re-renders the form on validation failures, redirects on a
// missing object and defers anything else to the error handler.
func (h *EnergyObjectHandler) formError(c echo.Context, op string, id int64, form objectForm, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		metrics.ObjectMutationsTotal.WithLabelValues(op, "invalid").Inc()
		title := "New energy object"
		if id != 0 {
			title = "Edit energy object"
		}
		return h.renderErrors(c, http.StatusUnprocessableEntity, "object_form.html", title, h.formView(id, form), ve.Fields())
	case errors.Is(err, domain.ErrEnergyObjectNotFound):
		metrics.ObjectMutationsTotal.WithLabelValues(op, "not_found").Inc()
		return h.redirect(c, objectsPath, web.FlashError, "Energy object not found")
	default:
		metrics.ObjectMutationsTotal.WithLabelValues(op, "error").Inc()
		return err
	}
}

func (h *EnergyObjectHandler) formView(id int64, form objectForm) objectFormView {
	if id == 0 {
		return objectFormView{Heading: "New energy object", Action: objectsPath + "/create", Form: form, Types: commonTypes}
	}
	return objectFormView{
		Heading: "Edit energy object",
		Action:  objectsPath + "/edit/" + strconv.FormatInt(id, 10),
		Form:    form,
		Types:   commonTypes,
	}
}
