package domain

import (
	"cmp"
	"math"
	"strings"
)

// SortField names a sortable energy-object attribute.
type SortField string

const (
	SortByID                SortField = "id"
	SortByName              SortField = "name"
	SortByType              SortField = "type"
	SortByPower             SortField = "power"
	SortByCommissioningYear SortField = "commissioningYear"
	SortByEfficiency        SortField = "efficiency"
)

var sortFields = map[string]SortField{
	"id":                 SortByID,
	"name":               SortByName,
	"type":               SortByType,
	"power":              SortByPower,
	"commissioningyear":  SortByCommissioningYear,
	"commissioning_year": SortByCommissioningYear,
	"efficiency":         SortByEfficiency,
}

// ParseSortField resolves a request value, case-insensitively. Unknown values
// report ok=false.
func ParseSortField(s string) (SortField, bool) {
	f, ok := sortFields[strings.ToLower(strings.TrimSpace(s))]
	return f, ok
}

// SortFields lists the accepted sort fields in display order.
func SortFields() []SortField {
	return []SortField{SortByID, SortByName, SortByType, SortByPower, SortByCommissioningYear, SortByEfficiency}
}

// SortDirection is either ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection resolves "asc"/"desc" case-insensitively.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return SortAsc, true
	case "desc":
		return SortDesc, true
	}
	return "", false
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ObjectQuery is a normalised search/page request over energy objects.
// Page is zero-based.
type ObjectQuery struct {
	Keyword   string
	Page      int
	PageSize  int
	SortField SortField
	Direction SortDirection
}

// Normalize clamps paging values, resolves sort field aliases and fills in
// sort defaults. Page is capped so that Offset()+PageSize fits in an int.
func (q ObjectQuery) Normalize() ObjectQuery {
	q.Keyword = strings.TrimSpace(q.Keyword)
	if q.Page < 0 {
		q.Page = 0
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if maxPage := math.MaxInt/q.PageSize - 1; q.Page > maxPage {
		q.Page = maxPage
	}
	if f, ok := ParseSortField(string(q.SortField)); ok {
		q.SortField = f
	} else {
		q.SortField = SortByID
	}
	if q.Direction != SortAsc && q.Direction != SortDesc {
		q.Direction = SortAsc
	}
	return q
}

// HasKeyword reports whether the query filters by keyword.
func (q ObjectQuery) HasKeyword() bool {
	return q.Keyword != ""
}

// Offset is the index of the first record on the requested page.
func (q ObjectQuery) Offset() int {
	return q.Page * q.PageSize
}

// TotalPages returns ceil(total/pageSize).
func (q ObjectQuery) TotalPages(total int64) int {
	if total <= 0 || q.PageSize <= 0 {
		return 0
	}
	size := int64(q.PageSize)
	return int((total + size - 1) / size)
}

// Matches reports whether the object contains the keyword, case-insensitively,
// in its name, location or type. An empty keyword matches everything.
func (q ObjectQuery) Matches(o *EnergyObject) bool {
	if !q.HasKeyword() {
		return true
	}
	kw := strings.ToLower(q.Keyword)
	return strings.Contains(strings.ToLower(o.Name), kw) ||
		strings.Contains(strings.ToLower(o.Location), kw) ||
		strings.Contains(strings.ToLower(o.Type), kw)
}

// Compare orders two objects by the query's sort field and direction.
// Equal keys fall back to ascending ID regardless of direction.
func (q ObjectQuery) Compare(a, b *EnergyObject) int {
	var c int
	switch q.SortField {
	case SortByName:
		c = cmp.Compare(a.Name, b.Name)
	case SortByType:
		c = cmp.Compare(a.Type, b.Type)
	case SortByPower:
		c = cmp.Compare(a.Power, b.Power)
	case SortByCommissioningYear:
		c = cmp.Compare(a.CommissioningYear, b.CommissioningYear)
	case SortByEfficiency:
		c = cmp.Compare(a.Efficiency, b.Efficiency)
	default:
		c = cmp.Compare(a.ID, b.ID)
	}
	if q.Direction == SortDesc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
