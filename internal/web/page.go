package web

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Viewer is the signed-in user as seen by templates.
type Viewer struct {
	UserID            int64
	Username          string
	Roles             []string
	CanEdit           bool
	CanViewStatistics bool
	CanManageUsers    bool
}

// Page is the data passed to every template. Data holds the page-specific
// view model.
type Page struct {
	Title  string
	Viewer *Viewer
	Flash  *Flash
	Errors map[string]string
	Data   any
}

func (p Page) SignedIn() bool {
	return p.Viewer != nil
}

// Error returns the validation message for field, if any.
func (p Page) Error(field string) string {
	return p.Errors[field]
}
