package http

import (
	"net/url"
	"strings"

	"bankist/internal/ui"
)

// HTMLPresenter keeps what the page currently shows. The controller
// mutates it the way it would mutate a document; templates render it.
type HTMLPresenter struct {
	Rows     []ui.Row
	Balance  string
	In       string
	Out      string
	Interest string
	Welcome  string
	LoggedIn bool
	Date     string
}

func NewHTMLPresenter() *HTMLPresenter {
	return &HTMLPresenter{}
}

const defaultWelcome = "Log in to get started"

func (p *HTMLPresenter) Render(rows []ui.Row) {
	p.Rows = rows
}

func (p *HTMLPresenter) SetBalance(text string) {
	p.Balance = text
}

func (p *HTMLPresenter) SetSummary(in, out, interest string) {
	p.In, p.Out, p.Interest = in, out, interest
}

func (p *HTMLPresenter) SetWelcome(firstName string) {
	if firstName == "" {
		p.Welcome = defaultWelcome
	} else {
		p.Welcome = "Welcome back, " + firstName
	}
}

func (p *HTMLPresenter) SetLoggedIn(loggedIn bool) {
	p.LoggedIn = loggedIn
}

func (p *HTMLPresenter) SetDate(text string) {
	p.Date = text
}

// WelcomeText falls back to the logged-out greeting for a fresh page.
func (p *HTMLPresenter) WelcomeText() string {
	if p.Welcome == "" {
		return defaultWelcome
	}
	return p.Welcome
}

// snapshot copies the presenter so templates can run after the session
// lock is released.
func (p *HTMLPresenter) snapshot() HTMLPresenter {
	cp := *p
	cp.Rows = append([]ui.Row(nil), p.Rows...)
	return cp
}

// FormInput reads submitted form fields and records whether the
// controller asked for the inputs to be cleared.
type FormInput struct {
	values  url.Values
	cleared bool
}

func NewFormInput(values url.Values) *FormInput {
	if values == nil {
		values = url.Values{}
	}
	return &FormInput{values: values}
}

func (f *FormInput) Field(name string) string {
	return sanitizeInput(f.values.Get(name))
}

func (f *FormInput) ClearAll() {
	f.cleared = true
}

func (f *FormInput) Cleared() bool {
	return f.cleared
}

// sanitizeInput drops control characters except tab and newlines.
// Surrounding spaces are kept; trimming is the controller's decision.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
