package ui

import (
	"context"
	"strings"
	"time"

	"bankist/internal/bank"
	"bankist/internal/core"
	"bankist/internal/format"
)

// Actions is the subset of *bank.Bank the controller drives.
type Actions interface {
	Authenticate(ctx context.Context, s bank.Session, userName, pinText string) (bank.Outcome, error)
	Transfer(ctx context.Context, s bank.Session, to, amountText string) (bank.Outcome, error)
	RequestLoan(ctx context.Context, s bank.Session, amountText string) (bank.Outcome, error)
	CloseAccount(ctx context.Context, s bank.Session, userName, pinText string) (bank.Outcome, error)
	ToggleSort(ctx context.Context, s bank.Session) (bank.Outcome, error)
	View(s bank.Session) (bank.View, bool)
}

type Controller struct {
	actions Actions
	now     func() time.Time
}

func NewController(actions Actions, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{actions: actions, now: now}
}

// Login keeps the typed credentials on failure so the user can correct them.
func (c *Controller) Login(ctx context.Context, s bank.Session, in InputReader, p Presenter) (bank.Outcome, error) {
	user := strings.TrimSpace(in.Field(FieldLoginUser))
	pin := in.Field(FieldLoginPin)

	out, err := c.actions.Authenticate(ctx, s, user, pin)
	if err != nil {
		return out, err
	}
	in.ClearAll()

	locale, _ := out.View.Account.FormatHints()
	p.SetWelcome(out.View.Account.FirstName())
	p.SetDate(format.DateTime(c.now(), locale))
	p.SetLoggedIn(true)
	c.Update(p, *out.View)
	return out, nil
}

func (c *Controller) Transfer(ctx context.Context, s bank.Session, in InputReader, p Presenter) (bank.Outcome, error) {
	to := strings.TrimSpace(in.Field(FieldTransferTo))
	amount := in.Field(FieldTransferAmount)
	in.ClearAll()

	out, err := c.actions.Transfer(ctx, s, to, amount)
	if err != nil {
		return out, err
	}
	c.Update(p, *out.View)
	return out, nil
}

// RequestLoan renders right away only when the loan was credited
// immediately; a deferred credit is pushed later through Refresh.
func (c *Controller) RequestLoan(ctx context.Context, s bank.Session, in InputReader, p Presenter) (bank.Outcome, error) {
	amount := in.Field(FieldLoanAmount)
	in.ClearAll()

	out, err := c.actions.RequestLoan(ctx, s, amount)
	if err != nil {
		return out, err
	}
	if out.View != nil {
		c.Update(p, *out.View)
	}
	return out, nil
}

func (c *Controller) CloseAccount(ctx context.Context, s bank.Session, in InputReader, p Presenter) (bank.Outcome, error) {
	user := strings.TrimSpace(in.Field(FieldCloseUser))
	pin := in.Field(FieldClosePin)
	in.ClearAll()

	out, err := c.actions.CloseAccount(ctx, s, user, pin)
	if err != nil {
		return out, err
	}
	c.LoggedOut(p)
	return out, nil
}

// ToggleSort only re-renders the movement rows.
func (c *Controller) ToggleSort(ctx context.Context, s bank.Session, p Presenter) (bank.Outcome, error) {
	out, err := c.actions.ToggleSort(ctx, s)
	if err != nil {
		return out, err
	}
	p.Render(c.rows(out.View.Account, out.View.Rows))
	return out, nil
}

// Refresh renders the whole app for s, or the logged-out appearance when
// s no longer points at an account.
func (c *Controller) Refresh(s bank.Session, p Presenter) bool {
	v, ok := c.actions.View(s)
	if !ok {
		c.LoggedOut(p)
		return false
	}
	p.SetWelcome(v.Account.FirstName())
	p.SetLoggedIn(true)
	c.Update(p, v)
	return true
}

func (c *Controller) LoggedOut(p Presenter) {
	p.SetWelcome("")
	p.SetLoggedIn(false)
}

// Update renders the movements, balance and summary of v.
func (c *Controller) Update(p Presenter, v bank.View) {
	locale, cur := v.Account.FormatHints()
	p.Render(c.rows(v.Account, v.Rows))
	p.SetBalance(format.Currency(v.Summary.Balance, locale, cur))
	p.SetSummary(
		format.Currency(v.Summary.Income, locale, cur),
		format.Currency(v.Summary.Expense, locale, cur),
		format.Currency(v.Summary.Interest, locale, cur),
	)
}

func (c *Controller) rows(acc *core.Account, rows []core.MovementRow) []Row {
	locale, cur := acc.FormatHints()
	now := c.now()
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{
			Seq:   r.Seq,
			Kind:  string(r.Kind),
			Value: format.Currency(r.Amount, locale, cur),
		}
		if r.HasDate {
			out[i].Date = format.MovementDate(r.Date, now, locale)
		}
	}
	return out
}
