package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Deposit    MovementKind = "deposit"
	Withdrawal MovementKind = "withdrawal"
)

// Fallback formatting hints for accounts seeded without locale/currency.
const (
	DefaultLocale   = "en-US"
	DefaultCurrency = "EUR"
)

type (
	MovementKind string

	// Account is a single customer ledger. Balance is never stored: it is
	// always derived from Movements.
	Account struct {
		ID       string
		Owner    string
		UserName string

		// Movements and MovementsDates are index-parallel. A nil
		// MovementsDates means the account does not track dates.
		Movements      []decimal.Decimal
		MovementsDates []time.Time

		InterestRate decimal.Decimal // percent, 1.2 means 1.2%
		Pin          int
		Locale       string
		Currency     string
	}
)

var (
	ErrEmptyOwner    = errors.New("empty owner")
	ErrDatesMismatch = errors.New("movements and dates length mismatch")
	ErrNegativeRate  = errors.New("negative interest rate")
)

// NewAccount builds an account and derives its user name.
func NewAccount(owner string, pin int, interestRate decimal.Decimal) *Account {
	a := &Account{
		InterestRate: interestRate,
		Pin:          pin,
	}
	a.Rename(owner)
	return a
}

// Rename changes the owner and recomputes the derived user name.
func (a *Account) Rename(owner string) {
	a.Owner = owner
	a.UserName = DeriveUserName(owner)
}

// TracksDates reports whether movements carry timestamps.
func (a *Account) TracksDates() bool {
	return a.MovementsDates != nil
}

// AddMovement appends a signed amount, and its timestamp when dates are tracked.
func (a *Account) AddMovement(amount decimal.Decimal, at time.Time) {
	a.Movements = append(a.Movements, amount)
	if a.TracksDates() {
		a.MovementsDates = append(a.MovementsDates, at)
	}
}

// FirstName returns the first word of the owner. Leading and repeated
// spaces are skipped, as DeriveUserName skips them.
func (a *Account) FirstName() string {
	words := strings.Fields(a.Owner)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

// FormatHints returns the locale and currency to format this account with.
func (a *Account) FormatHints() (locale, currency string) {
	locale, currency = a.Locale, a.Currency
	if locale == "" {
		locale = DefaultLocale
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return locale, currency
}

// Clone returns a deep copy safe to hand outside the store lock.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Movements = append([]decimal.Decimal(nil), a.Movements...)
	if a.MovementsDates != nil {
		cp.MovementsDates = append(make([]time.Time, 0, len(a.MovementsDates)), a.MovementsDates...)
	}
	return &cp
}

func (a *Account) Validate() error {
	if strings.TrimSpace(a.Owner) == "" {
		return ErrEmptyOwner
	}
	if a.TracksDates() && len(a.MovementsDates) != len(a.Movements) {
		return ErrDatesMismatch
	}
	if a.InterestRate.IsNegative() {
		return ErrNegativeRate
	}
	return nil
}
