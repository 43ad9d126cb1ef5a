// Package bank holds the account store and the user actions that mutate it:
// login, transfer, loan request, account closure and the sort toggle.
//
// A single mutex serialises every action, so a mutation and the derived view
// returned with it always describe the same state. The only asynchronous
// work is the deferred loan credit, which takes the same lock when it fires.
package bank

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bankist/internal/core"
	"bankist/internal/journal"
)

// DefaultLoanDelay is how long an approved loan waits before it is credited.
const DefaultLoanDelay = 2 * time.Second

// loanCoverRatio is the share of the requested loan a single movement must reach.
var loanCoverRatio = decimal.RequireFromString("0.1")

// Scheduler runs f once after d and returns a func that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

// AfterFunc is the real-time Scheduler.
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Options configures a Bank. Zero values pick sensible defaults.
type Options struct {
	// LoanDelay of zero credits approved loans immediately.
	LoanDelay time.Duration
	Scheduler Scheduler
	Now       func() time.Time
	Recorder  journal.Recorder
	Logger    *slog.Logger

	// OnLoanCredited is called after a deferred loan lands, with a view
	// computed under the same lock as the credit.
	OnLoanCredited func(accountID string, v View)
}

// View is everything the presentation layer needs for one account,
// derived atomically with the last mutation.
type View struct {
	Account *core.Account // detached copy
	Summary core.Summary
	Rows    []core.MovementRow
	Sorted  bool
}

// Outcome is what a successful action leaves behind.
type Outcome struct {
	Session Session
	// View is nil when nothing has to be re-rendered right now: after a
	// closure, or while a loan is still pending.
	View *View
	// LoanPending is set when a loan was approved and will be credited later.
	LoanPending bool
}

type Bank struct {
	mu      sync.Mutex
	store   *Store
	opts    Options
	pending map[uint64]func() bool
	nextID  uint64
	closed  bool
}

// New wraps the given accounts. Accounts are owned by the bank afterwards.
func New(accounts []*core.Account, opts Options) *Bank {
	if opts.Scheduler == nil {
		opts.Scheduler = AfterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Recorder == nil {
		opts.Recorder = journal.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Bank{
		store:   NewStore(accounts...),
		opts:    opts,
		pending: make(map[uint64]func() bool),
	}
}

// Authenticate logs the user in when the user name exists and the pin
// matches exactly. A failed login changes nothing.
func (b *Bank) Authenticate(ctx context.Context, s Session, userName, pinText string) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.store.FindByUserName(userName)
	if !ok {
		b.opts.Logger.InfoContext(ctx, "Login refused", "user_name", userName, "reason", "unknown_user")
		return Outcome{Session: s}, reject(BadCredentials)
	}
	pin, err := core.ParsePin(pinText)
	if err != nil || pin != acc.Pin {
		b.opts.Logger.InfoContext(ctx, "Login refused", "user_name", userName, "reason", "pin_mismatch")
		return Outcome{Session: s}, reject(BadCredentials)
	}

	next := Session{CurrentID: acc.ID}
	v := b.viewLocked(acc, next.Sorted)
	b.opts.Logger.InfoContext(ctx, "Login succeeded", "user_name", acc.UserName, "account_id", acc.ID)
	return Outcome{Session: next, View: &v}, nil
}

// Transfer moves amountText from the session's account to the account
// named to. All checks must hold or nothing changes: a positive amount,
// enough balance, an existing recipient that is not the sender.
func (b *Bank) Transfer(ctx context.Context, s Session, to, amountText string) (Outcome, error) {
	var events []journal.Event
	defer func() { b.record(ctx, events) }()

	b.mu.Lock()
	defer b.mu.Unlock()

	sender, ok := b.store.Get(s.CurrentID)
	if !ok {
		return Outcome{Session: s}, reject(NotAuthenticated)
	}
	amount, err := core.ParseAmount(amountText)
	if err != nil || !amount.IsPositive() {
		return Outcome{Session: s}, reject(InvalidAmount)
	}
	if core.Balance(sender.Movements).LessThan(amount) {
		return Outcome{Session: s}, reject(InsufficientFunds)
	}
	receiver, ok := b.store.FindByUserName(to)
	if !ok {
		return Outcome{Session: s}, reject(UnknownRecipient)
	}
	if receiver.UserName == sender.UserName {
		return Outcome{Session: s}, reject(SelfTransfer)
	}

	now := b.opts.Now()
	sender.AddMovement(amount.Neg(), now)
	receiver.AddMovement(amount, now)
	events = append(events,
		journal.NewEvent(journal.TransferOut, sender.ID, sender.UserName, amount.Neg(), now).WithCounterparty(receiver.UserName),
		journal.NewEvent(journal.TransferIn, receiver.ID, receiver.UserName, amount, now).WithCounterparty(sender.UserName),
	)

	b.opts.Logger.InfoContext(ctx, "Transfer completed",
		"user_name", sender.UserName,
		"counterparty", receiver.UserName,
		"amount", amount.String())

	v := b.viewLocked(sender, s.Sorted)
	return Outcome{Session: s, View: &v}, nil
}

// RequestLoan approves a loan when the floored amount is positive and any
// single movement reaches 10% of it. Approved loans are credited after
// Options.LoanDelay.
func (b *Bank) RequestLoan(ctx context.Context, s Session, amountText string) (Outcome, error) {
	b.mu.Lock()

	acc, ok := b.store.Get(s.CurrentID)
	if !ok {
		b.mu.Unlock()
		return Outcome{Session: s}, reject(NotAuthenticated)
	}
	amount, err := core.ParseLoanAmount(amountText)
	if err != nil || !amount.IsPositive() {
		b.mu.Unlock()
		return Outcome{Session: s}, reject(InvalidAmount)
	}
	if !qualifiesForLoan(acc.Movements, amount) {
		b.mu.Unlock()
		b.opts.Logger.InfoContext(ctx, "Loan refused", "user_name", acc.UserName, "amount", amount.String())
		return Outcome{Session: s}, reject(LoanUnqualified)
	}

	if b.opts.LoanDelay <= 0 {
		ev := b.creditLoanLocked(acc, amount)
		v := b.viewLocked(acc, s.Sorted)
		b.mu.Unlock()
		b.record(ctx, []journal.Event{ev})
		return Outcome{Session: s, View: &v}, nil
	}

	accountID := acc.ID
	b.scheduleLocked(b.opts.LoanDelay, func() {
		b.settleLoan(accountID, amount)
	})
	b.mu.Unlock()

	b.opts.Logger.InfoContext(ctx, "Loan approved",
		"user_name", acc.UserName,
		"amount", amount.String(),
		"delay", b.opts.LoanDelay)
	return Outcome{Session: s, LoanPending: true}, nil
}

func qualifiesForLoan(movements []decimal.Decimal, amount decimal.Decimal) bool {
	floor := amount.Mul(loanCoverRatio)
	for _, m := range movements {
		if m.GreaterThanOrEqual(floor) {
			return true
		}
	}
	return false
}

// settleLoan is the deferred credit. Accounts closed in the meantime are skipped.
func (b *Bank) settleLoan(accountID string, amount decimal.Decimal) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	acc, ok := b.store.Get(accountID)
	if !ok {
		b.mu.Unlock()
		b.opts.Logger.Warn("Loan skipped, account no longer exists", "account_id", accountID, "amount", amount.String())
		return
	}
	ev := b.creditLoanLocked(acc, amount)
	v := b.viewLocked(acc, false)
	notify := b.opts.OnLoanCredited
	b.mu.Unlock()

	b.record(context.Background(), []journal.Event{ev})
	if notify != nil {
		notify(accountID, v)
	}
}

func (b *Bank) creditLoanLocked(acc *core.Account, amount decimal.Decimal) journal.Event {
	now := b.opts.Now()
	acc.AddMovement(amount, now)
	b.opts.Logger.Info("Loan credited", "user_name", acc.UserName, "amount", amount.String())
	return journal.NewEvent(journal.LoanCredited, acc.ID, acc.UserName, amount, now)
}

func (b *Bank) scheduleLocked(d time.Duration, f func()) {
	b.nextID++
	id := b.nextID
	b.pending[id] = b.opts.Scheduler(d, func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
		f()
	})
}

// CloseAccount removes the logged-in account when both user name and pin
// match it. The account is removed by id, never by a second lookup.
func (b *Bank) CloseAccount(ctx context.Context, s Session, userName, pinText string) (Outcome, error) {
	var events []journal.Event
	defer func() { b.record(ctx, events) }()

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.store.Get(s.CurrentID)
	if !ok {
		return Outcome{Session: s}, reject(NotAuthenticated)
	}
	pin, err := core.ParsePin(pinText)
	if userName != acc.UserName || err != nil || pin != acc.Pin {
		return Outcome{Session: s}, reject(AccountMismatch)
	}

	b.store.Remove(acc.ID)
	events = append(events, journal.NewEvent(journal.AccountClosed, acc.ID, acc.UserName, core.Balance(acc.Movements), b.opts.Now()))
	b.opts.Logger.InfoContext(ctx, "Account closed", "user_name", acc.UserName, "account_id", acc.ID)
	return Outcome{Session: LoggedOut()}, nil
}

// ToggleSort flips the display order of the movements. Account data is untouched.
func (b *Bank) ToggleSort(_ context.Context, s Session) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.store.Get(s.CurrentID)
	if !ok {
		return Outcome{Session: s}, reject(NotAuthenticated)
	}
	s.Sorted = !s.Sorted
	v := b.viewLocked(acc, s.Sorted)
	return Outcome{Session: s, View: &v}, nil
}

// View derives the current view of the session's account.
func (b *Bank) View(s Session) (View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.store.Get(s.CurrentID)
	if !ok {
		return View{}, false
	}
	return b.viewLocked(acc, s.Sorted), true
}

func (b *Bank) viewLocked(acc *core.Account, sorted bool) View {
	return View{
		Account: acc.Clone(),
		Summary: core.Summarize(acc),
		Rows:    core.MovementRows(acc, sorted),
		Sorted:  sorted,
	}
}

// Accounts returns copies of every account in store order.
func (b *Bank) Accounts() []*core.Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Snapshot()
}

// PendingLoans is the number of approved loans not yet credited.
func (b *Bank) PendingLoans() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Close stops every pending loan timer. Loans that have not fired are dropped.
func (b *Bank) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, stop := range b.pending {
		stop()
		delete(b.pending, id)
	}
}

func (b *Bank) record(ctx context.Context, events []journal.Event) {
	if len(events) == 0 {
		return
	}
	if err := b.opts.Recorder.Record(ctx, events...); err != nil {
		b.opts.Logger.ErrorContext(ctx, "Failed to record journal events", "error", err, "count", len(events))
	}
}
