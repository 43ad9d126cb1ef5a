package bank

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bankist/internal/core"
	"bankist/internal/journal"
)

var fixedNow = time.Date(2020, 8, 3, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func account(owner string, pin int, movements ...string) *core.Account {
	a := core.NewAccount(owner, pin, dec("1"))
	a.Movements = amounts(movements...)
	return a
}

// manualScheduler holds scheduled funcs until fire is called.
type manualScheduler struct {
	mu    sync.Mutex
	funcs []func()
	delay []time.Duration
}

func (m *manualScheduler) schedule(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.funcs)
	m.funcs = append(m.funcs, f)
	m.delay = append(m.delay, d)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.funcs[idx] == nil {
			return false
		}
		m.funcs[idx] = nil
		return true
	}
}

func (m *manualScheduler) fire() {
	m.mu.Lock()
	funcs := m.funcs
	m.funcs = make([]func(), len(funcs))
	m.mu.Unlock()
	for _, f := range funcs {
		if f != nil {
			f()
		}
	}
}

type testBank struct {
	*Bank
	journal *journal.MemoryJournal
	sched   *manualScheduler
}

func newTestBank(t *testing.T, delay time.Duration, accounts ...*core.Account) testBank {
	t.Helper()
	j := journal.NewMemoryJournal(0)
	sched := &manualScheduler{}
	b := New(accounts, Options{
		LoanDelay: delay,
		Scheduler: sched.schedule,
		Now:       func() time.Time { return fixedNow },
		Recorder:  j,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(b.Close)
	return testBank{Bank: b, journal: j, sched: sched}
}

func login(t *testing.T, b testBank, user, pin string) Session {
	t.Helper()
	out, err := b.Authenticate(context.Background(), LoggedOut(), user, pin)
	if err != nil {
		t.Fatalf("login %s: %v", user, err)
	}
	return out.Session
}

func movementsOf(t *testing.T, b testBank, user string) []decimal.Decimal {
	t.Helper()
	for _, a := range b.Accounts() {
		if a.UserName == user {
			return a.Movements
		}
	}
	t.Fatalf("account %s not found", user)
	return nil
}

func assertMovements(t *testing.T, got []decimal.Decimal, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d movements, got %v", len(want), got)
	}
	for i := range want {
		if !got[i].Equal(dec(want[i])) {
			t.Fatalf("movement %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func assertReason(t *testing.T, err error, want Reason) {
	t.Helper()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, &ValidationError{Reason: want}) {
		t.Fatalf("expected reason %s, got %v", want, err)
	}
}

func TestAuthenticate(t *testing.T) {
	b := newTestBank(t, 0, account("Alice Able", 1111, "200"), account("Bob Brown", 2222, "50"))

	cases := []struct {
		name string
		user string
		pin  string
		ok   bool
	}{
		{"valid", "aa", "1111", true},
		{"wrong pin", "aa", "2222", false},
		{"unknown user", "zz", "1111", false},
		{"non numeric pin", "aa", "abc", false},
		{"empty pin", "aa", "", false},
		{"fractional pin", "aa", "1111.5", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := Session{CurrentID: "previous", Sorted: true}
			out, err := b.Authenticate(context.Background(), prev, tc.user, tc.pin)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if out.View == nil || out.View.Account.UserName != tc.user {
					t.Fatalf("expected view of %s, got %+v", tc.user, out.View)
				}
				if out.Session.Sorted {
					t.Fatal("login must reset sort order")
				}
				return
			}
			assertReason(t, err, BadCredentials)
			if out.Session != prev {
				t.Fatalf("failed login changed the session: %+v", out.Session)
			}
			if out.View != nil {
				t.Fatal("failed login must not produce a view")
			}
		})
	}
}

func TestAuthenticateDuplicateUserNameFirstWins(t *testing.T) {
	first := account("John Doe", 1111, "10")
	second := account("Jane Dunn", 2222, "20")
	b := newTestBank(t, 0, first, second)

	if _, err := b.Authenticate(context.Background(), LoggedOut(), "jd", "2222"); err == nil {
		t.Fatal("second account with the same user name must be unreachable")
	}
	s := login(t, b, "jd", "1111")
	if s.CurrentID != first.ID {
		t.Fatalf("expected first account, got %s", s.CurrentID)
	}
}

func TestTransfer(t *testing.T) {
	b := newTestBank(t, 0, account("Alice Able", 1111, "200"), account("Bob Brown", 2222, "50"))
	s := login(t, b, "aa", "1111")

	out, err := b.Transfer(context.Background(), s, "bb", "100")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	assertMovements(t, movementsOf(t, b, "aa"), "200", "-100")
	assertMovements(t, movementsOf(t, b, "bb"), "50", "100")

	if out.View == nil || !out.View.Summary.Balance.Equal(dec("100")) {
		t.Fatalf("expected balance 100 in view, got %+v", out.View)
	}

	events, _ := b.journal.Recent(context.Background(), 0)
	if len(events) != 2 {
		t.Fatalf("expected 2 journal events, got %d", len(events))
	}
	if events[1].Kind != journal.TransferOut || events[1].Counterparty != "bb" {
		t.Fatalf("unexpected out event %+v", events[1])
	}
	if events[0].Kind != journal.TransferIn || !events[0].Amount.Equal(dec("100")) {
		t.Fatalf("unexpected in event %+v", events[0])
	}
}

func TestTransferRefusals(t *testing.T) {
	cases := []struct {
		name   string
		to     string
		amount string
		want   Reason
	}{
		{"zero amount", "bb", "0", InvalidAmount},
		{"blank amount", "bb", "", InvalidAmount},
		{"negative amount", "bb", "-5", InvalidAmount},
		{"garbage amount", "bb", "abc", InvalidAmount},
		{"huge exponent", "bb", "1e20000000", InvalidAmount},
		{"tiny exponent", "bb", "1e-20000000", InvalidAmount},
		{"over balance", "bb", "200.01", InsufficientFunds},
		{"unknown recipient", "zz", "10", UnknownRecipient},
		{"self transfer", "aa", "10", SelfTransfer},
		// amount is checked before the recipient
		{"zero to unknown", "zz", "0", InvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBank(t, 0, account("Alice Able", 1111, "200"), account("Bob Brown", 2222, "50"))
			s := login(t, b, "aa", "1111")

			_, err := b.Transfer(context.Background(), s, tc.to, tc.amount)
			assertReason(t, err, tc.want)
			assertMovements(t, movementsOf(t, b, "aa"), "200")
			assertMovements(t, movementsOf(t, b, "bb"), "50")

			events, _ := b.journal.Recent(context.Background(), 0)
			if len(events) != 0 {
				t.Fatalf("refused transfer was journaled: %+v", events)
			}
		})
	}
}

func TestTransferWholeBalance(t *testing.T) {
	b := newTestBank(t, 0, account("Alice Able", 1111, "200"), account("Bob Brown", 2222, "50"))
	s := login(t, b, "aa", "1111")

	if _, err := b.Transfer(context.Background(), s, "bb", "200"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if _, err := b.Transfer(context.Background(), s, "bb", "0.01"); err == nil {
		t.Fatal("expected refusal once balance is zero")
	}
}

func TestTransferRecordsDatesOnlyWhenTracked(t *testing.T) {
	dated := account("Alice Able", 1111, "200")
	dated.MovementsDates = []time.Time{fixedNow.Add(-time.Hour)}
	undated := account("Bob Brown", 2222, "50")
	b := newTestBank(t, 0, dated, undated)
	s := login(t, b, "aa", "1111")

	if _, err := b.Transfer(context.Background(), s, "bb", "10"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	for _, a := range b.Accounts() {
		switch a.UserName {
		case "aa":
			if len(a.MovementsDates) != 2 || !a.MovementsDates[1].Equal(fixedNow) {
				t.Fatalf("expected transfer date appended, got %v", a.MovementsDates)
			}
		case "bb":
			if a.MovementsDates != nil {
				t.Fatalf("untracked account gained dates: %v", a.MovementsDates)
			}
		}
	}
}

func TestRequestLoanImmediate(t *testing.T) {
	cases := []struct {
		name      string
		movements []string
		amount    string
		want      Reason
		credited  string
	}{
		{"exact ten percent", []string{"50"}, "500", "", "500"},
		{"floors fraction", []string{"200"}, "1500.7", "", "1500"},
		{"no qualifying deposit", []string{"40", "45"}, "500", LoanUnqualified, ""},
		{"withdrawals do not qualify", []string{"-100"}, "500", LoanUnqualified, ""},
		{"zero", []string{"200"}, "0", InvalidAmount, ""},
		{"floors to zero", []string{"200"}, "0.9", InvalidAmount, ""},
		{"negative", []string{"200"}, "-100", InvalidAmount, ""},
		{"garbage", []string{"200"}, "lots", InvalidAmount, ""},
		{"huge exponent", []string{"200"}, "1e20000000", InvalidAmount, ""},
		{"tiny exponent", []string{"200"}, "1e-20000000", InvalidAmount, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBank(t, 0, account("Alice Able", 1111, tc.movements...))
			s := login(t, b, "aa", "1111")

			out, err := b.RequestLoan(context.Background(), s, tc.amount)
			if tc.want != "" {
				assertReason(t, err, tc.want)
				assertMovements(t, movementsOf(t, b, "aa"), tc.movements...)
				return
			}
			if err != nil {
				t.Fatalf("loan: %v", err)
			}
			if out.LoanPending || out.View == nil {
				t.Fatalf("expected immediate credit, got %+v", out)
			}
			got := movementsOf(t, b, "aa")
			if last := got[len(got)-1]; !last.Equal(dec(tc.credited)) {
				t.Fatalf("expected %s credited, got %s", tc.credited, last)
			}
		})
	}
}

func TestRequestLoanDeferred(t *testing.T) {
	b := newTestBank(t, 2*time.Second, account("Alice Able", 1111, "200"))
	var notified []View
	b.opts.OnLoanCredited = func(_ string, v View) { notified = append(notified, v) }
	s := login(t, b, "aa", "1111")

	out, err := b.RequestLoan(context.Background(), s, "1000")
	if err != nil {
		t.Fatalf("loan: %v", err)
	}
	if !out.LoanPending || out.View != nil {
		t.Fatalf("expected pending loan without view, got %+v", out)
	}
	if b.sched.delay[0] != 2*time.Second {
		t.Fatalf("expected 2s delay, got %v", b.sched.delay[0])
	}
	assertMovements(t, movementsOf(t, b, "aa"), "200")
	if b.PendingLoans() != 1 {
		t.Fatalf("expected 1 pending loan, got %d", b.PendingLoans())
	}

	b.sched.fire()

	assertMovements(t, movementsOf(t, b, "aa"), "200", "1000")
	if b.PendingLoans() != 0 {
		t.Fatalf("expected no pending loans, got %d", b.PendingLoans())
	}
	if len(notified) != 1 || !notified[0].Summary.Balance.Equal(dec("1200")) {
		t.Fatalf("expected one notification with balance 1200, got %+v", notified)
	}
	events, _ := b.journal.Recent(context.Background(), 1)
	if len(events) != 1 || events[0].Kind != journal.LoanCredited {
		t.Fatalf("expected loan event, got %+v", events)
	}
}

func TestDeferredLoanSkippedAfterClose(t *testing.T) {
	b := newTestBank(t, time.Second, account("Alice Able", 1111, "200"), account("Bob Brown", 2222, "50"))
	notified := false
	b.opts.OnLoanCredited = func(string, View) { notified = true }
	s := login(t, b, "aa", "1111")

	if _, err := b.RequestLoan(context.Background(), s, "1000"); err != nil {
		t.Fatalf("loan: %v", err)
	}
	if _, err := b.CloseAccount(context.Background(), s, "aa", "1111"); err != nil {
		t.Fatalf("close: %v", err)
	}

	b.sched.fire()

	if notified {
		t.Fatal("loan credited to a closed account")
	}
	accounts := b.Accounts()
	if len(accounts) != 1 || accounts[0].UserName != "bb" {
		t.Fatalf("unexpected accounts after close: %+v", accounts)
	}
	assertMovements(t, accounts[0].Movements, "50")
}

func TestCloseStopsPendingLoans(t *testing.T) {
	b := newTestBank(t, time.Second, account("Alice Able", 1111, "200"))
	s := login(t, b, "aa", "1111")
	if _, err := b.RequestLoan(context.Background(), s, "1000"); err != nil {
		t.Fatalf("loan: %v", err)
	}

	b.Close()
	b.sched.fire()

	if b.PendingLoans() != 0 {
		t.Fatalf("expected pending loans cleared, got %d", b.PendingLoans())
	}
	assertMovements(t, movementsOf(t, b, "aa"), "200")
}

func TestCloseAccount(t *testing.T) {
	cases := []struct {
		name string
		user string
		pin  string
		ok   bool
	}{
		{"matching", "aa", "1111", true},
		{"wrong pin", "aa", "2222", false},
		{"other user's credentials", "bb", "2222", false},
		{"blank", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBank(t, 0, account("Alice Able", 1111, "200"), account("Bob Brown", 2222, "50"))
			s := login(t, b, "aa", "1111")

			out, err := b.CloseAccount(context.Background(), s, tc.user, tc.pin)
			if !tc.ok {
				assertReason(t, err, AccountMismatch)
				if len(b.Accounts()) != 2 || out.Session != s {
					t.Fatal("refused close changed state")
				}
				return
			}
			if err != nil {
				t.Fatalf("close: %v", err)
			}
			if out.Session.LoggedIn() || out.View != nil {
				t.Fatalf("expected logged out without view, got %+v", out)
			}
			if len(b.Accounts()) != 1 {
				t.Fatalf("expected 1 account left, got %d", len(b.Accounts()))
			}
			if _, err := b.Transfer(context.Background(), s, "bb", "10"); err == nil {
				t.Fatal("stale session must not act on a closed account")
			}
		})
	}
}

func TestCloseAccountPreservesOrder(t *testing.T) {
	b := newTestBank(t, 0,
		account("Alice Able", 1, "1"),
		account("Bob Brown", 2, "1"),
		account("Carl Cole", 3, "1"),
	)
	s := login(t, b, "bb", "2")
	if _, err := b.CloseAccount(context.Background(), s, "bb", "2"); err != nil {
		t.Fatalf("close: %v", err)
	}
	accounts := b.Accounts()
	if len(accounts) != 2 || accounts[0].UserName != "aa" || accounts[1].UserName != "cc" {
		t.Fatalf("unexpected order: %s, %s", accounts[0].UserName, accounts[1].UserName)
	}
}

func TestToggleSortNeverMutates(t *testing.T) {
	b := newTestBank(t, 0, account("Alice Able", 1111, "200", "-50", "30"))
	s := login(t, b, "aa", "1111")

	out, err := b.ToggleSort(context.Background(), s)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if !out.Session.Sorted || !out.View.Sorted {
		t.Fatal("expected sorted after first toggle")
	}
	if first := out.View.Rows[0].Amount; !first.Equal(dec("200")) {
		t.Fatalf("sorted view must show the largest first, got %s", first)
	}
	assertMovements(t, movementsOf(t, b, "aa"), "200", "-50", "30")

	out, err = b.ToggleSort(context.Background(), out.Session)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if out.Session.Sorted {
		t.Fatal("expected unsorted after second toggle")
	}
	if first := out.View.Rows[0].Amount; !first.Equal(dec("30")) {
		t.Fatalf("unsorted view must show the newest first, got %s", first)
	}
}

func TestActionsRequireLogin(t *testing.T) {
	b := newTestBank(t, 0, account("Alice Able", 1111, "200"))
	ctx := context.Background()
	s := LoggedOut()

	_, err := b.Transfer(ctx, s, "aa", "10")
	assertReason(t, err, NotAuthenticated)
	_, err = b.RequestLoan(ctx, s, "10")
	assertReason(t, err, NotAuthenticated)
	_, err = b.CloseAccount(ctx, s, "aa", "1111")
	assertReason(t, err, NotAuthenticated)
	_, err = b.ToggleSort(ctx, s)
	assertReason(t, err, NotAuthenticated)
	if _, ok := b.View(s); ok {
		t.Fatal("expected no view for a logged out session")
	}
}

func TestViewIsDetached(t *testing.T) {
	b := newTestBank(t, 0, account("Alice Able", 1111, "200"))
	s := login(t, b, "aa", "1111")

	v, ok := b.View(s)
	if !ok {
		t.Fatal("expected view")
	}
	v.Account.Movements[0] = dec("999")
	assertMovements(t, movementsOf(t, b, "aa"), "200")
}

func TestDemoAccounts(t *testing.T) {
	accounts := DemoAccounts()
	wantUsers := []string{"js", "jd", "stw", "ss"}
	if len(accounts) != len(wantUsers) {
		t.Fatalf("expected %d demo accounts, got %d", len(wantUsers), len(accounts))
	}
	for i, a := range accounts {
		if a.UserName != wantUsers[i] {
			t.Fatalf("account %d: expected %s, got %s", i, wantUsers[i], a.UserName)
		}
		if err := a.Validate(); err != nil {
			t.Fatalf("account %s invalid: %v", a.UserName, err)
		}
	}
	if !accounts[0].TracksDates() || accounts[2].TracksDates() {
		t.Fatal("only the first two demo accounts track dates")
	}
	if got := core.Balance(accounts[0].Movements); !got.Equal(dec("25952.59")) {
		t.Fatalf("unexpected demo balance %s", got)
	}

	// each call returns independent data
	accounts[0].Movements[0] = dec("0")
	if again := DemoAccounts(); !again[0].Movements[0].Equal(dec("200")) {
		t.Fatal("DemoAccounts must return fresh copies")
	}
}

func TestReasonSentinels(t *testing.T) {
	b := newTestBank(t, 0, account("Alice Able", 1111, "200"))
	s := login(t, b, "aa", "1111")

	_, err := b.Transfer(context.Background(), s, "aa", "10")
	if !errors.Is(err, ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}
	if errors.Is(err, ErrInsufficientFunds) {
		t.Fatal("reasons must not match each other")
	}
	if r, ok := ReasonOf(err); !ok || r.Message() == "" {
		t.Fatalf("expected a reason with a message, got %q", r)
	}
}
