package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransferOut   Kind = "transfer_out"
	TransferIn    Kind = "transfer_in"
	LoanCredited  Kind = "loan_credited"
	AccountClosed Kind = "account_closed"
)

type Kind string

// Event is one append-only journal entry describing a state change that
// already happened in the in-memory account store.
type Event struct {
	ID           string          `json:"id"`
	Kind         Kind            `json:"kind"`
	AccountID    string          `json:"account_id"`
	UserName     string          `json:"user_name"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewEvent stamps a fresh event id.
func NewEvent(kind Kind, accountID, userName string, amount decimal.Decimal, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		AccountID:  accountID,
		UserName:   userName,
		Amount:     amount,
		OccurredAt: at,
	}
}

// WithCounterparty sets the other side of a transfer.
func (e Event) WithCounterparty(userName string) Event {
	e.Counterparty = userName
	return e
}
