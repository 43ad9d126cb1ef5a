package core

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// MovementRow is one display line of the movements list.
type MovementRow struct {
	Seq     int // 1-based index in insertion order
	Kind    MovementKind
	Amount  decimal.Decimal
	Date    time.Time
	HasDate bool
}

// ClassifyMovement labels positive amounts as deposits and everything else,
// zero included, as withdrawals.
func ClassifyMovement(amount decimal.Decimal) MovementKind {
	if amount.IsPositive() {
		return Deposit
	}
	return Withdrawal
}

// MovementRows returns the rows in display order: most recent first, or
// largest amount first when sorted. Ties keep their insertion order before
// the final reversal. The account itself is never reordered.
func MovementRows(a *Account, sorted bool) []MovementRow {
	rows := make([]MovementRow, len(a.Movements))
	for i, m := range a.Movements {
		rows[i] = MovementRow{Seq: i + 1, Kind: ClassifyMovement(m), Amount: m}
		if a.TracksDates() && i < len(a.MovementsDates) {
			rows[i].Date = a.MovementsDates[i]
			rows[i].HasDate = true
		}
	}
	if sorted {
		slices.SortStableFunc(rows, func(x, y MovementRow) int {
			return x.Amount.Cmp(y.Amount)
		})
	}
	slices.Reverse(rows)
	return rows
}
