package core

import "github.com/shopspring/decimal"

// MinInterest is the smallest per-deposit interest that gets paid out.
var MinInterest = decimal.NewFromInt(1)

var hundred = decimal.NewFromInt(100)

// Summary holds every derived figure shown for one account.
type Summary struct {
	Balance  decimal.Decimal
	Income   decimal.Decimal
	Expense  decimal.Decimal // absolute value of the withdrawals
	Interest decimal.Decimal
}

// Summarize derives balance, income, expense and interest in one pass.
func Summarize(a *Account) Summary {
	return Summary{
		Balance:  Balance(a.Movements),
		Income:   Income(a.Movements),
		Expense:  Expense(a.Movements),
		Interest: Interest(a.Movements, a.InterestRate),
	}
}

// Balance is the sum of all movements.
func Balance(movements []decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, movements...)
}

// Income is the sum of all deposits.
func Income(movements []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if m.IsPositive() {
			total = total.Add(m)
		}
	}
	return total
}

// Expense is the absolute sum of all withdrawals.
func Expense(movements []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if m.IsNegative() {
			total = total.Add(m)
		}
	}
	return total.Abs()
}

// Interest pays rate percent on every deposit, skipping deposits whose
// interest would be below MinInterest. No qualifying deposit yields zero.
func Interest(movements []decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if !m.IsPositive() {
			continue
		}
		earned := m.Mul(rate).Div(hundred)
		if earned.LessThan(MinInterest) {
			continue
		}
		total = total.Add(earned)
	}
	return total
}
