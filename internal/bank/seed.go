package bank

import (
	"time"

	"github.com/shopspring/decimal"

	"bankist/internal/core"
)

// DemoAccounts returns fresh copies of the four demo accounts. The first
// two track movement dates and carry formatting hints; the other two fall
// back to the defaults.
func DemoAccounts() []*core.Account {
	jonas := core.NewAccount("Jonas Schmedtmann", 1111, decimal.RequireFromString("1.2"))
	jonas.Movements = amounts("200", "455.23", "-306.5", "25000", "-642.21", "-133.9", "79.97", "1300")
	jonas.MovementsDates = dates(
		"2019-11-18T21:31:17.178Z",
		"2019-12-23T07:42:02.383Z",
		"2020-01-28T09:15:04.904Z",
		"2020-04-01T10:17:24.185Z",
		"2020-05-08T14:11:59.604Z",
		"2020-07-26T17:01:17.194Z",
		"2020-07-28T23:36:17.929Z",
		"2020-08-01T10:51:36.790Z",
	)
	jonas.Currency = "EUR"
	jonas.Locale = "pt-PT"

	jessica := core.NewAccount("Jessica Davis", 2222, decimal.RequireFromString("1.5"))
	jessica.Movements = amounts("5000", "3400.5", "-150", "-790", "-3210", "-1000.83", "8500", "-30")
	jessica.MovementsDates = dates(
		"2019-11-01T13:15:33.035Z",
		"2019-11-30T09:48:16.867Z",
		"2019-12-25T06:04:23.907Z",
		"2020-01-25T14:18:46.235Z",
		"2020-02-05T16:33:06.386Z",
		"2020-04-10T14:43:26.374Z",
		"2020-06-25T18:49:59.371Z",
		"2021-04-15T12:01:20.894Z",
	)
	jessica.Currency = "USD"
	jessica.Locale = "en-US"

	steven := core.NewAccount("Steven Thomas Williams", 3333, decimal.RequireFromString("0.7"))
	steven.Movements = amounts("200", "-200", "340", "-300", "-20", "50", "400", "-460")

	sarah := core.NewAccount("Sarah Smith", 4444, decimal.NewFromInt(1))
	sarah.Movements = amounts("430", "1000", "700", "50", "90")

	return []*core.Account{jonas, jessica, steven, sarah}
}

func amounts(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func dates(values ...string) []time.Time {
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			panic("bank: bad seed date " + v)
		}
		out[i] = t
	}
	return out
}
