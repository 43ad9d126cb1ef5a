package format

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCurrencyPlacement(t *testing.T) {
	cases := []struct {
		value    string
		locale   string
		currency string
		prefix   string
		suffix   string
		contains string
	}{
		{"1300", "en-US", "USD", "$", "", "1,300.00"},
		{"-306.5", "en-US", "USD", "-$", "", "306.50"},
		{"25952.59", "pt-PT", "EUR", "", " €", ",59"},
		{"-642.21", "pt-PT", "EUR", "-", " €", "642,21"},
		{"0", "en-US", "USD", "$", "", "0.00"},
		{"79.97", "de-DE", "EUR", "", " €", "79,97"},
	}

	for _, tc := range cases {
		t.Run(tc.locale+" "+tc.value, func(t *testing.T) {
			got := Currency(decimal.RequireFromString(tc.value), tc.locale, tc.currency)
			if !strings.HasPrefix(got, tc.prefix) {
				t.Fatalf("expected prefix %q in %q", tc.prefix, got)
			}
			if !strings.HasSuffix(got, tc.suffix) {
				t.Fatalf("expected suffix %q in %q", tc.suffix, got)
			}
			if !strings.Contains(got, tc.contains) {
				t.Fatalf("expected %q in %q", tc.contains, got)
			}
		})
	}
}

func TestCurrencyRoundsToMinorUnits(t *testing.T) {
	got := Currency(decimal.RequireFromString("323.46276"), "en-US", "EUR")
	if !strings.Contains(got, "323.46") || strings.Contains(got, "323.462") {
		t.Fatalf("expected two decimals, got %q", got)
	}

	// rounds to zero, so no sign
	if got := Currency(decimal.RequireFromString("-0.001"), "en-US", "USD"); strings.HasPrefix(got, "-") {
		t.Fatalf("expected unsigned zero, got %q", got)
	}
}

func TestCurrencyFallbacks(t *testing.T) {
	want := Currency(decimal.NewFromInt(5), "en-US", "EUR")
	for _, tc := range []struct{ locale, currency string }{
		{"", ""},
		{"not a locale!", "EUR"},
		{"en-US", "NOPE"},
	} {
		if got := Currency(decimal.NewFromInt(5), tc.locale, tc.currency); got != want {
			t.Fatalf("Currency(5, %q, %q) = %q, want fallback %q", tc.locale, tc.currency, got, want)
		}
	}
}

func TestMovementDate(t *testing.T) {
	now := time.Date(2020, 8, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		date   time.Time
		locale string
		want   string
	}{
		{"same moment", now, "en-US", "Today"},
		{"eleven hours ago", now.Add(-11 * time.Hour), "en-US", "Today"},
		{"thirteen hours ago rounds up", now.Add(-13 * time.Hour), "en-US", "Yesterday"},
		{"yesterday", now.Add(-day), "en-US", "Yesterday"},
		{"three days", now.Add(-3 * day), "en-US", "3 days ago"},
		{"a week", now.Add(-7 * day), "en-US", "7 days ago"},
		{"future counts too", now.Add(2 * day), "en-US", "2 days ago"},
		{"older us", time.Date(2020, 8, 1, 10, 51, 0, 0, time.UTC), "en-US", "8/1/2020"},
		{"older pt", time.Date(2020, 8, 1, 10, 51, 0, 0, time.UTC), "pt-PT", "01/08/2020"},
		{"older de", time.Date(2020, 8, 1, 10, 51, 0, 0, time.UTC), "de-DE", "1.8.2020"},
		{"older gb", time.Date(2020, 8, 1, 10, 51, 0, 0, time.UTC), "en-GB", "01/08/2020"},
		{"unknown locale", time.Date(2020, 8, 1, 10, 51, 0, 0, time.UTC), "", "8/1/2020"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MovementDate(tc.date, now, tc.locale); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDateTime(t *testing.T) {
	at := time.Date(2020, 8, 3, 14, 5, 0, 0, time.UTC)

	cases := map[string]string{
		"en-US": "8/3/2020, 2:05 PM",
		"pt-PT": "03/08/2020, 14:05",
		"en-GB": "03/08/2020, 14:05",
		"de-DE": "3.8.2020, 14:05",
	}
	for locale, want := range cases {
		if got := DateTime(at, locale); got != want {
			t.Fatalf("DateTime(%s) = %q, want %q", locale, got, want)
		}
	}
}
