package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatDurationUnderOneDay(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Minute, "00 hours 05 minutes"},
		{2 * time.Hour, "02 hours 00 minutes"},
		{0, "00 hours 00 minutes"},
		{23*time.Hour + 59*time.Minute, "23 hours 59 minutes"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.d, tc.want, got)
		}
	}
}

func TestFormatDurationDayBoundary(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{24 * time.Hour, "1 days 00 hours 00 minutes"},
		{2*24*time.Hour + 5*time.Hour + 30*time.Minute, "2 days 05 hours 30 minutes"},
		{6 * 24 * time.Hour, "6 days 00 hours 00 minutes"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.d, tc.want, got)
		}
	}
}

func TestFormatOrderCountPluralization(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "0 orders"},
		{1, "1 order"},
		{2, "2 orders"},
		{3, "3 orders"},
	}
	for _, tc := range cases {
		if got := FormatOrderCount(tc.n); got != tc.want {
			t.Fatalf("n=%d: expected %q, got %q", tc.n, tc.want, got)
		}
	}
}

func TestFormatItemCountPluralization(t *testing.T) {
	if got := FormatItemCount(16); got != "16 items" {
		t.Fatalf("expected %q, got %q", "16 items", got)
	}
	if got := FormatItemCount(1); got != "1 item" {
		t.Fatalf("expected %q, got %q", "1 item", got)
	}
}

func TestFormatCurrencyDollarPrefix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"192", "$192.00"},
		{"147.5", "$147.50"},
		{"0", "$0.00"},
		{"48.005", "$48.01"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
