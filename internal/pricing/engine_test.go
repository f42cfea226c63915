package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTotalRoundsToCents(t *testing.T) {
	cases := []struct {
		price string
		qty   int
		want  string
	}{
		{"7.77", 9, "69.93"},
		{"7.77", 1, "7.77"},
		{"0.333", 3, "1.00"},
		{"19.995", 1, "20.00"},
		{"10", 0, "0.00"},
		{"0", 42, "0.00"},
		{"2.5", -2, "-5.00"},
		// exact half-cents round away from zero, with no binary float error
		{"1.005", 1, "1.01"},
		{"1.115", 3, "3.35"},
	}
	for _, tc := range cases {
		price := decimal.RequireFromString(tc.price)
		got := FormatTotal(Total(price, tc.qty))
		if got != tc.want {
			t.Fatalf("Total(%s, %d) = %s, want %s", tc.price, tc.qty, got, tc.want)
		}
	}
}

func TestComputeSkipsEmptyLines(t *testing.T) {
	summary := Compute([]Item{
		{Qty: 2, UnitPrice: decimal.RequireFromString("1.25")},
		{Qty: 0, UnitPrice: decimal.RequireFromString("99")},
		{Qty: 3, UnitPrice: decimal.RequireFromString("7.77")},
	})
	require.Len(t, summary.Lines, 3)
	require.Equal(t, "2.50", FormatTotal(summary.Lines[0].Total))
	require.True(t, summary.Lines[1].Total.IsZero())
	require.Equal(t, "25.81", FormatTotal(summary.Total))
}
