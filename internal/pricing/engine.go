package pricing

import "github.com/shopspring/decimal"

// Scale is the number of decimal places prices are displayed with.
const Scale = 2

// Item describes a line used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice decimal.Decimal
}

// Line is an item together with its computed total.
type Line struct {
	Item
	Total decimal.Decimal
}

// Summary aggregates computed line totals.
type Summary struct {
	Lines []Line
	Total decimal.Decimal
}

// Total returns price × qty rounded to two decimal places.
func Total(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty))).Round(Scale)
}

// FormatTotal renders a total with exactly two decimal places.
func FormatTotal(total decimal.Decimal) string {
	return total.StringFixed(Scale)
}

// Compute totals every line and the summary. Lines with a non-positive
// quantity are kept but contribute nothing.
func Compute(items []Item) Summary {
	summary := Summary{Lines: make([]Line, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		line := Line{Item: it, Total: decimal.Zero}
		if it.Qty > 0 {
			line.Total = Total(it.UnitPrice, it.Qty)
		}
		summary.Lines = append(summary.Lines, line)
		summary.Total = summary.Total.Add(line.Total)
	}
	return summary
}
