package quantity

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// Input is the quantity field of a product form. It owns no quantity of its
// own: Value is supplied by the owner and accepted changes go back through
// SetCount.
type Input struct {
	Value    int
	Price    decimal.Decimal
	Bounds   Bounds
	Styles   Styles
	SetCount func(int)
	SetText  func(string)
	Notifier notify.Notifier
}

// Styles holds the CSS class names applied to the rendered form.
type Styles struct {
	Form            string
	Label           string
	Input           string
	TotalPrice      string
	TotalPriceTitle string
	TotalPriceValue string
}

// DefaultStyles are the class names used by the storefront stylesheet.
func DefaultStyles() Styles {
	return Styles{
		Form:            "count-form",
		Label:           "count-label",
		Input:           "count-input",
		TotalPrice:      "total-price",
		TotalPriceTitle: "total-price-title",
		TotalPriceValue: "total-price-value",
	}
}

// View is what gets rendered for the current value and price.
type View struct {
	Field      string
	Total      string
	Min        string
	Max        string
	Prohibited string
	Styles     Styles
}

// View derives the rendered state. It is recomputed on every call.
func (in *Input) View() View {
	b := in.Bounds.Normalized()
	return View{
		Field:      FieldValue(in.Value),
		Total:      pricing.FormatTotal(in.Total()),
		Min:        Attr(b.Min),
		Max:        Attr(b.Max),
		Prohibited: Prohibited,
		Styles:     in.Styles,
	}
}

// Total is price × value rounded to cents.
func (in *Input) Total() decimal.Decimal {
	return pricing.Total(in.Price, in.Value)
}

// FieldValue renders the field text; zero and negative counts render empty.
func FieldValue(value int) string {
	if value <= 0 {
		return ""
	}
	return strconv.Itoa(value)
}

// AcceptKey applies the keystroke filter to the current field text.
func (in *Input) AcceptKey(current string, key rune) bool {
	return AcceptKey(current, key)
}

// Change commits raw field text. Accepted values are passed to SetCount and
// returned. Rejected values leave Value untouched, raise the range message
// through Notifier and return an error wrapping ErrOutOfRange.
func (in *Input) Change(ctx context.Context, raw string) (int, error) {
	n, err := Validate(raw, in.Bounds)
	if err != nil {
		if in.Notifier != nil {
			in.Notifier.Error(ctx, in.Bounds.Message())
		}
		return 0, err
	}
	if in.SetCount != nil {
		in.SetCount(n)
	}
	return n, nil
}

// Press types key into the field holding current. Filtered keys leave the
// text as it was and commit nothing; accepted keys are appended and the
// resulting text is committed.
func (in *Input) Press(ctx context.Context, current string, key rune) (string, error) {
	if !in.AcceptKey(current, key) {
		return current, nil
	}
	text := current + string(key)
	_, err := in.Change(ctx, text)
	return text, err
}

// ChangeText forwards free text to SetText without validation.
func (in *Input) ChangeText(raw string) {
	if in.SetText != nil {
		in.SetText(raw)
	}
}
