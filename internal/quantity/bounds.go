package quantity

import (
	"fmt"
	"math"
	"strconv"
)

// Bounds is the inclusive range a quantity must fall into.
// The zero value means DefaultBounds; use Range or NewBounds for an explicit
// range, including [0, 0].
type Bounds struct {
	Min float64
	Max float64
	set bool
}

// DefaultBounds accepts any positive integer.
func DefaultBounds() Bounds {
	return Bounds{Min: 1, Max: math.Inf(1), set: true}
}

// Range is the explicit range [lo, hi].
func Range(lo, hi float64) Bounds {
	return Bounds{Min: lo, Max: hi, set: true}
}

// NewBounds fills missing limits with the defaults.
func NewBounds(lo, hi *float64) Bounds {
	b := DefaultBounds()
	if lo != nil {
		b.Min = *lo
	}
	if hi != nil {
		b.Max = *hi
	}
	return b
}

// Normalized resolves the zero value to DefaultBounds.
func (b Bounds) Normalized() Bounds {
	if !b.set && b.Min == 0 && b.Max == 0 {
		return DefaultBounds()
	}
	b.set = true
	return b
}

// Contains reports whether v lies inside the range, limits included.
func (b Bounds) Contains(v float64) bool {
	b = b.Normalized()
	return v >= b.Min && v <= b.Max
}

// Message is the text shown when a value is rejected.
func (b Bounds) Message() string {
	b = b.Normalized()
	return fmt.Sprintf("Please enter an integer value from %s to %s inclusive!", FormatBound(b.Min), FormatBound(b.Max))
}

// FormatBound prints a limit the way it is shown to shoppers.
func FormatBound(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Attr renders a limit for an HTML input attribute; unbounded limits render empty.
func Attr(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
