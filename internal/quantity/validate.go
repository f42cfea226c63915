package quantity

import (
	"errors"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// ErrOutOfRange is wrapped by every rejection of a committed value.
var ErrOutOfRange = errors.New("quantity: out of range or not an integer")

// decimalText is plain decimal notation with an optional exponent. Hex,
// underscores and the Inf and NaN spellings are not field values.
var decimalText = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// maxSafeInteger is the largest integer a float64 holds without gaps.
const maxSafeInteger = 1<<53 - 1

// Parse reads field text as a number. Surrounding space is ignored and an
// empty field reads as zero. ok is false for text that is not a number.
func Parse(raw string) (value float64, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, true
	}
	if !decimalText.MatchString(trimmed) {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// IsInteger reports whether v is a whole number representable without loss.
func IsInteger(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v == math.Trunc(v) && math.Abs(v) <= maxSafeInteger
}

// Validate parses raw and checks it against bounds. Rejections are
// AppErrors with code OUT_OF_RANGE wrapping ErrOutOfRange.
func Validate(raw string, bounds Bounds) (int, error) {
	bounds = bounds.Normalized()
	v, ok := Parse(raw)
	if ok && IsInteger(v) && bounds.Contains(v) {
		return int(v), nil
	}
	return 0, rangeError(bounds)
}

func rangeError(bounds Bounds) *common.AppError {
	return &common.AppError{
		Code:       "OUT_OF_RANGE",
		Message:    bounds.Message(),
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        ErrOutOfRange,
		Details: map[string]string{
			"min": FormatBound(bounds.Min),
			"max": FormatBound(bounds.Max),
		},
	}
}
