package storefront

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/quantity"
)

// QuoteRequest is the payload of POST /api/v1/quantity/quote. Value is the
// raw field text; Min and Max fall back to the storefront bounds.
type QuoteRequest struct {
	Value string   `json:"value" validate:"max=64"`
	Price string   `json:"price" validate:"required,numeric"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// QuoteResponse carries the accepted count and its total.
type QuoteResponse struct {
	Count int    `json:"count"`
	Field string `json:"field"`
	Total string `json:"total"`
}

// Quote handles POST /api/v1/quantity/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		common.WriteError(w, common.BadRequest("invalid JSON body", nil))
		return
	}
	req.Price = strings.TrimSpace(req.Price)
	if err := h.validator().Struct(req); err != nil {
		common.WriteError(w, common.BadRequest("invalid quote request", validationDetails(err)))
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		common.WriteError(w, common.BadRequest("price must be a non-negative number", nil))
		return
	}
	bounds := h.Bounds.Normalized()
	if req.Min != nil || req.Max != nil {
		bounds = quantity.NewBounds(req.Min, req.Max)
	}
	if bounds.Min > bounds.Max {
		common.WriteError(w, common.BadRequest("min must not exceed max", nil))
		return
	}

	in := &quantity.Input{Price: price, Bounds: bounds, Notifier: h.Notifier}
	count, err := in.Change(r.Context(), req.Value)
	if err != nil {
		h.Metrics.QuantityChange(obs.ResultRejected)
		common.WriteError(w, err)
		return
	}
	h.Metrics.QuantityChange(obs.ResultAccepted)
	common.JSON(w, http.StatusOK, QuoteResponse{
		Count: count,
		Field: quantity.FieldValue(count),
		Total: pricing.FormatTotal(pricing.Total(price, count)),
	})
}

func (h *Handler) validator() *validator.Validate {
	if h.Validate != nil {
		return h.Validate
	}
	return validator.New()
}

func validationDetails(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return out
}
