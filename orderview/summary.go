package orderview

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"go-storefront/models"
)

// Pricing fallbacks used when the backend did not record a value.
var (
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingCost      = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.08")
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "$"

// FreeLabel replaces a zero shipping cost in displays.
const FreeLabel = "Free"

// Line is a priced item as the summary sees it.
type Line struct {
	Price    float64
	Quantity int
}

// Summary is the monetary breakdown of a cart or order, rounded to cents.
type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// SummaryLine is one displayed row of a summary.
type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summarize computes the breakdown for lines. shipping and tax are the
// authoritative backend values and win when non-nil; otherwise the flat
// shipping and tax-rate fallbacks apply. The subtotal is always recomputed
// from the lines.
func Summarize(lines []Line, shipping, tax *float64) Summary {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	var s Summary
	s.Subtotal = subtotal
	if shipping != nil {
		s.Shipping = decimal.NewFromFloat(*shipping).Round(2)
	} else if subtotal.GreaterThan(FreeShippingThreshold) {
		s.Shipping = decimal.Zero
	} else {
		s.Shipping = FlatShippingCost
	}
	if tax != nil {
		s.Tax = decimal.NewFromFloat(*tax).Round(2)
	} else {
		s.Tax = subtotal.Mul(TaxRate).Round(2)
	}
	s.Total = s.Subtotal.Add(s.Shipping).Add(s.Tax)
	return s
}

// SummarizeOrder recomputes an order's breakdown from its items, honouring
// any shipping and tax the backend stored.
func SummarizeOrder(o *models.Order) Summary {
	lines := make([]Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, Line{Price: it.Price, Quantity: it.Quantity})
	}
	return Summarize(lines, o.ShippingCost, o.Tax)
}

// SummarizeCart computes the breakdown for a cart with the client-side
// fallbacks.
func SummarizeCart(c *models.Cart) Summary {
	lines := make([]Line, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, Line{Price: it.Price, Quantity: it.Quantity})
	}
	return Summarize(lines, nil, nil)
}

// FreeShipping reports whether the shipping line displays as free.
func (s Summary) FreeShipping() bool {
	return s.Shipping.IsZero()
}

// Lines renders the summary rows in display order.
func (s Summary) Lines() []SummaryLine {
	shipping := FormatMoney(s.Shipping)
	if s.FreeShipping() {
		shipping = FreeLabel
	}
	return []SummaryLine{
		{Label: "Subtotal", Value: FormatMoney(s.Subtotal)},
		{Label: "Shipping", Value: shipping},
		{Label: "Tax", Value: FormatMoney(s.Tax)},
		{Label: "Total", Value: FormatMoney(s.Total)},
	}
}

// Amounts returns the summary as float64s for storage.
func (s Summary) Amounts() (subtotal, shipping, tax, total float64) {
	return s.Subtotal.InexactFloat64(), s.Shipping.InexactFloat64(), s.Tax.InexactFloat64(), s.Total.InexactFloat64()
}

// FormatMoney renders d with the currency symbol and exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + CurrencySymbol + d.Neg().StringFixed(2)
	}
	return CurrencySymbol + d.StringFixed(2)
}

// FormatAmount is FormatMoney for a float64 amount.
func FormatAmount(v float64) string {
	return FormatMoney(decimal.NewFromFloat(v))
}

// ParseMoney reads a value produced by FormatMoney. "Free" parses as zero.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == FreeLabel {
		return decimal.Zero, nil
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, CurrencySymbol)
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse money %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
