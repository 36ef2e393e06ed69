package orders

import (
	"github.com/shopspring/decimal"
)

// Storefront checkout pricing: flat shipping and a single tax rate.
var (
	DefaultShipping = decimal.RequireFromString("4.99")
	DefaultTaxRate  = decimal.RequireFromString("0.08")
)

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums price times quantity over items.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// Quote prices items the way the checkout page does, rounded to cents.
func Quote(items []LineItem) Totals {
	subtotal := Subtotal(items).Round(2)
	tax := subtotal.Mul(DefaultTaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Shipping: DefaultShipping,
		Tax:      tax,
		Total:    subtotal.Add(DefaultShipping).Add(tax),
	}
}
