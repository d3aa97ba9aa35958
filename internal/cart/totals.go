package cart

import (
	"github.com/shopspring/decimal"

	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db/models"
)

// Totals is the priced summary of a set of cart lines.
type Totals struct {
	ItemCount int
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals prices the lines from current product prices. Tax is a flat
// percentage of the subtotal, shipping a flat fee charged only on non-empty
// carts. All figures are rounded to cents.
func ComputeTotals(items []models.CartItem, cfg config.CheckoutConfig) Totals {
	totals := Totals{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
		Total:    decimal.Zero,
	}

	for _, item := range items {
		if item.Product == nil {
			continue
		}
		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totals.Subtotal = totals.Subtotal.Add(line)
		totals.ItemCount += item.Quantity
	}

	if totals.ItemCount == 0 {
		return totals
	}

	totals.Subtotal = totals.Subtotal.Round(2)
	totals.Tax = totals.Subtotal.
		Mul(decimal.NewFromInt(int64(cfg.TaxRatePercent))).
		Div(decimal.NewFromInt(100)).
		Round(2)
	totals.Shipping = shippingFee(cfg)
	totals.Total = totals.Subtotal.Add(totals.Tax).Add(totals.Shipping)
	return totals
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}

func shippingFee(cfg config.CheckoutConfig) decimal.Decimal {
	fee, err := decimal.NewFromString(cfg.ShippingFlatFee)
	if err != nil {
		return decimal.RequireFromString("10.00")
	}
	return fee.Round(2)
}
