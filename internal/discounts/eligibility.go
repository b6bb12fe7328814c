package discounts

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
)

var centsPerHundred = decimal.NewFromInt(100)

// Eligible reports whether a discount can be applied right now against the
// given subtotal. Every condition must hold: the discount is active, the
// current time falls inside its window, its usage cap is not exhausted, and
// the subtotal clears the minimum purchase.
func Eligible(d *models.Discount, now time.Time, subtotalCents int64) bool {
	if d == nil || !d.IsActive {
		return false
	}
	if now.Before(d.StartsAt) || now.After(d.EndsAt) {
		return false
	}
	if d.MaxUses != nil && d.UsedCount >= *d.MaxUses {
		return false
	}
	if d.MinPurchaseCents != nil && subtotalCents < *d.MinPurchaseCents {
		return false
	}
	return true
}

// Amount computes the cents a discount takes off the given subtotal.
// Percentage discounts floor the result; fixed discounts never exceed the
// subtotal. The returned amount is always in [0, subtotalCents].
func Amount(d *models.Discount, subtotalCents int64) int64 {
	if d == nil || subtotalCents <= 0 {
		return 0
	}

	var amount int64
	switch d.Type {
	case enums.DiscountTypePercentage:
		amount = d.Value.
			Mul(decimal.NewFromInt(subtotalCents)).
			Div(centsPerHundred).
			Floor().
			IntPart()
	case enums.DiscountTypeFixedAmount:
		amount = d.Value.Floor().IntPart()
	default:
		return 0
	}

	if amount < 0 {
		return 0
	}
	if amount > subtotalCents {
		return subtotalCents
	}
	return amount
}

// LineAmount computes the cents a product discount takes off a cart line.
// Fixed discounts reduce each unit's price, clamped at zero, so the reduction
// scales with quantity; percentage discounts apply to the line subtotal.
func LineAmount(d *models.Discount, unitPriceCents int64, quantity int) int64 {
	if d == nil || unitPriceCents <= 0 || quantity <= 0 {
		return 0
	}

	if d.Type == enums.DiscountTypeFixedAmount {
		perUnit := d.Value.Floor().IntPart()
		if perUnit < 0 {
			return 0
		}
		if perUnit > unitPriceCents {
			perUnit = unitPriceCents
		}
		return perUnit * int64(quantity)
	}

	return Amount(d, unitPriceCents*int64(quantity))
}
