package booking

import "lokonnect/internal/models"

// Totals is the computed price breakdown for a checkout.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	PlatformFee float64 `json:"platformFee"`
	Total       float64 `json:"total"`
}

// ComputeTotals derives the order totals: subtotal is the sum of line
// totals, the discount is the resolver's output clamped to its
// configured maximum for percentage discounts, the platform fee is
// added after the discount, and the final total never goes below zero.
// The result is the same regardless of whether the discount was applied
// before or after the fee was fetched.
func ComputeTotals(lines []models.TicketLine, applied *models.AppliedDiscount, platformFee float64) Totals {
	subtotal := models.Subtotal(lines)

	var discount float64
	if applied != nil {
		discount = applied.DiscountAmount
		if applied.Type == models.DiscountPercentage && applied.MaxDiscount > 0 && discount > applied.MaxDiscount {
			discount = applied.MaxDiscount
		}
		if discount > subtotal {
			discount = subtotal
		}
		if discount < 0 {
			discount = 0
		}
	}

	total := subtotal - discount + platformFee
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal:    subtotal,
		Discount:    discount,
		PlatformFee: platformFee,
		Total:       total,
	}
}
