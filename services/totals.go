package services

import "github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"

// DefaultFallbackShippingCost is charged until the shipping settings resolve.
const DefaultFallbackShippingCost = 50.0

// LineTotal returns the discounted price of a cart line.
func LineTotal(line models.CartLine) float64 {
	price := line.UnitPrice
	if line.SizePrice != nil {
		price = *line.SizePrice
	}
	return price * (1 - line.DiscountPercentage/100) * float64(line.Quantity)
}

// Subtotal sums the line totals of a cart.
func Subtotal(lines []models.CartLine) float64 {
	var subtotal float64
	for _, line := range lines {
		subtotal += LineTotal(line)
	}
	return subtotal
}

// ShippingFor returns the shipping charge for subtotal. A nil settings value means
// the rate has not resolved yet and fallback is used.
func ShippingFor(subtotal float64, settings *models.ShippingSettings, fallback float64) float64 {
	if settings == nil {
		return fallback
	}
	if settings.FreeShippingThreshold != nil && subtotal >= *settings.FreeShippingThreshold {
		return 0
	}
	return settings.ShippingCost
}

// ComputeTotals derives the order totals for a cart.
func ComputeTotals(lines []models.CartLine, settings *models.ShippingSettings, discount, fallback float64) models.OrderTotals {
	subtotal := Subtotal(lines)
	shipping := ShippingFor(subtotal, settings, fallback)
	return models.OrderTotals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal + shipping - discount,
	}
}
