package services_test

import (
	"testing"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name string
		line models.CartLine
		want float64
	}{
		{"unit price", models.CartLine{UnitPrice: 120, Quantity: 2}, 240},
		{"size price wins", models.CartLine{UnitPrice: 120, SizePrice: floatPtr(150), Quantity: 1}, 150},
		{"percentage discount", models.CartLine{UnitPrice: 200, DiscountPercentage: 25, Quantity: 2}, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, services.LineTotal(tt.line), 1e-9)
		})
	}
}

func TestShippingFor(t *testing.T) {
	flat := &models.ShippingSettings{ShippingCost: 15}
	withThreshold := &models.ShippingSettings{ShippingCost: 15, FreeShippingThreshold: floatPtr(150)}

	assert.Equal(t, 50.0, services.ShippingFor(10, nil, 50))
	assert.Equal(t, 15.0, services.ShippingFor(1000, flat, 50))
	assert.Equal(t, 15.0, services.ShippingFor(149.99, withThreshold, 50))
	assert.Equal(t, 0.0, services.ShippingFor(150, withThreshold, 50))
}

func TestComputeTotals(t *testing.T) {
	lines := []models.CartLine{
		{ProductID: "p1", UnitPrice: 100, Quantity: 1},
		{ProductID: "p2", UnitPrice: 100, Quantity: 1},
	}
	settings := &models.ShippingSettings{ShippingCost: 15, FreeShippingThreshold: floatPtr(150)}

	totals := services.ComputeTotals(lines, settings, 20, 50)

	assert.Equal(t, models.OrderTotals{Subtotal: 200, Shipping: 0, Discount: 20, Total: 180}, totals)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := services.ComputeTotals(nil, nil, 0, 50)
	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 50.0, totals.Total)
}
