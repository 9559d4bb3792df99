package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(cart *mockCart, ttl time.Duration) *services.CheckoutManager {
	return services.NewCheckoutManager(services.CheckoutDeps{
		Rates:   &mockRates{settings: &models.ShippingSettings{ShippingCost: 15}},
		Intents: &mockIntents{resp: &models.PaymentIntentResponse{ClientSecret: "pi_777_secret_x", PaymentIntentID: "pi_777"}},
		Orders:  &mockOrders{},
	}, cart, ttl, nil)
}

func TestCheckoutManager_OpenEmptyCart(t *testing.T) {
	m := newManager(&mockCart{}, time.Hour)

	_, err := m.Open(context.Background(), "user-1")

	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Equal(t, 0, m.Len())
}

func TestCheckoutManager_OpenAndGet(t *testing.T) {
	cart := &mockCart{cart: models.Cart{Items: []models.CartLine{{ProductID: "p1", UnitPrice: 10, Quantity: 1}}}}
	m := newManager(cart, time.Hour)

	c, err := m.Open(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID())
	assert.True(t, cart.cart.PendingCheckout)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(c.ID(), "user-1")
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = m.Get(c.ID(), "someone-else")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
	_, err = m.Get("missing", "user-1")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestCheckoutManager_FindByPaymentIntent(t *testing.T) {
	cart := &mockCart{cart: models.Cart{Items: []models.CartLine{{ProductID: "p1", UnitPrice: 10, Quantity: 1}}}}
	m := newManager(cart, time.Hour)
	ctx := context.Background()

	c, err := m.Open(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, c.UpdateShippingForm(validForm()))
	require.NoError(t, c.SetPaymentMethod(ctx, models.PaymentMethodStripeCard))
	require.NoError(t, c.SubmitShipping(ctx))

	found, ok := m.FindByPaymentIntent("pi_777")
	require.True(t, ok)
	assert.Same(t, c, found)

	_, ok = m.FindByPaymentIntent("pi_unknown")
	assert.False(t, ok)
}

func TestCheckoutManager_Sweep(t *testing.T) {
	cart := &mockCart{cart: models.Cart{Items: []models.CartLine{{ProductID: "p1", UnitPrice: 10, Quantity: 1}}}}
	m := newManager(cart, 30*time.Minute)
	ctx := context.Background()

	c, err := m.Open(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, c.UpdateShippingForm(validForm()))
	require.NoError(t, c.SetPaymentMethod(ctx, models.PaymentMethodStripeCard))
	require.NoError(t, c.SubmitShipping(ctx))

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Len())

	assert.Equal(t, 1, m.Sweep(time.Now().Add(time.Hour)))
	assert.Equal(t, 0, m.Len())
	_, ok := m.Lookup(c.ID())
	assert.False(t, ok)
	_, ok = m.FindByPaymentIntent("pi_777")
	assert.False(t, ok)
}
