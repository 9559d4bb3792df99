package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCartStore struct {
	carts   map[string]*models.Cart
	saveErr error
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{carts: map[string]*models.Cart{}}
}

func (m *memoryCartStore) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	if c, ok := m.carts[userID]; ok {
		cp := *c
		cp.Items = append([]models.CartLine(nil), c.Items...)
		return &cp, nil
	}
	return &models.Cart{UserID: userID, Items: []models.CartLine{}}, nil
}

func (m *memoryCartStore) SaveCart(ctx context.Context, cart *models.Cart) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *cart
	m.carts[cart.UserID] = &cp
	return nil
}

func (m *memoryCartStore) RemoveCoupon(ctx context.Context, userID string) error {
	if c, ok := m.carts[userID]; ok {
		c.Coupon = nil
	}
	return nil
}

type mockCoupons struct {
	resp      *models.ValidateCouponResponse
	err       error
	cartTotal float64
}

func (m *mockCoupons) ValidateCoupon(ctx context.Context, code string, cartTotal float64) (*models.ValidateCouponResponse, error) {
	m.cartTotal = cartTotal
	return m.resp, m.err
}

func TestCartService_AddItemMergesSameVariant(t *testing.T) {
	store := newMemoryCartStore()
	svc := services.NewCartService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", models.CartLine{ProductID: "p1", Size: "M", UnitPrice: 100, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-1", models.CartLine{ProductID: "p1", Size: "L", UnitPrice: 100, Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "user-1", models.CartLine{ProductID: "p1", Size: "M", UnitPrice: 100, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 1, cart.Items[1].Quantity)
}

func TestCartService_RemoveItem(t *testing.T) {
	store := newMemoryCartStore()
	svc := services.NewCartService(store, nil, nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "user-1", models.CartLine{ProductID: "p1", UnitPrice: 100, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, "user-1", "p2", "")
	assert.ErrorIs(t, err, services.ErrItemNotFound)

	cart, err := svc.RemoveItem(ctx, "user-1", "p1", "")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_ApplyCoupon(t *testing.T) {
	store := newMemoryCartStore()
	coupons := &mockCoupons{resp: &models.ValidateCouponResponse{Valid: true, Code: "SAVE20", DiscountAmount: 20}}
	svc := services.NewCartService(store, coupons, nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "user-1", models.CartLine{ProductID: "p1", UnitPrice: 100, Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.ApplyCoupon(ctx, "user-1", "save20")

	require.NoError(t, err)
	assert.Equal(t, 200.0, coupons.cartTotal)
	require.NotNil(t, cart.Coupon)
	assert.Equal(t, "SAVE20", cart.Coupon.Code)
	assert.Equal(t, 20.0, cart.CouponDiscount())

	cart, err = svc.RemoveCoupon(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, cart.Coupon)
}

func TestCartService_ApplyCouponErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no promotion service", func(t *testing.T) {
		svc := services.NewCartService(newMemoryCartStore(), nil, nil)
		_, err := svc.ApplyCoupon(ctx, "user-1", "SAVE20")
		assert.ErrorIs(t, err, services.ErrCouponsUnavailable)
	})

	t.Run("empty cart", func(t *testing.T) {
		svc := services.NewCartService(newMemoryCartStore(), &mockCoupons{}, nil)
		_, err := svc.ApplyCoupon(ctx, "user-1", "SAVE20")
		assert.ErrorIs(t, err, services.ErrEmptyCart)
	})

	t.Run("rejected", func(t *testing.T) {
		store := newMemoryCartStore()
		store.carts["user-1"] = &models.Cart{UserID: "user-1", Items: []models.CartLine{{ProductID: "p1", UnitPrice: 10, Quantity: 1}}}
		coupons := &mockCoupons{resp: &models.ValidateCouponResponse{Valid: false, Message: "Coupon expired"}}
		svc := services.NewCartService(store, coupons, nil)

		_, err := svc.ApplyCoupon(ctx, "user-1", "OLD")
		var rejected *services.CouponRejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "Coupon expired", rejected.Reason)
	})

	t.Run("promotion service down", func(t *testing.T) {
		store := newMemoryCartStore()
		store.carts["user-1"] = &models.Cart{UserID: "user-1", Items: []models.CartLine{{ProductID: "p1", UnitPrice: 10, Quantity: 1}}}
		svc := services.NewCartService(store, &mockCoupons{err: errors.New("connection refused")}, nil)

		_, err := svc.ApplyCoupon(ctx, "user-1", "SAVE20")
		assert.ErrorContains(t, err, "connection refused")
	})
}
