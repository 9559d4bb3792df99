package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartTTL = 24 * time.Hour

func setupCartRepo(t *testing.T) (*repository.RedisCartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewRedisCartRepository(client, cartTTL), mr
}

func seedCart(t *testing.T, repo *repository.RedisCartRepository) {
	t.Helper()
	err := repo.SaveCart(context.Background(), &models.Cart{
		UserID: "user-1",
		Items:  []models.CartLine{{ProductID: "p1", Name: "Hoodie", UnitPrice: 100, Quantity: 2}},
		Coupon: &models.AppliedCoupon{Code: "SAVE20", Discount: 20},
	})
	require.NoError(t, err)
}

func TestGetCart_Missing(t *testing.T) {
	repo, _ := setupCartRepo(t)

	cart, err := repo.GetCart(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID)
	assert.True(t, cart.IsEmpty())
}

func TestSaveCart_RoundTripWithTTL(t *testing.T) {
	repo, mr := setupCartRepo(t)
	seedCart(t, repo)

	cart, err := repo.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 20.0, cart.CouponDiscount())
	assert.Equal(t, cartTTL, mr.TTL("cart:user:user-1"))
}

func TestCheckoutLifecycle(t *testing.T) {
	repo, mr := setupCartRepo(t)
	seedCart(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.BeginCheckout(ctx, "user-1"))
	cart, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, cart.PendingCheckout)
	assert.Len(t, cart.Items, 1)

	require.NoError(t, repo.RemoveCoupon(ctx, "user-1"))
	cart, err = repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, cart.Coupon)
	assert.Len(t, cart.Items, 1)

	require.NoError(t, repo.CompleteCheckout(ctx, "user-1"))
	cart, err = repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.False(t, cart.PendingCheckout)
	assert.Equal(t, cartTTL, mr.TTL("cart:user:user-1"))
}

func TestDeleteCart(t *testing.T) {
	repo, mr := setupCartRepo(t)
	seedCart(t, repo)

	require.NoError(t, repo.DeleteCart(context.Background(), "user-1"))
	assert.False(t, mr.Exists("cart:user:user-1"))
}

func TestGetCart_CorruptDocument(t *testing.T) {
	repo, mr := setupCartRepo(t)
	require.NoError(t, mr.Set("cart:user:user-1", "{not json"))

	_, err := repo.GetCart(context.Background(), "user-1")
	assert.Error(t, err)
}
