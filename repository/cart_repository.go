package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

// ErrCartConflict is returned when a cart kept changing during an update.
var ErrCartConflict = errors.New("cart modified concurrently")

// RedisCartRepository stores one JSON document per user cart.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func (r *RedisCartRepository) getKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

// GetCart returns the user's cart, or an empty cart when none is stored.
func (r *RedisCartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	return r.read(ctx, r.client, userID)
}

func (r *RedisCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.getKey(cart.UserID), data, r.ttl).Err()
}

func (r *RedisCartRepository) DeleteCart(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.getKey(userID)).Err()
}

// RemoveCoupon drops the applied coupon, if any.
func (r *RedisCartRepository) RemoveCoupon(ctx context.Context, userID string) error {
	return r.update(ctx, userID, func(cart *models.Cart) {
		cart.Coupon = nil
	})
}

// BeginCheckout flags the cart as the source of an open checkout.
func (r *RedisCartRepository) BeginCheckout(ctx context.Context, userID string) error {
	return r.update(ctx, userID, func(cart *models.Cart) {
		cart.PendingCheckout = true
	})
}

// CompleteCheckout empties the cart once its order exists.
func (r *RedisCartRepository) CompleteCheckout(ctx context.Context, userID string) error {
	return r.update(ctx, userID, func(cart *models.Cart) {
		cart.Items = nil
		cart.Coupon = nil
		cart.PendingCheckout = false
	})
}

// update applies fn inside a WATCH/MULTI transaction, retrying on conflicts.
func (r *RedisCartRepository) update(ctx context.Context, userID string, fn func(cart *models.Cart)) error {
	key := r.getKey(userID)

	txf := func(tx *redis.Tx) error {
		cart, err := r.read(ctx, tx, userID)
		if err != nil {
			return err
		}
		fn(cart)
		cart.UpdatedAt = time.Now()

		data, err := json.Marshal(cart)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrCartConflict
}

func (r *RedisCartRepository) read(ctx context.Context, c redis.Cmdable, userID string) (*models.Cart, error) {
	data, err := c.Get(ctx, r.getKey(userID)).Result()
	if err == redis.Nil {
		return &models.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	if cart.UserID == "" {
		cart.UserID = userID
	}
	return &cart, nil
}
