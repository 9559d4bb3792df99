package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"go.uber.org/zap"
)

var (
	ErrCouponsUnavailable = errors.New("coupon service not configured")
	ErrItemNotFound       = errors.New("item not in cart")
)

// CouponRejectedError carries the promotion service's reason for refusing a coupon.
type CouponRejectedError struct {
	Code   string
	Reason string
}

func (e *CouponRejectedError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

// CartStore is the full cart store used by the cart endpoints.
type CartStore interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	RemoveCoupon(ctx context.Context, userID string) error
}

// CouponValidator checks a coupon code against a cart subtotal.
type CouponValidator interface {
	ValidateCoupon(ctx context.Context, code string, cartTotal float64) (*models.ValidateCouponResponse, error)
}

// CartService implements the cart endpoints.
type CartService struct {
	store   CartStore
	coupons CouponValidator
	logger  *zap.Logger
}

// NewCartService creates a CartService. coupons may be nil.
func NewCartService(store CartStore, coupons CouponValidator, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{store: store, coupons: coupons, logger: logger}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	return s.store.GetCart(ctx, userID)
}

// AddItem adds line to the cart, merging quantities for the same product and size.
func (s *CartService) AddItem(ctx context.Context, userID string, line models.CartLine) (*models.Cart, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == line.ProductID && cart.Items[i].Size == line.Size {
			cart.Items[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, line)
	}

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem removes the line for productID and size.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID, size string) (*models.Cart, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range cart.Items {
		if item.ProductID == productID && item.Size == size {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ApplyCoupon validates code against the current subtotal and stores its discount.
func (s *CartService) ApplyCoupon(ctx context.Context, userID, code string) (*models.Cart, error) {
	if s.coupons == nil {
		return nil, ErrCouponsUnavailable
	}

	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	resp, err := s.coupons.ValidateCoupon(ctx, code, Subtotal(cart.Items))
	if err != nil {
		return nil, fmt.Errorf("validate coupon: %w", err)
	}
	if !resp.Valid {
		return nil, &CouponRejectedError{Code: code, Reason: resp.Message}
	}

	cart.Coupon = &models.AppliedCoupon{Code: resp.Code, Discount: resp.DiscountAmount}
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info("Coupon applied to cart",
		zap.String("user_id", userID),
		zap.String("coupon_code", resp.Code),
		zap.Float64("discount", resp.DiscountAmount),
	)
	return cart, nil
}

func (s *CartService) RemoveCoupon(ctx context.Context, userID string) (*models.Cart, error) {
	if err := s.store.RemoveCoupon(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.GetCart(ctx, userID)
}
