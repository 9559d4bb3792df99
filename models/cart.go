package models

import "time"

// CartLine is a single product entry in a cart.
type CartLine struct {
	ProductID          string   `json:"product_id" binding:"required"`
	Name               string   `json:"name" binding:"required"`
	UnitPrice          float64  `json:"unit_price" binding:"gte=0"`
	Size               string   `json:"size,omitempty"`
	SizePrice          *float64 `json:"size_price,omitempty" binding:"omitempty,gte=0"`
	DiscountPercentage float64  `json:"discount_percentage" binding:"gte=0,lte=100"`
	Quantity           int      `json:"quantity" binding:"required,gt=0"`
}

// AppliedCoupon is a coupon validated against the cart, with its absolute discount.
type AppliedCoupon struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
}

// Cart is the per-user cart kept in Redis.
type Cart struct {
	UserID          string         `json:"user_id"`
	Items           []CartLine     `json:"items"`
	Coupon          *AppliedCoupon `json:"coupon,omitempty"`
	PendingCheckout bool           `json:"pending_checkout"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// CouponDiscount returns the active coupon discount, or zero.
func (c *Cart) CouponDiscount() float64 {
	if c == nil || c.Coupon == nil {
		return 0
	}
	return c.Coupon.Discount
}

// ApplyCouponRequest is the body of POST /cart/coupon.
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateCouponRequest is sent to the promotion service.
type ValidateCouponRequest struct {
	Code      string  `json:"code"`
	CartTotal float64 `json:"cart_total"`
}

// ValidateCouponResponse is returned by the promotion service.
type ValidateCouponResponse struct {
	Valid          bool    `json:"valid"`
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discount_amount"`
	Message        string  `json:"message,omitempty"`
}
