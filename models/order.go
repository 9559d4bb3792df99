package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateOrderInput is the payload of the order service create operation.
type CreateOrderInput struct {
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Country         string   `json:"country"`
	City            string   `json:"city"`
	District        string   `json:"district"`
	Street          string   `json:"street"`
	PostalCode      string   `json:"postalCode,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	PaymentMethod   string   `json:"paymentMethod"`
	CouponCode      string   `json:"couponCode,omitempty"`
	CouponDiscount  *float64 `json:"couponDiscount,omitempty"`
	StripePaymentID string   `json:"stripePaymentId,omitempty"`
}

// CreateOrderResult identifies the order that was created.
type CreateOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Order is persisted when no remote order service is configured.
type Order struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber       string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	CheckoutSessionID string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"checkout_session_id"`
	UserID            string         `gorm:"type:varchar(128);not null;index" json:"user_id"`
	FullName          string         `gorm:"type:varchar(256);not null" json:"full_name"`
	Email             string         `gorm:"type:varchar(256);not null" json:"email"`
	Phone             string         `gorm:"type:varchar(32);not null" json:"phone"`
	Country           string         `gorm:"type:varchar(128);not null" json:"country"`
	City              string         `gorm:"type:varchar(128);not null" json:"city"`
	District          string         `gorm:"type:varchar(128);not null" json:"district"`
	Street            string         `gorm:"type:varchar(512);not null" json:"street"`
	PostalCode        string         `gorm:"type:varchar(32)" json:"postal_code,omitempty"`
	Notes             string         `gorm:"type:text" json:"notes,omitempty"`
	PaymentMethod     string         `gorm:"type:varchar(32);not null" json:"payment_method"`
	CouponCode        string         `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	CouponDiscount    float64        `gorm:"not null;default:0" json:"coupon_discount"`
	StripePaymentID   *string        `gorm:"type:varchar(255);uniqueIndex" json:"stripe_payment_id,omitempty"`
	Status            string         `gorm:"type:varchar(32);not null;default:'pending'" json:"status"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
