package models

import "time"

// CheckoutEvent is published to SNS for downstream consumers.
type CheckoutEvent struct {
	EventType         string    `json:"event_type"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	UserID            string    `json:"user_id"`
	OrderID           string    `json:"order_id,omitempty"`
	OrderNumber       string    `json:"order_number,omitempty"`
	PaymentMethod     string    `json:"payment_method"`
	StripePaymentID   string    `json:"stripe_payment_id,omitempty"`
	Total             float64   `json:"total,omitempty"`
	Error             string    `json:"error,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

const (
	EventCheckoutOrderCreated           = "checkout_order_created"
	EventCheckoutOrderFailedAfterCharge = "checkout_order_failed_after_charge"
)

// NotificationRequest is queued for the notification service.
type NotificationRequest struct {
	EventType string                 `json:"event_type"`
	UserID    string                 `json:"user_id"`
	Recipient string                 `json:"recipient"`
	Data      map[string]interface{} `json:"data"`
}
