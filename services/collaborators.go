package services

import (
	"context"
	"errors"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
)

// CartProvider is the part of the cart store a checkout reads and updates.
type CartProvider interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	RemoveCoupon(ctx context.Context, userID string) error
	CompleteCheckout(ctx context.Context, userID string) error
}

// ShippingRateService resolves the store shipping rate. A nil result with a nil
// error means no rate is configured.
type ShippingRateService interface {
	GetShippingSettings(ctx context.Context) (*models.ShippingSettings, error)
}

// PaymentIntentService creates a payment intent and returns its client secret.
type PaymentIntentService interface {
	CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error)
}

// OrderService creates orders. It is called at most once per checkout session.
type OrderService interface {
	CreateOrder(ctx context.Context, userID, sessionID string, input models.CreateOrderInput) (*models.CreateOrderResult, error)
}

// CheckoutObserver is notified about checkout lifecycle changes.
// StepChanged, PaymentIntentCreated and PaymentFailed run under the session
// lock and must not block.
type CheckoutObserver interface {
	StepChanged(sessionID string, from, to models.Step)
	PaymentIntentCreated(sessionID, intentID string)
	PaymentFailed(sessionID, message string)
	OrderCreated(ctx context.Context, sessionID, userID string, order models.OrderSummary, input models.CreateOrderInput)
	OrderFailed(ctx context.Context, sessionID, userID string, input models.CreateOrderInput, err error)
}

var (
	ErrCheckoutCompleted       = errors.New("checkout already completed")
	ErrInvalidTransition       = errors.New("step transition not allowed")
	ErrSubmissionInFlight      = errors.New("order submission already in progress")
	ErrIntentInFlight          = errors.New("payment intent creation already in progress")
	ErrWrongPaymentMethod      = errors.New("operation not available for the selected payment method")
	ErrInvalidPaymentMethod    = errors.New("unknown payment method")
	ErrMissingPaymentReference = errors.New("payment reference is required")
	ErrPaymentIntentFailed     = errors.New("payment intent could not be created")
	ErrOrderCreationFailed     = errors.New("order could not be created")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrSessionNotFound         = errors.New("checkout session not found")
	ErrShippingRateUnavailable = errors.New("shipping rate could not be loaded")
)
