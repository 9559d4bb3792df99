package models

// Step is one stage of the checkout flow.
type Step string

const (
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// PaymentMethod is the payment backend selected for a checkout.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodStripeCard     PaymentMethod = "stripe_card"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCashOnDelivery || m == PaymentMethodStripeCard
}

// OrderPaymentMethod is the value the order service expects for m.
func (m PaymentMethod) OrderPaymentMethod() string {
	if m == PaymentMethodStripeCard {
		return "stripe"
	}
	return string(m)
}

// ShippingForm holds the delivery and contact details entered by the customer.
type ShippingForm struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Country    string `json:"country" validate:"required"`
	City       string `json:"city" validate:"required"`
	District   string `json:"district" validate:"required"`
	Street     string `json:"street" validate:"required"`
	PostalCode string `json:"postal_code,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// OrderTotals is derived from the cart, the shipping settings and the coupon.
type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// OrderSummary is the confirmed order with the totals captured at submission.
type OrderSummary struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	OrderTotals
}

// NoticeKind classifies the banner shown to the customer.
type NoticeKind string

const (
	NoticeValidation    NoticeKind = "validation"
	NoticePaymentIntent NoticeKind = "payment_intent"
	NoticePayment       NoticeKind = "payment"
	NoticeOrder         NoticeKind = "order"
)

// Notice is the single user-facing message attached to a checkout.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Retryable bool       `json:"retryable"`
}

// CheckoutState is a point-in-time view of a checkout session.
type CheckoutState struct {
	SessionID           string        `json:"session_id"`
	CurrentStep         Step          `json:"current_step"`
	FormData            ShippingForm  `json:"form_data"`
	PaymentMethod       PaymentMethod `json:"payment_method"`
	PaymentIntentSecret string        `json:"payment_intent_secret,omitempty"`
	PaymentReference    string        `json:"payment_reference,omitempty"`
	CompletedOrder      *OrderSummary `json:"completed_order,omitempty"`
	IsSubmitting        bool          `json:"is_submitting"`
	CreatingIntent      bool          `json:"creating_intent"`
	Notice              *Notice       `json:"notice,omitempty"`
}
