package models

// PaymentIntentMetadata is attached to every payment intent.
type PaymentIntentMetadata struct {
	CustomerName      string `json:"customer_name"`
	CustomerEmail     string `json:"customer_email"`
	CheckoutSessionID string `json:"checkout_session_id,omitempty"`
}

// PaymentIntentRequest asks for a client secret. Amount is in minor units.
type PaymentIntentRequest struct {
	Amount   int64                 `json:"amount" binding:"required,gt=0"`
	Currency string                `json:"currency" binding:"required,len=3"`
	Metadata PaymentIntentMetadata `json:"metadata"`
}

// PaymentIntentResponse carries the secret used to initialize the payment widget.
type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

// PaymentCallbackRequest is posted by the storefront when the widget reports.
type PaymentCallbackRequest struct {
	PaymentReferenceID string `json:"payment_reference_id"`
	Error              string `json:"error"`
}
