package routes

import (
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/controllers"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted by Register. Payment may be nil when
// Stripe is not configured.
type Controllers struct {
	Checkout *controllers.CheckoutController
	Payment  *controllers.PaymentController
	Cart     *controllers.CartController
	Shipping *controllers.ShippingController
}

// Register sets up all storefront checkout routes.
func Register(r *gin.Engine, ctrl Controllers, authOpts middleware.AuthOptions, intentLimiter *middleware.RateLimiter) {
	auth := middleware.AuthMiddleware(authOpts)

	checkout := r.Group("/checkout/sessions")
	checkout.Use(auth)
	{
		checkout.POST("", ctrl.Checkout.OpenSession)
		checkout.GET("/:id", ctrl.Checkout.GetSession)
		checkout.PUT("/:id/shipping", ctrl.Checkout.UpdateShipping)
		checkout.POST("/:id/shipping/submit", ctrl.Checkout.SubmitShipping)
		checkout.POST("/:id/back", ctrl.Checkout.BackToShipping)
		checkout.PUT("/:id/payment-method", ctrl.Checkout.SetPaymentMethod)
		checkout.POST("/:id/payment-intent/retry", ctrl.Checkout.RetryPaymentIntent)
		checkout.POST("/:id/confirm", ctrl.Checkout.ConfirmOrder)
		checkout.POST("/:id/payment/success", ctrl.Checkout.PaymentSuccess)
		checkout.POST("/:id/payment/error", ctrl.Checkout.PaymentError)
		checkout.POST("/:id/order/retry", ctrl.Checkout.RetryOrder)
	}

	cart := r.Group("/cart")
	cart.Use(auth)
	{
		cart.GET("", ctrl.Cart.GetCart)
		cart.POST("/items", ctrl.Cart.AddItem)
		cart.DELETE("/items/:product_id", ctrl.Cart.RemoveItem)
		cart.POST("/coupon", ctrl.Cart.ApplyCoupon)
		cart.DELETE("/coupon", ctrl.Cart.RemoveCoupon)
	}

	shipping := r.Group("/shipping")
	shipping.GET("/settings", ctrl.Shipping.GetSettings)
	shipping.PUT("/settings", auth, middleware.AdminOnly(), ctrl.Shipping.UpdateSettings)

	if ctrl.Payment == nil {
		return
	}

	// Called server to server by the checkout when PAYMENT_INTENT_URL points here.
	payments := r.Group("/payments")
	if intentLimiter != nil {
		payments.Use(intentLimiter.Middleware())
	}
	payments.POST("/create-intent", ctrl.Payment.CreateIntent)

	// Authenticated by the Stripe-Signature header.
	r.POST("/stripe/webhook", ctrl.Payment.StripeWebhook)
}
