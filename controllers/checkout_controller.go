package controllers

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/YoussefMohammed93/TheBrothers-Store-sub000/errors"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/logger"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/middleware"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutSessions opens and finds checkout sessions.
type CheckoutSessions interface {
	Open(ctx context.Context, userID string) (*services.Checkout, error)
	Get(id, userID string) (*services.Checkout, error)
}

// PaymentVerifier confirms a card payment with the processor.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, intentID string) error
}

// CheckoutController handles the checkout session endpoints.
type CheckoutController struct {
	sessions CheckoutSessions
	verifier PaymentVerifier
	logger   *zap.Logger
}

// NewCheckoutController creates a CheckoutController. verifier may be nil, in
// which case widget success callbacks are trusted as reported.
func NewCheckoutController(sessions CheckoutSessions, verifier PaymentVerifier, log *zap.Logger) *CheckoutController {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutController{sessions: sessions, verifier: verifier, logger: log}
}

type checkoutView struct {
	models.CheckoutState
	Totals      models.OrderTotals `json:"totals"`
	Redirect    bool               `json:"redirect"`
	ScrollToTop bool               `json:"scroll_to_top"`
}

type paymentMethodRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
}

// OpenSession handles POST /checkout/sessions.
func (cc *CheckoutController) OpenSession(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		_ = c.Error(apperrors.ErrUnauthorized.Wrap(err))
		return
	}

	checkout, err := cc.sessions.Open(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(checkoutError(err))
		return
	}
	cc.respond(c, checkout, models.StepShipping, http.StatusCreated, nil)
}

// GetSession handles GET /checkout/sessions/:id.
func (cc *CheckoutController) GetSession(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}
	cc.respond(c, checkout, checkout.State().CurrentStep, http.StatusOK, nil)
}

// UpdateShipping handles PUT /checkout/sessions/:id/shipping.
func (cc *CheckoutController) UpdateShipping(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}

	var form models.ShippingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	prev := checkout.State().CurrentStep
	cc.respond(c, checkout, prev, http.StatusOK, checkout.UpdateShippingForm(form))
}

// SubmitShipping handles POST /checkout/sessions/:id/shipping/submit.
func (cc *CheckoutController) SubmitShipping(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}
	prev := checkout.State().CurrentStep
	cc.respond(c, checkout, prev, http.StatusOK, checkout.SubmitShipping(c.Request.Context()))
}

// BackToShipping handles POST /checkout/sessions/:id/back.
func (cc *CheckoutController) BackToShipping(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}
	prev := checkout.State().CurrentStep
	cc.respond(c, checkout, prev, http.StatusOK, checkout.BackToShipping())
}

// SetPaymentMethod handles PUT /checkout/sessions/:id/payment-method.
func (cc *CheckoutController) SetPaymentMethod(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}

	var req paymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	prev := checkout.State().CurrentStep
	cc.respond(c, checkout, prev, http.StatusOK, checkout.SetPaymentMethod(c.Request.Context(), req.PaymentMethod))
}

// RetryPaymentIntent handles POST /checkout/sessions/:id/payment-intent/retry.
func (cc *CheckoutController) RetryPaymentIntent(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}
	prev := checkout.State().CurrentStep
	cc.respond(c, checkout, prev, http.StatusOK, checkout.RetryPaymentIntent(c.Request.Context()))
}

// ConfirmOrder handles POST /checkout/sessions/:id/confirm for cash on delivery.
func (cc *CheckoutController) ConfirmOrder(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}
	prev := checkout.State().CurrentStep
	_, err := checkout.ConfirmCashOnDelivery(c.Request.Context())
	cc.respond(c, checkout, prev, http.StatusOK, err)
}

// PaymentSuccess handles POST /checkout/sessions/:id/payment/success.
func (cc *CheckoutController) PaymentSuccess(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}

	var req models.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	state := checkout.State()
	if state.CompletedOrder != nil {
		cc.respond(c, checkout, state.CurrentStep, http.StatusOK, nil)
		return
	}

	ref := req.PaymentReferenceID
	if ref == "" {
		ref = state.PaymentReference
	}
	if ref == "" {
		cc.respond(c, checkout, state.CurrentStep, http.StatusOK, services.ErrMissingPaymentReference)
		return
	}
	if cc.verifier != nil {
		if err := cc.verifier.VerifyPayment(c.Request.Context(), ref); err != nil {
			logger.FromContext(c.Request.Context(), cc.logger).Warn("Card payment could not be verified",
				zap.String("session_id", checkout.ID()),
				zap.String("payment_reference", ref),
				zap.Error(err),
			)
			cc.respond(c, checkout, state.CurrentStep, http.StatusOK, err)
			return
		}
	}

	_, err := checkout.HandlePaymentSuccess(c.Request.Context(), ref)
	cc.respond(c, checkout, state.CurrentStep, http.StatusOK, err)
}

// PaymentError handles POST /checkout/sessions/:id/payment/error.
func (cc *CheckoutController) PaymentError(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}

	var req models.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	prev := checkout.State().CurrentStep
	checkout.HandlePaymentError(req.Error)
	cc.respond(c, checkout, prev, http.StatusOK, nil)
}

// RetryOrder handles POST /checkout/sessions/:id/order/retry.
func (cc *CheckoutController) RetryOrder(c *gin.Context) {
	checkout, ok := cc.load(c)
	if !ok {
		return
	}
	prev := checkout.State().CurrentStep
	_, err := checkout.RetryOrder(c.Request.Context())
	cc.respond(c, checkout, prev, http.StatusOK, err)
}

func (cc *CheckoutController) load(c *gin.Context) (*services.Checkout, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		_ = c.Error(apperrors.ErrUnauthorized.Wrap(err))
		return nil, false
	}
	checkout, err := cc.sessions.Get(c.Param("id"), userID)
	if err != nil {
		_ = c.Error(checkoutError(err))
		return nil, false
	}
	return checkout, true
}

// respond renders the session. A failed operation is reported with its status
// code next to the unchanged session so the client can show the notice.
func (cc *CheckoutController) respond(c *gin.Context, checkout *services.Checkout, prev models.Step, status int, opErr error) {
	ctx := c.Request.Context()
	state := checkout.State()

	totals, err := checkout.Totals(ctx)
	if err != nil {
		_ = c.Error(apperrors.ErrInternalServer.Wrap(err))
		return
	}
	redirect, err := checkout.ShouldRedirect(ctx)
	if err != nil {
		_ = c.Error(apperrors.ErrInternalServer.Wrap(err))
		return
	}

	view := checkoutView{
		CheckoutState: state,
		Totals:        totals,
		Redirect:      redirect,
		ScrollToTop:   state.CurrentStep != prev,
	}
	if opErr != nil {
		appErr := checkoutError(opErr)
		if appErr.Code >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context(), cc.logger).Warn("Checkout operation failed",
				zap.String("session_id", checkout.ID()),
				zap.String("path", c.FullPath()),
				zap.Error(opErr),
			)
		}
		c.JSON(appErr.Code, gin.H{"error": appErr.Message, "code": appErr.Code, "checkout": view})
		return
	}
	c.JSON(status, gin.H{"checkout": view})
}

func checkoutError(err error) *apperrors.Error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return apperrors.New(apperrors.ErrValidation.Code, validationErr.Message, err)
	case errors.Is(err, services.ErrSessionNotFound):
		return apperrors.New(http.StatusNotFound, "Checkout session not found", err)
	case errors.Is(err, services.ErrEmptyCart):
		return apperrors.New(http.StatusConflict, "Your cart is empty", err)
	case errors.Is(err, services.ErrCheckoutCompleted):
		return apperrors.New(http.StatusConflict, "This order has already been placed", err)
	case errors.Is(err, services.ErrInvalidTransition):
		return apperrors.New(http.StatusConflict, "This action is not available at the current step", err)
	case errors.Is(err, services.ErrSubmissionInFlight), errors.Is(err, services.ErrIntentInFlight):
		return apperrors.New(http.StatusConflict, "Your request is already being processed", err)
	case errors.Is(err, services.ErrInvalidPaymentMethod), errors.Is(err, services.ErrWrongPaymentMethod):
		return apperrors.New(http.StatusBadRequest, "Payment method not valid for this action", err)
	case errors.Is(err, services.ErrMissingPaymentReference):
		return apperrors.New(http.StatusBadRequest, "Payment reference is required", err)
	case errors.Is(err, services.ErrPaymentNotSucceeded):
		return apperrors.New(http.StatusPaymentRequired, "Payment has not been completed", err)
	case errors.Is(err, services.ErrPaymentIntentFailed):
		return apperrors.New(http.StatusBadGateway, "We could not start the card payment. Please try again.", err)
	case errors.Is(err, services.ErrShippingRateUnavailable):
		return apperrors.New(http.StatusServiceUnavailable, "Shipping cost is not available yet. Please try again.", err)
	case errors.Is(err, services.ErrOrderCreationFailed):
		return apperrors.New(http.StatusBadGateway, "We could not place your order. Please try again.", err)
	default:
		return apperrors.As(err)
	}
}
