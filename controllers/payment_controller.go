package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/YoussefMohammed93/TheBrothers-Store-sub000/errors"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/logger"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// WebhookParser verifies and decodes a Stripe webhook request.
type WebhookParser interface {
	ParseWebhook(r *http.Request) (stripe.Event, error)
}

// SessionFinder resolves the checkout session a Stripe event belongs to.
type SessionFinder interface {
	Lookup(id string) (*services.Checkout, bool)
	FindByPaymentIntent(intentID string) (*services.Checkout, bool)
}

// ReconciliationAlerter reports card payments that no checkout session can turn
// into an order.
type ReconciliationAlerter interface {
	PaymentWithoutSession(ctx context.Context, sessionID, paymentIntentID string, amount float64)
}

type PaymentController struct {
	intents  services.PaymentIntentService
	webhooks WebhookParser
	sessions SessionFinder
	alerts   ReconciliationAlerter
	logger   *zap.Logger
}

// NewPaymentController creates a PaymentController. alerts may be nil.
func NewPaymentController(intents services.PaymentIntentService, webhooks WebhookParser, sessions SessionFinder, alerts ReconciliationAlerter, log *zap.Logger) *PaymentController {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentController{intents: intents, webhooks: webhooks, sessions: sessions, alerts: alerts, logger: log}
}

// CreateIntent handles POST /payments/create-intent.
func (pc *PaymentController) CreateIntent(c *gin.Context) {
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	resp, err := pc.intents.CreatePaymentIntent(c.Request.Context(), req)
	if err != nil {
		pc.logger.Error("Failed to create payment intent",
			zap.Int64("amount", req.Amount),
			zap.String("currency", req.Currency),
			zap.Error(err),
		)
		_ = c.Error(apperrors.ErrBadGateway.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StripeWebhook handles POST /stripe/webhook. Events are acknowledged once
// verified, so Stripe never redelivers a success into a second order attempt.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	event, err := pc.webhooks.ParseWebhook(c.Request)
	if err != nil {
		logger.FromContext(c.Request.Context(), pc.logger).Warn("Rejected Stripe webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		pc.paymentSucceeded(c, event)
	case "payment_intent.payment_failed":
		pc.paymentFailed(event)
	default:
		pc.logger.Debug("Ignoring Stripe event", zap.String("type", string(event.Type)))
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (pc *PaymentController) paymentSucceeded(c *gin.Context, event stripe.Event) {
	pi, checkout, ok := pc.resolve(event)
	if !ok {
		return
	}
	if checkout == nil {
		// Charged, but the session is gone (restart or expiry): no order will follow.
		sessionID := pi.Metadata["checkout_session_id"]
		logger.FromContext(c.Request.Context(), pc.logger).Error("Card payment succeeded without a live checkout session",
			zap.String("session_id", sessionID),
			zap.String("payment_intent_id", pi.ID),
			zap.Int64("amount", pi.Amount),
		)
		if pc.alerts != nil {
			pc.alerts.PaymentWithoutSession(c.Request.Context(), sessionID, pi.ID, float64(pi.Amount)/100)
		}
		return
	}

	summary, err := checkout.HandlePaymentSuccess(c.Request.Context(), pi.ID)
	switch {
	case err == nil:
		pc.logger.Info("Order placed from Stripe webhook",
			zap.String("session_id", checkout.ID()),
			zap.String("payment_intent_id", pi.ID),
			zap.String("order_id", summary.OrderID),
		)
	case errors.Is(err, services.ErrSubmissionInFlight):
		pc.logger.Info("Order submission already in progress",
			zap.String("session_id", checkout.ID()),
			zap.String("payment_intent_id", pi.ID),
		)
	default:
		pc.logger.Error("Failed to place order from Stripe webhook",
			zap.String("session_id", checkout.ID()),
			zap.String("payment_intent_id", pi.ID),
			zap.Error(err),
		)
	}
}

func (pc *PaymentController) paymentFailed(event stripe.Event) {
	pi, checkout, ok := pc.resolve(event)
	if !ok || checkout == nil {
		return
	}
	message := ""
	if pi.LastPaymentError != nil {
		message = pi.LastPaymentError.Msg
	}
	checkout.HandlePaymentError(message)
}

// resolve decodes the intent and finds its session. ok is false only when the
// event cannot be decoded; the session is nil when none is live.
func (pc *PaymentController) resolve(event stripe.Event) (*stripe.PaymentIntent, *services.Checkout, bool) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		pc.logger.Error("Failed to decode payment intent event", zap.String("event_id", event.ID), zap.Error(err))
		return nil, nil, false
	}

	checkout, ok := pc.sessions.Lookup(pi.Metadata["checkout_session_id"])
	if !ok {
		checkout, ok = pc.sessions.FindByPaymentIntent(pi.ID)
	}
	if !ok {
		pc.logger.Info("No live checkout session for payment intent", zap.String("payment_intent_id", pi.ID))
		return &pi, nil, true
	}
	return &pi, checkout, true
}
