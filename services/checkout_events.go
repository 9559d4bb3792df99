package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	aws_pkg "github.com/YoussefMohammed93/TheBrothers-Store-sub000/pkg/aws"
	"go.uber.org/zap"
)

const metricTimeout = 5 * time.Second

// MetricsRecorder counts business events.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, name string, dimensions map[string]string) error
}

// CheckoutEvents forwards checkout lifecycle changes to CloudWatch, SNS and the
// notification queue. Any of the three may be nil.
type CheckoutEvents struct {
	metrics     MetricsRecorder
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	queue       aws_pkg.MessageSender
	logger      *zap.Logger
}

func NewCheckoutEvents(
	metrics MetricsRecorder,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	queue aws_pkg.MessageSender,
	logger *zap.Logger,
) *CheckoutEvents {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutEvents{
		metrics:     metrics,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		queue:       queue,
		logger:      logger,
	}
}

func (e *CheckoutEvents) StepChanged(sessionID string, from, to models.Step) {
	e.logger.Debug("Checkout step changed",
		zap.String("session_id", sessionID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	e.count(aws_pkg.MetricCheckoutTransitions, map[string]string{"From": string(from), "To": string(to)})
}

func (e *CheckoutEvents) PaymentIntentCreated(sessionID, intentID string) {
	e.logger.Info("Payment intent created",
		zap.String("session_id", sessionID),
		zap.String("payment_intent_id", intentID),
	)
	e.count(aws_pkg.MetricPaymentIntents, nil)
}

func (e *CheckoutEvents) PaymentFailed(sessionID, message string) {
	e.logger.Warn("Card payment failed", zap.String("session_id", sessionID), zap.String("message", message))
	e.count(aws_pkg.MetricPaymentFailed, nil)
}

func (e *CheckoutEvents) OrderCreated(ctx context.Context, sessionID, userID string, order models.OrderSummary, input models.CreateOrderInput) {
	e.count(aws_pkg.MetricOrdersCreated, map[string]string{"PaymentMethod": input.PaymentMethod})

	e.publish(ctx, models.CheckoutEvent{
		EventType:         models.EventCheckoutOrderCreated,
		CheckoutSessionID: sessionID,
		UserID:            userID,
		OrderID:           order.OrderID,
		OrderNumber:       order.OrderNumber,
		PaymentMethod:     input.PaymentMethod,
		StripePaymentID:   input.StripePaymentID,
		Total:             order.Total,
		Timestamp:         time.Now().UTC(),
	})
	e.enqueueNotification(ctx, userID, order, input)
}

// OrderFailed raises a reconciliation alert when the card was already charged.
func (e *CheckoutEvents) OrderFailed(ctx context.Context, sessionID, userID string, input models.CreateOrderInput, err error) {
	e.count(aws_pkg.MetricOrdersFailed, map[string]string{"PaymentMethod": input.PaymentMethod})

	if input.StripePaymentID == "" {
		return
	}
	e.publish(ctx, models.CheckoutEvent{
		EventType:         models.EventCheckoutOrderFailedAfterCharge,
		CheckoutSessionID: sessionID,
		UserID:            userID,
		PaymentMethod:     input.PaymentMethod,
		StripePaymentID:   input.StripePaymentID,
		Error:             err.Error(),
		Timestamp:         time.Now().UTC(),
	})
}

// PaymentWithoutSession raises a reconciliation alert for a succeeded card
// payment whose checkout session no longer exists.
func (e *CheckoutEvents) PaymentWithoutSession(ctx context.Context, sessionID, paymentIntentID string, amount float64) {
	e.count(aws_pkg.MetricOrdersFailed, map[string]string{"PaymentMethod": models.PaymentMethodStripeCard.OrderPaymentMethod()})

	e.publish(ctx, models.CheckoutEvent{
		EventType:         models.EventCheckoutOrderFailedAfterCharge,
		CheckoutSessionID: sessionID,
		PaymentMethod:     models.PaymentMethodStripeCard.OrderPaymentMethod(),
		StripePaymentID:   paymentIntentID,
		Total:             amount,
		Error:             "no live checkout session for payment",
		Timestamp:         time.Now().UTC(),
	})
}

func (e *CheckoutEvents) publish(ctx context.Context, event models.CheckoutEvent) {
	if e.snsClient == nil || e.snsTopicArn == "" {
		e.logger.Warn("SNS client not configured, skipping checkout event", zap.String("event_type", event.EventType))
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("Failed to marshal checkout event", zap.Error(err))
		return
	}
	if err := e.snsClient.Publish(ctx, e.snsTopicArn, payload); err != nil {
		e.logger.Error("Failed to publish checkout event",
			zap.String("event_type", event.EventType),
			zap.String("session_id", event.CheckoutSessionID),
			zap.Error(err),
		)
		return
	}
	e.logger.Info("Checkout event published",
		zap.String("event_type", event.EventType),
		zap.String("session_id", event.CheckoutSessionID),
	)
}

func (e *CheckoutEvents) enqueueNotification(ctx context.Context, userID string, order models.OrderSummary, input models.CreateOrderInput) {
	if e.queue == nil {
		return
	}

	req := models.NotificationRequest{
		EventType: "order_created",
		UserID:    userID,
		Recipient: input.Email,
		Data: map[string]interface{}{
			"order_id":       order.OrderID,
			"order_number":   order.OrderNumber,
			"customer_name":  input.FullName,
			"payment_method": input.PaymentMethod,
			"total":          order.Total,
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		e.logger.Error("Failed to marshal notification request", zap.Error(err))
		return
	}
	if err := e.queue.SendMessage(ctx, string(body)); err != nil {
		e.logger.Error("Failed to enqueue order notification",
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
	}
}

// count records a metric without blocking the caller.
func (e *CheckoutEvents) count(name string, dimensions map[string]string) {
	if e.metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricTimeout)
		defer cancel()
		if err := e.metrics.RecordCount(ctx, name, dimensions); err != nil {
			e.logger.Debug("Failed to record metric", zap.String("metric", name), zap.Error(err))
		}
	}()
}
