package services

import (
	"context"
	"net/http"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// PaymentIntentClient calls a remote payment intent endpoint over HTTP.
type PaymentIntentClient struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*models.PaymentIntentResponse]
}

func NewPaymentIntentClient(url string, logger *zap.Logger) *PaymentIntentClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentIntentClient{
		url:        url,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		breaker:    newBreaker[*models.PaymentIntentResponse]("payment-intent-service", logger),
	}
}

func (c *PaymentIntentClient) CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	return c.breaker.Execute(func() (*models.PaymentIntentResponse, error) {
		var resp models.PaymentIntentResponse
		if err := postJSON(ctx, c.httpClient, "payment intent service", c.url, nil, req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}
