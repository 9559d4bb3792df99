package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// OrderClient creates orders on the remote order service.
// It never retries; the checkout decides whether to try again.
type OrderClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*models.CreateOrderResult]
}

func NewOrderClient(baseURL string, logger *zap.Logger) *OrderClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		breaker:    newBreaker[*models.CreateOrderResult]("order-service", logger),
	}
}

// CreateOrder posts the order. The session ID is sent as the idempotency key.
func (c *OrderClient) CreateOrder(ctx context.Context, userID, sessionID string, input models.CreateOrderInput) (*models.CreateOrderResult, error) {
	url := fmt.Sprintf("%s/orders", c.baseURL)
	headers := map[string]string{
		"X-User-ID":       userID,
		"Idempotency-Key": sessionID,
	}
	return c.breaker.Execute(func() (*models.CreateOrderResult, error) {
		var result models.CreateOrderResult
		if err := postJSON(ctx, c.httpClient, "order service", url, headers, input, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
}
