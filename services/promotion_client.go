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

// PromotionClient validates coupons against the promotion service.
type PromotionClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*models.ValidateCouponResponse]
}

func NewPromotionClient(baseURL string, logger *zap.Logger) *PromotionClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		breaker:    newBreaker[*models.ValidateCouponResponse]("promotion-service", logger),
	}
}

func (c *PromotionClient) ValidateCoupon(ctx context.Context, code string, cartTotal float64) (*models.ValidateCouponResponse, error) {
	url := fmt.Sprintf("%s/coupons/validate", c.baseURL)
	req := models.ValidateCouponRequest{Code: code, CartTotal: cartTotal}
	return c.breaker.Execute(func() (*models.ValidateCouponResponse, error) {
		var resp models.ValidateCouponResponse
		if err := postJSON(ctx, c.httpClient, "promotion service", url, nil, req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}
