package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LocalOrderService stores orders in Postgres when no remote order service is configured.
type LocalOrderService struct {
	repo   repository.OrderRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewLocalOrderService(repo repository.OrderRepository, logger *zap.Logger) *LocalOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalOrderService{repo: repo, logger: logger, now: time.Now}
}

// CreateOrder is idempotent per checkout session.
func (s *LocalOrderService) CreateOrder(ctx context.Context, userID, sessionID string, input models.CreateOrderInput) (*models.CreateOrderResult, error) {
	existing, err := s.repo.FindBySessionID(ctx, sessionID)
	if err == nil {
		s.logger.Info("Order already exists for checkout session",
			zap.String("session_id", sessionID),
			zap.String("order_number", existing.OrderNumber),
		)
		return &models.CreateOrderResult{OrderID: existing.ID.String(), OrderNumber: existing.OrderNumber}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup order for session: %w", err)
	}

	order := &models.Order{
		ID:                uuid.New(),
		OrderNumber:       NewOrderNumber(s.now()),
		CheckoutSessionID: sessionID,
		UserID:            userID,
		FullName:          input.FullName,
		Email:             input.Email,
		Phone:             input.Phone,
		Country:           input.Country,
		City:              input.City,
		District:          input.District,
		Street:            input.Street,
		PostalCode:        input.PostalCode,
		Notes:             input.Notes,
		PaymentMethod:     input.PaymentMethod,
		CouponCode:        input.CouponCode,
		Status:            models.OrderStatusPending,
	}
	if input.CouponDiscount != nil {
		order.CouponDiscount = *input.CouponDiscount
	}

	switch input.PaymentMethod {
	case "stripe":
		if input.StripePaymentID == "" {
			return nil, fmt.Errorf("stripePaymentId is required for stripe orders")
		}
		ref := input.StripePaymentID
		order.StripePaymentID = &ref
		order.Status = models.OrderStatusPaid
	case string(models.PaymentMethodCashOnDelivery):
	default:
		return nil, fmt.Errorf("unsupported payment method %q", input.PaymentMethod)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &models.CreateOrderResult{OrderID: order.ID.String(), OrderNumber: order.OrderNumber}, nil
}

// NewOrderNumber returns a human readable order number such as ORD-20261014-3F9A1C.
func NewOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", t.Format("20060102"), suffix)
}
