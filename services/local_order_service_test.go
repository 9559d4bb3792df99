package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockOrderRepo struct {
	bySession map[string]*models.Order
	created   []*models.Order
	createErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{bySession: map[string]*models.Order{}}
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, order)
	m.bySession[order.CheckoutSessionID] = order
	return nil
}

func (m *mockOrderRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	if o, ok := m.bySession[sessionID]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestLocalOrderService_CashOnDelivery(t *testing.T) {
	repo := newMockOrderRepo()
	svc := services.NewLocalOrderService(repo, nil)

	result, err := svc.CreateOrder(context.Background(), "user-1", "session-1", models.CreateOrderInput{
		FullName:       "Mona Adel",
		PaymentMethod:  "cash_on_delivery",
		CouponCode:     "SAVE20",
		CouponDiscount: floatPtr(20),
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	order := repo.created[0]
	assert.Equal(t, order.ID.String(), result.OrderID)
	assert.Equal(t, order.OrderNumber, result.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 20.0, order.CouponDiscount)
	assert.Nil(t, order.StripePaymentID)
}

func TestLocalOrderService_Card(t *testing.T) {
	repo := newMockOrderRepo()
	svc := services.NewLocalOrderService(repo, nil)

	_, err := svc.CreateOrder(context.Background(), "user-1", "session-1", models.CreateOrderInput{
		PaymentMethod:   "stripe",
		StripePaymentID: "pi_123",
	})

	require.NoError(t, err)
	order := repo.created[0]
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	require.NotNil(t, order.StripePaymentID)
	assert.Equal(t, "pi_123", *order.StripePaymentID)
}

func TestLocalOrderService_SameSessionReturnsExistingOrder(t *testing.T) {
	repo := newMockOrderRepo()
	existing := &models.Order{ID: uuid.New(), OrderNumber: "ORD-20261014-AAAAAA", CheckoutSessionID: "session-1"}
	repo.bySession["session-1"] = existing
	svc := services.NewLocalOrderService(repo, nil)

	result, err := svc.CreateOrder(context.Background(), "user-1", "session-1", models.CreateOrderInput{PaymentMethod: "cash_on_delivery"})

	require.NoError(t, err)
	assert.Equal(t, existing.ID.String(), result.OrderID)
	assert.Empty(t, repo.created)
}

func TestLocalOrderService_Rejects(t *testing.T) {
	svc := services.NewLocalOrderService(newMockOrderRepo(), nil)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "user-1", "s1", models.CreateOrderInput{PaymentMethod: "stripe"})
	assert.Error(t, err)

	_, err = svc.CreateOrder(ctx, "user-1", "s2", models.CreateOrderInput{PaymentMethod: "paypal"})
	assert.Error(t, err)
}

func TestLocalOrderService_CreateError(t *testing.T) {
	repo := newMockOrderRepo()
	repo.createErr = errors.New("duplicate key")
	svc := services.NewLocalOrderService(repo, nil)

	_, err := svc.CreateOrder(context.Background(), "user-1", "s1", models.CreateOrderInput{PaymentMethod: "cash_on_delivery"})
	assert.ErrorContains(t, err, "duplicate key")
}

func TestNewOrderNumber(t *testing.T) {
	number := services.NewOrderNumber(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^ORD-20261014-[0-9A-F]{6}$`), number)
}
