package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestGetShippingSettings_NotConfigured(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormShippingSettingsRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "shipping_settings"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	settings, err := repo.GetShippingSettings(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, settings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShippingSettings_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormShippingSettingsRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "shipping_cost", "free_shipping_threshold", "updated_at"}).
		AddRow(1, 15.0, 150.0, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "shipping_settings"`)).WillReturnRows(rows)

	settings, err := repo.GetShippingSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15.0, settings.ShippingCost)
	require.NotNil(t, settings.FreeShippingThreshold)
	assert.Equal(t, 150.0, *settings.FreeShippingThreshold)
}

func TestSaveShippingSettings_Upsert(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormShippingSettingsRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "shipping_settings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	settings := &models.ShippingSettings{ShippingCost: 25}
	err := repo.SaveShippingSettings(context.Background(), settings)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), settings.ID)
}

func TestOrderCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	order := &models.Order{
		ID:                uuid.New(),
		OrderNumber:       "ORD-20261014-ABCDEF",
		CheckoutSessionID: "session-1",
		UserID:            "user-1",
		PaymentMethod:     "cash_on_delivery",
		Status:            models.OrderStatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(order.ID.String()))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), order)
	assert.NoError(t, err)
}

func TestFindBySessionID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	o, err := repo.FindBySessionID(context.Background(), "session-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, o)
}

func TestFindBySessionID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "order_number", "checkout_session_id", "user_id", "payment_method", "status"}).
		AddRow(id.String(), "ORD-20261014-ABCDEF", "session-1", "user-1", "stripe", models.OrderStatusPaid)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).WillReturnRows(rows)

	o, err := repo.FindBySessionID(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, id, o.ID)
	assert.Equal(t, models.OrderStatusPaid, o.Status)
}
