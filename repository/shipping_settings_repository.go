package repository

import (
	"context"
	"errors"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsRowID is the primary key of the single shipping settings row.
const settingsRowID = 1

// ShippingSettingsRepository reads and writes the store shipping rate.
type ShippingSettingsRepository interface {
	GetShippingSettings(ctx context.Context) (*models.ShippingSettings, error)
	SaveShippingSettings(ctx context.Context, settings *models.ShippingSettings) error
}

// GormShippingSettingsRepository implements ShippingSettingsRepository using GORM.
type GormShippingSettingsRepository struct {
	db *gorm.DB
}

func NewGormShippingSettingsRepository(db *gorm.DB) ShippingSettingsRepository {
	return &GormShippingSettingsRepository{db: db}
}

// GetShippingSettings returns nil, nil when no rate has been configured.
func (r *GormShippingSettingsRepository) GetShippingSettings(ctx context.Context) (*models.ShippingSettings, error) {
	var s models.ShippingSettings
	err := r.db.WithContext(ctx).First(&s, "id = ?", settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveShippingSettings upserts the settings row.
func (r *GormShippingSettingsRepository) SaveShippingSettings(ctx context.Context, settings *models.ShippingSettings) error {
	settings.ID = settingsRowID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"shipping_cost", "free_shipping_threshold", "updated_at"}),
		}).
		Create(settings).Error
}
