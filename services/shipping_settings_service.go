package services

import (
	"context"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/repository"
	"go.uber.org/zap"
)

// ShippingSettingsService serves the shipping rate to checkouts and admins.
type ShippingSettingsService struct {
	repo   repository.ShippingSettingsRepository
	logger *zap.Logger
}

func NewShippingSettingsService(repo repository.ShippingSettingsRepository, logger *zap.Logger) *ShippingSettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippingSettingsService{repo: repo, logger: logger}
}

// GetShippingSettings returns nil, nil when no rate is configured.
func (s *ShippingSettingsService) GetShippingSettings(ctx context.Context) (*models.ShippingSettings, error) {
	return s.repo.GetShippingSettings(ctx)
}

// UpdateShippingSettings replaces the store shipping rate. Open sessions keep the
// rate they resolved.
func (s *ShippingSettingsService) UpdateShippingSettings(ctx context.Context, req models.UpdateShippingSettingsRequest) (*models.ShippingSettings, error) {
	settings := &models.ShippingSettings{
		ShippingCost:          req.ShippingCost,
		FreeShippingThreshold: req.FreeShippingThreshold,
	}
	if err := s.repo.SaveShippingSettings(ctx, settings); err != nil {
		s.logger.Error("Failed to save shipping settings", zap.Error(err))
		return nil, err
	}

	fields := []zap.Field{zap.Float64("shipping_cost", settings.ShippingCost)}
	if settings.FreeShippingThreshold != nil {
		fields = append(fields, zap.Float64("free_shipping_threshold", *settings.FreeShippingThreshold))
	}
	s.logger.Info("Shipping settings updated", fields...)
	return settings, nil
}
