package controllers

import (
	"context"
	"net/http"

	apperrors "github.com/YoussefMohammed93/TheBrothers-Store-sub000/errors"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/gin-gonic/gin"
)

// ShippingSettingsAPI reads and replaces the store shipping rate.
type ShippingSettingsAPI interface {
	GetShippingSettings(ctx context.Context) (*models.ShippingSettings, error)
	UpdateShippingSettings(ctx context.Context, req models.UpdateShippingSettingsRequest) (*models.ShippingSettings, error)
}

type ShippingController struct {
	settings ShippingSettingsAPI
	fallback float64
}

// NewShippingController creates a ShippingController. fallback is the cost
// reported while no rate is configured.
func NewShippingController(settings ShippingSettingsAPI, fallback float64) *ShippingController {
	return &ShippingController{settings: settings, fallback: fallback}
}

// GetSettings handles GET /shipping/settings.
func (sc *ShippingController) GetSettings(c *gin.Context) {
	settings, err := sc.settings.GetShippingSettings(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.ErrInternalServer.Wrap(err))
		return
	}
	if settings == nil {
		c.JSON(http.StatusOK, gin.H{"shipping_cost": sc.fallback, "configured": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shipping_cost":           settings.ShippingCost,
		"free_shipping_threshold": settings.FreeShippingThreshold,
		"updated_at":              settings.UpdatedAt,
		"configured":              true,
	})
}

// UpdateSettings handles PUT /shipping/settings.
func (sc *ShippingController) UpdateSettings(c *gin.Context) {
	var req models.UpdateShippingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	settings, err := sc.settings.UpdateShippingSettings(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(apperrors.ErrInternalServer.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, settings)
}
