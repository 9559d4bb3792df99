package models

import "time"

// ShippingSettings is the store-wide flat shipping rate.
// A nil FreeShippingThreshold disables free shipping.
type ShippingSettings struct {
	ID                    uint      `gorm:"primaryKey" json:"-"`
	ShippingCost          float64   `gorm:"not null;default:0" json:"shipping_cost"`
	FreeShippingThreshold *float64  `json:"free_shipping_threshold,omitempty"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ShippingSettings) TableName() string { return "shipping_settings" }

// UpdateShippingSettingsRequest is the admin payload for PUT /shipping/settings.
type UpdateShippingSettingsRequest struct {
	ShippingCost          float64  `json:"shipping_cost" binding:"gte=0"`
	FreeShippingThreshold *float64 `json:"free_shipping_threshold" binding:"omitempty,gte=0"`
}
