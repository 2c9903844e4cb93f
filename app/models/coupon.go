package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Coupon is a percentage-discount code with usage and time constraints.
// ApplicableProducts empty means the coupon applies to every product.
type Coupon struct {
	ID                 string     `gorm:"primaryKey;type:varchar(100)" json:"id"`
	Code               string     `gorm:"uniqueIndex;type:varchar(100);not null" json:"code" validate:"required,max=100"`
	DiscountPercentage int        `gorm:"not null" json:"discount_percentage" validate:"gt=0,lte=100"`
	ApplicableProducts StringList `gorm:"type:json" json:"applicable_products"`
	MaxUses            *int       `gorm:"default:null" json:"max_uses"`
	CurrentUses        int        `gorm:"not null;default:0" json:"current_uses"`
	ValidFrom          time.Time  `gorm:"not null" json:"valid_from"`
	ValidUntil         *time.Time `gorm:"default:null" json:"valid_until"`
	Active             bool       `gorm:"default:true" json:"active"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Coupon) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// HasUsesLeft reports whether the usage cap still allows another redemption.
// The cap is strict: a coupon with current_uses == max_uses is exhausted.
func (c *Coupon) HasUsesLeft() bool {
	return c.MaxUses == nil || c.CurrentUses < *c.MaxUses
}

// IsUsableAt reports whether the coupon can be redeemed at the given instant.
func (c *Coupon) IsUsableAt(now time.Time) bool {
	if !c.Active {
		return false
	}
	if now.Before(c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	return c.HasUsesLeft()
}

// AppliesTo reports whether the coupon covers the given product.
func (c *Coupon) AppliesTo(productID string) bool {
	if len(c.ApplicableProducts) == 0 {
		return true
	}
	for _, p := range c.ApplicableProducts {
		if p == productID {
			return true
		}
	}
	return false
}
