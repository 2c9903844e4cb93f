package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Product is a third-party software brand whose subscriptions we resell.
// The color/text/background tokens and icon are presentation hints consumed
// verbatim by the storefront frontend.
type Product struct {
	ID        string    `gorm:"primaryKey;type:varchar(100)" json:"id" validate:"required,max=100"`
	Name      string    `gorm:"type:varchar(150)" json:"name" validate:"required,max=150"`
	Color     string    `gorm:"type:varchar(150)" json:"color" validate:"max=150"`
	TextColor string    `gorm:"type:varchar(100)" json:"text_color" validate:"max=100"`
	BgLight   string    `gorm:"type:varchar(100)" json:"bg_light" validate:"max=100"`
	Icon      string    `gorm:"type:varchar(100)" json:"icon" validate:"max=100"`
	Category  string    `gorm:"type:varchar(100);index" json:"category" validate:"max=100"`
	Featured  bool      `gorm:"default:false" json:"featured"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductInfo is the denormalized presentation record handed to the frontend.
type ProductInfo struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
	BgLight   string `json:"bg_light"`
	Icon      string `json:"icon"`
	Category  string `json:"category"`
}

func (p *Product) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// Info projects the product into its presentation record.
func (p *Product) Info() ProductInfo {
	return ProductInfo{
		Name:      p.Name,
		Color:     p.Color,
		TextColor: p.TextColor,
		BgLight:   p.BgLight,
		Icon:      p.Icon,
		Category:  p.Category,
	}
}
