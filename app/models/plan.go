package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DURATION_MONTHLY  = "monthly"
	DURATION_YEARLY   = "yearly"
	DURATION_LIFETIME = "lifetime"

	ACTIVATION_COUPON_CODE     = "coupon_code"
	ACTIVATION_LICENSE_KEY     = "license_key"
	ACTIVATION_ACCOUNT_UPGRADE = "account_upgrade"
	ACTIVATION_MANUAL_SETUP    = "manual_setup"
)

// StringList is a JSON-encoded list of strings stored in a single column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// Plan is a purchasable subscription offering tied to a product and duration.
// Prices are integers in minor currency units (paise).
type Plan struct {
	ID                 string     `gorm:"primaryKey;type:varchar(100)" json:"id"`
	ProductID          string     `gorm:"type:varchar(100);index" json:"product_id" validate:"required,max=100"`
	Name               string     `gorm:"type:varchar(200)" json:"name" validate:"required,max=200"`
	Description        string     `gorm:"type:text" json:"description"`
	Duration           string     `gorm:"type:varchar(20)" json:"duration" validate:"oneof=monthly yearly lifetime"`
	Price              int64      `gorm:"not null" json:"price" validate:"gte=0"`
	OriginalPrice      int64      `gorm:"not null" json:"original_price" validate:"gte=0"`
	DiscountPercentage int        `gorm:"default:0" json:"discount_percentage" validate:"gte=0,lte=100"`
	Features           StringList `gorm:"type:json" json:"features"`
	ActivationMethod   string     `gorm:"type:varchar(50)" json:"activation_method" validate:"oneof=coupon_code license_key account_upgrade manual_setup"`
	ImageURL           string     `gorm:"type:varchar(500);default:null" json:"image_url"`
	Popular            bool       `gorm:"default:false" json:"popular"`
	Active             bool       `gorm:"default:true" json:"active"`
	ViewCount          int64      `gorm:"default:0" json:"view_count"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// EffectiveDiscountPercentage returns the stored discount percentage, or
// derives it from original vs. current price when no value was stored.
func (p *Plan) EffectiveDiscountPercentage() int {
	if p.DiscountPercentage > 0 {
		return p.DiscountPercentage
	}
	return DerivedDiscountPercentage(p.Price, p.OriginalPrice)
}

// DerivedDiscountPercentage computes round((original-price)/original * 100).
// Returns 0 when the original price is zero or not higher than the price.
func DerivedDiscountPercentage(price, originalPrice int64) int {
	if originalPrice <= 0 || price >= originalPrice {
		return 0
	}
	return int(math.Round(float64(originalPrice-price) / float64(originalPrice) * 100))
}
