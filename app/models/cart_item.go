package models

import (
	"fmt"
	"time"
)

// CartItem is one row of a user's in-progress selection. Rows are keyed by
// (user, plan); quantity bumps reuse the existing row instead of inserting
// a second one.
type CartItem struct {
	ID        string    `gorm:"primaryKey;type:varchar(150)" json:"id"`
	UserID    uint      `gorm:"index:idx_cart_user_plan,unique;not null" json:"user_id"`
	PlanID    string    `gorm:"index:idx_cart_user_plan,unique;type:varchar(100);not null" json:"plan_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewCartItemID builds the composite cart row id: cart-{userID}-{planID}-{unix ms}.
func NewCartItemID(userID uint, planID string, now time.Time) string {
	return fmt.Sprintf("cart-%d-%s-%d", userID, planID, now.UnixMilli())
}
