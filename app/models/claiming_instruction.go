package models

import "time"

// ClaimingInstruction holds the redemption steps shown to a buyer after a
// successful purchase of a plan. One row per plan; content depends on the
// plan's activation method (coupon code, license key, account upgrade,
// manual setup).
type ClaimingInstruction struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PlanID    string     `gorm:"uniqueIndex;type:varchar(100);not null" json:"plan_id"`
	Title     string     `gorm:"type:varchar(200)" json:"title"`
	Steps     StringList `gorm:"type:json" json:"steps"`
	Notes     string     `gorm:"type:text" json:"notes"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
