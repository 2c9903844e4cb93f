package models

import "time"

const (
	PAYMENT_STATUS_PENDING   = "pending"
	PAYMENT_STATUS_COMPLETED = "completed"
	PAYMENT_STATUS_FAILED    = "failed"
	PAYMENT_STATUS_REFUNDED  = "refunded"

	PAYMENT_GATEWAY_RAZORPAY = "razorpay"
)

// Payment tracks one payment attempt at the gateway for an order.
// The gateway captures funds immediately on authorization (auto-capture),
// so there is no separate captured state.
type Payment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OrderID          string    `gorm:"index;type:varchar(100);not null" json:"order_id"`
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	Gateway          string    `gorm:"type:varchar(50);not null" json:"gateway"`
	GatewayOrderID   string    `gorm:"type:varchar(150);index" json:"gateway_order_id"`
	GatewayPaymentID string    `gorm:"type:varchar(150)" json:"gateway_payment_id"`
	Amount           int64     `gorm:"not null" json:"amount"`
	Currency         string    `gorm:"type:varchar(10);not null" json:"currency"`
	Status           string    `gorm:"type:varchar(30);index;not null" json:"status"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
