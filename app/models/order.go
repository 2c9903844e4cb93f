package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	ORDER_STATUS_PENDING         = "pending"
	ORDER_STATUS_PAYMENT_PENDING = "payment_pending"
	ORDER_STATUS_COMPLETED       = "completed"
	ORDER_STATUS_FAILED          = "failed"
	ORDER_STATUS_REFUNDED        = "refunded"
)

// OrderItem is a frozen snapshot of a purchased plan at checkout time. The
// snapshot keeps the order history stable when the catalog changes later.
type OrderItem struct {
	Plan     Plan `json:"plan"`
	Quantity int  `json:"quantity"`
}

// OrderItems is the JSON-encoded line item list stored on the order row.
type OrderItems []OrderItem

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*o = OrderItems{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	default:
		return errors.New("unsupported type for OrderItems")
	}
}

// Order is a record of a purchase transaction and its line items.
// TotalAmount is the post-discount amount in minor currency units.
type Order struct {
	ID             string     `gorm:"primaryKey;type:varchar(100)" json:"id"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	Items          OrderItems `gorm:"type:json" json:"items"`
	TotalAmount    int64      `gorm:"not null" json:"total_amount"`
	Status         string     `gorm:"type:varchar(30);index;not null" json:"status"`
	CouponID       string     `gorm:"type:varchar(100);default:null" json:"coupon_id,omitempty"`
	IdempotencyKey string     `gorm:"uniqueIndex;type:varchar(100);default:null" json:"-"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewOrderID builds the order id: ORD-{unix ms}.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}

// ItemCount returns the total quantity across all line items.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
