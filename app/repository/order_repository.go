package repository

import (
	"errors"
	"time"

	"github.com/onlypremiums/onlypremiums/app/models"
	"gorm.io/gorm"
)

// ErrInvalidStatusTransition is returned by UpdateStatus when the order is
// not in the expected source status.
var ErrInvalidStatusTransition = errors.New("order is not in the expected status")

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIdempotencyKey(key string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("idempotency_key = ?", key).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetAll(offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// UpdateStatus moves an order from one status to another. The source status
// is part of the WHERE clause so a replayed payment callback cannot complete
// an order twice or resurrect a failed one.
func (r *orderRepository) UpdateStatus(id string, from, to string) error {
	tx := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

// SetStatus overwrites an order status unconditionally (admin refund path).
func (r *orderRepository) SetStatus(id string, status string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Count(&count).Error
	return count, err
}

// SumCompletedAmount totals the revenue of completed orders created at or
// after the given time.
func (r *orderRepository) SumCompletedAmount(since time.Time) (int64, error) {
	var total *int64
	err := r.db.Model(&models.Order{}).
		Select("SUM(total_amount)").
		Where("status = ? AND created_at >= ?", models.ORDER_STATUS_COMPLETED, since).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
