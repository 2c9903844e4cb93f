package repository

import (
	"github.com/onlypremiums/onlypremiums/app/models"
	"gorm.io/gorm"
)

// cartRepository implements the CartRepository interface
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository instance
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(item *models.CartItem) error {
	return r.db.Create(item).Error
}

func (r *cartRepository) GetByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *cartRepository) GetByUserAndPlan(userID uint, planID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("user_id = ? AND plan_id = ?", userID, planID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) UpdateQuantity(userID uint, planID string, quantity int) error {
	return r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		Update("quantity", quantity).Error
}

func (r *cartRepository) Delete(userID uint, planID string) error {
	return r.db.Where("user_id = ? AND plan_id = ?", userID, planID).Delete(&models.CartItem{}).Error
}

func (r *cartRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
