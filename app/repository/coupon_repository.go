package repository

import (
	"github.com/onlypremiums/onlypremiums/app/models"
	"gorm.io/gorm"
)

// couponRepository implements the CouponRepository interface
type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates a new coupon repository instance
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

func (r *couponRepository) GetByID(id string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.Where("id = ?", id).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.Where("LOWER(code) = LOWER(?)", code).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) GetActive() ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.Where("active = ?", true).Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (r *couponRepository) Update(coupon *models.Coupon) error {
	return r.db.Save(coupon).Error
}

func (r *couponRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Coupon{}).Error
}

// IncrementUsage performs the increment as one conditional UPDATE so two
// concurrent redemptions of an almost-exhausted coupon cannot both pass a
// read-then-write check. RowsAffected == 0 means the cap was hit.
func (r *couponRepository) IncrementUsage(id string) error {
	tx := r.db.Exec(
		"UPDATE coupons SET current_uses = current_uses + 1, updated_at = NOW() WHERE id = ? AND (max_uses IS NULL OR current_uses < max_uses)",
		id,
	)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUsageExhausted
	}
	return nil
}
