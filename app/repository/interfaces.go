package repository

import (
	"errors"
	"time"

	"github.com/onlypremiums/onlypremiums/app/models"
	"gorm.io/gorm"
)

// ErrUsageExhausted is returned by CouponRepository.IncrementUsage when the
// conditional update matched no row because the usage cap was already reached.
var ErrUsageExhausted = errors.New("coupon usage limit reached")

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ProductRepository defines the interface for product catalog operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id string) (*models.Product, error)
	GetAll() ([]models.Product, error)
	GetActive() ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id string) error
}

// PlanRepository defines the interface for plan catalog operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id string) (*models.Plan, error)
	GetAll() ([]models.Plan, error)
	GetActive() ([]models.Plan, error)
	GetByProductID(productID string) ([]models.Plan, error)
	Update(plan *models.Plan) error
	Delete(id string) error
	SetActive(id string, active bool) error
}

// CartRepository defines the interface for cart row operations.
// Rows are keyed by (userID, planID).
type CartRepository interface {
	Create(item *models.CartItem) error
	GetByUser(userID uint) ([]models.CartItem, error)
	GetByUserAndPlan(userID uint, planID string) (*models.CartItem, error)
	UpdateQuantity(userID uint, planID string, quantity int) error
	Delete(userID uint, planID string) error
	DeleteByUser(userID uint) error
}

// CouponRepository defines the interface for coupon operations
type CouponRepository interface {
	Create(coupon *models.Coupon) error
	GetByID(id string) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	GetActive() ([]models.Coupon, error)
	Update(coupon *models.Coupon) error
	Delete(id string) error
	// IncrementUsage bumps current_uses by one with a conditional update so
	// concurrent redemptions cannot overshoot max_uses. Returns
	// ErrUsageExhausted when the cap is already reached.
	IncrementUsage(id string) error
}

// OrderRepository defines the interface for order operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByIdempotencyKey(key string) (*models.Order, error)
	GetByUser(userID uint) ([]models.Order, error)
	GetAll(offset, limit int) ([]models.Order, error)
	UpdateStatus(id string, from, to string) error
	SetStatus(id string, status string) error
	Count() (int64, error)
	SumCompletedAmount(since time.Time) (int64, error)
}

// PaymentRepository defines the interface for payment attempt bookkeeping
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByOrderID(orderID string) (*models.Payment, error)
	Update(payment *models.Payment) error
}

// ClaimingInstructionRepository defines the interface for redemption steps
type ClaimingInstructionRepository interface {
	Upsert(instruction *models.ClaimingInstruction) error
	GetByPlanID(planID string) (*models.ClaimingInstruction, error)
	Delete(planID string) error
}

// Repositories bundles all repository instances
type Repositories struct {
	User                UserRepository
	Product             ProductRepository
	Plan                PlanRepository
	Cart                CartRepository
	Coupon              CouponRepository
	Order               OrderRepository
	Payment             PaymentRepository
	ClaimingInstruction ClaimingInstructionRepository
}

// NewRepositories creates all repositories against the given DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:                NewUserRepository(db),
		Product:             NewProductRepository(db),
		Plan:                NewPlanRepository(db),
		Cart:                NewCartRepository(db),
		Coupon:              NewCouponRepository(db),
		Order:               NewOrderRepository(db),
		Payment:             NewPaymentRepository(db),
		ClaimingInstruction: NewClaimingInstructionRepository(db),
	}
}
