package cart

import (
	"errors"
	"time"

	"github.com/onlypremiums/onlypremiums/app/models"
	"github.com/onlypremiums/onlypremiums/app/repository"
	"gorm.io/gorm"
)

// ErrUnauthenticated is returned for cart operations without a logged-in
// user. A hard error on purpose: silently dropping the mutation would let
// the caller believe the item was added.
var ErrUnauthenticated = errors.New("cart operation requires an authenticated user")

// ErrPlanNotFound is returned when the referenced plan does not exist or is
// no longer purchasable.
var ErrPlanNotFound = errors.New("plan not found or inactive")

// Item is one cart line, denormalized with its plan snapshot.
type Item struct {
	Plan     models.Plan `json:"plan"`
	Quantity int         `json:"quantity"`
}

// Cart is a user's loaded cart with derived totals.
type Cart struct {
	Items []Item `json:"items"`
}

// Total is the subtotal in minor currency units: Σ price × quantity.
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Plan.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount is the total quantity across all lines: Σ quantity.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Service owns cart mutations. The database write is authoritative; there
// is no optimistic in-memory state to roll back.
type Service struct {
	carts repository.CartRepository
	plans repository.PlanRepository
}

// NewService creates a cart service from injected repositories.
func NewService(carts repository.CartRepository, plans repository.PlanRepository) *Service {
	return &Service{carts: carts, plans: plans}
}

// Load fetches all cart rows for the user with their plan snapshots. Rows
// whose plan has been deleted from the catalog are skipped.
func (s *Service) Load(userID uint) (*Cart, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	rows, err := s.carts.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	cart := &Cart{Items: make([]Item, 0, len(rows))}
	for _, row := range rows {
		plan, err := s.plans.GetByID(row.PlanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		cart.Items = append(cart.Items, Item{Plan: *plan, Quantity: row.Quantity})
	}
	return cart, nil
}

// AddItem adds one unit of the plan. An existing row for the same plan gets
// its quantity incremented; otherwise a new row with quantity 1 is inserted.
func (s *Service) AddItem(userID uint, planID string) error {
	if userID == 0 {
		return ErrUnauthenticated
	}

	plan, err := s.plans.GetByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	if !plan.Active {
		return ErrPlanNotFound
	}

	existing, err := s.carts.GetByUserAndPlan(userID, planID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		item := &models.CartItem{
			ID:       models.NewCartItemID(userID, planID, time.Now()),
			UserID:   userID,
			PlanID:   planID,
			Quantity: 1,
		}
		return s.carts.Create(item)
	}

	return s.carts.UpdateQuantity(userID, planID, existing.Quantity+1)
}

// RemoveItem deletes the row for the plan.
func (s *Service) RemoveItem(userID uint, planID string) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	return s.carts.Delete(userID, planID)
}

// UpdateQuantity sets the quantity for the plan's row. A quantity of zero
// or less removes the row. No upper bound is enforced.
func (s *Service) UpdateQuantity(userID uint, planID string, quantity int) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	if quantity <= 0 {
		return s.RemoveItem(userID, planID)
	}
	return s.carts.UpdateQuantity(userID, planID, quantity)
}

// Clear deletes all cart rows for the user.
func (s *Service) Clear(userID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	return s.carts.DeleteByUser(userID)
}
