package catalog

import (
	"sync"

	"github.com/google/uuid"
	"github.com/onlypremiums/onlypremiums/app/models"
	"github.com/onlypremiums/onlypremiums/app/repository"
)

// Mirror keeps an in-memory reflection of the plan and product catalog.
// Reads are served from the snapshot; admin mutations write through to the
// repositories and then replace the whole snapshot with a fresh read. No
// partial merge: after every write the mirror equals the database.
type Mirror struct {
	mu       sync.RWMutex
	plans    []models.Plan
	products map[string]models.ProductInfo

	planRepo    repository.PlanRepository
	productRepo repository.ProductRepository
}

// NewMirror creates a catalog mirror from injected repositories. Call
// RefreshPlans and RefreshProducts once during startup to populate it.
func NewMirror(planRepo repository.PlanRepository, productRepo repository.ProductRepository) *Mirror {
	return &Mirror{
		products:    make(map[string]models.ProductInfo),
		planRepo:    planRepo,
		productRepo: productRepo,
	}
}

// RefreshPlans replaces the plan snapshot from a fresh repository read.
// Plans without a stored discount percentage get it derived from the price
// difference.
func (m *Mirror) RefreshPlans() error {
	plans, err := m.planRepo.GetAll()
	if err != nil {
		return err
	}

	for i := range plans {
		if plans[i].DiscountPercentage == 0 {
			plans[i].DiscountPercentage = models.DerivedDiscountPercentage(plans[i].Price, plans[i].OriginalPrice)
		}
	}

	m.mu.Lock()
	m.plans = plans
	m.mu.Unlock()
	return nil
}

// RefreshProducts replaces the product snapshot from a fresh repository read.
func (m *Mirror) RefreshProducts() error {
	products, err := m.productRepo.GetAll()
	if err != nil {
		return err
	}

	snapshot := make(map[string]models.ProductInfo, len(products))
	for _, p := range products {
		snapshot[p.ID] = p.Info()
	}

	m.mu.Lock()
	m.products = snapshot
	m.mu.Unlock()
	return nil
}

// Plans returns a copy of the current plan snapshot.
func (m *Mirror) Plans() []models.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Plan, len(m.plans))
	copy(out, m.plans)
	return out
}

// ActivePlans returns the active plans from the snapshot.
func (m *Mirror) ActivePlans() []models.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Plan
	for _, p := range m.plans {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// PlanByID looks up a plan in the snapshot.
func (m *Mirror) PlanByID(id string) (models.Plan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// PlansByProduct returns all plans for a product.
func (m *Mirror) PlansByProduct(productID string) []models.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Plan
	for _, p := range m.plans {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out
}

// PlansByCategory returns the active plans whose product belongs to the
// given category.
func (m *Mirror) PlansByCategory(category string) []models.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Plan
	for _, p := range m.plans {
		if !p.Active {
			continue
		}
		if info, ok := m.products[p.ProductID]; ok && info.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Products returns a copy of the product snapshot keyed by product id.
func (m *Mirror) Products() map[string]models.ProductInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]models.ProductInfo, len(m.products))
	for k, v := range m.products {
		out[k] = v
	}
	return out
}

// ProductInfo resolves presentation info for a product id. Unknown ids get
// a generic placeholder so callers can always render something; missing
// mappings surface as the placeholder, not as an error. Intentional.
func (m *Mirror) ProductInfo(productID string) models.ProductInfo {
	m.mu.RLock()
	info, ok := m.products[productID]
	m.mu.RUnlock()
	if ok {
		return info
	}

	return models.ProductInfo{
		Name:      productID,
		Color:     "bg-gradient-to-br from-gray-500 to-gray-600",
		TextColor: "text-gray-600",
		BgLight:   "bg-gray-50",
		Icon:      "📦",
		Category:  "productivity",
	}
}

// AddPlan persists a new plan and refreshes the snapshot. A missing id gets
// a generated UUID.
func (m *Mirror) AddPlan(plan *models.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if err := plan.Validate(); err != nil {
		return err
	}
	if err := m.planRepo.Create(plan); err != nil {
		return err
	}
	return m.RefreshPlans()
}

// UpdatePlan persists plan changes and refreshes the snapshot.
func (m *Mirror) UpdatePlan(plan *models.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	if err := m.planRepo.Update(plan); err != nil {
		return err
	}
	return m.RefreshPlans()
}

// DeletePlan removes a plan and refreshes the snapshot.
func (m *Mirror) DeletePlan(id string) error {
	if err := m.planRepo.Delete(id); err != nil {
		return err
	}
	return m.RefreshPlans()
}

// TogglePlanActive flips a plan's active flag and refreshes the snapshot.
func (m *Mirror) TogglePlanActive(id string) error {
	plan, ok := m.PlanByID(id)
	if !ok {
		current, err := m.planRepo.GetByID(id)
		if err != nil {
			return err
		}
		plan = *current
	}
	if err := m.planRepo.SetActive(id, !plan.Active); err != nil {
		return err
	}
	return m.RefreshPlans()
}

// AddProduct persists a new product and refreshes the snapshot.
func (m *Mirror) AddProduct(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if err := product.Validate(); err != nil {
		return err
	}
	if err := m.productRepo.Create(product); err != nil {
		return err
	}
	return m.RefreshProducts()
}

// UpdateProduct persists product changes and refreshes the snapshot.
func (m *Mirror) UpdateProduct(product *models.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if err := m.productRepo.Update(product); err != nil {
		return err
	}
	return m.RefreshProducts()
}

// DeleteProduct removes a product and refreshes the snapshot.
func (m *Mirror) DeleteProduct(id string) error {
	if err := m.productRepo.Delete(id); err != nil {
		return err
	}
	return m.RefreshProducts()
}
