package catalog

import (
	"testing"

	"gorm.io/gorm"

	"github.com/onlypremiums/onlypremiums/app/models"
)

type fakePlanRepo struct {
	plans map[string]*models.Plan
}

func newFakePlanRepo(plans ...models.Plan) *fakePlanRepo {
	f := &fakePlanRepo{plans: make(map[string]*models.Plan)}
	for i := range plans {
		f.plans[plans[i].ID] = &plans[i]
	}
	return f
}

func (f *fakePlanRepo) Create(plan *models.Plan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakePlanRepo) GetByID(id string) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

func (f *fakePlanRepo) GetAll() ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range f.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePlanRepo) GetActive() ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range f.plans {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) GetByProductID(productID string) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range f.plans {
		if p.ProductID == productID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) Update(plan *models.Plan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakePlanRepo) Delete(id string) error {
	delete(f.plans, id)
	return nil
}

func (f *fakePlanRepo) SetActive(id string, active bool) error {
	plan, ok := f.plans[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	plan.Active = active
	return nil
}

type fakeProductRepo struct {
	products map[string]*models.Product
}

func newFakeProductRepo(products ...models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[string]*models.Product)}
	for i := range products {
		f.products[products[i].ID] = &products[i]
	}
	return f
}

func (f *fakeProductRepo) Create(product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) GetByID(id string) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) GetAll() ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) GetActive() ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Update(product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Delete(id string) error {
	delete(f.products, id)
	return nil
}

func validPlan(id, productID string, price, originalPrice int64, active bool) models.Plan {
	return models.Plan{
		ID:               id,
		ProductID:        productID,
		Name:             id,
		Duration:         models.DURATION_YEARLY,
		Price:            price,
		OriginalPrice:    originalPrice,
		ActivationMethod: models.ACTIVATION_ACCOUNT_UPGRADE,
		Active:           active,
	}
}

func newTestMirror(t *testing.T, plans []models.Plan, products []models.Product) *Mirror {
	t.Helper()
	m := NewMirror(newFakePlanRepo(plans...), newFakeProductRepo(products...))
	if err := m.RefreshPlans(); err != nil {
		t.Fatalf("RefreshPlans failed: %v", err)
	}
	if err := m.RefreshProducts(); err != nil {
		t.Fatalf("RefreshProducts failed: %v", err)
	}
	return m
}

func TestRefreshDerivesDiscountPercentage(t *testing.T) {
	m := newTestMirror(t, []models.Plan{
		validPlan("netflix-4k", "netflix", 11940, 19900, true),
	}, nil)

	plan, ok := m.PlanByID("netflix-4k")
	if !ok {
		t.Fatalf("plan missing from snapshot")
	}
	if plan.DiscountPercentage != 40 {
		t.Fatalf("DiscountPercentage = %d, want 40", plan.DiscountPercentage)
	}
}

func TestRefreshKeepsStoredDiscountPercentage(t *testing.T) {
	plan := validPlan("netflix-4k", "netflix", 11940, 19900, true)
	plan.DiscountPercentage = 25
	m := newTestMirror(t, []models.Plan{plan}, nil)

	got, _ := m.PlanByID("netflix-4k")
	if got.DiscountPercentage != 25 {
		t.Fatalf("DiscountPercentage = %d, want stored 25", got.DiscountPercentage)
	}
}

func TestActivePlansFiltersInactive(t *testing.T) {
	m := newTestMirror(t, []models.Plan{
		validPlan("a", "netflix", 100, 0, true),
		validPlan("b", "netflix", 100, 0, false),
	}, nil)

	active := m.ActivePlans()
	if len(active) != 1 || active[0].ID != "a" {
		t.Fatalf("ActivePlans = %+v, want only plan a", active)
	}
}

func TestProductInfoPlaceholderForUnknownID(t *testing.T) {
	m := newTestMirror(t, nil, nil)

	info := m.ProductInfo("mystery-product")
	if info.Name != "mystery-product" {
		t.Fatalf("placeholder Name = %q, want the product id", info.Name)
	}
	if info.Icon != "📦" {
		t.Fatalf("placeholder Icon = %q, want 📦", info.Icon)
	}
	if info.Category != "productivity" {
		t.Fatalf("placeholder Category = %q, want productivity", info.Category)
	}
	if info.Color != "bg-gradient-to-br from-gray-500 to-gray-600" {
		t.Fatalf("placeholder Color = %q", info.Color)
	}
}

func TestProductInfoForKnownID(t *testing.T) {
	m := newTestMirror(t, nil, []models.Product{{
		ID: "netflix", Name: "Netflix", Icon: "🎬", Category: "streaming", Active: true,
	}})

	info := m.ProductInfo("netflix")
	if info.Name != "Netflix" || info.Category != "streaming" {
		t.Fatalf("ProductInfo = %+v, want stored record", info)
	}
}

func TestPlansByCategory(t *testing.T) {
	m := newTestMirror(t, []models.Plan{
		validPlan("n1", "netflix", 100, 0, true),
		validPlan("s1", "slack", 100, 0, true),
		validPlan("n2", "netflix", 100, 0, false),
	}, []models.Product{
		{ID: "netflix", Name: "Netflix", Category: "streaming", Active: true},
		{ID: "slack", Name: "Slack", Category: "productivity", Active: true},
	})

	got := m.PlansByCategory("streaming")
	if len(got) != 1 || got[0].ID != "n1" {
		t.Fatalf("PlansByCategory(streaming) = %+v, want only active n1", got)
	}
}

func TestTogglePlanActiveWritesThrough(t *testing.T) {
	m := newTestMirror(t, []models.Plan{
		validPlan("a", "netflix", 100, 0, true),
	}, nil)

	if err := m.TogglePlanActive("a"); err != nil {
		t.Fatalf("TogglePlanActive failed: %v", err)
	}
	plan, _ := m.PlanByID("a")
	if plan.Active {
		t.Fatalf("expected plan inactive after toggle")
	}

	if err := m.TogglePlanActive("a"); err != nil {
		t.Fatalf("second TogglePlanActive failed: %v", err)
	}
	plan, _ = m.PlanByID("a")
	if !plan.Active {
		t.Fatalf("expected plan active after second toggle")
	}
}

func TestAddPlanGeneratesIDAndRefreshes(t *testing.T) {
	m := newTestMirror(t, nil, nil)

	plan := validPlan("", "netflix", 100, 0, true)
	plan.Name = "Netflix Monthly"
	if err := m.AddPlan(&plan); err != nil {
		t.Fatalf("AddPlan failed: %v", err)
	}
	if plan.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, ok := m.PlanByID(plan.ID); !ok {
		t.Fatalf("snapshot missing added plan")
	}
}

func TestDeletePlanRemovesFromSnapshot(t *testing.T) {
	m := newTestMirror(t, []models.Plan{
		validPlan("a", "netflix", 100, 0, true),
	}, nil)

	if err := m.DeletePlan("a"); err != nil {
		t.Fatalf("DeletePlan failed: %v", err)
	}
	if _, ok := m.PlanByID("a"); ok {
		t.Fatalf("snapshot still contains deleted plan")
	}
}
