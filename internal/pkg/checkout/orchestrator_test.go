package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/onlypremiums/onlypremiums/app/models"
	"github.com/onlypremiums/onlypremiums/app/repository"
	"github.com/onlypremiums/onlypremiums/internal/pkg/cart"
	"github.com/onlypremiums/onlypremiums/internal/pkg/payment"
)

// -- fakes ---------------------------------------------------------------

type fakeOrderRepo struct {
	orders map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderRepo) Create(order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) GetByIdempotencyKey(key string) (*models.Order, error) {
	for _, order := range f.orders {
		if order.IdempotencyKey == key {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) GetByUser(userID uint) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetAll(offset, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(id string, from, to string) error {
	order, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if order.Status != from {
		return repository.ErrInvalidStatusTransition
	}
	order.Status = to
	return nil
}

func (f *fakeOrderRepo) SetStatus(id string, status string) error {
	order, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (f *fakeOrderRepo) Count() (int64, error) {
	return int64(len(f.orders)), nil
}

func (f *fakeOrderRepo) SumCompletedAmount(since time.Time) (int64, error) {
	var sum int64
	for _, order := range f.orders {
		if order.Status == models.ORDER_STATUS_COMPLETED {
			sum += order.TotalAmount
		}
	}
	return sum, nil
}

type fakePaymentRepo struct {
	payments map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*models.Payment)}
}

func (f *fakePaymentRepo) Create(p *models.Payment) error {
	f.payments[p.OrderID] = p
	return nil
}

func (f *fakePaymentRepo) GetByOrderID(orderID string) (*models.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakePaymentRepo) Update(p *models.Payment) error {
	f.payments[p.OrderID] = p
	return nil
}

type fakeCouponRepo struct {
	coupons    map[string]*models.Coupon
	increments int
}

func newFakeCouponRepo(coupons ...models.Coupon) *fakeCouponRepo {
	f := &fakeCouponRepo{coupons: make(map[string]*models.Coupon)}
	for i := range coupons {
		f.coupons[coupons[i].ID] = &coupons[i]
	}
	return f
}

func (f *fakeCouponRepo) Create(c *models.Coupon) error {
	f.coupons[c.ID] = c
	return nil
}

func (f *fakeCouponRepo) GetByID(id string) (*models.Coupon, error) {
	c, ok := f.coupons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCouponRepo) GetByCode(code string) (*models.Coupon, error) {
	for _, c := range f.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) GetActive() ([]models.Coupon, error) {
	var out []models.Coupon
	for _, c := range f.coupons {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCouponRepo) Update(c *models.Coupon) error {
	f.coupons[c.ID] = c
	return nil
}

func (f *fakeCouponRepo) Delete(id string) error {
	delete(f.coupons, id)
	return nil
}

func (f *fakeCouponRepo) IncrementUsage(id string) error {
	c, ok := f.coupons[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return repository.ErrUsageExhausted
	}
	c.CurrentUses++
	f.increments++
	return nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[uint]*models.User)}
	for i := range users {
		f.users[users[i].ID] = &users[i]
	}
	return f
}

func (f *fakeUserRepo) Create(u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Delete(id uint) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(offset, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Count() (int64, error) {
	return int64(len(f.users)), nil
}

type fakeCartRepo struct {
	rows map[string]*models.CartItem
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{rows: make(map[string]*models.CartItem)}
}

func (f *fakeCartRepo) key(userID uint, planID string) string {
	return models.NewCartItemID(userID, planID, time.Unix(0, 0))
}

func (f *fakeCartRepo) Create(item *models.CartItem) error {
	f.rows[f.key(item.UserID, item.PlanID)] = item
	return nil
}

func (f *fakeCartRepo) GetByUser(userID uint) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) GetByUserAndPlan(userID uint, planID string) (*models.CartItem, error) {
	row, ok := f.rows[f.key(userID, planID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeCartRepo) UpdateQuantity(userID uint, planID string, quantity int) error {
	row, ok := f.rows[f.key(userID, planID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Quantity = quantity
	return nil
}

func (f *fakeCartRepo) Delete(userID uint, planID string) error {
	delete(f.rows, f.key(userID, planID))
	return nil
}

func (f *fakeCartRepo) DeleteByUser(userID uint) error {
	for key, row := range f.rows {
		if row.UserID == userID {
			delete(f.rows, key)
		}
	}
	return nil
}

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

func (f *fakePlanRepo) Create(plan *models.Plan) error { f.plans[plan.ID] = plan; return nil }

func (f *fakePlanRepo) Update(plan *models.Plan) error { f.plans[plan.ID] = plan; return nil }

func (f *fakePlanRepo) Delete(id string) error { delete(f.plans, id); return nil }

func (f *fakePlanRepo) SetActive(id string, active bool) error { return nil }

func (f *fakePlanRepo) GetByProductID(id string) ([]models.Plan, error) { return nil, nil }

func (f *fakePlanRepo) GetAll() ([]models.Plan, error) { return nil, nil }

func (f *fakePlanRepo) GetActive() ([]models.Plan, error) { return nil, nil }

func (f *fakePlanRepo) GetByID(id string) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

type fakeGateway struct {
	created   int
	failOrder bool
}

func (f *fakeGateway) Name() string { return "razorpay" }

func (f *fakeGateway) PublicKeyID() string { return "rzp_test_key" }

func (f *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payment.GatewayOrder, error) {
	if f.failOrder {
		return nil, errors.New("gateway unavailable")
	}
	f.created++
	// Distinct id per call, as the real gateway mints one per order.
	return &payment.GatewayOrder{
		ID:       fmt.Sprintf("gw_%s_%d", receipt, f.created),
		Amount:   amount,
		Currency: currency,
		KeyID:    "rzp_test_key",
	}, nil
}

func (f *fakeGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return signature == "valid-sig"
}

// -- fixtures ------------------------------------------------------------

type fixture struct {
	orch    *Orchestrator
	orders  *fakeOrderRepo
	coupons *fakeCouponRepo
	carts   *fakeCartRepo
	gateway *fakeGateway
	user    models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	user := models.User{ID: 1, Name: "Asha", Email: "asha@example.com"}
	plan := models.Plan{ID: "netflix-4k", ProductID: "netflix", Name: "Netflix 4K", Price: 19900, Active: true}

	orders := newFakeOrderRepo()
	payments := newFakePaymentRepo()
	coupons := newFakeCouponRepo(models.Coupon{
		ID: "cpn-1", Code: "SAVE40", DiscountPercentage: 40, Active: true,
		ValidFrom: time.Now().Add(-time.Hour),
	})
	users := newFakeUserRepo(user)
	cartRows := newFakeCartRepo()
	cartSvc := cart.NewService(cartRows, newFakePlanRepo(plan))
	if err := cartSvc.AddItem(user.ID, plan.ID); err != nil {
		t.Fatalf("seeding cart failed: %v", err)
	}
	gw := &fakeGateway{}

	orch := NewOrchestrator(orders, payments, coupons, users, cartSvc, gw)
	return &fixture{orch: orch, orders: orders, coupons: coupons, carts: cartRows, gateway: gw, user: user}
}

func (fx *fixture) checkoutItems(t *testing.T) []cart.Item {
	t.Helper()
	loaded, err := fx.orch.carts.Load(fx.user.ID)
	if err != nil {
		t.Fatalf("loading cart failed: %v", err)
	}
	return loaded.Items
}

func (fx *fixture) begin(t *testing.T, coupon *models.Coupon) *BeginResult {
	t.Helper()
	result, err := fx.orch.Begin(context.Background(), &Checkout{
		User:          fx.user,
		Items:         fx.checkoutItems(t),
		AppliedCoupon: coupon,
	})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	return result
}

// -- tests ---------------------------------------------------------------

func TestBeginCreatesPaymentPendingOrder(t *testing.T) {
	fx := newFixture(t)

	result := fx.begin(t, nil)

	order, err := fx.orders.GetByID(result.OrderID)
	if err != nil {
		t.Fatalf("order not stored: %v", err)
	}
	if order.Status != models.ORDER_STATUS_PAYMENT_PENDING {
		t.Fatalf("order status = %q, want %q", order.Status, models.ORDER_STATUS_PAYMENT_PENDING)
	}
	if result.Amount != 19900 {
		t.Fatalf("Amount = %d, want 19900", result.Amount)
	}
	if result.GatewayOrderID == "" || result.KeyID == "" {
		t.Fatalf("expected gateway order parameters, got %+v", result)
	}
}

func TestBeginAppliesCouponDiscount(t *testing.T) {
	fx := newFixture(t)
	coupon, _ := fx.coupons.GetByID("cpn-1")

	result := fx.begin(t, coupon)

	if result.Subtotal != 19900 {
		t.Fatalf("Subtotal = %d, want 19900", result.Subtotal)
	}
	if result.Discount != 7960 {
		t.Fatalf("Discount = %d, want 7960", result.Discount)
	}
	if result.Amount != 11940 {
		t.Fatalf("Amount = %d, want 11940", result.Amount)
	}
	if fx.coupons.increments != 0 {
		t.Fatalf("coupon usage must not be counted before payment")
	}
}

func TestBeginRejectsEmptyCart(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.orch.Begin(context.Background(), &Checkout{User: fx.user})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestBeginIsIdempotent(t *testing.T) {
	fx := newFixture(t)

	first, err := fx.orch.Begin(context.Background(), &Checkout{
		User:           fx.user,
		Items:          fx.checkoutItems(t),
		IdempotencyKey: "retry-123",
	})
	if err != nil {
		t.Fatalf("first Begin failed: %v", err)
	}
	second, err := fx.orch.Begin(context.Background(), &Checkout{
		User:           fx.user,
		Items:          fx.checkoutItems(t),
		IdempotencyKey: "retry-123",
	})
	if err != nil {
		t.Fatalf("second Begin failed: %v", err)
	}

	if first.OrderID != second.OrderID {
		t.Fatalf("idempotent retry created a second order: %s vs %s", first.OrderID, second.OrderID)
	}
	if first.GatewayOrderID != second.GatewayOrderID {
		t.Fatalf("idempotent retry created a second gateway order: %s vs %s", first.GatewayOrderID, second.GatewayOrderID)
	}
	if fx.gateway.created != 1 {
		t.Fatalf("gateway orders created = %d, want 1", fx.gateway.created)
	}
	if count, _ := fx.orders.Count(); count != 1 {
		t.Fatalf("expected one stored order, got %d", count)
	}
}

func TestBeginRetryKeepsFirstPaymentVerifiable(t *testing.T) {
	fx := newFixture(t)

	first, err := fx.orch.Begin(context.Background(), &Checkout{
		User:           fx.user,
		Items:          fx.checkoutItems(t),
		IdempotencyKey: "retry-456",
	})
	if err != nil {
		t.Fatalf("first Begin failed: %v", err)
	}
	if _, err := fx.orch.Begin(context.Background(), &Checkout{
		User:           fx.user,
		Items:          fx.checkoutItems(t),
		IdempotencyKey: "retry-456",
	}); err != nil {
		t.Fatalf("second Begin failed: %v", err)
	}

	// A payment captured against the first widget must still confirm after
	// the retried Begin.
	success, err := fx.orch.Confirm(context.Background(), fx.user.ID, &Confirmation{
		OrderID:          first.OrderID,
		GatewayOrderID:   first.GatewayOrderID,
		GatewayPaymentID: "pay_123",
		Signature:        "valid-sig",
	})
	if err != nil {
		t.Fatalf("Confirm failed after retried Begin: %v", err)
	}
	order, _ := fx.orders.GetByID(success.OrderID)
	if order.Status != models.ORDER_STATUS_COMPLETED {
		t.Fatalf("order status = %q, want completed", order.Status)
	}
}

func TestBeginRestrictedCouponDiscountsCoveredLinesOnly(t *testing.T) {
	user := models.User{ID: 1, Name: "Asha", Email: "asha@example.com"}
	netflix := models.Plan{ID: "netflix-4k", ProductID: "netflix", Name: "Netflix 4K", Price: 19900, Active: true}
	spotify := models.Plan{ID: "spotify-duo", ProductID: "spotify", Name: "Spotify Duo", Price: 9900, Active: true}

	cartRows := newFakeCartRepo()
	cartSvc := cart.NewService(cartRows, newFakePlanRepo(netflix, spotify))
	for _, planID := range []string{netflix.ID, spotify.ID} {
		if err := cartSvc.AddItem(user.ID, planID); err != nil {
			t.Fatalf("seeding cart failed: %v", err)
		}
	}
	restricted := models.Coupon{
		ID: "cpn-2", Code: "NETFLIX40", DiscountPercentage: 40, Active: true,
		ValidFrom:          time.Now().Add(-time.Hour),
		ApplicableProducts: models.StringList{"netflix"},
	}
	orch := NewOrchestrator(newFakeOrderRepo(), newFakePaymentRepo(), newFakeCouponRepo(restricted),
		newFakeUserRepo(user), cartSvc, &fakeGateway{})

	loaded, err := cartSvc.Load(user.ID)
	if err != nil {
		t.Fatalf("loading cart failed: %v", err)
	}
	result, err := orch.Begin(context.Background(), &Checkout{
		User:          user,
		Items:         loaded.Items,
		AppliedCoupon: &restricted,
	})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if result.Subtotal != 29800 {
		t.Fatalf("Subtotal = %d, want 29800", result.Subtotal)
	}
	if result.Discount != 7960 {
		t.Fatalf("Discount = %d, want 7960 (40%% of the covered line only)", result.Discount)
	}
	if result.Amount != 21840 {
		t.Fatalf("Amount = %d, want 21840", result.Amount)
	}
}

func TestConfirmCompletesOrder(t *testing.T) {
	fx := newFixture(t)
	coupon, _ := fx.coupons.GetByID("cpn-1")
	result := fx.begin(t, coupon)

	var mailed sync.WaitGroup
	mailed.Add(1)
	var mailTo string
	fx.orch.SendMail = func(to, subject, body string) error {
		mailTo = to
		mailed.Done()
		return nil
	}

	success, err := fx.orch.Confirm(context.Background(), fx.user.ID, &Confirmation{
		OrderID:          result.OrderID,
		GatewayOrderID:   result.GatewayOrderID,
		GatewayPaymentID: "pay_123",
		Signature:        "valid-sig",
	})
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	order, _ := fx.orders.GetByID(result.OrderID)
	if order.Status != models.ORDER_STATUS_COMPLETED {
		t.Fatalf("order status = %q, want completed", order.Status)
	}
	if success.TotalAmount != 11940 {
		t.Fatalf("TotalAmount = %d, want 11940", success.TotalAmount)
	}
	if fx.coupons.increments != 1 {
		t.Fatalf("coupon increments = %d, want 1", fx.coupons.increments)
	}
	if rows, _ := fx.carts.GetByUser(fx.user.ID); len(rows) != 0 {
		t.Fatalf("expected cart cleared after confirmation")
	}

	mailed.Wait()
	if mailTo != fx.user.Email {
		t.Fatalf("confirmation mail sent to %q, want %q", mailTo, fx.user.Email)
	}
}

func TestConfirmRejectsInvalidSignature(t *testing.T) {
	fx := newFixture(t)
	result := fx.begin(t, nil)

	_, err := fx.orch.Confirm(context.Background(), fx.user.ID, &Confirmation{
		OrderID:          result.OrderID,
		GatewayOrderID:   result.GatewayOrderID,
		GatewayPaymentID: "pay_123",
		Signature:        "forged",
	})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	order, _ := fx.orders.GetByID(result.OrderID)
	if order.Status != models.ORDER_STATUS_PAYMENT_PENDING {
		t.Fatalf("order must stay payment_pending after a forged callback")
	}
}

func TestConfirmRejectsMismatchedGatewayOrder(t *testing.T) {
	fx := newFixture(t)
	result := fx.begin(t, nil)

	_, err := fx.orch.Confirm(context.Background(), fx.user.ID, &Confirmation{
		OrderID:          result.OrderID,
		GatewayOrderID:   "gw_someone_elses",
		GatewayPaymentID: "pay_123",
		Signature:        "valid-sig",
	})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for mismatched gateway order, got %v", err)
	}
}

func TestConfirmRejectsReplay(t *testing.T) {
	fx := newFixture(t)
	result := fx.begin(t, nil)

	conf := &Confirmation{
		OrderID:          result.OrderID,
		GatewayOrderID:   result.GatewayOrderID,
		GatewayPaymentID: "pay_123",
		Signature:        "valid-sig",
	}
	if _, err := fx.orch.Confirm(context.Background(), fx.user.ID, conf); err != nil {
		t.Fatalf("first Confirm failed: %v", err)
	}
	if _, err := fx.orch.Confirm(context.Background(), fx.user.ID, conf); !errors.Is(err, repository.ErrInvalidStatusTransition) {
		t.Fatalf("expected replay to be rejected, got %v", err)
	}
}

func TestConfirmRejectsOtherUsersOrder(t *testing.T) {
	fx := newFixture(t)
	result := fx.begin(t, nil)

	_, err := fx.orch.Confirm(context.Background(), 99, &Confirmation{
		OrderID:          result.OrderID,
		GatewayOrderID:   result.GatewayOrderID,
		GatewayPaymentID: "pay_123",
		Signature:        "valid-sig",
	})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestCancelMarksOrderFailedAndKeepsCart(t *testing.T) {
	fx := newFixture(t)
	result := fx.begin(t, nil)

	if err := fx.orch.Cancel(context.Background(), fx.user.ID, result.OrderID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	order, _ := fx.orders.GetByID(result.OrderID)
	if order.Status != models.ORDER_STATUS_FAILED {
		t.Fatalf("order status = %q, want failed", order.Status)
	}
	if rows, _ := fx.carts.GetByUser(fx.user.ID); len(rows) != 1 {
		t.Fatalf("cancel must leave the cart intact")
	}
}

func TestCouponExhaustionDoesNotFailConfirm(t *testing.T) {
	fx := newFixture(t)
	maxUses := 1
	fx.coupons.coupons["cpn-1"].MaxUses = &maxUses
	fx.coupons.coupons["cpn-1"].CurrentUses = 1
	coupon, _ := fx.coupons.GetByID("cpn-1")

	result := fx.begin(t, coupon)
	_, err := fx.orch.Confirm(context.Background(), fx.user.ID, &Confirmation{
		OrderID:          result.OrderID,
		GatewayOrderID:   result.GatewayOrderID,
		GatewayPaymentID: "pay_123",
		Signature:        "valid-sig",
	})
	if err != nil {
		t.Fatalf("Confirm must not fail on coupon exhaustion: %v", err)
	}

	order, _ := fx.orders.GetByID(result.OrderID)
	if order.Status != models.ORDER_STATUS_COMPLETED {
		t.Fatalf("order status = %q, want completed", order.Status)
	}
}
