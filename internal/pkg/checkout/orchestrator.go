package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/onlypremiums/onlypremiums/app/models"
	"github.com/onlypremiums/onlypremiums/app/repository"
	"github.com/onlypremiums/onlypremiums/internal/pkg/cart"
	"github.com/onlypremiums/onlypremiums/internal/pkg/coupon"
	"github.com/onlypremiums/onlypremiums/internal/pkg/currency"
	"github.com/onlypremiums/onlypremiums/internal/pkg/payment"
)

var (
	// ErrEmptyCart is returned when checkout starts with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotOwner is returned when a user touches someone else's order.
	ErrNotOwner = errors.New("order does not belong to this user")
	// ErrInvalidSignature is returned when the payment success callback
	// carries a signature that does not verify.
	ErrInvalidSignature = errors.New("payment signature verification failed")
)

// Checkout is the explicit per-request context threaded through the
// orchestrator. The applied coupon travels here, never in package state.
type Checkout struct {
	User           models.User
	Items          []cart.Item
	AppliedCoupon  *models.Coupon
	IdempotencyKey string
}

// BeginResult carries everything the browser widget needs to open.
type BeginResult struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Gateway        string `json:"gateway"`
	KeyID          string `json:"key_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Subtotal       int64  `json:"subtotal"`
	Discount       int64  `json:"discount"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone,omitempty"`
	Description    string `json:"description"`
}

// Confirmation is the payload the widget's success handler posts back.
type Confirmation struct {
	OrderID          string `json:"order_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

// Success is the payload presented to the buyer after a confirmed payment.
type Success struct {
	OrderID     string `json:"order_id"`
	PaymentID   string `json:"payment_id"`
	TotalAmount int64  `json:"total_amount"`
	ItemsCount  int    `json:"items_count"`
}

// Orchestrator sequences order creation, payment, coupon bookkeeping and
// cart clearing. Orders are created as payment_pending and move to
// completed only when the gateway callback verifies; a dismissed widget
// marks them failed instead of leaving a phantom completed order.
type Orchestrator struct {
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	coupons  repository.CouponRepository
	users    repository.UserRepository
	carts    *cart.Service
	gateway  payment.Gateway

	// SendMail delivers the order confirmation. Swappable for tests.
	SendMail func(to, subject, body string) error
}

// NewOrchestrator wires the checkout orchestrator.
func NewOrchestrator(
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	coupons repository.CouponRepository,
	users repository.UserRepository,
	carts *cart.Service,
	gateway payment.Gateway,
) *Orchestrator {
	return &Orchestrator{
		orders:   orders,
		payments: payments,
		coupons:  coupons,
		users:    users,
		carts:    carts,
		gateway:  gateway,
	}
}

// Begin creates the order (payment_pending) and the gateway order the
// widget opens with. An idempotency key that already produced an order
// returns that order's widget parameters instead of creating a duplicate.
func (o *Orchestrator) Begin(ctx context.Context, chk *Checkout) (*BeginResult, error) {
	if len(chk.Items) == 0 {
		return nil, ErrEmptyCart
	}

	c := cart.Cart{Items: chk.Items}
	subtotal := c.Total()

	var discount int64
	couponID := ""
	if chk.AppliedCoupon != nil {
		discount = coupon.CalculateDiscount(discountableSubtotal(chk.Items, chk.AppliedCoupon), chk.AppliedCoupon.DiscountPercentage)
		couponID = chk.AppliedCoupon.ID
	}
	total := subtotal - discount

	if chk.IdempotencyKey == "" {
		chk.IdempotencyKey = uuid.NewString()
	} else if existing, err := o.orders.GetByIdempotencyKey(chk.IdempotencyKey); err == nil {
		// Replayed Begin: hand back the gateway order from the first attempt.
		// Creating a fresh gateway order here would leave a payment captured
		// against the first widget unverifiable on Confirm.
		if pay, perr := o.payments.GetByOrderID(existing.ID); perr == nil {
			return &BeginResult{
				OrderID:        existing.ID,
				GatewayOrderID: pay.GatewayOrderID,
				Gateway:        pay.Gateway,
				KeyID:          o.gateway.PublicKeyID(),
				Amount:         existing.TotalAmount,
				Currency:       pay.Currency,
				Subtotal:       subtotal,
				Discount:       discount,
				CustomerName:   chk.User.Name,
				CustomerEmail:  chk.User.Email,
				CustomerPhone:  chk.User.Phone,
				Description:    fmt.Sprintf("Purchase of %d item(s)", len(chk.Items)),
			}, nil
		}
		return o.beginResultFor(ctx, existing, chk, subtotal, discount)
	}

	items := make(models.OrderItems, 0, len(chk.Items))
	for _, item := range chk.Items {
		items = append(items, models.OrderItem{Plan: item.Plan, Quantity: item.Quantity})
	}

	order := &models.Order{
		ID:             models.NewOrderID(time.Now()),
		UserID:         chk.User.ID,
		Items:          items,
		TotalAmount:    total,
		Status:         models.ORDER_STATUS_PAYMENT_PENDING,
		CouponID:       couponID,
		IdempotencyKey: chk.IdempotencyKey,
	}
	if err := o.orders.Create(order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o.beginResultFor(ctx, order, chk, subtotal, discount)
}

// discountableSubtotal sums the lines a product-restricted coupon covers.
// An unrestricted coupon covers the whole cart.
func discountableSubtotal(items []cart.Item, cp *models.Coupon) int64 {
	var sum int64
	for _, item := range items {
		if cp.AppliesTo(item.Plan.ProductID) {
			sum += item.Plan.Price * int64(item.Quantity)
		}
	}
	return sum
}

func (o *Orchestrator) beginResultFor(ctx context.Context, order *models.Order, chk *Checkout, subtotal, discount int64) (*BeginResult, error) {
	gw, err := o.gateway.CreateOrder(ctx, order.TotalAmount, currency.INR, order.ID)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	pay := &models.Payment{
		OrderID:        order.ID,
		UserID:         chk.User.ID,
		Gateway:        o.gateway.Name(),
		GatewayOrderID: gw.ID,
		Amount:         order.TotalAmount,
		Currency:       currency.INR,
		Status:         models.PAYMENT_STATUS_PENDING,
	}
	if err := o.payments.Create(pay); err != nil {
		return nil, fmt.Errorf("create payment record: %w", err)
	}

	return &BeginResult{
		OrderID:        order.ID,
		GatewayOrderID: gw.ID,
		Gateway:        o.gateway.Name(),
		KeyID:          gw.KeyID,
		Amount:         order.TotalAmount,
		Currency:       currency.INR,
		Subtotal:       subtotal,
		Discount:       discount,
		CustomerName:   chk.User.Name,
		CustomerEmail:  chk.User.Email,
		CustomerPhone:  chk.User.Phone,
		Description:    fmt.Sprintf("Purchase of %d item(s)", len(chk.Items)),
	}, nil
}

// Confirm finalizes a paid order: verify the callback signature, mark the
// payment captured and the order completed, bump coupon usage, clear the
// cart and send the confirmation mail. Replays are rejected by the
// conditional payment_pending → completed transition.
func (o *Orchestrator) Confirm(ctx context.Context, userID uint, conf *Confirmation) (*Success, error) {
	order, err := o.orders.GetByID(conf.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}

	pay, err := o.payments.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if conf.GatewayOrderID != pay.GatewayOrderID ||
		!o.gateway.VerifySignature(pay.GatewayOrderID, conf.GatewayPaymentID, conf.Signature) {
		return nil, ErrInvalidSignature
	}

	if err := o.orders.UpdateStatus(order.ID, models.ORDER_STATUS_PAYMENT_PENDING, models.ORDER_STATUS_COMPLETED); err != nil {
		return nil, err
	}

	pay.GatewayPaymentID = conf.GatewayPaymentID
	pay.Status = models.PAYMENT_STATUS_COMPLETED
	if err := o.payments.Update(pay); err != nil {
		log.Printf("checkout: failed to update payment record for order %s: %v", order.ID, err)
	}

	// Usage is only counted against confirmed payments. Exhaustion here is
	// logged, not failed: the buyer already paid.
	if order.CouponID != "" {
		if err := o.coupons.IncrementUsage(order.CouponID); err != nil {
			log.Printf("checkout: failed to record coupon usage for order %s: %v", order.ID, err)
		}
	}

	if err := o.carts.Clear(order.UserID); err != nil {
		log.Printf("checkout: failed to clear cart for user %d: %v", order.UserID, err)
	}

	o.sendConfirmationMail(order)

	return &Success{
		OrderID:     order.ID,
		PaymentID:   conf.GatewayPaymentID,
		TotalAmount: order.TotalAmount,
		ItemsCount:  len(order.Items),
	}, nil
}

// Cancel marks an order failed after the widget was dismissed or the
// payment did not go through. The cart is left untouched so the buyer can
// retry.
func (o *Orchestrator) Cancel(ctx context.Context, userID uint, orderID string) error {
	order, err := o.orders.GetByID(orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return ErrNotOwner
	}

	if err := o.orders.UpdateStatus(orderID, models.ORDER_STATUS_PAYMENT_PENDING, models.ORDER_STATUS_FAILED); err != nil {
		return err
	}

	if pay, err := o.payments.GetByOrderID(orderID); err == nil {
		pay.Status = models.PAYMENT_STATUS_FAILED
		if err := o.payments.Update(pay); err != nil {
			log.Printf("checkout: failed to update payment record for order %s: %v", orderID, err)
		}
	}
	return nil
}

func (o *Orchestrator) sendConfirmationMail(order *models.Order) {
	if o.SendMail == nil {
		return
	}

	user, err := o.users.GetByID(order.UserID)
	if err != nil {
		log.Printf("checkout: cannot resolve mail recipient for order %s: %v", order.ID, err)
		return
	}

	body := fmt.Sprintf(
		"<h2>Thank you for your order!</h2><p>Hi %s, your order <strong>%s</strong> is confirmed.</p><p>Total: %s</p>",
		user.Name, order.ID, currency.FormatINR(order.TotalAmount),
	)
	subject := fmt.Sprintf("Order confirmation %s", order.ID)

	go func() {
		if err := o.SendMail(user.Email, subject, body); err != nil {
			log.Printf("checkout: failed to send confirmation mail for order %s: %v", order.ID, err)
		}
	}()
}
