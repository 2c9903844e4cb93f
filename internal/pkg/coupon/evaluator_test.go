package coupon

import (
	"testing"
	"time"

	"github.com/onlypremiums/onlypremiums/app/models"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestApplyMessages(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	available := []models.Coupon{
		{ID: "c1", Code: "SAVE40", DiscountPercentage: 40, Active: true, ValidFrom: now.Add(-time.Hour)},
		{ID: "c2", Code: "LATER", DiscountPercentage: 10, Active: true, ValidFrom: now.Add(time.Hour)},
		{ID: "c3", Code: "GONE", DiscountPercentage: 10, Active: true, ValidFrom: now.Add(-48 * time.Hour), ValidUntil: timePtr(now.Add(-time.Hour))},
		{ID: "c4", Code: "USEDUP", DiscountPercentage: 10, Active: true, ValidFrom: now.Add(-time.Hour), MaxUses: intPtr(5), CurrentUses: 5},
	}

	tests := []struct {
		code        string
		wantSuccess bool
		wantMessage string
	}{
		{code: "NOPE", wantSuccess: false, wantMessage: "Invalid coupon code"},
		{code: "LATER", wantSuccess: false, wantMessage: "Coupon is not yet active"},
		{code: "GONE", wantSuccess: false, wantMessage: "Coupon has expired"},
		{code: "USEDUP", wantSuccess: false, wantMessage: "Coupon usage limit reached"},
		{code: "SAVE40", wantSuccess: true, wantMessage: "Coupon applied! 40% discount"},
		{code: "save40", wantSuccess: true, wantMessage: "Coupon applied! 40% discount"},
	}

	for _, tt := range tests {
		got := Apply(available, tt.code, now)
		if got.Success != tt.wantSuccess {
			t.Fatalf("Apply(%q).Success = %v, want %v", tt.code, got.Success, tt.wantSuccess)
		}
		if got.Message != tt.wantMessage {
			t.Fatalf("Apply(%q).Message = %q, want %q", tt.code, got.Message, tt.wantMessage)
		}
	}
}

func TestApplyCarriesCoupon(t *testing.T) {
	now := time.Now()
	available := []models.Coupon{
		{ID: "c1", Code: "SAVE40", DiscountPercentage: 40, Active: true, ValidFrom: now.Add(-time.Hour)},
	}

	got := Apply(available, "SAVE40", now)
	if got.Coupon == nil || got.Coupon.ID != "c1" {
		t.Fatalf("expected result to carry the matched coupon, got %+v", got.Coupon)
	}
	if got.Discount != 40 {
		t.Fatalf("Discount = %d, want 40", got.Discount)
	}
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		subtotal int64
		pct      int
		want     int64
	}{
		{subtotal: 19900, pct: 40, want: 7960},
		{subtotal: 100, pct: 100, want: 100},
		{subtotal: 101, pct: 50, want: 51},
		{subtotal: 99, pct: 33, want: 33},
		{subtotal: 0, pct: 40, want: 0},
		{subtotal: 19900, pct: 0, want: 0},
		{subtotal: -500, pct: 40, want: 0},
	}

	for _, tt := range tests {
		if got := CalculateDiscount(tt.subtotal, tt.pct); got != tt.want {
			t.Fatalf("CalculateDiscount(%d, %d) = %d, want %d", tt.subtotal, tt.pct, got, tt.want)
		}
	}
}

func TestCalculateDiscountNeverExceedsSubtotal(t *testing.T) {
	for _, subtotal := range []int64{1, 49, 99, 100, 19900, 1234567} {
		for pct := 1; pct <= 100; pct++ {
			got := CalculateDiscount(subtotal, pct)
			if got > subtotal {
				t.Fatalf("CalculateDiscount(%d, %d) = %d exceeds subtotal", subtotal, pct, got)
			}
		}
	}
}
