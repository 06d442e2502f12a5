//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"course-affiliate-engine/internal/domain"
)

// --- CouponType Model Tests ---

func TestNewCouponType(t *testing.T) {
	t.Run("should create a percentage type successfully", func(t *testing.T) {
		ct, err := NewCouponType("spr", "Spring Sale", DiscountPercentage, 20)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if ct.TypeCode != "SPR" {
			t.Errorf("expected type code to be upper-cased to SPR, got %s", ct.TypeCode)
		}
		if !ct.IsActive {
			t.Error("expected new type to be active")
		}
	})

	t.Run("should fail with non-positive limit", func(t *testing.T) {
		_, err := NewCouponType("SPR", "Spring", DiscountPercentage, 0)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should fail with percentage limit over 100", func(t *testing.T) {
		_, err := NewCouponType("SPR", "Spring", DiscountPercentage, 120)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should fail with unknown kind", func(t *testing.T) {
		_, err := NewCouponType("SPR", "Spring", DiscountKind("bogus"), 10)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDiscountKind_Discount(t *testing.T) {
	t.Run("percentage discount of the course price", func(t *testing.T) {
		// 15% of Rs 800.00 (80000 paise) = Rs 120.00
		got := DiscountPercentage.Discount(15, 80000)
		if got != 12000 {
			t.Errorf("expected 12000 paise, got %d", got)
		}
	})

	t.Run("percentage discount rounds to whole paise", func(t *testing.T) {
		// 33% of 99999 paise = 32999.67 -> rounds to 33000
		got := DiscountPercentage.Discount(33, 99999)
		if got != 33000 {
			t.Errorf("expected 33000 paise, got %d", got)
		}
	})

	t.Run("fixed discount clamps at the course price", func(t *testing.T) {
		// Rs 1000 off a course priced Rs 800.00 -> full price, never negative
		got := DiscountFixedAmount.Discount(1000, 80000)
		if got != 80000 {
			t.Errorf("expected discount clamped to 80000 paise, got %d", got)
		}
	})

	t.Run("fixed discount below the price applies in full", func(t *testing.T) {
		got := DiscountFixedAmount.Discount(500, 80000)
		if got != 50000 {
			t.Errorf("expected 50000 paise, got %d", got)
		}
	})
}

// --- Coupon Model Tests ---

func TestBuildCouponCode(t *testing.T) {
	t.Run("percentage value is zero-padded to three digits", func(t *testing.T) {
		code := BuildCouponCode("JD001", "SPR", DiscountPercentage, 15)
		if code != "COUPJD001SPR015" {
			t.Errorf("expected COUPJD001SPR015, got %s", code)
		}
	})

	t.Run("fixed amount keeps its natural digit count", func(t *testing.T) {
		code := BuildCouponCode("JD001", "FST", DiscountFixedAmount, 500)
		if code != "COUPJD001FST500" {
			t.Errorf("expected COUPJD001FST500, got %s", code)
		}
	})
}

func TestCoupon_WithinValidity(t *testing.T) {
	now := time.Now()
	c := &Coupon{ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour)}
	if !c.WithinValidity(now) {
		t.Error("expected coupon to be within validity")
	}
	if c.WithinValidity(now.Add(2 * time.Hour)) {
		t.Error("expected coupon past validUntil to be invalid")
	}
	if c.WithinValidity(now.Add(-2 * time.Hour)) {
		t.Error("expected coupon before validFrom to be invalid")
	}
}

func TestCoupon_UsageExhausted(t *testing.T) {
	limit := int64(3)
	c := &Coupon{MaxUsageCount: &limit, CurrentUsageCount: 2}
	if c.UsageExhausted() {
		t.Error("expected usage not exhausted at 2/3")
	}
	c.CurrentUsageCount = 3
	if !c.UsageExhausted() {
		t.Error("expected usage exhausted at 3/3")
	}
	unlimited := &Coupon{CurrentUsageCount: 1000}
	if unlimited.UsageExhausted() {
		t.Error("expected nil max usage to mean unlimited")
	}
}

// --- Commission Model Tests ---

func TestCalculateCommission(t *testing.T) {
	t.Run("whole percent rate", func(t *testing.T) {
		// 10% of Rs 900.00 = Rs 90.00
		got := CalculateCommission(90000, decimal.NewFromInt(10))
		if got != 9000 {
			t.Errorf("expected 9000 paise, got %d", got)
		}
	})

	t.Run("fractional rate rounds to whole paise", func(t *testing.T) {
		// 12.5% of 99999 paise = 12499.875 -> 12500
		got := CalculateCommission(99999, decimal.RequireFromString("12.5"))
		if got != 12500 {
			t.Errorf("expected 12500 paise, got %d", got)
		}
	})
}

// --- PayoutRequest Model Tests ---

func TestPayoutRequest_CanTransition(t *testing.T) {
	cases := []struct {
		from    PayoutStatus
		to      PayoutStatus
		allowed bool
	}{
		{PayoutStatusPending, PayoutStatusApproved, true},
		{PayoutStatusPending, PayoutStatusRejected, true},
		{PayoutStatusPending, PayoutStatusPaid, false},
		{PayoutStatusApproved, PayoutStatusPaid, true},
		{PayoutStatusApproved, PayoutStatusRejected, false},
		{PayoutStatusRejected, PayoutStatusApproved, false},
		{PayoutStatusPaid, PayoutStatusPending, false},
	}
	for _, tc := range cases {
		p := &PayoutRequest{Status: tc.from}
		if got := p.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("transition %s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}
