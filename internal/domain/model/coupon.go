package model

import (
	"fmt"
	"time"
)

// Coupon is a concrete, agent-owned discount code derived from a CouponType.
// The public code string is derived from agent + type + value and changes when
// the coupon is edited; the ID is the stable identity for all internal
// references.
type Coupon struct {
	ID                string // UUID
	Code              string // COUP<AgentCode><TypeCode><EncodedValue>, unique among active coupons
	CouponTypeID      string // UUID -> CouponType (owns discount kind and cap)
	OwnerAgentID      string // UUID -> referring agent
	DiscountValue     int64  // percent or whole rupees depending on the type's kind
	MaxUsageCount     *int64 // nil = unlimited
	CurrentUsageCount int64  // monotonically increasing, starts at 0
	ValidFrom         time.Time
	ValidUntil        time.Time
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BuildCouponCode derives the public code for a coupon. It is a pure function
// so callers can preview a code without persisting or reserving anything.
// Percentage values are zero-padded to three digits (15 -> "015"); fixed
// amounts keep their natural digit count (500 -> "500").
func BuildCouponCode(agentCode, typeCode string, kind DiscountKind, value int64) string {
	if kind == DiscountPercentage {
		return fmt.Sprintf("COUP%s%s%03d", agentCode, typeCode, value)
	}
	return fmt.Sprintf("COUP%s%s%d", agentCode, typeCode, value)
}

// WithinValidity reports whether now falls inside the coupon's validity window.
func (c *Coupon) WithinValidity(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// UsageExhausted reports whether the usage cap, if any, has been reached.
func (c *Coupon) UsageExhausted() bool {
	return c.MaxUsageCount != nil && c.CurrentUsageCount >= *c.MaxUsageCount
}

// CouponAssignment binds a coupon to a specific student and course, bypassing
// manual code entry at checkout.
type CouponAssignment struct {
	ID        string // UUID
	CouponID  string // UUID -> Coupon
	StudentID string // UUID
	CourseID  string // UUID
	CreatedAt time.Time
}
