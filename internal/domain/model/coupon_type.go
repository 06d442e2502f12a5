package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"course-affiliate-engine/internal/domain"
)

type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "percentage"   // discount value is a percent of the course price
	DiscountFixedAmount DiscountKind = "fixed_amount" // discount value is rupees off the course price
)

// CouponType is an admin-managed template constraining the discount kind and
// the maximum discount an agent coupon derived from it may carry.
// Types are append-only: they are deactivated, never deleted, so historical
// coupons keep a valid reference.
type CouponType struct {
	ID               string // UUID
	TypeCode         string // short alphanumeric, unique; embedded in generated coupon codes
	TypeName         string
	Kind             DiscountKind
	MaxDiscountLimit int64 // percent for percentage types, whole rupees for fixed-amount types
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewCouponType validates inputs and builds a CouponType without an ID;
// the caller assigns one before persisting.
func NewCouponType(typeCode, typeName string, kind DiscountKind, maxDiscountLimit int64) (*CouponType, error) {
	typeCode = strings.ToUpper(strings.TrimSpace(typeCode))
	typeName = strings.TrimSpace(typeName)
	if typeCode == "" || typeName == "" {
		return nil, domain.ErrInvalidArgument
	}
	if kind != DiscountPercentage && kind != DiscountFixedAmount {
		return nil, domain.ErrInvalidArgument
	}
	if maxDiscountLimit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if kind == DiscountPercentage && maxDiscountLimit > 100 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &CouponType{
		TypeCode:         typeCode,
		TypeName:         typeName,
		Kind:             kind,
		MaxDiscountLimit: maxDiscountLimit,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Discount computes the discount in paise for the given discount value and a
// course price in paise. Percentage discounts round to whole paise; fixed
// discounts clamp at the course price so the payable amount never goes negative.
func (k DiscountKind) Discount(value, coursePrice int64) int64 {
	switch k {
	case DiscountPercentage:
		d := decimal.NewFromInt(coursePrice).
			Mul(decimal.NewFromInt(value)).
			Div(decimal.NewFromInt(100))
		return d.Round(0).IntPart()
	case DiscountFixedAmount:
		d := value * 100 // rupees -> paise
		if d > coursePrice {
			return coursePrice
		}
		return d
	}
	return 0
}
