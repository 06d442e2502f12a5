package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "pending" // accrued, not yet covered by a paid payout
	CommissionStatusPaid    CommissionStatus = "paid"    // settled through a payout marked paid
)

// Commission records the share of one confirmed sale owed to the referring
// agent. Exactly one record exists per payment ID; the record is immutable
// except for the status flip driven by payout settlement.
type Commission struct {
	ID               string // ULID, time-sortable
	AgentID          string // UUID -> referring agent
	CouponID         *string
	CourseID         string
	PaymentID        string // gateway payment id, unique; idempotency key
	SaleAmount       int64  // pre-discount course price, paise
	DiscountAmount   int64  // paise
	FinalAmount      int64  // amount actually charged, paise
	CommissionAmount int64  // paise
	Status           CommissionStatus
	PayoutID         *string // ULID -> PayoutRequest covering this record, if reserved
	CreatedAt        time.Time
}

// CalculateCommission computes the commission in paise for a final charged
// amount (paise) and a commission rate in percent. The result is rounded to
// whole paise so no sub-paise fractions are ever retained.
func CalculateCommission(finalAmount int64, ratePercent decimal.Decimal) int64 {
	return decimal.NewFromInt(finalAmount).
		Mul(ratePercent).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
