package repository

import (
	"context"
	"time"

	"course-affiliate-engine/internal/domain/model"
)

// -----------------------------
// Commissions
// -----------------------------

// EarningsSummary aggregates an agent's commission rows on the read side.
// Totals are always derived from the rows, never from a stored counter.
type EarningsSummary struct {
	TotalEarned     int64 // paise, all-time
	EarnedThisMonth int64
	Pending         int64 // pending rows not yet reserved by a payout
	Paid            int64
}

// ProgramSummary aggregates the whole commission ledger for the back office.
type ProgramSummary struct {
	SalesCount       int64
	TotalCommission  int64 // paise, all-time
	PendingLiability int64 // pending rows, reserved or not
	PaidOut          int64
}

type CommissionRepository interface {
	// Insert persists a new commission record. When a record with the same
	// payment ID already exists nothing is written and (nil, false) inserted
	// flag is returned, making payment-confirmation replays idempotent.
	Insert(ctx context.Context, qx Tx, c *model.Commission) (inserted bool, err error)
	FindByPaymentID(ctx context.Context, qx Tx, paymentID string) (*model.Commission, error)
	ListByAgent(ctx context.Context, qx Tx, agentID string, limit int) ([]*model.Commission, error)
	ListByPayout(ctx context.Context, qx Tx, payoutID string) ([]*model.Commission, error)
	// SumPendingUnreserved returns the agent's pending commission not yet
	// linked to any payout request, locking the rows when called inside a
	// transaction.
	SumPendingUnreserved(ctx context.Context, qx Tx, agentID string) (int64, error)
	// ReserveForPayout links every pending, unreserved row of the agent to
	// the payout and returns the total amount reserved.
	ReserveForPayout(ctx context.Context, qx Tx, agentID, payoutID string) (int64, error)
	// ReleaseFromPayout clears the payout linkage, returning the rows to the
	// eligible pool (used when a payout is rejected).
	ReleaseFromPayout(ctx context.Context, qx Tx, payoutID string) error
	// MarkPaidByPayout flips every row covered by the payout to paid.
	MarkPaidByPayout(ctx context.Context, qx Tx, payoutID string) error
	Summary(ctx context.Context, qx Tx, agentID string, monthStart time.Time) (*EarningsSummary, error)
	ProgramSummary(ctx context.Context, qx Tx) (*ProgramSummary, error)
}
