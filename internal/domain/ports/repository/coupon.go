package repository

import (
	"context"

	"course-affiliate-engine/internal/domain/model"
)

// -----------------------------
// Coupons
// -----------------------------

type CouponRepository interface {
	// Save inserts or updates a coupon. Insertion returns
	// domain.ErrDuplicateCode when the derived code collides with another
	// active coupon (backed by a partial unique index on code).
	Save(ctx context.Context, qx Tx, c *model.Coupon) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.Coupon, error)
	// FindActiveByCode looks up an active coupon by its public code string.
	FindActiveByCode(ctx context.Context, qx Tx, code string) (*model.Coupon, error)
	ListByAgent(ctx context.Context, qx Tx, agentID string) ([]*model.Coupon, error)
	// TryIncrementUsage atomically increments current_usage_count when the
	// usage cap allows it, in a single conditional UPDATE. Returns
	// domain.ErrUsageExhausted when the cap is already reached, so that at
	// most max_usage_count concurrent redemptions ever succeed.
	TryIncrementUsage(ctx context.Context, qx Tx, id string) error
	Deactivate(ctx context.Context, qx Tx, id string) error
	// DeactivateExpired retires every active coupon whose validity window has
	// passed; returns the number of coupons touched.
	DeactivateExpired(ctx context.Context, qx Tx) (int64, error)
	CountActive(ctx context.Context, qx Tx) (int64, error)
}

// -----------------------------
// Coupon assignments
// -----------------------------

type CouponAssignmentRepository interface {
	Save(ctx context.Context, qx Tx, a *model.CouponAssignment) error
	FindByStudentAndCourse(ctx context.Context, qx Tx, studentID, courseID string) (*model.CouponAssignment, error)
	ListByCoupon(ctx context.Context, qx Tx, couponID string) ([]*model.CouponAssignment, error)
}
