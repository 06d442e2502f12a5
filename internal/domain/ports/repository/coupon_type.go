package repository

import (
	"context"

	"course-affiliate-engine/internal/domain/model"
)

// -----------------------------
// Coupon types
// -----------------------------

type CouponTypeRepository interface {
	Save(ctx context.Context, qx Tx, ct *model.CouponType) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.CouponType, error)
	FindByTypeCode(ctx context.Context, qx Tx, typeCode string) (*model.CouponType, error)
	ListAll(ctx context.Context, qx Tx) ([]*model.CouponType, error)
	// Deactivate flips is_active off. Types are never deleted.
	Deactivate(ctx context.Context, qx Tx, id string) error
}
