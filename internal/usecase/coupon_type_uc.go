// File: internal/usecase/coupon_type_uc.go
package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/repository"
	"course-affiliate-engine/internal/infra/logging"
)

// Compile-time check
var _ CouponTypeUseCase = (*couponTypeUC)(nil)

// CouponTypeUseCase manages the admin-owned registry of coupon templates.
// Types are append-only: deactivation retires a type for new coupons without
// touching coupons already derived from it.
type CouponTypeUseCase interface {
	Create(ctx context.Context, typeCode, typeName string, kind model.DiscountKind, maxDiscountLimit int64) (*model.CouponType, error)
	Get(ctx context.Context, id string) (*model.CouponType, error)
	List(ctx context.Context) ([]*model.CouponType, error)
	Deactivate(ctx context.Context, id string) error
}

type couponTypeUC struct {
	types repository.CouponTypeRepository
	log   *zerolog.Logger
}

func NewCouponTypeUseCase(types repository.CouponTypeRepository, logger *zerolog.Logger) *couponTypeUC {
	return &couponTypeUC{types: types, log: logger}
}

func (u *couponTypeUC) Create(ctx context.Context, typeCode, typeName string, kind model.DiscountKind, maxDiscountLimit int64) (*model.CouponType, error) {
	defer logging.TraceDuration(u.log, "CouponTypeUC.Create")()

	ct, err := model.NewCouponType(typeCode, typeName, kind, maxDiscountLimit)
	if err != nil {
		return nil, err
	}

	// Fast duplicate check; the unique index on type_code is the real guard.
	if existing, err := u.types.FindByTypeCode(ctx, repository.NoTX, ct.TypeCode); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	ct.ID = uuid.NewString()
	if err := u.types.Save(ctx, repository.NoTX, ct); err != nil {
		return nil, err
	}
	u.log.Info().Str("type_code", ct.TypeCode).Str("kind", string(ct.Kind)).Msg("coupon type created")
	return ct, nil
}

func (u *couponTypeUC) Get(ctx context.Context, id string) (*model.CouponType, error) {
	return u.types.FindByID(ctx, repository.NoTX, id)
}

func (u *couponTypeUC) List(ctx context.Context) ([]*model.CouponType, error) {
	return u.types.ListAll(ctx, repository.NoTX)
}

func (u *couponTypeUC) Deactivate(ctx context.Context, id string) error {
	defer logging.TraceDuration(u.log, "CouponTypeUC.Deactivate")()
	return u.types.Deactivate(ctx, repository.NoTX, id)
}
