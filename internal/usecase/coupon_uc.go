// File: internal/usecase/coupon_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/adapter"
	"course-affiliate-engine/internal/domain/ports/repository"
	"course-affiliate-engine/internal/infra/logging"
	"course-affiliate-engine/internal/infra/metrics"
)

// Compile-time check
var _ CouponUseCase = (*couponUC)(nil)

// CouponUseCase covers an agent's coupon lifecycle: code preview, commit,
// edit, and retirement. Preview never persists or reserves anything; only
// Commit writes, and the unique index on active codes resolves concurrent
// commits of the same agent+type+value combination.
type CouponUseCase interface {
	// Preview derives the code a coupon would get, with no side effects.
	Preview(ctx context.Context, agentID, couponTypeID string, discountValue int64) (string, error)
	Commit(ctx context.Context, agentID, couponTypeID string, discountValue int64, maxUsageCount *int64, validFrom, validUntil time.Time) (*model.Coupon, error)
	// Edit re-derives the public code from the new value; the coupon ID is
	// the stable identity for all internal references.
	Edit(ctx context.Context, couponID string, discountValue int64, maxUsageCount *int64, validFrom, validUntil time.Time) (*model.Coupon, error)
	Retire(ctx context.Context, couponID, agentID string) error
	// SweepExpired retires every active coupon whose validity window has
	// passed and returns how many were touched.
	SweepExpired(ctx context.Context) (int64, error)
	Get(ctx context.Context, couponID string) (*model.Coupon, error)
	ListByAgent(ctx context.Context, agentID string) ([]*model.Coupon, error)
}

type couponUC struct {
	coupons repository.CouponRepository
	types   repository.CouponTypeRepository
	agents  adapter.AgentDirectory
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewCouponUseCase(coupons repository.CouponRepository, types repository.CouponTypeRepository, agents adapter.AgentDirectory, tm repository.TransactionManager, logger *zerolog.Logger) *couponUC {
	return &couponUC{coupons: coupons, types: types, agents: agents, tm: tm, log: logger}
}

// resolveCodeParts loads the agent and type and validates the discount value
// against the type's cap.
func (u *couponUC) resolveCodeParts(ctx context.Context, qx repository.Tx, agentID, couponTypeID string, discountValue int64) (*model.Agent, *model.CouponType, error) {
	agent, err := u.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, nil, err
	}
	if !agent.IsActive {
		return nil, nil, domain.ErrNotFound
	}
	ct, err := u.types.FindByID(ctx, qx, couponTypeID)
	if err != nil {
		return nil, nil, err
	}
	if !ct.IsActive {
		// Deactivated types parameterize no new coupons.
		return nil, nil, domain.ErrInvalidArgument
	}
	if discountValue <= 0 {
		return nil, nil, domain.ErrInvalidArgument
	}
	if discountValue > ct.MaxDiscountLimit {
		return nil, nil, domain.ErrLimitExceeded
	}
	return agent, ct, nil
}

func (u *couponUC) Preview(ctx context.Context, agentID, couponTypeID string, discountValue int64) (string, error) {
	agent, ct, err := u.resolveCodeParts(ctx, repository.NoTX, agentID, couponTypeID, discountValue)
	if err != nil {
		return "", err
	}
	return model.BuildCouponCode(agent.AgentCode, ct.TypeCode, ct.Kind, discountValue), nil
}

func (u *couponUC) Commit(ctx context.Context, agentID, couponTypeID string, discountValue int64, maxUsageCount *int64, validFrom, validUntil time.Time) (*model.Coupon, error) {
	defer logging.TraceDuration(u.log, "CouponUC.Commit")()

	if !validUntil.After(validFrom) {
		return nil, domain.ErrInvalidArgument
	}
	if maxUsageCount != nil && *maxUsageCount <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	var coupon *model.Coupon
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		agent, ct, err := u.resolveCodeParts(ctx, tx, agentID, couponTypeID, discountValue)
		if err != nil {
			return err
		}
		now := time.Now()
		coupon = &model.Coupon{
			ID:            uuid.NewString(),
			Code:          model.BuildCouponCode(agent.AgentCode, ct.TypeCode, ct.Kind, discountValue),
			CouponTypeID:  ct.ID,
			OwnerAgentID:  agent.ID,
			DiscountValue: discountValue,
			MaxUsageCount: maxUsageCount,
			ValidFrom:     validFrom,
			ValidUntil:    validUntil,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := u.coupons.Save(ctx, tx, coupon); err != nil {
			return err
		}
		metrics.IncCouponCommitted(string(ct.Kind))
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("coupon_code", coupon.Code).Str("agent_id", agentID).Msg("coupon committed")
	return coupon, nil
}

func (u *couponUC) Edit(ctx context.Context, couponID string, discountValue int64, maxUsageCount *int64, validFrom, validUntil time.Time) (*model.Coupon, error) {
	defer logging.TraceDuration(u.log, "CouponUC.Edit")()

	if !validUntil.After(validFrom) {
		return nil, domain.ErrInvalidArgument
	}

	var coupon *model.Coupon
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		c, err := u.coupons.FindByID(ctx, tx, couponID)
		if err != nil {
			return err
		}
		agent, ct, err := u.resolveCodeParts(ctx, tx, c.OwnerAgentID, c.CouponTypeID, discountValue)
		if err != nil {
			return err
		}
		c.Code = model.BuildCouponCode(agent.AgentCode, ct.TypeCode, ct.Kind, discountValue)
		c.DiscountValue = discountValue
		c.MaxUsageCount = maxUsageCount
		c.ValidFrom = validFrom
		c.ValidUntil = validUntil
		c.UpdatedAt = time.Now()
		if err := u.coupons.Save(ctx, tx, c); err != nil {
			return err
		}
		coupon = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

func (u *couponUC) Retire(ctx context.Context, couponID, agentID string) error {
	defer logging.TraceDuration(u.log, "CouponUC.Retire")()

	c, err := u.coupons.FindByID(ctx, repository.NoTX, couponID)
	if err != nil {
		return err
	}
	if c.OwnerAgentID != agentID {
		return domain.ErrNotFound
	}
	return u.coupons.Deactivate(ctx, repository.NoTX, couponID)
}

func (u *couponUC) SweepExpired(ctx context.Context) (int64, error) {
	return u.coupons.DeactivateExpired(ctx, repository.NoTX)
}

func (u *couponUC) Get(ctx context.Context, couponID string) (*model.Coupon, error) {
	return u.coupons.FindByID(ctx, repository.NoTX, couponID)
}

func (u *couponUC) ListByAgent(ctx context.Context, agentID string) ([]*model.Coupon, error) {
	return u.coupons.ListByAgent(ctx, repository.NoTX, agentID)
}
