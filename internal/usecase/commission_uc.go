// File: internal/usecase/commission_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/adapter"
	"course-affiliate-engine/internal/domain/ports/repository"
	"course-affiliate-engine/internal/infra/logging"
	"course-affiliate-engine/internal/infra/metrics"
)

// Compile-time check
var _ CommissionUseCase = (*commissionUC)(nil)

// ConfirmedSale is the payment-confirmation payload handed to RecordSale.
// PaymentID is the idempotency key: replays of the same confirmation are
// absorbed without a second commission or usage increment.
type ConfirmedSale struct {
	PaymentID      string
	StudentID      string
	CourseID       string
	CouponCode     string // empty when no coupon was applied
	SaleAmount     int64  // pre-discount price, paise
	DiscountAmount int64  // paise
	FinalAmount    int64  // amount actually charged, paise
	PaidAt         time.Time
}

type CommissionUseCase interface {
	// RecordSale turns a confirmed payment into a commission record. It is the
	// only place a coupon's usage count moves: the increment and the
	// commission insert commit or roll back together.
	RecordSale(ctx context.Context, sale *ConfirmedSale) (*model.Commission, error)
	ListByAgent(ctx context.Context, agentID string, limit int) ([]*model.Commission, error)
}

type commissionUC struct {
	commissions repository.CommissionRepository
	coupons     repository.CouponRepository
	agents      adapter.AgentDirectory
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewCommissionUseCase(commissions repository.CommissionRepository, coupons repository.CouponRepository, agents adapter.AgentDirectory, tm repository.TransactionManager, logger *zerolog.Logger) *commissionUC {
	return &commissionUC{commissions: commissions, coupons: coupons, agents: agents, tm: tm, log: logger}
}

func (u *commissionUC) RecordSale(ctx context.Context, sale *ConfirmedSale) (*model.Commission, error) {
	defer logging.TraceDuration(u.log, "CommissionUC.RecordSale")()
	ctx = logging.WithPaymentID(ctx, sale.PaymentID)

	if sale.PaymentID == "" || sale.CourseID == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Sales without a coupon carry no referral; nothing accrues.
	if sale.CouponCode == "" {
		return nil, nil
	}

	var (
		rec     *model.Commission
		created bool
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Replay fast path: an existing record for this payment wins before
		// any lock is taken.
		if existing, err := u.commissions.FindByPaymentID(ctx, tx, sale.PaymentID); err == nil {
			metrics.IncWebhookReplay()
			u.log.Info().Str("commission_id", existing.ID).Msg("payment already recorded, skipping")
			rec = existing
			return nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		coupon, err := u.coupons.FindActiveByCode(ctx, tx, sale.CouponCode)
		if err != nil {
			return err
		}
		agent, err := u.agents.GetAgent(ctx, coupon.OwnerAgentID)
		if err != nil {
			return err
		}

		// The conditional increment is what enforces the usage cap under
		// concurrency; exhaustion here rolls the whole confirmation back.
		if err := u.coupons.TryIncrementUsage(ctx, tx, coupon.ID); err != nil {
			metrics.IncCouponRedemption("exhausted")
			return err
		}

		c := &model.Commission{
			ID:               ulid.Make().String(),
			AgentID:          agent.ID,
			CouponID:         &coupon.ID,
			CourseID:         sale.CourseID,
			PaymentID:        sale.PaymentID,
			SaleAmount:       sale.SaleAmount,
			DiscountAmount:   sale.DiscountAmount,
			FinalAmount:      sale.FinalAmount,
			CommissionAmount: model.CalculateCommission(sale.FinalAmount, agent.CommissionRate),
			Status:           model.CommissionStatusPending,
			CreatedAt:        time.Now(),
		}
		inserted, err := u.commissions.Insert(ctx, tx, c)
		if err != nil {
			return err
		}
		if !inserted {
			// Lost a concurrent race on the same payment id: roll back so the
			// usage increment from this attempt is discarded too.
			metrics.IncWebhookReplay()
			return domain.ErrAlreadyExists
		}
		rec = c
		created = true
		return nil
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return u.commissions.FindByPaymentID(ctx, repository.NoTX, sale.PaymentID)
	}
	if err != nil {
		return nil, err
	}
	if created {
		metrics.IncCouponRedemption("ok")
		metrics.IncCommissionRecorded(rec.CommissionAmount)
		u.log.Info().
			Str("commission_id", rec.ID).
			Str("agent_id", rec.AgentID).
			Int64("commission_paise", rec.CommissionAmount).
			Msg("commission recorded")
	}
	return rec, nil
}

func (u *commissionUC) ListByAgent(ctx context.Context, agentID string, limit int) ([]*model.Commission, error) {
	return u.commissions.ListByAgent(ctx, repository.NoTX, agentID, limit)
}
