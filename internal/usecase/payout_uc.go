// File: internal/usecase/payout_uc.go
package usecase

import (
	"context"
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
var _ PayoutUseCase = (*payoutUC)(nil)

type PayoutUseCase interface {
	// Request opens a payout settling the agent's entire pending balance.
	// amount is the balance the agent was shown: it is validated against the
	// live sum under row locks and domain.ErrInsufficientBalance is returned
	// when it exceeds what is actually available. The covering commission
	// rows are linked to the payout in the same transaction, so concurrent
	// requests cannot double-spend them; the payout's recorded amount is the
	// sum actually reserved.
	Request(ctx context.Context, agentID string, amount int64) (*model.PayoutRequest, error)
	Approve(ctx context.Context, payoutID string) (*model.PayoutRequest, error)
	// Reject moves a pending payout to the terminal rejected state and
	// releases its commission rows back to the eligible pool. The reason is
	// mandatory and shown to the agent.
	Reject(ctx context.Context, payoutID, reason string) (*model.PayoutRequest, error)
	// MarkPaid settles an approved payout and flips every covered commission
	// row to paid.
	MarkPaid(ctx context.Context, payoutID string) (*model.PayoutRequest, error)
	Get(ctx context.Context, payoutID string) (*model.PayoutRequest, error)
	ListByAgent(ctx context.Context, agentID string) ([]*model.PayoutRequest, error)
	ListByStatus(ctx context.Context, status model.PayoutStatus) ([]*model.PayoutRequest, error)
}

type payoutUC struct {
	payouts     repository.PayoutRepository
	commissions repository.CommissionRepository
	agents      adapter.AgentDirectory
	notifier    adapter.AgentNotifier
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewPayoutUseCase(payouts repository.PayoutRepository, commissions repository.CommissionRepository, agents adapter.AgentDirectory, notifier adapter.AgentNotifier, tm repository.TransactionManager, logger *zerolog.Logger) *payoutUC {
	return &payoutUC{payouts: payouts, commissions: commissions, agents: agents, notifier: notifier, tm: tm, log: logger}
}

func (u *payoutUC) Request(ctx context.Context, agentID string, amount int64) (*model.PayoutRequest, error) {
	defer logging.TraceDuration(u.log, "PayoutUC.Request")()
	ctx = logging.WithAgentID(ctx, agentID)

	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	agent, err := u.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	var payout *model.PayoutRequest
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		available, err := u.commissions.SumPendingUnreserved(ctx, tx, agent.ID)
		if err != nil {
			return err
		}
		if amount > available {
			return domain.ErrInsufficientBalance
		}
		payout = &model.PayoutRequest{
			ID:          ulid.Make().String(),
			AgentID:     agent.ID,
			Amount:      available,
			Status:      model.PayoutStatusPending,
			RequestedAt: time.Now(),
		}
		if err := u.payouts.Save(ctx, tx, payout); err != nil {
			return err
		}
		// Reserve every eligible row so no later request can double-count it.
		reserved, err := u.commissions.ReserveForPayout(ctx, tx, agent.ID, payout.ID)
		if err != nil {
			return err
		}
		if reserved != available {
			// Rows moved between the sum and the reserve; the locks should
			// prevent this, treat it as a conflict rather than mis-settle.
			return domain.ErrOperationFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPayoutTransition("requested", payout.Amount)
	u.log.Info().Str("payout_id", payout.ID).Int64("amount_paise", payout.Amount).Msg("payout requested")
	return payout, nil
}

// transition applies one state-machine step under a row lock and returns the
// updated request. extra runs inside the same transaction after the status
// flip, for side effects that must commit atomically with it.
func (u *payoutUC) transition(ctx context.Context, payoutID string, to model.PayoutStatus, reason string, extra func(ctx context.Context, tx repository.Tx, p *model.PayoutRequest) error) (*model.PayoutRequest, error) {
	var payout *model.PayoutRequest
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payouts.FindByID(ctx, tx, payoutID)
		if err != nil {
			return err
		}
		if !p.CanTransition(to) {
			metrics.IncPayoutTransition("denied", p.Amount)
			return domain.ErrInvalidStateTransition
		}
		now := time.Now()
		p.Status = to
		p.Reason = reason
		p.ProcessedAt = &now
		if err := u.payouts.Save(ctx, tx, p); err != nil {
			return err
		}
		if extra != nil {
			if err := extra(ctx, tx, p); err != nil {
				return err
			}
		}
		payout = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPayoutTransition(string(to), payout.Amount)
	u.log.Info().
		Str("payout_id", payout.ID).
		Str("status", string(to)).
		Msg("payout transitioned")
	u.notify(ctx, payout)
	return payout, nil
}

// notify is best-effort: the transition has already committed and a delivery
// failure must not surface to the caller.
func (u *payoutUC) notify(ctx context.Context, p *model.PayoutRequest) {
	agent, err := u.agents.GetAgent(ctx, p.AgentID)
	if err != nil {
		u.log.Warn().Err(err).Str("payout_id", p.ID).Msg("notify: agent lookup failed")
		return
	}
	if err := u.notifier.NotifyPayoutStatus(ctx, agent, p); err != nil {
		u.log.Warn().Err(err).Str("payout_id", p.ID).Msg("notify: delivery failed")
	}
}

func (u *payoutUC) Approve(ctx context.Context, payoutID string) (*model.PayoutRequest, error) {
	defer logging.TraceDuration(u.log, "PayoutUC.Approve")()
	return u.transition(ctx, payoutID, model.PayoutStatusApproved, "", nil)
}

func (u *payoutUC) Reject(ctx context.Context, payoutID, reason string) (*model.PayoutRequest, error) {
	defer logging.TraceDuration(u.log, "PayoutUC.Reject")()
	if reason == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.transition(ctx, payoutID, model.PayoutStatusRejected, reason,
		func(ctx context.Context, tx repository.Tx, p *model.PayoutRequest) error {
			return u.commissions.ReleaseFromPayout(ctx, tx, p.ID)
		})
}

func (u *payoutUC) MarkPaid(ctx context.Context, payoutID string) (*model.PayoutRequest, error) {
	defer logging.TraceDuration(u.log, "PayoutUC.MarkPaid")()
	return u.transition(ctx, payoutID, model.PayoutStatusPaid, "",
		func(ctx context.Context, tx repository.Tx, p *model.PayoutRequest) error {
			return u.commissions.MarkPaidByPayout(ctx, tx, p.ID)
		})
}

func (u *payoutUC) Get(ctx context.Context, payoutID string) (*model.PayoutRequest, error) {
	return u.payouts.FindByID(ctx, repository.NoTX, payoutID)
}

func (u *payoutUC) ListByAgent(ctx context.Context, agentID string) ([]*model.PayoutRequest, error) {
	return u.payouts.ListByAgent(ctx, repository.NoTX, agentID)
}

func (u *payoutUC) ListByStatus(ctx context.Context, status model.PayoutStatus) ([]*model.PayoutRequest, error) {
	return u.payouts.ListByStatus(ctx, repository.NoTX, status)
}
