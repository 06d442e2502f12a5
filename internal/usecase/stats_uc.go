// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/adapter"
	"course-affiliate-engine/internal/domain/ports/repository"
	"course-affiliate-engine/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// AgentEarnings is the agent dashboard payload. All figures are derived from
// the commission and payout ledgers; nothing here is a stored counter.
type AgentEarnings struct {
	AgentCode       string
	TotalEarned     int64 // paise, all-time commission
	EarnedThisMonth int64
	PendingBalance  int64 // commission not yet reserved by a payout
	Paid            int64 // commission settled through paid payouts
	SettledPayouts  int64 // approved + paid payout volume
	RecentSales     []*model.Commission
}

// ProgramTotals is the admin dashboard payload covering the whole program.
type ProgramTotals struct {
	ActiveCoupons    int64
	SalesCount       int64
	TotalCommission  int64 // paise, all-time
	PendingLiability int64 // commission not yet paid out
	PaidOut          int64
	PendingPayouts   int64 // payout requests awaiting a decision
}

type StatsUseCase interface {
	AgentEarnings(ctx context.Context, agentID string) (*AgentEarnings, error)
	ProgramTotals(ctx context.Context) (*ProgramTotals, error)
}

type statsUC struct {
	commissions repository.CommissionRepository
	payouts     repository.PayoutRepository
	coupons     repository.CouponRepository
	agents      adapter.AgentDirectory
	log         *zerolog.Logger
}

func NewStatsUseCase(commissions repository.CommissionRepository, payouts repository.PayoutRepository, coupons repository.CouponRepository, agents adapter.AgentDirectory, logger *zerolog.Logger) *statsUC {
	return &statsUC{commissions: commissions, payouts: payouts, coupons: coupons, agents: agents, log: logger}
}

const recentSalesLimit = 10

func (u *statsUC) AgentEarnings(ctx context.Context, agentID string) (*AgentEarnings, error) {
	defer logging.TraceDuration(u.log, "StatsUC.AgentEarnings")()

	agent, err := u.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	summary, err := u.commissions.Summary(ctx, repository.NoTX, agent.ID, monthStart)
	if err != nil {
		return nil, err
	}
	settled, err := u.payouts.SumSettled(ctx, repository.NoTX, agent.ID)
	if err != nil {
		return nil, err
	}
	recent, err := u.commissions.ListByAgent(ctx, repository.NoTX, agent.ID, recentSalesLimit)
	if err != nil {
		return nil, err
	}

	return &AgentEarnings{
		AgentCode:       agent.AgentCode,
		TotalEarned:     summary.TotalEarned,
		EarnedThisMonth: summary.EarnedThisMonth,
		PendingBalance:  summary.Pending,
		Paid:            summary.Paid,
		SettledPayouts:  settled,
		RecentSales:     recent,
	}, nil
}

func (u *statsUC) ProgramTotals(ctx context.Context) (*ProgramTotals, error) {
	defer logging.TraceDuration(u.log, "StatsUC.ProgramTotals")()

	ledger, err := u.commissions.ProgramSummary(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	active, err := u.coupons.CountActive(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	pending, err := u.payouts.ListByStatus(ctx, repository.NoTX, model.PayoutStatusPending)
	if err != nil {
		return nil, err
	}

	return &ProgramTotals{
		ActiveCoupons:    active,
		SalesCount:       ledger.SalesCount,
		TotalCommission:  ledger.TotalCommission,
		PendingLiability: ledger.PendingLiability,
		PaidOut:          ledger.PaidOut,
		PendingPayouts:   int64(len(pending)),
	}, nil
}
