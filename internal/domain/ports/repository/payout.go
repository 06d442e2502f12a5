package repository

import (
	"context"

	"course-affiliate-engine/internal/domain/model"
)

// -----------------------------
// Payout requests
// -----------------------------

type PayoutRepository interface {
	Save(ctx context.Context, qx Tx, p *model.PayoutRequest) error
	// FindByID loads a payout request, taking a row lock when called inside
	// a transaction so concurrent transitions serialize.
	FindByID(ctx context.Context, qx Tx, id string) (*model.PayoutRequest, error)
	ListByAgent(ctx context.Context, qx Tx, agentID string) ([]*model.PayoutRequest, error)
	ListByStatus(ctx context.Context, qx Tx, status model.PayoutStatus) ([]*model.PayoutRequest, error)
	// SumSettled returns the agent's approved-or-paid payout total.
	SumSettled(ctx context.Context, qx Tx, agentID string) (int64, error)
}
