package notify

import (
	"context"

	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/adapter"
)

var _ adapter.AgentNotifier = (*NoopNotifier)(nil)

// NoopNotifier swallows notifications; used when no Telegram token is
// configured and in tests.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) NotifyPayoutStatus(ctx context.Context, agent *model.Agent, payout *model.PayoutRequest) error {
	return nil
}
