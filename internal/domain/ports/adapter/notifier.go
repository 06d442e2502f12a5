package adapter

import (
	"context"

	"course-affiliate-engine/internal/domain/model"
)

// AgentNotifier delivers payout status updates to agents. Delivery is
// best-effort: a notification failure never rolls back the transition that
// triggered it.
type AgentNotifier interface {
	NotifyPayoutStatus(ctx context.Context, agent *model.Agent, payout *model.PayoutRequest) error
}
