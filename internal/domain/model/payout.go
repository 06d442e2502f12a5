package model

import "time"

type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"  // created by the agent, awaiting admin review
	PayoutStatusApproved PayoutStatus = "approved" // admin accepted; disbursement in flight
	PayoutStatusRejected PayoutStatus = "rejected" // terminal; reason is user-visible
	PayoutStatusPaid     PayoutStatus = "paid"     // terminal; covered commissions flipped to paid
)

// PayoutRequest tracks an agent's request to cash out pending commission.
// Transitions: pending -> approved|rejected, approved -> paid.
type PayoutRequest struct {
	ID          string // ULID, time-sortable
	AgentID     string // UUID
	Amount      int64  // paise; must not exceed the agent's pending commission at request time
	Status      PayoutStatus
	Reason      string // set on rejection, mandatory then
	RequestedAt time.Time
	ProcessedAt *time.Time
}

// CanTransition reports whether moving from the request's current status to
// the target status is allowed by the state machine.
func (p *PayoutRequest) CanTransition(to PayoutStatus) bool {
	switch p.Status {
	case PayoutStatusPending:
		return to == PayoutStatusApproved || to == PayoutStatusRejected
	case PayoutStatusApproved:
		return to == PayoutStatusPaid
	}
	return false
}
