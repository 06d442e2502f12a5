package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Agent is the affiliate ("jyotishi") who earns commission on referred course
// sales. The marketplace owns the agent record; the engine reads it through
// the AgentDirectory port.
type Agent struct {
	ID             string // UUID
	AgentCode      string // short identifier embedded in coupon codes, e.g. "JD001"
	CommissionRate decimal.Decimal // percent of the final charged amount
	TelegramChatID int64           // optional; payout notifications go here when set
	IsActive       bool
	CreatedAt      time.Time
}
