package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/adapter"
)

var _ adapter.AgentNotifier = (*TelegramNotifier)(nil)

// TelegramNotifier pushes payout status updates to the agent's Telegram chat.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewTelegramNotifier(token string, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, log: logger}, nil
}

func (n *TelegramNotifier) NotifyPayoutStatus(ctx context.Context, agent *model.Agent, payout *model.PayoutRequest) error {
	if agent.TelegramChatID == 0 {
		return nil
	}
	rupees := decimal.NewFromInt(payout.Amount).Div(decimal.NewFromInt(100)).StringFixed(2)

	var text string
	switch payout.Status {
	case model.PayoutStatusApproved:
		text = fmt.Sprintf("Your payout request for Rs %s has been approved and will be disbursed shortly.", rupees)
	case model.PayoutStatusRejected:
		text = fmt.Sprintf("Your payout request for Rs %s was rejected: %s", rupees, payout.Reason)
	case model.PayoutStatusPaid:
		text = fmt.Sprintf("Your payout of Rs %s has been disbursed.", rupees)
	default:
		return nil
	}

	msg := tgbotapi.NewMessage(agent.TelegramChatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warn().Err(err).Str("payout_id", payout.ID).Msg("telegram notification failed")
		return err
	}
	return nil
}
