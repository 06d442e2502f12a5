package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		commissionsRecordedTotal,
		commissionAmountTotal,
		webhookReplaysTotal,
	)
}

var (
	commissionsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "commissions_recorded_total",
			Help: "Commission records created from confirmed payments.",
		},
	)

	commissionAmountTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "commission_amount_paise_total",
			Help: "Total commission accrued, in paise.",
		},
	)

	webhookReplaysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_webhook_replays_total",
			Help: "Payment confirmations ignored because the payment id was already recorded.",
		},
	)
)

func IncCommissionRecorded(amountPaise int64) {
	commissionsRecordedTotal.Inc()
	commissionAmountTotal.Add(float64(amountPaise))
}

func IncWebhookReplay() {
	webhookReplaysTotal.Inc()
}
