package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		payoutTransitionsTotal,
		payoutAmountTotal,
	)
}

var (
	payoutTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_transitions_total",
			Help: "Payout state machine transitions (requested/approved/rejected/paid/denied).",
		},
		[]string{"transition"},
	)

	payoutAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_amount_paise_total",
			Help: "Monetary volume flowing through payout transitions, in paise.",
		},
		[]string{"transition"},
	)
)

func IncPayoutTransition(transition string, amountPaise int64) {
	payoutTransitionsTotal.WithLabelValues(norm(transition)).Inc()
	payoutAmountTotal.WithLabelValues(norm(transition)).Add(float64(amountPaise))
}
