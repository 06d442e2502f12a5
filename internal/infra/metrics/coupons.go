package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		couponValidationsTotal,
		couponRedemptionsTotal,
		couponsCommittedTotal,
		couponsExpiredTotal,
	)
}

var (
	couponValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_validations_total",
			Help: "Checkout-time coupon validations by outcome (ok/not_found/expired/exhausted/conflict).",
		},
		[]string{"outcome"},
	)

	couponRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_redemptions_total",
			Help: "Confirmed coupon redemptions (usage increments) by result.",
		},
		[]string{"result"},
	)

	couponsCommittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupons_committed_total",
			Help: "Coupons persisted by agents, labeled by discount kind.",
		},
		[]string{"kind"},
	)
)

var couponsExpiredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "coupons_expired_total",
		Help: "Coupons retired by the expiry sweeper.",
	},
)

func IncCouponsExpired(n int64) {
	couponsExpiredTotal.Add(float64(n))
}

func IncCouponValidation(outcome string) {
	couponValidationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncCouponRedemption(result string) {
	couponRedemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func IncCouponCommitted(kind string) {
	couponsCommittedTotal.WithLabelValues(norm(kind)).Inc()
}
