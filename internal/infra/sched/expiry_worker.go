// File: internal/infra/sched/expiry_worker.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/infra/metrics"
	"course-affiliate-engine/internal/usecase"
)

// ExpiryWorker periodically retires coupons whose validity window has passed,
// so stale codes stop resolving at checkout without waiting for a lookup.
type ExpiryWorker struct {
	interval time.Duration
	couponUC usecase.CouponUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, couponUC usecase.CouponUseCase, logger *zerolog.Logger) *ExpiryWorker {
	compLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		couponUC: couponUC,
		log:      &compLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	// Run once on startup, then on every tick
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	n, err := w.couponUC.SweepExpired(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep error")
		return
	}
	if n > 0 {
		metrics.IncCouponsExpired(n)
		w.log.Info().Int64("count", n).Msg("expired coupons retired")
	}
}
