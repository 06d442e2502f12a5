package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/repository"
	"course-affiliate-engine/internal/infra/metrics"
	red "course-affiliate-engine/internal/infra/redis"
)

var _ repository.CouponTypeRepository = (*couponTypeRepoCacheDecorator)(nil)

// couponTypeRepoCacheDecorator caches coupon type reads. Types change rarely
// (admin-only, append plus deactivate) but are read on every coupon preview,
// commit, and checkout validation.
type couponTypeRepoCacheDecorator struct {
	inner repository.CouponTypeRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCouponTypeRepoCacheDecorator(inner repository.CouponTypeRepository, cache red.RedisClient, ttl time.Duration) repository.CouponTypeRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &couponTypeRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *couponTypeRepoCacheDecorator) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.CouponType, error) {
	// Transactional reads may take row locks; never serve those from cache.
	if inTx(qx) {
		return d.inner.FindByID(ctx, qx, id)
	}
	key := fmt.Sprintf("coupon_type:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("coupon_type", "hit")
		var ct model.CouponType
		if json.Unmarshal([]byte(val), &ct) == nil {
			return &ct, nil
		}
	}
	// redis.Nil and real Redis errors both degrade to a DB read.
	metrics.IncCacheRequest("coupon_type", "miss")
	ct, err := d.inner.FindByID(ctx, qx, id)
	if err != nil {
		return nil, err
	}
	if ct != nil {
		bytes, _ := json.Marshal(ct)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return ct, nil
}

func (d *couponTypeRepoCacheDecorator) FindByTypeCode(ctx context.Context, qx repository.Tx, typeCode string) (*model.CouponType, error) {
	return d.inner.FindByTypeCode(ctx, qx, typeCode)
}

func (d *couponTypeRepoCacheDecorator) ListAll(ctx context.Context, qx repository.Tx) ([]*model.CouponType, error) {
	key := "coupon_types:all"
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("coupon_type_list", "hit")
		var cts []*model.CouponType
		if json.Unmarshal([]byte(val), &cts) == nil {
			return cts, nil
		}
	}

	metrics.IncCacheRequest("coupon_type_list", "miss")
	cts, err := d.inner.ListAll(ctx, qx)
	if err != nil {
		return nil, err
	}
	if len(cts) > 0 {
		bytes, _ := json.Marshal(cts)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return cts, nil
}

// Writes invalidate both the per-id entry and the list.
func (d *couponTypeRepoCacheDecorator) Save(ctx context.Context, qx repository.Tx, ct *model.CouponType) error {
	d.cache.Del(ctx, fmt.Sprintf("coupon_type:%s", ct.ID), "coupon_types:all")
	return d.inner.Save(ctx, qx, ct)
}

func (d *couponTypeRepoCacheDecorator) Deactivate(ctx context.Context, qx repository.Tx, id string) error {
	d.cache.Del(ctx, fmt.Sprintf("coupon_type:%s", id), "coupon_types:all")
	return d.inner.Deactivate(ctx, qx, id)
}
