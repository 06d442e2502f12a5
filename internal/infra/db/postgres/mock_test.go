//go:build !integration

// File: internal/infra/db/postgres/mock_test.go
package postgres

import (
	"context"
	"time"

	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/repository"
	red "course-affiliate-engine/internal/infra/redis"
)

// mockInnerCouponTypeRepo mocks the database-backed repository wrapped by the
// cache decorator.
type mockInnerCouponTypeRepo struct {
	SaveFunc           func(ctx context.Context, qx repository.Tx, ct *model.CouponType) error
	FindByIDFunc       func(ctx context.Context, qx repository.Tx, id string) (*model.CouponType, error)
	FindByTypeCodeFunc func(ctx context.Context, qx repository.Tx, typeCode string) (*model.CouponType, error)
	ListAllFunc        func(ctx context.Context, qx repository.Tx) ([]*model.CouponType, error)
	DeactivateFunc     func(ctx context.Context, qx repository.Tx, id string) error
}

var _ repository.CouponTypeRepository = (*mockInnerCouponTypeRepo)(nil)

func (m *mockInnerCouponTypeRepo) Save(ctx context.Context, qx repository.Tx, ct *model.CouponType) error {
	return m.SaveFunc(ctx, qx, ct)
}
func (m *mockInnerCouponTypeRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.CouponType, error) {
	return m.FindByIDFunc(ctx, qx, id)
}
func (m *mockInnerCouponTypeRepo) FindByTypeCode(ctx context.Context, qx repository.Tx, typeCode string) (*model.CouponType, error) {
	return m.FindByTypeCodeFunc(ctx, qx, typeCode)
}
func (m *mockInnerCouponTypeRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.CouponType, error) {
	return m.ListAllFunc(ctx, qx)
}
func (m *mockInnerCouponTypeRepo) Deactivate(ctx context.Context, qx repository.Tx, id string) error {
	return m.DeactivateFunc(ctx, qx, id)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) FlushDB(ctx context.Context) error { return nil }
func (m *mockRedisClient) Close() error                      { return m.CloseFunc() }
