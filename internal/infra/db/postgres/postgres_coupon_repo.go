package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*couponRepo)(nil)

type couponRepo struct{ pool *pgxpool.Pool }

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

const couponCols = `id, code, coupon_type_id, owner_agent_id, discount_value, max_usage_count, current_usage_count, valid_from, valid_until, is_active, created_at, updated_at`

func (r *couponRepo) Save(ctx context.Context, qx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (` + couponCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  code=$2, discount_value=$5, max_usage_count=$6, valid_from=$8, valid_until=$9, is_active=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, qx, q,
		c.ID, c.Code, c.CouponTypeID, c.OwnerAgentID, c.DiscountValue,
		c.MaxUsageCount, c.CurrentUsageCount, c.ValidFrom, c.ValidUntil,
		c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	c := &model.Coupon{}
	if err := row.Scan(&c.ID, &c.Code, &c.CouponTypeID, &c.OwnerAgentID, &c.DiscountValue,
		&c.MaxUsageCount, &c.CurrentUsageCount, &c.ValidFrom, &c.ValidUntil,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *couponRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Coupon, error) {
	q := `SELECT ` + couponCols + ` FROM coupons WHERE id=$1`
	if inTx(qx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCoupon(row)
}

func (r *couponRepo) FindActiveByCode(ctx context.Context, qx repository.Tx, code string) (*model.Coupon, error) {
	q := `SELECT ` + couponCols + ` FROM coupons WHERE code=$1 AND is_active`
	if inTx(qx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, qx, q, code)
	if err != nil {
		return nil, err
	}
	return scanCoupon(row)
}

func (r *couponRepo) ListByAgent(ctx context.Context, qx repository.Tx, agentID string) ([]*model.Coupon, error) {
	const q = `SELECT ` + couponCols + ` FROM coupons WHERE owner_agent_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, qx, q, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Coupon
	for rows.Next() {
		c := &model.Coupon{}
		if err := rows.Scan(&c.ID, &c.Code, &c.CouponTypeID, &c.OwnerAgentID, &c.DiscountValue,
			&c.MaxUsageCount, &c.CurrentUsageCount, &c.ValidFrom, &c.ValidUntil,
			&c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TryIncrementUsage is the engine's single usage-increment site. The cap check
// and the increment happen in one conditional UPDATE so two concurrent
// redemptions of a nearly-exhausted coupon cannot both slip through.
func (r *couponRepo) TryIncrementUsage(ctx context.Context, qx repository.Tx, id string) error {
	const q = `
UPDATE coupons
SET current_usage_count = current_usage_count + 1, updated_at = NOW()
WHERE id=$1 AND is_active
  AND (max_usage_count IS NULL OR current_usage_count < max_usage_count);`

	tag, err := execSQL(ctx, r.pool, qx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUsageExhausted
	}
	return nil
}

func (r *couponRepo) Deactivate(ctx context.Context, qx repository.Tx, id string) error {
	const q = `UPDATE coupons SET is_active=FALSE, updated_at=NOW() WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, qx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *couponRepo) DeactivateExpired(ctx context.Context, qx repository.Tx) (int64, error) {
	const q = `UPDATE coupons SET is_active=FALSE, updated_at=NOW() WHERE is_active AND valid_until < NOW();`
	tag, err := execSQL(ctx, r.pool, qx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return tag.RowsAffected(), nil
}

func (r *couponRepo) CountActive(ctx context.Context, qx repository.Tx) (int64, error) {
	const q = `SELECT COUNT(*) FROM coupons WHERE is_active;`
	row, err := pickRow(ctx, r.pool, qx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
