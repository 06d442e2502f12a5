package postgres

import (
	"errors"

	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/repository"
)

var _ repository.CouponTypeRepository = (*couponTypeRepo)(nil)

type couponTypeRepo struct{ pool *pgxpool.Pool }

func NewCouponTypeRepo(pool *pgxpool.Pool) *couponTypeRepo {
	return &couponTypeRepo{pool: pool}
}

const couponTypeCols = `id, type_code, type_name, discount_kind, max_discount_limit, is_active, created_at, updated_at`

func (r *couponTypeRepo) Save(ctx context.Context, qx repository.Tx, ct *model.CouponType) error {
	const q = `
INSERT INTO coupon_types (` + couponTypeCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  type_name=$3, max_discount_limit=$5, is_active=$6, updated_at=$8;`

	_, err := execSQL(ctx, r.pool, qx, q, ct.ID, ct.TypeCode, ct.TypeName, ct.Kind, ct.MaxDiscountLimit, ct.IsActive, ct.CreatedAt, ct.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanCouponType(row pgx.Row) (*model.CouponType, error) {
	ct := &model.CouponType{}
	if err := row.Scan(&ct.ID, &ct.TypeCode, &ct.TypeName, &ct.Kind, &ct.MaxDiscountLimit, &ct.IsActive, &ct.CreatedAt, &ct.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return ct, nil
}

func (r *couponTypeRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.CouponType, error) {
	q := `SELECT ` + couponTypeCols + ` FROM coupon_types WHERE id=$1`
	if inTx(qx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCouponType(row)
}

func (r *couponTypeRepo) FindByTypeCode(ctx context.Context, qx repository.Tx, typeCode string) (*model.CouponType, error) {
	const q = `SELECT ` + couponTypeCols + ` FROM coupon_types WHERE type_code=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, typeCode)
	if err != nil {
		return nil, err
	}
	return scanCouponType(row)
}

func (r *couponTypeRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.CouponType, error) {
	const q = `SELECT ` + couponTypeCols + ` FROM coupon_types ORDER BY created_at;`
	rows, err := queryRows(ctx, r.pool, qx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CouponType
	for rows.Next() {
		ct := &model.CouponType{}
		if err := rows.Scan(&ct.ID, &ct.TypeCode, &ct.TypeName, &ct.Kind, &ct.MaxDiscountLimit, &ct.IsActive, &ct.CreatedAt, &ct.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *couponTypeRepo) Deactivate(ctx context.Context, qx repository.Tx, id string) error {
	const q = `UPDATE coupon_types SET is_active=FALSE, updated_at=NOW() WHERE id=$1;`
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
