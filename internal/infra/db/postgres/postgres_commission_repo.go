package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/repository"
)

var _ repository.CommissionRepository = (*commissionRepo)(nil)

type commissionRepo struct{ pool *pgxpool.Pool }

func NewCommissionRepo(pool *pgxpool.Pool) *commissionRepo {
	return &commissionRepo{pool: pool}
}

const commissionCols = `id, agent_id, coupon_id, course_id, payment_id, sale_amount, discount_amount, final_amount, commission_amount, status, payout_id, created_at`

// Insert writes a commission record keyed on the payment id. A replayed
// payment confirmation hits the unique index and inserts nothing, which is
// how the engine stays idempotent against duplicate gateway callbacks.
func (r *commissionRepo) Insert(ctx context.Context, qx repository.Tx, c *model.Commission) (bool, error) {
	const q = `
INSERT INTO commissions (` + commissionCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (payment_id) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, qx, q,
		c.ID, c.AgentID, c.CouponID, c.CourseID, c.PaymentID,
		c.SaleAmount, c.DiscountAmount, c.FinalAmount, c.CommissionAmount,
		c.Status, c.PayoutID, c.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() == 1, nil
}

func scanCommission(row pgx.Row) (*model.Commission, error) {
	c := &model.Commission{}
	if err := row.Scan(&c.ID, &c.AgentID, &c.CouponID, &c.CourseID, &c.PaymentID,
		&c.SaleAmount, &c.DiscountAmount, &c.FinalAmount, &c.CommissionAmount,
		&c.Status, &c.PayoutID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *commissionRepo) FindByPaymentID(ctx context.Context, qx repository.Tx, paymentID string) (*model.Commission, error) {
	const q = `SELECT ` + commissionCols + ` FROM commissions WHERE payment_id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, paymentID)
	if err != nil {
		return nil, err
	}
	return scanCommission(row)
}

func (r *commissionRepo) ListByAgent(ctx context.Context, qx repository.Tx, agentID string, limit int) ([]*model.Commission, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + commissionCols + ` FROM commissions WHERE agent_id=$1 ORDER BY created_at DESC LIMIT $2;`
	return r.list(ctx, qx, q, agentID, limit)
}

func (r *commissionRepo) ListByPayout(ctx context.Context, qx repository.Tx, payoutID string) ([]*model.Commission, error) {
	const q = `SELECT ` + commissionCols + ` FROM commissions WHERE payout_id=$1 ORDER BY created_at;`
	return r.list(ctx, qx, q, payoutID)
}

func (r *commissionRepo) list(ctx context.Context, qx repository.Tx, q string, args ...interface{}) ([]*model.Commission, error) {
	rows, err := queryRows(ctx, r.pool, qx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Commission
	for rows.Next() {
		c := &model.Commission{}
		if err := rows.Scan(&c.ID, &c.AgentID, &c.CouponID, &c.CourseID, &c.PaymentID,
			&c.SaleAmount, &c.DiscountAmount, &c.FinalAmount, &c.CommissionAmount,
			&c.Status, &c.PayoutID, &c.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *commissionRepo) SumPendingUnreserved(ctx context.Context, qx repository.Tx, agentID string) (int64, error) {
	q := `SELECT COALESCE(SUM(commission_amount),0) FROM commissions WHERE agent_id=$1 AND status='pending' AND payout_id IS NULL;`
	if inTx(qx) {
		// Lock the rows so the snapshot can't shift under a concurrent payout.
		q = `
SELECT COALESCE(SUM(commission_amount),0) FROM (
  SELECT commission_amount FROM commissions
  WHERE agent_id=$1 AND status='pending' AND payout_id IS NULL
  FOR UPDATE
) locked;`
	}
	row, err := pickRow(ctx, r.pool, qx, q, agentID)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *commissionRepo) ReserveForPayout(ctx context.Context, qx repository.Tx, agentID, payoutID string) (int64, error) {
	const q = `
WITH reserved AS (
  UPDATE commissions SET payout_id=$2
  WHERE agent_id=$1 AND status='pending' AND payout_id IS NULL
  RETURNING commission_amount
)
SELECT COALESCE(SUM(commission_amount),0) FROM reserved;`

	row, err := pickRow(ctx, r.pool, qx, q, agentID, payoutID)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *commissionRepo) ReleaseFromPayout(ctx context.Context, qx repository.Tx, payoutID string) error {
	const q = `UPDATE commissions SET payout_id=NULL WHERE payout_id=$1 AND status='pending';`
	_, err := execSQL(ctx, r.pool, qx, q, payoutID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *commissionRepo) MarkPaidByPayout(ctx context.Context, qx repository.Tx, payoutID string) error {
	const q = `UPDATE commissions SET status='paid' WHERE payout_id=$1 AND status='pending';`
	_, err := execSQL(ctx, r.pool, qx, q, payoutID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *commissionRepo) Summary(ctx context.Context, qx repository.Tx, agentID string, monthStart time.Time) (*repository.EarningsSummary, error) {
	const q = `
SELECT
  COALESCE(SUM(commission_amount),0),
  COALESCE(SUM(commission_amount) FILTER (WHERE created_at >= $2),0),
  COALESCE(SUM(commission_amount) FILTER (WHERE status='pending' AND payout_id IS NULL),0),
  COALESCE(SUM(commission_amount) FILTER (WHERE status='paid'),0)
FROM commissions WHERE agent_id=$1;`

	row, err := pickRow(ctx, r.pool, qx, q, agentID, monthStart)
	if err != nil {
		return nil, err
	}
	s := &repository.EarningsSummary{}
	if err := row.Scan(&s.TotalEarned, &s.EarnedThisMonth, &s.Pending, &s.Paid); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *commissionRepo) ProgramSummary(ctx context.Context, qx repository.Tx) (*repository.ProgramSummary, error) {
	const q = `
SELECT
  COUNT(*),
  COALESCE(SUM(commission_amount),0),
  COALESCE(SUM(commission_amount) FILTER (WHERE status='pending'),0),
  COALESCE(SUM(commission_amount) FILTER (WHERE status='paid'),0)
FROM commissions;`

	row, err := pickRow(ctx, r.pool, qx, q)
	if err != nil {
		return nil, err
	}
	s := &repository.ProgramSummary{}
	if err := row.Scan(&s.SalesCount, &s.TotalCommission, &s.PendingLiability, &s.PaidOut); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}
