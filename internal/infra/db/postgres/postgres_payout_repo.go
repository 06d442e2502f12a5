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

var _ repository.PayoutRepository = (*payoutRepo)(nil)

type payoutRepo struct{ pool *pgxpool.Pool }

func NewPayoutRepo(pool *pgxpool.Pool) *payoutRepo {
	return &payoutRepo{pool: pool}
}

const payoutCols = `id, agent_id, amount, status, reason, requested_at, processed_at`

func (r *payoutRepo) Save(ctx context.Context, qx repository.Tx, p *model.PayoutRequest) error {
	const q = `
INSERT INTO payout_requests (` + payoutCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  status=$4, reason=$5, processed_at=$7;`

	_, err := execSQL(ctx, r.pool, qx, q, p.ID, p.AgentID, p.Amount, p.Status, p.Reason, p.RequestedAt, p.ProcessedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanPayout(row pgx.Row) (*model.PayoutRequest, error) {
	p := &model.PayoutRequest{}
	if err := row.Scan(&p.ID, &p.AgentID, &p.Amount, &p.Status, &p.Reason, &p.RequestedAt, &p.ProcessedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *payoutRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.PayoutRequest, error) {
	q := `SELECT ` + payoutCols + ` FROM payout_requests WHERE id=$1`
	if inTx(qx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayout(row)
}

func (r *payoutRepo) ListByAgent(ctx context.Context, qx repository.Tx, agentID string) ([]*model.PayoutRequest, error) {
	const q = `SELECT ` + payoutCols + ` FROM payout_requests WHERE agent_id=$1 ORDER BY requested_at DESC;`
	return r.list(ctx, qx, q, agentID)
}

func (r *payoutRepo) ListByStatus(ctx context.Context, qx repository.Tx, status model.PayoutStatus) ([]*model.PayoutRequest, error) {
	const q = `SELECT ` + payoutCols + ` FROM payout_requests WHERE status=$1 ORDER BY requested_at;`
	return r.list(ctx, qx, q, status)
}

func (r *payoutRepo) list(ctx context.Context, qx repository.Tx, q string, args ...interface{}) ([]*model.PayoutRequest, error) {
	rows, err := queryRows(ctx, r.pool, qx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PayoutRequest
	for rows.Next() {
		p := &model.PayoutRequest{}
		if err := rows.Scan(&p.ID, &p.AgentID, &p.Amount, &p.Status, &p.Reason, &p.RequestedAt, &p.ProcessedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *payoutRepo) SumSettled(ctx context.Context, qx repository.Tx, agentID string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM payout_requests WHERE agent_id=$1 AND status IN ('approved','paid');`
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
