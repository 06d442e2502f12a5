// Package directory backs the engine's read-only marketplace ports (courses,
// enrollments, agents) with the marketplace's own Postgres tables.
package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/adapter"
)

var (
	_ adapter.CourseCatalog       = (*PostgresDirectory)(nil)
	_ adapter.EnrollmentDirectory = (*PostgresDirectory)(nil)
	_ adapter.AgentDirectory      = (*PostgresDirectory)(nil)
)

type PostgresDirectory struct {
	pool *pgxpool.Pool
}

func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

func (d *PostgresDirectory) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	const q = `SELECT id, title, price, has_admin_discount, admin_discount_amount FROM courses WHERE id=$1;`
	c := &model.Course{}
	err := d.pool.QueryRow(ctx, q, courseID).
		Scan(&c.ID, &c.Title, &c.Price, &c.HasAdminDiscount, &c.AdminDiscountAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (d *PostgresDirectory) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id=$1 AND course_id=$2);`
	var enrolled bool
	if err := d.pool.QueryRow(ctx, q, studentID, courseID).Scan(&enrolled); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return enrolled, nil
}

func (d *PostgresDirectory) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	const q = `SELECT id, agent_code, commission_rate::text, telegram_chat_id, is_active, created_at FROM agents WHERE id=$1;`
	a := &model.Agent{}
	var rate string
	err := d.pool.QueryRow(ctx, q, agentID).
		Scan(&a.ID, &a.AgentCode, &rate, &a.TelegramChatID, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	a.CommissionRate, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}
