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

var _ repository.CouponAssignmentRepository = (*assignmentRepo)(nil)

type assignmentRepo struct{ pool *pgxpool.Pool }

func NewAssignmentRepo(pool *pgxpool.Pool) *assignmentRepo {
	return &assignmentRepo{pool: pool}
}

func (r *assignmentRepo) Save(ctx context.Context, qx repository.Tx, a *model.CouponAssignment) error {
	const q = `
INSERT INTO coupon_assignments (id, coupon_id, student_id, course_id, created_at)
VALUES ($1,$2,$3,$4,$5);`

	_, err := execSQL(ctx, r.pool, qx, q, a.ID, a.CouponID, a.StudentID, a.CourseID, a.CreatedAt)
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

func (r *assignmentRepo) FindByStudentAndCourse(ctx context.Context, qx repository.Tx, studentID, courseID string) (*model.CouponAssignment, error) {
	const q = `SELECT id, coupon_id, student_id, course_id, created_at FROM coupon_assignments WHERE student_id=$1 AND course_id=$2;`
	row, err := pickRow(ctx, r.pool, qx, q, studentID, courseID)
	if err != nil {
		return nil, err
	}
	a := &model.CouponAssignment{}
	if err := row.Scan(&a.ID, &a.CouponID, &a.StudentID, &a.CourseID, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}

func (r *assignmentRepo) ListByCoupon(ctx context.Context, qx repository.Tx, couponID string) ([]*model.CouponAssignment, error) {
	const q = `SELECT id, coupon_id, student_id, course_id, created_at FROM coupon_assignments WHERE coupon_id=$1 ORDER BY created_at;`
	rows, err := queryRows(ctx, r.pool, qx, q, couponID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CouponAssignment
	for rows.Next() {
		a := &model.CouponAssignment{}
		if err := rows.Scan(&a.ID, &a.CouponID, &a.StudentID, &a.CourseID, &a.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
