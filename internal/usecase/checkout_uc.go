// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/adapter"
	"course-affiliate-engine/internal/domain/ports/repository"
	"course-affiliate-engine/internal/infra/logging"
	"course-affiliate-engine/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// ValidationResult is the checkout-facing answer for a coupon code. Business
// rejections (unknown code, expired, exhausted, conflict) come back as
// Valid=false with a student-facing message, not as errors; errors are
// reserved for infrastructure failures.
type ValidationResult struct {
	Valid          bool
	Message        string
	CouponID       string
	AgentID        string
	CoursePrice    int64 // paise
	DiscountAmount int64 // paise
	TaxAmount      int64 // paise, levied on the discounted amount
	PayableAmount  int64 // paise
}

// Eligibility reports the two facts that gate coupon usage for a
// student/course pair.
type Eligibility struct {
	IsEnrolled       bool
	HasAdminDiscount bool
}

type CheckoutUseCase interface {
	ValidateCoupon(ctx context.Context, code, studentID, courseID string) (*ValidationResult, error)
	CheckEligibility(ctx context.Context, studentID, courseID string) (*Eligibility, error)
	// AssignCoupon pre-binds a coupon to a student and course so checkout can
	// apply it without manual entry. Enrolled students and admin-discounted
	// courses are refused.
	AssignCoupon(ctx context.Context, couponID, studentID, courseID string) (*model.CouponAssignment, error)
	FindAssignment(ctx context.Context, studentID, courseID string) (*model.CouponAssignment, error)
}

type checkoutUC struct {
	coupons     repository.CouponRepository
	types       repository.CouponTypeRepository
	assignments repository.CouponAssignmentRepository
	catalog     adapter.CourseCatalog
	enrollments adapter.EnrollmentDirectory
	taxRate     decimal.Decimal // percent applied to the payable amount
	log         *zerolog.Logger
}

func NewCheckoutUseCase(
	coupons repository.CouponRepository,
	types repository.CouponTypeRepository,
	assignments repository.CouponAssignmentRepository,
	catalog adapter.CourseCatalog,
	enrollments adapter.EnrollmentDirectory,
	taxRate decimal.Decimal,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		coupons:     coupons,
		types:       types,
		assignments: assignments,
		catalog:     catalog,
		enrollments: enrollments,
		taxRate:     taxRate,
		log:         logger,
	}
}

// Student-facing rejection messages. Checks run in a fixed order so the
// student always sees the most specific reason first.
const (
	msgCouponNotFound  = "coupon code not found or inactive"
	msgCouponExpired   = "coupon is outside its validity period"
	msgCouponExhausted = "coupon has reached its usage limit"
	msgAdminConflict   = "course already carries a site discount; coupons cannot be combined"
)

func (u *checkoutUC) reject(code, reason, message string) (*ValidationResult, error) {
	metrics.IncCouponValidation(reason)
	u.log.Debug().Str("coupon_code", code).Str("reason", reason).Msg("coupon rejected")
	return &ValidationResult{Valid: false, Message: message}, nil
}

func (u *checkoutUC) ValidateCoupon(ctx context.Context, code, studentID, courseID string) (*ValidationResult, error) {
	defer logging.TraceDuration(u.log, "CheckoutUC.ValidateCoupon")()
	ctx = logging.WithCouponCode(ctx, code)

	course, err := u.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	coupon, err := u.coupons.FindActiveByCode(ctx, repository.NoTX, code)
	if errors.Is(err, domain.ErrNotFound) {
		return u.reject(code, "not_found", msgCouponNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !coupon.WithinValidity(time.Now()) {
		return u.reject(code, "expired", msgCouponExpired)
	}
	if coupon.UsageExhausted() {
		return u.reject(code, "exhausted", msgCouponExhausted)
	}
	if course.HasAdminDiscount {
		return u.reject(code, "conflict", msgAdminConflict)
	}

	ct, err := u.types.FindByID(ctx, repository.NoTX, coupon.CouponTypeID)
	if err != nil {
		return nil, err
	}

	discount := ct.Kind.Discount(coupon.DiscountValue, course.Price)
	payable := course.Price - discount
	tax := decimal.NewFromInt(payable).
		Mul(u.taxRate).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	metrics.IncCouponValidation("ok")
	return &ValidationResult{
		Valid:          true,
		CouponID:       coupon.ID,
		AgentID:        coupon.OwnerAgentID,
		CoursePrice:    course.Price,
		DiscountAmount: discount,
		TaxAmount:      tax,
		PayableAmount:  payable + tax,
	}, nil
}

func (u *checkoutUC) CheckEligibility(ctx context.Context, studentID, courseID string) (*Eligibility, error) {
	course, err := u.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrolled, err := u.enrollments.IsEnrolled(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return &Eligibility{IsEnrolled: enrolled, HasAdminDiscount: course.HasAdminDiscount}, nil
}

func (u *checkoutUC) AssignCoupon(ctx context.Context, couponID, studentID, courseID string) (*model.CouponAssignment, error) {
	defer logging.TraceDuration(u.log, "CheckoutUC.AssignCoupon")()

	elig, err := u.CheckEligibility(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if elig.IsEnrolled {
		return nil, domain.ErrAlreadyEnrolled
	}
	if elig.HasAdminDiscount {
		return nil, domain.ErrDiscountConflict
	}

	coupon, err := u.coupons.FindByID(ctx, repository.NoTX, couponID)
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive || !coupon.WithinValidity(time.Now()) {
		return nil, domain.ErrCouponExpired
	}

	a := &model.CouponAssignment{
		ID:        uuid.NewString(),
		CouponID:  coupon.ID,
		StudentID: studentID,
		CourseID:  courseID,
		CreatedAt: time.Now(),
	}
	if err := u.assignments.Save(ctx, repository.NoTX, a); err != nil {
		return nil, err
	}
	u.log.Info().Str("coupon_id", couponID).Str("student_id", studentID).Msg("coupon assigned")
	return a, nil
}

func (u *checkoutUC) FindAssignment(ctx context.Context, studentID, courseID string) (*model.CouponAssignment, error) {
	return u.assignments.FindByStudentAndCourse(ctx, repository.NoTX, studentID, courseID)
}
