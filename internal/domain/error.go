package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Coupon lifecycle errors
	ErrCouponExpired  = errors.New("coupon expired or not yet valid")
	ErrUsageExhausted = errors.New("coupon usage limit reached")
	ErrDuplicateCode  = errors.New("an active coupon with this code already exists")
	ErrLimitExceeded  = errors.New("discount value exceeds the coupon type limit")

	// Checkout / assignment errors
	ErrDiscountConflict = errors.New("course already carries an administrator discount")
	ErrAlreadyEnrolled  = errors.New("student is already enrolled in this course")

	// Commission & payout errors
	ErrInsufficientBalance    = errors.New("requested amount exceeds pending commission balance")
	ErrInvalidStateTransition = errors.New("invalid payout state transition")

	// Infra-level errors surfaced by repositories
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
