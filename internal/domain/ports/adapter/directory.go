package adapter

import (
	"context"

	"course-affiliate-engine/internal/domain/model"
)

// The marketplace owns courses, enrollments, and agent identity. The engine
// consumes them through these read-only ports and never writes to them.

// CourseCatalog resolves course snapshots for checkout-time validation.
type CourseCatalog interface {
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
}

// EnrollmentDirectory answers whether a student already holds an enrollment
// for a course.
type EnrollmentDirectory interface {
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
}

// AgentDirectory resolves agent identity and commission terms.
type AgentDirectory interface {
	GetAgent(ctx context.Context, agentID string) (*model.Agent, error)
}
