package directory

import (
	"context"
	"sync"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/adapter"
)

var (
	_ adapter.CourseCatalog       = (*StaticDirectory)(nil)
	_ adapter.EnrollmentDirectory = (*StaticDirectory)(nil)
	_ adapter.AgentDirectory      = (*StaticDirectory)(nil)
)

// StaticDirectory is an in-memory directory for dev mode and tests.
type StaticDirectory struct {
	mu          sync.RWMutex
	courses     map[string]*model.Course
	agents      map[string]*model.Agent
	enrollments map[[2]string]bool // [studentID, courseID]
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		courses:     make(map[string]*model.Course),
		agents:      make(map[string]*model.Agent),
		enrollments: make(map[[2]string]bool),
	}
}

func (d *StaticDirectory) AddCourse(c *model.Course) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := *c
	d.courses[c.ID] = &cp
}

func (d *StaticDirectory) AddAgent(a *model.Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := *a
	d.agents[a.ID] = &cp
}

func (d *StaticDirectory) Enroll(studentID, courseID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enrollments[[2]string{studentID, courseID}] = true
}

func (d *StaticDirectory) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.courses[courseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (d *StaticDirectory) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enrollments[[2]string{studentID, courseID}], nil
}

func (d *StaticDirectory) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.agents[agentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
