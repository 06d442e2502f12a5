// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/domain/ports/repository"
)

// ---- In-memory CouponTypeRepository ----

type memCouponTypeRepo struct {
	mu    sync.RWMutex
	store map[string]*model.CouponType // by ID
}

func newMemCouponTypeRepo() *memCouponTypeRepo {
	return &memCouponTypeRepo{store: make(map[string]*model.CouponType)}
}

var _ repository.CouponTypeRepository = (*memCouponTypeRepo)(nil)

func (m *memCouponTypeRepo) Save(ctx context.Context, qx repository.Tx, ct *model.CouponType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.store {
		if e.TypeCode == ct.TypeCode && e.ID != ct.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *ct
	m.store[ct.ID] = &cp
	return nil
}

func (m *memCouponTypeRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.CouponType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ct
	return &cp, nil
}

func (m *memCouponTypeRepo) FindByTypeCode(ctx context.Context, qx repository.Tx, typeCode string) (*model.CouponType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ct := range m.store {
		if ct.TypeCode == typeCode {
			cp := *ct
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCouponTypeRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.CouponType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.CouponType, 0, len(m.store))
	for _, ct := range m.store {
		cp := *ct
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeCode < out[j].TypeCode })
	return out, nil
}

func (m *memCouponTypeRepo) Deactivate(ctx context.Context, qx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	ct.IsActive = false
	return nil
}

// ---- In-memory CouponRepository ----

type memCouponRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Coupon // by ID
	SaveErr error
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{store: make(map[string]*model.Coupon)}
}

var _ repository.CouponRepository = (*memCouponRepo)(nil)

func (m *memCouponRepo) Save(ctx context.Context, qx repository.Tx, c *model.Coupon) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.IsActive {
		for _, e := range m.store {
			if e.IsActive && e.Code == c.Code && e.ID != c.ID {
				return domain.ErrDuplicateCode
			}
		}
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memCouponRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCouponRepo) FindActiveByCode(ctx context.Context, qx repository.Tx, code string) (*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.IsActive && c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCouponRepo) ListByAgent(ctx context.Context, qx repository.Tx, agentID string) ([]*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Coupon
	for _, c := range m.store {
		if c.OwnerAgentID == agentID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memCouponRepo) TryIncrementUsage(ctx context.Context, qx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.MaxUsageCount != nil && c.CurrentUsageCount >= *c.MaxUsageCount {
		return domain.ErrUsageExhausted
	}
	c.CurrentUsageCount++
	return nil
}

func (m *memCouponRepo) Deactivate(ctx context.Context, qx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsActive = false
	return nil
}

func (m *memCouponRepo) DeactivateExpired(ctx context.Context, qx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	now := time.Now()
	for _, c := range m.store {
		if c.IsActive && now.After(c.ValidUntil) {
			c.IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *memCouponRepo) CountActive(ctx context.Context, qx repository.Tx) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, c := range m.store {
		if c.IsActive {
			n++
		}
	}
	return n, nil
}

// ---- In-memory CouponAssignmentRepository ----

type memAssignmentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.CouponAssignment // by ID
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{store: make(map[string]*model.CouponAssignment)}
}

var _ repository.CouponAssignmentRepository = (*memAssignmentRepo)(nil)

func (m *memAssignmentRepo) Save(ctx context.Context, qx repository.Tx, a *model.CouponAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.store {
		if e.StudentID == a.StudentID && e.CourseID == a.CourseID && e.ID != a.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *memAssignmentRepo) FindByStudentAndCourse(ctx context.Context, qx repository.Tx, studentID, courseID string) (*model.CouponAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.store {
		if a.StudentID == studentID && a.CourseID == courseID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAssignmentRepo) ListByCoupon(ctx context.Context, qx repository.Tx, couponID string) ([]*model.CouponAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.CouponAssignment
	for _, a := range m.store {
		if a.CouponID == couponID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- In-memory CommissionRepository ----

type memCommissionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Commission // by ID
}

func newMemCommissionRepo() *memCommissionRepo {
	return &memCommissionRepo{store: make(map[string]*model.Commission)}
}

var _ repository.CommissionRepository = (*memCommissionRepo)(nil)

func (m *memCommissionRepo) Insert(ctx context.Context, qx repository.Tx, c *model.Commission) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.store {
		if e.PaymentID == c.PaymentID {
			return false, nil
		}
	}
	cp := *c
	m.store[c.ID] = &cp
	return true, nil
}

func (m *memCommissionRepo) FindByPaymentID(ctx context.Context, qx repository.Tx, paymentID string) (*model.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.PaymentID == paymentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCommissionRepo) ListByAgent(ctx context.Context, qx repository.Tx, agentID string, limit int) ([]*model.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Commission
	for _, c := range m.store {
		if c.AgentID == agentID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memCommissionRepo) ListByPayout(ctx context.Context, qx repository.Tx, payoutID string) ([]*model.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Commission
	for _, c := range m.store {
		if c.PayoutID != nil && *c.PayoutID == payoutID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memCommissionRepo) SumPendingUnreserved(ctx context.Context, qx repository.Tx, agentID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, c := range m.store {
		if c.AgentID == agentID && c.Status == model.CommissionStatusPending && c.PayoutID == nil {
			sum += c.CommissionAmount
		}
	}
	return sum, nil
}

func (m *memCommissionRepo) ReserveForPayout(ctx context.Context, qx repository.Tx, agentID, payoutID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, c := range m.store {
		if c.AgentID == agentID && c.Status == model.CommissionStatusPending && c.PayoutID == nil {
			pid := payoutID
			c.PayoutID = &pid
			sum += c.CommissionAmount
		}
	}
	return sum, nil
}

func (m *memCommissionRepo) ReleaseFromPayout(ctx context.Context, qx repository.Tx, payoutID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.store {
		if c.PayoutID != nil && *c.PayoutID == payoutID && c.Status == model.CommissionStatusPending {
			c.PayoutID = nil
		}
	}
	return nil
}

func (m *memCommissionRepo) MarkPaidByPayout(ctx context.Context, qx repository.Tx, payoutID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.store {
		if c.PayoutID != nil && *c.PayoutID == payoutID {
			c.Status = model.CommissionStatusPaid
		}
	}
	return nil
}

func (m *memCommissionRepo) Summary(ctx context.Context, qx repository.Tx, agentID string, monthStart time.Time) (*repository.EarningsSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := &repository.EarningsSummary{}
	for _, c := range m.store {
		if c.AgentID != agentID {
			continue
		}
		s.TotalEarned += c.CommissionAmount
		if !c.CreatedAt.Before(monthStart) {
			s.EarnedThisMonth += c.CommissionAmount
		}
		if c.Status == model.CommissionStatusPending && c.PayoutID == nil {
			s.Pending += c.CommissionAmount
		}
		if c.Status == model.CommissionStatusPaid {
			s.Paid += c.CommissionAmount
		}
	}
	return s, nil
}

func (m *memCommissionRepo) ProgramSummary(ctx context.Context, qx repository.Tx) (*repository.ProgramSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := &repository.ProgramSummary{}
	for _, c := range m.store {
		s.SalesCount++
		s.TotalCommission += c.CommissionAmount
		switch c.Status {
		case model.CommissionStatusPending:
			s.PendingLiability += c.CommissionAmount
		case model.CommissionStatusPaid:
			s.PaidOut += c.CommissionAmount
		}
	}
	return s, nil
}

// ---- In-memory PayoutRepository ----

type memPayoutRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PayoutRequest // by ID
}

func newMemPayoutRepo() *memPayoutRepo {
	return &memPayoutRepo{store: make(map[string]*model.PayoutRequest)}
}

var _ repository.PayoutRepository = (*memPayoutRepo)(nil)

func (m *memPayoutRepo) Save(ctx context.Context, qx repository.Tx, p *model.PayoutRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPayoutRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.PayoutRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayoutRepo) ListByAgent(ctx context.Context, qx repository.Tx, agentID string) ([]*model.PayoutRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PayoutRequest
	for _, p := range m.store {
		if p.AgentID == agentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memPayoutRepo) ListByStatus(ctx context.Context, qx repository.Tx, status model.PayoutStatus) ([]*model.PayoutRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PayoutRequest
	for _, p := range m.store {
		if p.Status == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPayoutRepo) SumSettled(ctx context.Context, qx repository.Tx, agentID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, p := range m.store {
		if p.AgentID == agentID && (p.Status == model.PayoutStatusApproved || p.Status == model.PayoutStatusPaid) {
			sum += p.Amount
		}
	}
	return sum, nil
}

// ---- Mock directories (marketplace ports) ----

type mockDirectory struct {
	mu       sync.RWMutex
	courses  map[string]*model.Course
	agents   map[string]*model.Agent
	enrolled map[string]bool // studentID|courseID
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		courses:  make(map[string]*model.Course),
		agents:   make(map[string]*model.Agent),
		enrolled: make(map[string]bool),
	}
}

func (d *mockDirectory) AddCourse(c *model.Course) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.courses[c.ID] = c
}

func (d *mockDirectory) AddAgent(a *model.Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents[a.ID] = a
}

func (d *mockDirectory) Enroll(studentID, courseID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enrolled[studentID+"|"+courseID] = true
}

func (d *mockDirectory) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.courses[courseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (d *mockDirectory) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.agents[agentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (d *mockDirectory) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enrolled[studentID+"|"+courseID], nil
}

// ---- Mock notifier ----

type mockNotifier struct {
	mu   sync.Mutex
	Sent []*model.PayoutRequest
	Err  error
}

func (n *mockNotifier) NotifyPayoutStatus(ctx context.Context, agent *model.Agent, payout *model.PayoutRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	cp := *payout
	n.Sent = append(n.Sent, &cp)
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately with NoTX unless a test overrides
// WithTxFunc to exercise transactional behavior.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger so test output stays clean.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
