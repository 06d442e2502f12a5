// File: internal/infra/web/handlers.go
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
)

type sessionAgentKey struct{}

func withSessionAgent(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, sessionAgentKey{}, agentID)
}

func sessionAgent(ctx context.Context) string {
	id, _ := ctx.Value(sessionAgentKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses; anything unmapped is a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrCouponExpired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrDuplicateCode),
		errors.Is(err, domain.ErrAlreadyEnrolled),
		errors.Is(err, domain.ErrDiscountConflict),
		errors.Is(err, domain.ErrInvalidStateTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInsufficientBalance):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ===== Coupon types (admin) =====

type typeCreateRequest struct {
	TypeCode         string `json:"type_code"`
	TypeName         string `json:"type_name"`
	Kind             string `json:"kind"` // percentage | fixed_amount
	MaxDiscountLimit int64  `json:"max_discount_limit"`
}

func (s *Server) handleTypeCreate(w http.ResponseWriter, r *http.Request) {
	var req typeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ct, err := s.typeUC.Create(r.Context(), req.TypeCode, req.TypeName, model.DiscountKind(req.Kind), req.MaxDiscountLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ct)
}

func (s *Server) handleTypeList(w http.ResponseWriter, r *http.Request) {
	types, err := s.typeUC.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": types})
}

func (s *Server) handleTypeGet(w http.ResponseWriter, r *http.Request) {
	ct, err := s.typeUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ct)
}

func (s *Server) handleTypeDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.typeUC.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Checkout (public) =====

type validateRequest struct {
	Code      string `json:"code"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

func (s *Server) handleValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.checkoutUC.ValidateCoupon(r.Context(), req.Code, req.StudentID, req.CourseID)
	if err != nil {
		writeError(w, err)
		return
	}
	// Invalid coupons are a normal answer at checkout, still a 200.
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	elig, err := s.checkoutUC.CheckEligibility(r.Context(), q.Get("student_id"), q.Get("course_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elig)
}

type assignRequest struct {
	CouponID  string `json:"coupon_id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

func (s *Server) handleAssignCoupon(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	a, err := s.checkoutUC.AssignCoupon(r.Context(), req.CouponID, req.StudentID, req.CourseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// ===== Coupons (agent) =====

type couponWriteRequest struct {
	CouponTypeID  string    `json:"coupon_type_id"`
	DiscountValue int64     `json:"discount_value"`
	MaxUsageCount *int64    `json:"max_usage_count"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
}

func (s *Server) handleCouponPreview(w http.ResponseWriter, r *http.Request) {
	var req couponWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	code, err := s.couponUC.Preview(r.Context(), sessionAgent(r.Context()), req.CouponTypeID, req.DiscountValue)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (s *Server) handleCouponCommit(w http.ResponseWriter, r *http.Request) {
	var req couponWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	c, err := s.couponUC.Commit(r.Context(), sessionAgent(r.Context()), req.CouponTypeID, req.DiscountValue, req.MaxUsageCount, req.ValidFrom, req.ValidUntil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCouponList(w http.ResponseWriter, r *http.Request) {
	coupons, err := s.couponUC.ListByAgent(r.Context(), sessionAgent(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": coupons})
}

func (s *Server) handleCouponEdit(w http.ResponseWriter, r *http.Request) {
	var req couponWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	// Ownership check before the edit: agents can only touch their own coupons.
	existing, err := s.couponUC.Get(r.Context(), id)
	if err != nil || existing.OwnerAgentID != sessionAgent(r.Context()) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	c, err := s.couponUC.Edit(r.Context(), id, req.DiscountValue, req.MaxUsageCount, req.ValidFrom, req.ValidUntil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCouponRetire(w http.ResponseWriter, r *http.Request) {
	if err := s.couponUC.Retire(r.Context(), chi.URLParam(r, "id"), sessionAgent(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Earnings & payouts =====

func (s *Server) handleAgentEarnings(w http.ResponseWriter, r *http.Request) {
	e, err := s.statsUC.AgentEarnings(r.Context(), sessionAgent(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleProgramStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.statsUC.ProgramTotals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

type payoutRequestBody struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handlePayoutRequest(w http.ResponseWriter, r *http.Request) {
	var req payoutRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p, err := s.payoutUC.Request(r.Context(), sessionAgent(r.Context()), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleAgentPayoutList(w http.ResponseWriter, r *http.Request) {
	payouts, err := s.payoutUC.ListByAgent(r.Context(), sessionAgent(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payouts})
}

func (s *Server) handlePayoutList(w http.ResponseWriter, r *http.Request) {
	status := model.PayoutStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = model.PayoutStatusPending
	}
	payouts, err := s.payoutUC.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payouts})
}

func (s *Server) handlePayoutApprove(w http.ResponseWriter, r *http.Request) {
	p, err := s.payoutUC.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type payoutRejectBody struct {
	Reason string `json:"reason"`
}

func (s *Server) handlePayoutReject(w http.ResponseWriter, r *http.Request) {
	var req payoutRejectBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p, err := s.payoutUC.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePayoutMarkPaid(w http.ResponseWriter, r *http.Request) {
	p, err := s.payoutUC.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
