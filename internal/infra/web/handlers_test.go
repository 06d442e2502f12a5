//go:build !integration

// File: internal/infra/web/handlers_test.go
package web

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/domain/model"
	"course-affiliate-engine/internal/usecase"
)

// --- Mock use cases (ports into the web layer) ---

type mockTypeUC struct {
	usecase.CouponTypeUseCase // embed interface for forward compatibility
	CreateFunc                func(ctx context.Context, typeCode, typeName string, kind model.DiscountKind, maxDiscountLimit int64) (*model.CouponType, error)
	ListFunc                  func(ctx context.Context) ([]*model.CouponType, error)
}

func (m *mockTypeUC) Create(ctx context.Context, typeCode, typeName string, kind model.DiscountKind, limit int64) (*model.CouponType, error) {
	return m.CreateFunc(ctx, typeCode, typeName, kind, limit)
}

func (m *mockTypeUC) List(ctx context.Context) ([]*model.CouponType, error) {
	return m.ListFunc(ctx)
}

type mockCheckoutUC struct {
	usecase.CheckoutUseCase
	ValidateFunc func(ctx context.Context, code, studentID, courseID string) (*usecase.ValidationResult, error)
}

func (m *mockCheckoutUC) ValidateCoupon(ctx context.Context, code, studentID, courseID string) (*usecase.ValidationResult, error) {
	return m.ValidateFunc(ctx, code, studentID, courseID)
}

type mockCouponUC struct {
	usecase.CouponUseCase
	PreviewFunc func(ctx context.Context, agentID, couponTypeID string, discountValue int64) (string, error)
}

func (m *mockCouponUC) Preview(ctx context.Context, agentID, couponTypeID string, discountValue int64) (string, error) {
	return m.PreviewFunc(ctx, agentID, couponTypeID, discountValue)
}

type mockPayoutUC struct {
	usecase.PayoutUseCase
	ApproveFunc func(ctx context.Context, payoutID string) (*model.PayoutRequest, error)
}

func (m *mockPayoutUC) Approve(ctx context.Context, payoutID string) (*model.PayoutRequest, error) {
	return m.ApproveFunc(ctx, payoutID)
}

type mockCommissionUC struct {
	usecase.CommissionUseCase
	RecordFunc func(ctx context.Context, sale *usecase.ConfirmedSale) (*model.Commission, error)
}

func (m *mockCommissionUC) RecordSale(ctx context.Context, sale *usecase.ConfirmedSale) (*model.Commission, error) {
	return m.RecordFunc(ctx, sale)
}

// --- Test helpers ---

const testAPIKey = "test-api-key"

func newTestServer(t *testing.T, opts ...func(*Server)) (*Server, *chi.Mux) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	auth := NewAuthManager("test-secret", false, "", 30*time.Minute)
	s := NewServer(nil, nil, nil, nil, nil, auth, testAPIKey, nil, &logger)
	for _, opt := range opts {
		opt(s)
	}
	r := chi.NewRouter()
	s.RegisterRoutes(r)
	return s, r
}

func adminReq(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestAdminAuth(t *testing.T) {
	t.Run("rejects requests without a token", func(t *testing.T) {
		_, r := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/coupon-types", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("want 401, got %d", rec.Code)
		}
	})

	t.Run("accepts the static bearer key", func(t *testing.T) {
		_, r := newTestServer(t, func(s *Server) {
			s.typeUC = &mockTypeUC{ListFunc: func(ctx context.Context) ([]*model.CouponType, error) {
				return nil, nil
			}}
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(http.MethodGet, "/api/v1/coupon-types", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d, body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("accepts a minted admin session token", func(t *testing.T) {
		s, r := newTestServer(t, func(s *Server) {
			s.typeUC = &mockTypeUC{ListFunc: func(ctx context.Context) ([]*model.CouponType, error) {
				return nil, nil
			}}
		})

		token, err := s.auth.MintAdmin(httptest.NewRecorder())
		if err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/coupon-types", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
	})

	t.Run("rejects an agent token on admin routes", func(t *testing.T) {
		s, r := newTestServer(t)

		token, err := s.auth.MintAgent("agent-1")
		if err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/coupon-types", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("want 401, got %d", rec.Code)
		}
	})
}

func TestAdminLogin(t *testing.T) {
	t.Run("exchanges the api key for a session token", func(t *testing.T) {
		_, r := newTestServer(t)

		body, _ := json.Marshal(map[string]string{"api_key": testAPIKey})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		var resp map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["token"] == "" {
			t.Fatal("expected a token in the response")
		}
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		_, r := newTestServer(t)

		body, _ := json.Marshal(map[string]string{"api_key": "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("want 403, got %d", rec.Code)
		}
	})
}

func TestTypeCreateHandler(t *testing.T) {
	t.Run("creates a type and returns 201", func(t *testing.T) {
		_, r := newTestServer(t, func(s *Server) {
			s.typeUC = &mockTypeUC{CreateFunc: func(ctx context.Context, code, name string, kind model.DiscountKind, limit int64) (*model.CouponType, error) {
				return &model.CouponType{ID: "type-1", TypeCode: code, TypeName: name, Kind: kind, MaxDiscountLimit: limit, IsActive: true}, nil
			}}
		})

		body, _ := json.Marshal(map[string]any{"type_code": "SPR", "type_name": "Spring Sale", "kind": "percentage", "max_discount_limit": 30})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(http.MethodPost, "/api/v1/coupon-types", body))

		if rec.Code != http.StatusCreated {
			t.Fatalf("want 201, got %d, body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("maps a duplicate type code to 409", func(t *testing.T) {
		_, r := newTestServer(t, func(s *Server) {
			s.typeUC = &mockTypeUC{CreateFunc: func(ctx context.Context, code, name string, kind model.DiscountKind, limit int64) (*model.CouponType, error) {
				return nil, domain.ErrAlreadyExists
			}}
		})

		body, _ := json.Marshal(map[string]any{"type_code": "SPR", "type_name": "Spring Sale", "kind": "percentage", "max_discount_limit": 30})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(http.MethodPost, "/api/v1/coupon-types", body))

		if rec.Code != http.StatusConflict {
			t.Fatalf("want 409, got %d", rec.Code)
		}
	})
}

func TestValidateCouponHandler(t *testing.T) {
	t.Run("returns 200 with an invalid result for a business rejection", func(t *testing.T) {
		_, r := newTestServer(t, func(s *Server) {
			s.checkoutUC = &mockCheckoutUC{ValidateFunc: func(ctx context.Context, code, studentID, courseID string) (*usecase.ValidationResult, error) {
				return &usecase.ValidationResult{Valid: false, Message: "coupon code not found or inactive"}, nil
			}}
		})

		body, _ := json.Marshal(map[string]string{"code": "COUPXXNOPE001", "student_id": "s1", "course_id": "c1"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/validate", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		var res usecase.ValidationResult
		if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res.Valid {
			t.Fatal("expected an invalid result")
		}
		if res.Message == "" {
			t.Fatal("expected a message")
		}
	})
}

func TestAgentRoutes(t *testing.T) {
	t.Run("pins the preview to the token's agent", func(t *testing.T) {
		var gotAgent string
		s, r := newTestServer(t, func(s *Server) {
			s.couponUC = &mockCouponUC{PreviewFunc: func(ctx context.Context, agentID, couponTypeID string, discountValue int64) (string, error) {
				gotAgent = agentID
				return "COUPJD001SPR015", nil
			}}
		})

		token, err := s.auth.MintAgent("agent-1")
		if err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		body, _ := json.Marshal(map[string]any{"coupon_type_id": "type-1", "discount_value": 15})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/coupons/preview", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d, body=%s", rec.Code, rec.Body.String())
		}
		if gotAgent != "agent-1" {
			t.Errorf("expected agent-1 from the token, got %q", gotAgent)
		}
	})

	t.Run("rejects the static api key on agent routes", func(t *testing.T) {
		_, r := newTestServer(t)

		req := adminReq(http.MethodGet, "/api/v1/agent/coupons", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("want 401, got %d", rec.Code)
		}
	})
}

func TestPayoutApproveHandler(t *testing.T) {
	t.Run("maps a wrong-state transition to 409", func(t *testing.T) {
		_, r := newTestServer(t, func(s *Server) {
			s.payoutUC = &mockPayoutUC{ApproveFunc: func(ctx context.Context, payoutID string) (*model.PayoutRequest, error) {
				return nil, domain.ErrInvalidStateTransition
			}}
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(http.MethodPost, "/api/v1/payouts/p1/approve", nil))

		if rec.Code != http.StatusConflict {
			t.Fatalf("want 409, got %d", rec.Code)
		}
	})
}

func TestPaymentWebhook(t *testing.T) {
	logger := zerolog.New(io.Discard)
	const secret = "hook-secret"

	sign := func(body []byte) string {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		return hex.EncodeToString(mac.Sum(nil))
	}

	newRouter := func(uc usecase.CommissionUseCase) *chi.Mux {
		r := chi.NewRouter()
		NewWebhookHandler(uc, secret, &logger).Register(r, "/api/v1/payments/confirm")
		return r
	}

	confirmation := func() []byte {
		body, _ := json.Marshal(map[string]any{
			"payment_id": "pay-1", "student_id": "s1", "course_id": "c1",
			"coupon_code": "COUPJD001SPR015", "sale_amount": 80000,
			"discount_amount": 12000, "final_amount": 68000,
			"paid_at": time.Now().Format(time.RFC3339),
		})
		return body
	}

	t.Run("records a signed confirmation", func(t *testing.T) {
		var got *usecase.ConfirmedSale
		r := newRouter(&mockCommissionUC{RecordFunc: func(ctx context.Context, sale *usecase.ConfirmedSale) (*model.Commission, error) {
			got = sale
			return &model.Commission{ID: "comm-1", PaymentID: sale.PaymentID}, nil
		}})

		body := confirmation()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/confirm", bytes.NewReader(body))
		req.Header.Set("X-Signature", sign(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d, body=%s", rec.Code, rec.Body.String())
		}
		if got == nil || got.PaymentID != "pay-1" || got.FinalAmount != 68000 {
			t.Fatalf("confirmation not passed through, got %+v", got)
		}
	})

	t.Run("rejects a bad signature", func(t *testing.T) {
		r := newRouter(&mockCommissionUC{RecordFunc: func(ctx context.Context, sale *usecase.ConfirmedSale) (*model.Commission, error) {
			t.Fatal("must not be called")
			return nil, nil
		}})

		body := confirmation()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/confirm", bytes.NewReader(body))
		req.Header.Set("X-Signature", "deadbeef")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("want 401, got %d", rec.Code)
		}
	})

	t.Run("answers 200 when the coupon turned out unusable", func(t *testing.T) {
		r := newRouter(&mockCommissionUC{RecordFunc: func(ctx context.Context, sale *usecase.ConfirmedSale) (*model.Commission, error) {
			return nil, domain.ErrUsageExhausted
		}})

		body := confirmation()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/confirm", bytes.NewReader(body))
		req.Header.Set("X-Signature", sign(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		var resp map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if recorded, _ := resp["recorded"].(bool); recorded {
			t.Fatal("expected recorded=false")
		}
	})
}
