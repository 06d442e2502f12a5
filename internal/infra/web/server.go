// File: internal/infra/web/server.go
package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/infra/logging"
	"course-affiliate-engine/internal/infra/redis"
	"course-affiliate-engine/internal/usecase"
)

// Throttle for the public validation endpoint; generous for a human at
// checkout, far too slow for brute-forcing code strings.
const (
	validateRateLimit  = 20
	validateRateWindow = time.Minute
)

type Server struct {
	typeUC     usecase.CouponTypeUseCase
	couponUC   usecase.CouponUseCase
	checkoutUC usecase.CheckoutUseCase
	payoutUC   usecase.PayoutUseCase
	statsUC    usecase.StatsUseCase

	auth    *AuthManager
	apiKey  string
	limiter *redis.RateLimiter
	log     *zerolog.Logger
}

func NewServer(
	typeUC usecase.CouponTypeUseCase,
	couponUC usecase.CouponUseCase,
	checkoutUC usecase.CheckoutUseCase,
	payoutUC usecase.PayoutUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	apiKey string,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		typeUC:     typeUC,
		couponUC:   couponUC,
		checkoutUC: checkoutUC,
		payoutUC:   payoutUC,
		statsUC:    statsUC,
		auth:       auth,
		apiKey:     apiKey,
		limiter:    limiter,
		log:        logger,
	}
}

// RegisterRoutes attaches the engine's API to the router. The webhook route
// is registered separately by the webhook handler since its path comes from
// config.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Post("/api/v1/admin/login", s.handleAdminLogin)

	// Public checkout surface: no session, rate-limited per caller address.
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.With(s.rateLimit).Post("/validate", s.handleValidateCoupon)
		r.Get("/eligibility", s.handleCheckEligibility)
	})

	// Back-office API: admin session or the static bearer key.
	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Route("/api/v1/coupon-types", func(r chi.Router) {
			r.Get("/", s.handleTypeList)
			r.Post("/", s.handleTypeCreate)
			r.Get("/{id}", s.handleTypeGet)
			r.Delete("/{id}", s.handleTypeDeactivate)
		})

		r.Route("/api/v1/payouts", func(r chi.Router) {
			r.Get("/", s.handlePayoutList)
			r.Post("/{id}/approve", s.handlePayoutApprove)
			r.Post("/{id}/reject", s.handlePayoutReject)
			r.Post("/{id}/paid", s.handlePayoutMarkPaid)
		})

		r.Post("/api/v1/assignments", s.handleAssignCoupon)
		r.Get("/api/v1/stats", s.handleProgramStats)
	})

	// Agent API: agent-scoped JWT, each route pinned to the token's agent.
	r.Route("/api/v1/agent", func(r chi.Router) {
		r.Use(s.requireAgent)

		r.Post("/coupons/preview", s.handleCouponPreview)
		r.Post("/coupons", s.handleCouponCommit)
		r.Get("/coupons", s.handleCouponList)
		r.Put("/coupons/{id}", s.handleCouponEdit)
		r.Delete("/coupons/{id}", s.handleCouponRetire)

		r.Get("/earnings", s.handleAgentEarnings)
		r.Post("/payouts", s.handlePayoutRequest)
		r.Get("/payouts", s.handleAgentPayoutList)
	})
}

// requestLogger stamps every request with the chi request id and logs the
// outcome with latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// rateLimit throttles by remote address. A limiter outage fails open: coupon
// validation must not depend on redis being up.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			addr := r.RemoteAddr
			if i := strings.LastIndex(addr, ":"); i > 0 {
				addr = addr[:i]
			}
			ok, err := s.limiter.Allow(r.Context(), redis.ValidationKey(addr), validateRateLimit, validateRateWindow)
			if err != nil {
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
			} else if !ok {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin accepts either an admin session token or the static bearer
// API key.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := s.auth.ParseFromRequest(r); err == nil && claims.Role == RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}
		if s.apiKey != "" && bearerToken(r) == s.apiKey {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// requireAgent accepts an agent-scoped token and stashes the agent id; admin
// callers are not allowed here since every route is relative to one agent.
func (s *Server) requireAgent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil || claims.Role != RoleAgent || claims.AgentID() == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := logging.WithAgentID(r.Context(), claims.AgentID())
		ctx = withSessionAgent(ctx, claims.AgentID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return ""
	}
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// handleAdminLogin exchanges the static API key for a short-lived session
// cookie so the back-office UI does not hold the key in the browser.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if s.apiKey == "" || req.APIKey != s.apiKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.MintAdmin(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
