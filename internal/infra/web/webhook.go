// File: internal/infra/web/webhook.go
package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"course-affiliate-engine/internal/domain"
	"course-affiliate-engine/internal/infra/logging"
	"course-affiliate-engine/internal/usecase"
)

const maxWebhookBody = 64 << 10

// WebhookHandler receives payment confirmations from the marketplace's
// gateway integration and turns them into commission records.
type WebhookHandler struct {
	commissionUC usecase.CommissionUseCase
	secret       string
	log          *zerolog.Logger
}

func NewWebhookHandler(commissionUC usecase.CommissionUseCase, secret string, logger *zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{commissionUC: commissionUC, secret: secret, log: logger}
}

// Register attaches the confirmation route at the configured path.
func (h *WebhookHandler) Register(r chi.Router, path string) {
	if path == "" {
		path = "/api/v1/payments/confirm"
	}
	r.Post(path, h.handleConfirm)
}

type paymentConfirmation struct {
	PaymentID      string    `json:"payment_id"`
	StudentID      string    `json:"student_id"`
	CourseID       string    `json:"course_id"`
	CouponCode     string    `json:"coupon_code"`
	SaleAmount     int64     `json:"sale_amount"`
	DiscountAmount int64     `json:"discount_amount"`
	FinalAmount    int64     `json:"final_amount"`
	PaidAt         time.Time `json:"paid_at"`
}

// VerifyWebhookSignature checks the X-Signature header: hex-encoded
// HMAC-SHA256 of the raw request body under the shared secret.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *WebhookHandler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if !VerifyWebhookSignature(h.secret, body, r.Header.Get("X-Signature")) {
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature mismatch")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var conf paymentConfirmation
	if err := json.Unmarshal(body, &conf); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	ctx := logging.WithPaymentID(r.Context(), conf.PaymentID)
	rec, err := h.commissionUC.RecordSale(ctx, &usecase.ConfirmedSale{
		PaymentID:      conf.PaymentID,
		StudentID:      conf.StudentID,
		CourseID:       conf.CourseID,
		CouponCode:     conf.CouponCode,
		SaleAmount:     conf.SaleAmount,
		DiscountAmount: conf.DiscountAmount,
		FinalAmount:    conf.FinalAmount,
		PaidAt:         conf.PaidAt,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "Invalid confirmation", http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrUsageExhausted), errors.Is(err, domain.ErrNotFound):
		// Permanent for this payment: the sale stands, no commission accrues.
		// A 200 stops the gateway integration from retrying.
		logging.With(ctx, h.log).Warn().Err(err).Msg("confirmation carried an unusable coupon")
		writeJSON(w, http.StatusOK, map[string]any{"recorded": false, "reason": err.Error()})
		return
	case err != nil:
		// Non-2xx makes the gateway integration retry; RecordSale is
		// idempotent so retries are safe.
		logging.With(ctx, h.log).Error().Err(err).Msg("recording sale failed")
		http.Error(w, "Failed to record sale", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"recorded": rec != nil}
	if rec != nil {
		resp["commission_id"] = rec.ID
	}
	writeJSON(w, http.StatusOK, resp)
}
