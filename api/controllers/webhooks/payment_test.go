package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	paymentwebhook "github.com/anadolubroker/sigorta-backend/internal/webhooks/payment"
	"github.com/anadolubroker/sigorta-backend/pkg/config"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
)

type stubWebhookService struct {
	calls     int
	lastEvent paymentwebhook.Event
	err       error
}

func (s *stubWebhookService) HandleEvent(ctx context.Context, event paymentwebhook.Event) error {
	s.calls++
	s.lastEvent = event
	return s.err
}

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

const eventBody = `{"event_id":"evt-1","offer_id":42,"amount":"1200","method":"credit_card","transaction_id":"txn-1","status":"succeeded"}`

func TestPaymentWebhookVerifiesSignature(t *testing.T) {
	svc := &stubWebhookService{}
	cfg := config.WebhookConfig{Secret: "hook-secret"}
	handler := PaymentWebhook(svc, cfg, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(eventBody))
	req.Header.Set(signatureHeader, sign(eventBody, "hook-secret"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, "evt-1", svc.lastEvent.EventID)
	assert.Equal(t, int64(42), svc.lastEvent.OfferID)
}

func TestPaymentWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubWebhookService{}
	cfg := config.WebhookConfig{Secret: "hook-secret"}
	handler := PaymentWebhook(svc, cfg, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(eventBody))
	req.Header.Set(signatureHeader, sign(eventBody, "wrong-secret"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestPaymentWebhookRequiresSignatureHeader(t *testing.T) {
	svc := &stubWebhookService{}
	cfg := config.WebhookConfig{Secret: "hook-secret"}
	handler := PaymentWebhook(svc, cfg, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(eventBody))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestPaymentWebhookRejectsIncompleteEvent(t *testing.T) {
	svc := &stubWebhookService{}
	handler := PaymentWebhook(svc, config.WebhookConfig{}, logger.New(logger.Options{ServiceName: "test"}))

	body := `{"event_id":"evt-2","amount":"1200","method":"credit_card","transaction_id":"txn-2","status":"succeeded"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "offer_id")
	assert.Zero(t, svc.calls)
}

func TestPaymentWebhookSkipsCheckWithoutSecret(t *testing.T) {
	svc := &stubWebhookService{}
	handler := PaymentWebhook(svc, config.WebhookConfig{}, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(eventBody))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.calls)
}
