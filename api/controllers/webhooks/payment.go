package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/anadolubroker/sigorta-backend/api/responses"
	"github.com/anadolubroker/sigorta-backend/api/validators"
	paymentwebhook "github.com/anadolubroker/sigorta-backend/internal/webhooks/payment"
	"github.com/anadolubroker/sigorta-backend/pkg/config"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
)

const signatureHeader = "X-Sigorta-Signature"

type paymentWebhookService interface {
	HandleEvent(ctx context.Context, event paymentwebhook.Event) error
}

// PaymentWebhook handles payment-provider callbacks.
func PaymentWebhook(svc paymentWebhookService, cfg config.WebhookConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if cfg.Secret != "" {
			signature := r.Header.Get(signatureHeader)
			if signature == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature missing"))
				return
			}
			if !verifySignature(payload, signature, cfg.Secret) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch"))
				return
			}
		}

		var event paymentwebhook.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment event"))
			return
		}
		if err := validators.ValidateStruct(event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.HandleEvent(ctx, event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"received": true})
	}
}

func verifySignature(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
