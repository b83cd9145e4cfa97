package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/api/middleware"
	"github.com/anadolubroker/sigorta-backend/api/responses"
	"github.com/anadolubroker/sigorta-backend/api/validators"
	"github.com/anadolubroker/sigorta-backend/internal/policies"
	"github.com/anadolubroker/sigorta-backend/internal/policydoc"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	"github.com/anadolubroker/sigorta-backend/pkg/pagination"
)

type paymentCreateRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Method        string          `json:"method" validate:"required"`
	TransactionID string          `json:"transaction_id" validate:"required"`
}

type issuedPolicyResponse struct {
	Policy  policies.PolicyView `json:"policy"`
	Payment paymentView         `json:"payment"`
}

type paymentView struct {
	ID            int64               `json:"id"`
	PolicyID      int64               `json:"policy_id"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        enums.PaymentMethod `json:"method"`
	Status        enums.PaymentStatus `json:"status"`
	TransactionID string              `json:"transaction_id"`
	PaidAt        string              `json:"paid_at"`
}

func newPaymentView(payment models.Payment) paymentView {
	return paymentView{
		ID:            payment.ID,
		PolicyID:      payment.PolicyID,
		Amount:        payment.Amount,
		Method:        payment.Method,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
		PaidAt:        payment.PaidAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// PaymentCreate records a payment against an approved offer and issues
// the policy.
func PaymentCreate(svc policies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		offerID, err := pathID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req paymentCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(req.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method"))
			return
		}

		issued, err := svc.CreatePolicyFromPayment(r.Context(), actor, policies.CreatePolicyInput{
			OfferID:       offerID,
			Amount:        req.Amount,
			Method:        method,
			TransactionID: strings.TrimSpace(req.TransactionID),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, issuedPolicyResponse{
			Policy:  policies.NewPolicyView(*issued.Policy),
			Payment: newPaymentView(*issued.Payment),
		})
	}
}

// PolicyDetail returns a single policy.
func PolicyDetail(svc policies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		policyID, err := pathID(r, "policyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		policy, err := svc.GetPolicy(r.Context(), actor, policyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, policies.NewPolicyView(*policy))
	}
}

// PolicyList returns the actor's visible policies.
func PolicyList(svc policies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := policies.ListParams{
			Params: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParsePolicyStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid policy status"))
				return
			}
			params.Status = &status
		}

		result, err := svc.ListPolicies(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PolicyDocument streams the rendered policy certificate.
func PolicyDocument(svc policydoc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		policyID, err := pathID(r, "policyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rendered, err := svc.PolicyDocument(r.Context(), actor, policyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", rendered.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendered.FileName))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(rendered.Data); err != nil {
			logg.Error(r.Context(), "failed to stream policy document", err)
		}
	}
}
