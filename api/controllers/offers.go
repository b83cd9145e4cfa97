package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/api/middleware"
	"github.com/anadolubroker/sigorta-backend/api/responses"
	"github.com/anadolubroker/sigorta-backend/api/validators"
	"github.com/anadolubroker/sigorta-backend/internal/offers"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	"github.com/anadolubroker/sigorta-backend/pkg/pagination"
	"github.com/anadolubroker/sigorta-backend/pkg/types"
)

type offerCreateRequest struct {
	CustomerID         int64                `json:"customer_id"`
	InsuranceTypeID    int64                `json:"insurance_type_id" validate:"required,gt=0"`
	BasePrice          decimal.Decimal      `json:"base_price"`
	DiscountRate       decimal.Decimal      `json:"discount_rate"`
	FinalPrice         decimal.Decimal      `json:"final_price"`
	CoverageAmount     decimal.Decimal      `json:"coverage_amount"`
	Status             *string              `json:"status"`
	RequestedStartDate *time.Time           `json:"requested_start_date"`
	AdditionalInfo     types.AdditionalInfo `json:"additional_info"`
}

func (r offerCreateRequest) toInput() (offers.CreateOfferInput, error) {
	input := offers.CreateOfferInput{
		CustomerID:         r.CustomerID,
		InsuranceTypeID:    r.InsuranceTypeID,
		BasePrice:          r.BasePrice,
		DiscountRate:       r.DiscountRate,
		FinalPrice:         r.FinalPrice,
		CoverageAmount:     r.CoverageAmount,
		RequestedStartDate: r.RequestedStartDate,
		AdditionalInfo:     r.AdditionalInfo,
	}
	if r.Status != nil {
		status, err := enums.ParseOfferStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return offers.CreateOfferInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer status")
		}
		input.Status = &status
	}
	return input, nil
}

// OfferCreate handles submitting a new offer.
func OfferCreate(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var req offerCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.CreateOffer(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offers.NewOfferView(*offer))
	}
}

type offerReviewRequest struct {
	Status       string           `json:"status" validate:"required"`
	FinalPrice   *decimal.Decimal `json:"final_price"`
	DiscountRate *decimal.Decimal `json:"discount_rate"`
	ValidUntil   *time.Time       `json:"valid_until"`
}

// OfferReview handles the agent/admin review decision.
func OfferReview(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req offerReviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOfferStatus(strings.TrimSpace(req.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer status"))
			return
		}

		offer, err := svc.AgentReviewOffer(r.Context(), actor, offerID, offers.ReviewOfferInput{
			Status:       status,
			FinalPrice:   req.FinalPrice,
			DiscountRate: req.DiscountRate,
			ValidUntil:   req.ValidUntil,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers.NewOfferView(*offer))
	}
}

type offerApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// OfferApproval handles the customer's accept/reject decision.
func OfferApproval(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req offerApprovalRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.CustomerApproval(r.Context(), actor, offerID, *req.Approved)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers.NewOfferView(*offer))
	}
}

// OfferDelete handles removing an offer.
func OfferDelete(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.DeleteOffer(r.Context(), actor, offerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// OfferDetail returns a single offer.
func OfferDetail(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
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

		offer, err := svc.GetOffer(r.Context(), actor, offerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers.NewOfferView(*offer))
	}
}

// OfferList returns the actor's visible offers.
func OfferList(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
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

		params := offers.ListParams{
			Params: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOfferStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer status"))
				return
			}
			params.Status = &status
		}

		result, err := svc.ListOffers(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
