package paymentwebhook

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/internal/policies"
	"github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
)

// Event is the normalized provider callback payload.
type Event struct {
	EventID       string          `json:"event_id" validate:"required"`
	OfferID       int64           `json:"offer_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Method        string          `json:"method" validate:"required"`
	TransactionID string          `json:"transaction_id" validate:"required"`
	Status        string          `json:"status" validate:"required"`
}

const eventStatusSucceeded = "succeeded"

type policyIssuer interface {
	CreatePolicyFromPayment(ctx context.Context, actor auth.Actor, input policies.CreatePolicyInput) (*policies.IssuedPolicy, error)
}

type dedupeGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type ServiceParams struct {
	Policies policyIssuer
	Guard    dedupeGuard
	Logger   *logger.Logger

	// SystemUserID is the identity provider callbacks act as.
	SystemUserID int64
}

type Service struct {
	policies     policyIssuer
	guard        dedupeGuard
	logg         *logger.Logger
	systemUserID int64
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Policies == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "policy service required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if params.SystemUserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "system user id required")
	}
	return &Service{
		policies:     params.Policies,
		guard:        params.Guard,
		logg:         params.Logger,
		systemUserID: params.SystemUserID,
	}, nil
}

// HandleEvent processes one provider callback. Duplicate deliveries and
// non-success statuses are acknowledged without side effects; a failed
// issuance clears the dedupe marker so the provider can redeliver.
func (s *Service) HandleEvent(ctx context.Context, event Event) error {
	if event.EventID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if event.Status != eventStatusSucceeded {
		logCtx := s.logg.WithFields(ctx, map[string]any{"event_id": event.EventID, "status": event.Status})
		s.logg.Info(logCtx, "ignoring non-success payment event")
		return nil
	}

	method, err := enums.ParsePaymentMethod(event.Method)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse payment method")
	}

	seen, err := s.guard.CheckAndMark(ctx, event.EventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check event dedupe")
	}
	if seen {
		logCtx := s.logg.WithField(ctx, "event_id", event.EventID)
		s.logg.Info(logCtx, "duplicate payment event ignored")
		return nil
	}

	actor := auth.Actor{UserID: s.systemUserID, Role: enums.ActorRoleAdmin}
	issued, err := s.policies.CreatePolicyFromPayment(ctx, actor, policies.CreatePolicyInput{
		OfferID:       event.OfferID,
		Amount:        event.Amount,
		Method:        method,
		TransactionID: event.TransactionID,
	})
	if err != nil {
		if delErr := s.guard.Delete(ctx, event.EventID); delErr != nil {
			logCtx := s.logg.WithField(ctx, "event_id", event.EventID)
			s.logg.Error(logCtx, "failed to clear dedupe marker", delErr)
		}
		return err
	}

	logCtx := s.logg.WithPolicyID(s.logg.WithOfferID(ctx, event.OfferID), issued.Policy.ID)
	s.logg.Info(logCtx, "payment event processed")
	return nil
}
