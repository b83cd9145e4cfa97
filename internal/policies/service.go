package policies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/anadolubroker/sigorta-backend/internal/offers"
	"github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/db"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	pkgpagination "github.com/anadolubroker/sigorta-backend/pkg/pagination"
)

// offerUniqueConstraint is the unique index closing the issuance
// check-then-act race: at most one policy row per offer.
const offerUniqueConstraint = "uq_policies_offer_id"

// errDuplicateIssuance aborts the issuance transaction when a
// concurrent call won the unique-constraint race.
var errDuplicateIssuance = errors.New("policy already issued for offer")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type offersRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Offer, error)
	UpdateGuarded(ctx context.Context, id int64, lockVersion int64, updates map[string]any) error
}

type offersRepoFactory func(tx *gorm.DB) offersRepository

func defaultOffersRepo(tx *gorm.DB) offersRepository {
	return offers.NewRepository(tx)
}

type directoryRepository interface {
	FindCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	FindAgentByUserID(ctx context.Context, userID int64) (*models.Agent, error)
}

type documentSink interface {
	ProcessOfferInfo(ctx context.Context, tx *gorm.DB, offer models.Offer, policyID int64, uploadedBy *int64) int
	CreateReceipt(ctx context.Context, tx *gorm.DB, policy models.Policy, payment models.Payment) (*models.Document, error)
}

// CreatePolicyInput carries the payment facts that trigger issuance.
type CreatePolicyInput struct {
	OfferID       int64
	Amount        decimal.Decimal
	Method        enums.PaymentMethod
	TransactionID string
}

// IssuedPolicy pairs the policy with the payment recorded alongside it.
type IssuedPolicy struct {
	Policy  *models.Policy
	Payment *models.Payment
}

// Service issues policies from paid offers and serves policy reads.
type Service interface {
	CreatePolicyFromPayment(ctx context.Context, actor auth.Actor, input CreatePolicyInput) (*IssuedPolicy, error)
	GetPolicy(ctx context.Context, actor auth.Actor, policyID int64) (*models.Policy, error)
	ListPolicies(ctx context.Context, actor auth.Actor, params ListParams) (*ListResult, error)
}

type service struct {
	repo          Repository
	offers        offersRepository
	offersFactory offersRepoFactory
	directory     directoryRepository
	documents     documentSink
	tx            txRunner
	logg          *logger.Logger
	now           func() time.Time
}

// NewService builds a policy service with the required dependencies.
func NewService(repo Repository, offersRepo offersRepository, dir directoryRepository, documents documentSink, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("policies repository required")
	}
	if offersRepo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	if documents == nil {
		return nil, fmt.Errorf("documents service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:          repo,
		offers:        offersRepo,
		offersFactory: defaultOffersRepo,
		directory:     dir,
		documents:     documents,
		tx:            tx,
		logg:          logg,
		now:           time.Now,
	}, nil
}

// txOffers returns the offer repository bound to the transaction, or
// the ambient one when no transaction is open.
func (s *service) txOffers(tx *gorm.DB) offersRepository {
	if tx == nil {
		return s.offers
	}
	return s.offersFactory(tx)
}

// CreatePolicyFromPayment converts a customer-approved offer into an
// active policy, records the payment, and materializes supporting
// documents, all in one transaction. Issuance is idempotent per offer:
// a retry returns the already-issued policy unchanged.
func (s *service) CreatePolicyFromPayment(ctx context.Context, actor auth.Actor, input CreatePolicyInput) (*IssuedPolicy, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.IsAgent() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "agents cannot record payments")
	}
	if input.OfferID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.TransactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction_id required")
	}

	offer, err := s.loadOffer(ctx, input.OfferID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizePayment(ctx, actor, offer); err != nil {
		return nil, err
	}

	// fast path for retries
	if existing, err := s.findIssued(ctx, input.OfferID); err != nil {
		return nil, err
	} else if existing != nil {
		logCtx := s.logg.WithPolicyID(s.logg.WithOfferID(ctx, offer.ID), existing.Policy.ID)
		s.logg.Warn(logCtx, "policy already issued for offer, returning existing")
		return existing, nil
	}

	if offer.Status == enums.OfferStatusExpired || offer.IsExpired(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer has expired")
	}
	if !offer.Status.CanTransition(enums.OfferStatusPaid) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is not ready for payment")
	}

	categoryName := ""
	if offer.InsuranceType != nil {
		categoryName = offer.InsuranceType.Name
	}

	now := s.now().UTC()
	startDate := now
	if offer.RequestedStartDate != nil {
		startDate = offer.RequestedStartDate.UTC()
	}

	var issued IssuedPolicy
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		policy := &models.Policy{
			OfferID:         offer.ID,
			PolicyNumber:    PolicyNumber(now, categoryName, offer.ID),
			CustomerID:      offer.CustomerID,
			AgentID:         offer.ReviewedBy,
			InsuranceTypeID: offer.InsuranceTypeID,
			StartDate:       startDate,
			EndDate:         CoverageEnd(startDate, categoryName),
			TotalPremium:    input.Amount,
			Status:          enums.PolicyStatusActive,
		}
		created, err := repoTx.Create(ctx, policy)
		if err != nil {
			if db.IsUniqueViolation(err, offerUniqueConstraint) {
				return errDuplicateIssuance
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create policy")
		}

		payment := &models.Payment{
			PolicyID:      created.ID,
			Amount:        input.Amount,
			Method:        input.Method,
			Status:        enums.PaymentStatusCompleted,
			TransactionID: input.TransactionID,
			PaidAt:        now,
		}
		if _, err := repoTx.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
		}

		if err := s.txOffers(tx).UpdateGuarded(ctx, offer.ID, offer.LockVersion, map[string]any{
			"status": enums.OfferStatusPaid,
		}); err != nil {
			if errors.Is(err, offers.ErrVersionConflict) {
				return pkgerrors.New(pkgerrors.CodeConflict, "offer was modified concurrently")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark offer paid")
		}

		// document materialization never fails the issuance
		s.documents.ProcessOfferInfo(ctx, tx, *offer, created.ID, nil)
		if _, err := s.documents.CreateReceipt(ctx, tx, *created, *payment); err != nil {
			logCtx := s.logg.WithPolicyID(ctx, created.ID)
			s.logg.Error(logCtx, "failed to store payment receipt document", err)
		}

		issued = IssuedPolicy{Policy: created, Payment: payment}
		return nil
	})
	if err != nil {
		if errors.Is(err, errDuplicateIssuance) {
			existing, findErr := s.findIssued(ctx, input.OfferID)
			if findErr != nil {
				return nil, findErr
			}
			if existing == nil {
				return nil, pkgerrors.New(pkgerrors.CodeInternal, "issuance conflict without existing policy")
			}
			logCtx := s.logg.WithPolicyID(s.logg.WithOfferID(ctx, offer.ID), existing.Policy.ID)
			s.logg.Warn(logCtx, "concurrent issuance detected, returning existing policy")
			return existing, nil
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue policy")
	}

	logCtx := s.logg.WithPolicyID(s.logg.WithOfferID(ctx, offer.ID), issued.Policy.ID)
	s.logg.Info(logCtx, "policy issued")
	return &issued, nil
}

func (s *service) GetPolicy(ctx context.Context, actor auth.Actor, policyID int64) (*models.Policy, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if policyID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy id required")
	}

	policy, err := s.repo.FindByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
	}
	if err := s.authorizeRead(ctx, actor, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

func (s *service) ListPolicies(ctx context.Context, actor auth.Actor, params ListParams) (*ListResult, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	query := listQuery{
		status: params.Status,
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
	}

	switch {
	case actor.IsAdmin():
		// unscoped
	case actor.IsAgent():
		agent, err := s.directory.FindAgentByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "agent profile not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup agent")
		}
		query.insuranceTypeID = &agent.InsuranceTypeID
	case actor.IsCustomer():
		customer, err := s.directory.FindCustomerByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer profile not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
		}
		query.customerID = &customer.ID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	query.cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list policies")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	items := make([]PolicyView, 0, len(rows))
	for _, row := range rows {
		items = append(items, NewPolicyView(row))
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) loadOffer(ctx context.Context, offerID int64) (*models.Offer, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return offer, nil
}

// findIssued returns the already-issued policy and payment for an
// offer, or nil when issuance has not happened yet.
func (s *service) findIssued(ctx context.Context, offerID int64) (*IssuedPolicy, error) {
	policy, err := s.repo.FindByOfferID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup existing policy")
	}

	payment := policy.Payment
	if payment == nil {
		payment, err = s.repo.FindPaymentByPolicyID(ctx, policy.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup existing payment")
		}
	}
	return &IssuedPolicy{Policy: policy, Payment: payment}, nil
}

// authorizePayment lets the owning customer (or an admin acting for the
// payment provider) trigger issuance.
func (s *service) authorizePayment(ctx context.Context, actor auth.Actor, offer *models.Offer) error {
	if actor.IsAdmin() {
		return nil
	}
	customer, err := s.directory.FindCustomerByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "customer profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}
	if offer.CustomerID != customer.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "offer does not belong to customer")
	}
	return nil
}

func (s *service) authorizeRead(ctx context.Context, actor auth.Actor, policy *models.Policy) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsAgent():
		agent, err := s.directory.FindAgentByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "agent profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup agent")
		}
		if agent.InsuranceTypeID != policy.InsuranceTypeID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "policy is outside the agent's department")
		}
		return nil
	case actor.IsCustomer():
		customer, err := s.directory.FindCustomerByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "customer profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
		}
		if policy.CustomerID != customer.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "policy does not belong to customer")
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
}
