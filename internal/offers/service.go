package offers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	pkgpagination "github.com/anadolubroker/sigorta-backend/pkg/pagination"
	"github.com/anadolubroker/sigorta-backend/pkg/types"
)

type directoryRepository interface {
	FindCustomer(ctx context.Context, id int64) (*models.Customer, error)
	FindCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	FindAgentByUserID(ctx context.Context, userID int64) (*models.Agent, error)
	FindInsuranceType(ctx context.Context, id int64) (*models.InsuranceType, error)
}

// CreateOfferInput carries the fields a caller may set when opening an
// offer. Prices submitted by customers are placeholders until review.
type CreateOfferInput struct {
	CustomerID         int64
	InsuranceTypeID    int64
	BasePrice          decimal.Decimal
	DiscountRate       decimal.Decimal
	FinalPrice         decimal.Decimal
	CoverageAmount     decimal.Decimal
	Status             *enums.OfferStatus
	RequestedStartDate *time.Time
	AdditionalInfo     types.AdditionalInfo
}

// ReviewOfferInput carries the fields an agent or admin may change
// during review. Nil pointers leave the stored value untouched.
type ReviewOfferInput struct {
	Status       enums.OfferStatus
	FinalPrice   *decimal.Decimal
	DiscountRate *decimal.Decimal
	ValidUntil   *time.Time
}

// Service drives the offer state machine.
type Service interface {
	CreateOffer(ctx context.Context, actor auth.Actor, input CreateOfferInput) (*models.Offer, error)
	AgentReviewOffer(ctx context.Context, actor auth.Actor, offerID int64, input ReviewOfferInput) (*models.Offer, error)
	CustomerApproval(ctx context.Context, actor auth.Actor, offerID int64, approved bool) (*models.Offer, error)
	DeleteOffer(ctx context.Context, actor auth.Actor, offerID int64) error
	GetOffer(ctx context.Context, actor auth.Actor, offerID int64) (*models.Offer, error)
	ListOffers(ctx context.Context, actor auth.Actor, params ListParams) (*ListResult, error)
}

type service struct {
	repo      Repository
	directory directoryRepository
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds an offer service with the required dependencies.
func NewService(repo Repository, dir directoryRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		directory: dir,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) CreateOffer(ctx context.Context, actor auth.Actor, input CreateOfferInput) (*models.Offer, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validatePrices(input, actor.Role); err != nil {
		return nil, err
	}

	customer, err := s.resolveOfferCustomer(ctx, actor, input.CustomerID)
	if err != nil {
		return nil, err
	}

	insuranceType, err := s.directory.FindInsuranceType(ctx, input.InsuranceTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "insurance category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup insurance category")
	}

	now := s.now().UTC()
	if err := validateCategoryRules(insuranceType.Name, input, actor.Role, now); err != nil {
		return nil, err
	}

	status := enums.OfferStatusPending
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer status")
		}
		status = *input.Status
	}

	offer := &models.Offer{
		CustomerID:         customer.ID,
		InsuranceTypeID:    insuranceType.ID,
		BasePrice:          input.BasePrice,
		DiscountRate:       input.DiscountRate,
		FinalPrice:         input.FinalPrice,
		CoverageAmount:     input.CoverageAmount,
		Status:             status,
		ValidUntil:         ValidUntil(now, insuranceType.Name),
		RequestedStartDate: input.RequestedStartDate,
		AdditionalInfo:     input.AdditionalInfo,
	}

	created, err := s.repo.Create(ctx, offer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}

	logCtx := s.logg.WithOfferID(ctx, created.ID)
	s.logg.Info(logCtx, "offer created")
	created.Customer = customer
	created.InsuranceType = insuranceType
	return created, nil
}

func (s *service) AgentReviewOffer(ctx context.Context, actor auth.Actor, offerID int64, input ReviewOfferInput) (*models.Offer, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.IsAgent() && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only agents and admins may review offers")
	}
	if offerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status == enums.OfferStatusExpired {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer has expired")
	}
	if offer.IsCustomerApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer already approved by customer")
	}

	var reviewedBy *int64
	if actor.IsAgent() {
		agent, err := s.directory.FindAgentByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "agent profile not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup agent")
		}
		if agent.InsuranceTypeID != offer.InsuranceTypeID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer is outside the agent's department")
		}
		reviewedBy = &agent.ID
	}

	if !isReviewStatus(input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review status must be reviewed, approved or rejected")
	}
	if !offer.Status.CanTransition(input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move offer from %s to %s", offer.Status, input.Status))
	}
	if input.FinalPrice != nil && input.FinalPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "final_price must not be negative")
	}
	if input.DiscountRate != nil && input.DiscountRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_rate must not be negative")
	}

	now := s.now().UTC()
	updates := map[string]any{
		"status":      input.Status,
		"reviewed_at": now,
		"reviewed_by": reviewedBy,
	}
	if input.FinalPrice != nil {
		updates["final_price"] = *input.FinalPrice
	}
	if input.DiscountRate != nil {
		updates["discount_rate"] = *input.DiscountRate
	}
	if input.ValidUntil != nil {
		updates["valid_until"] = input.ValidUntil.UTC()
	}

	if err := s.repo.UpdateGuarded(ctx, offer.ID, offer.LockVersion, updates); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "offer was modified concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer")
	}

	logCtx := s.logg.WithOfferID(ctx, offer.ID)
	s.logg.Info(logCtx, "offer reviewed")
	return s.loadOffer(ctx, offer.ID)
}

func (s *service) CustomerApproval(ctx context.Context, actor auth.Actor, offerID int64, approved bool) (*models.Offer, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if offerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	customer, err := s.directory.FindCustomerByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}

	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.CustomerID != customer.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer does not belong to customer")
	}
	if offer.Status == enums.OfferStatusExpired {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer has expired")
	}
	if offer.IsCustomerApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer already approved by customer")
	}

	target := enums.OfferStatusCustomerApproved
	if !approved {
		target = enums.OfferStatusRejected
	}
	if !offer.Status.CanTransition(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is not ready for customer approval")
	}

	now := s.now().UTC()
	updates := map[string]any{
		"status":               target,
		"is_customer_approved": approved,
	}
	if approved {
		updates["customer_approved_at"] = now
	}

	if err := s.repo.UpdateGuarded(ctx, offer.ID, offer.LockVersion, updates); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "offer was modified concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer")
	}

	logCtx := s.logg.WithOfferID(ctx, offer.ID)
	if approved {
		s.logg.Info(logCtx, "offer approved by customer")
	} else {
		s.logg.Info(logCtx, "offer rejected by customer")
	}
	return s.loadOffer(ctx, offer.ID)
}

func (s *service) DeleteOffer(ctx context.Context, actor auth.Actor, offerID int64) error {
	if actor.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if offerID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return err
	}

	switch {
	case actor.IsAdmin():
		// admins delete unconditionally
	case actor.IsAgent():
		agent, err := s.directory.FindAgentByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "agent profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup agent")
		}
		if agent.InsuranceTypeID != offer.InsuranceTypeID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer is outside the agent's department")
		}
	case actor.IsCustomer():
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
		if offer.Status == enums.OfferStatusPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "paid offers cannot be deleted")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	if err := s.repo.DeleteGuarded(ctx, offer.ID, offer.LockVersion); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return pkgerrors.New(pkgerrors.CodeConflict, "offer was modified concurrently")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer")
	}

	logCtx := s.logg.WithOfferID(ctx, offer.ID)
	s.logg.Info(logCtx, "offer deleted")
	return nil
}

func (s *service) GetOffer(ctx context.Context, actor auth.Actor, offerID int64) (*models.Offer, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if offerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) ListOffers(ctx context.Context, actor auth.Actor, params ListParams) (*ListResult, error) {
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	now := s.now().UTC()
	items := make([]OfferView, 0, len(rows))
	for _, row := range rows {
		if row.IsExpired(now) {
			row.Status = enums.OfferStatusExpired
		}
		items = append(items, NewOfferView(row))
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

// loadOffer fetches an offer and promotes it to expired first when its
// validity window has already passed.
func (s *service) loadOffer(ctx context.Context, offerID int64) (*models.Offer, error) {
	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return s.promoteExpired(ctx, offer), nil
}

func (s *service) promoteExpired(ctx context.Context, offer *models.Offer) *models.Offer {
	if !offer.IsExpired(s.now().UTC()) {
		return offer
	}
	err := s.repo.UpdateGuarded(ctx, offer.ID, offer.LockVersion, map[string]any{
		"status": enums.OfferStatusExpired,
	})
	if err != nil && !errors.Is(err, ErrVersionConflict) {
		logCtx := s.logg.WithOfferID(ctx, offer.ID)
		s.logg.Error(logCtx, "failed to expire overdue offer", err)
		return offer
	}
	offer.Status = enums.OfferStatusExpired
	offer.LockVersion++
	return offer
}

func (s *service) authorizeRead(ctx context.Context, actor auth.Actor, offer *models.Offer) error {
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
		if agent.InsuranceTypeID != offer.InsuranceTypeID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer is outside the agent's department")
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
		if offer.CustomerID != customer.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer does not belong to customer")
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
}

func (s *service) resolveOfferCustomer(ctx context.Context, actor auth.Actor, customerID int64) (*models.Customer, error) {
	if actor.IsCustomer() {
		customer, err := s.directory.FindCustomerByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer profile not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
		}
		if customerID != 0 && customerID != customer.ID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot create offers for another customer")
		}
		return customer, nil
	}

	if customerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id required")
	}
	customer, err := s.directory.FindCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}
	return customer, nil
}

func isReviewStatus(status enums.OfferStatus) bool {
	return status == enums.OfferStatusReviewed ||
		status == enums.OfferStatusApproved ||
		status == enums.OfferStatusRejected
}
