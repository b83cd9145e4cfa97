package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
)

type customerResolver interface {
	FindCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
}

// ListParams filters the document listing.
type ListParams struct {
	CustomerID *int64
	PolicyID   *int64
}

// Service materializes document rows from offer blobs and payment
// receipts and serves the role-scoped listing.
type Service interface {
	ProcessOfferInfo(ctx context.Context, tx *gorm.DB, offer models.Offer, policyID int64, uploadedBy *int64) int
	CreateReceipt(ctx context.Context, tx *gorm.DB, policy models.Policy, payment models.Payment) (*models.Document, error)
	ListDocuments(ctx context.Context, actor auth.Actor, params ListParams) ([]models.Document, error)
}

type service struct {
	repo      Repository
	customers customerResolver
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds a documents service with the required dependencies.
func NewService(repo Repository, customers customerResolver, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		customers: customers,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// ProcessOfferInfo walks the offer's additional-info blob and creates a
// document row for every entry that references an uploaded file. A bad
// entry is logged and skipped; the caller's operation never fails on
// one. Returns how many documents were created.
func (s *service) ProcessOfferInfo(ctx context.Context, tx *gorm.DB, offer models.Offer, policyID int64, uploadedBy *int64) int {
	repo := s.repo.WithTx(tx)
	now := s.now().UTC()
	created := 0
	seq := 0

	for key, value := range offer.AdditionalInfo {
		document, err := documentFromInfoEntry(key, value, offer.CustomerID, &policyID, uploadedBy, now)
		if err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"offer_id": offer.ID, "info_key": key})
			s.logg.Warn(logCtx, "skipping unparseable additional-info entry: "+err.Error())
			continue
		}
		if document == nil {
			continue
		}
		seq++
		err = createInSavepoint(tx, fmt.Sprintf("offer_doc_%d", seq), func() error {
			_, createErr := repo.Create(ctx, document)
			return createErr
		})
		if err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"offer_id": offer.ID, "info_key": key})
			s.logg.Error(logCtx, "failed to store offer document", err)
			continue
		}
		created++
	}
	return created
}

// createInSavepoint shields the enclosing transaction from a failed
// insert. Postgres aborts the whole transaction on any statement error,
// so a swallowed document failure would otherwise poison the commit of
// the policy and payment writes around it.
func createInSavepoint(tx *gorm.DB, name string, fn func() error) error {
	if tx == nil {
		return fn()
	}
	if err := tx.SavePoint(name).Error; err != nil {
		return err
	}
	if err := fn(); err != nil {
		if rbErr := tx.RollbackTo(name).Error; rbErr != nil {
			return fmt.Errorf("%w (savepoint rollback: %v)", err, rbErr)
		}
		return err
	}
	return nil
}

// CreateReceipt stores the single receipt document for a completed
// payment, named after the transaction id.
func (s *service) CreateReceipt(ctx context.Context, tx *gorm.DB, policy models.Policy, payment models.Payment) (*models.Document, error) {
	fileName := fmt.Sprintf("receipt-%s.pdf", payment.TransactionID)
	document := &models.Document{
		Category:   enums.DocumentCategoryReceipt,
		FileName:   fileName,
		FileURL:    "/uploads/receipts/" + fileName,
		FileType:   enums.FileTypeDocument,
		Status:     enums.DocumentStatusActive,
		CustomerID: &policy.CustomerID,
		PolicyID:   &policy.ID,
		UploadedAt: s.now().UTC(),
	}
	var created *models.Document
	err := createInSavepoint(tx, "receipt_doc", func() error {
		var createErr error
		created, createErr = s.repo.WithTx(tx).Create(ctx, document)
		return createErr
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ListDocuments(ctx context.Context, actor auth.Actor, params ListParams) ([]models.Document, error) {
	if actor.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	if actor.IsCustomer() {
		customer, err := s.customers.FindCustomerByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer profile not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
		}
		rows, err := s.repo.ListByCustomer(ctx, customer.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
		}
		return rows, nil
	}

	switch {
	case params.PolicyID != nil:
		rows, err := s.repo.ListByPolicy(ctx, *params.PolicyID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
		}
		return rows, nil
	case params.CustomerID != nil:
		rows, err := s.repo.ListByCustomer(ctx, *params.CustomerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
		}
		return rows, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id or policy_id required")
}
