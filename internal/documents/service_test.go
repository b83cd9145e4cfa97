package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	"github.com/anadolubroker/sigorta-backend/pkg/types"
)

type stubDocumentRepo struct {
	created   []*models.Document
	createErr error
	byPolicy  []models.Document
	byCust    []models.Document
}

func (s *stubDocumentRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubDocumentRepo) Create(ctx context.Context, document *models.Document) (*models.Document, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, document)
	return document, nil
}

func (s *stubDocumentRepo) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDocumentRepo) ListByCustomer(ctx context.Context, customerID int64) ([]models.Document, error) {
	return s.byCust, nil
}

func (s *stubDocumentRepo) ListByPolicy(ctx context.Context, policyID int64) ([]models.Document, error) {
	return s.byPolicy, nil
}

type stubCustomerResolver struct {
	customer *models.Customer
}

func (s *stubCustomerResolver) FindCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error) {
	if s.customer == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.customer, nil
}

func newTestService(t *testing.T, repo Repository, customers customerResolver) *service {
	t.Helper()
	svc, err := NewService(repo, customers, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc.(*service)
}

func TestProcessOfferInfoCreatesOnlyFileEntries(t *testing.T) {
	repo := &stubDocumentRepo{}
	svc := newTestService(t, repo, &stubCustomerResolver{})
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }

	offer := models.Offer{
		ID:         7,
		CustomerID: 5,
		AdditionalInfo: types.AdditionalInfo{
			"deedDocument": types.ParseAdditionalInfoValue("tapu.pdf (/uploads/x/tapu.pdf)"),
			"address":      {Text: "Kadıköy, İstanbul"},
			"broken":       {File: &types.FileReference{Label: "x", URL: " "}},
		},
	}

	created := svc.ProcessOfferInfo(context.Background(), nil, offer, 11, nil)
	assert.Equal(t, 1, created)
	require.Len(t, repo.created, 1)
	assert.Equal(t, enums.DocumentCategoryDeed, repo.created[0].Category)
	assert.Equal(t, "tapu.pdf", repo.created[0].FileName)
	assert.Equal(t, "/uploads/x/tapu.pdf", repo.created[0].FileURL)
}

func TestProcessOfferInfoSwallowsStorageErrors(t *testing.T) {
	repo := &stubDocumentRepo{createErr: errors.New("disk full")}
	svc := newTestService(t, repo, &stubCustomerResolver{})

	offer := models.Offer{
		ID:         7,
		CustomerID: 5,
		AdditionalInfo: types.AdditionalInfo{
			"deedDocument": {File: &types.FileReference{Label: "tapu.pdf", URL: "/uploads/x/tapu.pdf"}},
		},
	}

	created := svc.ProcessOfferInfo(context.Background(), nil, offer, 11, nil)
	assert.Zero(t, created)
}

func TestCreateReceiptNamesFileAfterTransaction(t *testing.T) {
	repo := &stubDocumentRepo{}
	svc := newTestService(t, repo, &stubCustomerResolver{})
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }

	policy := models.Policy{ID: 11, CustomerID: 5}
	payment := models.Payment{PolicyID: 11, TransactionID: "TX-998"}

	doc, err := svc.CreateReceipt(context.Background(), nil, policy, payment)
	require.NoError(t, err)
	assert.Equal(t, enums.DocumentCategoryReceipt, doc.Category)
	assert.Equal(t, "receipt-TX-998.pdf", doc.FileName)
	require.NotNil(t, doc.PolicyID)
	assert.Equal(t, int64(11), *doc.PolicyID)
}

func TestListDocumentsScopesCustomers(t *testing.T) {
	repo := &stubDocumentRepo{byCust: []models.Document{{ID: 1}}}
	svc := newTestService(t, repo, &stubCustomerResolver{customer: &models.Customer{ID: 5, UserID: 50}})

	rows, err := svc.ListDocuments(context.Background(), auth.Actor{UserID: 50, Role: enums.ActorRoleCustomer}, ListParams{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// staff must name a filter
	_, err = svc.ListDocuments(context.Background(), auth.Actor{UserID: 1, Role: enums.ActorRoleAdmin}, ListParams{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
