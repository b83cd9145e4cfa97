package policydoc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
)

type stubPolicyReader struct {
	policy *models.Policy
	err    error
}

func (s *stubPolicyReader) GetPolicy(ctx context.Context, actor auth.Actor, policyID int64) (*models.Policy, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.policy, nil
}

type stubDocumentRecorder struct {
	existing  []models.Document
	listErr   error
	created   []*models.Document
	createErr error
}

func (s *stubDocumentRecorder) Create(ctx context.Context, document *models.Document) (*models.Document, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	document.ID = int64(len(s.created) + 1)
	s.created = append(s.created, document)
	return document, nil
}

func (s *stubDocumentRecorder) ListByPolicy(ctx context.Context, policyID int64) ([]models.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.existing, nil
}

type stubRenderer struct {
	data []byte
	err  error

	lastSnapshot PolicySnapshot
}

func (s *stubRenderer) Render(ctx context.Context, snapshot PolicySnapshot) ([]byte, error) {
	s.lastSnapshot = snapshot
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type stubStore struct {
	url     string
	err     error
	saved   int
	lastKey string
}

func (s *stubStore) SaveDocument(ctx context.Context, data []byte, fileName string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved++
	s.lastKey = fileName
	return s.url + "/" + fileName, nil
}

func issuedPolicy() *models.Policy {
	return &models.Policy{
		ID:            7,
		OfferID:       42,
		PolicyNumber:  "POL-20260514-ARC-0042",
		CustomerID:    3,
		StartDate:     time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2027, 5, 14, 0, 0, 0, 0, time.UTC),
		TotalPremium:  decimal.NewFromInt(1200),
		Status:        enums.PolicyStatusActive,
		Customer:      &models.Customer{ID: 3, FullName: "Ayse Demir"},
		InsuranceType: &models.InsuranceType{ID: 1, Name: "Trafik"},
	}
}

func newDocService(t *testing.T, policies *stubPolicyReader, docs *stubDocumentRecorder, renderer *stubRenderer, store *stubStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc, err := NewService(policies, docs, renderer, store, logg)
	require.NoError(t, err)
	return svc
}

func TestPolicyDocumentRendersAndRecords(t *testing.T) {
	policies := &stubPolicyReader{policy: issuedPolicy()}
	docs := &stubDocumentRecorder{}
	renderer := &stubRenderer{data: []byte("%PDF-1.7 fake")}
	store := &stubStore{url: "/uploads/2026/05"}
	svc := newDocService(t, policies, docs, renderer, store)

	actor := auth.Actor{UserID: 30, Role: enums.ActorRoleAdmin}
	rendered, err := svc.PolicyDocument(context.Background(), actor, 7)
	require.NoError(t, err)

	assert.Equal(t, "POL-20260514-ARC-0042.pdf", rendered.FileName)
	assert.Equal(t, "application/pdf", rendered.ContentType)
	assert.Equal(t, []byte("%PDF-1.7 fake"), rendered.Data)

	assert.Equal(t, "Ayse Demir", renderer.lastSnapshot.CustomerName)
	assert.Equal(t, "Trafik", renderer.lastSnapshot.CategoryName)

	require.Len(t, docs.created, 1)
	created := docs.created[0]
	assert.Equal(t, enums.DocumentCategoryPolicy, created.Category)
	assert.Equal(t, "POL-20260514-ARC-0042.pdf", created.FileName)
	assert.Equal(t, "/uploads/2026/05/POL-20260514-ARC-0042.pdf", created.FileURL)
	require.NotNil(t, created.PolicyID)
	assert.Equal(t, int64(7), *created.PolicyID)
	require.NotNil(t, created.CustomerID)
	assert.Equal(t, int64(3), *created.CustomerID)
}

func TestPolicyDocumentSkipsDuplicateRecord(t *testing.T) {
	policyID := int64(7)
	policies := &stubPolicyReader{policy: issuedPolicy()}
	docs := &stubDocumentRecorder{existing: []models.Document{{
		ID:       11,
		Category: enums.DocumentCategoryPolicy,
		PolicyID: &policyID,
	}}}
	renderer := &stubRenderer{data: []byte("pdf")}
	store := &stubStore{url: "/uploads"}
	svc := newDocService(t, policies, docs, renderer, store)

	actor := auth.Actor{UserID: 30, Role: enums.ActorRoleAdmin}
	rendered, err := svc.PolicyDocument(context.Background(), actor, 7)
	require.NoError(t, err)

	assert.NotEmpty(t, rendered.Data)
	assert.Zero(t, store.saved)
	assert.Empty(t, docs.created)
}

func TestPolicyDocumentStorageFailureIsNonFatal(t *testing.T) {
	policies := &stubPolicyReader{policy: issuedPolicy()}
	docs := &stubDocumentRecorder{}
	renderer := &stubRenderer{data: []byte("pdf")}
	store := &stubStore{err: errors.New("disk full")}
	svc := newDocService(t, policies, docs, renderer, store)

	actor := auth.Actor{UserID: 30, Role: enums.ActorRoleAdmin}
	rendered, err := svc.PolicyDocument(context.Background(), actor, 7)
	require.NoError(t, err)
	assert.NotEmpty(t, rendered.Data)
	assert.Empty(t, docs.created)
}

func TestPolicyDocumentPropagatesAccessErrors(t *testing.T) {
	policies := &stubPolicyReader{err: pkgerrors.New(pkgerrors.CodeForbidden, "access denied")}
	svc := newDocService(t, policies, &stubDocumentRecorder{}, &stubRenderer{}, &stubStore{})

	actor := auth.Actor{UserID: 99, Role: enums.ActorRoleCustomer}
	_, err := svc.PolicyDocument(context.Background(), actor, 7)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestPolicyDocumentRenderFailure(t *testing.T) {
	policies := &stubPolicyReader{policy: issuedPolicy()}
	renderer := &stubRenderer{err: errors.New("layout failed")}
	svc := newDocService(t, policies, &stubDocumentRecorder{}, renderer, &stubStore{})

	actor := auth.Actor{UserID: 30, Role: enums.ActorRoleAdmin}
	_, err := svc.PolicyDocument(context.Background(), actor, 7)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}
