package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anadolubroker/sigorta-backend/internal/documents"
	"github.com/anadolubroker/sigorta-backend/internal/offers"
	"github.com/anadolubroker/sigorta-backend/internal/policies"
	"github.com/anadolubroker/sigorta-backend/internal/policydoc"
	pkgAuth "github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/config"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	gormlib "gorm.io/gorm"
)

type stubOfferService struct {
	listCalls int
}

func (s *stubOfferService) CreateOffer(ctx context.Context, actor pkgAuth.Actor, input offers.CreateOfferInput) (*models.Offer, error) {
	return &models.Offer{ID: 1, CustomerID: 1, InsuranceTypeID: input.InsuranceTypeID, Status: enums.OfferStatusPending}, nil
}

func (s *stubOfferService) AgentReviewOffer(ctx context.Context, actor pkgAuth.Actor, offerID int64, input offers.ReviewOfferInput) (*models.Offer, error) {
	return &models.Offer{ID: offerID, Status: input.Status}, nil
}

func (s *stubOfferService) CustomerApproval(ctx context.Context, actor pkgAuth.Actor, offerID int64, approved bool) (*models.Offer, error) {
	return &models.Offer{ID: offerID, Status: enums.OfferStatusCustomerApproved}, nil
}

func (s *stubOfferService) DeleteOffer(ctx context.Context, actor pkgAuth.Actor, offerID int64) error {
	return nil
}

func (s *stubOfferService) GetOffer(ctx context.Context, actor pkgAuth.Actor, offerID int64) (*models.Offer, error) {
	return &models.Offer{ID: offerID, Status: enums.OfferStatusPending}, nil
}

func (s *stubOfferService) ListOffers(ctx context.Context, actor pkgAuth.Actor, params offers.ListParams) (*offers.ListResult, error) {
	s.listCalls++
	return &offers.ListResult{Items: []offers.OfferView{}}, nil
}

type stubPolicyService struct{}

func (s *stubPolicyService) CreatePolicyFromPayment(ctx context.Context, actor pkgAuth.Actor, input policies.CreatePolicyInput) (*policies.IssuedPolicy, error) {
	return &policies.IssuedPolicy{
		Policy:  &models.Policy{ID: 1, OfferID: input.OfferID, Status: enums.PolicyStatusActive},
		Payment: &models.Payment{ID: 1, PolicyID: 1, Method: input.Method, Status: enums.PaymentStatusCompleted},
	}, nil
}

func (s *stubPolicyService) GetPolicy(ctx context.Context, actor pkgAuth.Actor, policyID int64) (*models.Policy, error) {
	return &models.Policy{ID: policyID, Status: enums.PolicyStatusActive}, nil
}

func (s *stubPolicyService) ListPolicies(ctx context.Context, actor pkgAuth.Actor, params policies.ListParams) (*policies.ListResult, error) {
	return &policies.ListResult{Items: []policies.PolicyView{}}, nil
}

type stubDocumentService struct{}

func (s *stubDocumentService) ProcessOfferInfo(ctx context.Context, tx *gormlib.DB, offer models.Offer, policyID int64, uploadedBy *int64) int {
	return 0
}

func (s *stubDocumentService) CreateReceipt(ctx context.Context, tx *gormlib.DB, policy models.Policy, payment models.Payment) (*models.Document, error) {
	return &models.Document{ID: 1}, nil
}

func (s *stubDocumentService) ListDocuments(ctx context.Context, actor pkgAuth.Actor, params documents.ListParams) ([]models.Document, error) {
	return nil, nil
}

type stubPolicyDocService struct{}

func (s *stubPolicyDocService) PolicyDocument(ctx context.Context, actor pkgAuth.Actor, policyID int64) (*policydoc.RenderedDocument, error) {
	return &policydoc.RenderedDocument{FileName: "POL-1.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

const testSecret = "router-test-secret"

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: testSecret, Issuer: "sigorta-auth"},
	}
}

func mintToken(t *testing.T, userID int64, role enums.ActorRole) string {
	t.Helper()
	claims := pkgAuth.AccessTokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sigorta-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(
		testConfig(),
		logger.New(logger.Options{ServiceName: "router-test"}),
		nil,
		nil,
		&stubOfferService{},
		&stubPolicyService{},
		&stubDocumentService{},
		&stubPolicyDocService{},
		nil,
	)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-Sigorta-Env"))
}

func TestOfferRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOfferListWithToken(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, 10, enums.ActorRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReviewRequiresStaffRole(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/offers/5/review", strings.NewReader(`{"status":"reviewed"}`))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, 10, enums.ActorRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApprovalRequiresCustomerRole(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/5/approval", strings.NewReader(`{"approved":true}`))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, 20, enums.ActorRoleAgent))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPolicyDocumentStreamsPDF(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies/7/document", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, 10, enums.ActorRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestExpiredTokenRejected(t *testing.T) {
	claims := pkgAuth.AccessTokenClaims{
		UserID: 10,
		Role:   enums.ActorRoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sigorta-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
