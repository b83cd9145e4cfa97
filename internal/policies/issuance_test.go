package policies

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anadolubroker/sigorta-backend/internal/directory"
	"github.com/anadolubroker/sigorta-backend/internal/documents"
	"github.com/anadolubroker/sigorta-backend/internal/offers"
	"github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	"github.com/anadolubroker/sigorta-backend/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

// setupIssuanceTestDB builds the schema issuance touches, deliberately
// without a documents table so every document insert fails.
func setupIssuanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	offersDDL := `
CREATE TABLE IF NOT EXISTS offers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL,
  agent_id INTEGER,
  insurance_type_id INTEGER NOT NULL,
  base_price TEXT NOT NULL DEFAULT '0',
  discount_rate TEXT NOT NULL DEFAULT '0',
  final_price TEXT NOT NULL DEFAULT '0',
  coverage_amount TEXT NOT NULL DEFAULT '0',
  status TEXT NOT NULL DEFAULT 'pending',
  valid_until DATETIME NOT NULL,
  requested_start_date DATETIME,
  customer_additional_info TEXT,
  is_customer_approved INTEGER NOT NULL DEFAULT 0,
  customer_approved_at DATETIME,
  reviewed_at DATETIME,
  reviewed_by INTEGER,
  lock_version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	policiesDDL := `
CREATE TABLE IF NOT EXISTS policies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  offer_id INTEGER NOT NULL UNIQUE,
  policy_number TEXT NOT NULL UNIQUE,
  customer_id INTEGER NOT NULL,
  agent_id INTEGER,
  insurance_type_id INTEGER NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  total_premium TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	paymentsDDL := `
CREATE TABLE IF NOT EXISTS payments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  policy_id INTEGER NOT NULL UNIQUE,
  amount TEXT NOT NULL,
  method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'completed',
  transaction_id TEXT NOT NULL,
  paid_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	customersDDL := `
CREATE TABLE IF NOT EXISTS customers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	insuranceTypesDDL := `
CREATE TABLE IF NOT EXISTS insurance_types (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`

	for _, ddl := range []string{offersDDL, policiesDDL, paymentsDDL, customersDDL, insuranceTypesDDL} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

// A broken document store must not abort issuance: the policy, payment,
// and offer status change still commit while the document writes are
// rolled back to their savepoints and logged.
func TestCreatePolicyFromPaymentSurvivesDocumentWriteFailure(t *testing.T) {
	conn := setupIssuanceTestDB(t)
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "test"})

	dirRepo := directory.NewRepository(conn)
	docsSvc, err := documents.NewService(documents.NewRepository(conn), dirRepo, logg)
	require.NoError(t, err)

	svc, err := NewService(NewRepository(conn), offers.NewRepository(conn), dirRepo, docsSvc, &gormTxRunner{db: conn}, logg)
	require.NoError(t, err)

	require.NoError(t, conn.Create(&models.Customer{UserID: 10, FullName: "Ayşe Demir", Email: "ayse@example.com"}).Error)
	require.NoError(t, conn.Create(&models.InsuranceType{Name: "Trafik", Active: true}).Error)

	offer := &models.Offer{
		CustomerID:      1,
		InsuranceTypeID: 1,
		BasePrice:       decimal.NewFromInt(100),
		FinalPrice:      decimal.NewFromInt(90),
		Status:          enums.OfferStatusCustomerApproved,
		ValidUntil:      time.Now().UTC().Add(48 * time.Hour),
		AdditionalInfo: types.AdditionalInfo{
			"deedDocument": {File: &types.FileReference{Label: "Tapu", URL: "https://cdn.example.com/tapu.pdf"}},
		},
	}
	require.NoError(t, conn.Create(offer).Error)

	issued, err := svc.CreatePolicyFromPayment(ctx, auth.Actor{UserID: 99, Role: enums.ActorRoleAdmin}, CreatePolicyInput{
		OfferID:       offer.ID,
		Amount:        decimal.NewFromInt(90),
		Method:        enums.PaymentMethodCreditCard,
		TransactionID: "txn-doc-failure",
	})
	require.NoError(t, err)
	require.NotNil(t, issued)

	var policyCount int64
	require.NoError(t, conn.Model(&models.Policy{}).Where("offer_id = ?", offer.ID).Count(&policyCount).Error)
	assert.Equal(t, int64(1), policyCount)

	var paymentCount int64
	require.NoError(t, conn.Model(&models.Payment{}).Where("policy_id = ?", issued.Policy.ID).Count(&paymentCount).Error)
	assert.Equal(t, int64(1), paymentCount)

	var stored models.Offer
	require.NoError(t, conn.First(&stored, offer.ID).Error)
	assert.Equal(t, enums.OfferStatusPaid, stored.Status)
}
