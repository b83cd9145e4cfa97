package policydoc

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
)

func TestRenderProducesPDF(t *testing.T) {
	renderer := NewRenderer()

	data, err := renderer.Render(context.Background(), PolicySnapshot{
		PolicyNumber: "POL-20260514-SYH-0012",
		CustomerName: "Mehmet Kaya",
		CategoryName: "Seyahat",
		StartDate:    time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC),
		TotalPremium: decimal.NewFromFloat(349.90),
		Status:       "active",
		IssuedAt:     time.Date(2026, 5, 14, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestSnapshotFromPolicyHandlesMissingAssociations(t *testing.T) {
	snapshot := SnapshotFromPolicy(models.Policy{
		ID:           1,
		PolicyNumber: "POL-20260514-GEN-0001",
	})
	assert.Empty(t, snapshot.CustomerName)
	assert.Empty(t, snapshot.CategoryName)
	assert.Equal(t, "POL-20260514-GEN-0001", snapshot.PolicyNumber)
}
