package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	"github.com/anadolubroker/sigorta-backend/pkg/types"
)

func TestDocumentFromInfoEntry(t *testing.T) {
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	policyID := int64(11)

	t.Run("legacy composite deed entry", func(t *testing.T) {
		value := types.ParseAdditionalInfoValue("tapu.pdf (/uploads/x/tapu.pdf)")
		doc, err := documentFromInfoEntry("deedDocument", value, 5, &policyID, nil, now)
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, enums.DocumentCategoryDeed, doc.Category)
		assert.Equal(t, "Deed Document", doc.Category.DisplayName())
		assert.Equal(t, "tapu.pdf", doc.FileName)
		assert.Equal(t, "/uploads/x/tapu.pdf", doc.FileURL)
		assert.Equal(t, enums.FileTypeDocument, doc.FileType)
		require.NotNil(t, doc.CustomerID)
		assert.Equal(t, int64(5), *doc.CustomerID)
		require.NotNil(t, doc.PolicyID)
		assert.Equal(t, policyID, *doc.PolicyID)
	})

	t.Run("structured health report image", func(t *testing.T) {
		value := types.AdditionalInfoValue{File: &types.FileReference{Label: "rapor.png", URL: "/uploads/y/rapor.png"}}
		doc, err := documentFromInfoEntry("healthReport", value, 5, &policyID, nil, now)
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, enums.DocumentCategoryHealthReport, doc.Category)
		assert.Equal(t, enums.FileTypeImage, doc.FileType)
	})

	t.Run("unknown key falls back to offer document", func(t *testing.T) {
		value := types.AdditionalInfoValue{File: &types.FileReference{Label: "ek.pdf", URL: "/uploads/z/ek.pdf"}}
		doc, err := documentFromInfoEntry("somethingElse", value, 5, &policyID, nil, now)
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, enums.DocumentCategoryOffer, doc.Category)
	})

	t.Run("plain text entry is skipped", func(t *testing.T) {
		value := types.AdditionalInfoValue{Text: "Kadıköy, İstanbul"}
		doc, err := documentFromInfoEntry("address", value, 5, &policyID, nil, now)
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("empty url is an error", func(t *testing.T) {
		value := types.AdditionalInfoValue{File: &types.FileReference{Label: "x", URL: "   "}}
		_, err := documentFromInfoEntry("deedDocument", value, 5, &policyID, nil, now)
		require.Error(t, err)
	})
}

func TestClassifyFileType(t *testing.T) {
	assert.Equal(t, enums.FileTypeImage, classifyFileType("/uploads/a/photo.JPG"))
	assert.Equal(t, enums.FileTypeImage, classifyFileType("/uploads/a/scan.webp"))
	assert.Equal(t, enums.FileTypeDocument, classifyFileType("/uploads/a/tapu.pdf"))
	assert.Equal(t, enums.FileTypeDocument, classifyFileType("/uploads/a/noext"))
}
