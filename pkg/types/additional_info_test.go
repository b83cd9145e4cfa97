package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdditionalInfoValueComposite(t *testing.T) {
	v := ParseAdditionalInfoValue("tapu.pdf (/uploads/x/tapu.pdf)")
	require.True(t, v.IsFile())
	assert.Equal(t, "tapu.pdf", v.File.Label)
	assert.Equal(t, "/uploads/x/tapu.pdf", v.File.URL)
}

func TestParseAdditionalInfoValueBareURL(t *testing.T) {
	v := ParseAdditionalInfoValue("/uploads/7/rapor.jpg")
	require.True(t, v.IsFile())
	assert.Equal(t, "rapor.jpg", v.File.Label)
	assert.Equal(t, "/uploads/7/rapor.jpg", v.File.URL)
}

func TestParseAdditionalInfoValuePlainText(t *testing.T) {
	v := ParseAdditionalInfoValue("Atatürk Cad. No:12 Ankara")
	assert.False(t, v.IsFile())
	assert.Equal(t, "Atatürk Cad. No:12 Ankara", v.Text)
}

func TestUnmarshalLegacyCompositeString(t *testing.T) {
	var info AdditionalInfo
	payload := `{"deedDocument":"tapu.pdf (/uploads/x/tapu.pdf)","address":"Ankara"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &info))

	require.True(t, info["deedDocument"].IsFile())
	assert.Equal(t, "/uploads/x/tapu.pdf", info["deedDocument"].File.URL)
	assert.Equal(t, "Ankara", info["address"].Text)
}

func TestUnmarshalStructuredFileReference(t *testing.T) {
	var v AdditionalInfoValue
	require.NoError(t, json.Unmarshal([]byte(`{"label":"tapu.pdf","url":"/uploads/x/tapu.pdf"}`), &v))
	require.True(t, v.IsFile())
	assert.Equal(t, "tapu.pdf", v.File.Label)
}

func TestMarshalRoundTrip(t *testing.T) {
	info := AdditionalInfo{
		"healthReport": ParseAdditionalInfoValue("rapor.pdf (/uploads/2/rapor.pdf)"),
		"note":         {Text: "ek bilgi yok"},
	}
	data, err := json.Marshal(info)
	require.NoError(t, err)

	var decoded AdditionalInfo
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, info, decoded)
}
