package offers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidityDays(t *testing.T) {
	cases := []struct {
		name     string
		category string
		want     int
	}{
		{name: "travel turkish", category: "Seyahat", want: 30},
		{name: "travel english", category: "travel", want: 30},
		{name: "travel uppercase", category: "SEYAHAT", want: 30},
		{name: "traffic", category: "Trafik", want: 365},
		{name: "home", category: "Konut", want: 365},
		{name: "workplace with dotted capital", category: "İş Yeri", want: 365},
		{name: "health with diacritics", category: "Sağlık", want: 365},
		{name: "life", category: "Hayat", want: 365},
		{name: "unrecognized falls back", category: "Uzay Turizmi", want: 30},
		{name: "empty falls back", category: "", want: 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidityDays(tc.category))
		})
	}
}

func TestValidUntil(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, 30), ValidUntil(now, "Seyahat"))
	assert.Equal(t, now.AddDate(0, 0, 365), ValidUntil(now, "Hayat"))
}
