package policies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyNumber(t *testing.T) {
	issuedAt := time.Date(2026, 5, 14, 18, 30, 0, 0, time.UTC)

	cases := []struct {
		category string
		offerID  int64
		want     string
	}{
		{category: "Trafik", offerID: 42, want: "POL-20260514-ARC-0042"},
		{category: "Seyahat", offerID: 7, want: "POL-20260514-SYH-0007"},
		{category: "Konut", offerID: 12345, want: "POL-20260514-KNT-12345"},
		{category: "Sağlık", offerID: 3, want: "POL-20260514-SGL-0003"},
		{category: "Hayat", offerID: 99, want: "POL-20260514-HYT-0099"},
		{category: "Bilinmeyen", offerID: 1, want: "POL-20260514-GEN-0001"},
	}

	for _, tc := range cases {
		t.Run(tc.category, func(t *testing.T) {
			assert.Equal(t, tc.want, PolicyNumber(issuedAt, tc.category, tc.offerID))
		})
	}
}

func TestPolicyNumberIsPure(t *testing.T) {
	issuedAt := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)
	first := PolicyNumber(issuedAt, "Trafik", 42)
	second := PolicyNumber(issuedAt, "Trafik", 42)
	assert.Equal(t, first, second)
}

func TestCoverageEnd(t *testing.T) {
	start := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, start.AddDate(0, 0, 30), CoverageEnd(start, "Seyahat"))
	assert.Equal(t, start.AddDate(10, 0, 0), CoverageEnd(start, "Hayat"))
	assert.Equal(t, start.AddDate(1, 0, 0), CoverageEnd(start, "Trafik"))
	assert.Equal(t, start.AddDate(1, 0, 0), CoverageEnd(start, "Bilinmeyen"))
}
