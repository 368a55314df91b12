package billing

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV000123", FormatInvoiceNumber(123))
	assert.Equal(t, "INV000001", FormatInvoiceNumber(1))
	assert.Equal(t, "INV1000000", FormatInvoiceNumber(1000000))
}

func TestFormatQuotationNumber(t *testing.T) {
	assert.Equal(t, "QT-0007", FormatQuotationNumber(7))
	assert.Equal(t, "QT-0001", FormatQuotationNumber(1))
	assert.Equal(t, "QT-12345", FormatQuotationNumber(12345))
}

func TestNewAccessCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{12}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := NewAccessCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes should not repeat")
}

func TestBaseNumber(t *testing.T) {
	assert.Equal(t, "QT-0007", BaseNumber("QT-0007"))
	assert.Equal(t, "QT-0007", BaseNumber("QT-0007-v2"))
	assert.Equal(t, "QT-0007", BaseNumber("QT-0007-v12"))
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, 0, VersionOf("QT-0007"))
	assert.Equal(t, 2, VersionOf("QT-0007-v2"))
	assert.Equal(t, 12, VersionOf("QT-0007-v12"))
	assert.Equal(t, 0, VersionOf("QT-0007-vX"), "malformed suffix falls back to original")
	assert.Equal(t, 0, VersionOf("QT-0007-v"))
}

func TestVersionLabel(t *testing.T) {
	assert.Equal(t, "original", VersionLabel("QT-0007"))
	assert.Equal(t, "v2", VersionLabel("QT-0007-v2"))
	assert.Equal(t, "original", VersionLabel("QT-0007-vX"))
}

func TestNextVersionNumber(t *testing.T) {
	cases := []struct {
		name     string
		base     string
		existing []string
		want     string
	}{
		{"only original", "QT-0007", []string{"QT-0007"}, "QT-0007-v1"},
		{"two revisions", "QT-0010", []string{"QT-0010", "QT-0010-v1", "QT-0010-v2"}, "QT-0010-v3"},
		{"gap in revisions", "QT-0003", []string{"QT-0003", "QT-0003-v4"}, "QT-0003-v5"},
		{"other bases ignored", "QT-0010", []string{"QT-0010", "QT-0011-v7"}, "QT-0010-v1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextVersionNumber(tc.base, tc.existing))
		})
	}
}
