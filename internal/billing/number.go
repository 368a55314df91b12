package billing

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
)

const (
	accessCodeLen     = 12
	accessCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// FormatInvoiceNumber renders a sequence value as a business-facing invoice
// number, e.g. 123 -> INV000123.
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("INV%06d", seq)
}

// FormatQuotationNumber renders a sequence value as a quotation number,
// e.g. 7 -> QT-0007.
func FormatQuotationNumber(seq int64) string {
	return fmt.Sprintf("QT-%04d", seq)
}

// NewAccessCode returns a random 12-character uppercase alphanumeric token for
// public QR lookup. Callers re-roll on a persistence-level collision.
func NewAccessCode() (string, error) {
	buf := make([]byte, accessCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}
	for i, b := range buf {
		buf[i] = accessCodeCharset[int(b)%len(accessCodeCharset)]
	}
	return string(buf), nil
}

// BaseNumber strips the revision suffix: QT-0007-v2 -> QT-0007. Numbers
// without a suffix are returned unchanged.
func BaseNumber(number string) string {
	if i := strings.Index(number, "-v"); i >= 0 {
		return number[:i]
	}
	return number
}

// VersionOf parses the revision suffix of a quotation number. The unsuffixed
// original and any malformed legacy number are version 0.
func VersionOf(number string) int {
	i := strings.LastIndex(number, "-v")
	if i < 0 {
		return 0
	}
	v, err := strconv.Atoi(number[i+2:])
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// VersionLabel renders the revision label shown in listings.
func VersionLabel(number string) string {
	if v := VersionOf(number); v > 0 {
		return fmt.Sprintf("v%d", v)
	}
	return "original"
}

// NextVersionNumber derives the number for a new revision from all numbers
// sharing one base: 1 + the highest existing suffix (0 when only the
// original exists).
func NextVersionNumber(base string, existing []string) string {
	max := 0
	for _, n := range existing {
		if BaseNumber(n) != base {
			continue
		}
		if v := VersionOf(n); v > max {
			max = v
		}
	}
	return fmt.Sprintf("%s-v%d", base, max+1)
}
