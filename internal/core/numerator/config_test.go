package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	day := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "SRN-20260307-000001", Format(PrefixSRN, day, 1))
	assert.Equal(t, "INV-20260307-123456", Format(PrefixInvoice, day, 123456))
}

func TestDayUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	utcLate := time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "20260307", Day(utcLate, time.UTC).Format(DateLayout))
	assert.Equal(t, "20260308", Day(utcLate, kolkata).Format(DateLayout))
}

func TestParsePrefix(t *testing.T) {
	p, err := ParsePrefix("BATCH")
	require.NoError(t, err)
	assert.Equal(t, PrefixBatch, p)

	_, err = ParsePrefix("PO")
	assert.Error(t, err)
}
