// Package numerator names the document series and the contract for issuing
// their numbers. Implementations live with the storage backends.
package numerator

import (
	"fmt"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

// Prefix identifies a numbered document series.
type Prefix string

const (
	PrefixSRN      Prefix = "SRN"
	PrefixDispatch Prefix = "DO"
	PrefixGRN      Prefix = "GRN"
	PrefixInvoice  Prefix = "INV"
	PrefixSale     Prefix = "SALE"
	PrefixBatch    Prefix = "BATCH"
	PrefixReturn   Prefix = "RET"
)

// DateLayout is the day component of a document number.
const DateLayout = "20060102"

// PadWidth is the zero-padded width of the daily counter.
const PadWidth = 6

// Prefixes lists every known series.
func Prefixes() []Prefix {
	return []Prefix{PrefixSRN, PrefixDispatch, PrefixGRN, PrefixInvoice, PrefixSale, PrefixBatch, PrefixReturn}
}

// ParsePrefix validates a prefix string.
func ParsePrefix(s string) (Prefix, error) {
	for _, p := range Prefixes() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", apperror.NewInvalidArgument("unknown document prefix").WithDetail("prefix", s)
}

// Day truncates t to the calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Format renders PREFIX-YYYYMMDD-NNNNNN.
func Format(prefix Prefix, day time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%0*d", prefix, day.Format(DateLayout), PadWidth, n)
}
