package reconcile

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Movement is a normalized statement row, ready for storage.
type Movement struct {
	Date        string
	Description string
	Amount      decimal.Decimal
	Reference   string
	CompanyID   uuid.UUID
	Currency    string
	UserID      uuid.UUID
}

type NormalizeOptions struct {
	CompanyID uuid.UUID
	Currency  string
	UserID    uuid.UUID
	Logger    *zap.Logger
}

// NormalizeResult carries the surviving movements plus per-reason counts of
// what was dropped or passed through unchanged.
type NormalizeResult struct {
	Movements        []Movement
	UnparsedDates    int
	SkippedBadAmount int
}

// dateLayouts are tried in order against the statement's date cell. Banks
// around here export day-first; ISO and US layouts cover the rest.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Normalize validates and cleans every parsed row. Rows with unparseable
// amounts are dropped; unparseable dates pass through as-is. An empty result
// is an error, not a silent no-op.
func Normalize(st *Statement, opts NormalizeOptions) (*NormalizeResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	result := &NormalizeResult{}
	for _, row := range st.Rows {
		amount, err := parseAmount(st.Amount(row))
		if err != nil {
			result.SkippedBadAmount++
			continue
		}

		date := st.Date(row)
		if canonical, ok := parseDate(date); ok {
			date = canonical
		} else {
			result.UnparsedDates++
			logger.Debug("keeping unparseable movement date", zap.String("date", date))
		}

		result.Movements = append(result.Movements, Movement{
			Date:        date,
			Description: st.Description(row),
			Amount:      amount,
			Reference:   NewReference(),
			CompanyID:   opts.CompanyID,
			Currency:    opts.Currency,
			UserID:      opts.UserID,
		})
	}

	if len(result.Movements) == 0 {
		return nil, ErrNoValidRecords
	}
	return result, nil
}

const referenceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewReference builds a movement reference from the current time plus six
// random base36 characters. Uniqueness is best-effort, not guaranteed.
func NewReference() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is not worth aborting an import over.
		for i := range buf {
			buf[i] = byte(time.Now().UnixNano() >> (i * 8))
		}
	}
	suffix := make([]byte, 6)
	for i, b := range buf {
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return fmt.Sprintf("TRANS-%d-%s", time.Now().UnixMilli(), suffix)
}

func parseDate(value string) (string, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

// parseAmount strips everything except digits, the decimal point and the
// sign before parsing, so "1,250.50" and "$ 99.00" both come through.
func parseAmount(value string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return decimal.NewFromString(b.String())
}
