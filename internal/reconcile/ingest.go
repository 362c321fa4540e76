package reconcile

import (
	"encoding/csv"
	"io"
	"strings"
)

// Statement is a parsed bank statement: the header row plus every data row
// whose field count matches the header's. Rows with a different field count
// are tolerated and only counted.
type Statement struct {
	Header                []string
	Rows                  [][]string
	SkippedColumnMismatch int

	dateIdx   int
	descIdx   int
	amountIdx int
}

// ParseStatement reads a comma-delimited bank statement. The first row is
// the header and must contain columns whose names contain "date",
// "description" and "amount" (any case, any order).
func ParseStatement(r io.Reader) (*Statement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, ErrMalformedInput
	}
	if len(records) < 2 {
		return nil, ErrMalformedInput
	}

	header := make([]string, len(records[0]))
	for i, token := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(token))
	}

	st := &Statement{
		Header:    header,
		dateIdx:   -1,
		descIdx:   -1,
		amountIdx: -1,
	}
	// Each token is checked against all three names: a header like
	// "date description" can bind more than one column.
	for i, token := range header {
		if st.dateIdx < 0 && strings.Contains(token, "date") {
			st.dateIdx = i
		}
		if st.descIdx < 0 && strings.Contains(token, "description") {
			st.descIdx = i
		}
		if st.amountIdx < 0 && strings.Contains(token, "amount") {
			st.amountIdx = i
		}
	}

	var missing []string
	if st.dateIdx < 0 {
		missing = append(missing, "date")
	}
	if st.descIdx < 0 {
		missing = append(missing, "description")
	}
	if st.amountIdx < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	for _, row := range records[1:] {
		if len(row) != len(header) {
			st.SkippedColumnMismatch++
			continue
		}
		st.Rows = append(st.Rows, row)
	}

	return st, nil
}

// Date, Description and Amount return the raw cell of a parsed row.

func (s *Statement) Date(row []string) string        { return strings.TrimSpace(row[s.dateIdx]) }
func (s *Statement) Description(row []string) string { return strings.TrimSpace(row[s.descIdx]) }
func (s *Statement) Amount(row []string) string      { return strings.TrimSpace(row[s.amountIdx]) }
