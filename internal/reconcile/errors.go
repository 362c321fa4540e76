package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput means the statement had no data rows at all.
	ErrMalformedInput = errors.New("statement needs a header row and at least one data row")

	// ErrNoValidRecords means every data row was rejected during normalization.
	ErrNoValidRecords = errors.New("no valid movements in statement")

	ErrMovementLinked     = errors.New("movement is already linked to an invoice")
	ErrMovementNotLinked  = errors.New("movement is not linked to an invoice")
	ErrInvoiceAlreadyPaid = errors.New("invoice is already paid")
)

// MissingColumnsError lists which of the required statement columns were not
// found in the header row.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "statement is missing required columns: " + strings.Join(e.Missing, ", ")
}

// PartialBatchError reports a bulk load that stopped partway. Batches
// inserted before the failure stay inserted.
type PartialBatchError struct {
	Inserted int
	Total    int
	Err      error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("batch load stopped after %d of %d movements: %v", e.Inserted, e.Total, e.Err)
}

func (e *PartialBatchError) Unwrap() error {
	return e.Err
}
