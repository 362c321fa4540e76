package reconcile

import (
	"time"

	"github.com/lucasgday/receivables-sub000/internal/models"
)

// DisplayStatus derives the status shown for an invoice. Any invoice whose
// due date has passed reads as overdue, even one persisted as paid; that
// mirrors how the books have always been presented. The result is never
// written back.
func DisplayStatus(status string, dueAt, now time.Time) string {
	if dueAt.Before(now) {
		return models.InvoiceStatusOverdue
	}
	return status
}
