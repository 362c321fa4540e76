package reconcile

import (
	"testing"
	"time"

	"github.com/lucasgday/receivables-sub000/internal/models"
)

func TestDisplayStatus(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		dueAt  time.Time
		want   string
	}{
		{
			name:   "pending before due date stays pending",
			status: models.InvoiceStatusPending,
			dueAt:  now.AddDate(0, 1, 0),
			want:   models.InvoiceStatusPending,
		},
		{
			name:   "pending past due date reads overdue",
			status: models.InvoiceStatusPending,
			dueAt:  now.AddDate(0, -1, 0),
			want:   models.InvoiceStatusOverdue,
		},
		{
			name:   "paid invoice with past due date still reads overdue",
			status: models.InvoiceStatusPaid,
			dueAt:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			want:   models.InvoiceStatusOverdue,
		},
		{
			name:   "paid before due date stays paid",
			status: models.InvoiceStatusPaid,
			dueAt:  now.AddDate(0, 0, 15),
			want:   models.InvoiceStatusPaid,
		},
		{
			name:   "due exactly now is not overdue",
			status: models.InvoiceStatusPending,
			dueAt:  now,
			want:   models.InvoiceStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayStatus(tt.status, tt.dueAt, now)
			if got != tt.want {
				t.Errorf("DisplayStatus(%q, %v) = %q, want %q", tt.status, tt.dueAt, got, tt.want)
			}

			// Same inputs must always give the same answer.
			if again := DisplayStatus(tt.status, tt.dueAt, now); again != got {
				t.Errorf("DisplayStatus not deterministic: %q then %q", got, again)
			}
		})
	}
}
