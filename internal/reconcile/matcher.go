package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/models"
)

// Matcher links bank movements to the invoices they pay. Both sides of a
// link (movement.invoice_id, invoice status/paid date) change inside one
// transaction, together or not at all.
type Matcher struct {
	DB  *gorm.DB
	Log *zap.Logger

	// RevertInvoiceOnUnlink controls whether unlinking a movement also
	// returns the invoice to pending and clears its paid date. Off by
	// default: historically unlinking never touched the invoice.
	RevertInvoiceOnUnlink bool
}

func NewMatcher(db *gorm.DB, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{DB: db, Log: log}
}

// Link marks the invoice paid by the movement. The movement must be
// unlinked, the invoice must not already be paid, and both records must
// belong to userID.
func (m *Matcher) Link(ctx context.Context, movementID, invoiceID, userID uuid.UUID) error {
	return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var movement models.BankMovement
		if err := tx.First(&movement, "id = ? AND user_id = ?", movementID, userID).Error; err != nil {
			return err
		}
		if movement.InvoiceID != nil {
			return ErrMovementLinked
		}

		var invoice models.Invoice
		if err := tx.First(&invoice, "id = ? AND user_id = ?", invoiceID, userID).Error; err != nil {
			return err
		}
		if invoice.Status == models.InvoiceStatusPaid {
			return ErrInvoiceAlreadyPaid
		}

		paidAt := movementTime(movement)
		if err := tx.Model(&models.BankMovement{}).
			Where("id = ?", movement.ID).
			Update("invoice_id", invoiceID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Invoice{}).
			Where("id = ?", invoice.ID).
			Updates(map[string]interface{}{
				"status":  models.InvoiceStatusPaid,
				"paid_at": paidAt,
			}).Error; err != nil {
			return err
		}

		m.Log.Info("movement linked to invoice",
			zap.String("movementId", movement.ID.String()),
			zap.String("invoiceId", invoice.ID.String()),
			zap.Time("paidAt", paidAt),
		)
		return nil
	})
}

// Unlink clears the movement's invoice reference. The invoice is only
// reverted when RevertInvoiceOnUnlink is set. The movement must belong
// to userID.
func (m *Matcher) Unlink(ctx context.Context, movementID, userID uuid.UUID) error {
	return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var movement models.BankMovement
		if err := tx.First(&movement, "id = ? AND user_id = ?", movementID, userID).Error; err != nil {
			return err
		}
		if movement.InvoiceID == nil {
			return ErrMovementNotLinked
		}
		invoiceID := *movement.InvoiceID

		if err := tx.Model(&models.BankMovement{}).
			Where("id = ?", movement.ID).
			Update("invoice_id", nil).Error; err != nil {
			return err
		}

		if m.RevertInvoiceOnUnlink {
			if err := tx.Model(&models.Invoice{}).
				Where("id = ? AND user_id = ?", invoiceID, userID).
				Updates(map[string]interface{}{
					"status":  models.InvoiceStatusPending,
					"paid_at": nil,
				}).Error; err != nil {
				return err
			}
		}

		m.Log.Info("movement unlinked",
			zap.String("movementId", movement.ID.String()),
			zap.String("invoiceId", invoiceID.String()),
			zap.Bool("invoiceReverted", m.RevertInvoiceOnUnlink),
		)
		return nil
	})
}

// movementTime turns the movement's stored date into the invoice paid date.
// Dates that never normalized fall back to the time of linking.
func movementTime(movement models.BankMovement) time.Time {
	if parsed, err := time.Parse("2006-01-02", movement.Date); err == nil {
		return parsed
	}
	return time.Now()
}
