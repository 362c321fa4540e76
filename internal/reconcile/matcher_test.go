package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/models"
)

func TestMatcherLink(t *testing.T) {
	ctx := context.Background()

	t.Run("link sets movement reference and pays invoice", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")
		invoice := newTestInvoice(t, database, userID, models.InvoiceStatusPending)

		if err := matcher.Link(ctx, movement.ID, invoice.ID, userID); err != nil {
			t.Fatalf("Link failed: %v", err)
		}

		var gotMovement models.BankMovement
		if err := database.First(&gotMovement, "id = ?", movement.ID).Error; err != nil {
			t.Fatalf("reload movement: %v", err)
		}
		if gotMovement.InvoiceID == nil || *gotMovement.InvoiceID != invoice.ID {
			t.Error("movement.invoiceId not set to the linked invoice")
		}

		var gotInvoice models.Invoice
		if err := database.First(&gotInvoice, "id = ?", invoice.ID).Error; err != nil {
			t.Fatalf("reload invoice: %v", err)
		}
		if gotInvoice.Status != models.InvoiceStatusPaid {
			t.Errorf("invoice status = %q, want paid", gotInvoice.Status)
		}
		if gotInvoice.PaidAt == nil {
			t.Fatal("invoice paidAt not set")
		}
		want := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)
		if !gotInvoice.PaidAt.Equal(want) {
			t.Errorf("paidAt = %v, want movement date %v", gotInvoice.PaidAt, want)
		}
	})

	t.Run("already linked movement is rejected", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")
		first := newTestInvoice(t, database, userID, models.InvoiceStatusPending)
		second := newTestInvoice(t, database, userID, models.InvoiceStatusPending)

		if err := matcher.Link(ctx, movement.ID, first.ID, userID); err != nil {
			t.Fatalf("first Link failed: %v", err)
		}
		if err := matcher.Link(ctx, movement.ID, second.ID, userID); !errors.Is(err, ErrMovementLinked) {
			t.Errorf("got %v, want ErrMovementLinked", err)
		}
	})

	t.Run("paid invoice is rejected", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")
		invoice := newTestInvoice(t, database, userID, models.InvoiceStatusPaid)

		if err := matcher.Link(ctx, movement.ID, invoice.ID, userID); !errors.Is(err, ErrInvoiceAlreadyPaid) {
			t.Errorf("got %v, want ErrInvoiceAlreadyPaid", err)
		}
	})

	t.Run("another user's invoice is not found", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")
		otherInvoice := newTestInvoice(t, database, uuid.New(), models.InvoiceStatusPending)

		err := matcher.Link(ctx, movement.ID, otherInvoice.ID, userID)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("got %v, want ErrRecordNotFound", err)
		}

		var gotInvoice models.Invoice
		if err := database.First(&gotInvoice, "id = ?", otherInvoice.ID).Error; err != nil {
			t.Fatalf("reload invoice: %v", err)
		}
		if gotInvoice.Status != models.InvoiceStatusPending || gotInvoice.PaidAt != nil {
			t.Errorf("invoice = %q/%v, want untouched pending", gotInvoice.Status, gotInvoice.PaidAt)
		}

		var gotMovement models.BankMovement
		if err := database.First(&gotMovement, "id = ?", movement.ID).Error; err != nil {
			t.Fatalf("reload movement: %v", err)
		}
		if gotMovement.InvoiceID != nil {
			t.Error("movement was linked across users")
		}
	})

	t.Run("another user's movement is not found", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		otherMovement := newTestMovement(t, database, uuid.New(), "2024-05-13")
		invoice := newTestInvoice(t, database, userID, models.InvoiceStatusPending)

		if err := matcher.Link(ctx, otherMovement.ID, invoice.ID, userID); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("got %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("link against missing invoice leaves movement unlinked", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")

		err := matcher.Link(ctx, movement.ID, uuid.New(), userID)
		if err == nil {
			t.Fatal("Link against missing invoice succeeded")
		}

		var gotMovement models.BankMovement
		if err := database.First(&gotMovement, "id = ?", movement.ID).Error; err != nil {
			t.Fatalf("reload movement: %v", err)
		}
		if gotMovement.InvoiceID != nil {
			t.Error("movement was linked even though the transaction failed")
		}
	})
}

func TestMatcherUnlink(t *testing.T) {
	ctx := context.Background()

	t.Run("unlink clears movement but leaves invoice paid", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")
		invoice := newTestInvoice(t, database, userID, models.InvoiceStatusPending)

		if err := matcher.Link(ctx, movement.ID, invoice.ID, userID); err != nil {
			t.Fatalf("Link failed: %v", err)
		}
		if err := matcher.Unlink(ctx, movement.ID, userID); err != nil {
			t.Fatalf("Unlink failed: %v", err)
		}

		var gotMovement models.BankMovement
		if err := database.First(&gotMovement, "id = ?", movement.ID).Error; err != nil {
			t.Fatalf("reload movement: %v", err)
		}
		if gotMovement.InvoiceID != nil {
			t.Error("movement.invoiceId not cleared")
		}

		var gotInvoice models.Invoice
		if err := database.First(&gotInvoice, "id = ?", invoice.ID).Error; err != nil {
			t.Fatalf("reload invoice: %v", err)
		}
		if gotInvoice.Status != models.InvoiceStatusPaid {
			t.Errorf("invoice status = %q, want paid (unlink does not revert by default)", gotInvoice.Status)
		}
		if gotInvoice.PaidAt == nil {
			t.Error("invoice paidAt cleared, want untouched")
		}
	})

	t.Run("unlink reverts invoice when configured", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		matcher.RevertInvoiceOnUnlink = true
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")
		invoice := newTestInvoice(t, database, userID, models.InvoiceStatusPending)

		if err := matcher.Link(ctx, movement.ID, invoice.ID, userID); err != nil {
			t.Fatalf("Link failed: %v", err)
		}
		if err := matcher.Unlink(ctx, movement.ID, userID); err != nil {
			t.Fatalf("Unlink failed: %v", err)
		}

		var gotInvoice models.Invoice
		if err := database.First(&gotInvoice, "id = ?", invoice.ID).Error; err != nil {
			t.Fatalf("reload invoice: %v", err)
		}
		if gotInvoice.Status != models.InvoiceStatusPending {
			t.Errorf("invoice status = %q, want pending", gotInvoice.Status)
		}
		if gotInvoice.PaidAt != nil {
			t.Error("invoice paidAt not cleared on configured revert")
		}
	})

	t.Run("unlinking an unlinked movement is rejected", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")

		if err := matcher.Unlink(ctx, movement.ID, userID); !errors.Is(err, ErrMovementNotLinked) {
			t.Errorf("got %v, want ErrMovementNotLinked", err)
		}
	})

	t.Run("another user's movement is not found", func(t *testing.T) {
		database := newTestDB(t)
		matcher := NewMatcher(database, nil)
		userID := uuid.New()
		movement := newTestMovement(t, database, userID, "2024-05-13")
		invoice := newTestInvoice(t, database, userID, models.InvoiceStatusPending)

		if err := matcher.Link(ctx, movement.ID, invoice.ID, userID); err != nil {
			t.Fatalf("Link failed: %v", err)
		}
		if err := matcher.Unlink(ctx, movement.ID, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("got %v, want ErrRecordNotFound", err)
		}

		var gotMovement models.BankMovement
		if err := database.First(&gotMovement, "id = ?", movement.ID).Error; err != nil {
			t.Fatalf("reload movement: %v", err)
		}
		if gotMovement.InvoiceID == nil {
			t.Error("link was cleared by a different user")
		}
	})
}
