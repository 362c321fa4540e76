package reconcile

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lucasgday/receivables-sub000/internal/db"
	"github.com/lucasgday/receivables-sub000/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return database
}

func newTestMovement(t *testing.T, database *gorm.DB, userID uuid.UUID, date string) *models.BankMovement {
	t.Helper()
	movement := &models.BankMovement{
		CompanyID:   uuid.New(),
		Date:        date,
		Description: "Wire transfer",
		Amount:      decimal.RequireFromString("1250.50"),
		Currency:    "USD",
		Reference:   NewReference(),
		UserID:      userID,
	}
	if err := database.Create(movement).Error; err != nil {
		t.Fatalf("create movement: %v", err)
	}
	return movement
}

func newTestInvoice(t *testing.T, database *gorm.DB, userID uuid.UUID, status string) *models.Invoice {
	t.Helper()
	invoice := &models.Invoice{
		Number:     "INV-" + uuid.NewString()[:8],
		CustomerID: uuid.New(),
		CompanyID:  uuid.New(),
		Amount:     decimal.RequireFromString("1250.50"),
		Currency:   "USD",
		Status:     status,
		IssuedAt:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		DueAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		UserID:     userID,
	}
	if err := database.Create(invoice).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return invoice
}
