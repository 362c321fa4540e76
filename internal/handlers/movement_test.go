package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lucasgday/receivables-sub000/internal/config"
	"github.com/lucasgday/receivables-sub000/internal/db"
	"github.com/lucasgday/receivables-sub000/internal/middleware"
	"github.com/lucasgday/receivables-sub000/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return database
}

func authedRouter(userID uuid.UUID, register func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID.String())
		c.Set(middleware.ContextRole, "admin")
	})
	register(api)
	return router
}

func TestMovementImportEndpoint(t *testing.T) {
	database := newTestDB(t)
	userID := uuid.New()

	company := models.Company{Name: "Acme Consulting", Currency: "EUR", UserID: userID}
	if err := database.Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}

	handler := NewMovementHandler(database, config.Config{ImportBatchSize: 100}, nil)
	router := authedRouter(userID, func(api *gin.RouterGroup) {
		api.POST("/movements/import", handler.Import)
	})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("companyId", company.ID.String())
	part, _ := writer.CreateFormFile("file", "statement.csv")
	_, _ = part.Write([]byte("Date,Description,Amount\n13/05/2024,Wire transfer,\"1,250.50\"\n14/05/2024,Bad row,n/a\n"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/movements/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var summary struct {
		Imported         int `json:"imported"`
		SkippedBadAmount int `json:"skippedBadAmount"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Imported != 1 || summary.SkippedBadAmount != 1 {
		t.Errorf("summary = %+v, want 1 imported and 1 skipped", summary)
	}

	var movement models.BankMovement
	if err := database.First(&movement, "company_id = ?", company.ID).Error; err != nil {
		t.Fatalf("load imported movement: %v", err)
	}
	if movement.Date != "2024-05-13" {
		t.Errorf("date = %q, want 2024-05-13", movement.Date)
	}
	if movement.Currency != "EUR" {
		t.Errorf("currency = %q, want company default EUR", movement.Currency)
	}
}

func TestMovementLinkEndpoint(t *testing.T) {
	database := newTestDB(t)
	userID := uuid.New()

	movement := models.BankMovement{
		CompanyID:   uuid.New(),
		Date:        "2024-05-13",
		Description: "Wire transfer",
		Amount:      decimal.RequireFromString("1250.50"),
		Currency:    "USD",
		Reference:   "TRANS-test-link",
		UserID:      userID,
	}
	if err := database.Create(&movement).Error; err != nil {
		t.Fatalf("create movement: %v", err)
	}

	invoice := models.Invoice{
		Number:     "INV-001",
		CustomerID: uuid.New(),
		CompanyID:  movement.CompanyID,
		Amount:     decimal.RequireFromString("1250.50"),
		Currency:   "USD",
		Status:     models.InvoiceStatusPending,
		IssuedAt:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		DueAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		UserID:     userID,
	}
	if err := database.Create(&invoice).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	handler := NewMovementHandler(database, config.Config{}, nil)
	router := authedRouter(userID, func(api *gin.RouterGroup) {
		api.POST("/movements/:id/link", handler.Link)
	})

	payload, _ := json.Marshal(gin.H{"invoiceId": invoice.ID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/movements/"+movement.ID.String()+"/link", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var gotInvoice models.Invoice
	if err := database.First(&gotInvoice, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if gotInvoice.Status != models.InvoiceStatusPaid {
		t.Errorf("invoice status = %q, want paid", gotInvoice.Status)
	}

	// Linking the same movement again conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/movements/"+movement.ID.String()+"/link", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Errorf("second link status = %d, want 409", resp.Code)
	}
}

func TestMovementLinkOtherUsersInvoice(t *testing.T) {
	database := newTestDB(t)
	userID := uuid.New()
	otherUserID := uuid.New()

	movement := models.BankMovement{
		CompanyID:   uuid.New(),
		Date:        "2024-05-13",
		Description: "Wire transfer",
		Amount:      decimal.RequireFromString("1250.50"),
		Currency:    "USD",
		Reference:   "TRANS-test-cross-user",
		UserID:      userID,
	}
	if err := database.Create(&movement).Error; err != nil {
		t.Fatalf("create movement: %v", err)
	}

	otherInvoice := models.Invoice{
		Number:     "INV-900",
		CustomerID: uuid.New(),
		CompanyID:  uuid.New(),
		Amount:     decimal.RequireFromString("1250.50"),
		Currency:   "USD",
		Status:     models.InvoiceStatusPending,
		IssuedAt:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		DueAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		UserID:     otherUserID,
	}
	if err := database.Create(&otherInvoice).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	handler := NewMovementHandler(database, config.Config{}, nil)
	router := authedRouter(userID, func(api *gin.RouterGroup) {
		api.POST("/movements/:id/link", handler.Link)
	})

	payload, _ := json.Marshal(gin.H{"invoiceId": otherInvoice.ID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/movements/"+movement.ID.String()+"/link", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for another user's invoice", resp.Code)
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
		t.Error("movement was linked to another user's invoice")
	}
}

func TestMovementUpdateLinkedRejected(t *testing.T) {
	database := newTestDB(t)
	userID := uuid.New()

	movement := models.BankMovement{
		CompanyID:   uuid.New(),
		Date:        "2024-05-13",
		Description: "Wire transfer",
		Amount:      decimal.RequireFromString("1250.50"),
		Currency:    "USD",
		Reference:   "TRANS-test-update-linked",
		UserID:      userID,
	}
	if err := database.Create(&movement).Error; err != nil {
		t.Fatalf("create movement: %v", err)
	}

	invoice := models.Invoice{
		Number:     "INV-901",
		CustomerID: uuid.New(),
		CompanyID:  movement.CompanyID,
		Amount:     decimal.RequireFromString("1250.50"),
		Currency:   "USD",
		Status:     models.InvoiceStatusPending,
		IssuedAt:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		DueAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		UserID:     userID,
	}
	if err := database.Create(&invoice).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	handler := NewMovementHandler(database, config.Config{}, nil)
	router := authedRouter(userID, func(api *gin.RouterGroup) {
		api.POST("/movements/:id/link", handler.Link)
		api.PUT("/movements/:id", handler.Update)
	})

	linkPayload, _ := json.Marshal(gin.H{"invoiceId": invoice.ID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/movements/"+movement.ID.String()+"/link", bytes.NewReader(linkPayload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("link status = %d, body = %s", resp.Code, resp.Body.String())
	}

	// The movement's date became the invoice's paid date; edits would
	// leave them out of step.
	updatePayload, _ := json.Marshal(gin.H{
		"date":        "2024-06-01",
		"description": "Edited",
		"amount":      "999.00",
	})
	req = httptest.NewRequest(http.MethodPut, "/api/movements/"+movement.ID.String(), bytes.NewReader(updatePayload))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("update status = %d, want 409 for a linked movement", resp.Code)
	}

	var gotMovement models.BankMovement
	if err := database.First(&gotMovement, "id = ?", movement.ID).Error; err != nil {
		t.Fatalf("reload movement: %v", err)
	}
	if gotMovement.Date != "2024-05-13" {
		t.Errorf("date = %q, want unchanged 2024-05-13", gotMovement.Date)
	}
}
