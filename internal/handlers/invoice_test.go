package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasgday/receivables-sub000/internal/config"
	"github.com/lucasgday/receivables-sub000/internal/models"
)

func TestInvoiceListDerivedStatus(t *testing.T) {
	database := newTestDB(t)
	userID := uuid.New()

	pastDue := models.Invoice{
		Number:     "INV-100",
		CustomerID: uuid.New(),
		CompanyID:  uuid.New(),
		Amount:     decimal.RequireFromString("100.00"),
		Currency:   "USD",
		Status:     models.InvoiceStatusPending,
		IssuedAt:   time.Now().AddDate(0, -2, 0),
		DueAt:      time.Now().AddDate(0, -1, 0),
		UserID:     userID,
	}
	current := models.Invoice{
		Number:     "INV-101",
		CustomerID: pastDue.CustomerID,
		CompanyID:  pastDue.CompanyID,
		Amount:     decimal.RequireFromString("200.00"),
		Currency:   "USD",
		Status:     models.InvoiceStatusPending,
		IssuedAt:   time.Now(),
		DueAt:      time.Now().AddDate(0, 1, 0),
		UserID:     userID,
	}
	for _, invoice := range []*models.Invoice{&pastDue, &current} {
		if err := database.Create(invoice).Error; err != nil {
			t.Fatalf("create invoice: %v", err)
		}
	}

	handler := NewInvoiceHandler(database, config.Config{}, nil)
	router := authedRouter(userID, func(api *gin.RouterGroup) {
		api.GET("/invoices", handler.List)
	})

	t.Run("list carries display status without mutating stored status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
		}

		var invoices []struct {
			Number        string `json:"number"`
			Status        string `json:"status"`
			DisplayStatus string `json:"displayStatus"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &invoices); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(invoices) != 2 {
			t.Fatalf("got %d invoices, want 2", len(invoices))
		}

		byNumber := map[string]string{}
		for _, invoice := range invoices {
			byNumber[invoice.Number] = invoice.DisplayStatus
			if invoice.Status == models.InvoiceStatusOverdue {
				t.Errorf("invoice %s persisted status is overdue; overdue must stay derived", invoice.Number)
			}
		}
		if byNumber["INV-100"] != models.InvoiceStatusOverdue {
			t.Errorf("INV-100 displayStatus = %q, want overdue", byNumber["INV-100"])
		}
		if byNumber["INV-101"] != models.InvoiceStatusPending {
			t.Errorf("INV-101 displayStatus = %q, want pending", byNumber["INV-101"])
		}
	})

	t.Run("overdue filter uses derived status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/invoices?status=overdue", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		var invoices []struct {
			Number string `json:"number"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &invoices); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(invoices) != 1 || invoices[0].Number != "INV-100" {
			t.Errorf("overdue filter returned %+v, want just INV-100", invoices)
		}
	})
}
