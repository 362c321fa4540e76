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

	"github.com/lucasgday/receivables-sub000/internal/models"
)

func TestAdvanceNextRun(t *testing.T) {
	from := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency string
		want      time.Time
	}{
		{models.FrequencyMonthly, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{models.FrequencyQuarterly, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{models.FrequencyYearly, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			if got := advanceNextRun(from, tt.frequency); !got.Equal(tt.want) {
				t.Errorf("advanceNextRun(%v, %s) = %v, want %v", from, tt.frequency, got, tt.want)
			}
		})
	}
}

func TestRecurringRunGeneratesDueInvoices(t *testing.T) {
	database := newTestDB(t)
	userID := uuid.New()

	due := models.RecurringPayment{
		CustomerID: uuid.New(),
		CompanyID:  uuid.New(),
		Concept:    "Monthly retainer",
		Amount:     decimal.RequireFromString("500.00"),
		Currency:   "USD",
		Frequency:  models.FrequencyMonthly,
		NextRun:    time.Now().AddDate(0, 0, -1),
		Active:     true,
		UserID:     userID,
	}
	notDue := models.RecurringPayment{
		CustomerID: uuid.New(),
		CompanyID:  uuid.New(),
		Concept:    "Yearly license",
		Amount:     decimal.RequireFromString("1200.00"),
		Currency:   "USD",
		Frequency:  models.FrequencyYearly,
		NextRun:    time.Now().AddDate(0, 2, 0),
		Active:     true,
		UserID:     userID,
	}
	for _, schedule := range []*models.RecurringPayment{&due, &notDue} {
		if err := database.Create(schedule).Error; err != nil {
			t.Fatalf("create schedule: %v", err)
		}
	}

	handler := NewRecurringHandler(database, nil)
	router := authedRouter(userID, func(api *gin.RouterGroup) {
		api.POST("/recurring/run", handler.Run)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/recurring/run", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Generated int `json:"generated"`
		Failed    int `json:"failed"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Generated != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want 1 generated and 0 failed", result)
	}

	var invoiceCount int64
	database.Model(&models.Invoice{}).Where("user_id = ?", userID).Count(&invoiceCount)
	if invoiceCount != 1 {
		t.Errorf("invoices = %d, want 1", invoiceCount)
	}

	var reloaded models.RecurringPayment
	if err := database.First(&reloaded, "id = ?", due.ID).Error; err != nil {
		t.Fatalf("reload schedule: %v", err)
	}
	if !reloaded.NextRun.After(time.Now()) {
		t.Errorf("nextRun = %v, want advanced past now", reloaded.NextRun)
	}
}
