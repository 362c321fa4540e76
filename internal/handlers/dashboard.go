package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/models"
	"github.com/lucasgday/receivables-sub000/internal/reconcile"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var customerCount int64
	_ = h.DB.Model(&models.Customer{}).Where("user_id = ?", userID).Count(&customerCount).Error

	var invoices []models.Invoice
	_ = h.DB.Where("user_id = ?", userID).Find(&invoices).Error

	var unlinkedMovements int64
	_ = h.DB.Model(&models.BankMovement{}).
		Where("user_id = ? AND invoice_id IS NULL", userID).
		Count(&unlinkedMovements).Error

	now := time.Now()
	revenue := decimal.Zero
	outstanding := decimal.Zero
	overdueCount := 0
	for _, invoice := range invoices {
		if invoice.Status == models.InvoiceStatusPaid {
			revenue = revenue.Add(invoice.Amount)
		} else {
			outstanding = outstanding.Add(invoice.Amount)
		}
		if reconcile.DisplayStatus(invoice.Status, invoice.DueAt, now) == models.InvoiceStatusOverdue {
			overdueCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"customers":         customerCount,
		"invoices":          len(invoices),
		"revenue":           revenue,
		"outstanding":       outstanding,
		"overdueInvoices":   overdueCount,
		"unlinkedMovements": unlinkedMovements,
	})
}
