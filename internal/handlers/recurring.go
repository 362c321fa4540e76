package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/models"
)

type RecurringHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

type recurringRequest struct {
	CustomerID string `json:"customerId" binding:"required,uuid"`
	CategoryID string `json:"categoryId" binding:"omitempty,uuid"`
	CompanyID  string `json:"companyId" binding:"required,uuid"`
	Concept    string `json:"concept" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	Currency   string `json:"currency" binding:"omitempty,len=3"`
	Frequency  string `json:"frequency" binding:"required,oneof=monthly quarterly yearly"`
	NextRun    string `json:"nextRun" binding:"required"`
	Active     *bool  `json:"active"`
	Notes      string `json:"notes"`
}

func NewRecurringHandler(db *gorm.DB, log *zap.Logger) *RecurringHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecurringHandler{DB: db, Log: log}
}

func (h *RecurringHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var schedules []models.RecurringPayment
	if err := h.DB.Where("user_id = ?", userID).Order("next_run asc").Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load recurring payments"})
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *RecurringHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req recurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	schedule, errMsg := h.scheduleFromRequest(req, userID)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	if err := h.DB.Create(schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

func (h *RecurringHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req recurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var schedule models.RecurringPayment
	if err := h.DB.First(&schedule, "id = ? AND user_id = ?", scheduleID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recurring payment not found"})
		return
	}

	updated, errMsg := h.scheduleFromRequest(req, userID)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	schedule.CustomerID = updated.CustomerID
	schedule.CategoryID = updated.CategoryID
	schedule.CompanyID = updated.CompanyID
	schedule.Concept = updated.Concept
	schedule.Amount = updated.Amount
	schedule.Currency = updated.Currency
	schedule.Frequency = updated.Frequency
	schedule.NextRun = updated.NextRun
	schedule.Active = updated.Active
	schedule.Notes = updated.Notes

	if err := h.DB.Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *RecurringHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.RecurringPayment{}, "id = ? AND user_id = ?", scheduleID, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// Run generates an invoice for every active schedule that has come due and
// advances its next run date. Each schedule commits on its own so one bad
// schedule does not block the rest.
func (h *RecurringHandler) Run(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	now := time.Now()
	var due []models.RecurringPayment
	if err := h.DB.Where("user_id = ? AND active = ? AND next_run <= ?", userID, true, now).
		Find(&due).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load recurring payments"})
		return
	}

	generated := 0
	failed := 0
	for _, schedule := range due {
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			invoice := models.Invoice{
				Number:     recurringInvoiceNumber(schedule, now),
				CustomerID: schedule.CustomerID,
				CategoryID: schedule.CategoryID,
				CompanyID:  schedule.CompanyID,
				Amount:     schedule.Amount,
				Currency:   schedule.Currency,
				Status:     models.InvoiceStatusPending,
				IssuedAt:   now,
				DueAt:      now.AddDate(0, 1, 0),
				Notes:      schedule.Concept,
				UserID:     schedule.UserID,
			}
			if err := tx.Create(&invoice).Error; err != nil {
				return err
			}
			return tx.Model(&models.RecurringPayment{}).
				Where("id = ?", schedule.ID).
				Update("next_run", advanceNextRun(schedule.NextRun, schedule.Frequency)).Error
		})
		if err != nil {
			failed++
			h.Log.Warn("recurring invoice generation failed",
				zap.String("scheduleId", schedule.ID.String()), zap.Error(err))
			continue
		}
		generated++
	}

	c.JSON(http.StatusOK, gin.H{"generated": generated, "failed": failed})
}

func (h *RecurringHandler) scheduleFromRequest(req recurringRequest, userID uuid.UUID) (*models.RecurringPayment, string) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, "invalid customerId"
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, "invalid companyId"
	}

	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		parsed, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, "invalid categoryId"
		}
		categoryID = &parsed
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, "invalid amount"
	}

	nextRun, err := time.Parse("2006-01-02", req.NextRun)
	if err != nil {
		return nil, "invalid nextRun"
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return &models.RecurringPayment{
		CustomerID: customerID,
		CategoryID: categoryID,
		CompanyID:  companyID,
		Concept:    req.Concept,
		Amount:     amount,
		Currency:   currency,
		Frequency:  req.Frequency,
		NextRun:    nextRun,
		Active:     active,
		Notes:      req.Notes,
		UserID:     userID,
	}, ""
}

func advanceNextRun(from time.Time, frequency string) time.Time {
	switch frequency {
	case models.FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case models.FrequencyYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

func recurringInvoiceNumber(schedule models.RecurringPayment, now time.Time) string {
	return fmt.Sprintf("REC-%s-%s", now.Format("200601"), schedule.ID.String()[:8])
}
