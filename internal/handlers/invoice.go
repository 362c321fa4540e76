package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/config"
	"github.com/lucasgday/receivables-sub000/internal/email"
	"github.com/lucasgday/receivables-sub000/internal/models"
	"github.com/lucasgday/receivables-sub000/internal/pdf"
	"github.com/lucasgday/receivables-sub000/internal/reconcile"
)

type InvoiceHandler struct {
	DB  *gorm.DB
	Cfg config.Config
	Log *zap.Logger
}

type invoiceRequest struct {
	Number     string `json:"number" binding:"required"`
	CustomerID string `json:"customerId" binding:"required,uuid"`
	CategoryID string `json:"categoryId" binding:"omitempty,uuid"`
	CompanyID  string `json:"companyId" binding:"required,uuid"`
	Amount     string `json:"amount" binding:"required"`
	Currency   string `json:"currency" binding:"omitempty,len=3"`
	IssuedAt   string `json:"issuedAt" binding:"required"`
	DueAt      string `json:"dueAt" binding:"required"`
	Notes      string `json:"notes"`
}

// invoiceResponse adds the read-time display status next to the persisted
// one. Overdue only ever exists here.
type invoiceResponse struct {
	models.Invoice
	DisplayStatus string `json:"displayStatus"`
}

func NewInvoiceHandler(db *gorm.DB, cfg config.Config, log *zap.Logger) *InvoiceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceHandler{DB: db, Cfg: cfg, Log: log}
}

func toInvoiceResponse(invoice models.Invoice, now time.Time) invoiceResponse {
	return invoiceResponse{
		Invoice:       invoice,
		DisplayStatus: reconcile.DisplayStatus(invoice.Status, invoice.DueAt, now),
	}
}

func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	query := h.DB.Where("user_id = ?", userID).Order("created_at desc")
	if customerID := c.Query("customerId"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if companyID := c.Query("companyId"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load invoices"})
		return
	}

	now := time.Now()
	statusFilter := strings.ToLower(strings.TrimSpace(c.Query("status")))
	responses := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		resp := toInvoiceResponse(invoice, now)
		if statusFilter != "" && resp.DisplayStatus != statusFilter {
			continue
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	invoice, errMsg := h.invoiceFromRequest(req, userID)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	if err := h.DB.Create(invoice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, toInvoiceResponse(*invoice, time.Now()))
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var invoice models.Invoice
	if err := h.DB.First(&invoice, "id = ? AND user_id = ?", invoiceID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}

	updated, errMsg := h.invoiceFromRequest(req, userID)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	invoice.Number = updated.Number
	invoice.CustomerID = updated.CustomerID
	invoice.CategoryID = updated.CategoryID
	invoice.CompanyID = updated.CompanyID
	invoice.Amount = updated.Amount
	invoice.Currency = updated.Currency
	invoice.IssuedAt = updated.IssuedAt
	invoice.DueAt = updated.DueAt
	invoice.Notes = updated.Notes

	if err := h.DB.Save(&invoice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, toInvoiceResponse(invoice, time.Now()))
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Invoice{}, "id = ? AND user_id = ?", invoiceID, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// PDF streams the rendered invoice document.
func (h *InvoiceHandler) PDF(c *gin.Context) {
	invoice, customer, company, ok := h.loadInvoiceBundle(c)
	if !ok {
		return
	}

	rendered, err := pdf.RenderInvoice(invoice, customer, company)
	if err != nil {
		h.Log.Error("invoice pdf render failed", zap.String("invoiceId", invoice.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pdf render failed"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\"invoice-"+invoice.Number+".pdf\"")
	c.Data(http.StatusOK, "application/pdf", rendered)
}

// Send mails the rendered invoice to the customer's address.
func (h *InvoiceHandler) Send(c *gin.Context) {
	invoice, customer, company, ok := h.loadInvoiceBundle(c)
	if !ok {
		return
	}
	if customer.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer has no email"})
		return
	}

	rendered, err := pdf.RenderInvoice(invoice, customer, company)
	if err != nil {
		h.Log.Error("invoice pdf render failed", zap.String("invoiceId", invoice.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pdf render failed"})
		return
	}

	smtpCfg := email.Config{
		Host:     h.Cfg.SmtpHost,
		Port:     h.Cfg.SmtpPort,
		Username: h.Cfg.SmtpUser,
		Password: h.Cfg.SmtpPass,
		From:     h.Cfg.SmtpFrom,
	}
	if err := email.SendInvoice(smtpCfg, customer.Email, invoice.Number, rendered); err != nil {
		h.Log.Warn("invoice email failed", zap.String("invoiceId", invoice.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "email failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invoice sent", "to": customer.Email})
}

func (h *InvoiceHandler) loadInvoiceBundle(c *gin.Context) (models.Invoice, models.Customer, models.Company, bool) {
	var invoice models.Invoice
	var customer models.Customer
	var company models.Company

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return invoice, customer, company, false
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return invoice, customer, company, false
	}

	if err := h.DB.First(&invoice, "id = ? AND user_id = ?", invoiceID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return invoice, customer, company, false
	}
	if err := h.DB.First(&customer, "id = ?", invoice.CustomerID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load customer"})
		return invoice, customer, company, false
	}
	if err := h.DB.First(&company, "id = ?", invoice.CompanyID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load company"})
		return invoice, customer, company, false
	}
	return invoice, customer, company, true
}

func (h *InvoiceHandler) invoiceFromRequest(req invoiceRequest, userID uuid.UUID) (*models.Invoice, string) {
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

	issuedAt, err := time.Parse("2006-01-02", req.IssuedAt)
	if err != nil {
		return nil, "invalid issuedAt"
	}
	dueAt, err := time.Parse("2006-01-02", req.DueAt)
	if err != nil {
		return nil, "invalid dueAt"
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	return &models.Invoice{
		Number:     req.Number,
		CustomerID: customerID,
		CategoryID: categoryID,
		CompanyID:  companyID,
		Amount:     amount,
		Currency:   currency,
		Status:     models.InvoiceStatusPending,
		IssuedAt:   issuedAt,
		DueAt:      dueAt,
		Notes:      req.Notes,
		UserID:     userID,
	}, ""
}
