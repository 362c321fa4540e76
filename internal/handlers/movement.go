package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/config"
	"github.com/lucasgday/receivables-sub000/internal/models"
	"github.com/lucasgday/receivables-sub000/internal/reconcile"
)

type MovementHandler struct {
	DB      *gorm.DB
	Cfg     config.Config
	Log     *zap.Logger
	Matcher *reconcile.Matcher
}

type linkRequest struct {
	InvoiceID string `json:"invoiceId" binding:"required,uuid"`
}

type updateMovementRequest struct {
	Date        string `json:"date" binding:"required"`
	Description string `json:"description" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
}

func NewMovementHandler(db *gorm.DB, cfg config.Config, log *zap.Logger) *MovementHandler {
	if log == nil {
		log = zap.NewNop()
	}
	matcher := reconcile.NewMatcher(db, log)
	matcher.RevertInvoiceOnUnlink = cfg.UnlinkRevertsInvoice
	return &MovementHandler{DB: db, Cfg: cfg, Log: log, Matcher: matcher}
}

// Import ingests an uploaded bank statement CSV for a company.
func (h *MovementHandler) Import(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	companyID, err := uuid.Parse(c.PostForm("companyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid companyId"})
		return
	}

	var company models.Company
	if err := h.DB.First(&company, "id = ? AND user_id = ?", companyID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(c.PostForm("currency")))
	if currency == "" {
		currency = company.Currency
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "statement file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read statement file"})
		return
	}
	defer file.Close()

	importer := reconcile.NewImporter(h.DB, h.Log)
	importer.BatchSize = h.Cfg.ImportBatchSize

	summary, err := importer.Import(c.Request.Context(), file, reconcile.NormalizeOptions{
		CompanyID: companyID,
		Currency:  currency,
		UserID:    userID,
	})
	if err != nil {
		h.renderImportError(c, summary, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *MovementHandler) renderImportError(c *gin.Context, summary *reconcile.ImportSummary, err error) {
	var missing *reconcile.MissingColumnsError
	var partial *reconcile.PartialBatchError

	switch {
	case errors.Is(err, reconcile.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "statement file is empty or malformed"})
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{"error": missing.Error(), "missingColumns": missing.Missing})
	case errors.Is(err, reconcile.ErrNoValidRecords):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid movements found in statement"})
	case errors.As(err, &partial):
		h.Log.Error("statement import stopped partway",
			zap.Int("inserted", partial.Inserted),
			zap.Int("total", partial.Total),
			zap.Error(partial.Err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "import stopped partway",
			"summary": summary,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
	}
}

func (h *MovementHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	query := h.DB.Where("user_id = ?", userID).Order("created_at desc")
	if companyID := c.Query("companyId"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	switch c.Query("linked") {
	case "true":
		query = query.Where("invoice_id IS NOT NULL")
	case "false":
		query = query.Where("invoice_id IS NULL")
	}

	var movements []models.BankMovement
	if err := query.Find(&movements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load movements"})
		return
	}
	c.JSON(http.StatusOK, movements)
}

// Candidates lists the invoices a movement could pay: everything not
// already marked paid.
func (h *MovementHandler) Candidates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var invoices []models.Invoice
	if err := h.DB.Where("user_id = ? AND status <> ?", userID, models.InvoiceStatusPaid).
		Order("due_at asc").Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load invoices"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *MovementHandler) Link(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoiceId"})
		return
	}

	if !h.ownsMovement(c, movementID, userID) {
		return
	}

	if err := h.Matcher.Link(c.Request.Context(), movementID, invoiceID, userID); err != nil {
		switch {
		case errors.Is(err, reconcile.ErrMovementLinked):
			c.JSON(http.StatusConflict, gin.H{"error": "movement is already linked"})
		case errors.Is(err, reconcile.ErrInvoiceAlreadyPaid):
			c.JSON(http.StatusConflict, gin.H{"error": "invoice is already paid"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "movement or invoice not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "link failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "linked"})
}

func (h *MovementHandler) Unlink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if !h.ownsMovement(c, movementID, userID) {
		return
	}

	if err := h.Matcher.Unlink(c.Request.Context(), movementID, userID); err != nil {
		switch {
		case errors.Is(err, reconcile.ErrMovementNotLinked):
			c.JSON(http.StatusConflict, gin.H{"error": "movement is not linked"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "movement not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unlink failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unlinked"})
}

func (h *MovementHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	var movement models.BankMovement
	if err := h.DB.First(&movement, "id = ? AND user_id = ?", movementID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "movement not found"})
		return
	}

	// A linked movement's date already became the invoice's paid date.
	// Editing it would leave the two out of step.
	if movement.InvoiceID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "movement is linked to an invoice, unlink it first"})
		return
	}

	movement.Date = req.Date
	movement.Description = req.Description
	movement.Amount = amount

	if err := h.DB.Save(&movement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, movement)
}

func (h *MovementHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.BankMovement{}, "id = ? AND user_id = ?", movementID, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *MovementHandler) ownsMovement(c *gin.Context, movementID, userID uuid.UUID) bool {
	var movement models.BankMovement
	if err := h.DB.First(&movement, "id = ? AND user_id = ?", movementID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "movement not found"})
		return false
	}
	return true
}
