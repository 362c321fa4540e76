package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/models"
)

type CompanyHandler struct {
	DB *gorm.DB
}

type companyRequest struct {
	Name     string `json:"name" binding:"required"`
	TaxID    string `json:"taxId"`
	Address  string `json:"address"`
	Email    string `json:"email" binding:"omitempty,email"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{DB: db}
}

func (h *CompanyHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var companies []models.Company
	if err := h.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load companies"})
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	company := models.Company{
		Name:     req.Name,
		TaxID:    req.TaxID,
		Address:  req.Address,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Currency: currency,
		UserID:   userID,
	}
	if err := h.DB.Create(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, company)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var company models.Company
	if err := h.DB.First(&company, "id = ? AND user_id = ?", companyID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}

	company.Name = req.Name
	company.TaxID = req.TaxID
	company.Address = req.Address
	company.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Currency != "" {
		company.Currency = strings.ToUpper(req.Currency)
	}

	if err := h.DB.Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Company{}, "id = ? AND user_id = ?", companyID, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
