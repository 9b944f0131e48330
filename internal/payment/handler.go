package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type ChannelRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type" binding:"required,oneof=digital bank"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// ListChannels returns the tenant's digital wallet and bank transfer
// channels. Cash is implicit and never stored as a channel.
func (h *Handler) ListChannels(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	query := h.db.Where("tenant_id = ?", tenantID)
	if channelType := c.Query("type"); channelType != "" {
		query = query.Where("type = ?", channelType)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var channels []database.PaymentChannel
	if err := query.Order("name ASC").Find(&channels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment channels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": channels})
}

// CreateChannel adds a payment channel (QRIS, GoPay, BCA transfer, etc)
func (h *Handler) CreateChannel(c *gin.Context) {
	var req ChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID, _ := uuid.Parse(c.GetString("tenant_id"))

	channel := database.PaymentChannel{
		TenantID:      tenantID,
		Name:          req.Name,
		Type:          req.Type,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		IsActive:      true,
	}

	if err := h.db.Create(&channel).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment channel"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": channel})
}

// UpdateChannel modifies a payment channel
func (h *Handler) UpdateChannel(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	channelID := c.Param("id")

	var channel database.PaymentChannel
	if err := h.db.Where("id = ? AND tenant_id = ?", channelID, tenantID).First(&channel).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment channel not found"})
		return
	}

	var req ChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel.Name = req.Name
	channel.Type = req.Type
	channel.AccountNumber = req.AccountNumber
	channel.AccountName = req.AccountName

	if err := h.db.Save(&channel).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment channel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": channel})
}

// ToggleChannel enables or disables a channel without deleting it, so
// old sales keep their reference
func (h *Handler) ToggleChannel(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	channelID := c.Param("id")

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var channel database.PaymentChannel
	if err := h.db.Where("id = ? AND tenant_id = ?", channelID, tenantID).First(&channel).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment channel not found"})
		return
	}

	channel.IsActive = req.IsActive
	if err := h.db.Save(&channel).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment channel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": channel})
}

// DeleteChannel soft-deletes a payment channel
func (h *Handler) DeleteChannel(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	channelID := c.Param("id")

	var channel database.PaymentChannel
	if err := h.db.Where("id = ? AND tenant_id = ?", channelID, tenantID).First(&channel).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment channel not found"})
		return
	}

	if err := h.db.Delete(&channel).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment channel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment channel deleted"})
}
