package invoice

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

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

type UpdateSettingsRequest struct {
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address"`
	StorePhone   string `json:"store_phone"`
	FooterText   string `json:"footer_text"`
	LogoURL      string `json:"logo_url"`
	ShowLogo     *bool  `json:"show_logo"`
	PaperWidth   *int   `json:"paper_width"`
}

// GetSettings returns the tenant's receipt settings, creating the
// default row on first access
func (h *Handler) GetSettings(c *gin.Context) {
	tenantIDStr := c.GetString("tenant_id")
	tenantID, _ := uuid.Parse(tenantIDStr)

	var settings database.InvoiceSettings
	err := h.db.Where("tenant_id = ?", tenantID).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		var tenant database.Tenant
		h.db.First(&tenant, tenantID)

		settings = database.InvoiceSettings{
			TenantID:     tenantID,
			StoreName:    tenant.Name,
			StoreAddress: tenant.Address,
			StorePhone:   tenant.Phone,
		}
		if err := h.db.Create(&settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create settings"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateSettings updates the receipt settings. Paper width is limited
// to the thermal sizes the printers support.
func (h *Handler) UpdateSettings(c *gin.Context) {
	tenantIDStr := c.GetString("tenant_id")
	tenantID, _ := uuid.Parse(tenantIDStr)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PaperWidth != nil && *req.PaperWidth != 58 && *req.PaperWidth != 80 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paper width must be 58 or 80"})
		return
	}

	var settings database.InvoiceSettings
	err := h.db.Where("tenant_id = ?", tenantID).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = database.InvoiceSettings{TenantID: tenantID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	if req.StoreName != "" {
		settings.StoreName = req.StoreName
	}
	if req.StoreAddress != "" {
		settings.StoreAddress = req.StoreAddress
	}
	if req.StorePhone != "" {
		settings.StorePhone = req.StorePhone
	}
	if req.FooterText != "" {
		settings.FooterText = req.FooterText
	}
	if req.LogoURL != "" {
		settings.LogoURL = req.LogoURL
	}
	if req.ShowLogo != nil {
		settings.ShowLogo = *req.ShowLogo
	}
	if req.PaperWidth != nil {
		settings.PaperWidth = *req.PaperWidth
	}

	if err := h.db.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

type CustomInvoiceItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CustomInvoiceRequest struct {
	Title        string              `json:"title" binding:"required"`
	CustomerName string              `json:"customer_name"`
	Amount       float64             `json:"amount" binding:"required"`
	Items        []CustomInvoiceItem `json:"items"`
	Notes        string              `json:"notes"`
	Status       string              `json:"status"`
}

func marshalItems(items []CustomInvoiceItem) string {
	if items == nil {
		items = []CustomInvoiceItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// ListCustom returns the tenant's custom invoices
func (h *Handler) ListCustom(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var invoices []database.CustomInvoice
	if err := h.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

// CreateCustom creates a free-form invoice outside the sales flow
// (pre-orders, deliveries, IOUs)
func (h *Handler) CreateCustom(c *gin.Context) {
	var req CustomInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID, _ := uuid.Parse(c.GetString("tenant_id"))
	userID, _ := uuid.Parse(c.GetString("user_id"))

	status := req.Status
	if status == "" {
		status = "unpaid"
	}

	// Custom invoices get their own prefix so they never collide with
	// sale invoice numbers
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var count int64
	h.db.Unscoped().Model(&database.CustomInvoice{}).
		Where("tenant_id = ? AND created_at >= ?", tenantID, todayStart).
		Count(&count)
	invoiceNumber := fmt.Sprintf("CINV-%s-%04d", now.Format("20060102"), count+1)

	invoice := database.CustomInvoice{
		TenantID:      tenantID,
		UserID:        userID,
		InvoiceNumber: invoiceNumber,
		Title:         req.Title,
		CustomerName:  req.CustomerName,
		Amount:        req.Amount,
		Items:         marshalItems(req.Items),
		Notes:         req.Notes,
		Status:        status,
	}

	if err := h.db.Create(&invoice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

// UpdateCustom updates a custom invoice
func (h *Handler) UpdateCustom(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	invoiceID := c.Param("id")

	var invoice database.CustomInvoice
	if err := h.db.Where("id = ? AND tenant_id = ?", invoiceID, tenantID).First(&invoice).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	var req CustomInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice.Title = req.Title
	invoice.CustomerName = req.CustomerName
	invoice.Amount = req.Amount
	invoice.Items = marshalItems(req.Items)
	invoice.Notes = req.Notes
	if req.Status != "" {
		invoice.Status = req.Status
	}

	if err := h.db.Save(&invoice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invoice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

// DeleteCustom removes a custom invoice
func (h *Handler) DeleteCustom(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	invoiceID := c.Param("id")

	var invoice database.CustomInvoice
	if err := h.db.Where("id = ? AND tenant_id = ?", invoiceID, tenantID).First(&invoice).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	if err := h.db.Delete(&invoice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete invoice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted"})
}
