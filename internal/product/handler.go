package product

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/activitylog"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *activitylog.Logger
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:     db,
		logger: activitylog.NewLogger(db),
	}
}

type CreateProductRequest struct {
	Name       string     `json:"name" binding:"required"`
	Barcodes   []string   `json:"barcodes"`
	Price      float64    `json:"price" binding:"required"`
	Cost       float64    `json:"cost"`
	StockQty   int        `json:"stock_qty" binding:"min=0"`
	CategoryID *uuid.UUID `json:"category_id"`
	BrandID    *uuid.UUID `json:"brand_id"`
	ImageURLs  []string   `json:"image_urls" binding:"max=5"`
}

// List returns all products for the tenant, optionally filtered by
// category, brand or a search term
func (h *Handler) List(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	query := h.db.Where("tenant_id = ?", tenantID)

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if brandID := c.Query("brand_id"); brandID != "" {
		query = query.Where("brand_id = ?", brandID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var products []database.Product
	if err := query.Preload("Category").Preload("Brand").Order("name ASC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

// Create adds a new product
func (h *Handler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantIDStr := c.GetString("tenant_id")
	tenantID, _ := uuid.Parse(tenantIDStr)

	product := database.Product{
		TenantID:   tenantID,
		Name:       req.Name,
		Barcodes:   joinBarcodes(req.Barcodes),
		Price:      req.Price,
		Cost:       req.Cost,
		StockQty:   req.StockQty,
		CategoryID: req.CategoryID,
		BrandID:    req.BrandID,
		ImageURLs:  req.ImageURLs,
		IsActive:   true,
	}

	if err := h.db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	h.logger.LogCreate(c, "product", product.ID, map[string]interface{}{
		"name":     product.Name,
		"price":    product.Price,
		"barcodes": product.Barcodes,
	})

	c.JSON(http.StatusCreated, gin.H{"data": product})
}

// Get returns a single product
func (h *Handler) Get(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ? AND tenant_id = ?", productID, tenantID).
		Preload("Category").
		Preload("Brand").
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// GetByBarcode looks a product up by any of its barcodes (checkout scan path)
func (h *Handler) GetByBarcode(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	barcode := strings.TrimSpace(c.Param("barcode"))

	var product database.Product
	if err := h.db.Where("tenant_id = ? AND is_active = ? AND (barcodes = ? OR barcodes LIKE ? OR barcodes LIKE ? OR barcodes LIKE ?)",
		tenantID, true, barcode, barcode+",%", "%,"+barcode, "%,"+barcode+",%").
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Update modifies a product. Stock is not updated here; stock changes go
// through the stock endpoints so the ledger stays complete.
func (h *Handler) Update(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ? AND tenant_id = ?", productID, tenantID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	oldValues := map[string]interface{}{
		"name":     product.Name,
		"price":    product.Price,
		"cost":     product.Cost,
		"barcodes": product.Barcodes,
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product.Name = req.Name
	product.Barcodes = joinBarcodes(req.Barcodes)
	product.Price = req.Price
	product.Cost = req.Cost
	product.CategoryID = req.CategoryID
	product.BrandID = req.BrandID
	product.ImageURLs = req.ImageURLs

	if err := h.db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	h.logger.LogUpdate(c, "product", product.ID, oldValues, map[string]interface{}{
		"name":     product.Name,
		"price":    product.Price,
		"cost":     product.Cost,
		"barcodes": product.Barcodes,
	})

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Delete soft-deletes a product
func (h *Handler) Delete(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ? AND tenant_id = ?", productID, tenantID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := h.db.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	h.logger.LogDelete(c, "product", product.ID, map[string]interface{}{
		"name":  product.Name,
		"price": product.Price,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// ToggleActive toggles a product's is_active status
func (h *Handler) ToggleActive(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID := c.Param("id")

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product database.Product
	if err := h.db.Where("id = ? AND tenant_id = ?", productID, tenantID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	product.IsActive = req.IsActive
	if err := h.db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func joinBarcodes(barcodes []string) string {
	var cleaned []string
	for _, b := range barcodes {
		b = strings.TrimSpace(b)
		if b != "" {
			cleaned = append(cleaned, b)
		}
	}
	return strings.Join(cleaned, ",")
}
