package product

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/database"
)

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListCategories returns the tenant's product categories
func (h *Handler) ListCategories(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var categories []database.Category
	if err := h.db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// CreateCategory adds a product category
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID, _ := uuid.Parse(c.GetString("tenant_id"))

	category := database.Category{TenantID: tenantID, Name: req.Name}
	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": category})
}

// DeleteCategory removes a category; products keep a null category
func (h *Handler) DeleteCategory(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	categoryID := c.Param("id")

	var category database.Category
	if err := h.db.Where("id = ? AND tenant_id = ?", categoryID, tenantID).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	h.db.Model(&database.Product{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Update("category_id", nil)

	if err := h.db.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// ListBrands returns the tenant's product brands
func (h *Handler) ListBrands(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var brands []database.Brand
	if err := h.db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&brands).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch brands"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": brands})
}

// CreateBrand adds a product brand
func (h *Handler) CreateBrand(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID, _ := uuid.Parse(c.GetString("tenant_id"))

	brand := database.Brand{TenantID: tenantID, Name: req.Name}
	if err := h.db.Create(&brand).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create brand"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": brand})
}

// DeleteBrand removes a brand; products keep a null brand
func (h *Handler) DeleteBrand(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	brandID := c.Param("id")

	var brand database.Brand
	if err := h.db.Where("id = ? AND tenant_id = ?", brandID, tenantID).First(&brand).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}

	h.db.Model(&database.Product{}).
		Where("tenant_id = ? AND brand_id = ?", tenantID, brandID).
		Update("brand_id", nil)

	if err := h.db.Delete(&brand).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete brand"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted"})
}
