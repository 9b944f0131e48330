package stock

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/activitylog"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"github.com/kasirku/kasirku-backend/pkg/period"
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

type AddStockRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"required"`
	Notes    string `json:"notes"`
}

// AddStock increases a product's stock and appends an addition entry
func (h *Handler) AddStock(c *gin.Context) {
	tenantID, _ := uuid.Parse(c.GetString("tenant_id"))
	userID, _ := uuid.Parse(c.GetString("user_id"))
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var entry *database.StockEntry
	err = h.db.Transaction(func(tx *gorm.DB) error {
		product, err := LockProduct(tx, tenantID, productID)
		if err != nil {
			return err
		}
		entry, err = Apply(tx, userID, product, product.StockQty+req.Quantity, req.Reason, req.Notes)
		return err
	})
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add stock"})
		return
	}

	h.logger.LogStockChange(c, productID, entry.Type, entry.PreviousStock, entry.NewStock, req.Reason)

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

type AdjustStockRequest struct {
	Mode   string `json:"mode" binding:"required,oneof=set add subtract"`
	Value  int    `json:"value" binding:"min=0"`
	Reason string `json:"reason" binding:"required"`
	Notes  string `json:"notes"`
}

// AdjustStock sets a product's stock to an absolute value resolved from
// the requested mode. Subtract clamps at zero.
func (h *Handler) AdjustStock(c *gin.Context) {
	tenantID, _ := uuid.Parse(c.GetString("tenant_id"))
	userID, _ := uuid.Parse(c.GetString("user_id"))
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var entry *database.StockEntry
	err = h.db.Transaction(func(tx *gorm.DB) error {
		product, err := LockProduct(tx, tenantID, productID)
		if err != nil {
			return err
		}
		target, err := resolveTarget(product.StockQty, req.Mode, req.Value)
		if err != nil {
			return err
		}
		entry, err = Apply(tx, userID, product, target, req.Reason, req.Notes)
		return err
	})
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust stock"})
		return
	}

	h.logger.LogStockChange(c, productID, entry.Type, entry.PreviousStock, entry.NewStock, req.Reason)

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

type HistoryRequest struct {
	ProductID string `form:"product_id"`
	Period    string `form:"period"`     // today, week, month, year, custom
	StartDate string `form:"start_date"` // Format: 2024-01-01, custom only
	EndDate   string `form:"end_date"`   // Format: 2024-01-31, custom only
	Limit     int    `form:"limit"`
}

// GetHistory returns ledger entries newest first, optionally scoped to
// one product and a date window
func (h *Handler) GetHistory(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := h.db.Where("tenant_id = ?", tenantID)

	if req.ProductID != "" {
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}
		query = query.Where("product_id = ?", productID)
	}

	if req.Period != "" {
		r, err := resolveRange(req.Period, req.StartDate, req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		query = query.Where("created_at >= ? AND created_at < ?", r.Start, r.End)
	}

	var entries []database.StockEntry
	if err := query.Preload("Product").
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stock history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// resolveRange maps the request's period fields to a concrete window.
// Malformed custom dates are a hard error, not a silent filter.
func resolveRange(name, startDate, endDate string) (period.Range, error) {
	if name != period.Custom {
		return period.Resolve(name, time.Now())
	}

	start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return period.Range{}, err
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return period.Range{}, err
	}
	return period.ResolveCustom(start, end), nil
}

type Summary struct {
	TotalProducts   int     `json:"total_products"`
	TotalStockValue float64 `json:"total_stock_value"`
	LowStockCount   int     `json:"low_stock_count"`
	OutOfStockCount int     `json:"out_of_stock_count"`
}

// GetSummary returns inventory summary stats
func (h *Handler) GetSummary(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var summary Summary

	var totalProducts int64
	h.db.Model(&database.Product{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Count(&totalProducts)
	summary.TotalProducts = int(totalProducts)

	var stockValue struct {
		Total float64
	}
	h.db.Model(&database.Product{}).
		Select("COALESCE(SUM(stock_qty * cost), 0) as total").
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Scan(&stockValue)
	summary.TotalStockValue = stockValue.Total

	var lowStock int64
	h.db.Model(&database.Product{}).
		Where("tenant_id = ? AND is_active = ? AND stock_qty > 0 AND stock_qty < 10", tenantID, true).
		Count(&lowStock)
	summary.LowStockCount = int(lowStock)

	var outOfStock int64
	h.db.Model(&database.Product{}).
		Where("tenant_id = ? AND is_active = ? AND stock_qty <= 0", tenantID, true).
		Count(&outOfStock)
	summary.OutOfStockCount = int(outOfStock)

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// GetAlerts returns products that need attention
func (h *Handler) GetAlerts(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var lowStock []database.Product
	h.db.Where("tenant_id = ? AND is_active = ? AND stock_qty > 0 AND stock_qty < 10", tenantID, true).
		Order("stock_qty ASC").
		Limit(10).
		Find(&lowStock)

	var outOfStock []database.Product
	h.db.Where("tenant_id = ? AND is_active = ? AND stock_qty <= 0", tenantID, true).
		Order("name ASC").
		Limit(10).
		Find(&outOfStock)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"low_stock":    lowStock,
			"out_of_stock": outOfStock,
		},
	})
}
