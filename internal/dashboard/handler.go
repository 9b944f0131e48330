package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"github.com/kasirku/kasirku-backend/pkg/period"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type DashboardStats struct {
	TodaySales        float64 `json:"today_sales"`
	TodayProfit       float64 `json:"today_profit"`
	TodayTransactions int64   `json:"today_transactions"`
	TodayItemsSold    int     `json:"today_items_sold"`
	WeekSales         float64 `json:"week_sales"`
	WeekTransactions  int64   `json:"week_transactions"`
	MonthSales        float64 `json:"month_sales"`
	MonthTransactions int64   `json:"month_transactions"`
	TotalProducts     int64   `json:"total_products"`
	LowStockProducts  int64   `json:"low_stock_products"`
}

type TopProduct struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	TotalQty    int     `json:"total_qty"`
	TotalSales  float64 `json:"total_sales"`
}

type salesAgg struct {
	Total  float64
	Profit float64
	Count  int64
}

func (h *Handler) aggregateSales(tenantID string, r period.Range) salesAgg {
	var agg salesAgg
	h.db.Model(&database.Sale{}).
		Select("COALESCE(SUM(total), 0) as total, COALESCE(SUM(profit), 0) as profit, COUNT(*) as count").
		Where("tenant_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			tenantID, "completed", r.Start, r.End).
		Scan(&agg)
	return agg
}

// GetStats returns the dashboard statistics block
func (h *Handler) GetStats(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	now := time.Now()
	today, _ := period.Resolve(period.Today, now)
	week, _ := period.Resolve(period.Week, now)
	month, _ := period.Resolve(period.Month, now)

	var stats DashboardStats

	todayAgg := h.aggregateSales(tenantID, today)
	stats.TodaySales = todayAgg.Total
	stats.TodayProfit = todayAgg.Profit
	stats.TodayTransactions = todayAgg.Count

	var itemsSold struct{ Qty int }
	h.db.Model(&database.SaleItem{}).
		Select("COALESCE(SUM(sale_items.quantity), 0) as qty").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.tenant_id = ? AND sales.status = ? AND sales.created_at >= ? AND sales.created_at < ?",
			tenantID, "completed", today.Start, today.End).
		Scan(&itemsSold)
	stats.TodayItemsSold = itemsSold.Qty

	weekAgg := h.aggregateSales(tenantID, week)
	stats.WeekSales = weekAgg.Total
	stats.WeekTransactions = weekAgg.Count

	monthAgg := h.aggregateSales(tenantID, month)
	stats.MonthSales = monthAgg.Total
	stats.MonthTransactions = monthAgg.Count

	h.db.Model(&database.Product{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Count(&stats.TotalProducts)

	h.db.Model(&database.Product{}).
		Where("tenant_id = ? AND is_active = ? AND stock_qty < ?", tenantID, true, 10).
		Count(&stats.LowStockProducts)

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetTopProducts returns the best sellers for a period, grouped by
// product id with the snapshot name from the latest sale
func (h *Handler) GetTopProducts(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	periodName := c.DefaultQuery("period", period.Month)
	r, err := period.Resolve(periodName, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 5
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	var topProducts []TopProduct
	h.db.Model(&database.SaleItem{}).
		Select("sale_items.product_id, MAX(sale_items.product_name) as product_name, SUM(sale_items.quantity) as total_qty, SUM(sale_items.subtotal) as total_sales").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.tenant_id = ? AND sales.status = ? AND sales.created_at >= ? AND sales.created_at < ?",
			tenantID, "completed", r.Start, r.End).
		Group("sale_items.product_id").
		Order("total_qty DESC").
		Limit(limit).
		Scan(&topProducts)

	c.JSON(http.StatusOK, gin.H{"data": topProducts})
}

// GetRecentSales returns the latest sales for the dashboard feed
func (h *Handler) GetRecentSales(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	limit := 10
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	var sales []database.Sale
	if err := h.db.Where("tenant_id = ?", tenantID).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}

// GetLowStock returns products under the low-stock threshold
func (h *Handler) GetLowStock(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	threshold := 10
	if t := c.Query("threshold"); t != "" {
		if parsed, err := strconv.Atoi(t); err == nil && parsed > 0 {
			threshold = parsed
		}
	}

	var products []database.Product
	if err := h.db.Where("tenant_id = ? AND is_active = ? AND stock_qty < ?", tenantID, true, threshold).
		Order("stock_qty ASC").
		Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}
