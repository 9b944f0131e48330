package analytics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

type rangeRequest struct {
	Period    string `form:"period"`
	StartDate string `form:"start_date"` // Format: 2024-01-01
	EndDate   string `form:"end_date"`   // Format: 2024-01-31
}

func (r rangeRequest) resolve() (period.Range, error) {
	name := r.Period
	if name == "" {
		name = period.Today
	}
	if name != period.Custom {
		return period.Resolve(name, time.Now())
	}
	start, err := time.ParseInLocation("2006-01-02", r.StartDate, time.Local)
	if err != nil {
		return period.Range{}, err
	}
	end, err := time.ParseInLocation("2006-01-02", r.EndDate, time.Local)
	if err != nil {
		return period.Range{}, err
	}
	return period.ResolveCustom(start, end), nil
}

// completedSales fetches the tenant's completed sales inside the window
func (h *Handler) completedSales(tenantID string, r period.Range) ([]database.Sale, error) {
	var sales []database.Sale
	err := h.db.Where("tenant_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
		tenantID, "completed", r.Start, r.End).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

// GetSummary returns total, profit, count, average, max and min for the period
func (h *Handler) GetSummary(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var req rangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := req.resolve()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sales, err := h.completedSales(tenantID, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": Summarize(sales)})
}

// GetPerformance returns the day-bucketed series with growth and trend.
// Defaults to the last 10 days.
func (h *Handler) GetPerformance(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := end.AddDate(0, 0, -9)

	if s := c.Query("start_date"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date"})
			return
		}
		start = parsed
	}
	if e := c.Query("end_date"); e != "" {
		parsed, err := time.ParseInLocation("2006-01-02", e, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date"})
			return
		}
		end = parsed
	}

	r := period.ResolveCustom(start, end)
	sales, err := h.completedSales(tenantID, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": PerformanceSeries(sales, start, end)})
}

// GetProductMetrics aggregates one product's sales over the period.
// The product can be addressed by id or by any of its barcodes.
func (h *Handler) GetProductMetrics(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var req rangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productID := c.Query("product_id")
	barcode := c.Query("barcode")
	if productID == "" && barcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id or barcode required"})
		return
	}

	if productID == "" {
		var product database.Product
		if err := h.db.Where("tenant_id = ? AND (barcodes = ? OR barcodes LIKE ? OR barcodes LIKE ? OR barcodes LIKE ?)",
			tenantID, barcode, barcode+",%", "%,"+barcode, "%,"+barcode+",%").
			First(&product).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		productID = product.ID.String()
	}

	productUUID, err := uuid.Parse(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	r, err := req.resolve()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rows []ItemRow
	if err := h.db.Model(&database.SaleItem{}).
		Select("sales.created_at as date, sale_items.quantity, sale_items.subtotal").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.tenant_id = ? AND sales.status = ? AND sales.created_at >= ? AND sales.created_at < ? AND sale_items.product_id = ?",
			tenantID, "completed", r.Start, r.End, productUUID).
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product sales"})
		return
	}

	metrics := ProductSalesMetrics(rows, r.Start, r.End.AddDate(0, 0, -1))

	c.JSON(http.StatusOK, gin.H{"data": metrics})
}

// GetMonthly returns 12 calendar month buckets of profit or transaction
// count for a year
func (h *Handler) GetMonthly(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	year := time.Now().Year()
	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = parsed
	}

	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
	sales, err := h.completedSales(tenantID, period.Range{Start: yearStart, End: yearStart.AddDate(1, 0, 0)})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	if c.Query("metric") == "transactions" {
		labels, values := MonthlyTransactions(sales, year)
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"labels": labels, "values": values}})
		return
	}

	labels, values := MonthlyProfit(sales, year)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"labels": labels, "values": values}})
}

// GetYearly returns per-year profit buckets over the tenant's history
func (h *Handler) GetYearly(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var sales []database.Sale
	if err := h.db.Where("tenant_id = ? AND status = ?", tenantID, "completed").
		Order("created_at ASC").
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	labels, values := YearlyProfit(sales)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"labels": labels, "values": values}})
}

// GetMonthlyRange returns contiguous month buckets of profit between two dates
func (h *Handler) GetMonthlyRange(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	start, err := time.ParseInLocation("2006-01-02", c.Query("start_date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date"})
		return
	}
	end, err := time.ParseInLocation("2006-01-02", c.Query("end_date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date"})
		return
	}

	r := period.ResolveCustom(start, end)
	sales, err := h.completedSales(tenantID, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	labels, values := MonthRangeProfit(sales, start, end)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"labels": labels, "values": values}})
}
