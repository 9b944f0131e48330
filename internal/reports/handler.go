package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"github.com/kasirku/kasirku-backend/pkg/period"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type SalesReportRequest struct {
	StartDate string `form:"start_date"` // Format: 2024-01-01
	EndDate   string `form:"end_date"`   // Format: 2024-01-31
}

type DailySales struct {
	Date         string  `json:"date"`
	Sales        float64 `json:"sales"`
	Profit       float64 `json:"profit"`
	Transactions int     `json:"transactions"`
	ItemsSold    int     `json:"items_sold"`
}

type PaymentBreakdown struct {
	Method       string  `json:"method"`
	Sales        float64 `json:"sales"`
	Transactions int     `json:"transactions"`
}

type SalesReport struct {
	StartDate         string             `json:"start_date"`
	EndDate           string             `json:"end_date"`
	TotalSales        float64            `json:"total_sales"`
	TotalCost         float64            `json:"total_cost"`
	GrossProfit       float64            `json:"gross_profit"`
	TotalTransactions int                `json:"total_transactions"`
	TotalItemsSold    int                `json:"total_items_sold"`
	AveragePerTx      float64            `json:"average_per_tx"`
	DailySales        []DailySales       `json:"daily_sales"`
	PaymentBreakdown  []PaymentBreakdown `json:"payment_breakdown"`
}

type ProductSalesRow struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Barcode     string    `json:"barcode"`
	TotalQty    int       `json:"total_qty"`
	TotalSales  float64   `json:"total_sales"`
	TotalCost   float64   `json:"total_cost"`
	TotalProfit float64   `json:"total_profit"`
}

func (h *Handler) resolveRange(c *gin.Context) (period.Range, bool) {
	var req SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return period.Range{}, false
	}

	if req.StartDate == "" || req.EndDate == "" {
		// Default to the current month
		r, _ := period.Resolve(period.Month, time.Now())
		return r, true
	}

	start, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date"})
		return period.Range{}, false
	}
	end, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date"})
		return period.Range{}, false
	}

	return period.ResolveCustom(start, end), true
}

func (h *Handler) buildSalesReport(tenantID string, r period.Range) (SalesReport, error) {
	var sales []database.Sale
	if err := h.db.Where("tenant_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
		tenantID, "completed", r.Start, r.End).
		Preload("Items").
		Order("created_at ASC").
		Find(&sales).Error; err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{
		StartDate: r.Start.Format("2006-01-02"),
		EndDate:   r.End.AddDate(0, 0, -1).Format("2006-01-02"),
	}

	daily := make(map[string]*DailySales)
	payments := make(map[string]*PaymentBreakdown)

	for _, sale := range sales {
		report.TotalSales += sale.Total
		report.GrossProfit += sale.Profit
		report.TotalTransactions++

		// COGS comes from the unit cost snapshots on the items, so
		// later catalog price changes do not rewrite history
		for _, item := range sale.Items {
			report.TotalItemsSold += item.Quantity
			report.TotalCost += item.UnitCost * float64(item.Quantity)
		}

		day := period.DayKey(sale.CreatedAt)
		if daily[day] == nil {
			daily[day] = &DailySales{Date: day}
		}
		daily[day].Sales += sale.Total
		daily[day].Profit += sale.Profit
		daily[day].Transactions++
		for _, item := range sale.Items {
			daily[day].ItemsSold += item.Quantity
		}

		if payments[sale.PaymentMethod] == nil {
			payments[sale.PaymentMethod] = &PaymentBreakdown{Method: sale.PaymentMethod}
		}
		payments[sale.PaymentMethod].Sales += sale.Total
		payments[sale.PaymentMethod].Transactions++
	}

	if report.TotalTransactions > 0 {
		report.AveragePerTx = report.TotalSales / float64(report.TotalTransactions)
	}

	for _, day := range period.DaySequence(r.Start, r.End.AddDate(0, 0, -1)) {
		key := period.DayKey(day)
		if d, ok := daily[key]; ok {
			report.DailySales = append(report.DailySales, *d)
		} else {
			report.DailySales = append(report.DailySales, DailySales{Date: key})
		}
	}

	for _, method := range []string{database.PaymentCash, database.PaymentDigital, database.PaymentBank} {
		if p, ok := payments[method]; ok {
			report.PaymentBreakdown = append(report.PaymentBreakdown, *p)
		}
	}

	return report, nil
}

func (h *Handler) productSalesRows(tenantID string, r period.Range) ([]ProductSalesRow, error) {
	var rows []ProductSalesRow
	err := h.db.Model(&database.SaleItem{}).
		Select("sale_items.product_id, MAX(sale_items.product_name) as product_name, MAX(sale_items.barcode) as barcode, "+
			"SUM(sale_items.quantity) as total_qty, SUM(sale_items.subtotal) as total_sales, "+
			"SUM(sale_items.unit_cost * sale_items.quantity) as total_cost, SUM(sale_items.profit) as total_profit").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.tenant_id = ? AND sales.status = ? AND sales.created_at >= ? AND sales.created_at < ?",
			tenantID, "completed", r.Start, r.End).
		Group("sale_items.product_id").
		Order("total_qty DESC").
		Scan(&rows).Error
	return rows, err
}

// GetSalesReport returns the sales report for a date range
func (h *Handler) GetSalesReport(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	r, ok := h.resolveRange(c)
	if !ok {
		return
	}

	report, err := h.buildSalesReport(tenantID, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// GetProductSalesReport returns per-product sales totals for a date range
func (h *Handler) GetProductSalesReport(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	r, ok := h.resolveRange(c)
	if !ok {
		return
	}

	rows, err := h.productSalesRows(tenantID, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ExportSalesReport writes the sales report as an xlsx download
func (h *Handler) ExportSalesReport(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	r, ok := h.resolveRange(c)
	if !ok {
		return
	}

	report, err := h.buildSalesReport(tenantID, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	products, err := h.productSalesRows(tenantID, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ringkasan"
	f.SetSheetName("Sheet1", sheet)

	summary := [][]interface{}{
		{"Laporan Penjualan", ""},
		{"Periode", fmt.Sprintf("%s s/d %s", report.StartDate, report.EndDate)},
		{"", ""},
		{"Total Penjualan", report.TotalSales},
		{"Total Modal", report.TotalCost},
		{"Laba Kotor", report.GrossProfit},
		{"Jumlah Transaksi", report.TotalTransactions},
		{"Item Terjual", report.TotalItemsSold},
		{"Rata-rata per Transaksi", report.AveragePerTx},
	}
	for i, row := range summary {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue(sheet, cell, value)
		}
	}

	dailySheet := "Harian"
	f.NewSheet(dailySheet)
	dailyHeaders := []string{"Tanggal", "Penjualan", "Laba", "Transaksi", "Item Terjual"}
	for i, header := range dailyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(dailySheet, cell, header)
	}
	for i, day := range report.DailySales {
		values := []interface{}{day.Date, day.Sales, day.Profit, day.Transactions, day.ItemsSold}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(dailySheet, cell, value)
		}
	}

	productSheet := "Per Produk"
	f.NewSheet(productSheet)
	productHeaders := []string{"Produk", "Barcode", "Qty", "Penjualan", "Modal", "Laba"}
	for i, header := range productHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(productSheet, cell, header)
	}
	for i, row := range products {
		values := []interface{}{row.ProductName, row.Barcode, row.TotalQty, row.TotalSales, row.TotalCost, row.TotalProfit}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(productSheet, cell, value)
		}
	}

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(dailySheet, "A", "A", 14)
	f.SetColWidth(productSheet, "A", "A", 28)

	fileName := fmt.Sprintf("laporan_penjualan_%s_%s.xlsx", report.StartDate, report.EndDate)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}
}
