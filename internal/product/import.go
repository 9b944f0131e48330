package product

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/internal/stock"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	Errors       []string `json:"errors"`
}

type importRow struct {
	ProductName string
	Barcode     string
	StockQty    int
	Price       float64
	Cost        float64
}

// ImportFile handles xlsx/csv upload for bulk catalog import. Stock
// changes on existing products go through the ledger like any other
// stock mutation.
func (h *Handler) ImportFile(c *gin.Context) {
	tenantIDStr := c.GetString("tenant_id")
	tenantID, _ := uuid.Parse(tenantIDStr)
	userID, _ := uuid.Parse(c.GetString("user_id"))

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	var rows []importRow
	fileName := strings.ToLower(header.Filename)

	if strings.HasSuffix(fileName, ".xlsx") || strings.HasSuffix(fileName, ".xls") {
		rows, err = parseExcel(file)
	} else if strings.HasSuffix(fileName, ".csv") {
		rows, err = parseCSV(file)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file format. Please upload .xlsx or .csv"})
		return
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse file: %v", err)})
		return
	}

	result := ImportResult{
		TotalRows: len(rows),
		Errors:    []string{},
	}

	for i, row := range rows {
		if row.ProductName == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Product name is required", i+2))
			result.FailedCount++
			continue
		}

		var existing database.Product
		found := false

		if row.Barcode != "" {
			if err := h.db.Where("tenant_id = ? AND (barcodes = ? OR barcodes LIKE ? OR barcodes LIKE ? OR barcodes LIKE ?)",
				tenantIDStr, row.Barcode, row.Barcode+",%", "%,"+row.Barcode, "%,"+row.Barcode+",%").
				First(&existing).Error; err == nil {
				found = true
			}
		}
		if !found {
			if err := h.db.Where("tenant_id = ? AND name = ?", tenantIDStr, row.ProductName).First(&existing).Error; err == nil {
				found = true
			}
		}

		if found {
			err := h.db.Transaction(func(tx *gorm.DB) error {
				product, err := stock.LockProduct(tx, tenantID, existing.ID)
				if err != nil {
					return err
				}

				updates := map[string]interface{}{}
				if row.Price > 0 {
					updates["price"] = row.Price
				}
				if row.Cost > 0 {
					updates["cost"] = row.Cost
				}
				if len(updates) > 0 {
					if err := tx.Model(product).Updates(updates).Error; err != nil {
						return err
					}
				}

				if row.StockQty != product.StockQty {
					_, err = stock.Apply(tx, userID, product, row.StockQty, "import", header.Filename)
				}
				return err
			})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Failed to update %s - %v", i+2, row.ProductName, err))
				result.FailedCount++
				continue
			}
			result.SuccessCount++
		} else {
			newProduct := database.Product{
				TenantID: tenantID,
				Name:     row.ProductName,
				Barcodes: row.Barcode,
				StockQty: row.StockQty,
				Price:    row.Price,
				Cost:     row.Cost,
				IsActive: true,
			}

			if err := h.db.Create(&newProduct).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Failed to create %s - %v", i+2, row.ProductName, err))
				result.FailedCount++
				continue
			}
			result.SuccessCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    result,
		"message": fmt.Sprintf("Import completed: %d success, %d failed", result.SuccessCount, result.FailedCount),
	})
}

// parseExcel parses .xlsx files
func parseExcel(file io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	return parseRows(rows)
}

// parseCSV parses .csv files
func parseCSV(file io.Reader) ([]importRow, error) {
	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return parseRows(records)
}

func parseRows(rows [][]string) ([]importRow, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have header row and at least one data row")
	}

	// Find column indices from header, accepting common column names
	colMap := make(map[string]int)
	for i, cell := range rows[0] {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		colMap[normalized] = i
	}

	pick := func(row []string, names ...string) string {
		for _, name := range names {
			if idx, ok := colMap[name]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
		}
		return ""
	}

	var result []importRow
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		r := importRow{
			ProductName: pick(row, "nama produk", "product name", "nama", "name", "produk"),
			Barcode:     pick(row, "barcode", "kode", "code", "kode produk"),
		}
		if val, err := strconv.Atoi(pick(row, "stok", "stock", "qty", "jumlah", "stock qty")); err == nil {
			r.StockQty = val
		}
		if val, err := strconv.ParseFloat(pick(row, "harga", "price", "harga jual"), 64); err == nil {
			r.Price = val
		}
		if val, err := strconv.ParseFloat(pick(row, "modal", "cost", "harga modal", "cogs"), 64); err == nil {
			r.Cost = val
		}

		if r.ProductName != "" {
			result = append(result, r)
		}
	}

	return result, nil
}

// DownloadTemplate generates a sample Excel template for import
func (h *Handler) DownloadTemplate(c *gin.Context) {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Nama Produk", "Barcode", "Stok", "Harga", "Modal"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, header)
	}

	sampleData := [][]interface{}{
		{"Indomie Goreng", "8998866200578", 100, 3500, 2800},
		{"Teh Botol Sosro 450ml", "8996001600146", 48, 5000, 3800},
		{"Beras Premium 5kg", "", 20, 68000, 61000},
	}

	for rowIdx, row := range sampleData {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue("Sheet1", cell, value)
		}
	}

	f.SetColWidth("Sheet1", "A", "A", 24)
	f.SetColWidth("Sheet1", "B", "B", 18)
	f.SetColWidth("Sheet1", "C", "E", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=template_import_produk.xlsx")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate template"})
		return
	}
}
