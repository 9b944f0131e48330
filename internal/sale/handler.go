package sale

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/internal/stock"
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

type SaleItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	UnitPrice *float64  `json:"unit_price"` // optional price override
	TokenCode string    `json:"token_code"`
}

type CreateSaleRequest struct {
	Items            []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod    string            `json:"payment_method" binding:"omitempty,oneof=cash digital bank"`
	PaymentChannelID *uuid.UUID        `json:"payment_channel_id"`
	CashReceived     float64           `json:"cash_received"`
	CustomerName     string            `json:"customer_name"`
	Notes            string            `json:"notes"`
}

// Create processes a checkout: the sale, its items, the stock decrements
// and their ledger entries are written in a single transaction
func (h *Handler) Create(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID, _ := uuid.Parse(c.GetString("tenant_id"))
	userID, _ := uuid.Parse(c.GetString("user_id"))

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = database.PaymentCash
	}

	if req.PaymentChannelID != nil {
		var channel database.PaymentChannel
		if err := h.db.Where("id = ? AND tenant_id = ?", req.PaymentChannelID, tenantID).First(&channel).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment channel not found"})
			return
		}
	}

	var sale database.Sale
	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Serialize invoice numbering per tenant. Product row locks alone
		// do not order two checkouts that touch disjoint products, and
		// without ordering both would count the same sequence number.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", invoiceLockKey(tenantID)).Error; err != nil {
			return err
		}

		products := make(map[uuid.UUID]*database.Product, len(req.Items))
		for _, line := range req.Items {
			if _, ok := products[line.ProductID]; ok {
				continue
			}
			product, err := stock.LockProduct(tx, tenantID, line.ProductID)
			if err == gorm.ErrRecordNotFound {
				return checkoutError{fmt.Sprintf("product %s not found", line.ProductID)}
			}
			if err != nil {
				return err
			}
			products[line.ProductID] = product
		}

		items, targets, err := planCheckout(products, req.Items)
		if err != nil {
			return checkoutError{err.Error()}
		}

		for productID, target := range targets {
			if _, err := stock.Apply(tx, userID, products[productID], target, "sale", ""); err != nil {
				return err
			}
		}

		total, profit := sumTotals(items)
		if err := validateCashReceived(paymentMethod, req.CashReceived, total); err != nil {
			return checkoutError{err.Error()}
		}

		now := time.Now()
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		var todayCount int64
		if err := tx.Unscoped().Model(&database.Sale{}).
			Where("tenant_id = ? AND created_at >= ?", tenantID, todayStart).
			Count(&todayCount).Error; err != nil {
			return err
		}

		sale = database.Sale{
			TenantID:         tenantID,
			InvoiceNumber:    invoiceNumber(now, todayCount+1),
			UserID:           userID,
			Items:            items,
			Total:            total,
			Profit:           profit,
			PaymentMethod:    paymentMethod,
			PaymentChannelID: req.PaymentChannelID,
			CashReceived:     req.CashReceived,
			ChangeDue:        changeDue(paymentMethod, req.CashReceived, total),
			CustomerName:     req.CustomerName,
			Notes:            req.Notes,
			Status:           "completed",
		}

		return tx.Create(&sale).Error
	})
	if err != nil {
		var ce checkoutError
		if errors.As(err, &ce) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ce.msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	h.logger.LogSale(c, sale.ID, sale.InvoiceNumber, sale.Total, len(sale.Items))

	// Reload with associations
	h.db.Preload("Items").Preload("PaymentChannel").First(&sale, sale.ID)

	c.JSON(http.StatusCreated, gin.H{"data": sale})
}

type ListSalesRequest struct {
	Period        string `form:"period"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	PaymentMethod string `form:"payment_method"`
	Limit         int    `form:"limit"`
}

// List returns sales for the tenant, newest first
func (h *Handler) List(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var req ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := h.db.Where("tenant_id = ?", tenantID)

	if req.Period != "" {
		r, err := resolveRange(req.Period, req.StartDate, req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		query = query.Where("created_at >= ? AND created_at < ?", r.Start, r.End)
	}

	if req.PaymentMethod != "" {
		query = query.Where("payment_method = ?", req.PaymentMethod)
	}

	var sales []database.Sale
	if err := query.Preload("Items").
		Preload("PaymentChannel").
		Order("created_at DESC").
		Limit(limit).
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}

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

// Get returns a single sale with its items
func (h *Handler) Get(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	saleID := c.Param("id")

	var sale database.Sale
	if err := h.db.Where("id = ? AND tenant_id = ?", saleID, tenantID).
		Preload("Items").
		Preload("PaymentChannel").
		Preload("User").
		First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}

type VoidSaleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Void marks a sale voided and restores the stock it consumed
func (h *Handler) Void(c *gin.Context) {
	tenantID, _ := uuid.Parse(c.GetString("tenant_id"))
	userID, _ := uuid.Parse(c.GetString("user_id"))
	saleID := c.Param("id")

	var req VoidSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sale database.Sale
	if err := h.db.Where("id = ? AND tenant_id = ?", saleID, tenantID).
		Preload("Items").
		First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	if sale.Status == "voided" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sale already voided"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			product, err := stock.LockProduct(tx, tenantID, item.ProductID)
			if err == gorm.ErrRecordNotFound {
				// Product deleted since the sale; nothing to restore
				continue
			}
			if err != nil {
				return err
			}
			reason := fmt.Sprintf("void %s", sale.InvoiceNumber)
			if _, err := stock.Apply(tx, userID, product, product.StockQty+item.Quantity, reason, req.Reason); err != nil {
				return err
			}
		}

		return tx.Model(&sale).Update("status", "voided").Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to void sale"})
		return
	}

	h.logger.LogVoid(c, sale.ID, sale.InvoiceNumber, req.Reason)

	sale.Status = "voided"
	c.JSON(http.StatusOK, gin.H{"data": sale})
}

// DeleteItem removes one line from a sale and recomputes the stored
// totals. Removing the last line removes the sale itself. Cashiers may
// only delete single-item sales; the distinct code lets the client offer
// whole-sale deletion as a fallback.
func (h *Handler) DeleteItem(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	saleID := c.Param("id")
	itemID := c.Param("item_id")
	role := c.GetString("role")

	var sale database.Sale
	if err := h.db.Where("id = ? AND tenant_id = ?", saleID, tenantID).
		Preload("Items").
		First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	var item *database.SaleItem
	for i := range sale.Items {
		if sale.Items[i].ID.String() == itemID {
			item = &sale.Items[i]
			break
		}
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale item not found"})
		return
	}

	if err := canDeleteItem(sale.Status, len(sale.Items), role); err != nil {
		if err == errVoidedSaleFrozen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Voided sales cannot be modified"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Deleting items from a multi-item sale is not allowed",
			"code":  "SALE_ITEM_DELETE_FORBIDDEN",
		})
		return
	}

	saleDeleted := false
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(item).Error; err != nil {
			return err
		}

		if len(sale.Items) == 1 {
			saleDeleted = true
			return tx.Delete(&sale).Error
		}

		newTotal, newProfit := subtractItem(sale.Total, sale.Profit, *item)
		return tx.Model(&sale).Updates(map[string]interface{}{
			"total":  newTotal,
			"profit": newProfit,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sale item"})
		return
	}

	h.logger.LogDelete(c, "sale_item", item.ID, map[string]interface{}{
		"sale_id":      sale.ID,
		"product_name": item.ProductName,
		"subtotal":     item.Subtotal,
	})

	if saleDeleted {
		c.JSON(http.StatusOK, gin.H{"message": "Sale deleted", "sale_deleted": true})
		return
	}

	h.db.Preload("Items").First(&sale, sale.ID)
	c.JSON(http.StatusOK, gin.H{"data": sale})
}

// Delete removes a sale and all its items
func (h *Handler) Delete(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	saleID := c.Param("id")

	var sale database.Sale
	if err := h.db.Where("id = ? AND tenant_id = ?", saleID, tenantID).First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&database.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sale"})
		return
	}

	h.logger.LogDelete(c, "sale", sale.ID, map[string]interface{}{
		"invoice_number": sale.InvoiceNumber,
		"total":          sale.Total,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted"})
}
