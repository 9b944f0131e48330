package activitylog

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"gorm.io/gorm"
)

// Logger handles activity logging for audit trail
type Logger struct {
	db *gorm.DB
}

// NewLogger creates a new activity logger
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

// LogActivity creates an activity log entry
func (l *Logger) LogActivity(c *gin.Context, action, entityType string, entityID *uuid.UUID, details interface{}) error {
	tenantIDStr := c.GetString("tenant_id")
	tenantID, _ := uuid.Parse(tenantIDStr)
	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	detailsJSON := ""
	if details != nil {
		if jsonBytes, err := json.Marshal(details); err == nil {
			detailsJSON = string(jsonBytes)
		}
	}

	log := database.ActivityLog{
		TenantID:   tenantID,
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
		IPAddress:  c.ClientIP(),
	}

	return l.db.Create(&log).Error
}

// LogCreate logs a create action
func (l *Logger) LogCreate(c *gin.Context, entityType string, entityID uuid.UUID, newData interface{}) error {
	return l.LogActivity(c, "create", entityType, &entityID, map[string]interface{}{
		"new": newData,
	})
}

// LogUpdate logs an update action with old and new values
func (l *Logger) LogUpdate(c *gin.Context, entityType string, entityID uuid.UUID, oldData, newData interface{}) error {
	return l.LogActivity(c, "update", entityType, &entityID, map[string]interface{}{
		"old": oldData,
		"new": newData,
	})
}

// LogDelete logs a delete action
func (l *Logger) LogDelete(c *gin.Context, entityType string, entityID uuid.UUID, oldData interface{}) error {
	return l.LogActivity(c, "delete", entityType, &entityID, map[string]interface{}{
		"deleted": oldData,
	})
}

// LogSale logs a completed checkout
func (l *Logger) LogSale(c *gin.Context, saleID uuid.UUID, invoiceNumber string, total float64, itemCount int) error {
	return l.LogActivity(c, "sale", "sale", &saleID, map[string]interface{}{
		"invoice_number": invoiceNumber,
		"total":          total,
		"item_count":     itemCount,
	})
}

// LogVoid logs a voided sale with the reason given by the cashier
func (l *Logger) LogVoid(c *gin.Context, saleID uuid.UUID, invoiceNumber, reason string) error {
	return l.LogActivity(c, "void", "sale", &saleID, map[string]interface{}{
		"invoice_number": invoiceNumber,
		"reason":         reason,
	})
}

// LogStockChange logs a stock mutation alongside its ledger entry
func (l *Logger) LogStockChange(c *gin.Context, productID uuid.UUID, entryType string, previousStock, newStock int, reason string) error {
	return l.LogActivity(c, "stock_adjust", "product", &productID, map[string]interface{}{
		"type":           entryType,
		"previous_stock": previousStock,
		"new_stock":      newStock,
		"reason":         reason,
	})
}
