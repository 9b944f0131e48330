package stock

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Adjustment modes accepted by the adjust endpoint
const (
	ModeSet      = "set"
	ModeAdd      = "add"
	ModeSubtract = "subtract"
)

var ErrInsufficientStock = fmt.Errorf("insufficient stock")

// resolveTarget turns an adjustment request into an absolute stock value.
// Subtract clamps at zero; stock never goes negative.
func resolveTarget(current int, mode string, value int) (int, error) {
	if value < 0 {
		return 0, fmt.Errorf("value must not be negative")
	}
	switch mode {
	case ModeSet:
		return value, nil
	case ModeAdd:
		return current + value, nil
	case ModeSubtract:
		target := current - value
		if target < 0 {
			target = 0
		}
		return target, nil
	default:
		return 0, fmt.Errorf("unknown adjustment mode %q", mode)
	}
}

// deriveEntry maps a stock change to its ledger entry type and quantity.
// The type always follows the sign of the delta, quantity is the absolute
// delta, and a no-op change is recorded as an adjustment with quantity 0.
func deriveEntry(previous, next int) (string, int) {
	switch {
	case next > previous:
		return database.StockAddition, next - previous
	case next < previous:
		return database.StockReduction, previous - next
	default:
		return database.StockAdjustment, 0
	}
}

// LockProduct fetches a product row with a FOR UPDATE lock so concurrent
// stock mutations on the same product serialize instead of losing updates.
// Must be called inside a transaction.
func LockProduct(tx *gorm.DB, tenantID, productID uuid.UUID) (*database.Product, error) {
	var product database.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", productID, tenantID).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Apply writes the product's new stock value and appends the matching
// ledger entry in one place. Every stock-mutating operation goes through
// here; there is no other path that touches stock_qty.
func Apply(tx *gorm.DB, userID uuid.UUID, product *database.Product, newStock int, reason, notes string) (*database.StockEntry, error) {
	if newStock < 0 {
		return nil, ErrInsufficientStock
	}

	previous := product.StockQty
	entryType, quantity := deriveEntry(previous, newStock)

	if err := tx.Model(product).Update("stock_qty", newStock).Error; err != nil {
		return nil, err
	}
	product.StockQty = newStock

	entry := database.StockEntry{
		TenantID:      product.TenantID,
		ProductID:     product.ID,
		UserID:        userID,
		Type:          entryType,
		Quantity:      quantity,
		PreviousStock: previous,
		NewStock:      newStock,
		Reason:        reason,
		Notes:         notes,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}
