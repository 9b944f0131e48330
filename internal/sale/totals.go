package sale

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/database"
)

// buildItem snapshots a product into a sale line. The stable product id
// is carried for aggregation; name and first barcode are display copies.
// A non-nil priceOverride replaces the catalog price for this line
// (haggling, bundle pricing).
func buildItem(product *database.Product, quantity int, tokenCode string, priceOverride *float64) database.SaleItem {
	barcode := product.Barcodes
	if idx := strings.Index(barcode, ","); idx >= 0 {
		barcode = barcode[:idx]
	}

	price := product.Price
	if priceOverride != nil && *priceOverride >= 0 {
		price = *priceOverride
	}

	return database.SaleItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Barcode:     strings.TrimSpace(barcode),
		UnitPrice:   price,
		UnitCost:    product.Cost,
		Quantity:    quantity,
		Subtotal:    price * float64(quantity),
		Profit:      (price - product.Cost) * float64(quantity),
		TokenCode:   tokenCode,
	}
}

// sumTotals returns the sale total and profit over its items
func sumTotals(items []database.SaleItem) (float64, float64) {
	var total, profit float64
	for _, item := range items {
		total += item.Subtotal
		profit += item.Profit
	}
	return total, profit
}

// changeDue computes the change for cash payments; non-cash methods
// have no change
func changeDue(paymentMethod string, cashReceived, total float64) float64 {
	if paymentMethod != database.PaymentCash {
		return 0
	}
	change := cashReceived - total
	if change < 0 {
		change = 0
	}
	return change
}

// invoiceNumber formats a per-day sequential invoice number
func invoiceNumber(day time.Time, sequence int64) string {
	return fmt.Sprintf("INV-%s-%04d", day.Format("20060102"), sequence)
}

// subtractItem removes one line's contribution from the sale totals.
// Total is floored at zero so rounding drift never produces a negative
// invoice.
func subtractItem(total, profit float64, item database.SaleItem) (float64, float64) {
	newTotal := total - item.Subtotal
	if newTotal < 0 {
		newTotal = 0
	}
	return newTotal, profit - item.Profit
}

// invoiceLockKey derives the per-tenant advisory lock key that serializes
// invoice numbering. Stable across processes: the key is the first 8
// bytes of the tenant uuid.
func invoiceLockKey(tenantID uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(tenantID[:8]))
}

// planCheckout validates the requested lines against their locked
// products and returns the snapshot items plus each product's resulting
// stock. Lines for the same product draw down one running balance, so a
// basket cannot oversell through duplicate lines.
func planCheckout(products map[uuid.UUID]*database.Product, lines []SaleItemRequest) ([]database.SaleItem, map[uuid.UUID]int, error) {
	items := make([]database.SaleItem, 0, len(lines))
	targets := make(map[uuid.UUID]int, len(products))

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, nil, fmt.Errorf("product %s not found", line.ProductID)
		}

		balance, ok := targets[line.ProductID]
		if !ok {
			balance = product.StockQty
		}
		balance -= line.Quantity
		if balance < 0 {
			return nil, nil, fmt.Errorf("insufficient stock for %s", product.Name)
		}
		targets[line.ProductID] = balance

		items = append(items, buildItem(product, line.Quantity, line.TokenCode, line.UnitPrice))
	}

	return items, targets, nil
}

// validateCashReceived rejects cash underpayment. Zero means the cashier
// did not record the tendered amount.
func validateCashReceived(method string, received, total float64) error {
	if method != database.PaymentCash || received == 0 {
		return nil
	}
	if received < total {
		return fmt.Errorf("cash received %.0f is less than the total %.0f", received, total)
	}
	return nil
}

var (
	errVoidedSaleFrozen = fmt.Errorf("voided sales cannot be modified")
	errMultiItemDelete  = fmt.Errorf("deleting items from a multi-item sale is not allowed")
)

// canDeleteItem is the policy for removing a line from a sale. Voided
// sales are frozen because their stock was already restored; cashiers
// may only break up single-item sales.
func canDeleteItem(status string, itemCount int, role string) error {
	if status == "voided" {
		return errVoidedSaleFrozen
	}
	if itemCount > 1 && role != "owner" {
		return errMultiItemDelete
	}
	return nil
}

// checkoutError marks a checkout failure caused by the request itself
// rather than by the server
type checkoutError struct {
	msg string
}

func (e checkoutError) Error() string {
	return e.msg
}
