package sale

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kasirku/kasirku-backend/pkg/database"
)

func TestBuildItemSnapshotsProduct(t *testing.T) {
	product := &database.Product{
		Name:     "Indomie Goreng",
		Barcodes: "8998866200578, 8998866200579",
		Price:    3500,
		Cost:     2800,
	}
	product.ID = uuid.New()

	item := buildItem(product, 4, "", nil)

	if item.ProductID != product.ID {
		t.Fatalf("expected stable product id to be carried")
	}
	if item.ProductName != "Indomie Goreng" {
		t.Fatalf("expected name snapshot, got %q", item.ProductName)
	}
	if item.Barcode != "8998866200578" {
		t.Fatalf("expected first barcode, got %q", item.Barcode)
	}
	if item.Subtotal != 14000 {
		t.Fatalf("expected subtotal 14000, got %v", item.Subtotal)
	}
	if item.Profit != 2800 {
		t.Fatalf("expected profit 2800, got %v", item.Profit)
	}
}

func TestBuildItemPriceOverride(t *testing.T) {
	product := &database.Product{
		Name:  "Beras Premium 5kg",
		Price: 68000,
		Cost:  61000,
	}
	product.ID = uuid.New()

	override := 65000.0
	item := buildItem(product, 2, "", &override)

	if item.UnitPrice != 65000 {
		t.Fatalf("expected overridden unit price 65000, got %v", item.UnitPrice)
	}
	if item.Subtotal != 130000 {
		t.Fatalf("expected subtotal 130000, got %v", item.Subtotal)
	}
	if item.Profit != 8000 {
		t.Fatalf("expected profit 8000 from overridden price, got %v", item.Profit)
	}
	if item.UnitCost != 61000 {
		t.Fatalf("cost snapshot must not be affected by the override, got %v", item.UnitCost)
	}
}

func TestSumTotalsMatchesItems(t *testing.T) {
	items := []database.SaleItem{
		{Subtotal: 14000, Profit: 2800},
		{Subtotal: 5000, Profit: 3000},
		{Subtotal: 20000, Profit: 0},
	}

	total, profit := sumTotals(items)
	if total != 39000 {
		t.Fatalf("expected total 39000, got %v", total)
	}
	if profit != 5800 {
		t.Fatalf("expected profit 5800, got %v", profit)
	}
}

func TestSubtractItemRecomputesTotals(t *testing.T) {
	total, profit := sumTotals([]database.SaleItem{
		{Subtotal: 14000, Profit: 2800},
		{Subtotal: 5000, Profit: 3000},
	})

	newTotal, newProfit := subtractItem(total, profit, database.SaleItem{Subtotal: 5000, Profit: 3000})
	if newTotal != 14000 {
		t.Fatalf("expected total 14000 after deletion, got %v", newTotal)
	}
	if newProfit != 2800 {
		t.Fatalf("expected profit 2800 after deletion, got %v", newProfit)
	}
}

func TestSubtractItemFloorsTotalAtZero(t *testing.T) {
	newTotal, _ := subtractItem(4000, 1000, database.SaleItem{Subtotal: 5000, Profit: 500})
	if newTotal != 0 {
		t.Fatalf("expected total floored at 0, got %v", newTotal)
	}
}

func TestChangeDue(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		cashReceived float64
		total        float64
		want         float64
	}{
		{"cash with change", database.PaymentCash, 50000, 39000, 11000},
		{"cash exact", database.PaymentCash, 39000, 39000, 0},
		{"cash short never negative", database.PaymentCash, 30000, 39000, 0},
		{"digital has no change", database.PaymentDigital, 50000, 39000, 0},
		{"bank has no change", database.PaymentBank, 50000, 39000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := changeDue(tt.method, tt.cashReceived, tt.total); got != tt.want {
				t.Fatalf("expected change %v, got %v", tt.want, got)
			}
		})
	}
}

func TestInvoiceNumberFormat(t *testing.T) {
	day := time.Date(2026, 8, 31, 14, 30, 0, 0, time.Local)
	if got := invoiceNumber(day, 7); got != "INV-20260831-0007" {
		t.Fatalf("unexpected invoice number %q", got)
	}
	if got := invoiceNumber(day, 1234); got != "INV-20260831-1234" {
		t.Fatalf("unexpected invoice number %q", got)
	}
}

func TestInvoiceLockKeyStable(t *testing.T) {
	a := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	b := uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

	if invoiceLockKey(a) != invoiceLockKey(a) {
		t.Fatalf("lock key must be stable for the same tenant")
	}
	if invoiceLockKey(a) == invoiceLockKey(b) {
		t.Fatalf("different tenants must not share a lock key")
	}
}

func checkoutProduct(name string, price, cost float64, stockQty int) *database.Product {
	p := &database.Product{Name: name, Price: price, Cost: cost, StockQty: stockQty}
	p.ID = uuid.New()
	return p
}

func TestPlanCheckoutDecrementsStock(t *testing.T) {
	p := checkoutProduct("Teh Botol Sosro 450ml", 5000, 3800, 30)
	products := map[uuid.UUID]*database.Product{p.ID: p}

	items, targets, err := planCheckout(products, []SaleItemRequest{
		{ProductID: p.ID, Quantity: 20},
	})
	if err != nil {
		t.Fatalf("planCheckout: %v", err)
	}
	if targets[p.ID] != 10 {
		t.Fatalf("expected target stock 10, got %d", targets[p.ID])
	}
	// The ledger delta derived from this plan matches the quantity sold
	if p.StockQty-targets[p.ID] != 20 {
		t.Fatalf("stock decrement %d does not match quantity 20", p.StockQty-targets[p.ID])
	}
	if len(items) != 1 || items[0].Quantity != 20 || items[0].Subtotal != 100000 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestPlanCheckoutAggregatesDuplicateLines(t *testing.T) {
	p := checkoutProduct("Indomie Goreng", 3500, 2800, 5)
	products := map[uuid.UUID]*database.Product{p.ID: p}

	// Two lines totalling 6 against stock 5 must abort even though each
	// line alone would fit
	_, _, err := planCheckout(products, []SaleItemRequest{
		{ProductID: p.ID, Quantity: 3},
		{ProductID: p.ID, Quantity: 3},
	})
	if err == nil {
		t.Fatalf("expected insufficient stock across duplicate lines")
	}

	items, targets, err := planCheckout(products, []SaleItemRequest{
		{ProductID: p.ID, Quantity: 3},
		{ProductID: p.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("planCheckout: %v", err)
	}
	if targets[p.ID] != 0 {
		t.Fatalf("expected stock drained to 0, got %d", targets[p.ID])
	}
	if len(items) != 2 {
		t.Fatalf("expected both lines kept, got %d", len(items))
	}
}

func TestPlanCheckoutInsufficientStock(t *testing.T) {
	p := checkoutProduct("Beras Premium 5kg", 68000, 61000, 2)
	products := map[uuid.UUID]*database.Product{p.ID: p}

	_, _, err := planCheckout(products, []SaleItemRequest{
		{ProductID: p.ID, Quantity: 3},
	})
	if err == nil {
		t.Fatalf("expected insufficient stock error")
	}
	if p.StockQty != 2 {
		t.Fatalf("failed plan must not touch the product, got stock %d", p.StockQty)
	}
}

func TestPlanCheckoutUnknownProduct(t *testing.T) {
	_, _, err := planCheckout(map[uuid.UUID]*database.Product{}, []SaleItemRequest{
		{ProductID: uuid.New(), Quantity: 1},
	})
	if err == nil {
		t.Fatalf("expected error for unknown product")
	}
}

func TestValidateCashReceived(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		received float64
		total    float64
		wantErr  bool
	}{
		{"cash underpayment rejected", database.PaymentCash, 30000, 39000, true},
		{"cash exact", database.PaymentCash, 39000, 39000, false},
		{"cash overpayment", database.PaymentCash, 50000, 39000, false},
		{"cash unrecorded", database.PaymentCash, 0, 39000, false},
		{"digital ignores tendered amount", database.PaymentDigital, 100, 39000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCashReceived(tt.method, tt.received, tt.total)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCanDeleteItem(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		itemCount int
		role      string
		want      error
	}{
		{"voided sale is frozen", "voided", 1, "owner", errVoidedSaleFrozen},
		{"voided beats role", "voided", 3, "cashier", errVoidedSaleFrozen},
		{"cashier multi-item forbidden", "completed", 2, "cashier", errMultiItemDelete},
		{"owner multi-item allowed", "completed", 2, "owner", nil},
		{"cashier single item allowed", "completed", 1, "cashier", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canDeleteItem(tt.status, tt.itemCount, tt.role); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCheckoutErrorClassification(t *testing.T) {
	var ce checkoutError
	if !errors.As(error(checkoutError{msg: "insufficient stock"}), &ce) {
		t.Fatalf("checkout errors must be recognizable for 400 responses")
	}
	if errors.As(errors.New("connection reset"), &ce) {
		t.Fatalf("server-side errors must not be classified as request faults")
	}
}
