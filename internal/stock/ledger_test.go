package stock

import (
	"testing"

	"github.com/kasirku/kasirku-backend/pkg/database"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name    string
		current int
		mode    string
		value   int
		want    int
		wantErr bool
	}{
		{"set absolute", 30, ModeSet, 12, 12, false},
		{"set zero", 30, ModeSet, 0, 0, false},
		{"add relative", 30, ModeAdd, 20, 50, false},
		{"subtract relative", 30, ModeSubtract, 10, 20, false},
		{"subtract clamps at zero", 5, ModeSubtract, 30, 0, false},
		{"subtract exact to zero", 5, ModeSubtract, 5, 0, false},
		{"negative value rejected", 30, ModeSet, -1, 0, true},
		{"unknown mode rejected", 30, "replace", 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTarget(tt.current, tt.mode, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveTarget: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDeriveEntry(t *testing.T) {
	tests := []struct {
		name         string
		previous     int
		next         int
		wantType     string
		wantQuantity int
	}{
		{"increase is addition", 30, 50, database.StockAddition, 20},
		{"decrease is reduction", 50, 45, database.StockReduction, 5},
		{"no change is adjustment", 10, 10, database.StockAdjustment, 0},
		{"drain to zero is reduction", 5, 0, database.StockReduction, 5},
		{"from zero is addition", 0, 7, database.StockAddition, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entryType, quantity := deriveEntry(tt.previous, tt.next)
			if entryType != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, entryType)
			}
			if quantity != tt.wantQuantity {
				t.Fatalf("expected quantity %d, got %d", tt.wantQuantity, quantity)
			}
		})
	}
}

// new_stock must always equal previous_stock plus or minus quantity,
// consistent with the derived type.
func TestDeriveEntryArithmetic(t *testing.T) {
	for previous := 0; previous <= 40; previous += 5 {
		for next := 0; next <= 40; next += 3 {
			entryType, quantity := deriveEntry(previous, next)
			switch entryType {
			case database.StockAddition:
				if previous+quantity != next {
					t.Fatalf("addition: %d + %d != %d", previous, quantity, next)
				}
			case database.StockReduction:
				if previous-quantity != next {
					t.Fatalf("reduction: %d - %d != %d", previous, quantity, next)
				}
			case database.StockAdjustment:
				if quantity != 0 || previous != next {
					t.Fatalf("adjustment with nonzero delta: prev %d next %d qty %d", previous, next, quantity)
				}
			}
		}
	}
}

func TestResolveRangeRejectsMalformedDates(t *testing.T) {
	if _, err := resolveRange("custom", "2026-13-40", "2026-01-31"); err == nil {
		t.Fatalf("expected error for malformed start date")
	}
	if _, err := resolveRange("custom", "2026-01-01", "not-a-date"); err == nil {
		t.Fatalf("expected error for malformed end date")
	}
	if _, err := resolveRange("custom", "2026-01-01", "2026-01-31"); err != nil {
		t.Fatalf("expected valid custom range, got %v", err)
	}
}
