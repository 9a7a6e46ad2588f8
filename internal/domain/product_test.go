package domain_test

import (
	"testing"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
)

func TestProductRecordValidate(t *testing.T) {
	cases := []struct {
		name    string
		product domain.ProductRecord
		wantErr bool
	}{
		{
			name:    "valid",
			product: domain.ProductRecord{Name: "keyboard", PriceMinor: 500, AvailableQty: 10},
		},
		{
			name:    "missing name",
			product: domain.ProductRecord{PriceMinor: 500, AvailableQty: 10},
			wantErr: true,
		},
		{
			name:    "negative price",
			product: domain.ProductRecord{Name: "keyboard", PriceMinor: -1, AvailableQty: 10},
			wantErr: true,
		},
		{
			name:    "negative quantity",
			product: domain.ProductRecord{Name: "keyboard", PriceMinor: 500, AvailableQty: -1},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.product.Validate()
			if tc.wantErr && len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if !tc.wantErr && len(errs) != 0 {
				t.Fatalf("expected no validation errors, got %v", errs)
			}
		})
	}
}

func TestMergeAdjustments_CollapsesDuplicates(t *testing.T) {
	items := []domain.LineItemRequest{
		{ProductID: "product-1", Qty: 2},
		{ProductID: "product-2", Qty: 1},
		{ProductID: "product-1", Qty: 3},
	}

	merged := domain.MergeAdjustments(items)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged adjustments, got %d", len(merged))
	}
	if merged[0].ProductID != "product-1" || merged[0].Qty != 5 {
		t.Fatalf("unexpected first adjustment: %+v", merged[0])
	}
	if merged[1].ProductID != "product-2" || merged[1].Qty != 1 {
		t.Fatalf("unexpected second adjustment: %+v", merged[1])
	}
}

func TestMergeAdjustments_CanonicalOrder(t *testing.T) {
	forward := domain.MergeAdjustments([]domain.LineItemRequest{
		{ProductID: "product-1", Qty: 1},
		{ProductID: "product-2", Qty: 1},
	})
	reverse := domain.MergeAdjustments([]domain.LineItemRequest{
		{ProductID: "product-2", Qty: 1},
		{ProductID: "product-1", Qty: 1},
	})

	// Одинаковый порядок независимо от порядка строк запроса: строки
	// товаров в хранилище блокируются одной последовательностью.
	if len(forward) != 2 || len(reverse) != 2 {
		t.Fatalf("expected 2 adjustments each, got %d and %d", len(forward), len(reverse))
	}
	for i := range forward {
		if forward[i].ProductID != reverse[i].ProductID {
			t.Fatalf("adjustment order differs at %d: %q vs %q", i, forward[i].ProductID, reverse[i].ProductID)
		}
	}
	if forward[0].ProductID != "product-1" || forward[1].ProductID != "product-2" {
		t.Fatalf("expected sorted product ids, got %+v", forward)
	}
}

func TestMergeAdjustments_Empty(t *testing.T) {
	if merged := domain.MergeAdjustments(nil); len(merged) != 0 {
		t.Fatalf("expected no adjustments, got %v", merged)
	}
}
