package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
	"github.com/fernandokenjii/desafio-database-relations/internal/storage/memory"
)

func newLineItems() []domain.OrderLineItem {
	now := time.Now().UTC()
	return []domain.OrderLineItem{
		{ID: "item-1", ProductID: "product-1", Qty: 3, PriceMinor: 500, CreatedAt: now},
	}
}

func TestOrderRepository_CreateAssignsIdentity(t *testing.T) {
	repo := memory.NewOrderRepository()

	order, err := repo.Create("customer-1", newLineItems())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.ID == "" {
		t.Fatal("expected assigned order id")
	}
	if order.CreatedAt.IsZero() {
		t.Fatal("expected assigned created_at")
	}
	if order.AmountMinor != 1500 {
		t.Fatalf("expected amount 1500, got %d", order.AmountMinor)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if len(stored.Items) != 1 || stored.Items[0].PriceMinor != 500 {
		t.Fatalf("unexpected stored items: %+v", stored.Items)
	}
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := memory.NewOrderRepository()

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	repo := memory.NewOrderRepository()
	if _, err := repo.Create("customer-1", newLineItems()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.Create("customer-1", newLineItems()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.Create("customer-2", newLineItems()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListByCustomer("customer-1", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}

	limited, err := repo.ListByCustomer("customer-1", 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 order with limit, got %d", len(limited))
	}
}

// Заказ после сохранения не мутируется: изменения возвращённой копии не
// должны попадать в хранилище.
func TestOrderRepository_ReturnsCopies(t *testing.T) {
	repo := memory.NewOrderRepository()

	order, err := repo.Create("customer-1", newLineItems())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	order.Items[0].PriceMinor = 999

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Items[0].PriceMinor != 500 {
		t.Fatalf("stored order mutated externally: %d", stored.Items[0].PriceMinor)
	}
}
