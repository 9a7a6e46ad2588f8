package memory

import (
	"errors"
	"sync"
	"testing"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
)

func seedProduct(t *testing.T, repo *productRepositoryInMemory, name string, price int64, qty int32) domain.ProductRecord {
	t.Helper()

	product, err := repo.Create(domain.ProductRecord{
		Name:         name,
		PriceMinor:   price,
		AvailableQty: qty,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestProductRepository_CreateRejectsDuplicateName(t *testing.T) {
	repo := NewProductRepository()
	seedProduct(t, repo, "keyboard", 500, 10)

	_, err := repo.Create(domain.ProductRecord{Name: "keyboard", PriceMinor: 700, AvailableQty: 1})
	if !errors.Is(err, domain.ErrProductNameTaken) {
		t.Fatalf("expected ErrProductNameTaken, got %v", err)
	}
}

func TestProductRepository_CreateRejectsInvalidFields(t *testing.T) {
	repo := NewProductRepository()

	if _, err := repo.Create(domain.ProductRecord{PriceMinor: 500, AvailableQty: 1}); !errors.Is(err, domain.ErrProductNameRequired) {
		t.Fatalf("expected ErrProductNameRequired, got %v", err)
	}
	if _, err := repo.Create(domain.ProductRecord{Name: "keyboard", PriceMinor: -100, AvailableQty: 1}); !errors.Is(err, domain.ErrProductPriceNegative) {
		t.Fatalf("expected ErrProductPriceNegative, got %v", err)
	}
	if _, err := repo.Create(domain.ProductRecord{Name: "keyboard", PriceMinor: 500, AvailableQty: -5}); !errors.Is(err, domain.ErrProductQtyNegative) {
		t.Fatalf("expected ErrProductQtyNegative, got %v", err)
	}
}

func TestProductRepository_FindAllByIDs_ReturnsOnlyMatches(t *testing.T) {
	repo := NewProductRepository()
	a := seedProduct(t, repo, "keyboard", 500, 10)
	b := seedProduct(t, repo, "mouse", 300, 5)

	records, err := repo.FindAllByIDs([]string{a.ID, "missing", b.ID})
	if err != nil {
		t.Fatalf("find all by ids: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestProductRepository_Decrement(t *testing.T) {
	repo := NewProductRepository()
	product := seedProduct(t, repo, "keyboard", 500, 10)

	updated, err := repo.Decrement([]domain.StockAdjustment{{ProductID: product.ID, Qty: 3}})
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if len(updated) != 1 || updated[0].AvailableQty != 7 {
		t.Fatalf("expected qty 7 after decrement, got %+v", updated)
	}
}

func TestProductRepository_DecrementInsufficientLeavesBatchUntouched(t *testing.T) {
	repo := NewProductRepository()
	a := seedProduct(t, repo, "keyboard", 500, 10)
	b := seedProduct(t, repo, "mouse", 300, 1)

	_, err := repo.Decrement([]domain.StockAdjustment{
		{ProductID: a.ID, Qty: 3},
		{ProductID: b.ID, Qty: 2},
	})
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Первый товар батча тоже не должен быть списан.
	records, err := repo.FindAllByIDs([]string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("find all by ids: %v", err)
	}
	for _, rec := range records {
		switch rec.ID {
		case a.ID:
			if rec.AvailableQty != 10 {
				t.Fatalf("product a changed: %d", rec.AvailableQty)
			}
		case b.ID:
			if rec.AvailableQty != 1 {
				t.Fatalf("product b changed: %d", rec.AvailableQty)
			}
		}
	}
}

func TestProductRepository_DecrementUnknownProduct(t *testing.T) {
	repo := NewProductRepository()

	_, err := repo.Decrement([]domain.StockAdjustment{{ProductID: "missing", Qty: 1}})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_IncrementRestoresStock(t *testing.T) {
	repo := NewProductRepository()
	product := seedProduct(t, repo, "keyboard", 500, 10)

	if _, err := repo.Decrement([]domain.StockAdjustment{{ProductID: product.ID, Qty: 4}}); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if err := repo.Increment([]domain.StockAdjustment{{ProductID: product.ID, Qty: 4}}); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	records, err := repo.FindAllByIDs([]string{product.ID})
	if err != nil {
		t.Fatalf("find all by ids: %v", err)
	}
	if records[0].AvailableQty != 10 {
		t.Fatalf("expected restored qty 10, got %d", records[0].AvailableQty)
	}
}

// Конкурентные списания не должны увести остаток в минус: при остатке 5 и
// двух списаниях по 4 ровно одно должно завершиться нехваткой.
func TestProductRepository_ConcurrentDecrement(t *testing.T) {
	repo := NewProductRepository()
	product := seedProduct(t, repo, "keyboard", 500, 5)

	var wg sync.WaitGroup
	errsCh := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Decrement([]domain.StockAdjustment{{ProductID: product.ID, Qty: 4}})
			errsCh <- err
		}()
	}
	wg.Wait()
	close(errsCh)

	var okCnt, insufficientCnt int
	for err := range errsCh {
		switch {
		case err == nil:
			okCnt++
		case domain.IsInsufficientStock(err):
			insufficientCnt++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if okCnt != 1 || insufficientCnt != 1 {
		t.Fatalf("expected exactly one success and one shortage, got ok=%d insufficient=%d", okCnt, insufficientCnt)
	}

	records, err := repo.FindAllByIDs([]string{product.ID})
	if err != nil {
		t.Fatalf("find all by ids: %v", err)
	}
	if records[0].AvailableQty != 1 {
		t.Fatalf("expected final qty 1, got %d", records[0].AvailableQty)
	}
}
