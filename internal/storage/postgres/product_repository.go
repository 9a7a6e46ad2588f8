package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию каталога товаров.
// Возвращаемый тип реализует и ProductRepository, и InventoryAdjuster:
// остатки живут в той же таблице, что и карточки товаров.
func NewProductRepository(store *Store) *productRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Create(product domain.ProductRecord) (domain.ProductRecord, error) {
	if errs := product.Validate(); len(errs) > 0 {
		return domain.ProductRecord{}, errs[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	product.ID = uuid.NewString()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price_minor, available_qty, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		product.ID, product.Name, product.PriceMinor, product.AvailableQty,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ProductRecord{}, domain.ErrProductNameTaken
		}
		return domain.ProductRecord{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByName(name string) (domain.ProductRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.ProductRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price_minor, available_qty, created_at, updated_at
		FROM products
		WHERE name = $1
	`, strings.TrimSpace(name)).Scan(
		&product.ID, &product.Name, &product.PriceMinor, &product.AvailableQty,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProductRecord{}, domain.ErrProductNotFound
		}
		return domain.ProductRecord{}, fmt.Errorf("select product by name: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindAllByIDs(ids []string) ([]domain.ProductRecord, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if uuid.Validate(id) == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []domain.ProductRecord{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	placeholders := make([]string, len(valid))
	args := make([]any, len(valid))
	for i, id := range valid {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name, price_minor, available_qty, created_at, updated_at
		FROM products
		WHERE id IN (%s)
	`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ProductRecord, 0, len(valid))
	for rows.Next() {
		var product domain.ProductRecord
		if err := rows.Scan(
			&product.ID, &product.Name, &product.PriceMinor, &product.AvailableQty,
			&product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return result, nil
}

// Decrement списывает остатки одним изменением. Каждое UPDATE условно:
// available_qty >= qty входит в WHERE, поэтому проверка и списание атомарны
// на уровне строки, а остаток не может стать отрицательным. Любой промах
// откатывает всю транзакцию.
func (r *productRepository) Decrement(items []domain.StockAdjustment) ([]domain.ProductRecord, error) {
	if len(items) == 0 {
		return []domain.ProductRecord{}, nil
	}
	for i := range items {
		if errs := items[i].Validate(); len(errs) > 0 {
			return nil, errs[0]
		}
		if uuid.Validate(items[i].ProductID) != nil {
			return nil, domain.ErrProductNotFound
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	result := make([]domain.ProductRecord, 0, len(items))
	for _, adj := range items {
		var product domain.ProductRecord
		err = tx.QueryRowContext(ctx, `
			UPDATE products
			SET available_qty = available_qty - $2,
			    updated_at = $3
			WHERE id = $1
			  AND available_qty >= $2
			RETURNING id, name, price_minor, available_qty, created_at, updated_at
		`, adj.ProductID, adj.Qty, now).Scan(
			&product.ID, &product.Name, &product.PriceMinor, &product.AvailableQty,
			&product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = r.classifyMissTx(ctx, tx, adj.ProductID)
			} else {
				err = fmt.Errorf("decrement product %s: %w", adj.ProductID, err)
			}
			return nil, err
		}
		result = append(result, product)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit decrement: %w", err)
	}

	return result, nil
}

// Increment возвращает остатки обратно (компенсация неудачного сохранения заказа).
func (r *productRepository) Increment(items []domain.StockAdjustment) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if errs := items[i].Validate(); len(errs) > 0 {
			return errs[0]
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, adj := range items {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET available_qty = available_qty + $2,
			    updated_at = $3
			WHERE id = $1
		`, adj.ProductID, adj.Qty, now)
		if err != nil {
			return fmt.Errorf("increment product %s: %w", adj.ProductID, err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = domain.ErrProductNotFound
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit increment: %w", err)
	}

	return nil
}

// classifyMissTx различает "товара нет" и "товара не хватает" после
// условного UPDATE, который не затронул ни одной строки.
func (r *productRepository) classifyMissTx(ctx context.Context, tx *sql.Tx, productID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, productID).Scan(&id)
	if err == nil {
		return domain.ErrInsufficientStock
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProductNotFound
	}
	return fmt.Errorf("check product exists: %w", err)
}

var (
	_ domain.ProductRepository = (*productRepository)(nil)
	_ domain.InventoryAdjuster = (*productRepository)(nil)
)
