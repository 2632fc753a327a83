package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, price_minor, quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		product.ID, product.Name, product.SKU, product.PriceMinor,
		product.Quantity, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *productRepository) FindByID(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	product, err := r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, name, sku, price_minor, quantity, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindAllByIDs(ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// ANY($1) с массивом покрывает и дубликаты во входном наборе:
	// каждая строка каталога попадёт в результат один раз.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, sku, price_minor, quantity, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) List(limit int) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, name, sku, price_minor, quantity, created_at, updated_at
		FROM products
		ORDER BY created_at, id
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// DecrementStock списывает остатки одной транзакцией. Каждое списание
// условное: UPDATE проходит только если остатка хватает, поэтому
// конкурентные заказы не могут увести остаток в минус. Строки блокируются
// в порядке возрастания id, иначе два встречных заказа могут взаимно
// заблокировать друг друга.
func (r *productRepository) DecrementStock(decrements []domain.StockDecrement) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ordered := make([]domain.StockDecrement, len(decrements))
	copy(ordered, decrements)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

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
	for _, dec := range ordered {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - $2,
			    updated_at = $3
			WHERE id = $1
			  AND quantity >= $2
		`, dec.ProductID, dec.Qty, now)
		if err != nil {
			return fmt.Errorf("decrement stock for %s: %w", dec.ProductID, err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			// Либо товар исчез, либо остатка не хватает.
			var available int32
			scanErr := tx.QueryRowContext(ctx,
				`SELECT quantity FROM products WHERE id = $1`, dec.ProductID,
			).Scan(&available)
			switch {
			case errors.Is(scanErr, sql.ErrNoRows):
				err = &domain.ProductNotFoundError{ProductID: dec.ProductID}
			case scanErr != nil:
				err = fmt.Errorf("check available quantity for %s: %w", dec.ProductID, scanErr)
			default:
				err = &domain.InsufficientStockError{
					ProductID: dec.ProductID,
					Requested: dec.Qty,
					Available: available,
				}
			}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit decrement stock: %w", err)
	}

	return nil
}

func (r *productRepository) Restock(id string, qty int32) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	product, err := r.scanOne(r.db.QueryRowContext(ctx, `
		UPDATE products
		SET quantity = quantity + $2,
		    updated_at = $3
		WHERE id = $1
		RETURNING id, name, sku, price_minor, quantity, created_at, updated_at
	`, id, qty, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
		}
		return domain.Product{}, fmt.Errorf("restock product: %w", err)
	}

	return product, nil
}

func (r *productRepository) scanOne(row *sql.Row) (domain.Product, error) {
	var product domain.Product
	err := row.Scan(
		&product.ID, &product.Name, &product.SKU, &product.PriceMinor,
		&product.Quantity, &product.CreatedAt, &product.UpdatedAt,
	)
	return product, err
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.SKU, &product.PriceMinor,
			&product.Quantity, &product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
