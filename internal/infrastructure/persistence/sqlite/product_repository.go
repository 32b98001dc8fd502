package sqlite

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"agromarket/internal/domain/catalog"
)

type ProductRepository struct {
	store *Store
}

func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

// ReplaceAll swaps the entire cached catalogue in one immediate
// transaction: either the new snapshot lands completely or the old one
// stays untouched.
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []catalog.Product) (err error) {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return err
	}
	defer r.store.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("catalog cache: begin replace: %w", err)
	}
	defer endTransaction(&err)

	if err = sqlitex.Execute(conn, "DELETE FROM products;", nil); err != nil {
		return fmt.Errorf("catalog cache: clear: %w", err)
	}

	const query = `
		INSERT INTO products
			(product_id, region, category, name, unit, price, image_url, producer_name, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
	for _, p := range products {
		if p.ProductID == "" {
			return fmt.Errorf("catalog cache: product without id")
		}
		err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{
				p.ProductID,
				p.Region,
				p.Category,
				p.Name,
				p.Unit,
				p.Price,
				p.ImageURL,
				p.ProducerName,
				p.UpdatedAt.UnixMilli(),
			},
		})
		if err != nil {
			return fmt.Errorf("catalog cache: insert product %s: %w", p.ProductID, err)
		}
	}
	return nil
}

// List returns the cached catalogue, filtered by region when one is
// given. Ordered by name for a stable offline view.
func (r *ProductRepository) List(ctx context.Context, region string) ([]catalog.Product, error) {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Put(conn)

	query := `
		SELECT product_id, region, category, name, unit, price, image_url, producer_name, updated_at
		FROM products ORDER BY name;`
	var args []any
	if region != "" {
		query = `
			SELECT product_id, region, category, name, unit, price, image_url, producer_name, updated_at
			FROM products WHERE region = ? ORDER BY name;`
		args = []any{region}
	}

	products := make([]catalog.Product, 0)
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			products = append(products, catalog.Product{
				ProductID:    stmt.ColumnText(0),
				Region:       stmt.ColumnText(1),
				Category:     stmt.ColumnText(2),
				Name:         stmt.ColumnText(3),
				Unit:         stmt.ColumnText(4),
				Price:        stmt.ColumnFloat(5),
				ImageURL:     stmt.ColumnText(6),
				ProducerName: stmt.ColumnText(7),
				UpdatedAt:    time.UnixMilli(stmt.ColumnInt64(8)).UTC(),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog cache: list: %w", err)
	}
	return products, nil
}
