package sqlite

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"agromarket/internal/domain/cart"
)

type CartRepository struct {
	store *Store
}

func NewCartRepository(store *Store) *CartRepository {
	return &CartRepository{store: store}
}

func (r *CartRepository) Add(ctx context.Context, line *cart.Line) (int64, error) {
	if line == nil {
		return 0, fmt.Errorf("cart: line is nil")
	}

	conn, err := r.store.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer r.store.Put(conn)

	err = sqlitex.Execute(conn, "INSERT INTO cart (product_id, quantity, added_at) VALUES (?, ?, ?);", &sqlitex.ExecOptions{
		Args: []any{line.ProductID, line.Quantity, line.AddedAt.UnixMilli()},
	})
	if err != nil {
		return 0, fmt.Errorf("cart: add line: %w", err)
	}

	localID := conn.LastInsertRowID()
	line.LocalID = localID
	return localID, nil
}

func (r *CartRepository) List(ctx context.Context) ([]cart.Line, error) {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Put(conn)

	lines := make([]cart.Line, 0)
	err = sqlitex.Execute(conn, "SELECT local_id, product_id, quantity, added_at FROM cart ORDER BY local_id;", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			lines = append(lines, cart.Line{
				LocalID:   stmt.ColumnInt64(0),
				ProductID: stmt.ColumnText(1),
				Quantity:  int(stmt.ColumnInt64(2)),
				AddedAt:   time.UnixMilli(stmt.ColumnInt64(3)).UTC(),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cart: list: %w", err)
	}
	return lines, nil
}

// Clear wipes the whole cart. Called after an order, online or queued,
// has been created from it.
func (r *CartRepository) Clear(ctx context.Context) error {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return err
	}
	defer r.store.Put(conn)

	if err := sqlitex.Execute(conn, "DELETE FROM cart;", nil); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}
