package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"agromarket/internal/domain/outbox"
)

type OutboxRepository struct {
	store *Store
}

func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

const outboxColumns = `local_id, items, total_amount, customer_name, customer_phone,
	city, delivery_lat, delivery_lng, delivery_description,
	voice_note, voice_note_mime, created_at, synced`

// Insert appends one order to the outbox and returns the assigned local
// id. A single INSERT is atomic on its own, so concurrent enqueues never
// contend with a running drain beyond SQLite's writer lock.
func (r *OutboxRepository) Insert(ctx context.Context, order *outbox.QueuedOrder) (int64, error) {
	if order == nil {
		return 0, fmt.Errorf("outbox: order is nil")
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return 0, fmt.Errorf("outbox: encode items: %w", err)
	}

	conn, err := r.store.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer r.store.Put(conn)

	var lat, lng any
	if order.DeliveryLat != nil && order.DeliveryLng != nil {
		lat = *order.DeliveryLat
		lng = *order.DeliveryLng
	}

	var voiceNote any
	voiceNoteMIME := ""
	if order.VoiceNote != nil {
		voiceNote = order.VoiceNote.Data
		voiceNoteMIME = order.VoiceNote.MIME
	}

	const query = `
		INSERT INTO offline_orders
			(items, total_amount, customer_name, customer_phone, city,
			 delivery_lat, delivery_lng, delivery_description,
			 voice_note, voice_note_mime, created_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0);`
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{
			string(itemsJSON),
			order.TotalAmount,
			order.CustomerName,
			order.CustomerPhone,
			order.City,
			lat,
			lng,
			order.DeliveryDescription,
			voiceNote,
			voiceNoteMIME,
			order.CreatedAt.UnixMilli(),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("outbox: insert order: %w", err)
	}

	localID := conn.LastInsertRowID()
	order.LocalID = localID
	return localID, nil
}

func (r *OutboxRepository) FindByID(ctx context.Context, localID int64) (*outbox.QueuedOrder, error) {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Put(conn)

	query := fmt.Sprintf("SELECT %s FROM offline_orders WHERE local_id = ?;", outboxColumns)

	var found *outbox.QueuedOrder
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{localID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			order, err := scanOrder(stmt)
			if err != nil {
				return err
			}
			found = order
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("outbox: find order %d: %w", localID, err)
	}
	if found == nil {
		return nil, outbox.ErrNotFound
	}
	return found, nil
}

// ListUnsynced returns the drain snapshot: every unsynced record in
// insertion order. Orders enqueued after this query returns belong to the
// next drain pass.
func (r *OutboxRepository) ListUnsynced(ctx context.Context) ([]outbox.QueuedOrder, error) {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.store.Put(conn)

	query := fmt.Sprintf("SELECT %s FROM offline_orders WHERE synced = 0 ORDER BY local_id;", outboxColumns)

	orders := make([]outbox.QueuedOrder, 0)
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			order, err := scanOrder(stmt)
			if err != nil {
				return err
			}
			orders = append(orders, *order)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("outbox: list unsynced: %w", err)
	}
	return orders, nil
}

// MarkSynced flips the synced flag for one record. The flag never goes
// back; there is deliberately no way to unset it here.
func (r *OutboxRepository) MarkSynced(ctx context.Context, localID int64) error {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return err
	}
	defer r.store.Put(conn)

	err = sqlitex.Execute(conn, "UPDATE offline_orders SET synced = 1 WHERE local_id = ?;", &sqlitex.ExecOptions{
		Args: []any{localID},
	})
	if err != nil {
		return fmt.Errorf("outbox: mark synced %d: %w", localID, err)
	}
	if conn.Changes() == 0 {
		return outbox.ErrNotFound
	}
	return nil
}

func (r *OutboxRepository) CountUnsynced(ctx context.Context) (int64, error) {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer r.store.Put(conn)

	var count int64
	err = sqlitex.Execute(conn, "SELECT COUNT(*) FROM offline_orders WHERE synced = 0;", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("outbox: count unsynced: %w", err)
	}
	return count, nil
}

// PurgeSynced deletes delivered records created before the cutoff. Only
// ever invoked by the caller-facing cleanup surface, never by the sync
// engine.
func (r *OutboxRepository) PurgeSynced(ctx context.Context, before time.Time) (int64, error) {
	conn, err := r.store.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer r.store.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM offline_orders WHERE synced = 1 AND created_at < ?;", &sqlitex.ExecOptions{
		Args: []any{before.UnixMilli()},
	})
	if err != nil {
		return 0, fmt.Errorf("outbox: purge synced: %w", err)
	}
	return int64(conn.Changes()), nil
}

func scanOrder(stmt *sqlite.Stmt) (*outbox.QueuedOrder, error) {
	order := &outbox.QueuedOrder{
		LocalID:             stmt.ColumnInt64(0),
		TotalAmount:         stmt.ColumnFloat(2),
		CustomerName:        stmt.ColumnText(3),
		CustomerPhone:       stmt.ColumnText(4),
		City:                stmt.ColumnText(5),
		DeliveryDescription: stmt.ColumnText(8),
		CreatedAt:           time.UnixMilli(stmt.ColumnInt64(11)).UTC(),
		Synced:              stmt.ColumnInt64(12) != 0,
	}

	if err := json.Unmarshal([]byte(stmt.ColumnText(1)), &order.Items); err != nil {
		return nil, fmt.Errorf("outbox: decode items for order %d: %w", order.LocalID, err)
	}

	if stmt.ColumnType(6) != sqlite.TypeNull && stmt.ColumnType(7) != sqlite.TypeNull {
		lat := stmt.ColumnFloat(6)
		lng := stmt.ColumnFloat(7)
		order.DeliveryLat = &lat
		order.DeliveryLng = &lng
	}

	if stmt.ColumnType(9) != sqlite.TypeNull {
		data := make([]byte, stmt.ColumnLen(9))
		stmt.ColumnBytes(9, data)
		order.VoiceNote = &outbox.VoiceNote{
			Data: data,
			MIME: stmt.ColumnText(10),
		}
	}

	return order, nil
}
