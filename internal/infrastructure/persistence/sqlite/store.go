package sqlite

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"agromarket/internal/config"
	"agromarket/pkg/logger"
)

// migrations is the ordered list of schema upgrade scripts. The schema
// version recorded in PRAGMA user_version equals the number of applied
// migrations; opening a database with a lower version applies the missing
// steps in order, each inside its own transaction. New optional columns
// go into a plain ALTER TABLE step; new indexed fields get their own
// version with a CREATE INDEX.
var migrations = []string{
	// v1: the three collections owned by the local store.
	`
	CREATE TABLE IF NOT EXISTS offline_orders (
		local_id             INTEGER PRIMARY KEY AUTOINCREMENT,
		items                TEXT NOT NULL,
		total_amount         REAL NOT NULL,
		customer_name        TEXT NOT NULL,
		customer_phone       TEXT NOT NULL,
		city                 TEXT NOT NULL DEFAULT '',
		delivery_lat         REAL,
		delivery_lng         REAL,
		delivery_description TEXT NOT NULL DEFAULT '',
		voice_note           BLOB,
		voice_note_mime      TEXT NOT NULL DEFAULT '',
		created_at           INTEGER NOT NULL,
		synced               INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS cart (
		local_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL,
		quantity   INTEGER NOT NULL,
		added_at   INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		product_id    TEXT PRIMARY KEY,
		region        TEXT NOT NULL,
		category      TEXT NOT NULL,
		name          TEXT NOT NULL,
		unit          TEXT NOT NULL,
		price         REAL NOT NULL,
		image_url     TEXT NOT NULL DEFAULT '',
		producer_name TEXT NOT NULL DEFAULT '',
		updated_at    INTEGER NOT NULL
	);
	`,
	// v2: indexes for the drain scan on synced and the regional
	// catalogue view.
	`
	CREATE INDEX IF NOT EXISTS idx_offline_orders_synced ON offline_orders(synced);
	CREATE INDEX IF NOT EXISTS idx_products_region ON products(region);
	`,
}

// Store is the embedded local database shared by the outbox, cart and
// catalogue repositories. It wraps a fixed-size SQLite connection pool;
// durability across process restarts is SQLite's job, schema versioning
// is handled here at open time.
//
// Store is safe for concurrent use. Individual connections are not: each
// caller must Take its own connection and Put it back when done.
type Store struct {
	pool   *sqlitex.Pool
	logger logger.Logger
	path   string
}

// Open opens (and creates if needed) the local database, applies the
// standard pragmas to every connection and runs any pending schema
// migrations. The caller must Close the store when done.
func Open(cfg config.StoreConfig, log logger.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("local store: path is empty")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("local store: opening %s: %w", cfg.Path, err)
	}

	s := &Store{
		pool:   pool,
		logger: log,
		path:   cfg.Path,
	}

	if err := s.migrate(); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("local store opened",
		logger.String("path", cfg.Path),
		logger.Int("pool_size", poolSize),
	)
	return s, nil
}

// Take borrows a connection from the pool. Blocks until one is available
// or ctx is cancelled. The caller must Put it back, typically via defer.
func (s *Store) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("local store: take connection: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool.
func (s *Store) Put(conn *sqlite.Conn) {
	s.pool.Put(conn)
}

// Close closes all connections. Blocks until borrowed connections are
// returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("local store: closing %s: %w", s.path, err)
	}
	return nil
}

// migrate brings the schema up to the current version. Each missing
// migration runs in its own immediate transaction together with the
// user_version bump, so a crash mid-upgrade leaves a consistent prefix.
func (s *Store) migrate() (err error) {
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return fmt.Errorf("local store: migrate: %w", err)
	}
	defer s.pool.Put(conn)

	version, err := schemaVersion(conn)
	if err != nil {
		return err
	}
	if version > int64(len(migrations)) {
		return fmt.Errorf("local store: database version %d is newer than this build (max %d)", version, len(migrations))
	}

	for v := version; v < int64(len(migrations)); v++ {
		if err := applyMigration(conn, migrations[v], v+1); err != nil {
			return err
		}
		s.logger.Info("local store schema upgraded", logger.Int64("version", v+1))
	}
	return nil
}

func applyMigration(conn *sqlite.Conn, script string, target int64) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("local store: begin migration %d: %w", target, err)
	}
	defer endTransaction(&err)

	if err = sqlitex.ExecuteScript(conn, script, nil); err != nil {
		return fmt.Errorf("local store: apply migration %d: %w", target, err)
	}
	if err = sqlitex.ExecuteTransient(conn, fmt.Sprintf("PRAGMA user_version = %d", target), nil); err != nil {
		return fmt.Errorf("local store: record migration %d: %w", target, err)
	}
	return nil
}

func schemaVersion(conn *sqlite.Conn) (int64, error) {
	var version int64
	err := sqlitex.ExecuteTransient(conn, "PRAGMA user_version", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("local store: read schema version: %w", err)
	}
	return version, nil
}

// prepareConnection applies the standard pragmas once per pooled
// connection. WAL keeps readers unblocked during the sync engine's flag
// updates; the busy timeout covers writer contention between an enqueue
// and a running drain.
func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("local store: %s: %w", pragma, err)
		}
	}
	return nil
}
