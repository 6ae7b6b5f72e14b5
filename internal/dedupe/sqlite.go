package dedupe

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hdnguyen/secondhand-scout/internal/core"
)

// SQLiteStore is an alternate durable store for deployments that outgrow a
// flat file. The primary key on the link column makes duplicate appends
// no-ops at the storage layer as well.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (map[string]struct{}, []core.Item, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, price, link, observed_at FROM items ORDER BY rowid")
	if err != nil {
		return nil, nil, fmt.Errorf("load sqlite store: %w", err)
	}
	defer rows.Close()

	seen := map[string]struct{}{}
	var items []core.Item
	for rows.Next() {
		var item core.Item
		var observedAt time.Time
		if err := rows.Scan(&item.Name, &item.Price, &item.URL, &observedAt); err != nil {
			return nil, nil, fmt.Errorf("scan sqlite record: %w", err)
		}
		item.ObservedAt = observedAt
		seen[item.URL] = struct{}{}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("load sqlite store: %w", err)
	}
	return seen, items, nil
}

func (s *SQLiteStore) Append(ctx context.Context, item core.Item) error {
	if item.URL == "" {
		return fmt.Errorf("item url is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO items (link, name, price, observed_at) VALUES (?, ?, ?, ?) ON CONFLICT(link) DO NOTHING",
		item.URL,
		item.Name,
		item.Price,
		item.ObservedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append sqlite record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS items (
		link TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		observed_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sqlite schema: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
