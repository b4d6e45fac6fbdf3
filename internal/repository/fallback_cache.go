package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/payslip-extractor/internal/common"
)

const createFallbackCache = `CREATE TABLE IF NOT EXISTS fallback_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

// FallbackCache implements llm.FallbackCache on a Store.
type FallbackCache struct {
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

// NewFallbackCache creates the cache table if needed.
func NewFallbackCache(ctx context.Context, store *Store, logger *slog.Logger) (*FallbackCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := store.DB.ExecContext(ctx, createFallbackCache); err != nil {
		return nil, common.WrapError(fmt.Errorf("%w: %v", common.ErrDatabase, err), "create fallback_cache")
	}
	return &FallbackCache{store: store, logger: logger, now: time.Now}, nil
}

func (c *FallbackCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload string
	err := c.store.DB.QueryRowContext(ctx,
		c.store.bind(`SELECT payload FROM fallback_cache WHERE cache_key = ?`), key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get fallback_cache: %v", common.ErrDatabase, err)
	}
	return []byte(payload), true, nil
}

func (c *FallbackCache) Put(ctx context.Context, key string, payload []byte) error {
	_, err := c.store.DB.ExecContext(ctx, c.store.bind(`
		INSERT INTO fallback_cache (cache_key, payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`),
		key, string(payload), c.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: put fallback_cache: %v", common.ErrDatabase, err)
	}
	c.logger.Debug("db.fallback_cache.put", "key", key, "bytes", len(payload))
	return nil
}

// Purge deletes entries created before cutoff and returns how many went.
func (c *FallbackCache) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.store.DB.ExecContext(ctx,
		c.store.bind(`DELETE FROM fallback_cache WHERE created_at < ?`), cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: purge fallback_cache: %v", common.ErrDatabase, err)
	}
	n, _ := res.RowsAffected()
	c.logger.Info("db.fallback_cache.purged", "rows", n)
	return n, nil
}
