package rowstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OpenConfig selects and configures a backend.
type OpenConfig struct {
	Type        string
	DatabaseURL string
	Sheets      SheetsConfig
	// MemorySheets are created empty when Type is memory.
	MemorySheets []string
}

// Open connects the configured backend. The returned close func releases
// any connections and is never nil.
func Open(ctx context.Context, cfg OpenConfig) (Store, func(), error) {
	noop := func() {}

	switch cfg.Type {
	case TypeSheets:
		s, err := NewSheetsStore(ctx, cfg.Sheets)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case TypePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		s := NewPostgresStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ensure schema: %w", err)
		}
		return s, pool.Close, nil

	case TypeMemory:
		return NewMemoryStore(cfg.MemorySheets...), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown row store type %q", cfg.Type)
	}
}
