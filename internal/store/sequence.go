package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

const llmEventStream = "llm_events"

// sequences numbers rows per named stream, starting at 1. QueryOpts.After
// and Before page on these numbers.
type sequences struct {
	mu sync.Mutex
	db *sql.DB
}

func (s *sequences) Next(ctx context.Context, stream string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO sequences (stream, next_val) VALUES (?, 2)
		ON CONFLICT (stream) DO UPDATE SET next_val = next_val + 1
		RETURNING next_val - 1`, stream).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", stream, err)
	}
	return n, nil
}
