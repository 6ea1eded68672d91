package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-analytics/metrics"
)

// DefaultBatchSize stays below the 500 operation ceiling of one batch.
const DefaultBatchSize = 400

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end:end])
	}
	return out
}

// Statement is one queued write.
type Statement struct {
	SQL  string
	Args []interface{}
}

// BatchWriter sends statements in chunks of Size. Each chunk is one pgx
// batch and commits or fails as a unit; earlier chunks stay committed when a
// later one fails.
type BatchWriter struct {
	Pool *pgxpool.Pool
	Size int
}

// Write executes stmts and returns how many were committed.
func (w BatchWriter) Write(ctx context.Context, stmts []Statement) (int, error) {
	written := 0
	for i, chunk := range Chunk(stmts, w.Size) {
		if err := w.writeChunk(ctx, chunk); err != nil {
			return written, fmt.Errorf("batch %d: %w", i, err)
		}
		written += len(chunk)
		metrics.BatchWrites.Inc()
	}
	return written, nil
}

func (w BatchWriter) writeChunk(ctx context.Context, chunk []Statement) error {
	tx, err := w.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b := &pgx.Batch{}
	for _, s := range chunk {
		b.Queue(s.SQL, s.Args...)
	}
	br := tx.SendBatch(ctx, b)
	for range chunk {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
