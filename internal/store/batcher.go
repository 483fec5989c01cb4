package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
)

// CandidateUpserter is what the batcher needs from the candidate sink.
type CandidateUpserter interface {
	Upsert(ctx context.Context, rows []discovery.ScoredCandidate) (int64, error)
}

// Batcher accumulates scored candidates across venues and flushes them in
// fixed-size chunks. In dry-run mode every write is skipped but counts are
// still reported, so a dry run previews exactly what a real run would do.
type Batcher struct {
	sink      CandidateUpserter
	logger    *zap.Logger
	chunkSize int
	dryRun    bool

	buffer   []discovery.ScoredCandidate
	upserted int64
	skipped  int64
}

// NewBatcher builds a batcher flushing every chunkSize rows.
func NewBatcher(sink CandidateUpserter, logger *zap.Logger, chunkSize int, dryRun bool) *Batcher {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	return &Batcher{sink: sink, logger: logger, chunkSize: chunkSize, dryRun: dryRun}
}

// Add buffers candidates, flushing whenever the buffer reaches the chunk size.
func (b *Batcher) Add(ctx context.Context, rows ...discovery.ScoredCandidate) error {
	b.buffer = append(b.buffer, rows...)
	for len(b.buffer) >= b.chunkSize {
		chunk := b.buffer[:b.chunkSize]
		if err := b.flushChunk(ctx, chunk); err != nil {
			return err
		}
		b.buffer = b.buffer[b.chunkSize:]
	}
	return nil
}

// Flush writes whatever remains in the buffer.
func (b *Batcher) Flush(ctx context.Context) error {
	if len(b.buffer) == 0 {
		return nil
	}
	chunk := b.buffer
	b.buffer = nil
	return b.flushChunk(ctx, chunk)
}

func (b *Batcher) flushChunk(ctx context.Context, chunk []discovery.ScoredCandidate) error {
	if b.dryRun {
		b.skipped += int64(len(chunk))
		b.logger.Debug("dry-run: skipping candidate flush", zap.Int("rows", len(chunk)))
		return nil
	}
	n, err := b.sink.Upsert(ctx, chunk)
	if err != nil {
		return fmt.Errorf("flush candidate batch: %w", err)
	}
	b.upserted += n
	b.logger.Debug("flushed candidate batch", zap.Int("rows", len(chunk)), zap.Int64("affected", n))
	return nil
}

// Upserted returns the number of rows the backend reported affected.
func (b *Batcher) Upserted() int64 { return b.upserted }

// Skipped returns the number of rows withheld by dry-run mode.
func (b *Batcher) Skipped() int64 { return b.skipped }

// Pending returns the current buffer depth.
func (b *Batcher) Pending() int { return len(b.buffer) }
