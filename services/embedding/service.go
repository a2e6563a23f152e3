package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchSize is the backend's per-call input limit.
const BatchSize = 20

// Embedder produces one vector per input text, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// BatchError reports which batch failed
type BatchError struct {
	Batch int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("embedding batch %d failed: %v", e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Service splits embedding work into backend-sized batches and issues them
// with bounded parallelism.
type Service struct {
	embedder    Embedder
	concurrency int
	logger      *zap.Logger
}

// NewService creates an embedding service. concurrency below 1 means sequential.
func NewService(embedder Embedder, concurrency int, logger *zap.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{embedder: embedder, concurrency: concurrency, logger: logger}
}

// EmbedOne embeds a single text, used for retrieval queries.
func (s *Service) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, received %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedAll embeds texts in batches of exactly BatchSize (the last may be
// shorter). vectors[i] always corresponds to texts[i].
func (s *Service) EmbedAll(ctx context.Context, texts []string) ([][]float64, error) {
	batches := Split(len(texts), BatchSize)
	vectors := make([][]float64, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			out, err := s.embedder.Embed(gctx, texts[b.Start:b.End])
			if err != nil {
				return &BatchError{Batch: i, Err: err}
			}
			if len(out) != b.End-b.Start {
				return &BatchError{Batch: i, Err: fmt.Errorf("expected %d embeddings, received %d", b.End-b.Start, len(out))}
			}
			// each batch owns a disjoint range of vectors
			copy(vectors[b.Start:b.End], out)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("embedded texts",
		zap.Int("texts", len(texts)),
		zap.Int("batches", len(batches)))

	return vectors, nil
}

// Range is a half-open index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Split partitions n items into consecutive ranges of at most size.
func Split(n, size int) []Range {
	if n <= 0 || size <= 0 {
		return nil
	}
	ranges := make([]Range, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}
