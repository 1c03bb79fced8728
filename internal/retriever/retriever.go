// Package retriever ranks and formats curriculum chunks for prompt injection.
//
// Retrieval is strictly best-effort: an unavailable or failing index
// degrades to an empty context string so the conversational flow is never
// blocked by the retrieval path.
package retriever

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/tutord/internal/config"
	"github.com/fyrsmithlabs/tutord/internal/vectorstore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("tutord.retriever")

// blockSeparator joins formatted chunk blocks in rank order.
const blockSeparator = "\n\n---\n\n"

// Chunk is a unit of indexed curriculum content.
type Chunk struct {
	ID           string
	Title        string
	Topic        string
	Content      string
	DocumentType string // vectorstore.DocTypeLectureNote or DocTypeProblemSheet
	SourceFile   string
	PageNumber   int
	ChunkIndex   int
}

// ScoredChunk pairs a chunk with its query similarity.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float64 // in [0,1], higher = more similar
}

// Service retrieves supporting context from the vector index.
type Service struct {
	store    vectorstore.Store
	logger   *zap.Logger
	defaults config.RetrievalConfig
}

// NewService creates a retriever over the given index.
// A nil store is allowed and yields empty retrieval results.
func NewService(store vectorstore.Store, defaults config.RetrievalConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		logger:   logger,
		defaults: defaults,
	}
}

// Option overrides a retrieval default for a single call.
type Option func(*config.RetrievalConfig)

// WithK overrides the number of candidates requested from the index.
func WithK(k int) Option {
	return func(c *config.RetrievalConfig) { c.K = k }
}

// WithScoreThreshold overrides the minimum similarity for inclusion.
func WithScoreThreshold(threshold float64) Option {
	return func(c *config.RetrievalConfig) { c.ScoreThreshold = threshold }
}

// Retrieve returns relevant chunks formatted for prompt injection.
//
// Chunks below the similarity threshold are dropped entirely; surviving
// chunks are formatted as labeled blocks in rank order (most similar
// first). Returns "" when the index is unavailable, errors, or no chunk
// clears the threshold.
func (s *Service) Retrieve(ctx context.Context, query string, opts ...Option) string {
	scored := s.Search(ctx, query, opts...)
	if len(scored) == 0 {
		return ""
	}

	blocks := make([]string, len(scored))
	for i, sc := range scored {
		blocks[i] = formatChunk(sc.Chunk)
	}
	return strings.Join(blocks, blockSeparator)
}

// Search returns relevant chunks with similarities, most similar first.
//
// All index failures map to an empty result; callers that need to
// distinguish degradation should watch the retriever metrics instead.
func (s *Service) Search(ctx context.Context, query string, opts ...Option) []ScoredChunk {
	ctx, span := tracer.Start(ctx, "Retriever.Search")
	defer span.End()

	start := time.Now()
	defer func() {
		RetrieveDuration.Observe(time.Since(start).Seconds())
	}()

	params := s.defaults
	for _, opt := range opts {
		opt(&params)
	}

	span.SetAttributes(
		attribute.Int("k", params.K),
		attribute.Float64("score_threshold", params.ScoreThreshold),
	)

	if s.store == nil {
		RequestsTotal.WithLabelValues("unavailable").Inc()
		s.logger.Warn("retrieval skipped: vector index not configured")
		return nil
	}

	results, err := s.store.Search(ctx, query, params.K)
	if err != nil {
		RequestsTotal.WithLabelValues("unavailable").Inc()
		s.logger.Warn("retrieval degraded: index search failed", zap.Error(err))
		return nil
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		// The index contract promises a distance bounded in [0,1]
		// (cosine-style). Clamp anyway: an out-of-range value from a
		// misconfigured backend must not leak an invalid similarity.
		similarity := 1 - float64(r.Distance)
		if similarity < 0 || similarity > 1 {
			s.logger.Warn("similarity out of range, clamping - index distance metric may not be bounded",
				zap.Float64("similarity", similarity),
				zap.String("chunk_id", r.ID),
			)
			similarity = clamp(similarity, 0, 1)
		}
		if similarity < params.ScoreThreshold {
			continue
		}
		scored = append(scored, ScoredChunk{
			Chunk:      chunkFromResult(r),
			Similarity: similarity,
		})
	}

	if len(scored) == 0 {
		RequestsTotal.WithLabelValues("empty").Inc()
		return nil
	}
	RequestsTotal.WithLabelValues("success").Inc()
	ChunksReturned.Observe(float64(len(scored)))

	span.SetAttributes(attribute.Int("results_count", len(scored)))
	return scored
}

// IndexChunks adds pre-chunked curriculum content to the index.
// Unlike Retrieve, indexing failures are surfaced to the caller.
func (s *Service) IndexChunks(ctx context.Context, chunks []Chunk) ([]string, error) {
	if s.store == nil {
		return nil, fmt.Errorf("vector index not configured")
	}

	docs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = vectorstore.Document{
			ID:      c.ID,
			Content: c.Content,
			Metadata: map[string]string{
				vectorstore.MetaTitle:        c.Title,
				vectorstore.MetaTopic:        c.Topic,
				vectorstore.MetaDocumentType: c.DocumentType,
				vectorstore.MetaSource:       c.SourceFile,
				vectorstore.MetaPageNumber:   fmt.Sprintf("%d", c.PageNumber),
				vectorstore.MetaChunkIndex:   fmt.Sprintf("%d", c.ChunkIndex),
			},
		}
	}

	ids, err := s.store.AddDocuments(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("indexing chunks: %w", err)
	}

	s.logger.Info("indexed curriculum chunks", zap.Int("count", len(ids)))
	return ids, nil
}

// Topics returns the curriculum topics available for tutoring.
func (s *Service) Topics() []string {
	return []string{
		"Linear Algebra",
		"Analysis",
		"Calculus",
		"Probability",
		"Statistics",
		"Differential Equations",
		"Complex Analysis",
		"Abstract Algebra",
		"Number Theory",
		"Topology",
		"Numerical Methods",
		"Mathematical Logic",
	}
}

// chunkFromResult rebuilds a Chunk from an index search result.
func chunkFromResult(r vectorstore.SearchResult) Chunk {
	return Chunk{
		ID:           r.ID,
		Title:        r.Metadata[vectorstore.MetaTitle],
		Topic:        r.Metadata[vectorstore.MetaTopic],
		Content:      r.Content,
		DocumentType: r.Metadata[vectorstore.MetaDocumentType],
		SourceFile:   r.Metadata[vectorstore.MetaSource],
	}
}

// formatChunk renders one chunk as a labeled block for prompt injection.
func formatChunk(c Chunk) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(documentTypeTag(c.DocumentType))
	b.WriteString("]")
	if c.Topic != "" {
		b.WriteString(" Topic: ")
		b.WriteString(c.Topic)
	}
	if c.SourceFile != "" {
		b.WriteString(" | Source: ")
		b.WriteString(filepath.Base(c.SourceFile))
	}
	b.WriteString("\n")
	b.WriteString(c.Content)
	return b.String()
}

// documentTypeTag maps a document type to its display tag.
func documentTypeTag(docType string) string {
	switch docType {
	case vectorstore.DocTypeProblemSheet:
		return "PROBLEM SHEET"
	case vectorstore.DocTypeLectureNote:
		return "LECTURE NOTE"
	default:
		return "DOCUMENT"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
