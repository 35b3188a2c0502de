package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/asktoapi/engine/llm/embedding"
	"github.com/asktoapi/engine/openapi"
)

// RetrieverConfig tunes similarity retrieval.
type RetrieverConfig struct {
	// TopK is how many candidates the vector store returns before filtering.
	TopK int `yaml:"top_k" json:"top_k"`

	// ScoreThreshold is the maximum distance a hit may have. Hits with
	// Distance strictly greater than the threshold are discarded.
	ScoreThreshold float64 `yaml:"score_threshold" json:"score_threshold"`
}

// DefaultRetrieverConfig returns the defaults used when config is absent.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		TopK:           5,
		ScoreThreshold: 1.2,
	}
}

// Retriever resolves a natural-language query to catalog operations via
// vector similarity. Results are re-hydrated from the catalog so callers
// always see full operation descriptors, not stored payload fragments.
type Retriever struct {
	store    VectorStore
	embedder embedding.Provider
	catalog  *openapi.Catalog
	config   RetrieverConfig
	logger   *zap.Logger
}

// NewRetriever creates a Retriever over the given store and catalog.
func NewRetriever(store VectorStore, embedder embedding.Provider, catalog *openapi.Catalog, cfg RetrieverConfig, logger *zap.Logger) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultRetrieverConfig().TopK
	}
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = DefaultRetrieverConfig().ScoreThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		catalog:  catalog,
		config:   cfg,
		logger:   logger.With(zap.String("component", "retriever")),
	}
}

// Retrieve returns the catalog operations most relevant to query, ordered by
// ascending distance. The result is deduplicated by operation ID (first hit
// wins) and never exceeds TopK entries. Hits whose operation is no longer in
// the catalog are dropped with a warning; an empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]openapi.OperationDescriptor, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, queryEmbedding, r.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	operations := make([]openapi.OperationDescriptor, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		if hit.Distance > r.config.ScoreThreshold {
			continue
		}
		opID := operationIDFromHit(hit)
		if opID == "" {
			r.logger.Warn("search hit without operation id", zap.String("doc_id", hit.Document.ID))
			continue
		}
		if _, dup := seen[opID]; dup {
			continue
		}
		seen[opID] = struct{}{}

		op, ok := r.catalog.FindByID(opID)
		if !ok {
			r.logger.Warn("search hit references unknown operation", zap.String("operation_id", opID))
			continue
		}
		operations = append(operations, op)
	}

	r.logger.Debug("retrieved operations",
		zap.Int("hits", len(hits)),
		zap.Int("kept", len(operations)),
		zap.Float64("threshold", r.config.ScoreThreshold))
	return operations, nil
}

func operationIDFromHit(hit VectorSearchResult) string {
	if raw, ok := hit.Document.Metadata[MetaOperationID]; ok {
		if id, ok := raw.(string); ok {
			return id
		}
	}
	return hit.Document.ID
}
