package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asktoapi/engine/llm/embedding"
	"github.com/asktoapi/engine/openapi"
)

// stubEmbedder is a deterministic embedding.Provider for tests. Each input
// maps to a fixed-size vector derived from its length, unless err is set.
type stubEmbedder struct {
	err     error
	queries []string
}

func (s *stubEmbedder) Embed(ctx context.Context, req *embedding.Request) (*embedding.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp := &embedding.Response{Provider: "stub", Model: "stub"}
	for i, in := range req.Input {
		resp.Embeddings = append(resp.Embeddings, embedding.Data{Index: i, Embedding: stubVector(in)})
	}
	return resp, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.queries = append(s.queries, query)
	return stubVector(query), nil
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, 0, len(documents))
	for _, d := range documents {
		out = append(out, stubVector(d))
	}
	return out, nil
}

func (s *stubEmbedder) Name() string      { return "stub" }
func (s *stubEmbedder) MaxBatchSize() int { return 100 }

func stubVector(s string) []float64 {
	return []float64{float64(len(s)), 1, 0}
}

func sampleOperation() openapi.OperationDescriptor {
	return openapi.OperationDescriptor{
		ID:         "getMarketQuotes",
		HTTPMethod: "GET",
		Path:       "/v1/quotes",
		Summary:    "List market quotes",
		Tags:       []string{"quotes", "market-data"},
		Parameters: []openapi.ParameterDescriptor{
			{
				Name:        "symbol",
				Location:    openapi.LocationQuery,
				Required:    true,
				Type:        "string",
				Description: "Ticker symbol",
				Example:     "AAPL",
			},
		},
		SourceName: "quotes-api",
	}
}

func TestToDocumentContent(t *testing.T) {
	op := sampleOperation()
	op.Description = "Returns recent quotes for a symbol."
	op.HasRequestBody = true
	op.RequestBodySummary = "Filter options"

	doc := ToDocument(op)

	assert.Equal(t, "getMarketQuotes", doc.ID)
	assert.Contains(t, doc.Content, "[GET] /v1/quotes")
	assert.Contains(t, doc.Content, "Summary: List market quotes")
	assert.Contains(t, doc.Content, "Description: Returns recent quotes for a symbol.")
	assert.Contains(t, doc.Content, "Tags: quotes, market-data")
	assert.Contains(t, doc.Content, "- symbol (query) [required] type=string - Ticker symbol (example: AAPL)")
	assert.Contains(t, doc.Content, "Request Body: present - Filter options")
	assert.Contains(t, doc.Content, "Source: quotes-api")
}

func TestToDocumentMetadata(t *testing.T) {
	doc := ToDocument(sampleOperation())

	assert.Equal(t, "getMarketQuotes", doc.Metadata[MetaOperationID])
	assert.Equal(t, "GET", doc.Metadata[MetaHTTPMethod])
	assert.Equal(t, "/v1/quotes", doc.Metadata[MetaPath])
	assert.Equal(t, "quotes-api", doc.Metadata[MetaSourceName])
	assert.Equal(t, "quotes, market-data", doc.Metadata[MetaTags])
}

func TestToDocumentOmitsEmptyFields(t *testing.T) {
	doc := ToDocument(openapi.OperationDescriptor{
		ID:         "GET /ping",
		HTTPMethod: "GET",
		Path:       "/ping",
	})

	assert.Equal(t, "[GET] /ping", doc.Content)
	assert.NotContains(t, doc.Metadata, MetaSourceName)
	assert.NotContains(t, doc.Metadata, MetaTags)
}

func TestIndexerIndexesAllOperations(t *testing.T) {
	store := NewInMemoryVectorStore(nil)
	ix := NewIndexer(store, &stubEmbedder{}, nil)

	ops := []openapi.OperationDescriptor{
		sampleOperation(),
		{ID: "createOrder", HTTPMethod: "POST", Path: "/v1/orders", HasRequestBody: true},
	}
	require.NoError(t, ix.Index(context.Background(), ops))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIndexerEmptyCatalogIsNoop(t *testing.T) {
	store := NewInMemoryVectorStore(nil)
	ix := NewIndexer(store, &stubEmbedder{}, nil)

	require.NoError(t, ix.Index(context.Background(), nil))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexerPropagatesEmbedderError(t *testing.T) {
	boom := errors.New("embedding backend down")
	ix := NewIndexer(NewInMemoryVectorStore(nil), &stubEmbedder{err: boom}, nil)

	err := ix.Index(context.Background(), []openapi.OperationDescriptor{sampleOperation()})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
