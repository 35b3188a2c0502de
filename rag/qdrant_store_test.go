package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantPointIDIsStable(t *testing.T) {
	a := qdrantPointID("getMarketQuotes")
	b := qdrantPointID("getMarketQuotes")
	c := qdrantPointID("createOrder")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 36)
}

func TestQdrantStoreAddDocuments(t *testing.T) {
	var captured struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float64      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/collections/swagger_operations/points", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("wait"))
		require.Equal(t, "secret", r.Header.Get("api-key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"status":"completed"},"status":"ok"}`))
	}))
	defer srv.Close()

	store := NewQdrantStore(QdrantConfig{
		BaseURL:    srv.URL,
		APIKey:     "secret",
		Collection: "swagger_operations",
	}, nil)

	err := store.AddDocuments(context.Background(), []Document{
		{
			ID:        "getMarketQuotes",
			Content:   "[GET] /v1/quotes",
			Metadata:  map[string]any{MetaOperationID: "getMarketQuotes"},
			Embedding: []float64{0.1, 0.2, 0.3},
		},
	})
	require.NoError(t, err)

	require.Len(t, captured.Points, 1)
	p := captured.Points[0]
	assert.Equal(t, qdrantPointID("getMarketQuotes"), p.ID)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, p.Vector)
	assert.Equal(t, "getMarketQuotes", p.Payload["doc_id"])
	assert.Equal(t, "[GET] /v1/quotes", p.Payload["content"])
}

func TestQdrantStoreAddDocumentsValidates(t *testing.T) {
	store := NewQdrantStore(QdrantConfig{Collection: "ops"}, nil)
	ctx := context.Background()

	err := store.AddDocuments(ctx, []Document{{ID: "", Embedding: []float64{1}}})
	assert.Error(t, err)

	err = store.AddDocuments(ctx, []Document{{ID: "a"}})
	assert.Error(t, err)

	err = store.AddDocuments(ctx, []Document{
		{ID: "a", Embedding: []float64{1, 2}},
		{ID: "b", Embedding: []float64{1}},
	})
	assert.Error(t, err)

	empty := NewQdrantStore(QdrantConfig{}, nil)
	err = empty.AddDocuments(ctx, []Document{{ID: "a", Embedding: []float64{1}}})
	assert.Error(t, err)
}

func TestQdrantStoreSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/collections/ops/points/search", r.URL.Path)

		var req struct {
			Vector      []float64 `json:"vector"`
			Limit       int       `json:"limit"`
			WithPayload bool      `json:"with_payload"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 5, req.Limit)
		assert.True(t, req.WithPayload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": [
				{"id": "uuid-1", "score": 0.92, "payload": {"doc_id": "opA", "content": "[GET] /a", "metadata": {"operationId": "opA"}}},
				{"id": "uuid-2", "score": 0.40, "payload": {"doc_id": "opB", "content": "[GET] /b", "metadata": {"operationId": "opB"}}}
			],
			"status": "ok"
		}`))
	}))
	defer srv.Close()

	store := NewQdrantStore(QdrantConfig{BaseURL: srv.URL, Collection: "ops"}, nil)

	results, err := store.Search(context.Background(), []float64{0.1, 0.2}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "opA", results[0].Document.ID)
	assert.InDelta(t, 0.92, results[0].Score, 1e-9)
	assert.InDelta(t, 0.08, results[0].Distance, 1e-9)
	assert.Equal(t, "opA", results[0].Document.Metadata["operationId"])

	assert.InDelta(t, 0.60, results[1].Distance, 1e-9)
}

func TestQdrantStoreSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"collection not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	store := NewQdrantStore(QdrantConfig{BaseURL: srv.URL, Collection: "missing"}, nil)

	_, err := store.Search(context.Background(), []float64{0.1}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestQdrantStoreAutoCreateCollection(t *testing.T) {
	creates := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/ops" {
			creates++
			var body struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 3, body.Vectors.Size)
			assert.Equal(t, "Cosine", body.Vectors.Distance)
			_, _ = w.Write([]byte(`{"result":true,"status":"ok"}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":{"status":"completed"},"status":"ok"}`))
	}))
	defer srv.Close()

	store := NewQdrantStore(QdrantConfig{
		BaseURL:              srv.URL,
		Collection:           "ops",
		AutoCreateCollection: true,
	}, nil)

	docs := []Document{{ID: "a", Embedding: []float64{1, 2, 3}}}
	require.NoError(t, store.AddDocuments(context.Background(), docs))
	require.NoError(t, store.AddDocuments(context.Background(), docs))

	assert.Equal(t, 1, creates, "collection create should run once")
}
