package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/asktoapi/engine/internal/tlsutil"
	"github.com/asktoapi/engine/llm/providers"
)

// BaseProvider carries the HTTP plumbing shared by embedding providers.
type BaseProvider struct {
	name     string
	client   *http.Client
	baseURL  string
	apiKey   string
	model    string
	maxBatch int
}

// BaseConfig holds the common provider configuration.
type BaseConfig struct {
	Name     string
	BaseURL  string
	APIKey   string
	Model    string
	MaxBatch int
	Timeout  time.Duration
}

// NewBaseProvider creates the shared base.
func NewBaseProvider(cfg BaseConfig) *BaseProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxBatch := cfg.MaxBatch
	if maxBatch == 0 {
		maxBatch = 100
	}
	return &BaseProvider{
		name:     cfg.Name,
		client:   tlsutil.SecureHTTPClient(timeout),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		maxBatch: maxBatch,
	}
}

func (p *BaseProvider) Name() string      { return p.name }
func (p *BaseProvider) MaxBatchSize() int { return p.maxBatch }

type embedFn func(context.Context, *Request) (*Response, error)

// EmbedQuery embeds a single query string through embedFn.
func (p *BaseProvider) EmbedQuery(ctx context.Context, query string, embed embedFn) ([]float64, error) {
	resp, err := embed(ctx, &Request{Input: []string{query}})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return resp.Embeddings[0].Embedding, nil
}

// EmbedDocuments embeds documents through embedFn, splitting into
// provider-sized batches.
func (p *BaseProvider) EmbedDocuments(ctx context.Context, documents []string, embed embedFn) ([][]float64, error) {
	result := make([][]float64, 0, len(documents))
	for start := 0; start < len(documents); start += p.maxBatch {
		end := start + p.maxBatch
		if end > len(documents) {
			end = len(documents)
		}
		resp, err := embed(ctx, &Request{Input: documents[start:end]})
		if err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got=%d want=%d", len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			result = append(result, emb.Embedding)
		}
	}
	return result, nil
}

// DoRequest performs an HTTP request with the common error handling.
func (p *BaseProvider) DoRequest(ctx context.Context, method, endpoint string, body any, headers map[string]string) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal embedding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, providers.ClassifyTransportError(err, p.name)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, p.name)
	}

	return io.ReadAll(resp.Body)
}
