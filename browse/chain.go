package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/asktoapi/engine/internal/metrics"
	"github.com/asktoapi/engine/llm"
	"github.com/asktoapi/engine/openapi"
)

// ErrEmptyQuery rejects blank questions before any retrieval work.
var ErrEmptyQuery = errors.New("query must not be empty")

// OperationRetriever resolves a query to candidate catalog operations.
// rag.Retriever is the production implementation.
type OperationRetriever interface {
	Retrieve(ctx context.Context, query string) ([]openapi.OperationDescriptor, error)
}

// ChainConfig tunes the answer chain.
type ChainConfig struct {
	// Model is the chat model name passed to the provider.
	Model string `yaml:"model" json:"model"`

	// Temperature for the chat completion.
	Temperature float32 `yaml:"temperature" json:"temperature"`

	// Timeout bounds one full Answer call (retrieval plus completion).
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultChainConfig returns the defaults used when config is absent.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		Model:   "gpt-4o-mini",
		Timeout: 30 * time.Second,
	}
}

// Chain answers a natural-language question about the API catalog:
// retrieve candidate operations, format them into the prompt context, and
// ask the chat model for a plain-text explanation.
type Chain struct {
	retriever OperationRetriever
	provider  llm.Provider
	cache     *AnswerCache
	counter   *TokenCounter
	metrics   *metrics.Collector
	config    ChainConfig
	logger    *zap.Logger
}

// NewChain creates a Chain. Cache, token counter, and metrics may each be
// nil; the chain degrades to uncached, unaccounted answering.
func NewChain(retriever OperationRetriever, provider llm.Provider, cfg ChainConfig, opts ...ChainOption) *Chain {
	def := DefaultChainConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	c := &Chain{
		retriever: retriever,
		provider:  provider,
		config:    cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "browse_chain"))
	return c
}

// ChainOption customizes a Chain.
type ChainOption func(*Chain)

// WithCache attaches an answer cache.
func WithCache(cache *AnswerCache) ChainOption {
	return func(c *Chain) { c.cache = cache }
}

// WithTokenCounter attaches a prompt token counter.
func WithTokenCounter(counter *TokenCounter) ChainOption {
	return func(c *Chain) { c.counter = counter }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(collector *metrics.Collector) ChainOption {
	return func(c *Chain) { c.metrics = collector }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) ChainOption {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Answer runs the full pipeline for one question and returns plain text.
func (c *Chain) Answer(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	if answer, ok := c.cache.Get(ctx, query); ok {
		c.logger.Debug("answer served from cache")
		return answer, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	operations, err := c.retriever.Retrieve(ctx, query)
	if err != nil {
		c.recordRetrieval("error", 0)
		return "", fmt.Errorf("retrieve operations: %w", classifyRetrievalError(err))
	}
	if len(operations) == 0 {
		c.recordRetrieval("empty", 0)
	} else {
		c.recordRetrieval("success", len(operations))
	}

	contextBlock := FormatOperations(operations)
	userPrompt := BuildUserPrompt(query, contextBlock)

	promptTokens := c.counter.Count(SystemPrompt) + c.counter.Count(userPrompt)
	c.logger.Debug("built browse prompt",
		zap.Int("operations", len(operations)),
		zap.Int("prompt_tokens", promptTokens))

	start := time.Now()
	resp, err := c.provider.Completion(ctx, &llm.ChatRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SystemPrompt},
			{Role: llm.RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		c.recordLLM("error", time.Since(start), promptTokens, 0)
		if llm.IsTimeout(err) {
			return "", fmt.Errorf("chat completion timed out: %w", err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	answer, err := llm.ResponseText(resp)
	if err != nil {
		c.recordLLM("error", time.Since(start), promptTokens, 0)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	c.recordLLM("success", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	c.logger.Info("browse query answered",
		zap.Int("operations", len(operations)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("llm_duration", time.Since(start)))

	c.cache.Set(ctx, query, answer)
	return answer, nil
}

// classifyRetrievalError gives store failures an upstream or timeout class.
// Embedding calls already produce classified errors; raw store errors (a
// Qdrant node down, a refused connection) would otherwise surface as
// internal failures at the boundary.
func classifyRetrievalError(err error) error {
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return (&llm.Error{
			Code: llm.ErrTimeout, Message: "retrieval timed out",
			Retryable: true,
		}).WithCause(err)
	}
	return (&llm.Error{
		Code: llm.ErrUpstreamError, Message: "vector store search failed",
		Retryable: true,
	}).WithCause(err)
}

func (c *Chain) recordRetrieval(status string, operations int) {
	if c.metrics != nil {
		c.metrics.RecordRetrieval(status, operations)
	}
}

func (c *Chain) recordLLM(status string, duration time.Duration, promptTokens, completionTokens int) {
	if c.metrics != nil {
		c.metrics.RecordLLMRequest(c.provider.Name(), c.config.Model, status, duration, promptTokens, completionTokens)
	}
}
