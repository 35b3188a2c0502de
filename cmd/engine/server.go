package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/asktoapi/engine/api/handlers"
	"github.com/asktoapi/engine/browse"
	"github.com/asktoapi/engine/config"
	"github.com/asktoapi/engine/internal/metrics"
	"github.com/asktoapi/engine/internal/server"
	"github.com/asktoapi/engine/llm/embedding"
	"github.com/asktoapi/engine/llm/providers/openai"
	"github.com/asktoapi/engine/openapi"
	"github.com/asktoapi/engine/rag"
)

// Server wires the engine: catalog, vector store, retrieval, answer chain,
// and the HTTP surface on top.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager      *server.Manager
	metricsCollector *metrics.Collector

	catalog     *openapi.Catalog
	vectorStore rag.VectorStore
	chatModel   *openai.Provider
	redisClient *redis.Client

	healthHandler *handlers.HealthHandler
	browseHandler *handlers.BrowseHandler
}

// NewServer creates a Server from configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Start builds the pipeline, indexes the catalog, and starts serving.
func (s *Server) Start(ctx context.Context) error {
	s.metricsCollector = metrics.NewCollector("engine", s.logger)

	if err := s.initPipeline(ctx); err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	s.logger.Info("server started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("catalog_operations", s.catalog.Len()),
	)
	return nil
}

// initPipeline loads the catalog, indexes it into the vector store, and
// assembles the answer chain. An empty or unreachable vector store at startup
// is fatal: a service that cannot retrieve answers nothing.
func (s *Server) initPipeline(ctx context.Context) error {
	operations, err := openapi.LoadDir(s.cfg.Specs.Dir, s.logger)
	if err != nil {
		return fmt.Errorf("load OpenAPI specs from %s: %w", s.cfg.Specs.Dir, err)
	}
	s.catalog = openapi.NewCatalog(operations, s.logger)
	s.logger.Info("catalog built",
		zap.Int("operations", s.catalog.Len()),
		zap.String("dir", s.cfg.Specs.Dir),
	)

	embedAPIKey := s.cfg.Embedding.APIKey
	if embedAPIKey == "" {
		embedAPIKey = s.cfg.LLM.APIKey
	}
	embedder := embedding.NewOpenAIProvider(embedding.OpenAIConfig{
		APIKey:  embedAPIKey,
		BaseURL: s.cfg.Embedding.BaseURL,
		Model:   s.cfg.Embedding.Model,
		Timeout: s.cfg.Embedding.Timeout,
	})

	s.vectorStore = rag.NewQdrantStore(rag.QdrantConfig{
		Host:                 s.cfg.Qdrant.Host,
		Port:                 s.cfg.Qdrant.Port,
		APIKey:               s.cfg.Qdrant.APIKey,
		Collection:           s.cfg.Qdrant.Collection,
		Timeout:              s.cfg.Qdrant.Timeout,
		AutoCreateCollection: s.cfg.Qdrant.AutoCreateCollection,
	}, s.logger)

	s.chatModel = openai.New(openai.Config{
		APIKey:            s.cfg.LLM.APIKey,
		BaseURL:           s.cfg.LLM.BaseURL,
		Model:             s.cfg.LLM.Model,
		Timeout:           s.cfg.LLM.Timeout,
		RequestsPerSecond: s.cfg.LLM.RequestsPerSecond,
		Burst:             s.cfg.LLM.Burst,
	}, s.logger)

	// Indexing and the cache connection are independent; bring them up
	// concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		indexer := rag.NewIndexer(s.vectorStore, embedder, s.logger)
		if err := indexer.Index(gctx, s.catalog.All()); err != nil {
			return fmt.Errorf("index catalog: %w", err)
		}
		return nil
	})
	if s.cfg.Cache.Enabled {
		g.Go(func() error {
			client := redis.NewClient(&redis.Options{
				Addr:     s.cfg.Cache.Addr,
				Password: s.cfg.Cache.Password,
				DB:       s.cfg.Cache.DB,
			})
			pingCtx, cancel := context.WithTimeout(gctx, 5*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				_ = client.Close()
				s.logger.Warn("redis unreachable, answer cache disabled", zap.Error(err))
				return nil
			}
			s.redisClient = client
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	retriever := rag.NewRetriever(s.vectorStore, embedder, s.catalog, rag.RetrieverConfig{
		TopK:           s.cfg.Retrieval.TopK,
		ScoreThreshold: s.cfg.Retrieval.ScoreThreshold,
	}, s.logger)

	chainOpts := []browse.ChainOption{
		browse.WithLogger(s.logger),
		browse.WithMetrics(s.metricsCollector),
	}
	if s.redisClient != nil {
		cache := browse.NewAnswerCache(s.redisClient, s.cfg.Cache.TTL, s.metricsCollector, s.logger)
		chainOpts = append(chainOpts, browse.WithCache(cache))
	}
	if counter, err := browse.NewTokenCounter(s.cfg.LLM.Model); err != nil {
		s.logger.Warn("token counter unavailable", zap.Error(err))
	} else {
		chainOpts = append(chainOpts, browse.WithTokenCounter(counter))
	}

	chain := browse.NewChain(retriever, s.chatModel, browse.ChainConfig{
		Model:       s.cfg.LLM.Model,
		Temperature: s.cfg.LLM.Temperature,
		Timeout:     s.cfg.Browse.Timeout,
	}, chainOpts...)

	s.browseHandler = handlers.NewBrowseHandler(chain, s.logger)
	s.healthHandler = handlers.NewHealthHandler(Version, s.logger)
	s.healthHandler.RegisterCheck(handlers.CountCheck("vector_store", s.vectorStore.Count))
	s.healthHandler.RegisterCheck(handlers.HealthCheckFunc{
		CheckName: "chat_model",
		Fn: func(ctx context.Context) error {
			_, err := s.chatModel.HealthCheck(ctx)
			return err
		},
	})
	return nil
}

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/ai/browse", s.browseHandler.HandleBrowse)
	mux.Handle("/metrics", promhttp.Handler())

	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		CORS(s.cfg.Server.CORSAllowedOrigins),
	)

	s.httpManager = server.NewManager(handler, server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	return s.httpManager.Start()
}

// WaitForShutdown blocks until a signal or fatal serve error, then cleans up.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown releases resources not owned by the HTTP manager.
func (s *Server) Shutdown() {
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	s.logger.Info("server stopped")
}
