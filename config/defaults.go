package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Specs:     DefaultSpecsConfig(),
		LLM:       DefaultLLMConfig(),
		Embedding: DefaultEmbeddingConfig(),
		Qdrant:    DefaultQdrantConfig(),
		Retrieval: DefaultRetrievalConfig(),
		Browse:    DefaultBrowseConfig(),
		Cache:     DefaultCacheConfig(),
		Log:       DefaultLogConfig(),
	}
}

// DefaultServerConfig returns the default HTTP server settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultSpecsConfig returns the default spec source settings.
func DefaultSpecsConfig() SpecsConfig {
	return SpecsConfig{
		Dir: "./specs",
	}
}

// DefaultLLMConfig returns the default chat model settings.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:   "gpt-4o-mini",
		Timeout: 30 * time.Second,
	}
}

// DefaultEmbeddingConfig returns the default embedding settings.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		Model:   "text-embedding-3-small",
		Timeout: 30 * time.Second,
	}
}

// DefaultQdrantConfig returns the default vector store settings.
func DefaultQdrantConfig() QdrantConfig {
	return QdrantConfig{
		Host:                 "localhost",
		Port:                 6333,
		Collection:           "swagger_operations",
		AutoCreateCollection: true,
		Timeout:              30 * time.Second,
	}
}

// DefaultRetrievalConfig returns the default similarity search settings.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		TopK:           5,
		ScoreThreshold: 1.2,
	}
}

// DefaultBrowseConfig returns the default answer pipeline settings.
func DefaultBrowseConfig() BrowseConfig {
	return BrowseConfig{
		Timeout: 30 * time.Second,
	}
}

// DefaultCacheConfig returns the default answer cache settings.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: false,
		Addr:    "localhost:6379",
		TTL:     5 * time.Minute,
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		EnableCaller: true,
	}
}
