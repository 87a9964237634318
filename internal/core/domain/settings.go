package domain

import "time"

// Settings is the explicit application configuration, constructed once
// at process start and passed into each component constructor. There
// is no global configuration state.
type Settings struct {
	// DataDir is the root directory scanned for PDFs.
	DataDir string `toml:"data_dir"`

	// IndexDir is where the vector store persists its database.
	IndexDir string `toml:"index_dir"`

	// CacheDir is where answer cache entries are written.
	CacheDir string `toml:"cache_dir"`

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap carried between chunks in characters.
	ChunkOverlap int `toml:"chunk_overlap"`

	// MinChunkChars drops chunks shorter than this as non-meaningful.
	MinChunkChars int `toml:"min_chunk_chars"`

	// EmbedBatchSize bounds peak memory during embedding.
	EmbedBatchSize int `toml:"embed_batch_size"`

	// EmbeddingBaseURL is the embedding backend endpoint.
	EmbeddingBaseURL string `toml:"embedding_base_url"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `toml:"embedding_model"`

	// SearchResults is the default result count per query.
	SearchResults int `toml:"search_results"`

	// SemanticWeight is the fusion weight in [0,1].
	SemanticWeight float64 `toml:"semantic_weight"`

	// EnableBM25 toggles the lexical index. When off, ranking reduces
	// to pure semantic order.
	EnableBM25 bool `toml:"enable_bm25"`

	// OllamaBaseURL is the local LLM endpoint.
	OllamaBaseURL string `toml:"ollama_base_url"`

	// OllamaModel is the local generation model.
	OllamaModel string `toml:"ollama_model"`

	// GeminiModel is the cloud generation model.
	GeminiModel string `toml:"gemini_model"`

	// GeminiAPIKey enables the cloud provider. Usually supplied via
	// the GOOGLE_API_KEY environment variable, not the config file.
	GeminiAPIKey string `toml:"-"`

	// LLMTimeout bounds a single generation call.
	LLMTimeout time.Duration `toml:"llm_timeout"`

	// MaxTokens caps generated answer length.
	MaxTokens int `toml:"max_tokens"`

	// Temperature controls generation randomness.
	Temperature float64 `toml:"temperature"`

	// MaxChunksCloud caps context chunks sent to the cloud provider.
	MaxChunksCloud int `toml:"max_chunks_cloud"`

	// MaxChunkCharsCloud caps per-chunk characters sent to the cloud.
	MaxChunkCharsCloud int `toml:"max_chunk_chars_cloud"`

	// UseCloudByDefault prefers the cloud provider when available.
	UseCloudByDefault bool `toml:"use_cloud_by_default"`

	// ServerHost is the HTTP API bind address.
	ServerHost string `toml:"server_host"`

	// ServerPort is the HTTP API port.
	ServerPort int `toml:"server_port"`
}

// DefaultSettings returns the built-in defaults. File and flag values
// override these field by field.
func DefaultSettings() Settings {
	return Settings{
		DataDir:            "./data",
		IndexDir:           "./index",
		CacheDir:           "./cache",
		ChunkSize:          800,
		ChunkOverlap:       150,
		MinChunkChars:      50,
		EmbedBatchSize:     32,
		EmbeddingBaseURL:   "http://localhost:11434",
		EmbeddingModel:     "nomic-embed-text",
		SearchResults:      DefaultSearchResults,
		SemanticWeight:     DefaultSemanticWeight,
		EnableBM25:         true,
		OllamaBaseURL:      "http://localhost:11434",
		OllamaModel:        "mistral",
		GeminiModel:        "gemini-1.5-pro",
		LLMTimeout:         240 * time.Second,
		MaxTokens:          2048,
		Temperature:        0.15,
		MaxChunksCloud:     2,
		MaxChunkCharsCloud: 1500,
		ServerHost:         "127.0.0.1",
		ServerPort:         5000,
	}
}
