package model

import "time"

// Config is the complete linkarium configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`

	// Catalog is the ordered list of recognized category names.
	// Order matters: the response parser resolves ties by first match.
	// DefaultCategory is deliberately not a member.
	Catalog []string `yaml:"catalog" mapstructure:"catalog"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// LLMConfig controls the text-generation collaborator
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "ollama", "openai"
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout applies to each individual model call. Calls are
	// single-attempt: on timeout or error the caller substitutes a
	// fallback value and moves on.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StoreConfig controls the embedded graph store
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CacheConfig controls the fetched-page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig controls per-domain fetch politeness during batch runs
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// BatchConfig controls CSV ingestion
type BatchConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// OutputConfig controls reporting
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "Linkarium/0.1 (+https://github.com/ppiankov/linkarium)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: false,
		},
		LLM: LLMConfig{
			Provider:  "ollama",
			Model:     "llama3.2",
			Timeout:   20 * time.Second,
			MaxTokens: 500,
		},
		Store: StoreConfig{
			Path: "linkarium.db",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".linkarium-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         4,
		},
		Batch: BatchConfig{
			Limit: 100,
		},
		Catalog: DefaultCatalog(),
	}
}

// DefaultCatalog returns the built-in ordered category catalog.
// Earlier entries win ties during response parsing.
func DefaultCatalog() []string {
	return []string{
		"Technology",
		"Programming",
		"Database",
		"Science",
		"Health",
		"Finance",
		"Business",
		"News",
		"Education",
		"Entertainment",
		"Sports",
		"Travel",
		"Food",
		"Art",
		"Music",
		"Gaming",
		"Social Media",
		"Politics",
	}
}
