// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bilimkapsulu/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourcesConfig holds settings for the external source adapters.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// EnableOpenAlex, EnableArxiv, and EnableSemantic control which
	// backends participate in all-source searches.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex"`
	EnableArxiv    bool `json:"enable_arxiv" yaml:"enable_arxiv"`
	EnableSemantic bool `json:"enable_semantic" yaml:"enable_semantic"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// SemanticAPIKey is an optional Semantic Scholar key for higher rate
	// limits.
	SemanticAPIKey string `json:"semantic_api_key,omitempty" yaml:"semantic_api_key,omitempty"`

	// RelayURL optionally routes arXiv and Semantic Scholar requests
	// through a fetch relay (the target URL is appended escaped). Empty
	// means direct calls.
	RelayURL string `json:"relay_url,omitempty" yaml:"relay_url,omitempty"`
}

// CacheConfig holds settings for the durable result cache.
type CacheConfig struct {
	// Dir is the directory holding one JSON file per cache entry.
	Dir string `json:"dir" yaml:"dir"`
}

// LibraryConfig holds settings for the reading-event store.
type LibraryConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`

	// PapersDir is where offline PDFs are stored.
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// TranslateConfig holds settings for the optional enrichment service.
type TranslateConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the batch translation endpoint. Empty disables enrichment.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// APIKey authenticates against the translation service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	Sources   SourcesConfig   `json:"sources" yaml:"sources"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Library   LibraryConfig   `json:"library" yaml:"library"`
	Translate TranslateConfig `json:"translate" yaml:"translate"`

	// CuratedFile is the YAML file of curated feed papers.
	CuratedFile string `json:"curated_file,omitempty" yaml:"curated_file,omitempty"`
}
