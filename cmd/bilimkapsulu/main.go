// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bilimkapsulu CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ezzhamed/bilimkapsulu.ai/internal/aggregate"
	"github.com/ezzhamed/bilimkapsulu.ai/internal/cache"
	"github.com/ezzhamed/bilimkapsulu.ai/internal/library"
	"github.com/ezzhamed/bilimkapsulu.ai/internal/secrets"
	"github.com/ezzhamed/bilimkapsulu.ai/internal/source"
	"github.com/ezzhamed/bilimkapsulu.ai/internal/translate"
	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "bilimkapsulu/0.1"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for
// key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the bilimkapsulu CLI.
var rootCmd = &cobra.Command{
	Use:   "bilimkapsulu",
	Short: "Academic paper discovery and reading companion",
	Long: `bilimkapsulu searches OpenAlex, arXiv, and Semantic Scholar in one pass,
keeps a local library of saved papers with notes and highlights, and tracks
reading sessions into daily statistics and streaks.

Search results are deduplicated across sources, ranked by citations, and
cached on disk so repeated queries stay offline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bilimkapsulu.yaml or ~/.config/bilimkapsulu/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bilimkapsulu")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bilimkapsulu"))
		}
	}

	viper.SetDefault("sources.timeout", 30*time.Second)
	viper.SetDefault("sources.user_agent", defaultUserAgent)
	viper.SetDefault("sources.enable_openalex", true)
	viper.SetDefault("sources.enable_arxiv", true)
	viper.SetDefault("sources.enable_semantic", true)
	viper.SetDefault("cache.dir", filepath.Join(".bilimkapsulu", "cache"))
	viper.SetDefault("library.path", filepath.Join(".bilimkapsulu", "library.db"))
	viper.SetDefault("library.papers_dir", filepath.Join(".bilimkapsulu", "papers"))
	viper.SetDefault("translate.timeout", 30*time.Second)

	viper.SetEnvPrefix("BILIMKAPSULU")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig assembles the full configuration from viper and the loaded
// secrets.
func appConfig() types.AppConfig {
	return types.AppConfig{
		Sources: types.SourcesConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("sources.timeout"),
				UserAgent: viper.GetString("sources.user_agent"),
			},
			EnableOpenAlex: viper.GetBool("sources.enable_openalex"),
			EnableArxiv:    viper.GetBool("sources.enable_arxiv"),
			EnableSemantic: viper.GetBool("sources.enable_semantic"),
			OpenAlexEmail:  secretDefault("openalex-email", viper.GetString("sources.openalex_email")),
			SemanticAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("sources.semantic_api_key")),
			RelayURL:       viper.GetString("sources.relay_url"),
		},
		Cache: types.CacheConfig{
			Dir: viper.GetString("cache.dir"),
		},
		Library: types.LibraryConfig{
			Path:      viper.GetString("library.path"),
			PapersDir: viper.GetString("library.papers_dir"),
		},
		Translate: types.TranslateConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("translate.timeout"),
				UserAgent: viper.GetString("sources.user_agent"),
			},
			URL:    secretDefault("translator-url", viper.GetString("translate.url")),
			APIKey: secretDefault("translator-api-key", viper.GetString("translate.api_key")),
		},
		CuratedFile: viper.GetString("curated_file"),
	}
}

// newAggregator wires the cache, enabled source backends, and the optional
// translator.
func newAggregator(cfg types.AppConfig) (*aggregate.Aggregator, error) {
	c, err := cache.New(cfg.Cache.Dir, os.Stderr)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Sources.Timeout}
	openAlex := &source.OpenAlexBackend{
		Client:    client,
		Email:     cfg.Sources.OpenAlexEmail,
		UserAgent: cfg.Sources.UserAgent,
	}

	var backends []source.Backend
	if cfg.Sources.EnableOpenAlex {
		backends = append(backends, openAlex)
	}
	if cfg.Sources.EnableArxiv {
		backends = append(backends, &source.ArxivBackend{
			Client:    client,
			UserAgent: cfg.Sources.UserAgent,
			RelayURL:  cfg.Sources.RelayURL,
		})
	}
	if cfg.Sources.EnableSemantic {
		backends = append(backends, source.NewSemanticScholarBackend(
			client, cfg.Sources.SemanticAPIKey, cfg.Sources.UserAgent, cfg.Sources.RelayURL))
	}

	agg := aggregate.New(c, backends, openAlex)
	agg.Warn = os.Stderr
	if t := translate.NewClient(&http.Client{Timeout: cfg.Translate.Timeout},
		cfg.Translate.URL, cfg.Translate.APIKey, cfg.Translate.UserAgent); t != nil {
		agg.Translator = t
	}
	return agg, nil
}

// openLibrary opens the reading-event store.
func openLibrary(cfg types.AppConfig) (*library.Store, error) {
	store, err := library.Open(cfg.Library, os.Stderr)
	if err != nil {
		return nil, err
	}
	store.UserAgent = cfg.Sources.UserAgent
	return store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
