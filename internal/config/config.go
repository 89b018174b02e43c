// Package config loads engine configuration from a TOML file and
// assembles the per-translation source chains it describes.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/FocuswithJustin/ChronoVerse/core/errors"
	"github.com/FocuswithJustin/ChronoVerse/internal/source"
	"github.com/FocuswithJustin/ChronoVerse/internal/store"
)

// Config is the full engine configuration.
type Config struct {
	// DataDir holds the per-translation cache databases.
	DataDir string `toml:"data_dir"`

	// TimeFormat is "12" or "24".
	TimeFormat string `toml:"time_format"`

	// Translation is the preferred translation code, or "random".
	Translation string `toml:"translation"`

	// SecondaryTranslation enables parallel-translation presentation
	// when non-empty.
	SecondaryTranslation string `toml:"secondary_translation"`

	// FetchTimeoutSeconds bounds each remote adapter attempt.
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"`

	Server       Server        `toml:"server"`
	Sources      Sources       `toml:"sources"`
	Translations []Translation `toml:"translations"`
}

// Server configures the API server.
type Server struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Sources configures the remote adapter endpoints.
type Sources struct {
	// ScrapeURL is the public passage page scraped as a fallback.
	ScrapeURL string `toml:"scrape_url"`

	// GenericURL is the multi-translation JSON API root.
	GenericURL string `toml:"generic_url"`

	// KeyedURL is the credentialed XML API endpoint.
	KeyedURL string `toml:"keyed_url"`

	// KeyedTokenEnv names the environment variable holding the keyed
	// API token. The adapter is a no-op when the variable is unset.
	KeyedTokenEnv string `toml:"keyed_token_env"`
}

// Translation describes one supported translation and its chain.
type Translation struct {
	Code string `toml:"code"`

	// Chain lists adapter names in try order: "cache", "scrape",
	// "keyed-api", "web-api", "static".
	Chain []string `toml:"chain"`

	// ScrapeVersion overrides the scrape site's version code when it
	// differs from the uppercased translation code.
	ScrapeVersion string `toml:"scrape_version"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:             "data",
		TimeFormat:          "12",
		Translation:         "kjv",
		FetchTimeoutSeconds: 15,
		Server: Server{
			Port: 8345,
		},
		Sources: Sources{
			ScrapeURL:     "https://www.biblegateway.com/passage/",
			GenericURL:    "https://bible-api.com",
			KeyedURL:      "https://api.scripture.example.com/v1/passage",
			KeyedTokenEnv: "CHRONOVERSE_API_TOKEN",
		},
		Translations: []Translation{
			{Code: "kjv", Chain: []string{"cache", "scrape", "web-api", "static"}},
			{Code: "web", Chain: []string{"cache", "web-api", "scrape", "static"}},
			{Code: "asv", Chain: []string{"cache", "web-api", "static"}},
			{Code: "bbe", Chain: []string{"cache", "web-api", "static"}},
			{Code: "esv", Chain: []string{"cache", "keyed-api", "scrape", "static"}},
		},
	}
}

// Load reads a TOML config file over the defaults. A missing path (or
// empty path) yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, &errors.ParseError{Format: "TOML", Input: path, Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// FetchTimeout returns the per-attempt timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return source.DefaultTimeout
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// TranslationCodes lists the configured translation codes in order.
func (c Config) TranslationCodes() []string {
	codes := make([]string, 0, len(c.Translations))
	for _, t := range c.Translations {
		codes = append(codes, t.Code)
	}
	return codes
}

// BuildExecutor assembles the chain executor from the configuration.
func (c Config) BuildExecutor(st *store.Store) *source.Executor {
	scrapeVersions := make(map[string]string)
	for _, t := range c.Translations {
		if t.ScrapeVersion != "" {
			scrapeVersions[t.Code] = t.ScrapeVersion
		}
	}

	adapters := map[string]source.Source{
		"cache":  source.NewCache(st),
		"scrape": source.NewScrape(source.ScrapeConfig{BaseURL: c.Sources.ScrapeURL, Versions: scrapeVersions}),
		"keyed-api": source.NewKeyed(source.KeyedConfig{
			BaseURL:  c.Sources.KeyedURL,
			TokenEnv: c.Sources.KeyedTokenEnv,
		}),
		"web-api": source.NewGeneric(source.GenericConfig{BaseURL: c.Sources.GenericURL}),
		"static":  source.NewStatic(),
	}

	exec := source.NewExecutor(st, c.FetchTimeout())
	for _, t := range c.Translations {
		var chain []source.Source
		for _, name := range t.Chain {
			if src, ok := adapters[name]; ok {
				chain = append(chain, src)
			}
		}
		exec.Register(t.Code, chain)
	}
	// Unknown translations still get the cache, the generic API, and
	// the terminal fallback.
	exec.SetDefaultChain([]source.Source{adapters["cache"], adapters["web-api"], adapters["static"]})
	return exec
}
