package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Specification struct {
	Provider   string              `yaml:"provider"`
	APIKey     string              `yaml:"providerApiKey" envconfig:"PROVIDER_API_KEY"`
	ChatModel  string              `yaml:"providerChatModel" envconfig:"PROVIDER_CHAT_MODEL"`
	BaseURL    string              `yaml:"providerBaseURL" envconfig:"PROVIDER_BASE_URL"`
	ProjectID  string              `yaml:"providerProjectID" envconfig:"PROVIDER_PROJECT_ID"`
	Location   string              `yaml:"providerLocation" envconfig:"PROVIDER_LOCATION"`
	Database   string              `yaml:"database" envconfig:"DB_URL"`
	CuratedDir string              `yaml:"curatedDir" split_words:"true"`
	LogLevel   string              `yaml:"logLevel" split_words:"true"`
	Port       int                 `yaml:"port" split_words:"true"`
	Github     GithubSpecification `yaml:"github"`
	PS99       PS99Specification   `yaml:"ps99" envconfig:"PS99"`

	flags *pflag.FlagSet `ignored:"true"`
}

type GithubSpecification struct {
	Token            string `yaml:"token"`
	APIURL           string `yaml:"apiURL" envconfig:"API_URL"`
	PerPage          int    `yaml:"perPage" split_words:"true"`
	PreviewLines     int    `yaml:"previewLines" split_words:"true"`
	FetchConcurrency int    `yaml:"fetchConcurrency" split_words:"true"`
	CacheSize        int    `yaml:"cacheSize" split_words:"true"`
}

type PS99Specification struct {
	URL      string        `yaml:"url"`
	CacheTTL time.Duration `yaml:"cacheTTL" envconfig:"CACHE_TTL"`
}

const envPrefix = "AHKFINDER"

func (s *Specification) Usage() {
	fmt.Fprint(os.Stderr, s.flags.FlagUsages())
}

// Load => defaults < YAML < env < flags.
// configPath may be ""; if so we auto-discover.
func Load(configPath string, fs *pflag.FlagSet) (Specification, error) {
	var cfg Specification

	// set defaults (lowest precedence)
	setDefaults(&cfg)
	bindFlags(fs, &cfg)

	// config file
	path := configPath
	if path == "" {
		if v := os.Getenv(envPrefix + "_CONFIG"); v != "" {
			path = v
		} else {
			for _, cand := range []string{
				"config/ahkfinder.yaml",
				"config/config.yaml",
				"./ahkfinder.yaml",
				"./config.yaml",
			} {
				if fileExists(cand) {
					path = cand
					break
				}
			}
		}
	}

	if path != "" {
		if !fileExists(path) {
			return Specification{}, fmt.Errorf("config file not found: %s", path)
		}
		if err := loadYAML(path, &cfg); err != nil {
			return Specification{}, fmt.Errorf("load yaml %s: %w", path, err)
		}
	}

	// env overrides config file
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Specification{}, fmt.Errorf("env override: %w", err)
	}
	applyWellKnownEnv(&cfg)

	// flags override everything
	if err := fs.Parse(os.Args[1:]); err != nil {
		return Specification{}, err
	}
	applyChangedFlags(fs, &cfg)

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.Validate(); err != nil {
		return Specification{}, err
	}
	return cfg, nil
}

// Validate applies the minimal sanity checks.
func (s *Specification) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.Github.PerPage < 1 || s.Github.PerPage > 100 {
		return fmt.Errorf("github per-page must be between 1 and 100, got %d", s.Github.PerPage)
	}
	return nil
}

// ---------- helpers ----------

// applyWellKnownEnv fills credentials from the unprefixed variables that the
// GitHub and OpenAI tooling use, when nothing else set them.
func applyWellKnownEnv(c *Specification) {
	if c.Github.Token == "" {
		c.Github.Token = os.Getenv("GITHUB_TOKEN")
	}
	if c.APIKey == "" && c.Provider == "openai" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func loadYAML(path string, into any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, into)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

func bindFlags(fs *pflag.FlagSet, c *Specification) {
	fs.String("config", "", "Path to config file")

	// If --config is provided on the command line, capture it now so
	// config discovery (which runs before flags.Parse) can use it.
	for i, a := range os.Args {
		if a == "--config" {
			if i+1 < len(os.Args) && !strings.HasPrefix(os.Args[i+1], "-") {
				_ = os.Setenv(envPrefix+"_CONFIG", os.Args[i+1])
			}
		} else if strings.HasPrefix(a, "--config=") {
			parts := strings.SplitN(a, "=", 2)
			if len(parts) == 2 {
				_ = os.Setenv(envPrefix+"_CONFIG", parts[1])
			}
		}
	}

	fs.String("provider", c.Provider, "Provider (stub, openai, vertexai, google)")
	fs.String("provider-api-key", c.APIKey, "Provider API key")
	fs.String("provider-chat-model", c.ChatModel, "Provider chat model")
	fs.String("provider-base-url", c.BaseURL, "Provider base URL (OpenAI-compatible endpoint)")
	fs.String("provider-project-id", c.ProjectID, "Provider project ID")
	fs.String("provider-location", c.Location, "Provider location/region")

	fs.String("db-url", c.Database, "Database URL (DSN); empty keeps scripts in memory")
	fs.String("curated-dir", c.CuratedDir, "Directory of curated .ahk scripts")

	fs.String("github-token", c.Github.Token, "GitHub API token")
	fs.String("github-api-url", c.Github.APIURL, "GitHub API base URL")
	fs.Int("github-per-page", c.Github.PerPage, "Default search results per page (1-100)")
	fs.Int("github-preview-lines", c.Github.PreviewLines, "Lines of content shown in previews")
	fs.Int("github-fetch-concurrency", c.Github.FetchConcurrency, "Concurrent content fetches per search")
	fs.Int("github-cache-size", c.Github.CacheSize, "Number of file contents kept in the preview cache")

	fs.String("ps99-url", c.PS99.URL, "Pet Simulator 99 API base URL")
	fs.Duration("ps99-cache-ttl", c.PS99.CacheTTL, "How long successful PS99 responses are cached")

	fs.String("log-level", c.LogLevel, "Log level (debug|info|warn|error)")
	fs.Int("port", c.Port, "API server port")

	// Used later for usage/help
	// create a shallow copy of fs (so Usage can be called safely without mutating caller)
	copied := pflag.NewFlagSet("temp", pflag.ContinueOnError)
	*copied = *fs
	c.flags = copied
}

func applyChangedFlags(fs *pflag.FlagSet, c *Specification) {
	setStr := func(name string, dst *string) {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if fs.Changed(name) {
			v, _ := fs.GetInt(name)
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if fs.Changed(name) {
			v, _ := fs.GetDuration(name)
			*dst = v
		}
	}

	// (We ignore --config here; it's for discovery.)
	setStr("provider", &c.Provider)
	setStr("provider-api-key", &c.APIKey)
	setStr("provider-chat-model", &c.ChatModel)
	setStr("provider-base-url", &c.BaseURL)
	setStr("provider-project-id", &c.ProjectID)
	setStr("provider-location", &c.Location)

	setStr("db-url", &c.Database)
	setStr("curated-dir", &c.CuratedDir)

	setStr("github-token", &c.Github.Token)
	setStr("github-api-url", &c.Github.APIURL)
	setInt("github-per-page", &c.Github.PerPage)
	setInt("github-preview-lines", &c.Github.PreviewLines)
	setInt("github-fetch-concurrency", &c.Github.FetchConcurrency)
	setInt("github-cache-size", &c.Github.CacheSize)

	setStr("ps99-url", &c.PS99.URL)
	setDuration("ps99-cache-ttl", &c.PS99.CacheTTL)

	setStr("log-level", &c.LogLevel)
	setInt("port", &c.Port)
}

func setDefaults(c *Specification) {
	c.LogLevel = "info"
	c.Provider = "stub"
	c.Location = "us-central1"
	c.Database = ""
	c.CuratedDir = "curated"
	c.Port = 5000
	c.Github.APIURL = "https://api.github.com"
	c.Github.PerPage = 30
	c.Github.PreviewLines = 6
	c.Github.FetchConcurrency = 8
	c.Github.CacheSize = 512
	c.PS99.URL = "https://biggamesapi.io/api"
	c.PS99.CacheTTL = 30 * time.Second
}
