package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeWeb = "web"
	ModeTUI = "tui"

	DefaultBackendURL   = "http://localhost:5001"
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultListen       = ":8080"
)

type Config struct {
	Mode     string
	LogLevel string

	BackendURL string

	CoinGeckoURL      string
	CoinGeckoAPIKey   string
	RequestsPerMinute int

	Timeout    time.Duration
	MaxRetries int

	TopCoins            int
	HistoryDays         int
	ComparisonSize      int
	SyntheticComparison bool

	Listen     string
	AutoTLS    bool
	Domains    []string
	CertCache  string
	SessionTTL time.Duration
}

type ConfigTmp struct {
	Mode     string `yaml:"mode"`
	LogLevel string `yaml:"log_level"`
	Backend  struct {
		URL string `yaml:"url"`
	} `yaml:"backend"`
	CoinGecko struct {
		URL               string `yaml:"url"`
		APIKey            string `yaml:"api_key"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"coingecko"`
	Gateway struct {
		Timeout    string `yaml:"timeout"`
		MaxRetries *int   `yaml:"max_retries"`
	} `yaml:"gateway"`
	Dashboard struct {
		TopCoins       int `yaml:"top_coins"`
		HistoryDays    int `yaml:"history_days"`
		ComparisonSize int `yaml:"comparison_size"`
	} `yaml:"dashboard"`
	Comparison struct {
		Synthetic bool `yaml:"synthetic"`
	} `yaml:"comparison"`
	Web struct {
		Listen     string   `yaml:"listen"`
		AutoTLS    bool     `yaml:"auto_tls"`
		Domains    []string `yaml:"domains"`
		CertCache  string   `yaml:"cert_cache"`
		SessionTTL string   `yaml:"session_ttl"`
	} `yaml:"web"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Mode:              ModeWeb,
		LogLevel:          "info",
		BackendURL:        DefaultBackendURL,
		CoinGeckoURL:      DefaultCoinGeckoURL,
		RequestsPerMinute: 30,
		Timeout:           10 * time.Second,
		MaxRetries:        2,
		TopCoins:          10,
		HistoryDays:       7,
		ComparisonSize:    5,
		Listen:            DefaultListen,
		CertCache:         "cert-cache",
		SessionTTL:        12 * time.Hour,
	}
}

// Get reads the configuration from the command line: a yaml file when --config is
// given, flags otherwise. Secrets come from the environment, loaded from .env if present.
func Get() (Config, error) {
	_ = godotenv.Load()
	return Parse(os.Args[1:], os.Getenv)
}

// Parse is Get with explicit arguments and environment lookup.
func Parse(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("walletwatch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	def := Default()
	cfg := def
	configPath := fs.String("config", "", "path to yaml config")
	fs.StringVar(&cfg.Mode, "mode", def.Mode, "front end: web or tui")
	fs.StringVar(&cfg.LogLevel, "loglevel", def.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.BackendURL, "backend", def.BackendURL, "wallet backend base url")
	fs.StringVar(&cfg.CoinGeckoURL, "coingecko", def.CoinGeckoURL, "CoinGecko api base url")
	fs.DurationVar(&cfg.Timeout, "timeout", def.Timeout, "per-call timeout")
	fs.IntVar(&cfg.TopCoins, "topcoins", def.TopCoins, "number of coins in the market list")
	fs.IntVar(&cfg.HistoryDays, "historydays", def.HistoryDays, "days of price history per coin")
	fs.BoolVar(&cfg.SyntheticComparison, "synthetic", def.SyntheticComparison, "use generated data in the comparison chart")
	fs.StringVar(&cfg.Listen, "listen", def.Listen, "web listen address")
	domains := fs.String("domains", "", "comma separated domains for automatic TLS")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if *configPath != "" {
		fromFlags := cfg
		var err error
		cfg, err = getYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		// flags given explicitly win over the file
		fs.Visit(func(f *flag.Flag) {
			override(&cfg, fromFlags, f.Name)
		})
	}
	if *domains != "" {
		cfg.AutoTLS = true
		cfg.Domains = splitList(*domains)
	}

	applyEnv(&cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Mode != ModeWeb && c.Mode != ModeTUI {
		return fmt.Errorf("invalid mode %q, expected %s or %s", c.Mode, ModeWeb, ModeTUI)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("backend url is required")
	}
	if c.CoinGeckoURL == "" {
		return fmt.Errorf("coingecko url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.TopCoins <= 0 || c.TopCoins > 250 {
		return fmt.Errorf("top coins must be between 1 and 250, got %d", c.TopCoins)
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("history days must be positive, got %d", c.HistoryDays)
	}
	if c.AutoTLS && len(c.Domains) == 0 {
		return fmt.Errorf("auto tls requires at least one domain")
	}
	return nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, fmt.Errorf("incorrect yaml config %s: %w", path, err)
	}

	cfg := Default()
	setString(&cfg.Mode, tmp.Mode)
	setString(&cfg.LogLevel, tmp.LogLevel)
	setString(&cfg.BackendURL, strings.TrimRight(tmp.Backend.URL, "/"))
	setString(&cfg.CoinGeckoURL, strings.TrimRight(tmp.CoinGecko.URL, "/"))
	setString(&cfg.CoinGeckoAPIKey, tmp.CoinGecko.APIKey)
	setInt(&cfg.RequestsPerMinute, tmp.CoinGecko.RequestsPerMinute)
	setInt(&cfg.TopCoins, tmp.Dashboard.TopCoins)
	setInt(&cfg.HistoryDays, tmp.Dashboard.HistoryDays)
	setInt(&cfg.ComparisonSize, tmp.Dashboard.ComparisonSize)
	cfg.SyntheticComparison = tmp.Comparison.Synthetic
	if tmp.Gateway.MaxRetries != nil {
		cfg.MaxRetries = *tmp.Gateway.MaxRetries
	}

	if tmp.Gateway.Timeout != "" {
		cfg.Timeout, err = time.ParseDuration(tmp.Gateway.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'gateway.timeout' param in yaml config (correct format is 10s), error: %w", err)
		}
	}

	setString(&cfg.Listen, tmp.Web.Listen)
	setString(&cfg.CertCache, tmp.Web.CertCache)
	cfg.AutoTLS = tmp.Web.AutoTLS
	cfg.Domains = tmp.Web.Domains
	if tmp.Web.SessionTTL != "" {
		cfg.SessionTTL, err = time.ParseDuration(tmp.Web.SessionTTL)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'web.session_ttl' param in yaml config (correct format is 12h), error: %w", err)
		}
	}

	return cfg, nil
}

func override(cfg *Config, flags Config, name string) {
	switch name {
	case "mode":
		cfg.Mode = flags.Mode
	case "loglevel":
		cfg.LogLevel = flags.LogLevel
	case "backend":
		cfg.BackendURL = flags.BackendURL
	case "coingecko":
		cfg.CoinGeckoURL = flags.CoinGeckoURL
	case "timeout":
		cfg.Timeout = flags.Timeout
	case "topcoins":
		cfg.TopCoins = flags.TopCoins
	case "historydays":
		cfg.HistoryDays = flags.HistoryDays
	case "synthetic":
		cfg.SyntheticComparison = flags.SyntheticComparison
	case "listen":
		cfg.Listen = flags.Listen
	}
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		cfg.CoinGeckoAPIKey = v
	}
	if v := getenv("WALLETWATCH_BACKEND_URL"); v != "" {
		cfg.BackendURL = strings.TrimRight(v, "/")
	}
	if v := getenv("COINGECKO_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RequestsPerMinute = n
		}
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
