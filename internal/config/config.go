// Package config loads the bot configuration from the environment, an optional
// .env file and an optional YAML tunables file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment keys.
const (
	EnvBotToken      = "BOT_TOKEN"
	EnvRPCURL        = "RPC_URL"
	EnvReferralLink  = "PARTNER_REFERRAL_LINK"
	EnvAdminID       = "PARTNER_TELEGRAM_ID"
	EnvCMCAPIKey     = "CMC_API_KEY"
	EnvChannelName   = "CHANNEL_NAME"
	EnvPostgresDSN   = "POSTGRES_DSN"
	EnvClickhouseDSN = "CLICKHOUSE_DSN"
	EnvOpsAddr       = "OPS_ADDR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvConfigFile    = "CONFIG_FILE"
)

// DefaultOpsAddr is used when OPS_ADDR is unset. An explicitly empty OPS_ADDR disables the ops server.
const DefaultOpsAddr = ":9090"

var requiredKeys = []string{
	EnvBotToken,
	EnvRPCURL,
	EnvReferralLink,
	EnvAdminID,
	EnvCMCAPIKey,
	EnvChannelName,
}

// ConfigurationError lists every missing or malformed required setting.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// Config is the full runtime configuration.
type Config struct {
	BotToken     string
	RPCURL       string
	ReferralLink string
	AdminID      int64
	CMCAPIKey    string
	ChannelName  string

	PostgresDSN   string
	ClickhouseDSN string
	OpsAddr       string
	LogLevel      string
	ConfigFile    string

	Tunables Tunables
}

type Price struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Symbol   string        `yaml:"symbol"`
	Convert  string        `yaml:"convert"`
}

type Partner struct {
	StatsURL string        `yaml:"stats_url"` // empty: derived from the referral link
	Timeout  time.Duration `yaml:"timeout"`
}

type Bot struct {
	Workers     int `yaml:"workers"`
	PollTimeout int `yaml:"poll_timeout"` // seconds
}

// Tunables are optional settings read from the YAML file.
type Tunables struct {
	Price   Price   `yaml:"price"`
	Partner Partner `yaml:"partner"`
	Bot     Bot     `yaml:"bot"`
}

// Load reads envFile into the process environment (existing variables win, a missing
// file is ignored), then builds the configuration from the environment.
// configFile overrides CONFIG_FILE when non-empty.
func Load(envFile, configFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		cfg.ConfigFile = configFile
	}
	tunables, err := LoadTunables(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.Tunables = tunables

	return cfg, nil
}

// FromEnv builds the configuration from lookup. Tunables get defaults only.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfgErr := &ConfigurationError{}
	for _, key := range requiredKeys {
		if get(key) == "" {
			cfgErr.Missing = append(cfgErr.Missing, key)
		}
	}

	var adminID int64
	if raw := get(EnvAdminID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			cfgErr.Invalid = append(cfgErr.Invalid, EnvAdminID)
		}
		adminID = id
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return nil, cfgErr
	}

	opsAddr, ok := lookup(EnvOpsAddr)
	if !ok {
		opsAddr = DefaultOpsAddr
	}

	logLevel := get(EnvLogLevel)
	if logLevel == "" {
		logLevel = "info"
	}

	cfg := &Config{
		BotToken:      get(EnvBotToken),
		RPCURL:        get(EnvRPCURL),
		ReferralLink:  get(EnvReferralLink),
		AdminID:       adminID,
		CMCAPIKey:     get(EnvCMCAPIKey),
		ChannelName:   get(EnvChannelName),
		PostgresDSN:   get(EnvPostgresDSN),
		ClickhouseDSN: get(EnvClickhouseDSN),
		OpsAddr:       strings.TrimSpace(opsAddr),
		LogLevel:      logLevel,
		ConfigFile:    get(EnvConfigFile),
	}
	cfg.Tunables.applyDefaults()
	return cfg, nil
}

// LoadTunables reads the YAML file at path and applies defaults. An empty path yields defaults.
func LoadTunables(path string) (Tunables, error) {
	var t Tunables
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Tunables{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &t); err != nil {
			return Tunables{}, fmt.Errorf("parse yaml: %w", err)
		}
	}
	t.applyDefaults()
	return t, nil
}

func (t *Tunables) applyDefaults() {
	// Defaults
	if t.Price.CacheTTL == 0 {
		t.Price.CacheTTL = 15 * time.Minute
	}
	if t.Price.BaseURL == "" {
		t.Price.BaseURL = "https://pro-api.coinmarketcap.com"
	}
	if t.Price.Timeout == 0 {
		t.Price.Timeout = 10 * time.Second
	}
	if t.Price.Symbol == "" {
		t.Price.Symbol = "SOL"
	}
	if t.Price.Convert == "" {
		t.Price.Convert = "USD"
	}
	if t.Partner.Timeout == 0 {
		t.Partner.Timeout = 10 * time.Second
	}
	if t.Bot.Workers == 0 {
		t.Bot.Workers = 16
	}
	if t.Bot.PollTimeout == 0 {
		t.Bot.PollTimeout = 60
	}
}
