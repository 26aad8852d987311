package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tayloree/skinrec/internal/recommend"
)

// Config holds all configuration for skinrec.
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// CatalogConfig locates the product catalog.
type CatalogConfig struct {
	// Path is a local CSV/JSON file or an http(s) URL.
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// DefaultsConfig holds values used when a request leaves them unset.
type DefaultsConfig struct {
	SkinType string `mapstructure:"skin_type"`
	Sort     string `mapstructure:"sort"`
	Limit    int    `mapstructure:"limit"`
}

// ServerConfig holds HTTP adapter configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `mapstructure:"rate_limit"`
	// CORSOrigins are browser origins allowed to call /api.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnvPrefix prefixes every environment override, e.g. SKINREC_CATALOG_PATH.
const EnvPrefix = "SKINREC"

// Load reads configuration from defaults, an optional config file and the
// environment. An explicit configFile must exist; otherwise skinrec.yaml
// is looked up in ".", "./config" and "$HOME/.config/skinrec".
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("skinrec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "skinrec"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Catalog:  CatalogConfig{Path: "skindataall.csv"},
		Defaults: DefaultsConfig{SkinType: "all", Sort: string(recommend.SortRating), Limit: 5},
		Server:   ServerConfig{Addr: ":8080", RateLimit: 120, CORSOrigins: []string{"*"}},
		Log:      LogConfig{Level: "warn", Format: "console"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.watch", d.Catalog.Watch)

	v.SetDefault("defaults.skin_type", d.Defaults.SkinType)
	v.SetDefault("defaults.sort", d.Defaults.Sort)
	v.SetDefault("defaults.limit", d.Defaults.Limit)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		return fmt.Errorf("catalog path is required (set %s_CATALOG_PATH)", EnvPrefix)
	}
	if !recommend.IsSortMode(cfg.Defaults.Sort) {
		return fmt.Errorf("defaults.sort must be rating, brand or relevance, got: %s", cfg.Defaults.Sort)
	}
	if cfg.Defaults.Limit < 0 {
		return fmt.Errorf("defaults.limit must be >= 0, got: %d", cfg.Defaults.Limit)
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be >= 0, got: %d", cfg.Server.RateLimit)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	return nil
}
