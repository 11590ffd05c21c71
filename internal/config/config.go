package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Map     MapConfig     `yaml:"map" mapstructure:"map"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DatasetConfig points at the source files. Each source may be a local path
// or an http(s):// or ftp:// URL.
type DatasetConfig struct {
	Regions   string `yaml:"regions" mapstructure:"regions"`
	Monuments string `yaml:"monuments" mapstructure:"monuments"`
	Mapping   string `yaml:"mapping" mapstructure:"mapping"`
	// SourceCRS applies to files that do not declare a CRS.
	SourceCRS string `yaml:"source_crs" mapstructure:"source_crs"`
	CacheDir  string `yaml:"cache_dir" mapstructure:"cache_dir"`

	// Property names overriding the built-in candidates.
	NameField       string `yaml:"name_field" mapstructure:"name_field"`
	CodeField       string `yaml:"code_field" mapstructure:"code_field"`
	PopulationField string `yaml:"population_field" mapstructure:"population_field"`

	// MaxNearestKM is the nearest-centroid fallback distance for monuments
	// without a municipality that fall outside every boundary.
	MaxNearestKM float64 `yaml:"max_nearest_km" mapstructure:"max_nearest_km"`
}

// FetchConfig configures downloads of remote sources.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// Timeout returns TimeoutSecs as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit    float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst    int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CacheEntries int      `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTLSecs int      `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
}

// CacheTTL returns CacheTTLSecs as a duration.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSecs) * time.Second
}

// MapConfig configures map presentation.
type MapConfig struct {
	TileURL     string   `yaml:"tile_url" mapstructure:"tile_url"`
	Attribution string   `yaml:"attribution" mapstructure:"attribution"`
	MaxZoom     int      `yaml:"max_zoom" mapstructure:"max_zoom"`
	Palette     []string `yaml:"palette" mapstructure:"palette"`
	NoDataColor string   `yaml:"no_data_color" mapstructure:"no_data_color"`
	LegendTitle string   `yaml:"legend_title" mapstructure:"legend_title"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MONUMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.regions", "data/municipal_monument_count.geojson")
	v.SetDefault("dataset.monuments", "data/monuments_municipality_lookup.geojson")
	v.SetDefault("dataset.mapping", "data/column_mapping_categories.csv")
	v.SetDefault("dataset.source_crs", "EPSG:4326")
	v.SetDefault("dataset.max_nearest_km", 5.0)
	v.SetDefault("dataset.cache_dir", "data/cache")
	v.SetDefault("fetch.user_agent", "monument-map/1.0")
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 5)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "monument-map.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.cache_entries", 256)
	v.SetDefault("server.cache_ttl_secs", 600)
	v.SetDefault("map.tile_url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("map.max_zoom", 19)
	v.SetDefault("map.palette", []string{"#FCFFC9", "#E8C167", "#D67500", "#913640", "#1D0B14"})
	v.SetDefault("map.no_data_color", "#F0F0F0")
	v.SetDefault("map.legend_title", "Aantal monumenten (o.b.v. berekening)")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string
	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.CacheEntries < 0 {
			errs = append(errs, "server.cache_entries must be >= 0")
		}
		if len(c.Map.Palette) == 0 {
			errs = append(errs, "map.palette must not be empty")
		}
	case "import":
		if c.Dataset.Regions == "" {
			errs = append(errs, "dataset.regions is required")
		}
		if c.Dataset.Mapping == "" {
			errs = append(errs, "dataset.mapping is required")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "rank":
		if c.Dataset.Regions == "" && c.Store.DatabaseURL == "" {
			errs = append(errs, "dataset.regions or store.database_url is required")
		}
	case "imports":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "classify":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
