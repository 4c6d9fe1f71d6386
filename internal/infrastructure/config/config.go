package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Importer   ImporterConfig
	Reconciler ReconcilerConfig
	Scheduler  SchedulerConfig
	Webhook    WebhookConfig
	Shopify    ShopifyConfig
	Ebay       EbayConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// ImporterConfig holds order import guard settings
type ImporterConfig struct {
	DefaultLookback   time.Duration // window when created_after is absent
	MaxLookback       time.Duration // hard ceiling on the date window
	SourceTagPrefix   string        // tag prefix stamped on imported orders
	FuzzyWindow       time.Duration // timestamp tolerance for fuzzy dedup
	FuzzyAmountCents  int64         // total tolerance in minor units
	CreateMinInterval time.Duration // spacing between order creations
	CreateHourlyCap   int           // max creations per rolling hour
}

// ReconcilerConfig holds inventory reconciliation settings
type ReconcilerConfig struct {
	BatchDelay time.Duration // pause between SKUs in a sweep
}

// SchedulerConfig holds background sync loop settings
type SchedulerConfig struct {
	Enabled           bool
	OrderInterval     time.Duration // order import sweep interval
	InventoryInterval time.Duration // inventory reconciliation interval
	LockTTL           time.Duration // cross-process run lock lifetime
}

// WebhookConfig holds webhook intake settings
type WebhookConfig struct {
	QueueSize   int // buffered channel capacity between intake and consumer
	ReplayBatch int // pending rows reloaded per replay pass on startup
}

// ShopifyConfig holds storefront API credentials
type ShopifyConfig struct {
	ShopDomain     string
	AccessToken    string
	APIVersion     string
	TimeoutSeconds int
}

// EbayConfig holds marketplace API credentials
type EbayConfig struct {
	Token          string
	MarketplaceID  string
	Sandbox        bool
	TimeoutSeconds int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHOPBRIDGE_ prefix (e.g., SHOPBRIDGE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("SHOPBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Importer: ImporterConfig{
			DefaultLookback:   v.GetDuration("importer.default_lookback"),
			MaxLookback:       v.GetDuration("importer.max_lookback"),
			SourceTagPrefix:   v.GetString("importer.source_tag_prefix"),
			FuzzyWindow:       v.GetDuration("importer.fuzzy_window"),
			FuzzyAmountCents:  v.GetInt64("importer.fuzzy_amount_cents"),
			CreateMinInterval: v.GetDuration("importer.create_min_interval"),
			CreateHourlyCap:   v.GetInt("importer.create_hourly_cap"),
		},
		Reconciler: ReconcilerConfig{
			BatchDelay: v.GetDuration("reconciler.batch_delay"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("scheduler.enabled"),
			OrderInterval:     v.GetDuration("scheduler.order_interval"),
			InventoryInterval: v.GetDuration("scheduler.inventory_interval"),
			LockTTL:           v.GetDuration("scheduler.lock_ttl"),
		},
		Webhook: WebhookConfig{
			QueueSize:   v.GetInt("webhook.queue_size"),
			ReplayBatch: v.GetInt("webhook.replay_batch"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:     v.GetString("shopify.shop_domain"),
			AccessToken:    v.GetString("shopify.access_token"),
			APIVersion:     v.GetString("shopify.api_version"),
			TimeoutSeconds: v.GetInt("shopify.timeout_seconds"),
		},
		Ebay: EbayConfig{
			Token:          v.GetString("ebay.token"),
			MarketplaceID:  v.GetString("ebay.marketplace_id"),
			Sandbox:        v.GetBool("ebay.sandbox"),
			TimeoutSeconds: v.GetInt("ebay.timeout_seconds"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopbridge-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "shopbridge"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Importer.DefaultLookback == 0 {
		cfg.Importer.DefaultLookback = 24 * time.Hour
	}
	if cfg.Importer.MaxLookback == 0 {
		cfg.Importer.MaxLookback = 7 * 24 * time.Hour
	}
	if cfg.Importer.SourceTagPrefix == "" {
		cfg.Importer.SourceTagPrefix = "ebay-order"
	}
	if cfg.Importer.FuzzyWindow == 0 {
		cfg.Importer.FuzzyWindow = 24 * time.Hour
	}
	if cfg.Importer.FuzzyAmountCents == 0 {
		cfg.Importer.FuzzyAmountCents = 1
	}
	if cfg.Importer.CreateMinInterval == 0 {
		cfg.Importer.CreateMinInterval = 2 * time.Second
	}
	if cfg.Importer.CreateHourlyCap == 0 {
		cfg.Importer.CreateHourlyCap = 60
	}
	if cfg.Reconciler.BatchDelay == 0 {
		cfg.Reconciler.BatchDelay = 500 * time.Millisecond
	}
	if cfg.Scheduler.OrderInterval == 0 {
		cfg.Scheduler.OrderInterval = 15 * time.Minute
	}
	if cfg.Scheduler.InventoryInterval == 0 {
		cfg.Scheduler.InventoryInterval = 30 * time.Minute
	}
	if cfg.Scheduler.LockTTL == 0 {
		cfg.Scheduler.LockTTL = 10 * time.Minute
	}
	if cfg.Webhook.QueueSize == 0 {
		cfg.Webhook.QueueSize = 256
	}
	if cfg.Webhook.ReplayBatch == 0 {
		cfg.Webhook.ReplayBatch = 100
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-01"
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = 30
	}
	if cfg.Ebay.MarketplaceID == "" {
		cfg.Ebay.MarketplaceID = "EBAY_US"
	}
	if cfg.Ebay.TimeoutSeconds == 0 {
		cfg.Ebay.TimeoutSeconds = 30
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	// Import guard bounds
	if c.Importer.MaxLookback < c.Importer.DefaultLookback {
		return fmt.Errorf("importer.max_lookback (%s) cannot be shorter than importer.default_lookback (%s)",
			c.Importer.MaxLookback, c.Importer.DefaultLookback)
	}
	if c.Importer.CreateHourlyCap < 0 {
		return fmt.Errorf("importer.create_hourly_cap cannot be negative")
	}
	if c.Importer.FuzzyAmountCents < 0 {
		return fmt.Errorf("importer.fuzzy_amount_cents cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Shopify.ShopDomain == "" || c.Shopify.AccessToken == "" {
			return fmt.Errorf("shopify.shop_domain and shopify.access_token are required in production")
		}
		if c.Ebay.Token == "" {
			return fmt.Errorf("ebay.token is required in production")
		}
		if c.Ebay.Sandbox {
			return fmt.Errorf("ebay.sandbox must be false in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for the Redis connection.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
