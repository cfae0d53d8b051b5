package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"catalog_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"catalog_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"catalog" description:"Database name"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://catalog.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	CategoriesFile    string `long:"categories-file" env:"CATEGORIES_FILE" default:"./categories.yml" description:"Category alias table file"`
	RedisAddr         string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for token and blacklist caching (optional, in-memory fallback)"`
	CacheTTL          int    `long:"cache-ttl" env:"CACHE_TTL" default:"900" description:"Result cache TTL in seconds"`

	// Marketplace upstream configuration
	MarketplaceBaseUrl      string `long:"marketplace-base-url" env:"MARKETPLACE_BASE_URL" default:"https://api.ebay.com" description:"Marketplace API base URL"`
	MarketplaceAuthUrl      string `long:"marketplace-auth-url" env:"MARKETPLACE_AUTH_URL" default:"https://api.ebay.com/identity/v1/oauth2/token" description:"Marketplace OAuth token URL"`
	MarketplaceClientID     string `long:"marketplace-client-id" env:"MARKETPLACE_CLIENT_ID" description:"Marketplace OAuth client id"`
	MarketplaceClientSecret string `long:"marketplace-client-secret" env:"MARKETPLACE_CLIENT_SECRET" description:"Marketplace OAuth client secret"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"DriverPerks Catalog/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:                  raw.DBHost,
		DBPort:                  raw.DBPort,
		DBUser:                  raw.DBUser,
		DBPassword:              raw.DBPassword,
		DBName:                  raw.DBName,
		Port:                    raw.Port,
		BaseUrl:                 raw.BaseUrl,
		WorkerCount:             raw.WorkerCount,
		SchedulerInterval:       raw.SchedulerInterval,
		APIAccessKey:            raw.APIAccessKey,
		CategoriesFile:          raw.CategoriesFile,
		RedisAddr:               raw.RedisAddr,
		CacheTTL:                raw.CacheTTL,
		MarketplaceBaseUrl:      raw.MarketplaceBaseUrl,
		MarketplaceAuthUrl:      raw.MarketplaceAuthUrl,
		MarketplaceClientID:     raw.MarketplaceClientID,
		MarketplaceClientSecret: raw.MarketplaceClientSecret,
		UserAgent:               raw.UserAgent,
		Timezone:                raw.Timezone,
		Debug:                   raw.Debug,
		Version:                 GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
