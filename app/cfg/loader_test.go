package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	// Test that version is at least "dev" or "unknown"
	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	// Create a config instance to test field access
	cfg := &Cfg{
		Port:                    "8080",
		BaseUrl:                 "https://catalog.example.com",
		UserAgent:               "Test Agent",
		WorkerCount:             5,
		SchedulerInterval:       300,
		APIAccessKey:            "test-key",
		Version:                 "test-version",
		CategoriesFile:          "./categories.yml",
		RedisAddr:               "localhost:6379",
		CacheTTL:                900,
		MarketplaceBaseUrl:      "https://api.ebay.com",
		MarketplaceAuthUrl:      "https://api.ebay.com/identity/v1/oauth2/token",
		MarketplaceClientID:     "client-id",
		MarketplaceClientSecret: "client-secret",
		DBHost:                  "localhost",
		DBPort:                  "5432",
		DBUser:                  "test_user",
		DBPassword:              "test_password",
		DBName:                  "test_db",
		Timezone:                "UTC",
		Debug:                   true,
	}

	// Test direct field access
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.BaseUrl != "https://catalog.example.com" {
		t.Errorf("Expected base URL 'https://catalog.example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 300 {
		t.Errorf("Expected scheduler interval 300, got %d", cfg.SchedulerInterval)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.CategoriesFile != "./categories.yml" {
		t.Errorf("Expected categories file './categories.yml', got '%s'", cfg.CategoriesFile)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("Expected redis addr 'localhost:6379', got '%s'", cfg.RedisAddr)
	}
	if cfg.CacheTTL != 900 {
		t.Errorf("Expected cache TTL 900, got %d", cfg.CacheTTL)
	}
	if cfg.MarketplaceClientID != "client-id" {
		t.Errorf("Expected marketplace client id 'client-id', got '%s'", cfg.MarketplaceClientID)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("Expected DB host 'localhost', got '%s'", cfg.DBHost)
	}
	if cfg.DBName != "test_db" {
		t.Errorf("Expected DB name 'test_db', got '%s'", cfg.DBName)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
