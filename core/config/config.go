package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	Scraper  ScraperConfig
	AI       AIConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	Timezone           string
	CorsAllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
}

type ValkeyConfig struct {
	Enabled   bool
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type ScraperConfig struct {
	APIToken string
	URL      string
	Timeout  time.Duration
}

type AIConfig struct {
	Provider           string
	OpenAIKey          string
	OpenAIModel        string
	OpenAIVisionModel  string
	TranscriptionModel string
	GeminiKey          string
	GeminiModel        string
	MaxVideoBytes      int64
	MaxImageBytes      int64
	TempDir            string
	Timeout            time.Duration
}

type CacheConfig struct {
	Retention     time.Duration
	SweepInterval time.Duration
}

const (
	DefaultApifyURL      = "https://api.apify.com/v2/acts/apify~facebook-ads-scraper/run-sync-get-dataset-items"
	DefaultRetention     = 7 * 24 * time.Hour
	DefaultSweepInterval = 24 * time.Hour

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Global provides access to the loaded configuration globally (Migration Helper)
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	cors := []string{"*"}
	if v := getEnv("APP_CORS_ALLOWED_ORIGINS", ""); v != "" {
		cors = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.0.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              getEnvBool("APP_DEBUG", false),
		Environment:        getEnv("APP_ENV", "development"),
		BasePath:           strings.TrimSuffix(getEnv("APP_BASE_PATH", ""), "/"),
		Timezone:           getEnv("APP_TIMEZONE", "UTC"),
		CorsAllowedOrigins: cors,
	}

	dbDriver := getEnv("DB_DRIVER", "postgres")
	dbName := getEnv("DB_NAME", "fb_ads")
	if dbDriver == "sqlite" && filepath.Ext(dbName) == "" {
		dbName = filepath.Join("storages", dbName+".db")
	}
	dbCfg := DatabaseConfig{
		Driver:   dbDriver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     dbName,
	}

	vkCfg := ValkeyConfig{
		Enabled:   getEnvBool("VALKEY_ENABLED", false),
		Address:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		Password:  getEnv("VALKEY_PASSWORD", ""),
		DB:        getEnvInt("VALKEY_DB", 0),
		KeyPrefix: getEnv("VALKEY_KEY_PREFIX", "adlib:"),
	}

	scraperCfg := ScraperConfig{
		APIToken: getEnv("APIFY_API_TOKEN", ""),
		URL:      getEnv("APIFY_URL", DefaultApifyURL),
		Timeout:  getEnvDuration("APIFY_TIMEOUT", 5*time.Minute),
	}

	aiCfg := AIConfig{
		Provider:           strings.ToLower(getEnv("AI_PROVIDER", ProviderOpenAI)),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIVisionModel:  getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
		TranscriptionModel: getEnv("OPENAI_TRANSCRIPTION_MODEL", "whisper-1"),
		GeminiKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		MaxVideoBytes:      getEnvInt64("AI_MAX_VIDEO_BYTES", 25*1024*1024),
		MaxImageBytes:      getEnvInt64("AI_MAX_IMAGE_BYTES", 4*1024*1024),
		TempDir:            getEnv("AI_TEMP_DIR", ""),
		Timeout:            getEnvDuration("AI_TIMEOUT", 3*time.Minute),
	}

	cacheCfg := CacheConfig{
		Retention:     getEnvDuration("CACHE_RETENTION", DefaultRetention),
		SweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", DefaultSweepInterval),
	}

	cfg := &Config{
		App:      appCfg,
		Database: dbCfg,
		Valkey:   vkCfg,
		Scraper:  scraperCfg,
		AI:       aiCfg,
		Cache:    cacheCfg,
	}

	Global = cfg
	return cfg, nil
}

// Location resolves App.Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	if c == nil || c.App.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
