package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AzielCF/az-adlib/core/config"
	"github.com/AzielCF/az-adlib/core/database"
	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
	"github.com/AzielCF/az-adlib/domains/health"
	"github.com/AzielCF/az-adlib/infrastructure/adstore"
	"github.com/AzielCF/az-adlib/infrastructure/valkey"
	"github.com/AzielCF/az-adlib/integrations/apify"
	"github.com/AzielCF/az-adlib/integrations/gemini"
	openaiProvider "github.com/AzielCF/az-adlib/integrations/openai"
	"github.com/AzielCF/az-adlib/pkg/mediafetch"
	"github.com/AzielCF/az-adlib/usecase"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	db         *gorm.DB
	vkClient   *valkey.Client
	cacheStore *adstore.CacheGormRepository
	mediaFetch *mediafetch.Fetcher

	// Usecase
	adsUsecase      domainAds.IAdsUsecase
	analysisUsecase domainAnalysis.IAnalysisUsecase
	healthUsecase   health.IHealthUsecase
	cacheJanitor    domainAds.ICacheJanitor
)

var rootCmd = &cobra.Command{
	Use:   "adlib",
	Short: "Facebook ad library scraper with cached results and AI analysis",
	Long: `Scrapes a Facebook page's ad library through Apify, caches the normalized
ads in a relational store and turns a cached ad into a reusable creative brief.`,
}

func init() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()
	cobra.OnInitialize(initEnvConfig)
}

func initFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("port", "p", "", "change port number with --port <number> | example: --port=3000")
	flags.BoolP("debug", "d", false, "displaying debug log with --debug <true/false> | example: --debug=true")
	flags.String("base-path", "", `base path for subpath deployment --base-path <string> | example: --base-path="/adlib"`)
	flags.String("db-driver", "", `database driver --db-driver <postgres|sqlite> | example: --db-driver="sqlite"`)
	flags.String("ai-provider", "", `provider used by /ai/analyze --ai-provider <openai|gemini> | example: --ai-provider="gemini"`)

	_ = viper.BindPFlag("app_port", flags.Lookup("port"))
	_ = viper.BindPFlag("app_debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("app_base_path", flags.Lookup("base-path"))
	_ = viper.BindPFlag("db_driver", flags.Lookup("db-driver"))
	_ = viper.BindPFlag("ai_provider", flags.Lookup("ai-provider"))
	viper.AutomaticEnv()
}

// initEnvConfig loads the environment and applies command line overrides.
func initEnvConfig() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[APP] Failed to load configuration: %v", err)
	}

	if v := viper.GetString("app_port"); v != "" {
		cfg.App.Port = v
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if v := viper.GetString("app_base_path"); v != "" {
		cfg.App.BasePath = strings.TrimSuffix(v, "/")
	}
	if v := viper.GetString("db_driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := viper.GetString("ai_provider"); v != "" {
		cfg.AI.Provider = strings.ToLower(v)
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.WithFields(logrus.Fields(config.GetAllSettings())).Debug("[APP] Configuration loaded")
}

// initStorage opens the database and prepares the cache schema and janitor.
func initStorage(ctx context.Context) {
	var err error
	db, err = database.NewDatabase(config.Global)
	if err != nil {
		logrus.Fatalf("[APP] %v", err)
	}

	cacheStore = adstore.NewCacheGormRepository(db)
	if err := cacheStore.Init(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate cache schema: %v", err)
	}

	cacheJanitor = usecase.NewCacheJanitor(cacheStore, config.Global.Cache.Retention, config.Global.Cache.SweepInterval)
}

// initApp wires every service the HTTP API needs.
func initApp(ctx context.Context) {
	cfg := config.Global
	initStorage(ctx)

	var index domainAds.IAdIndex
	if cfg.Valkey.Enabled {
		client, err := valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			logrus.WithError(err).Warn("[VALKEY] Unavailable, falling back to in-memory ad index")
		} else {
			vkClient = client
			index = adstore.NewValkeyAdIndex(vkClient, cfg.Cache.Retention)
		}
	}
	if index == nil {
		index = adstore.NewMemoryAdIndex(cfg.Cache.Retention)
	}

	if cfg.Scraper.APIToken == "" {
		logrus.Warn("[SCRAPE] APIFY_API_TOKEN is not set; fresh scrapes will be rejected upstream")
	}
	fetcher := apify.NewClient(apify.Config{
		Token:    cfg.Scraper.APIToken,
		URL:      cfg.Scraper.URL,
		Timeout:  cfg.Scraper.Timeout,
		Location: cfg.Location(),
	})

	mediaFetch = mediafetch.New(mediafetch.Config{
		TempDir: cfg.AI.TempDir,
		Timeout: cfg.AI.Timeout,
	})

	adsUsecase = usecase.NewAdsService(cacheStore, index, fetcher)

	provider, err := newAIProvider(ctx, cfg)
	if err != nil {
		logrus.Fatalf("[AI] %v", err)
	}
	analysisUsecase = usecase.NewAnalysisService(adsUsecase, provider, mediaFetch, usecase.AnalysisOptions{
		MaxVideoBytes: cfg.AI.MaxVideoBytes,
		Timeout:       cfg.AI.Timeout,
	})

	var vkPinger health.Pinger
	if vkClient != nil {
		vkPinger = vkClient
	}
	healthUsecase = usecase.NewHealthService(cacheStore, vkPinger)
}

func newAIProvider(ctx context.Context, cfg *config.Config) (domainAnalysis.IAIProvider, error) {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		return gemini.NewProvider(ctx, gemini.Config{
			APIKey:        cfg.AI.GeminiKey,
			Model:         cfg.AI.GeminiModel,
			MaxImageBytes: cfg.AI.MaxImageBytes,
			MaxVideoBytes: cfg.AI.MaxVideoBytes,
		}, mediaFetch)
	case config.ProviderOpenAI, "":
		if cfg.AI.OpenAIKey == "" {
			logrus.Warn("[OPENAI] OPENAI_API_KEY is not set; analysis requests will fail")
		}
		return openaiProvider.NewProvider(openaiProvider.Config{
			APIKey:             cfg.AI.OpenAIKey,
			Model:              cfg.AI.OpenAIModel,
			VisionModel:        cfg.AI.OpenAIVisionModel,
			TranscriptionModel: cfg.AI.TranscriptionModel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q (expected openai or gemini)", cfg.AI.Provider)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp releases every connection opened by initApp.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if cacheJanitor != nil {
		cacheJanitor.Stop()
	}
	if vkClient != nil {
		vkClient.Close()
	}
	database.Close(db)

	logrus.Info("[APP] Application stopped cleanly.")
}
