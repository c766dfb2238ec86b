package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// BaseCurrency denominates the ledger; accounts without an explicit
	// currency default to it.
	BaseCurrency string

	// RateFreshness is how old an exchange rate may be before conversions
	// against it are refused.
	RateFreshness time.Duration

	// Account codes for the receivable entry drafted when an invoice is generated.
	ReceivableAccountCode string
	RevenueAccountCode    string

	// MinimumCashThreshold is the default cash floor for forecast alerts.
	MinimumCashThreshold decimal.Decimal

	// Rate limiting, e.g. "100-M" for 100 requests per minute.
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("BASE_CURRENCY", "CAD")
	viper.SetDefault("RATE_FRESHNESS", "720h")
	viper.SetDefault("RECEIVABLE_ACCOUNT_CODE", "1200")
	viper.SetDefault("REVENUE_ACCOUNT_CODE", "4000")
	viper.SetDefault("MINIMUM_CASH_THRESHOLD", "10000")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")
	cfg.ReceivableAccountCode = viper.GetString("RECEIVABLE_ACCOUNT_CODE")
	cfg.RevenueAccountCode = viper.GetString("REVENUE_ACCOUNT_CODE")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	rateFreshnessStr := viper.GetString("RATE_FRESHNESS")
	rateFreshness, err := time.ParseDuration(rateFreshnessStr)
	if err != nil {
		rateFreshness = time.Hour * 24 * 30
		log.Printf("Warning: Invalid value for RATE_FRESHNESS ('%s'). Defaulting to %s.\n", rateFreshnessStr, rateFreshness.String())
	}
	cfg.RateFreshness = rateFreshness

	thresholdStr := viper.GetString("MINIMUM_CASH_THRESHOLD")
	threshold, err := decimal.NewFromString(thresholdStr)
	if err != nil {
		threshold = decimal.NewFromInt(10000)
		log.Printf("Warning: Invalid value for MINIMUM_CASH_THRESHOLD ('%s'). Defaulting to %s.\n", thresholdStr, threshold.String())
	}
	cfg.MinimumCashThreshold = threshold

	return cfg, nil
}
