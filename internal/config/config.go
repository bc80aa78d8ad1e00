package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"vcasino_wallet/internal/conversion"
)

type Config struct {
	Port        string
	MetricsPort string
	DBURL       string
	LogLevel    string
	DBMaxConns  int

	ClickerURL     string
	ClickerTimeout time.Duration

	// Outbox dispatcher
	OutboxInterval    time.Duration
	OutboxBatchSize   int
	OutboxMaxAttempts int
	OutboxSink        string // "clicker" or "kafka"
	KafkaBrokers      string
	KafkaTopic        string

	Rates conversion.Rates
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load("config.env")

	cfg := &Config{
		Port:        getEnv("APP_PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		DBURL: fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 8),
		ClickerURL:        getEnv("CLICKER_URL", "http://localhost:8081"),
		ClickerTimeout:    getEnvDuration("CLICKER_TIMEOUT", 2*time.Second),
		OutboxInterval:    getEnvDuration("OUTBOX_INTERVAL", 2*time.Second),
		OutboxBatchSize:   getEnvInt("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxAttempts: getEnvInt("OUTBOX_MAX_ATTEMPTS", 10),
		OutboxSink:        getEnv("OUTBOX_SINK", "clicker"),
		KafkaBrokers:      getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:        getEnv("KAFKA_TOPIC_WALLET_EVENTS", "wallet.currency-conversions"),
		Rates:             loadRates(),
	}
	return cfg, nil
}

// loadRates reads the conversion constants; the defaults encode the
// 100,000-in / 90,000-out spread.
func loadRates() conversion.Rates {
	rates := conversion.DefaultRates()
	rates.BuyRate = getEnvDecimal("CONVERSION_BUY_RATE", rates.BuyRate)
	rates.SellRate = getEnvDecimal("CONVERSION_SELL_RATE", rates.SellRate)
	rates.RoundingStep = getEnvDecimal("CONVERSION_ROUNDING_STEP", rates.RoundingStep)
	rates.MinVcoins = getEnvDecimal("CONVERSION_MIN_VCOINS", rates.MinVcoins)
	rates.MinVdollars = getEnvDecimal("CONVERSION_MIN_VDOLLARS", rates.MinVdollars)
	return rates
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return def
}
