// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/repository"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"
	StorageRedis    StorageDriver = "redis"
	StoragePostgres StorageDriver = "postgres"
)

const DefaultOrderEndpoint = "http://localhost:5000/gerar_pdf"

type Config struct {
	TaxRate  decimal.Decimal
	Currency currency.Unit
	Locale   language.Tag

	StoragePrefix string
	Storage       StorageDriver
	RedisAddr     string
	PostgresDSN   string

	OrderEndpoint   string
	CheckoutTimeout time.Duration

	CatalogFile string
	UsersFile   string

	SinkAddr string

	LogLevel  log.Level
	LogFormat string
}

func Default() Config {
	return Config{
		TaxRate:         decimal.Zero,
		Currency:        currency.BRL,
		Locale:          language.BrazilianPortuguese,
		StoragePrefix:   repository.DefaultKeyPrefix,
		Storage:         StorageMemory,
		RedisAddr:       "localhost:6379",
		OrderEndpoint:   DefaultOrderEndpoint,
		CheckoutTimeout: 10 * time.Second,
		CatalogFile:     "produtos.json",
		UsersFile:       "usuarios.json",
		SinkAddr:        ":5000",
		LogLevel:        log.InfoLevel,
		LogFormat:       "text",
	}
}

// Load starts from Default and applies the environment. Any unparsable value fails.
func Load() (Config, error) {
	cfg := Default()

	if v := getEnv("CART_TAX_RATE", ""); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("CART_TAX_RATE: %w", err)
		}
		if rate.IsNegative() {
			return Config{}, fmt.Errorf("CART_TAX_RATE is negative")
		}
		cfg.TaxRate = rate
	}

	if v := getEnv("CART_CURRENCY", ""); v != "" {
		unit, err := currency.ParseISO(v)
		if err != nil {
			return Config{}, fmt.Errorf("CART_CURRENCY: %w", err)
		}
		cfg.Currency = unit
	}

	if v := getEnv("CART_LOCALE", ""); v != "" {
		tag, err := language.Parse(v)
		if err != nil {
			return Config{}, fmt.Errorf("CART_LOCALE: %w", err)
		}
		cfg.Locale = tag
	}

	cfg.StoragePrefix = getEnv("CART_STORAGE_PREFIX", cfg.StoragePrefix)
	cfg.OrderEndpoint = getEnv("CART_ORDER_ENDPOINT", cfg.OrderEndpoint)

	if v := getEnv("CART_CHECKOUT_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CART_CHECKOUT_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("CART_CHECKOUT_TIMEOUT must be positive")
		}
		cfg.CheckoutTimeout = d
	}

	switch driver := StorageDriver(strings.ToLower(getEnv("CART_STORAGE", string(cfg.Storage)))); driver {
	case StorageMemory, StorageRedis, StoragePostgres:
		cfg.Storage = driver
	default:
		return Config{}, fmt.Errorf("CART_STORAGE[%s] is not supported", driver)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)
	if cfg.Storage == StoragePostgres && cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN is empty")
	}

	cfg.CatalogFile = getEnv("CATALOG_FILE", cfg.CatalogFile)
	cfg.UsersFile = getEnv("USERS_FILE", cfg.UsersFile)
	cfg.SinkAddr = getEnv("SINK_ADDR", cfg.SinkAddr)

	if v := getEnv("LOG_LEVEL", ""); v != "" {
		level, err := log.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	switch format := strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat)); format {
	case "text", "json":
		cfg.LogFormat = format
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT[%s] is not supported", format)
	}

	return cfg, nil
}

func (c Config) Pricing() domain.Pricing {
	return domain.Pricing{Currency: c.Currency, TaxRate: c.TaxRate}
}

// SetupLogger applies level and format to the standard logrus logger.
func (c Config) SetupLogger() {
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetLevel(c.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
