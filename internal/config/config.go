package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// EmptyCartPolicy decides what a checkout confirmation does when the
// cart has no lines: reject the request or send an empty summary.
type EmptyCartPolicy string

const (
	EmptyCartReject EmptyCartPolicy = "reject"
	EmptyCartNotify EmptyCartPolicy = "notify"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	JWT_SECRET string

	KAFKA_ADDRESS string

	SMTP_HOST string
	SMTP_PORT int
	SMTP_USER string
	SMTP_PASS string
	SMTP_FROM string

	ADMIN_USERNAME string
	ADMIN_PASSWORD string

	UPLOAD_DIR string

	EMPTY_CART EmptyCartPolicy
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:        os.Getenv("DB_HOST"),
		DB_PORT:        os.Getenv("DB_PORT"),
		DB_USER:        os.Getenv("DB_USER"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        os.Getenv("DB_NAME"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		SMTP_HOST:      os.Getenv("SMTP_HOST"),
		SMTP_PORT:      EnvIntDefault("SMTP_PORT", 587),
		SMTP_USER:      os.Getenv("SMTP_USER"),
		SMTP_PASS:      os.Getenv("SMTP_PASS"),
		SMTP_FROM:      EnvDefault("SMTP_FROM", os.Getenv("SMTP_USER")),
		ADMIN_USERNAME: os.Getenv("ADMIN_USERNAME"),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
		UPLOAD_DIR:     EnvDefault("UPLOAD_DIR", "static/uploads"),
		EMPTY_CART:     EmptyCartPolicy(EnvDefault("CHECKOUT_EMPTY_CART", string(EmptyCartReject))),
	}

	return config, nil
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
