package config

import (
	"errors"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/getori/ori/core-api/utils"
)

// Config holds every environment-provided setting. It is loaded once in
// main and handed to the components that need it; nothing reads the
// environment after startup.
type Config struct {
	Env  string
	Port string

	DatabaseURL      string
	DatabaseMaxConns int

	Redis RedisSettings

	Auth   AuthSettings
	Stripe StripeSettings

	ResendAPIKey    string
	AIEngineBaseURL string
	FrontendURL     string

	SentryDSN string
}

type RedisSettings struct {
	Address  string
	Password string
	DB       int
	UseTLS   bool
}

type AuthSettings struct {
	Issuer   string
	Audience string
	JWKSUrl  string
}

type StripeSettings struct {
	SecretKey     string
	WebhookSecret string

	PricePlusMonthlyID    string
	PricePlusYearlyID     string
	PricePremiumMonthlyID string
	PricePremiumYearlyID  string
}

func LoadConfig() (*Config, error) {
	maxConns, err := utils.GetEnvAsInt("DATABASE_MAX_CONNECTIONS", 20)
	if err != nil {
		return nil, err
	}

	redisDB, err := utils.GetEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:  utils.GetEnvOr("ENV", "development"),
		Port: utils.GetEnvOr("PORT", "3001"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DatabaseMaxConns: maxConns,

		Redis: RedisSettings{
			Address:  os.Getenv("REDIS_URL"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			UseTLS:   utils.GetEnvAsBool("REDIS_TLS", false),
		},

		Auth: AuthSettings{
			Issuer:   os.Getenv("AUTH_ISSUER"),
			Audience: os.Getenv("AUTH_AUDIENCE"),
			JWKSUrl:  os.Getenv("AUTH_JWKS_URL"),
		},

		Stripe: StripeSettings{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

			PricePlusMonthlyID:    os.Getenv("STRIPE_PRICE_PLUS_MONTHLY_ID"),
			PricePlusYearlyID:     os.Getenv("STRIPE_PRICE_PLUS_YEARLY_ID"),
			PricePremiumMonthlyID: os.Getenv("STRIPE_PRICE_PREMIUM_MONTHLY_ID"),
			PricePremiumYearlyID:  os.Getenv("STRIPE_PRICE_PREMIUM_YEARLY_ID"),
		},

		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		AIEngineBaseURL: os.Getenv("AI_ENGINE_BASE_URL"),
		FrontendURL:     os.Getenv("FRONTEND_URL"),

		SentryDSN: os.Getenv("SENTRY_DSN"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.Stripe.SecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}

	return cfg, nil
}
