package config

import (
	"os"

	"github.com/vigourpt/themonneygate2/utils"

	"github.com/joho/godotenv"
)

// Config gathers every secret and endpoint the handlers need. It is built
// once in main and passed into the handler constructors, nothing reads the
// environment at request time.
type Config struct {
	Port  string
	DBUrl string

	JWTSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	PricePremiumMonthly string
	PricePremiumAnnual  string

	DataForSEOUsername string
	DataForSEOPassword string

	GeminiAPIKey string
	GeminiModel  string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string

	FrontendURL string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		utils.LogInfo("No .env file found, using system environment variables")
	}

	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		DBUrl:               os.Getenv("DB_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PricePremiumMonthly: os.Getenv("STRIPE_PRICE_PREMIUM_MONTHLY"),
		PricePremiumAnnual:  os.Getenv("STRIPE_PRICE_PREMIUM_ANNUAL"),
		DataForSEOUsername:  os.Getenv("DATAFORSEO_USERNAME"),
		DataForSEOPassword:  os.Getenv("DATAFORSEO_PASSWORD"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		SMTPHost:            getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPFrom:            os.Getenv("SMTP_FROM"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		FrontendURL:         getEnv("FRONTEND_URL", "https://themoneygate.com"),
	}

	if cfg.StripeWebhookSecret == "" {
		utils.LogInfo("STRIPE_WEBHOOK_SECRET not configured, webhook signature verification will be skipped")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
