package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port              string
	MongoURI          string
	MongoDatabase     string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	JWTSecret         string
	OrderNumberFormat string
	RequestTimeout    time.Duration
	Email             EmailConfig
	AI                AIConfig
	Log               LogConfig
}

// EmailConfig selects and configures the outbound mail provider.
type EmailConfig struct {
	Provider       string
	Sender         string
	PostmarkToken  string
	SendgridAPIKey string
	Host           string
	User           string
	BaseURL        string
}

// AIConfig configures the chat assistant backend. An empty APIKey means
// canned replies only.
type AIConfig struct {
	APIKey     string
	Model      string
	SessionTTL time.Duration
	MaxTurns   int
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string
	Development bool
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	// a missing .env is normal in deployed environments
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8000")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "ecommerce")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ORDER_NUMBER_FORMAT", "ORD")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("EMAIL_PROVIDER", "postmark")
	v.SetDefault("APP_BASE_URL", "http://localhost:8000")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("CHAT_SESSION_TTL", "24h")
	v.SetDefault("CHAT_MAX_TURNS", 20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)

	cfg := &Config{
		Port:              v.GetString("PORT"),
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDatabase:     v.GetString("MONGO_DATABASE"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		OrderNumberFormat: strings.ToUpper(v.GetString("ORDER_NUMBER_FORMAT")),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		Email: EmailConfig{
			Provider:       strings.ToLower(v.GetString("EMAIL_PROVIDER")),
			Sender:         v.GetString("EMAIL_SENDER"),
			PostmarkToken:  v.GetString("POSTMARK_API_TOKEN"),
			SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
			Host:           v.GetString("EMAIL_HOST"),
			User:           v.GetString("EMAIL_USER"),
			BaseURL:        v.GetString("APP_BASE_URL"),
		},
		AI: AIConfig{
			APIKey:     v.GetString("OPENAI_API_KEY"),
			Model:      v.GetString("OPENAI_MODEL"),
			SessionTTL: v.GetDuration("CHAT_SESSION_TTL"),
			MaxTurns:   v.GetInt("CHAT_MAX_TURNS"),
		},
		Log: LogConfig{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	switch c.OrderNumberFormat {
	case "ORD", "TS":
	default:
		return fmt.Errorf("ORDER_NUMBER_FORMAT must be ORD or TS, got %q", c.OrderNumberFormat)
	}
	switch c.Email.Provider {
	case "postmark", "sendgrid", "none":
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be postmark, sendgrid or none, got %q", c.Email.Provider)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
