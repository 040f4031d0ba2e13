// internal/config/config.go
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	BaseURL string `mapstructure:"base_url"`
	Server  struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Database struct {
		URI  string `mapstructure:"uri"`
		Name string `mapstructure:"name"`
	} `mapstructure:"database"`
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
	Auth struct {
		Secret   string        `mapstructure:"secret"`
		TokenTTL time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`
	Security struct {
		RequestID struct {
			TrustHeader bool `mapstructure:"trust_header"`
		} `mapstructure:"request_id"`
		RateLimit struct {
			Enabled           bool          `mapstructure:"enabled"`
			RequestsPerMinute int           `mapstructure:"rpm"`
			Burst             int           `mapstructure:"burst"`
			TTL               time.Duration `mapstructure:"ttl"`
		} `mapstructure:"rate_limit"`
	} `mapstructure:"security"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
	Uploads struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"uploads"`
	Webhook struct {
		Mode   string `mapstructure:"mode"` // hmac | apikey
		Secret string `mapstructure:"secret"`
		Group  string `mapstructure:"group"`
	} `mapstructure:"webhook"`
}

// WebhookConfigured reports whether the bridge can accept requests.
func (c Config) WebhookConfigured() bool {
	return c.Webhook.Secret != "" && (c.Webhook.Mode == "hmac" || c.Webhook.Mode == "apikey")
}

func Load() Config {
	viper.SetDefault("server.addr", "127.0.0.1:8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "apsar_tracker")
	// Sensible logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	// Auth defaults
	viper.SetDefault("auth.token_ttl", "8h")
	// Security defaults
	viper.SetDefault("security.request_id.trust_header", false)
	viper.SetDefault("security.rate_limit.enabled", true)
	viper.SetDefault("security.rate_limit.rpm", 120)
	viper.SetDefault("security.rate_limit.burst", 60)
	viper.SetDefault("security.rate_limit.ttl", "30m")
	viper.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	viper.SetDefault("uploads.dir", "./uploads")
	viper.SetDefault("webhook.mode", "hmac")
	viper.SetDefault("webhook.group", "dispatch")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	_ = viper.ReadInConfig()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// explicit bindings
	_ = viper.BindEnv("base_url", "BASE_URL")
	_ = viper.BindEnv("server.addr", "SERVER_ADDR")
	_ = viper.BindEnv("database.uri", "MONGODB_URI")
	_ = viper.BindEnv("database.name", "MONGODB_DATABASE")
	_ = viper.BindEnv("logging.level", "LOG_LEVEL")
	_ = viper.BindEnv("logging.format", "LOG_FORMAT")
	_ = viper.BindEnv("auth.secret", "AUTH_SECRET")
	_ = viper.BindEnv("auth.token_ttl", "AUTH_TOKEN_TTL")
	_ = viper.BindEnv("security.request_id.trust_header", "REQUEST_ID_TRUST_HEADER")
	_ = viper.BindEnv("security.rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = viper.BindEnv("security.rate_limit.rpm", "RATE_LIMIT_RPM")
	_ = viper.BindEnv("security.rate_limit.burst", "RATE_LIMIT_BURST")
	_ = viper.BindEnv("security.rate_limit.ttl", "RATE_LIMIT_TTL")
	_ = viper.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
	_ = viper.BindEnv("uploads.dir", "UPLOADS_DIR")
	_ = viper.BindEnv("webhook.mode", "WEBHOOK_MODE")
	_ = viper.BindEnv("webhook.secret", "WEBHOOK_SECRET")
	_ = viper.BindEnv("webhook.group", "WEBHOOK_GROUP")

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		panic("config error: " + err.Error())
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		panic("config error: auth.secret/AUTH_SECRET required")
	}
	if c.Webhook.Mode != "hmac" && c.Webhook.Mode != "apikey" {
		panic("config error: webhook.mode must be hmac or apikey")
	}
	return c
}
