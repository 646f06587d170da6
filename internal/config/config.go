package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Port              string        `mapstructure:"PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	AdminKey          string        `mapstructure:"ADMIN_KEY"`
	CompletionBaseURL string        `mapstructure:"COMPLETION_BASE_URL"`
	CompletionModel   string        `mapstructure:"COMPLETION_MODEL"`
	CompletionAPIKey  string        `mapstructure:"COMPLETION_API_KEY"`
	CompletionMaxTok  int           `mapstructure:"COMPLETION_MAX_TOKENS"`
	ContextCharBudget int           `mapstructure:"CONTEXT_CHAR_BUDGET"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB   int64         `mapstructure:"MAX_UPLOAD_MB"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("COMPLETION_MODEL", "gpt-4o-mini")
	v.SetDefault("COMPLETION_MAX_TOKENS", 2048)
	v.SetDefault("CONTEXT_CHAR_BUDGET", 8000)
	v.SetDefault("REQUEST_TIMEOUT", "90s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
