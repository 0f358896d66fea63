// Package config собирает настройки сервиса из переменных окружения.
//
// Переменные читаются один раз при старте (koanf + env provider, .env подхватывается
// godotenv), раскладываются в Config и проверяются validator'ом. Дальше Config
// передаётся по указателю, обработчики окружение не читают.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Режимы обновления объекта
const (
	// UpdateModePatch - COALESCE: незаданные поля сохраняют прежние значения.
	UpdateModePatch = "patch"
	// UpdateModeReplace - все поля перезаписываются, незаданные становятся NULL/по умолчанию.
	UpdateModeReplace = "replace"
)

type Config struct {
	DatabaseURL string `koanf:"database_url" validate:"required"`

	ServerAddress      string `koanf:"server_address" validate:"required"`
	ServerReadTimeout  int    `koanf:"server_read_timeout" validate:"gte=0"`
	ServerWriteTimeout int    `koanf:"server_write_timeout" validate:"gte=0"`

	Env      string `koanf:"app_env" validate:"required"`
	LogLevel string `koanf:"log_level" validate:"oneof=trace debug info warn error"`

	CatalogUpdateMode  string `koanf:"catalog_update_mode" validate:"oneof=patch replace"`
	ExposeErrorDetails bool   `koanf:"expose_error_details"`

	TelegramBotToken string `koanf:"telegram_bot_token"`
	TelegramChatID   string `koanf:"telegram_chat_id"`
	TelegramAPIURL   string `koanf:"telegram_api_url" validate:"required,url"`

	AWSAccessKeyID     string `koanf:"aws_access_key_id"`
	AWSSecretAccessKey string `koanf:"aws_secret_access_key"`
	S3Endpoint         string `koanf:"s3_endpoint" validate:"required,url"`
	S3Bucket           string `koanf:"s3_bucket" validate:"required"`
	S3Region           string `koanf:"s3_region" validate:"required"`
	CDNHost            string `koanf:"cdn_host" validate:"required,hostname"`
}

// Load читает окружение, подставляет значения по умолчанию и валидирует результат.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Ключи без префикса: DATABASE_URL -> database_url
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ServerAddress == "" {
		c.ServerAddress = "0.0.0.0:8080"
	}
	if c.ServerReadTimeout == 0 {
		c.ServerReadTimeout = 15
	}
	if c.ServerWriteTimeout == 0 {
		c.ServerWriteTimeout = 30
	}
	if c.Env == "" {
		c.Env = "production"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.CatalogUpdateMode = strings.ToLower(c.CatalogUpdateMode)
	if c.CatalogUpdateMode == "" {
		c.CatalogUpdateMode = UpdateModePatch
	}
	if c.TelegramAPIURL == "" {
		c.TelegramAPIURL = "https://api.telegram.org"
	}
	if c.S3Endpoint == "" {
		c.S3Endpoint = "https://bucket.poehali.dev"
	}
	if c.S3Bucket == "" {
		c.S3Bucket = "files"
	}
	if c.S3Region == "" {
		c.S3Region = "us-east-1"
	}
	if c.CDNHost == "" {
		c.CDNHost = "cdn.poehali.dev"
	}
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ServerReadTimeout) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.ServerWriteTimeout) * time.Second
}

// IsLocal - локальная разработка: человекочитаемые логи.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}
