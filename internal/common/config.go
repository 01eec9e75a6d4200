package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	PDF        PDFConfig
	Inbox      InboxConfig
	Log        LogConfig
}

// DatabaseConfig holds policy store configuration. An empty DSN disables
// policy lookup.
type DatabaseConfig struct {
	DSN              string        `envconfig:"DB_URL"`
	MaxConns         int32         `envconfig:"DB_MAX_CONNS" default:"20" validate:"gte=1"`
	MinConns         int32         `envconfig:"DB_MIN_CONNS" default:"2" validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime  time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	MaxConnIdleTime  time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`
	DialTimeout      time.Duration `envconfig:"DB_DIAL_TIMEOUT" default:"3s"`
	StatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"0s"`
}

// ServerConfig holds HTTP and gRPC listener configuration
type ServerConfig struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	GRPCAddr        string        `envconfig:"GRPC_ADDR" default:":9090" validate:"required"`
	RateLimitRPS    float64       `envconfig:"RATE_LIMIT_RPS" default:"5" validate:"gt=0"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"10" validate:"gte=1"`
	MaxUploadMB     int64         `envconfig:"MAX_UPLOAD_MB" default:"10" validate:"gte=1"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// LLMConfig holds language model client configuration
type LLMConfig struct {
	Provider    string        `envconfig:"LLM_PROVIDER" default:"gemini" validate:"oneof=gemini openai"`
	Model       string        `envconfig:"LLM_MODEL" default:"gemini-2.5-flash"`
	APIKey      string        `envconfig:"LLM_API_KEY"`
	BaseURL     string        `envconfig:"LLM_BASE_URL" validate:"omitempty,url"`
	Temperature float32       `envconfig:"LLM_TEMPERATURE" default:"0" validate:"gte=0,lte=2"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"45s"`
}

// ExtractionConfig selects the discharge strategy and the lookup table file
type ExtractionConfig struct {
	DischargeStrategy string `envconfig:"DISCHARGE_STRATEGY" default:"auto" validate:"oneof=auto ai regex"`
	LookupFile        string `envconfig:"EXTRACT_LOOKUP_FILE"`
}

// PDFConfig holds the text extraction tool location
type PDFConfig struct {
	PdftotextBin string `envconfig:"PDFTOTEXT_BIN" default:"pdftotext" validate:"required"`
}

// InboxConfig holds watched-directory configuration. An empty Dir disables
// inbox mode.
type InboxConfig struct {
	Dir       string        `envconfig:"INBOX_DIR"`
	OutDir    string        `envconfig:"OUTBOX_DIR" validate:"required_with=Dir"`
	Workers   int           `envconfig:"INBOX_WORKERS" default:"4" validate:"gte=1"`
	QueueSize int           `envconfig:"INBOX_QUEUE_SIZE" default:"64" validate:"gte=1"`
	Debounce  time.Duration `envconfig:"INBOX_DEBOUNCE" default:"500ms"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config
	sections := []any{&cfg.Database, &cfg.Server, &cfg.LLM, &cfg.Extraction, &cfg.PDF, &cfg.Inbox, &cfg.Log}
	for _, s := range sections {
		if err := envconfig.Process("", s); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "failed to read environment", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return NewAppError("CONFIG_ERROR", strings.Join(msgs, "; "), ErrInvalidInput)
}

// StoreEnabled reports whether a policy store is configured.
func (c *Config) StoreEnabled() bool {
	return strings.TrimSpace(c.Database.DSN) != ""
}
