package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

var (
	// ErrInvalidPublicScheme indica un PUBLIC_SCHEME distinto de http/https.
	ErrInvalidPublicScheme = errors.New("public scheme must be http or https")
	ErrMissingQuerySecret  = errors.New("QUERY_JWT_SECRET is required")
)

// TwilioConfig agrupa credenciales del proveedor de telefonía.
type TwilioConfig struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID,required,notEmpty"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN,required,notEmpty"`
	FromNumber string `env:"TWILIO_FROM_NUMBER"`
}

// DialogflowConfig agrupa la configuración del proveedor NLU.
type DialogflowConfig struct {
	ProjectID       string        `env:"GOOGLE_CLOUD_PROJECT,required,notEmpty"`
	LanguageCode    string        `env:"DIALOGFLOW_LANGUAGE_CODE" envDefault:"en-US"`
	Endpoint        string        `env:"DIALOGFLOW_ENDPOINT"`
	CredentialsFile string        `env:"DIALOGFLOW_CREDENTIALS_FILE"`
	Timeout         time.Duration `env:"NLU_TIMEOUT" envDefault:"10s"`
}

// QueryAuthConfig protege la API de consultas; sin secreto la API no se expone.
type QueryAuthConfig struct {
	JWTSecret string        `env:"QUERY_JWT_SECRET"`
	TokenTTL  time.Duration `env:"QUERY_TOKEN_TTL" envDefault:"1h"`
}

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort              string        `env:"PORT" envDefault:"8080"`
	HTTPReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout       time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// PublicScheme es el esquema con el que Twilio ve el webhook (detrás de un
	// proxy TLS suele ser https aunque el servidor reciba http).
	PublicScheme  string `env:"PUBLIC_SCHEME" envDefault:"https"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	Twilio     TwilioConfig
	Dialogflow DialogflowConfig
	QueryAuth  QueryAuthConfig

	DatabaseURL   string        `env:"DATABASE_URL"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	ReplyCacheTTL time.Duration `env:"REPLY_CACHE_TTL" envDefault:"10m"`
}

// CLIConfig es el subconjunto que necesita smsctl.
type CLIConfig struct {
	Twilio      TwilioConfig
	DatabaseURL string `env:"DATABASE_URL"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.PublicScheme = strings.ToLower(strings.TrimSpace(cfg.PublicScheme))
	if cfg.PublicScheme != "http" && cfg.PublicScheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPublicScheme, cfg.PublicScheme)
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	return &cfg, nil
}

// LoadCLIConfig carga la configuración reducida de la CLI.
func LoadCLIConfig() (*CLIConfig, error) {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadQueryAuthConfig carga solo la configuración de tokens de la API de consultas.
func LoadQueryAuthConfig() (*QueryAuthConfig, error) {
	var cfg QueryAuthConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, ErrMissingQuerySecret
	}
	return &cfg, nil
}
