// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the complete server configuration.
type Config struct {
	MongoURI      string `envconfig:"MONGODB_URI" required:"true"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"surepay"`
	Port          string `envconfig:"PORT" default:"50051"`
	MetricsAddr   string `envconfig:"METRICS_ADDR" default:":9090"`

	// JWTKeys uses the kid:secret,kid2:secret2 format.
	JWTSecret    string            `envconfig:"JWT_SECRET"`
	JWTKeys      map[string]string `envconfig:"JWT_KEYS"`
	JWTActiveKid string            `envconfig:"JWT_ACTIVE_KID"`
	TokenTTL     time.Duration     `envconfig:"TOKEN_TTL" default:"24h"`

	RateLimitRPM int `envconfig:"RATE_LIMIT_RPM" default:"10"`

	TLSCert    string `envconfig:"TLS_CERT"`
	TLSKey     string `envconfig:"TLS_KEY"`
	RequireTLS bool   `envconfig:"REQUIRE_TLS" default:"false"`

	RequireEmailVerification bool   `envconfig:"REQUIRE_EMAIL_VERIFICATION" default:"true"`
	VerifyURL                string `envconfig:"VERIFY_URL" default:"http://localhost:8080/verify"`

	// RedisURL enables cross-instance thread notifications and shared
	// token revocation. Empty means in-process only.
	RedisURL string `envconfig:"REDIS_URL"`

	UploadURL          string        `envconfig:"UPLOAD_URL"`
	UploadPreset       string        `envconfig:"UPLOAD_PRESET"`
	UploadMaxDimension int           `envconfig:"UPLOAD_MAX_DIMENSION" default:"1600"`
	UploadTimeout      time.Duration `envconfig:"UPLOAD_TIMEOUT" default:"30s"`

	NotifyOnTransition bool `envconfig:"NOTIFY_ON_TRANSITION" default:"true"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads and validates the environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	if len(c.JWTKeys) == 0 && c.JWTSecret == "" {
		return errors.New("either JWT_SECRET or JWT_KEYS must be set")
	}
	if len(c.JWTKeys) > 0 {
		if c.JWTActiveKid == "" {
			return errors.New("JWT_ACTIVE_KID must be set when JWT_KEYS is used")
		}
		if _, ok := c.JWTKeys[c.JWTActiveKid]; !ok {
			return fmt.Errorf("JWT_ACTIVE_KID %q is not in JWT_KEYS", c.JWTActiveKid)
		}
	}
	if c.RequireTLS && (c.TLSCert == "" || c.TLSKey == "") {
		return errors.New("REQUIRE_TLS is true but TLS_CERT/TLS_KEY are not configured")
	}
	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must be positive, got %d", c.RateLimitRPM)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// TLSEnabled reports whether a certificate pair is configured.
func (c *Config) TLSEnabled() bool { return c.TLSCert != "" && c.TLSKey != "" }
