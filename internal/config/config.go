// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// ErrMissingTokenSecret is returned when a public deployment has no signing secret.
var ErrMissingTokenSecret = errors.New("token secret is required outside localhost")

// ErrIncompleteTLS is returned when only one of the TLS files is set.
var ErrIncompleteTLS = errors.New("tls requires both cert-file and key-file")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server       ServerConfig
	Log          LogConfig
	Database     DatabaseConfig
	Token        TokenConfig
	Verification VerificationConfig
	Slug         SlugConfig
	SMTP         SMTPConfig
	Metrics      MetricsConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
	TLS         TLSConfig
}

// TLSConfig points at a certificate pair. Plain HTTP is served when unset.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// Enabled reports whether the server terminates TLS itself.
func (c TLSConfig) Enabled() bool {
	return c.CertFile != "" || c.KeyFile != ""
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// TokenConfig configures the signed bearer tokens handed out at login.
type TokenConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

type VerificationConfig struct {
	TTL time.Duration
}

type SlugConfig struct {
	MaxAttempts int
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// Enabled reports whether outbound mail goes through SMTP.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
			TLS: TLSConfig{
				CertFile: cmd.String("tls-cert-file"),
				KeyFile:  cmd.String("tls-key-file"),
			},
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Token: TokenConfig{
			Secret:   cmd.String("token-secret"),
			Issuer:   cmd.String("token-issuer"),
			Audience: cmd.String("token-audience"),
			TTL:      cmd.Duration("token-ttl"),
		},
		Verification: VerificationConfig{
			TTL: cmd.Duration("verification-ttl"),
		},
		Slug: SlugConfig{
			MaxAttempts: int(cmd.Int("slug-max-attempts")),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		Metrics: MetricsConfig{
			Enabled: cmd.Bool("metrics-enabled"),
			Path:    cmd.String("metrics-path"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}
	applyTokenDefaults(cfg)

	return cfg
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.Token.Secret == "" && !IsLocalhost(c.Server.Host) {
		return ErrMissingTokenSecret
	}
	if c.Server.TLS.Enabled() && (c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "") {
		return ErrIncompleteTLS
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.Token.TTL)
	}
	if c.Slug.MaxAttempts <= 0 {
		return fmt.Errorf("slug max attempts must be positive, got %d", c.Slug.MaxAttempts)
	}
	if c.Verification.TTL <= 0 {
		return fmt.Errorf("verification ttl must be positive, got %s", c.Verification.TTL)
	}
	return nil
}

// applyTokenDefaults derives issuer and audience from the resolved BaseURL.
func applyTokenDefaults(cfg *Config) {
	if cfg.Token.Issuer == "" {
		cfg.Token.Issuer = cfg.Server.BaseURL
	}
	if cfg.Token.Audience == "" {
		cfg.Token.Audience = cfg.Server.BaseURL
	}
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	scheme := "http"
	defaultPort := 80
	if cfg.Server.TLS.Enabled() {
		scheme = "https"
		defaultPort = 443
	}

	// Hide default ports in URL
	if port == defaultPort {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Public base URL used in emailed links",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "TLS certificate file (serves plain HTTP when empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_FILE"), toml.TOML("server.tls.cert_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "TLS private key file",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_KEY_FILE"), toml.TOML("server.tls.key_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/langeng.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		// Token flags
		&cli.StringFlag{
			Name:    "token-secret",
			Usage:   "HMAC secret for bearer tokens (auto-generated if empty on localhost)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_SECRET"), toml.TOML("token.secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "token-issuer",
			Usage:   "Token issuer claim (defaults to base_url)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_ISSUER"), toml.TOML("token.issuer", configFile)),
		},
		&cli.StringFlag{
			Name:    "token-audience",
			Usage:   "Token audience claim (defaults to base_url)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_AUDIENCE"), toml.TOML("token.audience", configFile)),
		},
		&cli.DurationFlag{
			Name:    "token-ttl",
			Value:   30 * 24 * time.Hour,
			Usage:   "Bearer token lifetime",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_TTL"), toml.TOML("token.ttl", configFile)),
		},
		// Verification flags
		&cli.DurationFlag{
			Name:    "verification-ttl",
			Value:   8 * time.Minute,
			Usage:   "Lifetime of verification codes and links",
			Sources: cli.NewValueSourceChain(cli.EnvVar("VERIFICATION_TTL"), toml.TOML("verification.ttl", configFile)),
		},
		&cli.IntFlag{
			Name:    "slug-max-attempts",
			Value:   16,
			Usage:   "Slug generation attempts before giving up",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SLUG_MAX_ATTEMPTS"), toml.TOML("slug.max_attempts", configFile)),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host (emails are logged when empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Value:   "noreply@localhost",
			Usage:   "Sender address",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "Langeng",
			Usage:   "Sender display name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		// Metrics flags
		&cli.BoolFlag{
			Name:    "metrics-enabled",
			Value:   true,
			Usage:   "Expose Prometheus metrics",
			Sources: cli.NewValueSourceChain(cli.EnvVar("METRICS_ENABLED"), toml.TOML("metrics.enabled", configFile)),
		},
		&cli.StringFlag{
			Name:    "metrics-path",
			Value:   "/metrics",
			Usage:   "Path of the metrics endpoint",
			Sources: cli.NewValueSourceChain(cli.EnvVar("METRICS_PATH"), toml.TOML("metrics.path", configFile)),
		},
	}
}
