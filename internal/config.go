package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/anurajdeol90/team-digest/internal/apperr"
	"github.com/anurajdeol90/team-digest/internal/digest"
	"github.com/anurajdeol90/team-digest/internal/digestservice"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Logs   LogsConfig        `yaml:"logs"`
	Digest DigestConfig      `yaml:"digest"`
	Slack  SlackConfig       `yaml:"slack"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration. Every failure wraps
// apperr.ErrInvalidConfig.
func (c *Config) Validate() error {
	for _, v := range []interface{ Validate() error }{&c.App, &c.Logs, &c.Digest, &c.Slack, &c.Auth} {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %w", apperr.ErrInvalidConfig, err)
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LogsConfig points at the directory of notes-YYYY-MM-DD.md files.
type LogsConfig struct {
	Dir string `yaml:"dir"`
	// SourceLabel is shown in the digest metadata line; defaults to Dir.
	SourceLabel string `yaml:"source_label"`
}

// Validate validates the logs configuration.
func (c *LogsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// Label returns the source label for rendered digests.
func (c *LogsConfig) Label() string {
	if c.SourceLabel != "" {
		return c.SourceLabel
	}
	return c.Dir
}

// DigestConfig holds the default aggregation and rendering policies.
type DigestConfig struct {
	Mode           string `yaml:"mode"`
	EmitKPIs       bool   `yaml:"emit_kpis"`
	OwnerBreakdown bool   `yaml:"owner_breakdown"`
	AllowMissing   bool   `yaml:"allow_missing"`
	Title          string `yaml:"title"`
	Format         string `yaml:"format"`
}

// Validate validates the digest configuration.
func (c *DigestConfig) Validate() error {
	if c.Format == "" {
		c.Format = digestservice.FormatMarkdown
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.In(digestservice.FormatMarkdown, digestservice.FormatJSON, digestservice.FormatHTML)),
	); err != nil {
		return err
	}
	mode, err := digest.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	c.Mode = string(mode)
	return nil
}

// Options converts the configured policies to per-request digest options.
func (c *DigestConfig) Options() digestservice.Options {
	mode, _ := digest.ParseMode(c.Mode)
	return digestservice.Options{
		Mode:           mode,
		EmitKPIs:       c.EmitKPIs,
		OwnerBreakdown: c.OwnerBreakdown,
		AllowMissing:   c.AllowMissing,
		Title:          c.Title,
		Format:         c.Format,
	}
}

// SlackConfig holds the incoming-webhook settings. An empty WebhookURL
// disables posting.
type SlackConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	MaxChars   int           `yaml:"max_chars"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// Validate validates the Slack configuration.
func (c *SlackConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.WebhookURL, is.URL),
		validation.Field(&c.MaxChars, validation.Min(0), validation.Max(40000)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxRetries, validation.Min(0), validation.Max(10)),
	)
}

// Enabled reports whether a webhook is configured.
func (c *SlackConfig) Enabled() bool {
	return c.WebhookURL != ""
}

// AuthConfig holds authentication configuration for the HTTP surface.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Logs: LogsConfig{
			Dir: "./logs",
		},
		Digest: DigestConfig{
			Mode:         string(digest.ModeGroupByPriority),
			EmitKPIs:     true,
			AllowMissing: true,
			Format:       digestservice.FormatMarkdown,
		},
		Slack: SlackConfig{
			MaxChars:   35000,
			Timeout:    20 * time.Second,
			MaxRetries: 3,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
