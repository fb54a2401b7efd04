package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/orderlist/internal/ledger"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Auth   AuthConfig        `yaml:"auth"`
	Ledger LedgerConfig      `yaml:"ledger"`
	Export ExportConfig      `yaml:"export"`
	Output OutputConfig      `yaml:"output"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	return c.Output.Validate()
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

// LedgerConfig controls how items are stamped.
type LedgerConfig struct {
	// TimeFormat is the Go time layout of an item's CreatedAt.
	TimeFormat string `yaml:"time_format"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TimeFormat, validation.Required),
	)
}

// ExportConfig controls icon rendering and document layout.
type ExportConfig struct {
	// Scale is the raster resolution multiplier applied to icon glyphs.
	Scale float64 `yaml:"scale"`
	// MaxIconPx bounds the longest edge of a rendered icon. 0 disables the bound.
	MaxIconPx   int           `yaml:"max_icon_px"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	DateFormat  string        `yaml:"date_format"`
	PageSize    string        `yaml:"page_size"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Scale, validation.Required, validation.Min(0.5), validation.Max(32.0)),
		validation.Field(&c.MaxIconPx, validation.Min(0), validation.Max(4096)),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(64)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.DateFormat, validation.Required),
		validation.Field(&c.PageSize, validation.Required, validation.In("A3", "A4", "A5", "Letter", "Legal")),
	)
}

// OutputConfig holds the directory exported documents are saved to.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
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
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Ledger: LedgerConfig{
			TimeFormat: ledger.DefaultTimeLayout,
		},
		Export: ExportConfig{
			Scale:       4,
			MaxIconPx:   256,
			Concurrency: 4,
			Timeout:     30 * time.Second,
			DateFormat:  "01/02/2006",
			PageSize:    "A4",
		},
		Output: OutputConfig{
			Path: "./exports",
		},
	}
}
