package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/diagram"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	State  StateConfig       `yaml:"state"`
	Auth   AuthConfig        `yaml:"auth"`
	Render RenderConfig      `yaml:"render"`
	Update UpdateConfig      `yaml:"update"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.State.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	return c.Update.Validate()
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

// VaultConfig holds the Markdown vault settings.
type VaultConfig struct {
	Path string `yaml:"path"`
	// Document is the vault-relative path bound at startup. Empty starts
	// the server with no document until one is opened.
	Document string `yaml:"document"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// StateConfig holds the view-state database configuration.
type StateConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
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

// RenderConfig holds diagram appearance and layout preferences. Pointer
// fields distinguish "not set" from an explicit zero, which the option
// resolver honours.
type RenderConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	InitialExpandLevel *int `yaml:"initial_expand_level"`
	MaxWidth           *int `yaml:"max_width"`
	AnimationDuration  *int `yaml:"animation_duration"`
	NodeMinHeight      *int `yaml:"node_min_height"`
	SpacingVertical    *int `yaml:"spacing_vertical"`
	SpacingHorizontal  *int `yaml:"spacing_horizontal"`
	PaddingX           *int `yaml:"padding_x"`

	ColorMode    string   `yaml:"color_mode"`
	SingleColor  string   `yaml:"single_color"`
	DepthColors  []string `yaml:"depth_colors"`
	DefaultColor string   `yaml:"default_color"`

	StrokeWidths [4]float64 `yaml:"stroke_widths"`

	CodeBlockBackground string `yaml:"code_block_background"`
	LineHeight          string `yaml:"line_height"`
	FontFamily          string `yaml:"font_family"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1)),
		validation.Field(&c.Height, validation.Required, validation.Min(1)),
		validation.Field(&c.ColorMode, validation.In("", diagram.ColorModeSingle, diagram.ColorModeDepth)),
	)
}

// Prefs converts the render configuration into resolver preferences.
func (c *RenderConfig) Prefs() diagram.Preferences {
	return diagram.Preferences{
		InitialExpandLevel:  c.InitialExpandLevel,
		MaxWidth:            c.MaxWidth,
		AnimationDuration:   c.AnimationDuration,
		NodeMinHeight:       c.NodeMinHeight,
		SpacingVertical:     c.SpacingVertical,
		SpacingHorizontal:   c.SpacingHorizontal,
		PaddingX:            c.PaddingX,
		ColorMode:           c.ColorMode,
		SingleColor:         c.SingleColor,
		DepthColors:         c.DepthColors,
		DefaultColor:        c.DefaultColor,
		StrokeWidths:        c.StrokeWidths,
		CodeBlockBackground: c.CodeBlockBackground,
		LineHeight:          c.LineHeight,
		FontFamily:          c.FontFamily,
	}
}

// UpdateConfig holds update-pipeline timing configuration.
type UpdateConfig struct {
	DebounceMS     int `yaml:"debounce_ms"`
	StylingDelayMS int `yaml:"styling_delay_ms"`
	SSEThrottleMS  int `yaml:"sse_throttle_ms"`
}

// Validate validates the update configuration.
func (c *UpdateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DebounceMS, validation.Min(0)),
		validation.Field(&c.StylingDelayMS, validation.Min(0)),
		validation.Field(&c.SSEThrottleMS, validation.Min(0)),
	)
}

// DebounceWindow returns the edit debounce window (<=0 selects the default).
func (c *UpdateConfig) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// StylingDelay returns the styling-pass settle delay (<=0 selects the default).
func (c *UpdateConfig) StylingDelay() time.Duration {
	return time.Duration(c.StylingDelayMS) * time.Millisecond
}

// SSEThrottle returns the diagram.updated throttle (<=0 selects the default).
func (c *UpdateConfig) SSEThrottle() time.Duration {
	return time.Duration(c.SSEThrottleMS) * time.Millisecond
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
		Vault: VaultConfig{
			Path: "./vault",
		},
		State: StateConfig{
			Path: "./ansuz.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Render: RenderConfig{
			Width:        1200,
			Height:       800,
			ColorMode:    diagram.ColorModeDepth,
			StrokeWidths: [4]float64{1.5, 1.5, 1.5, 1.5},
		},
	}
}
