// Package config loads touchdeck configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/phinze/touchdeck/internal/keyboard"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete configuration.
type Config struct {
	Display   DisplayConfig   `toml:"display"`
	Magnifier MagnifierConfig `toml:"magnifier"`
	Keyboard  KeyboardConfig  `toml:"keyboard"`
	Deck      DeckConfig      `toml:"deck"`
	Log       LogConfig       `toml:"log"`
}

// DisplayConfig describes the remote display stand-in.
type DisplayConfig struct {
	// Image is an optional PNG, JPEG or WebP file used as display contents.
	// It is reloaded when it changes.
	Image  string `toml:"image"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// Scale is the initial display scale; 0 fits the display to the
	// viewport.
	Scale float64 `toml:"scale"`
}

// MagnifierConfig sizes the magnifier window.
type MagnifierConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// KeyboardConfig configures the on-screen keyboard.
type KeyboardConfig struct {
	Layout       string         `toml:"layout"`
	PollInterval time.Duration  `toml:"poll_interval"`
	Height       int            `toml:"height"`
	Keys         []keyboard.Key `toml:"keys"`
}

// DeckConfig configures the Stream Deck driver.
type DeckConfig struct {
	Serial         string        `toml:"serial"`
	RenderInterval time.Duration `toml:"render_interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:  1600,
			Height: 200,
		},
		Magnifier: MagnifierConfig{
			Width:  160,
			Height: 100,
		},
		Keyboard: KeyboardConfig{
			Layout:       "en-us-qwerty",
			PollInterval: 30 * time.Millisecond,
			Height:       40,
		},
		Deck: DeckConfig{
			RenderInterval: 100 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the UI cannot work with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Display.Width > 0 && c.Display.Height > 0, "display size %dx%d", c.Display.Width, c.Display.Height)
	check(c.Display.Scale >= 0, "display scale %v", c.Display.Scale)
	check(c.Magnifier.Width > 0 && c.Magnifier.Height > 0, "magnifier size %dx%d", c.Magnifier.Width, c.Magnifier.Height)
	check(c.Keyboard.PollInterval > 0, "keyboard poll_interval %v", c.Keyboard.PollInterval)
	check(c.Deck.RenderInterval > 0, "deck render_interval %v", c.Deck.RenderInterval)

	if len(c.Keyboard.Keys) == 0 {
		_, ok := keyboard.Layouts[c.Keyboard.Layout]
		check(ok, "unknown keyboard layout %q", c.Keyboard.Layout)
	}

	_, err := ParseLevel(c.Log.Level)
	check(err == nil, "log level %q", c.Log.Level)

	return errors.Join(errs...)
}

// KeyboardLayout returns the configured layout: the custom key row when
// keys are given, otherwise the named built-in layout.
func (c *Config) KeyboardLayout() (keyboard.Layout, error) {
	if len(c.Keyboard.Keys) > 0 {
		return keyboard.Layout{
			Name:   "custom",
			Height: c.Keyboard.Height,
			Keys:   c.Keyboard.Keys,
		}, nil
	}
	layout, ok := keyboard.Layouts[c.Keyboard.Layout]
	if !ok {
		return keyboard.Layout{}, fmt.Errorf("%w: unknown keyboard layout %q", ErrInvalid, c.Keyboard.Layout)
	}
	if c.Keyboard.Height > 0 {
		layout.Height = c.Keyboard.Height
	}
	return layout, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}
