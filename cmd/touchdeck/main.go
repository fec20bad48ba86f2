// Command touchdeck runs the touch UI on a Stream Deck touch strip.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/phinze/touchdeck/internal/config"
	"github.com/phinze/touchdeck/internal/keyboard"
	"github.com/phinze/touchdeck/internal/remote"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "touchdeck",
	Short: "Touch UI compositor for a remote display",
	Long: `touchdeck drives a mode-based touch UI (magnifier, pan, on-screen keyboard)
over a remote display, using a Stream Deck touch strip as the viewport.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

// newSession creates the display session, loading the configured image
// when there is one.
func newSession(cfg *config.Config) (*remote.Framebuffer, error) {
	fb := remote.NewFramebuffer(cfg.Display.Width, cfg.Display.Height)
	if cfg.Display.Image != "" {
		if err := fb.Load(cfg.Display.Image); err != nil {
			return nil, err
		}
	}
	return fb, nil
}

func newKeyboard(cfg *config.Config) (*keyboard.Keyboard, error) {
	layout, err := cfg.KeyboardLayout()
	if err != nil {
		return nil, err
	}
	return keyboard.NewWithLayout(layout)
}
