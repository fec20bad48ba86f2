package main

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/phinze/touchdeck/internal/component"
	"github.com/phinze/touchdeck/internal/compositor"
	"github.com/phinze/touchdeck/internal/loop"
	"github.com/phinze/touchdeck/internal/screen"
	"github.com/spf13/cobra"
)

var snapshotOpts struct {
	state  string
	drag   string
	out    string
	width  int
	height int
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render one frame of the UI in a given state to a PNG",
	Long: `Render the UI headless, without a device, in the given state and write the
frame to a PNG file. Useful for checking layouts and display images.`,
	Example: `  touchdeck snapshot --state magnifier --drag 300,20 --out magnifier.png
  touchdeck snapshot --state osk --out keyboard.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		state, err := component.ParseState(snapshotOpts.state)
		if err != nil {
			return err
		}

		session, err := newSession(cfg)
		if err != nil {
			return err
		}
		kbd, err := newKeyboard(cfg)
		if err != nil {
			return err
		}

		clock := loop.NewManual()
		ui, err := compositor.Build(cfg, compositor.Deps{
			Screen:    screen.New(image.Pt(snapshotOpts.width, snapshotOpts.height)),
			Session:   session,
			Scheduler: clock,
			Keyboard:  kbd,
		})
		if err != nil {
			return fmt.Errorf("failed to build UI: %w", err)
		}
		if err := ui.States.SetState(state); err != nil {
			return err
		}
		if snapshotOpts.drag != "" {
			p, err := parsePoint(snapshotOpts.drag)
			if err != nil {
				return err
			}
			ui.Magnifier.MoveTo(p)
		}

		f, err := os.Create(snapshotOpts.out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := png.Encode(f, ui.Frame()); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}

		slog.Info("snapshot written", "path", snapshotOpts.out, "state", state)
		return f.Close()
	},
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVar(&snapshotOpts.state, "state", "interactive", "state to render (interactive, osk, magnifier, pan, pan-typing)")
	f.StringVar(&snapshotOpts.drag, "drag", "", "magnifier window position as x,y")
	f.StringVarP(&snapshotOpts.out, "out", "o", "touchdeck.png", "output PNG path")
	f.IntVar(&snapshotOpts.width, "width", 800, "viewport width")
	f.IntVar(&snapshotOpts.height, "height", 100, "viewport height")
	rootCmd.AddCommand(snapshotCmd)
}

// parsePoint parses "x,y".
func parsePoint(s string) (image.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return image.Point{}, fmt.Errorf("invalid point %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return image.Pt(x, y), nil
}
