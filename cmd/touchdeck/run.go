package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phinze/touchdeck/internal/compositor"
	"github.com/phinze/touchdeck/internal/config"
	"github.com/phinze/touchdeck/internal/deck"
	"github.com/phinze/touchdeck/internal/loop"
	"github.com/phinze/touchdeck/internal/screen"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"rafaelmartins.com/p/streamdeck"
)

// errWake ends a device session so the device is reopened after sleep.
var errWake = errors.New("system wake")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the touch UI on a connected Stream Deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		wakeCh := wakeEvents(ctx)

		// Wait for device, run, repeat on disconnect
		for {
			device := waitForDevice(ctx, cfg.Deck.Serial)
			if device == nil {
				return nil
			}

			if err := runWithDevice(ctx, cfg, device, wakeCh); err != nil {
				slog.Warn("device session ended", "err", err)
			}
			closeDevice(device)

			if ctx.Err() != nil {
				slog.Info("exiting")
				return nil
			}
			slog.Info("waiting for device reconnect")
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// waitForDevice polls until a device is available or ctx is cancelled.
func waitForDevice(ctx context.Context, serial string) *streamdeck.Device {
	logged := false
	for {
		device, err := streamdeck.GetDevice(serial)
		if err == nil {
			if err := device.Open(); err != nil {
				slog.Warn("device found but open failed", "err", err)
			} else {
				slog.Info("device connected", "model", device.GetModelName())
				return device
			}
		} else if !logged {
			slog.Info("waiting for device", "serial", serial, "err", err)
			logged = true
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

// runWithDevice runs the UI against device until ctx is cancelled, the
// device fails or the system wakes.
func runWithDevice(ctx context.Context, cfg *config.Config, device *streamdeck.Device, wakeCh <-chan struct{}) error {
	device.SetBrightness(80)

	viewport, err := deck.Viewport(device)
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

	scr := screen.New(viewport.Size())
	lp := loop.New(64)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := lp.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	var ui *compositor.UI
	err = lp.Do(func() error {
		var err error
		ui, err = compositor.Build(cfg, compositor.Deps{
			Screen:    scr,
			Session:   session,
			Scheduler: lp,
			Keyboard:  kbd,
		})
		return err
	})
	if err != nil {
		cancel()
		return errors.Join(fmt.Errorf("failed to build UI: %w", err), g.Wait())
	}

	driver, err := deck.New(device, lp, ui, scr, cfg.Deck.RenderInterval)
	if err != nil {
		cancel()
		return errors.Join(err, g.Wait())
	}
	g.Go(func() error {
		return driver.Run(ctx)
	})

	if cfg.Display.Image != "" {
		g.Go(func() error {
			return session.Watch(ctx, cfg.Display.Image)
		})
	}

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-wakeCh:
			return errWake
		}
	})

	slog.Info("ready", "viewport", viewport.Size(), "display", fmt.Sprintf("%dx%d", session.Width(), session.Height()))
	return g.Wait()
}

// closeDevice closes device, giving up after a timeout since Close may block.
func closeDevice(device *streamdeck.Device) {
	done := make(chan struct{})
	go func() {
		device.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		slog.Warn("device close timed out")
	}
}
