//go:build darwin

package main

import (
	"context"
	"log/slog"

	"github.com/prashantgupta24/mac-sleep-notifier/notifier"
)

// wakeEvents signals on every system wake. USB devices go stale across
// sleep, so the device session is restarted on each signal.
func wakeEvents(ctx context.Context) <-chan struct{} {
	sleepCh := notifier.GetInstance().Start()
	wakeCh := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case activity, ok := <-sleepCh:
				if !ok {
					return
				}
				if activity.Type != notifier.Awake {
					continue
				}
				slog.Info("system wake detected")
				select {
				case wakeCh <- struct{}{}:
				default:
				}
			}
		}
	}()
	return wakeCh
}
