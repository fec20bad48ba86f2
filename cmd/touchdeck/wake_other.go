//go:build !darwin

package main

import "context"

// wakeEvents never fires; wake detection is only available on macOS.
func wakeEvents(ctx context.Context) <-chan struct{} {
	return nil
}
