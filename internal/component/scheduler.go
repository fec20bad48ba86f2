package component

import "time"

// Scheduler runs fn every interval on the UI goroutine until the returned
// cancel func is called. After cancel returns, fn is never invoked again,
// even for ticks that were already queued.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}
