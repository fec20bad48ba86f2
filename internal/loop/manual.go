package loop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by explicit calls to Advance. It runs
// everything on the caller's goroutine, which makes it suitable for
// headless rendering and tests.
type Manual struct {
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	interval time.Duration
	next     time.Duration
	fn       func()
	stopped  bool
}

// NewManual creates a Manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Every implements component.Scheduler.
func (m *Manual) Every(interval time.Duration, fn func()) (cancel func()) {
	task := &manualTask{interval: interval, next: m.now + interval, fn: fn}
	m.tasks = append(m.tasks, task)
	return func() {
		task.stopped = true
		m.prune()
	}
}

// Advance moves time forward by d, firing every tick that falls due in
// order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		task := m.nextDue(target)
		if task == nil {
			break
		}
		m.now = task.next
		task.next += task.interval
		task.fn()
	}
	m.now = target
}

// Active returns the number of running tasks.
func (m *Manual) Active() int {
	return len(m.tasks)
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	var due []*manualTask
	for _, t := range m.tasks {
		if !t.stopped && t.next <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].next < due[j].next })
	return due[0]
}

func (m *Manual) prune() {
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
}
