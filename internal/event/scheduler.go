package event

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultTickInterval = 50 * time.Millisecond

// Scheduler is the main-thread task queue. RunTask may be called from any
// goroutine; tasks only ever run inside Tick, one after another, in the
// order they were queued. A task queued while a tick is running waits for
// the next tick.
type Scheduler struct {
	mu    sync.Mutex
	queue []func()
	ticks uint64
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) RunTask(task func()) {
	if task == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, task)
	s.mu.Unlock()
}

// Call queues fn and blocks until it has run or ctx is done.
func (s *Scheduler) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	s.RunTask(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick runs every task queued before the call and returns how many ran.
func (s *Scheduler) Tick() int {
	s.mu.Lock()
	tasks := s.queue
	s.queue = nil
	s.ticks++
	s.mu.Unlock()

	for _, task := range tasks {
		runTask(task)
	}
	return len(tasks)
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Run ticks every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Scheduled task panicked", "panic", r)
		}
	}()
	task()
}
