// Package scheduler runs named tasks on cron schedules from a single
// goroutine, so no two tasks ever execute at the same time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	ErrAlreadyRunning  = errors.New("scheduler already running")
	ErrNotRunning      = errors.New("scheduler not running")
	ErrUnknownTask     = errors.New("unknown task")
	ErrBusy            = errors.New("task already queued")
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// Task is a unit of recurring work.
type Task struct {
	Name     string
	Schedule cron.Schedule
	// RunOnStart runs the task once as soon as the loop starts, before the
	// first tick.
	RunOnStart bool
	Run        func(ctx context.Context)
}

// NextRun is a snapshot of when a task is next due.
type NextRun struct {
	Name    string    `json:"name"`
	Next    time.Time `json:"next"`
	LastRun time.Time `json:"last_run,omitzero"`
}

// Every returns a schedule firing every d, rounded down to whole seconds.
func Every(d time.Duration) cron.Schedule {
	return cron.Every(d)
}

// DailyAt returns a schedule firing once a day at hhmm ("HH:MM", UTC).
func DailyAt(hhmm string) (cron.Schedule, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return nil, fmt.Errorf("%w: daily time %q: %w", ErrInvalidSchedule, hhmm, err)
	}
	expr := fmt.Sprintf("CRON_TZ=UTC %d %d * * *", t.Minute(), t.Hour())
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchedule, expr, err)
	}
	return sched, nil
}

type entry struct {
	task    Task
	next    time.Time
	lastRun time.Time
	// pending marks a queued manual run; at most one per task.
	pending bool
}

type Scheduler struct {
	tick    time.Duration
	now     func() time.Time
	entries []*entry
	wake    chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a scheduler that checks for due tasks every tick. Tasks run in
// registration order when several are due at once.
func New(tick time.Duration, now func() time.Time, tasks ...Task) *Scheduler {
	if now == nil {
		now = time.Now
	}
	s := &Scheduler{
		tick: tick,
		now:  now,
		wake: make(chan struct{}, 1),
	}
	t0 := now()
	for _, t := range tasks {
		s.entries = append(s.entries, &entry{task: t, next: t.Schedule.Next(t0)})
	}
	return s
}

// Run executes the loop until ctx is canceled. It blocks.
func (s *Scheduler) Run(ctx context.Context) error {
	loopCtx, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end(done)
	s.loop(loopCtx)
	return nil
}

// Start launches the loop in the background. The loop context is derived
// from context.Background so it outlives the caller (e.g. an HTTP request).
func (s *Scheduler) Start(_ context.Context) error {
	loopCtx, done, err := s.begin(context.Background())
	if err != nil {
		return err
	}
	go func() {
		defer s.end(done)
		s.loop(loopCtx)
	}()
	return nil
}

// Stop cancels the loop and waits for the in-flight task to return, or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Trigger queues a manual run of the named task on the loop goroutine. Each
// task holds at most one queued run; a second one returns ErrBusy. A manual
// run leaves the task's schedule unchanged.
func (s *Scheduler) Trigger(name string) error {
	e := s.lookup(name)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	s.mu.Lock()
	switch {
	case s.cancel == nil:
		s.mu.Unlock()
		return ErrNotRunning
	case e.pending:
		s.mu.Unlock()
		return ErrBusy
	}
	e.pending = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// NextRuns returns the schedule of every task in registration order.
func (s *Scheduler) NextRuns() []NextRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs := make([]NextRun, 0, len(s.entries))
	for _, e := range s.entries {
		runs = append(runs, NextRun{Name: e.task.Name, Next: e.next, LastRun: e.lastRun})
	}
	return runs
}

// RunPending runs every task whose next time has arrived and reschedules it
// from its completion time. It stops early once ctx is canceled. Outside
// of tests it is only called from the loop goroutine.
func (s *Scheduler) RunPending(ctx context.Context) {
	now := s.now()
	for _, e := range s.entries {
		if ctx.Err() != nil {
			return
		}
		s.mu.Lock()
		due := !now.Before(e.next)
		s.mu.Unlock()
		if !due {
			continue
		}

		s.execute(ctx, e)

		s.mu.Lock()
		e.next = e.task.Schedule.Next(s.now())
		s.mu.Unlock()
	}
}

func (s *Scheduler) begin(parent context.Context) (context.Context, chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil, nil, ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.done = make(chan struct{})
	return ctx, s.done, nil
}

func (s *Scheduler) end(done chan struct{}) {
	s.mu.Lock()
	s.cancel()
	s.cancel = nil
	// runs queued after the last select would otherwise fire on restart
	for _, e := range s.entries {
		e.pending = false
	}
	select {
	case <-s.wake:
	default:
	}
	s.mu.Unlock()
	close(done)
}

func (s *Scheduler) loop(ctx context.Context) {
	slog.Info("scheduler started", "tasks", len(s.entries), "tick", s.tick)
	defer slog.Info("scheduler stopped")

	t0 := s.now()
	s.mu.Lock()
	for _, e := range s.entries {
		e.next = e.task.Schedule.Next(t0)
	}
	s.mu.Unlock()

	for _, e := range s.entries {
		if e.task.RunOnStart && ctx.Err() == nil {
			s.execute(ctx, e)
		}
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			s.runTriggered(ctx)
		case <-ticker.C:
			s.RunPending(ctx)
		}
	}
}

// runTriggered runs queued manual runs in registration order. A task's flag
// is cleared before it runs so it can be queued again meanwhile.
func (s *Scheduler) runTriggered(ctx context.Context) {
	for _, e := range s.entries {
		if ctx.Err() != nil {
			return
		}
		s.mu.Lock()
		queued := e.pending
		e.pending = false
		s.mu.Unlock()
		if queued {
			slog.Info("running triggered task", "task", e.task.Name)
			s.execute(ctx, e)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, e *entry) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panicked", "task", e.task.Name, "error", r, "stack", string(debug.Stack()))
		}
	}()

	s.mu.Lock()
	e.lastRun = s.now()
	s.mu.Unlock()

	e.task.Run(ctx)
}

func (s *Scheduler) lookup(name string) *entry {
	for _, e := range s.entries {
		if e.task.Name == name {
			return e
		}
	}
	return nil
}
