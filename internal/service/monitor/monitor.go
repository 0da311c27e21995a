package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andres10976/cve-monitor/internal/config"
	"github.com/andres10976/cve-monitor/internal/metrics"
	"github.com/andres10976/cve-monitor/internal/model"
	"github.com/andres10976/cve-monitor/internal/service/digest"
	"github.com/andres10976/cve-monitor/internal/service/feed"
)

type feedFetcher interface {
	Fetch(ctx context.Context) ([]model.Entry, error)
}

type reportWriter interface {
	Write(ctx context.Context, entries []model.Entry, state model.MonitorState) (model.Report, model.MonitorState, error)
}

type stateLoader interface {
	Load(ctx context.Context) model.MonitorState
}

type digestNotifier interface {
	Collect(day time.Time) ([]model.Report, error)
	Notify(ctx context.Context, cfg *config.Email, reports []model.Report) (digest.Outcome, error)
}

// Scheduler task names for the two cycles.
const (
	TaskFetch  = "fetch"
	TaskDigest = "digest"
)

// CycleOutcome classifies a fetch cycle.
type CycleOutcome string

const (
	OutcomeReported CycleOutcome = "reported"
	OutcomeEmpty    CycleOutcome = "empty"
	OutcomeFailed   CycleOutcome = "failed"
)

type CycleResult struct {
	CycleID    string        `json:"cycle_id"`
	Outcome    CycleOutcome  `json:"outcome"`
	Stage      string        `json:"stage,omitempty"`
	Entries    int           `json:"entries"`
	Report     *model.Report `json:"report,omitempty"`
	Err        error         `json:"-"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

type DigestResult struct {
	CycleID    string         `json:"cycle_id"`
	Outcome    digest.Outcome `json:"outcome"`
	Reports    int            `json:"reports"`
	Err        error          `json:"-"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Status is a point-in-time view of the monitor for readers outside the
// scheduler goroutine.
type Status struct {
	PullCount       uint64        `json:"pull_count"`
	EmailConfigured bool          `json:"email_configured"`
	LastFetch       *CycleResult  `json:"last_fetch,omitempty"`
	LastDigest      *DigestResult `json:"last_digest,omitempty"`
}

// Monitor owns the pull counter and runs the fetch and digest cycles.
// Cycles are expected to run on a single goroutine; State and Status may be
// called concurrently with them.
type Monitor struct {
	fetcher  feedFetcher
	writer   reportWriter
	notifier digestNotifier
	email    *config.Email
	now      func() time.Time

	mu         sync.RWMutex
	state      model.MonitorState
	lastFetch  *CycleResult
	lastDigest *DigestResult
}

// New loads the persisted state once. A nil email disables the digest
// without disabling the cycle.
func New(
	ctx context.Context,
	fetcher feedFetcher,
	writer reportWriter,
	store stateLoader,
	notifier digestNotifier,
	email *config.Email,
	now func() time.Time,
) *Monitor {
	if now == nil {
		now = time.Now
	}
	state := store.Load(ctx)
	metrics.PullCount.Set(float64(state.PullCount))
	slog.Info("monitor state loaded", "pull_count", state.PullCount, "email_configured", email != nil)

	return &Monitor{
		fetcher:  fetcher,
		writer:   writer,
		notifier: notifier,
		email:    email,
		now:      now,
		state:    state,
	}
}

// FetchCycle pulls the feed once and, when it has entries, writes the next
// report. It never returns an error; failures are reported in the result.
func (m *Monitor) FetchCycle(ctx context.Context) (res CycleResult) {
	res = CycleResult{CycleID: uuid.NewString(), StartedAt: m.now()}
	logger := slog.With("cycle_id", res.CycleID)
	defer func() {
		res.FinishedAt = m.now()
		metrics.FetchDuration.Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())
		metrics.FetchCyclesTotal.WithLabelValues(string(res.Outcome)).Inc()
		m.mu.Lock()
		m.lastFetch = &res
		m.mu.Unlock()
	}()

	logger.Info("fetching RSS feed")
	entries, err := m.fetcher.Fetch(ctx)
	if err != nil {
		stage := "parse"
		if errors.Is(err, feed.ErrNetwork) {
			stage = "network"
		}
		logger.Error("failed to fetch RSS feed", "stage", stage, "error", err)
		return m.failed(&res, stage, err)
	}
	res.Entries = len(entries)
	if len(entries) == 0 {
		logger.Info("no entries found in RSS feed")
		res.Outcome = OutcomeEmpty
		return res
	}

	report, next, err := m.writer.Write(ctx, entries, m.State())
	if err != nil {
		logger.Error("failed to generate report", "stage", "write", "error", err)
		return m.failed(&res, "write", err)
	}

	m.mu.Lock()
	m.state = next
	m.mu.Unlock()

	metrics.PullCount.Set(float64(next.PullCount))
	metrics.EntriesFetched.Add(float64(len(entries)))
	logger.Info("report generated", "report", report.Name, "entries", len(entries), "pull_count", next.PullCount)

	res.Outcome = OutcomeReported
	res.Report = &report
	return res
}

func (m *Monitor) failed(res *CycleResult, stage string, err error) CycleResult {
	metrics.FetchErrorsTotal.WithLabelValues(stage).Inc()
	res.Outcome = OutcomeFailed
	res.Stage = stage
	res.Err = err
	res.Error = err.Error()
	return *res
}

// DigestCycle emails the reports created today (UTC).
func (m *Monitor) DigestCycle(ctx context.Context) (res DigestResult) {
	res = DigestResult{CycleID: uuid.NewString(), StartedAt: m.now()}
	logger := slog.With("cycle_id", res.CycleID)
	defer func() {
		res.FinishedAt = m.now()
		metrics.DigestsTotal.WithLabelValues(string(res.Outcome)).Inc()
		m.mu.Lock()
		m.lastDigest = &res
		m.mu.Unlock()
	}()

	logger.Info("sending daily report")
	reports, err := m.notifier.Collect(res.StartedAt.UTC())
	if err != nil {
		logger.Error("failed to collect daily reports", "stage", "notify", "error", err)
		res.Outcome, res.Err, res.Error = digest.OutcomeFailed, err, err.Error()
		return res
	}
	res.Reports = len(reports)

	outcome, err := m.notifier.Notify(ctx, m.email, reports)
	res.Outcome = outcome
	if err != nil {
		logger.Error("failed to send email", "stage", "notify", "error", err)
		res.Err, res.Error = err, err.Error()
	}
	return res
}

// State returns the current in-memory state.
func (m *Monitor) State() model.MonitorState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Status{
		PullCount:       m.state.PullCount,
		EmailConfigured: m.email != nil,
	}
	if m.lastFetch != nil {
		f := *m.lastFetch
		s.LastFetch = &f
	}
	if m.lastDigest != nil {
		d := *m.lastDigest
		s.LastDigest = &d
	}
	return s
}
