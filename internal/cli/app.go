package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andres10976/cve-monitor/internal/config"
	"github.com/andres10976/cve-monitor/internal/database"
	"github.com/andres10976/cve-monitor/internal/handler"
	"github.com/andres10976/cve-monitor/internal/logging"
	"github.com/andres10976/cve-monitor/internal/middleware"
	"github.com/andres10976/cve-monitor/internal/model"
	"github.com/andres10976/cve-monitor/internal/repository"
	"github.com/andres10976/cve-monitor/internal/service/digest"
	"github.com/andres10976/cve-monitor/internal/service/feed"
	"github.com/andres10976/cve-monitor/internal/service/monitor"
	"github.com/andres10976/cve-monitor/internal/service/report"
	"github.com/andres10976/cve-monitor/internal/service/scheduler"
)

type stateStore interface {
	Load(ctx context.Context) model.MonitorState
	Save(ctx context.Context, state model.MonitorState) error
}

// app holds the wired components shared by every command.
type app struct {
	cfg     *config.Config
	store   stateStore
	archive *report.Archive
	monitor *monitor.Monitor
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, archive: report.NewArchive(cfg.DataDir)}

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := database.Migrate(pool); err != nil {
			a.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		a.store = repository.NewPostgresStateStore(pool)
		slog.Info("using postgres state store")
	} else {
		a.store = repository.NewFileStateStore(cfg.StateFile)
	}

	var email *config.Email
	if cfg.EmailConfigPath != "" {
		e, err := config.LoadEmail(cfg.EmailConfigPath)
		if err != nil {
			slog.Error("failed to load email configuration, continuing without email", "error", err)
		} else {
			email = e
		}
	}

	a.monitor = monitor.New(ctx,
		feed.NewFetcher(cfg.FeedURL, cfg.FeedTimeout),
		report.NewWriter(cfg.DataDir, cfg.FeedURL, a.store, time.Now),
		a.store,
		digest.NewNotifier(a.archive, digest.NewSMTPSender(cfg.SMTPTimeout), time.Now),
		email,
		time.Now,
	)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// warnArchiveAhead flags a counter that has fallen behind the archive, which
// happens when the state file is lost while reports are kept.
func (a *app) warnArchiveAhead() {
	highest, err := a.archive.HighestPull()
	if err != nil {
		slog.Warn("failed to scan report archive", "error", err)
		return
	}
	if pull := a.monitor.State().PullCount; highest > 0 && highest >= pull {
		slog.Warn("report archive is ahead of the pull counter, same-second reports may collide",
			"highest_pull", highest, "pull_count", pull)
	}
}

func (a *app) router(sched *scheduler.Scheduler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)

	r.Get("/healthz", handler.Healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		handler.NewMonitorHandler(sched, a.monitor, a.cfg.TriggerMinInterval).RegisterRoutes(r)
		handler.NewReportHandler(a.archive).RegisterRoutes(r)
	})
	return r
}

// setupLogging installs the default logger. Only the daemon and digest
// commands append to the log file.
func setupLogging(cfg *config.Config, console io.Writer, toFile bool) (io.Closer, error) {
	path := ""
	if toFile {
		path = cfg.LogFile
	}
	logger, closer, err := logging.Setup(console, path, cfg.SlogLevel())
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}
