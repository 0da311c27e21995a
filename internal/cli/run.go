package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andres10976/cve-monitor/internal/config"
	"github.com/andres10976/cve-monitor/internal/service/monitor"
	"github.com/andres10976/cve-monitor/internal/service/scheduler"
)

const shutdownTimeout = 10 * time.Second

// runDaemon runs the fetch and digest schedule until ctx is canceled or the
// process receives SIGINT/SIGTERM.
func runDaemon(ctx context.Context, cfg *config.Config, console io.Writer) error {
	closer, err := setupLogging(cfg, console, true)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer closer.Close()

	digestAt, err := scheduler.DailyAt(cfg.DigestAt)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	a.warnArchiveAhead()

	sched := scheduler.New(cfg.TickInterval, time.Now,
		scheduler.Task{
			Name:       monitor.TaskFetch,
			Schedule:   scheduler.Every(cfg.FetchInterval),
			RunOnStart: true,
			Run:        func(ctx context.Context) { a.monitor.FetchCycle(ctx) },
		},
		scheduler.Task{
			Name:     monitor.TaskDigest,
			Schedule: digestAt,
			Run:      func(ctx context.Context) { a.monitor.DigestCycle(ctx) },
		},
	)

	slog.Info("CVE RSS monitor started",
		"feed", cfg.FeedURL,
		"data_dir", cfg.DataDir,
		"fetch_interval", cfg.FetchInterval,
		"digest_at", cfg.DigestAt+" UTC")

	if err := sched.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.StatusAddr != "" {
		srv := &http.Server{
			Addr:         cfg.StatusAddr,
			Handler:      a.router(sched),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		g.Go(func() error {
			slog.Info("status server starting", "addr", cfg.StatusAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil && !errors.Is(err, scheduler.ErrNotRunning) {
			return fmt.Errorf("stop scheduler: %w", err)
		}
		return nil
	})

	return g.Wait()
}
