package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/andres10976/cve-monitor/internal/service/monitor"
	"github.com/andres10976/cve-monitor/internal/service/scheduler"
)

type schedulerService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	Trigger(name string) error
	NextRuns() []scheduler.NextRun
}

type statusProvider interface {
	Status() monitor.Status
}

type MonitorHandler struct {
	scheduler schedulerService
	monitor   statusProvider
	limiters  map[string]*rate.Limiter
}

type statusResponse struct {
	monitor.Status
	Running  bool                `json:"running"`
	NextRuns []scheduler.NextRun `json:"next_runs"`
}

// NewMonitorHandler builds the monitor endpoints. Manual triggers of each
// task are accepted at most once per minInterval.
func NewMonitorHandler(sched schedulerService, mon statusProvider, minInterval time.Duration) *MonitorHandler {
	return &MonitorHandler{
		scheduler: sched,
		monitor:   mon,
		limiters: map[string]*rate.Limiter{
			monitor.TaskFetch:  rate.NewLimiter(rate.Every(minInterval), 1),
			monitor.TaskDigest: rate.NewLimiter(rate.Every(minInterval), 1),
		},
	}
}

func (h *MonitorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/monitor/status", h.Status)
	r.Post("/monitor/start", h.Start)
	r.Post("/monitor/stop", h.Stop)
	r.Post("/monitor/fetch", h.Fetch)
	r.Post("/monitor/digest", h.Digest)
}

func (h *MonitorHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:   h.monitor.Status(),
		Running:  h.scheduler.IsRunning(),
		NextRuns: h.scheduler.NextRuns(),
	})
}

func (h *MonitorHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.Start(r.Context()); err != nil {
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "monitor is already running")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start monitor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Monitor started"})
}

func (h *MonitorHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.Stop(r.Context()); err != nil {
		if errors.Is(err, scheduler.ErrNotRunning) {
			writeError(w, http.StatusConflict, "monitor is not running")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to stop monitor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Monitor stopped"})
}

func (h *MonitorHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, monitor.TaskFetch)
}

func (h *MonitorHandler) Digest(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, monitor.TaskDigest)
}

// trigger reserves a rate-limit slot and gives it back when the scheduler
// refuses the run, so a rejected request never delays a valid one.
func (h *MonitorHandler) trigger(w http.ResponseWriter, task string) {
	now := time.Now()
	res := h.limiters[task].ReserveN(now, 1)
	if !res.OK() || res.DelayFrom(now) > 0 {
		res.CancelAt(now)
		writeError(w, http.StatusTooManyRequests, "too many manual "+task+" requests")
		return
	}
	if err := h.scheduler.Trigger(task); err != nil {
		res.CancelAt(now)
		switch {
		case errors.Is(err, scheduler.ErrNotRunning):
			writeError(w, http.StatusConflict, "monitor is not running")
		case errors.Is(err, scheduler.ErrBusy):
			writeError(w, http.StatusConflict, task+" is already queued")
		default:
			writeError(w, http.StatusInternalServerError, "failed to queue "+task)
		}
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": task + " queued"})
}
