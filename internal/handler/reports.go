package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/cve-monitor/internal/model"
	"github.com/andres10976/cve-monitor/internal/service/report"
)

type reportArchive interface {
	List(day time.Time) ([]model.Report, error)
	All() ([]model.Report, error)
	Read(name string) ([]byte, error)
}

type ReportHandler struct {
	archive reportArchive
}

func NewReportHandler(archive reportArchive) *ReportHandler {
	return &ReportHandler{archive: archive}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports", h.List)
	r.Get("/reports/{name}", h.Get)
}

// List returns report metadata, optionally restricted to ?date=YYYY-MM-DD.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		reports []model.Report
		err     error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		day, perr := time.Parse(time.DateOnly, date)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		reports, err = h.archive.List(day)
	} else {
		reports, err = h.archive.All()
	}
	if err != nil {
		slog.Error("failed to list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	body, err := h.archive.Read(chi.URLParam(r, "name"))
	switch {
	case errors.Is(err, report.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid report name")
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "report not found")
	case err != nil:
		slog.Error("failed to read report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read report")
	default:
		writeMarkdown(w, body)
	}
}
