package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/andres10976/cve-monitor/internal/model"
)

var (
	// ErrWrite wraps every failure to produce a report artifact.
	ErrWrite = errors.New("write report")
	// ErrNoEntries is returned when there is nothing to report.
	ErrNoEntries = errors.New("no entries to report")
	// ErrArtifactExists means the derived name is already taken on disk.
	ErrArtifactExists = errors.New("report artifact already exists")
)

type stateSaver interface {
	Save(ctx context.Context, state model.MonitorState) error
}

// Writer turns fetched entries into numbered report artifacts and persists
// the pull counter alongside them.
type Writer struct {
	dir    string
	source string
	store  stateSaver
	now    func() time.Time
}

func NewWriter(dir, source string, store stateSaver, now func() time.Time) *Writer {
	return &Writer{dir: dir, source: source, store: store, now: now}
}

// Write renders entries into a new artifact numbered state.PullCount+1 and
// returns the artifact with the successor state. The successor is saved
// before the artifact becomes visible under its final name; on any failure
// the returned state is the one passed in.
func (w *Writer) Write(ctx context.Context, entries []model.Entry, state model.MonitorState) (model.Report, model.MonitorState, error) {
	if len(entries) == 0 {
		return model.Report{}, state, ErrNoEntries
	}

	now := w.now().UTC()
	next := state.Next()
	name := FileName(now, next.PullCount)
	final := filepath.Join(w.dir, name)

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return model.Report{}, state, fmt.Errorf("%w: create report dir: %w", ErrWrite, err)
	}
	if _, err := os.Lstat(final); err == nil {
		return model.Report{}, state, fmt.Errorf("%w: %w: %s", ErrWrite, ErrArtifactExists, name)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return model.Report{}, state, fmt.Errorf("%w: stat %s: %w", ErrWrite, name, err)
	}

	tmpName, size, err := w.writeTemp(Header{
		Date:   now.Format(dateLayout),
		Time:   now.Format(timeLayout),
		Pull:   next.PullCount,
		Source: w.source,
	}, entries)
	if err != nil {
		return model.Report{}, state, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := w.store.Save(ctx, next); err != nil {
		os.Remove(tmpName)
		return model.Report{}, state, fmt.Errorf("%w: persist state: %w", ErrWrite, err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		if rbErr := w.store.Save(ctx, state); rbErr != nil {
			slog.Error("failed to roll back state after report rename failure",
				"error", rbErr, "pull_count", state.PullCount)
		}
		return model.Report{}, state, fmt.Errorf("%w: publish %s: %w", ErrWrite, name, err)
	}

	slog.Info("generated report", "file", final, "entries", len(entries), "pull_count", next.PullCount)
	return model.Report{
		Name:    name,
		Path:    final,
		Date:    now.Format(dateLayout),
		Time:    now.Format(timeLayout),
		Pull:    next.PullCount,
		Size:    size,
		ModTime: now,
	}, next, nil
}

func (w *Writer) writeTemp(h Header, entries []model.Entry) (string, int64, error) {
	tmp, err := os.CreateTemp(w.dir, ".report-*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("create temp report: %w", err)
	}
	name := tmp.Name()

	buf := bufio.NewWriter(tmp)
	err = tmp.Chmod(0o644)
	if err == nil {
		err = Render(buf, h, entries)
	}
	if err == nil {
		err = buf.Flush()
	}
	if err == nil {
		err = tmp.Sync()
	}
	var size int64
	if err == nil {
		var info os.FileInfo
		if info, err = tmp.Stat(); err == nil {
			size = info.Size()
		}
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(name)
		return "", 0, fmt.Errorf("write temp report: %w", err)
	}
	return name, size, nil
}
