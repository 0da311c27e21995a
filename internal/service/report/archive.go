package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andres10976/cve-monitor/internal/model"
)

// ErrInvalidName is returned for names that are not report artifacts.
var ErrInvalidName = errors.New("invalid report name")

const (
	dateLayout = "2006-01-02"
	timeLayout = "150405"
	extension  = ".md"
)

var namePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(\d{6})-pull(\d+)\.md$`)

// FileName builds the artifact name for a report created at t with pull number n.
func FileName(t time.Time, n uint64) string {
	t = t.UTC()
	return fmt.Sprintf("%s-%s-pull%d%s", t.Format(dateLayout), t.Format(timeLayout), n, extension)
}

// ParseName splits an artifact name into its date, time and pull number.
func ParseName(name string) (date, clock string, pull uint64, ok bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", 0, false
	}
	n, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return "", "", 0, false
	}
	return m[1], m[2], n, true
}

// Archive reads report artifacts from the report directory.
type Archive struct {
	dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

func (a *Archive) Dir() string { return a.dir }

// List returns the artifacts created on the UTC date of day, sorted by name.
// A missing directory is an empty archive.
func (a *Archive) List(day time.Time) ([]model.Report, error) {
	prefix := day.UTC().Format(dateLayout)
	return a.scan(func(name string) bool { return strings.HasPrefix(name, prefix) })
}

// All returns every artifact in the archive, sorted by name.
func (a *Archive) All() ([]model.Report, error) {
	return a.scan(func(string) bool { return true })
}

// HighestPull returns the largest pull number present on disk, or 0.
func (a *Archive) HighestPull() (uint64, error) {
	reports, err := a.All()
	if err != nil {
		return 0, err
	}
	var highest uint64
	for _, r := range reports {
		highest = max(highest, r.Pull)
	}
	return highest, nil
}

// Read returns the content of the named artifact.
func (a *Archive) Read(name string) ([]byte, error) {
	if _, _, _, ok := ParseName(name); !ok || filepath.Base(name) != name {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return os.ReadFile(filepath.Join(a.dir, name))
}

func (a *Archive) scan(match func(name string) bool) ([]model.Report, error) {
	entries, err := os.ReadDir(a.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report dir: %w", err)
	}

	var reports []model.Report
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), extension) || !match(e.Name()) {
			continue
		}
		r := model.Report{
			Name: e.Name(),
			Path: filepath.Join(a.dir, e.Name()),
		}
		if date, clock, pull, ok := ParseName(e.Name()); ok {
			r.Date, r.Time, r.Pull = date, clock, pull
		}
		if info, err := e.Info(); err == nil {
			r.Size = info.Size()
			r.ModTime = info.ModTime()
		}
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Name < reports[j].Name })
	return reports, nil
}
