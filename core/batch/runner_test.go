package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ankit-chaubey/exif-time-travel/core"
	"github.com/ankit-chaubey/exif-time-travel/core/jpg"
	"github.com/ankit-chaubey/exif-time-travel/core/timeshift"
	"github.com/ankit-chaubey/exif-time-travel/internal/testjpeg"
	"go.uber.org/zap/zaptest"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := timeshift.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func photo(dto string) []byte {
	o := testjpeg.Default()
	o.DateTime = dto
	o.DateTimeOriginal = dto
	o.DateTimeDigitized = dto
	o.ThumbDateTime = dto
	return testjpeg.JPEG(o)
}

func newTestRunner(t *testing.T, dir string, cfg Config) (*Runner, *bytes.Buffer) {
	cfg.Dir = dir
	cfg.Interval = time.Millisecond
	out := &bytes.Buffer{}
	return NewRunner(cfg, zaptest.NewLogger(t), &core.Printer{Writer: out}), out
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// capturedAt reads the DateTimeOriginal of a file with goexif.
func capturedAt(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ts, err := jpg.ReadDateTimeOriginal(data)
	if err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	return timeshift.Format(ts)
}

func TestRunShiftsAndRenames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "img2.jpg", photo("2020:06:01 14:30:00"))
	writeFile(t, dir, "img10.jpg", photo("2020:06:01 15:00:00"))
	writeFile(t, dir, "notes.txt", []byte("not a photo"))

	cfg := DefaultConfig()
	cfg.Delta = timeshift.Delta{Hours: 1}
	r, out := newTestRunner(t, dir, cfg)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"20200601_153000.jpg", "20200601_160000.jpg", "notes.txt"}
	if got := listDir(t, dir); !equalNames(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if ts := capturedAt(t, filepath.Join(dir, "20200601_153000.jpg")); ts != "2020:06:01 15:30:00" {
		t.Errorf("20200601_153000.jpg captured at %s", ts)
	}
	if ts := capturedAt(t, filepath.Join(dir, "20200601_160000.jpg")); ts != "2020:06:01 16:00:00" {
		t.Errorf("20200601_160000.jpg captured at %s", ts)
	}

	for _, line := range []string{
		"[1/2] Changing img2.jpg with time '2020:06:01 14:30:00' to 20200601_153000.jpg with time '2020:06:01 15:30:00'",
		"[2/2] Changing img10.jpg with time '2020:06:01 15:00:00' to 20200601_160000.jpg with time '2020:06:01 16:00:00'",
		"2 of 2 files changed",
	} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output lacks %q:\n%s", line, out.String())
		}
	}
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", photo("2020:06:01 14:30:00"))
	before, _ := os.ReadFile(filepath.Join(dir, "a.jpg"))

	cfg := DefaultConfig()
	cfg.Delta = timeshift.Delta{Minutes: -90}
	cfg.DryRun = true
	r, out := newTestRunner(t, dir, cfg)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := listDir(t, dir); !equalNames(got, []string{"a.jpg"}) {
		t.Errorf("dry run changed the directory: %v", got)
	}
	after, _ := os.ReadFile(filepath.Join(dir, "a.jpg"))
	if !bytes.Equal(before, after) {
		t.Errorf("dry run modified a.jpg")
	}
	if !strings.Contains(out.String(), "20200601_130000.jpg") || !strings.Contains(out.String(), "Dry run: 1 files would be changed.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunOrdersChainedRenames(t *testing.T) {
	dir := t.TempDir()
	// a.jpg moves onto the name currently held by the second file.
	writeFile(t, dir, "a.jpg", photo("2020:06:01 14:30:00"))
	writeFile(t, dir, "20200601_153000.jpg", photo("2020:06:01 15:30:00"))

	cfg := DefaultConfig()
	cfg.Delta = timeshift.Delta{Hours: 1}
	r, _ := newTestRunner(t, dir, cfg)
	plan, err := r.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if want := []string{"20200601_153000.jpg>20200601_163000.jpg", "a.jpg>20200601_153000.jpg"}; !equalNames(names(plan), want) {
		t.Fatalf("expected plan %v, got %v", want, names(plan))
	}
	if _, err := r.Execute(context.Background(), plan); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got := listDir(t, dir); !equalNames(got, []string{"20200601_153000.jpg", "20200601_163000.jpg"}) {
		t.Fatalf("unexpected directory %v", got)
	}
	if ts := capturedAt(t, filepath.Join(dir, "20200601_153000.jpg")); ts != "2020:06:01 15:30:00" {
		t.Errorf("20200601_153000.jpg captured at %s", ts)
	}
	if ts := capturedAt(t, filepath.Join(dir, "20200601_163000.jpg")); ts != "2020:06:01 16:30:00" {
		t.Errorf("20200601_163000.jpg captured at %s", ts)
	}
}

func TestRunStopsOnBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", photo("2020:06:01 14:30:00"))
	writeFile(t, dir, "b.jpg", testjpeg.Plain())

	cfg := DefaultConfig()
	cfg.Delta = timeshift.Delta{Hours: 1}
	r, _ := newTestRunner(t, dir, cfg)
	err := r.Run(context.Background())
	if !errors.Is(err, core.ErrNoExifMetadata) {
		t.Fatalf("expected ErrNoExifMetadata, got %v", err)
	}
	if got := listDir(t, dir); !equalNames(got, []string{"a.jpg", "b.jpg"}) {
		t.Errorf("files changed although the batch stopped: %v", got)
	}
}

func TestRunKeepGoing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", photo("2020:06:01 14:30:00"))
	writeFile(t, dir, "b.jpg", testjpeg.Plain())
	writeFile(t, dir, "c.jpg", photo("2020:06:01 14:30:00"))

	cfg := DefaultConfig()
	cfg.Delta = timeshift.Delta{Hours: 1}
	cfg.KeepGoing = true
	r, out := newTestRunner(t, dir, cfg)
	err := r.Run(context.Background())
	if !errors.Is(err, core.ErrNoExifMetadata) {
		t.Errorf("expected ErrNoExifMetadata among the errors, got %v", err)
	}
	if !errors.Is(err, core.ErrTargetConflict) {
		t.Errorf("expected ErrTargetConflict among the errors, got %v", err)
	}

	want := []string{"20200601_153000.jpg", "b.jpg", "c.jpg"}
	if got := listDir(t, dir); !equalNames(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !strings.Contains(out.String(), "1 of 1 files changed") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunTargetExists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", photo("2020:06:01 14:30:00"))
	if err := os.Mkdir(filepath.Join(dir, "20200601_153000.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Delta = timeshift.Delta{Hours: 1}
	r, _ := newTestRunner(t, dir, cfg)
	if err := r.Run(context.Background()); !errors.Is(err, core.ErrTargetConflict) {
		t.Fatalf("expected ErrTargetConflict, got %v", err)
	}
	if !exists(t, filepath.Join(dir, "a.jpg")) {
		t.Errorf("a.jpg moved despite the conflict")
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	r, out := newTestRunner(t, t.TempDir(), DefaultConfig())
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "No files to change.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestExecuteDetectsChangedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", photo("2020:06:01 14:30:00"))

	cfg := DefaultConfig()
	cfg.Delta = timeshift.Delta{Hours: 1}
	r, _ := newTestRunner(t, dir, cfg)
	plan, err := r.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	writeFile(t, dir, "a.jpg", photo("2021:01:01 00:00:00"))

	if _, err := r.Execute(context.Background(), plan); !errors.Is(err, core.ErrVerifyFailed) {
		t.Fatalf("expected ErrVerifyFailed, got %v", err)
	}
	if got := listDir(t, dir); !equalNames(got, []string{"a.jpg"}) {
		t.Errorf("unexpected directory %v", got)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", photo("2020:06:01 14:30:00"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _ := newTestRunner(t, dir, DefaultConfig())
	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
