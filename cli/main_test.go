package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/ankit-chaubey/exif-time-travel/internal/testjpeg"
)

func TestRunShiftArguments(t *testing.T) {
	if err := runShift([]string{"a", "b"}); err == nil {
		t.Errorf("two directories accepted")
	}
	if err := runShift([]string{"-hours", "x"}); err == nil {
		t.Errorf("non-numeric -hours accepted")
	}
	if err := runShift([]string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
	if err := runShift([]string{"-attempts", "0", t.TempDir()}); err == nil {
		t.Errorf("zero attempts accepted")
	}
}

func TestRunShiftDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path, testjpeg.JPEG(testjpeg.Default()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runShift([]string{"-hours", "2", "-minutes", "-15", "-dry-run", dir}); err != nil {
		t.Fatalf("runShift failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("dry run touched a.jpg: %v", err)
	}
}

func TestRunView(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path, testjpeg.JPEG(testjpeg.Default()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runView([]string{"-json", path}); err != nil {
		t.Errorf("runView failed: %v", err)
	}
	if err := runView([]string{filepath.Join(dir, "a.png")}); err == nil {
		t.Errorf("non-JPEG extension accepted")
	}
	if err := runView(nil); err == nil {
		t.Errorf("missing file argument accepted")
	}
}
