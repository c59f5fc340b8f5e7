// Package batch applies a timestamp shift to every JPEG in a directory and
// renames each file after its new capture time.
package batch

import (
	"fmt"
	"time"

	"github.com/ankit-chaubey/exif-time-travel/core/timeshift"
)

// Defaults used by the shift command.
const (
	DefaultLayout   = "20060102_150405"
	DefaultExt      = ".jpg"
	DefaultAttempts = 50
	DefaultInterval = 100 * time.Millisecond
)

// Config controls a batch run.
type Config struct {
	// Dir is the directory whose JPEG files are processed.
	Dir string
	// Delta is added to every file's capture time.
	Delta timeshift.Delta
	// Naming derives the new file name from the shifted time.
	Naming NamePolicy
	// DryRun prints the plan without writing anything.
	DryRun bool
	// KeepGoing skips files that fail instead of stopping the batch.
	KeepGoing bool
	// Attempts and Interval bound the delete and rename retries.
	Attempts int
	Interval time.Duration
}

// DefaultConfig returns a Config for the current directory with no shift.
func DefaultConfig() Config {
	return Config{
		Dir:      ".",
		Naming:   NamePolicy{Layout: DefaultLayout, Ext: DefaultExt},
		Attempts: DefaultAttempts,
		Interval: DefaultInterval,
	}
}

// Validate checks that the configuration can be run.
func (c Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("no source directory")
	}
	if err := c.Naming.Validate(); err != nil {
		return err
	}
	if c.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", c.Attempts)
	}
	if c.Interval < 0 {
		return fmt.Errorf("negative retry interval %s", c.Interval)
	}
	return nil
}
