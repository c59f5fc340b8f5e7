package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ankit-chaubey/exif-time-travel/core"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// tempSuffix marks the rewritten file until the original is gone.
const tempSuffix = ".temp"

var errStillPresent = errors.New("file still present")

// fileOps is the part of the filesystem the Replacer touches.
type fileOps interface {
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (fs.FileInfo, error)
}

type osFiles struct{}

func (osFiles) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (osFiles) Remove(name string) error { return os.Remove(name) }
func (osFiles) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (osFiles) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// Replacer installs rewritten bytes under a new name and removes the
// original. Deleting and renaming are retried with a constant backoff since
// some filesystems (network shares, synced folders) apply them late.
type Replacer struct {
	Attempts int
	Interval time.Duration
	Log      *zap.Logger

	files fileOps
}

// NewReplacer returns a Replacer working on the local filesystem.
func NewReplacer(attempts int, interval time.Duration, log *zap.Logger) *Replacer {
	return &Replacer{Attempts: attempts, Interval: interval, Log: log, files: osFiles{}}
}

// Replace writes data to dst via a temporary file, deletes src and moves the
// temporary file into place. src and dst may be the same path. When the
// retries run out the error wraps core.ErrRetryExhausted.
func (r *Replacer) Replace(ctx context.Context, src, dst string, data []byte) error {
	files := r.ops()
	perm := fs.FileMode(0o644)
	if info, err := files.Stat(src); err == nil {
		perm = info.Mode().Perm()
	}

	tmp := dst + tempSuffix
	if err := files.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}

	err := r.retry(ctx, "delete", src, func() error {
		if err := files.Remove(src); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if _, err := files.Stat(src); err == nil {
			return errStillPresent
		}
		return nil
	})
	if err != nil {
		if rmErr := files.Remove(tmp); rmErr != nil {
			r.logger().Warn("could not remove temporary file", zap.String("file", tmp), zap.Error(rmErr))
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("deleting %s: %w", src, ctxErr)
		}
		return fmt.Errorf("%w: cannot delete %s: %v", core.ErrRetryExhausted, src, err)
	}

	err = r.retry(ctx, "rename", tmp, func() error {
		return files.Rename(tmp, dst)
	})
	if err != nil {
		// src is gone; the rewritten image survives under the temporary name.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("renaming %s to %s: %w", tmp, dst, ctxErr)
		}
		return fmt.Errorf("%w: cannot rename %s to %s: %v", core.ErrRetryExhausted, tmp, dst, err)
	}
	return nil
}

func (r *Replacer) retry(ctx context.Context, op, file string, fn func() error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.Interval), uint64(attempts-1)),
		ctx)
	return backoff.RetryNotify(fn, b, func(err error, wait time.Duration) {
		r.logger().Debug("retrying",
			zap.String("op", op),
			zap.String("file", file),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

func (r *Replacer) ops() fileOps {
	if r.files == nil {
		return osFiles{}
	}
	return r.files
}

func (r *Replacer) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
