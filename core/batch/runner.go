package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ankit-chaubey/exif-time-travel/core"
	"github.com/ankit-chaubey/exif-time-travel/core/jpg"
	"github.com/ankit-chaubey/exif-time-travel/core/timeshift"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Runner plans and executes a batch. Files are handled strictly one after
// the other.
type Runner struct {
	cfg      Config
	log      *zap.Logger
	printer  *core.Printer
	replacer *Replacer
}

// NewRunner returns a Runner for cfg. log and printer must not be nil.
func NewRunner(cfg Config, log *zap.Logger, printer *core.Printer) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log,
		printer:  printer,
		replacer: NewReplacer(cfg.Attempts, cfg.Interval, log),
	}
}

// Run plans the batch, prints the plan and, unless this is a dry run,
// executes it.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.cfg.Validate(); err != nil {
		return err
	}
	plan, planErr := r.Plan(ctx)
	if planErr != nil && !r.cfg.KeepGoing {
		return planErr
	}
	if len(plan) == 0 {
		r.printer.PrintInfo("No files to change.")
		return planErr
	}

	r.printer.PrintPlan(plan)
	if r.cfg.DryRun {
		r.printer.PrintInfo(fmt.Sprintf("Dry run: %d files would be changed.", len(plan)))
		return planErr
	}

	done, execErr := r.Execute(ctx, plan)
	result := multierror.Append(planErr, execErr).ErrorOrNil()
	if done > 0 {
		r.printer.PrintSuccess(fmt.Sprintf("%d of %d files changed", done, len(plan)))
	}
	return result
}

// Plan reads every JPEG in the source directory, computes its shifted time
// and target name, and orders the renames so no file is overwritten before
// it has been processed. With KeepGoing, files that cannot be planned are
// left out and their errors returned alongside the plan.
func (r *Runner) Plan(ctx context.Context) ([]core.Rename, error) {
	listing, err := ListJPEGs(r.cfg.Dir)
	if err != nil {
		return nil, err
	}
	for _, name := range listing.Skipped {
		r.log.Info("skipping file", zap.String("file", name))
	}
	r.log.Debug("listed source directory",
		zap.String("dir", r.cfg.Dir),
		zap.Int("jpegs", len(listing.JPEGs)),
		zap.Int("skipped", len(listing.Skipped)))

	var failures *multierror.Error
	fail := func(err error) error {
		if !r.cfg.KeepGoing {
			return err
		}
		r.log.Warn("skipping file", zap.Error(err))
		failures = multierror.Append(failures, err)
		return nil
	}

	var plan []core.Rename
	for _, name := range listing.JPEGs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rename, err := r.planFile(name)
		if err != nil {
			if err := fail(err); err != nil {
				return nil, err
			}
			continue
		}
		plan = append(plan, rename)
	}

	plan, conflicts := checkTargets(plan, func(name string) bool {
		_, err := os.Stat(filepath.Join(r.cfg.Dir, name))
		return err == nil
	})
	for _, err := range conflicts {
		if err := fail(err); err != nil {
			return nil, err
		}
	}
	plan, err = orderRenames(plan)
	if err != nil {
		return nil, err
	}
	return plan, failures.ErrorOrNil()
}

func (r *Runner) planFile(name string) (core.Rename, error) {
	path := filepath.Join(r.cfg.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Rename{}, err
	}
	res, err := jpg.RewriteTimestamp(data, r.cfg.Delta)
	if err != nil {
		return core.Rename{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(res.Dropped) > 0 {
		r.log.Warn("fields of unknown type will be dropped",
			zap.String("file", name),
			zap.Stringers("tags", res.Dropped))
	}
	if old, err := jpg.ReadDateTimeOriginal(data); err != nil {
		r.log.Debug("read-back failed", zap.String("file", name), zap.Error(err))
	} else if !old.Equal(res.Shift.Original) {
		r.log.Warn("read-back disagrees with decoded timestamp",
			zap.String("file", name),
			zap.Time("read_back", old),
			zap.Time("decoded", res.Shift.Original))
	}

	rename := core.Rename{
		From:    name,
		To:      r.cfg.Naming.Name(res.Shift.Shifted),
		OldTime: res.Shift.Original,
		NewTime: res.Shift.Shifted,
	}
	r.log.Debug("planned",
		zap.String("file", rename.From),
		zap.String("target", rename.To),
		zap.Time("old", rename.OldTime),
		zap.Time("new", rename.NewTime))
	return rename, nil
}

// Execute rewrites and renames every file of plan, in order. It returns the
// number of files changed. A core.ErrRetryExhausted failure always stops the
// batch; other failures stop it unless KeepGoing is set.
func (r *Runner) Execute(ctx context.Context, plan []core.Rename) (int, error) {
	var failures *multierror.Error
	done := 0
	for i, rename := range plan {
		if err := ctx.Err(); err != nil {
			return done, multierror.Append(failures, err).ErrorOrNil()
		}
		r.printer.PrintInfo(fmt.Sprintf("[%d/%d] Changing %s with time '%s' to %s with time '%s'",
			i+1, len(plan), rename.From, timeshift.Format(rename.OldTime), rename.To, timeshift.Format(rename.NewTime)))

		err := r.executeFile(ctx, rename)
		if err == nil {
			done++
			continue
		}
		if errors.Is(err, core.ErrRetryExhausted) || !r.cfg.KeepGoing {
			return done, multierror.Append(failures, err).ErrorOrNil()
		}
		r.log.Warn("file not changed", zap.String("file", rename.From), zap.Error(err))
		failures = multierror.Append(failures, err)
	}
	return done, failures.ErrorOrNil()
}

func (r *Runner) executeFile(ctx context.Context, rename core.Rename) error {
	src := filepath.Join(r.cfg.Dir, rename.From)
	dst := filepath.Join(r.cfg.Dir, rename.To)

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	res, err := jpg.RewriteTimestamp(data, r.cfg.Delta)
	if err != nil {
		return fmt.Errorf("%s: %w", rename.From, err)
	}
	if !res.Shift.Shifted.Equal(rename.NewTime) {
		return fmt.Errorf("%w: %s changed since it was planned", core.ErrVerifyFailed, rename.From)
	}
	got, err := jpg.ReadDateTimeOriginal(res.Data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrVerifyFailed, rename.From, err)
	}
	if !got.Equal(rename.NewTime) {
		return fmt.Errorf("%w: %s reads back as %s, want %s",
			core.ErrVerifyFailed, rename.From, timeshift.Format(got), timeshift.Format(rename.NewTime))
	}

	if err := r.replacer.Replace(ctx, src, dst, res.Data); err != nil {
		return err
	}
	r.log.Info("changed",
		zap.String("file", rename.From),
		zap.String("target", rename.To),
		zap.Time("old", rename.OldTime),
		zap.Time("new", rename.NewTime))
	return nil
}
