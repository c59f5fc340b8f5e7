package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ankit-chaubey/exif-time-travel/core"
	"github.com/ankit-chaubey/exif-time-travel/core/batch"
	"github.com/ankit-chaubey/exif-time-travel/core/jpg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `Usage:
  timetravel shift [flags] [dir]    shift capture times and rename JPEG files
  timetravel view [-json] <image.jpg>  show EXIF metadata

Run "timetravel <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "shift":
		err = runShift(os.Args[2:])
	case "view":
		err = runView(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
		fmt.Fprint(os.Stderr, usage)
	}
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		core.PrintError(err.Error())
		os.Exit(1)
	}
}

func runShift(args []string) error {
	cfg := batch.DefaultConfig()
	fs := flag.NewFlagSet("shift", flag.ContinueOnError)
	fs.IntVar(&cfg.Delta.Hours, "hours", 0, "hours to add to every capture time (may be negative)")
	fs.IntVar(&cfg.Delta.Minutes, "minutes", 0, "minutes to add to every capture time (may be negative)")
	fs.StringVar(&cfg.Naming.Layout, "layout", batch.DefaultLayout, "Go time layout for new file names")
	fs.StringVar(&cfg.Naming.Ext, "ext", batch.DefaultExt, "extension appended to new file names")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "print the plan without changing any file")
	fs.BoolVar(&cfg.KeepGoing, "keep-going", false, "skip files that fail instead of stopping")
	fs.IntVar(&cfg.Attempts, "attempts", batch.DefaultAttempts, "delete/rename attempts before giving up")
	fs.DurationVar(&cfg.Interval, "interval", batch.DefaultInterval, "wait between delete/rename attempts")
	jsonOut := fs.Bool("json", false, "print the plan as JSON")
	verbose := fs.Bool("verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Dir = fs.Arg(0)
	default:
		return fmt.Errorf("expected at most one directory, got %d arguments", fs.NArg())
	}

	log, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Debug("starting batch",
		zap.String("dir", cfg.Dir),
		zap.Stringer("delta", cfg.Delta),
		zap.Bool("dry_run", cfg.DryRun))
	return batch.NewRunner(cfg, log, core.NewPrinter(*jsonOut, *verbose)).Run(ctx)
}

func runView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print fields as JSON")
	verbose := fs.Bool("verbose", false, "show field types")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("view needs exactly one file")
	}
	file := fs.Arg(0)

	ext := strings.ToLower(filepath.Ext(file))
	if core.FormatForExt(file) != core.FmtJPEG {
		return fmt.Errorf("only JPG/JPEG files supported, got %q", ext)
	}
	m, err := jpg.View(file)
	if err != nil {
		return err
	}
	core.NewPrinter(*jsonOut, *verbose).PrintMetadata(m)
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
