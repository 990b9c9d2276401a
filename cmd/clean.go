package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/JChrist/mvn-cleaner/internal/analyze"
	"github.com/JChrist/mvn-cleaner/internal/clean"
	"github.com/JChrist/mvn-cleaner/internal/config"
	"github.com/JChrist/mvn-cleaner/internal/core"
	"github.com/JChrist/mvn-cleaner/internal/ui"
)

func newLogger(w io.Writer, debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: debug,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runClean scans the repository to completion, then deletes everything the
// plan schedules. Only an unreadable root, bad configuration or cancellation
// produce an error; per-entry failures are logged and the run still succeeds.
func runClean(ctx context.Context, opts config.Options, stdout, stderr io.Writer) error {
	opts, err := config.Resolve(opts)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, opts.Debug)
	report := ui.NewReporter(stdout, !opts.NoColor && isTerminal(stdout))

	logger.Debug("scanning", "repository", opts.Repository, "dry", opts.DryRun)
	scan, err := analyze.NewScanner(analyze.WithLogger(logger)).Scan(ctx, opts.Repository)
	if err != nil {
		return err
	}
	logger.Debug("scan complete",
		"entries", scan.Entries,
		"versions", scan.Versions,
		"libraries", scan.Plan.Tracked(),
		"scheduled", scan.Plan.Len(),
		"warnings", len(scan.Warnings))

	if opts.DryRun {
		report.DryRunBanner()
	}
	if scan.Plan.Empty() {
		report.NothingFound()
	}

	execOpts := []clean.Option{clean.WithDryRun(opts.DryRun)}
	if opts.Debug {
		execOpts = append(execOpts, clean.WithEntryHook(func(path string, size int64, isDir bool) {
			logger.Debug("entry", "path", path, "size", size, "dir", isDir)
		}))
	}
	res, execErr := clean.NewExecutor(execOpts...).Execute(ctx, scan.Plan)
	logger.Debug("pass complete",
		"dry", res.DryRun,
		"versions", res.Versions,
		"files", res.Files,
		"dirs", res.Dirs,
		"bytes", res.Bytes,
		"failures", len(res.Failures))

	for _, f := range res.Failures {
		logger.Error("error deleting: "+f.Path, "op", f.Op, "err", f.Err)
	}

	if opts.Verbose() {
		for _, d := range scan.Plan.Decisions() {
			report.Decision(d, res.LibraryBytes(d.Library))
		}
	}
	report.Summary(res)
	report.RepositoryShare(res, scan.TotalBytes)

	if usage, err := core.GetVolumeUsage(ctx, scan.Root); err == nil {
		report.Volume(usage)
	} else {
		logger.Debug("volume usage unavailable", "err", err)
	}

	return execErr
}
