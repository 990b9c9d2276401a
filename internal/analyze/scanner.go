// Package analyze walks a local repository tree and classifies version
// directories into a retention plan.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/JChrist/mvn-cleaner/internal/retention"
	"github.com/JChrist/mvn-cleaner/internal/version"
)

// maxWarnings caps the number of traversal warnings kept per scan.
const maxWarnings = 500

var (
	// ErrRootUnavailable is matched by every RootError.
	ErrRootUnavailable = errors.New("repository root unavailable")

	// ErrNotDirectory indicates the root exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// RootError reports that the repository root itself could not be read.
// An unreadable root aborts the run: an empty plan would otherwise be
// indistinguishable from a clean repository.
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("cannot scan repository %s: %v", e.Root, e.Err)
}

func (e *RootError) Unwrap() []error {
	return []error{ErrRootUnavailable, e.Err}
}

// Scan is the completed result of walking a repository.
type Scan struct {
	Root    string
	Plan    *retention.Plan
	Entries int64
	// Versions counts every version segment fed to the tracker.
	Versions int
	// TotalBytes sums the sizes of regular files only.
	TotalBytes int64
	Warnings   []string
}

// Scanner performs a sequential recursive scan, following symbolic links.
type Scanner struct {
	logger *log.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger routes traversal warnings to l at debug level.
func WithLogger(l *log.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// NewScanner creates a scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// walkState holds the per-scan state so a Scanner can be reused.
type walkState struct {
	logger     *log.Logger
	tracker    *retention.Tracker
	active     map[string]bool // resolved directories on the current descent
	entries    int64
	totalBytes int64
	warnings   []string
}

// Scan walks rootPath to completion and returns the retention plan. Only a
// failure to open the root is returned as an error; everything below the
// root is best effort.
func (s *Scanner) Scan(ctx context.Context, rootPath string) (*Scan, error) {
	root, err := filepath.Abs(filepath.Clean(rootPath))
	if err != nil {
		return nil, &RootError{Root: rootPath, Err: err}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, &RootError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &RootError{Root: root, Err: ErrNotDirectory}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &RootError{Root: root, Err: err}
	}

	st := &walkState{
		logger:  s.logger,
		tracker: retention.NewTracker(),
		active:  make(map[string]bool),
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		st.active[real] = true
	}

	if err := st.visitEntries(ctx, root, entries); err != nil {
		return nil, err
	}

	return &Scan{
		Root:       root,
		Plan:       st.tracker.Plan(),
		Entries:    st.entries,
		Versions:   st.tracker.Observed(),
		TotalBytes: st.totalBytes,
		Warnings:   st.warnings,
	}, nil
}

func (st *walkState) addWarning(msg string) {
	if st.logger != nil {
		st.logger.Debug(msg)
	}
	if len(st.warnings) < maxWarnings {
		st.warnings = append(st.warnings, msg)
	}
}

func (st *walkState) visitEntries(ctx context.Context, dir string, entries []os.DirEntry) error {
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, e.Name())
		st.entries++
		st.classify(path)

		// Stat follows links, so a linked directory is descended into.
		info, err := os.Stat(path)
		if err != nil {
			st.addWarning("cannot stat " + path + ": " + err.Error())
			continue
		}
		if !info.IsDir() {
			st.totalBytes += info.Size()
			continue
		}

		if err := st.descend(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (st *walkState) descend(ctx context.Context, dir string) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		st.addWarning("cannot resolve " + dir + ": " + err.Error())
		return nil
	}
	if st.active[real] {
		st.addWarning("skipping symlink cycle: " + dir)
		return nil
	}
	st.active[real] = true
	defer delete(st.active, real)

	entries, err := os.ReadDir(dir)
	if err != nil {
		st.addWarning("cannot read " + dir + ": " + err.Error())
		return nil
	}
	return st.visitEntries(ctx, dir, entries)
}

// classify feeds path to the tracker when its final segment is a version.
func (st *walkState) classify(path string) {
	v, err := version.Parse(filepath.Base(path))
	if err != nil {
		return
	}
	st.tracker.Observe(filepath.Dir(path), v)
}
