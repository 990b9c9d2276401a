// Package clean removes the version directories scheduled by a retention
// plan and accounts for the reclaimed bytes.
package clean

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/JChrist/mvn-cleaner/internal/retention"
)

// ErrOutsideLibrary is returned for a target that does not resolve strictly
// below its library directory.
var ErrOutsideLibrary = errors.New("target is outside its library directory")

// Operations recorded on a Failure.
const (
	OpWalk    = "walk"
	OpStat    = "stat"
	OpDelete  = "delete"
	OpResolve = "resolve"
)

// Failure is a single entry that could not be measured or removed.
type Failure struct {
	Path string
	Op   string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of a deletion pass.
type Result struct {
	DryRun bool

	// Bytes is the size of every visited entry, directories included.
	Bytes int64
	// DirBytes is the part of Bytes reported for directories themselves.
	DirBytes int64

	Files    int
	Dirs     int
	Versions int

	Failures []Failure

	perLibrary map[string]int64
}

// KB returns Bytes in whole kibibytes.
func (r *Result) KB() int64 {
	return r.Bytes / 1024
}

// MB returns Bytes in whole mebibytes.
func (r *Result) MB() int64 {
	return r.Bytes / (1024 * 1024)
}

// LibraryBytes returns the bytes accounted for lib.
func (r *Result) LibraryBytes(lib string) int64 {
	return r.perLibrary[lib]
}

func (r *Result) fail(path, op string, err error) {
	r.Failures = append(r.Failures, Failure{Path: path, Op: op, Err: err})
}

// FileBytes returns Bytes without the sizes reported for directories.
func (r *Result) FileBytes() int64 {
	return r.Bytes - r.DirBytes
}

// EntryFunc is called for every measured entry with its size.
type EntryFunc func(path string, size int64, isDir bool)

// Executor performs the deletion phase.
type Executor struct {
	dryRun  bool
	onEntry EntryFunc

	// Overridable for tests.
	remove func(string) error
	lstat  func(string) (fs.FileInfo, error)
}

// Option configures an Executor.
type Option func(*Executor)

// WithDryRun measures without removing anything.
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) {
		e.dryRun = dryRun
	}
}

// WithEntryHook registers fn for every measured entry.
func WithEntryHook(fn EntryFunc) Option {
	return func(e *Executor) {
		e.onEntry = fn
	}
}

// NewExecutor creates an executor. Deletion is real unless WithDryRun(true)
// is passed.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		remove: os.Remove,
		lstat:  os.Lstat,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute removes, or in dry-run only measures, every version directory in
// plan. Per-entry failures are collected in the result and never stop the
// pass. The returned error is non-nil only when ctx is cancelled, in which
// case the result covers what was processed so far.
func (e *Executor) Execute(ctx context.Context, plan *retention.Plan) (*Result, error) {
	res := &Result{
		DryRun:     e.dryRun,
		perLibrary: make(map[string]int64),
	}

	for _, lib := range plan.Libraries() {
		for _, v := range plan.Deletions(lib) {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			target := filepath.Join(lib, v.String())
			if !within(lib, target) {
				res.fail(target, OpResolve, ErrOutsideLibrary)
				continue
			}
			res.Versions++
			e.removeTree(res, lib, target)
		}
	}
	return res, nil
}

// within reports whether target is strictly below lib.
func within(lib, target string) bool {
	rel, err := filepath.Rel(lib, target)
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (e *Executor) removeTree(res *Result, lib, target string) {
	paths := e.collect(res, target)

	// Reverse lexical order puts every path after all of its descendants.
	slices.Sort(paths)
	slices.Reverse(paths)

	// Everything is measured before anything is removed: some filesystems
	// shrink a directory's reported size as its entries go.
	measured := paths[:0]
	for _, p := range paths {
		info, err := e.lstat(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				res.fail(p, OpStat, err)
			}
			continue
		}

		size := info.Size()
		res.Bytes += size
		res.perLibrary[lib] += size
		if info.IsDir() {
			res.Dirs++
			res.DirBytes += size
		} else {
			res.Files++
		}
		if e.onEntry != nil {
			e.onEntry(p, size, info.IsDir())
		}
		measured = append(measured, p)
	}

	if e.dryRun {
		return
	}
	for _, p := range measured {
		if err := e.remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			res.fail(p, OpDelete, err)
		}
	}
}

// collect lists target and everything below it without following links.
// A target that is already gone yields nothing.
func (e *Executor) collect(res *Result, target string) []string {
	var paths []string
	_ = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == target && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			// A directory that cannot be listed was already collected
			// on its first visit.
			res.fail(path, OpWalk, err)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths
}
