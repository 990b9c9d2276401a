// Package config resolves the repository location and run options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoHome indicates neither $HOME nor the platform home directory is known.
var ErrNoHome = errors.New("cannot determine home directory")

// Options are the resolved settings of one run.
type Options struct {
	// Repository is the root of the local repository to clean.
	Repository string

	// DryRun reports without deleting.
	DryRun bool

	// Print forces the per-library decision lines.
	Print bool

	// Debug enables detailed operation logs.
	Debug bool

	// NoColor disables styled output.
	NoColor bool
}

// Verbose reports whether per-library decisions are printed.
func (o Options) Verbose() bool {
	return o.DryRun || o.Print
}

// homeDir returns $HOME, falling back to the platform home directory.
func homeDir() (string, error) {
	if h := os.Getenv("HOME"); h != "" {
		return h, nil
	}
	h, err := os.UserHomeDir()
	if err != nil || h == "" {
		return "", ErrNoHome
	}
	return h, nil
}

// DefaultRepository returns $HOME/.m2/repository.
func DefaultRepository() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".m2", "repository"), nil
}

// expandHome replaces a leading "~" with the home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// Resolve fills in the default repository and makes it absolute.
func Resolve(o Options) (Options, error) {
	repo := o.Repository
	if repo == "" {
		def, err := DefaultRepository()
		if err != nil {
			return o, fmt.Errorf("locate repository: %w", err)
		}
		repo = def
	}

	repo, err := expandHome(repo)
	if err != nil {
		return o, fmt.Errorf("locate repository: %w", err)
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return o, fmt.Errorf("locate repository %s: %w", repo, err)
	}
	o.Repository = abs
	return o, nil
}
