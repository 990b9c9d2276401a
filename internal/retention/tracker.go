// Package retention decides, per library, which version directory is kept
// and which are scheduled for removal.
package retention

import (
	"slices"

	"github.com/JChrist/mvn-cleaner/internal/version"
)

// Tracker accumulates observed (library, version) pairs during a scan.
// It keeps the running maximum per library and demotes a superseded maximum
// into the deletion list, so the outcome does not depend on arrival order.
type Tracker struct {
	latest    map[string]version.Version
	deletions map[string][]version.Version
	observed  int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		latest:    make(map[string]version.Version),
		deletions: make(map[string][]version.Version),
	}
}

// Observe records one version directory of lib. There is no deduplication:
// every call is accounted for exactly once, either as the current maximum or
// in the deletion list.
func (t *Tracker) Observe(lib string, v version.Version) {
	t.observed++

	current, ok := t.latest[lib]
	if !ok {
		t.latest[lib] = v
		return
	}

	if v.Compare(current) > 0 {
		t.latest[lib] = v
		t.deletions[lib] = append(t.deletions[lib], current)
		return
	}
	t.deletions[lib] = append(t.deletions[lib], v)
}

// Observed returns the number of Observe calls so far.
func (t *Tracker) Observed() int {
	return t.observed
}

// Plan snapshots the tracker. The returned plan is unaffected by later
// Observe calls.
func (t *Tracker) Plan() *Plan {
	p := &Plan{
		latest:    make(map[string]version.Version, len(t.latest)),
		deletions: make(map[string][]version.Version, len(t.deletions)),
		libraries: make([]string, 0, len(t.deletions)),
	}
	for lib, v := range t.latest {
		p.latest[lib] = v
	}
	for lib, vs := range t.deletions {
		p.deletions[lib] = slices.Clone(vs)
		p.libraries = append(p.libraries, lib)
		p.scheduled += len(vs)
	}
	slices.Sort(p.libraries)
	return p
}

// Decision is the outcome for a single library.
type Decision struct {
	Library string
	Keep    version.Version
	Delete  []version.Version
}

// Plan is the immutable retention decision produced by a completed scan.
type Plan struct {
	latest    map[string]version.Version
	deletions map[string][]version.Version
	libraries []string
	scheduled int
}

// Empty reports whether nothing is scheduled for deletion.
func (p *Plan) Empty() bool {
	return p.scheduled == 0
}

// Len returns the number of version directories scheduled for deletion.
func (p *Plan) Len() int {
	return p.scheduled
}

// Tracked returns the number of libraries that had at least one version.
func (p *Plan) Tracked() int {
	return len(p.latest)
}

// Libraries returns, sorted, the libraries with at least one deletion.
func (p *Plan) Libraries() []string {
	return slices.Clone(p.libraries)
}

// Kept returns the version retained for lib.
func (p *Plan) Kept(lib string) (version.Version, bool) {
	v, ok := p.latest[lib]
	return v, ok
}

// Deletions returns the versions of lib scheduled for removal, in the order
// they were demoted.
func (p *Plan) Deletions(lib string) []version.Version {
	return slices.Clone(p.deletions[lib])
}

// Decisions returns one entry per library with deletions, sorted by library.
func (p *Plan) Decisions() []Decision {
	out := make([]Decision, 0, len(p.libraries))
	for _, lib := range p.libraries {
		out = append(out, Decision{
			Library: lib,
			Keep:    p.latest[lib],
			Delete:  slices.Clone(p.deletions[lib]),
		})
	}
	return out
}
