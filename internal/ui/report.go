package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JChrist/mvn-cleaner/internal/clean"
	"github.com/JChrist/mvn-cleaner/internal/core"
	"github.com/JChrist/mvn-cleaner/internal/retention"
	"github.com/JChrist/mvn-cleaner/internal/version"
)

const shareBarWidth = 30

// Reporter writes the human-readable run report.
type Reporter struct {
	out    io.Writer
	styled bool
}

// NewReporter writes to out. When styled is false no escape sequences are
// emitted.
func NewReporter(out io.Writer, styled bool) *Reporter {
	return &Reporter{out: out, styled: styled}
}

func (r *Reporter) render(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

func (r *Reporter) println(line string) {
	fmt.Fprintln(r.out, line)
}

// DryRunBanner announces that nothing will be deleted.
func (r *Reporter) DryRunBanner() {
	line := "Running in DRY RUN mode"
	if r.styled {
		line = IconWarning + " " + line
	}
	r.println(r.render(bannerStyle(), line))
}

// NothingFound reports an empty plan.
func (r *Reporter) NothingFound() {
	r.println(r.render(mutedStyle(), "Nothing found to delete"))
}

// Decision prints the keep/delete outcome of one library and the bytes
// reclaimed for it.
func (r *Reporter) Decision(d retention.Decision, reclaimed int64) {
	r.println(fmt.Sprintf("for lib: %s keeping version: %s and deleting: %s %s",
		r.render(libraryStyle(), d.Library),
		r.render(keepStyle(), d.Keep.String()),
		r.render(deleteStyle(), formatList(d.Delete)),
		r.render(dimStyle(), "("+core.FormatSize(reclaimed)+")"),
	))
}

func formatList(vs []version.Version) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Summary prints the byte totals of the deletion pass.
func (r *Reporter) Summary(res *clean.Result) {
	verb := "Removed"
	if res.DryRun {
		verb = "Would remove"
	}
	line := fmt.Sprintf("%s %dB / %dKB / %dMB", verb, res.Bytes, res.KB(), res.MB())
	if r.styled {
		line = IconCheck + " " + line
	}
	r.println(r.render(summaryStyle(), line))
}

// RepositoryShare prints how much of the repository the pass reclaims.
// repositoryBytes counts file contents only, so it is compared against the
// file part of the result.
func (r *Reporter) RepositoryShare(res *clean.Result, repositoryBytes int64) {
	reclaimed := res.FileBytes()
	verb := "Reclaimed"
	if res.DryRun {
		verb = "Would reclaim"
	}
	line := fmt.Sprintf("%s %s of repository (%s)",
		verb, core.FormatShare(reclaimed, repositoryBytes), core.FormatSize(repositoryBytes))
	if r.styled {
		line = ShareBar(core.Share(reclaimed, repositoryBytes), shareBarWidth) + "  " + dimStyle().Render(line)
	}
	r.println(line)
}

// Volume prints free space on the volume holding the repository.
func (r *Reporter) Volume(u *core.VolumeUsage) {
	r.println(r.render(dimStyle(), fmt.Sprintf("Volume free: %s of %s",
		core.FormatSize(int64(u.Free)), core.FormatSize(int64(u.Total)))))
}
