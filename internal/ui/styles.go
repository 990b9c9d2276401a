// Package ui renders console output: color tokens, icons and the run report.
package ui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ─── Color tokens ────────────────────────────────────────────────────────────

var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6d28d9", Dark: "#a78bfa"}
	ColorCoral   = lipgloss.AdaptiveColor{Light: "#e11d48", Dark: "#fb7185"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	ColorTextDim = lipgloss.AdaptiveColor{Light: "#4b5563", Dark: "#9ca3af"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#6b7280"}
)

// ─── Icons ───────────────────────────────────────────────────────────────────

const (
	IconCheck   = "✓"
	IconWarning = "⚠"
)

// ─── Styles ──────────────────────────────────────────────────────────────────

func bannerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
}

func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
}

func libraryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorCoral).Bold(true)
}

func keepStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

func deleteStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

func summaryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
}

func dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorTextDim)
}

// ShareBar renders a static bar filled to share (0..1).
func ShareBar(share float64, width int) string {
	bar := progress.New(
		progress.WithGradient(ColorPrimary.Dark, ColorCoral.Dark),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return bar.ViewAs(share)
}
