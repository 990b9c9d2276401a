package core

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatSize renders a byte count in IEC units (e.g. "1.5 MiB").
// Negative sizes render as zero.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatShare renders part as a percentage of whole with one decimal.
func FormatShare(part, whole int64) string {
	return fmt.Sprintf("%.1f%%", Share(part, whole)*100)
}

// Share returns part/whole clamped to [0, 1].
func Share(part, whole int64) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	if part >= whole {
		return 1
	}
	return float64(part) / float64(whole)
}
