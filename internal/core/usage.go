// Package core holds small host helpers shared by the commands: size
// formatting and volume usage.
package core

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// VolumeUsage describes the filesystem hosting a path.
type VolumeUsage struct {
	Path        string
	Fstype      string
	Total       uint64
	Free        uint64
	Used        uint64
	UsedPercent float64
}

// GetVolumeUsage returns usage of the volume that holds path.
func GetVolumeUsage(ctx context.Context, path string) (*VolumeUsage, error) {
	st, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("volume usage for %s: %w", path, err)
	}
	return &VolumeUsage{
		Path:        st.Path,
		Fstype:      st.Fstype,
		Total:       st.Total,
		Free:        st.Free,
		Used:        st.Used,
		UsedPercent: st.UsedPercent,
	}, nil
}
