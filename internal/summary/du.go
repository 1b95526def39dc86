package summary

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DiskUsageProber shells out to du for directory sizes, matching how the
// hosting images measure site storage. Every probe is bounded by a timeout.
type DiskUsageProber struct {
	timeout time.Duration
}

// NewDiskUsageProber constructs a prober with the given per-probe timeout.
func NewDiskUsageProber(timeout time.Duration) *DiskUsageProber {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiskUsageProber{timeout: timeout}
}

// DirSizeMB returns the size of the directory tree in megabytes.
func (p *DiskUsageProber) DirSizeMB(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "du", "-sm", path).Output()
	if err != nil {
		return 0, fmt.Errorf("du %s: %w", path, err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return 0, fmt.Errorf("du %s: empty output", path)
	}

	sizeMB, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("du %s: parse %q: %w", path, fields[0], err)
	}
	return sizeMB, nil
}
