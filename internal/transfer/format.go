package transfer

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// NewRunID mints the identifier stamped on a run's summary and log lines.
func NewRunID() string {
	return uuid.NewString()
}

// FormatBytes renders a byte count for humans.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatRate renders a bytes-per-second throughput.
func FormatRate(bps float64) string {
	if bps < 0 {
		bps = 0
	}
	return humanize.IBytes(uint64(bps)) + "/s"
}

// FormatDuration renders elapsed time compactly: "42.3s", "3m 12s", "1h 05m".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
