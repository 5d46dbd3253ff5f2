package update

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// DownloadProgress is a snapshot of one download session. BytesReceived never
// decreases within a session. TotalBytes is only meaningful when TotalKnown.
type DownloadProgress struct {
	BytesReceived uint64
	TotalBytes    uint64
	TotalKnown    bool
}

// Total returns the expected size and whether the server reported one.
func (p DownloadProgress) Total() (uint64, bool) {
	return p.TotalBytes, p.TotalKnown
}

// Percent returns completion in [0, 100]. ok is false when the total is
// unknown or zero; an unknown total is never treated as 0.
func (p DownloadProgress) Percent() (pct float64, ok bool) {
	if !p.TotalKnown || p.TotalBytes == 0 {
		return 0, false
	}
	pct = float64(p.BytesReceived) / float64(p.TotalBytes) * 100
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// String renders the progress for logs, e.g. "1.2 MB / 4.0 MB (30%)".
func (p DownloadProgress) String() string {
	if pct, ok := p.Percent(); ok {
		return fmt.Sprintf("%s / %s (%d%%)",
			humanize.Bytes(p.BytesReceived), humanize.Bytes(p.TotalBytes), int(pct))
	}
	return humanize.Bytes(p.BytesReceived)
}

// progressCounter turns chunk sizes into monotonically growing snapshots.
type progressCounter struct {
	received uint64
	total    uint64
	known    bool
}

func newProgressCounter(start uint64, total int64) *progressCounter {
	c := &progressCounter{received: start}
	if total > 0 {
		c.total = uint64(total)
		c.known = true
	}
	return c
}

func (c *progressCounter) add(n int) DownloadProgress {
	if n > 0 {
		c.received += uint64(n)
	}
	return c.snapshot()
}

func (c *progressCounter) snapshot() DownloadProgress {
	return DownloadProgress{BytesReceived: c.received, TotalBytes: c.total, TotalKnown: c.known}
}
