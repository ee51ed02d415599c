// Package counter provides event counters that sit alone on a cache line.
package counter

import (
	"sync/atomic"
	"unsafe"
)

// lineSize is the cache line size assumed for padding; 64 bytes on the
// common amd64 and arm64 parts.
const lineSize = 64

// Pad separates groups of hot fields into distinct cache lines.
type Pad struct{ _ [lineSize]byte }

// Counter is a monotonically increasing event count. The owning cache bumps
// it under its lock while the manager and metric scrapers read it without
// one, so each counter gets a line of its own.
type Counter struct {
	n atomic.Int64
	_ [lineSize - 8]byte
}

var _ [lineSize - int(unsafe.Sizeof(Counter{}))]byte // exactly one line

// Inc adds one.
func (c *Counter) Inc() { c.n.Add(1) }

// Load returns the current count.
func (c *Counter) Load() int64 { return c.n.Load() }
