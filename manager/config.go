package manager

import (
	"fmt"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/sirupsen/logrus"
)

// Config configures a Manager.
//
// Zero fields are replaced by the DefaultConfig values in New.
type Config struct {
	// CacheSize is the memory budget shared by all registered caches, in bytes.
	CacheSize int64
	// PageSize converts CacheSize into pages.
	PageSize int

	// DefaultInitialSize is the size, in pages, idle caches shrink back to.
	DefaultInitialSize int
	// ShrinkThreshold is the number of hits per check interval under which
	// a grown cache is considered idle. A negative value disables shrinking.
	ShrinkThreshold int64
	// CheckInterval is the period of the maintenance loop run by Run.
	CheckInterval time.Duration
	// MaxBTreeShare caps the fraction of the budget held by B-tree caches.
	MaxBTreeShare float64

	Logger logrus.FieldLogger
}

// DefaultConfig returns the defaults of a stand-alone database instance.
func DefaultConfig() Config {
	return Config{
		CacheSize:          64 << 20,
		PageSize:           4096,
		DefaultInitialSize: 64,
		ShrinkThreshold:    10_000,
		CheckInterval:      10 * time.Second,
		MaxBTreeShare:      0.6,
		Logger:             logrus.StandardLogger(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.DefaultInitialSize <= 0 {
		c.DefaultInitialSize = d.DefaultInitialSize
	}
	switch {
	case c.ShrinkThreshold == 0:
		c.ShrinkThreshold = d.ShrinkThreshold
	case c.ShrinkThreshold < 0:
		c.ShrinkThreshold = 0
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.MaxBTreeShare <= 0 || c.MaxBTreeShare > 1 {
		c.MaxBTreeShare = d.MaxBTreeShare
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

// ParseSize parses a memory size such as "256m", "512K", "1.5g" or a plain
// byte count. Suffixes are binary multiples.
func ParseSize(s string) (int64, error) {
	n, err := units.RAMInBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: out of range", s)
	}
	return n, nil
}
