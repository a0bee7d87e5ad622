// Package decoder implements protocol decoding.
package decoder

import (
	"time"

	"firestige.xyz/seqgap/internal/core"
)

// WarnRateLimiter bounds how often decode problems from one source address
// are logged. A corrupt capture can produce the same warning for every packet;
// counts are kept regardless, only the log lines are limited.
// Windows are measured in capture time, not wall time.
type WarnRateLimiter struct {
	current      map[core.IPv4Addr]int64 // source IP -> warnings in current window
	windowStart  time.Time
	windowSize   time.Duration
	maxPerWindow int64

	suppressed int64
}

// WarnRateLimiterConfig configures per-source warning limits.
type WarnRateLimiterConfig struct {
	MaxPerSource int           // Max warnings per source per window (0 = no limit)
	Window       time.Duration // Window size (default 10s)
}

// NewWarnRateLimiter creates a rate limiter. Returns nil if disabled (MaxPerSource <= 0).
func NewWarnRateLimiter(cfg WarnRateLimiterConfig) *WarnRateLimiter {
	if cfg.MaxPerSource <= 0 {
		return nil
	}
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Second
	}
	return &WarnRateLimiter{
		current:      make(map[core.IPv4Addr]int64),
		windowSize:   cfg.Window,
		maxPerWindow: int64(cfg.MaxPerSource),
	}
}

// Allow reports whether a warning for src at capture time now may be logged.
// A nil limiter allows everything.
func (l *WarnRateLimiter) Allow(src core.IPv4Addr, now time.Time) bool {
	if l == nil {
		return true
	}

	// Rotate window if expired
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.windowSize {
		clear(l.current)
		l.windowStart = now
	}

	l.current[src]++
	if l.current[src] > l.maxPerWindow {
		l.suppressed++
		return false
	}
	return true
}

// Suppressed returns the total number of suppressed warnings.
func (l *WarnRateLimiter) Suppressed() int64 {
	if l == nil {
		return 0
	}
	return l.suppressed
}

// ActiveSources returns the number of distinct sources in the current window.
func (l *WarnRateLimiter) ActiveSources() int {
	if l == nil {
		return 0
	}
	return len(l.current)
}
