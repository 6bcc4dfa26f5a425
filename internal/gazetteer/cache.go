package gazetteer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

const DefaultTimeout = 30 * time.Second

var errNoPeaks = errors.New("source returned no usable peaks")

// Cache memoizes the peak list for the process. Concurrent first callers share
// one fetch; a failed or empty fetch is replaced by the fallback list.
type Cache struct {
	source   Source
	fallback []domain.MountainPeak
	timeout  time.Duration
	logger   *zap.Logger

	group singleflight.Group

	mu    sync.RWMutex
	peaks []domain.MountainPeak
}

type CacheOption func(*Cache)

func WithTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFallback replaces the built-in fallback list.
func WithFallback(peaks []domain.MountainPeak) CacheOption {
	return func(c *Cache) {
		c.fallback = Dedupe(peaks)
	}
}

func NewCache(source Source, opts ...CacheOption) *Cache {
	c := &Cache{
		source:   source,
		fallback: Fallback(),
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the memoized peaks, fetching them on first use. It never fails:
// source errors are logged and the fallback list is served instead.
func (c *Cache) Load(ctx context.Context) []domain.MountainPeak {
	if peaks, ok := c.cached(); ok {
		return peaks
	}

	v, _, _ := c.group.Do("peaks", func() (interface{}, error) {
		if peaks, ok := c.cached(); ok {
			return peaks, nil
		}
		peaks := c.fetch(ctx)
		c.mu.Lock()
		c.peaks = peaks
		c.mu.Unlock()
		return peaks, nil
	})
	return clonePeaks(v.([]domain.MountainPeak))
}

// Invalidate drops the memo so the next Load queries the source again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.peaks = nil
	c.mu.Unlock()
}

func (c *Cache) cached() ([]domain.MountainPeak, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.peaks == nil {
		return nil, false
	}
	return clonePeaks(c.peaks), true
}

func (c *Cache) fetch(ctx context.Context) []domain.MountainPeak {
	if c.source == nil {
		return c.fallback
	}

	// Detached so one caller giving up does not pin the fallback for everyone.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	raw, err := c.source.Fetch(fetchCtx)
	if err == nil {
		peaks := Dedupe(raw)
		if len(peaks) > 0 {
			return peaks
		}
		err = errNoPeaks
	}
	c.logger.Warn("gazetteer source failed, using fallback peaks",
		zap.Error(err),
		zap.Int("fallback_count", len(c.fallback)),
	)
	return c.fallback
}
