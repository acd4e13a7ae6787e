package calendar

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

// Cache holds built calendars keyed by (jurisdiction, year).  It is safe for
// concurrent use and never evicts: the working set is bounded by the number
// of jurisdictions times the pre-warm horizon plus the occasional
// out-of-horizon year requested by a long-dated deadline.
//
// A build failure degrades to a weekday-only calendar rather than failing
// the calculation; the degraded calendar is cached so the warning fires once
// per (jurisdiction, year), not per lookup.
type Cache struct {
	builder *Builder
	logger  logging.Logger

	mu        sync.RWMutex
	calendars map[cacheKey]*HolidayCalendar

	hits     atomic.Int64
	misses   atomic.Int64
	degraded atomic.Int64
}

type cacheKey struct {
	jurisdiction Jurisdiction
	year         int
}

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Entries  int     `json:"entries"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
	Degraded int64   `json:"degraded"`
}

// NewCache creates an empty Cache around the given builder.
func NewCache(builder *Builder, logger logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Cache{
		builder:   builder,
		logger:    logger.Named("calendar-cache"),
		calendars: make(map[cacheKey]*HolidayCalendar),
	}
}

// Prewarm builds calendars for every supported jurisdiction over
// [baseYear−1, baseYear+horizonYears).  The previous year is included so
// that backward arithmetic near January stays warm.
func (c *Cache) Prewarm(baseYear, horizonYears int) {
	start := time.Now()
	built := 0
	for _, j := range SupportedJurisdictions() {
		for year := baseYear - 1; year < baseYear+horizonYears; year++ {
			c.Calendar(j, year)
			built++
		}
	}
	c.logger.Info("calendar cache warmed",
		logging.Int("calendars", built),
		logging.Int("base_year", baseYear),
		logging.Int("horizon_years", horizonYears),
		logging.Duration("took", time.Since(start)),
	)
}

// Calendar returns the calendar for (j, year), building and caching it on
// first use.  It always returns a usable calendar: when the ruleset fails,
// a degraded weekday-only calendar is cached in its place.
func (c *Cache) Calendar(j Jurisdiction, year int) *HolidayCalendar {
	key := cacheKey{j, year}

	c.mu.RLock()
	cal, ok := c.calendars[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return cal
	}
	c.misses.Add(1)

	cal, err := c.builder.Build(j, year)
	if err != nil {
		c.degraded.Add(1)
		c.logger.Warn("calendar build failed, degrading to weekday-only",
			logging.String("jurisdiction", string(j)),
			logging.Int("year", year),
			logging.Err(err),
		)
		cal = c.builder.BuildWeekdayOnly(j, year)
	}

	c.mu.Lock()
	// Another goroutine may have built the same calendar meanwhile; keep the
	// first one so callers observe a stable instance.
	if existing, ok := c.calendars[key]; ok {
		c.mu.Unlock()
		return existing
	}
	c.calendars[key] = cal
	c.mu.Unlock()
	return cal
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.calendars)
	c.mu.RUnlock()
	hits := c.hits.Load()
	misses := c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return CacheStats{
		Entries:  entries,
		Hits:     hits,
		Misses:   misses,
		HitRate:  rate,
		Degraded: c.degraded.Load(),
	}
}
