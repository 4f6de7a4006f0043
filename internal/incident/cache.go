package incident

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/opsline/opsline/internal/provider"
)

// DefaultTTL is how long a fetched snapshot stays valid.
const DefaultTTL = 5 * time.Minute

// Provider is the external read-only data source the cache refreshes from.
type Provider interface {
	Reports(ctx context.Context, limit int) ([]provider.Report, error)
	Reporters(ctx context.Context) ([]provider.Reporter, error)
}

// Cache memoizes the mapped incident set for a fixed TTL. The snapshot is
// replaced wholesale on refresh; readers that arrive during an in-flight
// refresh get the prior snapshot without blocking on provider I/O.
type Cache struct {
	provider    Provider
	ttl         time.Duration
	recordLimit int
	logger      *slog.Logger
	now         func() time.Time

	mu         sync.Mutex
	records    []Record
	fetchedAt  time.Time
	refreshing bool
}

func NewCache(p Provider, ttl time.Duration, recordLimit int, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if recordLimit < 1 {
		recordLimit = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		provider:    p,
		ttl:         ttl,
		recordLimit: recordLimit,
		logger:      logger,
		now:         time.Now,
	}
}

// GetAll returns the current incident set, refreshing from the provider when
// the snapshot is older than the TTL or has never been populated. Refresh
// failures degrade to the previous snapshot; this method never returns an
// error and never blocks readers on another caller's refresh.
func (c *Cache) GetAll(ctx context.Context) []Record {
	c.mu.Lock()
	fresh := len(c.records) > 0 && c.now().Sub(c.fetchedAt) < c.ttl
	if fresh || c.refreshing {
		snapshot := c.records
		c.mu.Unlock()
		return snapshot
	}
	c.refreshing = true
	prior := c.records
	c.mu.Unlock()

	// Provider I/O happens outside the lock.
	reports, err := c.provider.Reports(ctx, c.recordLimit)
	if err != nil || len(reports) == 0 {
		if err != nil {
			c.logger.Warn("incident refresh failed, serving stale snapshot", "error", err)
		} else {
			c.logger.Warn("incident refresh returned no records, serving stale snapshot")
		}
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
		return prior
	}
	reporters, err := c.provider.Reporters(ctx)
	if err != nil {
		// Tolerated: assignees fall back to derived defaults.
		c.logger.Warn("reporter listing unavailable", "error", err)
		reporters = nil
	}

	now := c.now().UTC()
	mapped := MapRecords(reports, reporters, now)

	c.mu.Lock()
	c.records = mapped
	c.fetchedAt = now
	c.refreshing = false
	c.mu.Unlock()
	return mapped
}

// GetOpen lists incidents in any non-resolved status, optionally narrowed to
// one priority, ordered priority-descending then oldest-first.
func (c *Cache) GetOpen(ctx context.Context, priority Priority) []Record {
	filtered := filter(c.GetAll(ctx), func(r Record) bool {
		if r.Status == StatusResolved {
			return false
		}
		return priority == "" || priority == PriorityAll || r.Priority == priority
	})
	sortOpen(filtered)
	return filtered
}

// GetResolved lists resolved incidents, most recently resolved first.
func (c *Cache) GetResolved(ctx context.Context) []Record {
	filtered := filter(c.GetAll(ctx), func(r Record) bool {
		return r.Status == StatusResolved
	})
	sortResolved(filtered)
	return filtered
}

// GetByPriority lists incidents of one priority ordered oldest-first.
// PriorityAll returns everything.
func (c *Cache) GetByPriority(ctx context.Context, priority Priority) []Record {
	filtered := filter(c.GetAll(ctx), func(r Record) bool {
		return priority == "" || priority == PriorityAll || r.Priority == priority
	})
	sortByCreated(filtered)
	return filtered
}

// GetByID resolves one incident by its INC identifier, case-insensitively.
func (c *Cache) GetByID(ctx context.Context, id string) (Record, error) {
	want := strings.ToUpper(strings.TrimSpace(id))
	for _, record := range c.GetAll(ctx) {
		if strings.ToUpper(record.ID) == want {
			return record, nil
		}
	}
	return Record{}, ErrNotFound
}

// Summary aggregates the current incident set. TopCategory is empty when the
// set is empty.
type Summary struct {
	Total               int     `json:"total"`
	Open                int     `json:"open"`
	Resolved            int     `json:"resolved"`
	Critical            int     `json:"critical"`
	High                int     `json:"high"`
	MeanResolutionHours float64 `json:"mean_resolution_hours"`
	TopCategory         string  `json:"top_category"`
	TopCategoryCount    int     `json:"top_category_count"`
}

// Analyze computes summary statistics over the current set. An empty set
// yields zero counts and an empty TopCategory.
func (c *Cache) Analyze(ctx context.Context) Summary {
	records := c.GetAll(ctx)
	summary := Summary{Total: len(records)}

	var resolutionHours float64
	var resolvedWithTimestamp int
	categoryCounts := map[string]int{}
	categoryOrder := []string{}

	for _, record := range records {
		switch record.Status {
		case StatusResolved:
			summary.Resolved++
			if record.ResolvedAt != nil {
				resolutionHours += record.ResolvedAt.Sub(record.CreatedAt).Hours()
				resolvedWithTimestamp++
			}
		default:
			summary.Open++
		}
		switch record.Priority {
		case PriorityCritical:
			summary.Critical++
		case PriorityHigh:
			summary.High++
		}
		if _, seen := categoryCounts[record.Category]; !seen {
			categoryOrder = append(categoryOrder, record.Category)
		}
		categoryCounts[record.Category]++
	}

	if resolvedWithTimestamp > 0 {
		summary.MeanResolutionHours = resolutionHours / float64(resolvedWithTimestamp)
	}
	// Ties break toward the first-encountered category.
	for _, category := range categoryOrder {
		if categoryCounts[category] > summary.TopCategoryCount {
			summary.TopCategory = category
			summary.TopCategoryCount = categoryCounts[category]
		}
	}
	return summary
}

func filter(records []Record, keep func(Record) bool) []Record {
	filtered := make([]Record, 0, len(records))
	for _, record := range records {
		if keep(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
