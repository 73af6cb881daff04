package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Progress status values the aggregator distinguishes
const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Snapshot is the slice of a progress record the dashboard reads
type Snapshot struct {
	Status       string
	Percentage   int
	OverdueSteps int
	CompletedAt  *time.Time
}

// Source loads progress snapshots for an organization
type Source interface {
	Snapshots(ctx context.Context, organizationID uuid.UUID) ([]Snapshot, error)
}

// Stats are the advisory per-organization onboarding numbers
type Stats struct {
	OrganizationID    uuid.UUID `json:"organization_id"`
	ActiveOnboarding  int       `json:"active_onboarding"`
	AverageProgress   int       `json:"average_progress"`
	WithOverdueSteps  int       `json:"with_overdue_steps"`
	RecentCompletions int       `json:"recent_completions"`
	ComputedAt        time.Time `json:"computed_at"`
}

// AggregatorConfig configuration for the aggregator
type AggregatorConfig struct {
	CacheTTL     time.Duration `json:"cache_ttl"`
	RecentWindow time.Duration `json:"recent_window"`
}

// DefaultAggregatorConfig returns default configuration
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		CacheTTL:     5 * time.Minute,
		RecentWindow: 30 * 24 * time.Hour,
	}
}

// Aggregator computes dashboard stats and serves them through the cache
type Aggregator struct {
	source Source
	cache  *AggregateCache
	config AggregatorConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(source Source, logger *zap.Logger, config AggregatorConfig) *Aggregator {
	return &Aggregator{
		source: source,
		cache:  NewAggregateCache(config.CacheTTL),
		config: config,
		now:    time.Now,
		logger: logger,
	}
}

// SetClock replaces the time source for both the aggregator and its cache
func (a *Aggregator) SetClock(now func() time.Time) {
	a.now = now
	a.cache.mu.Lock()
	a.cache.now = now
	a.cache.mu.Unlock()
}

// Stats returns the organization's stats, computing them on a cache miss
func (a *Aggregator) Stats(ctx context.Context, organizationID uuid.UUID) (*Stats, error) {
	value, err := a.cache.GetOrSet(statsKey(organizationID), func() (interface{}, error) {
		snapshots, err := a.source.Snapshots(ctx, organizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load onboarding snapshots: %w", err)
		}
		stats := Compute(snapshots, a.now(), a.config.RecentWindow)
		stats.OrganizationID = organizationID
		a.logger.Debug("Dashboard stats computed",
			zap.String("organization_id", organizationID.String()),
			zap.Int("records", len(snapshots)))
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	stats := *value.(*Stats)
	return &stats, nil
}

// Invalidate drops every cached aggregate for the organization
func (a *Aggregator) Invalidate(organizationID uuid.UUID) {
	a.cache.DeleteByPrefix(orgPrefix(organizationID))
}

// CacheStats exposes cache counters
func (a *Aggregator) CacheStats() CacheStats {
	return a.cache.Stats()
}

// Close stops the cache sweep
func (a *Aggregator) Close() {
	a.cache.Stop()
}

// Compute aggregates snapshots. Average progress is the rounded mean over active records.
func Compute(snapshots []Snapshot, now time.Time, recentWindow time.Duration) *Stats {
	stats := &Stats{ComputedAt: now}
	since := now.Add(-recentWindow)
	total := 0

	for _, s := range snapshots {
		switch s.Status {
		case StatusNotStarted, StatusInProgress:
			stats.ActiveOnboarding++
			total += s.Percentage
		case StatusCompleted:
			if s.CompletedAt != nil && !s.CompletedAt.Before(since) {
				stats.RecentCompletions++
			}
		}
		if s.OverdueSteps > 0 {
			stats.WithOverdueSteps++
		}
	}

	if stats.ActiveOnboarding > 0 {
		stats.AverageProgress = int(math.Round(float64(total) / float64(stats.ActiveOnboarding)))
	}
	return stats
}

func orgPrefix(organizationID uuid.UUID) string {
	return "org_" + organizationID.String() + "_"
}

func statsKey(organizationID uuid.UUID) string {
	return orgPrefix(organizationID) + "stats"
}
