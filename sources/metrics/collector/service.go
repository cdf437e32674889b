package collector

import (
	"context"
	"time"

	"autofilter/sources/metering"
	"autofilter/sources/metrics"
	"autofilter/sources/persistence/entities"
	"autofilter/sources/repository"
	"autofilter/sources/tracing"

	"go.uber.org/fx"
)

// StatsCollector refreshes the slow-moving gauges once a minute: users
// per tier and the unresolved duplicate backlog.
type StatsCollector struct {
	log        *tracing.Logger
	metrics    *metrics.MetricsService
	meter      *metering.Meter
	duplicates *repository.DuplicatesRepository
}

func NewStatsCollector(
	lc fx.Lifecycle,
	log *tracing.Logger,
	metrics *metrics.MetricsService,
	meter *metering.Meter,
	duplicates *repository.DuplicatesRepository,
) *StatsCollector {
	s := &StatsCollector{
		log:        log,
		metrics:    metrics,
		meter:      meter,
		duplicates: duplicates,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.start()
			return nil
		},
	})

	return s
}

func (s *StatsCollector) start() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	s.collectStats()

	for range ticker.C {
		s.collectStats()
	}
}

func (s *StatsCollector) collectStats() {
	if stats, err := s.meter.GetTierStats(s.log); err == nil {
		for _, stat := range stats {
			s.metrics.SetTierUsers(stat.Tier, float64(stat.Count))
		}
	} else {
		s.log.E("Failed to collect tier stats", tracing.InnerError, err)
	}

	if groups, err := s.duplicates.List(s.log, entities.StatusUnresolved, 1000); err == nil {
		s.metrics.SetUnresolvedDuplicates(float64(len(groups)))
	} else {
		s.log.E("Failed to collect duplicate stats", tracing.InnerError, err)
	}
}
