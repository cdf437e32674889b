package deduplication

import (
	"autofilter/sources/configuration"
	"autofilter/sources/features"
	"autofilter/sources/metrics"
	"autofilter/sources/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("deduplication",
	fx.Provide(
		func(files *repository.FilesRepository, duplicates *repository.DuplicatesRepository, config *configuration.Config) *Detector {
			return NewDetector(files, duplicates, config)
		},
		func(detector *Detector, client *redis.Client, config *configuration.Config, fm *features.FeatureManager, ms *metrics.MetricsService) *Runner {
			return NewRunner(detector, client, config, fm, ms)
		},
	),
)
