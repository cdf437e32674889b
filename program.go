package main

import (
	"context"

	"autofilter/sources/configuration"
	"autofilter/sources/deduplication"
	"autofilter/sources/features"
	"autofilter/sources/metering"
	"autofilter/sources/metrics"
	"autofilter/sources/metrics/collector"
	"autofilter/sources/persistence"
	"autofilter/sources/repository"
	"autofilter/sources/search"
	"autofilter/sources/telegram"
	"autofilter/sources/throttler"
	"autofilter/sources/tracing"

	"go.uber.org/fx"
)

var (
	version   = "0.0.0"
	buildTime = "1970-01-01"
)

func main() {
	fx.New(
		tracing.Module,
		configuration.Module,
		persistence.Module,
		repository.Module,
		metering.Module,
		features.Module,
		metrics.Module,
		collector.Module,
		deduplication.Module,
		search.Module,
		throttler.Module,
		telegram.Module,

		fx.Invoke(func(lc fx.Lifecycle, log *tracing.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.I("Autofilter started successfully", "version", version, "build_time", buildTime)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.I("Autofilter stopped", "version", version, "build_time", buildTime)
					return nil
				},
			})
		}),
	).Run()
}
