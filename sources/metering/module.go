package metering

import (
	"context"
	"time"

	"autofilter/sources/configuration"
	"autofilter/sources/repository"
	"autofilter/sources/tracing"

	"go.uber.org/fx"
)

var Module = fx.Module("metering",
	fx.Provide(
		func(tiers *repository.TiersRepository, assignments *repository.AssignmentsRepository, config *configuration.Config, log *tracing.Logger) *Meter {
			loc := time.Local
			if config.Metering.DayTimezone != "" {
				parsed, err := time.LoadLocation(config.Metering.DayTimezone)
				if err != nil {
					log.W("Invalid metering timezone, falling back to local", tracing.InnerError, err, "timezone", config.Metering.DayTimezone)
				} else {
					loc = parsed
				}
			}
			return NewMeter(tiers, assignments, loc)
		},
	),

	fx.Invoke(func(lc fx.Lifecycle, meter *Meter, log *tracing.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return meter.Initialize(log)
			},
		})
	}),
)
