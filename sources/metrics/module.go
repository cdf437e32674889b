package metrics

import (
	"context"

	"autofilter/sources/tracing"

	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(
		NewMetricsService,
		NewOutsider,
	),

	fx.Invoke(func(outsider *Outsider, lc fx.Lifecycle, log *tracing.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go outsider.serve()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.I("Stopping metrics server")
				return outsider.server.Shutdown(ctx)
			},
		})
	}),
)
