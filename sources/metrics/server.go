package metrics

import (
	"fmt"
	"net/http"

	"autofilter/sources/configuration"
	"autofilter/sources/tracing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outsider exposes /metrics and /health on the operations port. Nothing
// user-facing lives here.
type Outsider struct {
	log    *tracing.Logger
	server *http.Server
}

func NewOutsider(log *tracing.Logger, config *configuration.Config) *Outsider {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"autofilter"}`))
	})

	return &Outsider{
		log: log,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", config.Service.MetricsPort),
			Handler: mux,
		},
	}
}

func (x *Outsider) serve() {
	x.log.I("Metrics server is starting", "addr", x.server.Addr)

	if err := x.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		x.log.F("Failed to start metrics server", tracing.InnerError, err)
	}
}
