package persistence

import (
	"fmt"

	"autofilter/sources/tracing"
)

type gormtracer struct {
	logger *tracing.Logger
}

func (w *gormtracer) Printf(format string, args ...interface{}) {
	w.logger.D("Database query trace", tracing.SqlQuery, fmt.Sprintf(format, args...))
}
