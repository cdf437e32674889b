package deduplication

import (
	"context"
	"errors"
	"time"

	"autofilter/sources/configuration"
	"autofilter/sources/features"
	"autofilter/sources/metrics"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"github.com/redis/go-redis/v9"
)

// ErrDetectionBusy is returned when another process already holds the
// detection lock.
var ErrDetectionBusy = errors.New("detection pass already running")

const detectionLockKey = "dedup:lock"

// Runner executes a full detection sweep behind a Redis lock so that
// concurrent admin commands and replicas never scan the catalog twice at
// the same time.
type Runner struct {
	detector *Detector
	client   *redis.Client
	config   *configuration.Config
	features *features.FeatureManager
	metrics  *metrics.MetricsService
}

func NewRunner(detector *Detector, client *redis.Client, config *configuration.Config, features *features.FeatureManager, metrics *metrics.MetricsService) *Runner {
	return &Runner{detector: detector, client: client, config: config, features: features, metrics: metrics}
}

func (x *Runner) lockTTL() time.Duration {
	if x.config.Deduplication.LockTTL > 0 {
		return x.config.Deduplication.LockTTL
	}
	return 5 * time.Minute
}

func (x *Runner) runTimeout() time.Duration {
	if x.config.Deduplication.RunTimeout > 0 {
		return x.config.Deduplication.RunTimeout
	}
	return 2 * time.Minute
}

// Run executes all three strategies and returns how many groups the
// sweep produced. Lock contention yields ErrDetectionBusy; a partially
// failed sweep returns what was stored before the failure.
func (x *Runner) Run(log *tracing.Logger, threshold float64, limit int) (int, error) {
	defer tracing.ProfilePoint(log, "Detection sweep completed", "deduplication.run")()

	lockCtx, cancel := platform.ContextTimeout(context.Background())
	acquired, err := x.client.SetNX(lockCtx, detectionLockKey, time.Now().Unix(), x.lockTTL()).Result()
	cancel()
	if err != nil {
		log.E("Failed to acquire detection lock", tracing.InnerError, err)
		x.metrics.RecordDetectionRun("error")
		return 0, err
	}
	if !acquired {
		x.metrics.RecordDetectionRun("busy")
		return 0, ErrDetectionBusy
	}

	defer func() {
		ctx, cancel := platform.ContextTimeout(context.Background())
		defer cancel()
		if err := x.client.Del(ctx, detectionLockKey).Err(); err != nil {
			log.W("Failed to release detection lock", tracing.InnerError, err)
		}
	}()

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), x.runTimeout())
	defer cancel()

	total := 0

	if x.features.IsEnabledDefault(features.FeatureDetectionSimilarity, true) {
		similar, err := x.detector.FindByFilenameSimilarity(ctx, log, threshold, limit)
		total += len(similar)
		x.metrics.RecordDetectionGroups(platform.MethodFilenameSimilarity, len(similar))
		if err != nil {
			x.metrics.RecordDetectionRun("error")
			return total, err
		}
	}

	if x.features.IsEnabledDefault(features.FeatureDetectionSize, true) {
		sized, err := x.detector.FindBySizeMatch(ctx, log, limit)
		total += len(sized)
		x.metrics.RecordDetectionGroups(platform.MethodSizeMatch, len(sized))
		if err != nil {
			x.metrics.RecordDetectionRun("error")
			return total, err
		}
	}

	if x.features.IsEnabledDefault(features.FeatureDetectionContent, true) {
		typed, err := x.detector.FindByContentType(ctx, log, limit)
		total += len(typed)
		x.metrics.RecordDetectionGroups(platform.MethodContentType, len(typed))
		if err != nil {
			x.metrics.RecordDetectionRun("error")
			return total, err
		}
	}

	x.metrics.RecordDetectionRun("success")
	log.I("Detection sweep finished", tracing.GroupCount, total)
	return total, nil
}
