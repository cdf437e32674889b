package metrics

import (
	"time"

	"autofilter/sources/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsService struct {
	log *tracing.Logger
}

var (
	searchesPerformed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autofilter_searches_total",
			Help: "Total number of catalog searches",
		},
		[]string{"mode", "status"},
	)

	quotaDenials = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autofilter_quota_denials_total",
			Help: "Total number of requests denied by the daily quota",
		},
	)

	featureDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autofilter_feature_denials_total",
			Help: "Total number of requests denied by a feature gate",
		},
		[]string{"feature"},
	)

	detectionRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autofilter_detection_runs_total",
			Help: "Total number of duplicate detection sweeps",
		},
		[]string{"status"},
	)

	detectionGroups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autofilter_detection_groups_total",
			Help: "Total number of duplicate groups produced by sweeps",
		},
		[]string{"method"},
	)

	tierAssignments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autofilter_tier_assignments_total",
			Help: "Total number of tier assignments performed by admins",
		},
		[]string{"tier"},
	)

	commandsUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autofilter_commands_used_total",
			Help: "Total number of commands used",
		},
		[]string{"command"},
	)

	messagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autofilter_messages_sent_total",
			Help: "Total number of messages sent by the diplomat",
		},
		[]string{"status"},
	)

	messagesIgnored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autofilter_messages_ignored_total",
			Help: "Total number of messages ignored",
		},
		[]string{"reason"},
	)

	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autofilter_search_duration_seconds",
			Help:    "Duration of catalog searches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	statsTierUsers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "autofilter_stats_tier_users",
			Help: "Number of users per tier",
		},
		[]string{"tier"},
	)

	statsUnresolvedDuplicates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "autofilter_stats_unresolved_duplicates",
			Help: "Number of unresolved duplicate groups",
		},
	)
)

func init() {
	prometheus.MustRegister(searchesPerformed)
	prometheus.MustRegister(quotaDenials)
	prometheus.MustRegister(featureDenials)
	prometheus.MustRegister(detectionRuns)
	prometheus.MustRegister(detectionGroups)
	prometheus.MustRegister(tierAssignments)
	prometheus.MustRegister(commandsUsed)
	prometheus.MustRegister(messagesSent)
	prometheus.MustRegister(messagesIgnored)
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(statsTierUsers)
	prometheus.MustRegister(statsUnresolvedDuplicates)
}

func NewMetricsService(log *tracing.Logger) *MetricsService {
	return &MetricsService{
		log: log,
	}
}

func (s *MetricsService) RecordSearch(mode string, status string) {
	searchesPerformed.WithLabelValues(mode, status).Inc()
}

func (s *MetricsService) RecordQuotaDenial() {
	quotaDenials.Inc()
}

func (s *MetricsService) RecordFeatureDenial(feature string) {
	featureDenials.WithLabelValues(feature).Inc()
}

func (s *MetricsService) RecordDetectionRun(status string) {
	detectionRuns.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordDetectionGroups(method string, count int) {
	detectionGroups.WithLabelValues(method).Add(float64(count))
}

func (s *MetricsService) RecordTierAssignment(tier string) {
	tierAssignments.WithLabelValues(tier).Inc()
}

func (s *MetricsService) RecordCommandUsed(command string) {
	commandsUsed.WithLabelValues(command).Inc()
}

func (s *MetricsService) RecordMessageSent(status string) {
	messagesSent.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordMessageIgnored(reason string) {
	messagesIgnored.WithLabelValues(reason).Inc()
}

func (s *MetricsService) RecordSearchDuration(duration time.Duration, mode string) {
	searchDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (s *MetricsService) SetTierUsers(tier string, count float64) {
	statsTierUsers.WithLabelValues(tier).Set(count)
}

func (s *MetricsService) SetUnresolvedDuplicates(count float64) {
	statsUnresolvedDuplicates.Set(count)
}
