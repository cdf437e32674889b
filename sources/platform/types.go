package platform

// DayFormat is the calendar-day key used by the usage meter. Counters are
// keyed by this string, never by a timestamp, so a day rolls over exactly
// once in the process-local timezone.
const DayFormat = "2006-01-02"

type TierName = string

const (
	TierFree       TierName = "free"
	TierPremium    TierName = "premium"
	TierPro        TierName = "pro"
	TierEnterprise TierName = "enterprise"
)

type DetectionMethod = string

const (
	MethodFilenameSimilarity DetectionMethod = "filename_similarity"
	MethodSizeMatch          DetectionMethod = "size_match"
	MethodContentType        DetectionMethod = "content_type"
)
