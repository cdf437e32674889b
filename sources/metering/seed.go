package metering

import (
	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
)

// DefaultTiers returns the built-in tier catalog. The free tier is
// reserved; Initialize upserts all of them by name on every start.
func DefaultTiers() []*entities.Tier {
	return []*entities.Tier{
		{
			Name:              platform.TierFree,
			Description:       "Basic access with limited features",
			MaxRequestsPerDay: 50,
			MaxFileSizeMB:     100,
			ReferralBonus:     0,
			Features: entities.FeatureMap{
				entities.FeatureCanDownload:     true,
				entities.FeatureCanStream:       true,
				entities.FeatureBatchRequests:   false,
				entities.FeatureRemoveAds:       false,
				entities.FeatureEarlyAccess:     false,
				entities.FeaturePrioritySupport: false,
				entities.FeatureNLPSearch:       false,
			},
		},
		{
			Name:              platform.TierPremium,
			Description:       "Standard premium access",
			MaxRequestsPerDay: 200,
			MaxFileSizeMB:     500,
			ReferralBonus:     1,
			Features: entities.FeatureMap{
				entities.FeatureCanDownload:     true,
				entities.FeatureCanStream:       true,
				entities.FeatureBatchRequests:   true,
				entities.FeatureRemoveAds:       true,
				entities.FeatureEarlyAccess:     false,
				entities.FeaturePrioritySupport: false,
				entities.FeatureNLPSearch:       true,
			},
		},
		{
			Name:              platform.TierPro,
			Description:       "Advanced premium access with more features",
			MaxRequestsPerDay: 500,
			MaxFileSizeMB:     1000,
			ReferralBonus:     2,
			Features: entities.FeatureMap{
				entities.FeatureCanDownload:     true,
				entities.FeatureCanStream:       true,
				entities.FeatureBatchRequests:   true,
				entities.FeatureRemoveAds:       true,
				entities.FeatureEarlyAccess:     true,
				entities.FeaturePrioritySupport: false,
				entities.FeatureNLPSearch:       true,
			},
		},
		{
			Name:              platform.TierEnterprise,
			Description:       "Full access with unlimited features",
			MaxRequestsPerDay: 0, // unlimited
			MaxFileSizeMB:     0, // unlimited
			ReferralBonus:     3,
			Features: entities.FeatureMap{
				entities.FeatureCanDownload:     true,
				entities.FeatureCanStream:       true,
				entities.FeatureBatchRequests:   true,
				entities.FeatureRemoveAds:       true,
				entities.FeatureEarlyAccess:     true,
				entities.FeaturePrioritySupport: true,
				entities.FeatureNLPSearch:       true,
			},
		},
	}
}

// builtinFree is the in-memory fallback used when even the free tier
// cannot be read from storage.
func builtinFree() *entities.Tier {
	return DefaultTiers()[0]
}
