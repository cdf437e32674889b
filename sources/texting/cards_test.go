package texting

import (
	"strings"
	"testing"
	"time"

	"autofilter/sources/persistence/entities"

	"github.com/stretchr/testify/assert"
)

func TestTierCardRendersLimitsAndFeatures(t *testing.T) {
	tier := &entities.Tier{
		Name:              "premium",
		Description:       "Standard premium access",
		MaxRequestsPerDay: 200,
		MaxFileSizeMB:     500,
		Features: entities.FeatureMap{
			entities.FeatureRemoveAds:   true,
			entities.FeatureCanDownload: true,
			entities.FeatureEarlyAccess: false,
		},
	}

	card := TierCard(tier)
	assert.Contains(t, card, "PREMIUM")
	assert.Contains(t, card, "200")
	assert.Contains(t, card, "can_download, remove_ads")
	assert.NotContains(t, card, "early_access")
}

func TestTierCardUnlimited(t *testing.T) {
	tier := &entities.Tier{Name: "enterprise", Features: entities.FeatureMap{}}

	card := TierCard(tier)
	assert.Contains(t, card, "unlimited")
	assert.Contains(t, card, "free")
}

func TestPlanStatusPermanent(t *testing.T) {
	assignment := &entities.TierAssignment{Tier: "free", RequestsToday: 3, FeaturesOverride: entities.FeatureMap{}}
	tier := &entities.Tier{Name: "free", MaxRequestsPerDay: 50}

	status := PlanStatus(assignment, tier)
	assert.Contains(t, status, "FREE")
	assert.Contains(t, status, "permanently")
	assert.Contains(t, status, "3 of 50")
}

func TestPlanStatusWithExpiryAndOverrides(t *testing.T) {
	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	assignment := &entities.TierAssignment{
		Tier:             "premium",
		Expiry:           &expiry,
		FeaturesOverride: entities.FeatureMap{entities.FeatureNLPSearch: true},
	}

	status := PlanStatus(assignment, nil)
	assert.Contains(t, status, "2026-12-31")
	assert.Contains(t, status, "nlp_search=on")
}

func TestFileListEmpty(t *testing.T) {
	assert.Equal(t, "Nothing found.", FileList(nil))
}

func TestDuplicateCardSkipsOriginalAmongMembers(t *testing.T) {
	similarity := 0.93
	group := &entities.DuplicateGroup{
		DuplicateID:      "sim_f1",
		Method:           "filename_similarity",
		Status:           entities.StatusUnresolved,
		OriginalFileID:   "f1",
		OriginalFileName: "The.Matrix.1999.mkv",
		OriginalSize:     700,
		Members: []entities.DuplicateMember{
			{FileID: "f1", FileName: "The.Matrix.1999.mkv", Size: 700},
			{FileID: "f2", FileName: "The Matrix 1999.mkv", Size: 701, Similarity: &similarity, Deleted: true},
		},
	}

	card := DuplicateCard(group)
	assert.Contains(t, card, "sim_f1")
	assert.Contains(t, card, "93.0%")
	assert.Contains(t, card, "[deleted]")
	assert.Equal(t, 1, strings.Count(card, "The.Matrix.1999.mkv"))
}
