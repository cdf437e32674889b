package metering

import (
	"errors"
	"testing"
	"time"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/repository"
	"autofilter/sources/tracing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTiers struct {
	tiers  map[string]*entities.Tier
	getErr error
}

func newFakeTiers() *fakeTiers {
	x := &fakeTiers{tiers: map[string]*entities.Tier{}}
	for _, tier := range DefaultTiers() {
		x.tiers[tier.Name] = tier
	}
	return x
}

func (x *fakeTiers) GetByName(log *tracing.Logger, name string) (*entities.Tier, error) {
	if x.getErr != nil {
		return nil, x.getErr
	}
	tier, ok := x.tiers[name]
	if !ok {
		return nil, repository.ErrTierNotFound
	}
	return tier, nil
}

func (x *fakeTiers) GetAll(log *tracing.Logger) ([]*entities.Tier, error) {
	result := make([]*entities.Tier, 0, len(x.tiers))
	for _, tier := range x.tiers {
		result = append(result, tier)
	}
	return result, nil
}

func (x *fakeTiers) Seed(log *tracing.Logger, tier *entities.Tier) error {
	x.tiers[tier.Name] = tier
	return nil
}

func (x *fakeTiers) UpdateConfig(log *tracing.Logger, name string, patch map[string]any) error {
	if _, ok := x.tiers[name]; !ok {
		return repository.ErrTierNotFound
	}
	return nil
}

func (x *fakeTiers) Delete(log *tracing.Logger, name string) error {
	if name == platform.TierFree {
		return repository.ErrTierReserved
	}
	if _, ok := x.tiers[name]; !ok {
		return repository.ErrTierNotFound
	}
	delete(x.tiers, name)
	return nil
}

type fakeAssignments struct {
	rows   map[int64]*entities.TierAssignment
	getErr error
}

func newFakeAssignments() *fakeAssignments {
	return &fakeAssignments{rows: map[int64]*entities.TierAssignment{}}
}

func (x *fakeAssignments) Get(log *tracing.Logger, userID int64) (*entities.TierAssignment, error) {
	if x.getErr != nil {
		return nil, x.getErr
	}
	row, ok := x.rows[userID]
	if !ok {
		return nil, repository.ErrAssignmentNotFound
	}
	copied := *row
	copied.FeaturesOverride = entities.FeatureMap{}
	for k, v := range row.FeaturesOverride {
		copied.FeaturesOverride[k] = v
	}
	return &copied, nil
}

func (x *fakeAssignments) row(userID int64) *entities.TierAssignment {
	row, ok := x.rows[userID]
	if !ok {
		row = &entities.TierAssignment{UserID: userID, Tier: platform.TierFree, FeaturesOverride: entities.FeatureMap{}}
		x.rows[userID] = row
	}
	return row
}

func (x *fakeAssignments) SetTier(log *tracing.Logger, userID int64, tier string, expiry *time.Time) error {
	row := x.row(userID)
	row.Tier = tier
	row.Expiry = expiry
	row.UpdatedAt = time.Now()
	return nil
}

func (x *fakeAssignments) ResetUsage(log *tracing.Logger, userID int64, requests int, day string) error {
	row := x.row(userID)
	row.RequestsToday = requests
	row.LastRequestDate = day
	return nil
}

func (x *fakeAssignments) IncrementRequests(log *tracing.Logger, userID int64) (int, error) {
	row, ok := x.rows[userID]
	if !ok {
		return 0, repository.ErrAssignmentNotFound
	}
	row.RequestsToday++
	return row.RequestsToday, nil
}

func (x *fakeAssignments) SetOverride(log *tracing.Logger, userID int64, feature string, allowed bool) error {
	x.row(userID).FeaturesOverride[feature] = allowed
	return nil
}

func (x *fakeAssignments) ClearOverride(log *tracing.Logger, userID int64, feature string) error {
	if row, ok := x.rows[userID]; ok {
		delete(row.FeaturesOverride, feature)
	}
	return nil
}

func (x *fakeAssignments) ListByTier(log *tracing.Logger, tier string) ([]*entities.TierAssignment, error) {
	var result []*entities.TierAssignment
	for _, row := range x.rows {
		if row.Tier == tier {
			result = append(result, row)
		}
	}
	return result, nil
}

func (x *fakeAssignments) TierStats(log *tracing.Logger) ([]repository.TierStat, error) {
	counts := map[string]*repository.TierStat{}
	for id, row := range x.rows {
		stat, ok := counts[row.Tier]
		if !ok {
			stat = &repository.TierStat{Tier: row.Tier}
			counts[row.Tier] = stat
		}
		stat.Count++
		stat.Users = append(stat.Users, id)
	}
	var result []repository.TierStat
	for _, stat := range counts {
		result = append(result, *stat)
	}
	return result, nil
}

func newTestMeter(t *testing.T) (*Meter, *fakeTiers, *fakeAssignments, *tracing.Logger) {
	t.Helper()
	tiers := newFakeTiers()
	assignments := newFakeAssignments()
	meter := NewMeter(tiers, assignments, time.UTC)
	return meter, tiers, assignments, tracing.NewConsoleLogger()
}

func TestGetUserTierDefaultsToFree(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)

	assignment, err := meter.GetUserTier(log, 42)
	require.NoError(t, err)

	assert.Equal(t, platform.TierFree, assignment.Tier)
	assert.Nil(t, assignment.Expiry)
	assert.Equal(t, 0, assignment.RequestsToday)
	assert.Empty(t, assignments.rows, "transient default must not be persisted")
}

func TestGetUserTierResetsStaleCounterOnce(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)

	assignments.rows[7] = &entities.TierAssignment{
		UserID: 7, Tier: platform.TierPremium,
		RequestsToday: 33, LastRequestDate: "2020-01-01",
		FeaturesOverride: entities.FeatureMap{},
	}

	assignment, err := meter.GetUserTier(log, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, assignment.RequestsToday)
	assert.Equal(t, meter.today(), assignment.LastRequestDate)

	// Re-read within the same day must not reset again.
	assignments.rows[7].RequestsToday = 5
	assignment, err = meter.GetUserTier(log, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, assignment.RequestsToday)
}

func TestIncrementUsageEnforcesDailyQuota(t *testing.T) {
	meter, tiers, _, log := newTestMeter(t)
	tiers.tiers[platform.TierFree].MaxRequestsPerDay = 3

	for i := 0; i < 3; i++ {
		allowed, err := meter.IncrementUsage(log, 1)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within quota must pass", i+1)
	}

	allowed, err := meter.IncrementUsage(log, 1)
	require.NoError(t, err)
	assert.False(t, allowed, "request beyond quota must be denied")
}

func TestIncrementUsageResetsOnNewDay(t *testing.T) {
	meter, tiers, _, log := newTestMeter(t)
	tiers.tiers[platform.TierFree].MaxRequestsPerDay = 1

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	meter.now = func() time.Time { return now }

	allowed, err := meter.IncrementUsage(log, 2)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = meter.IncrementUsage(log, 2)
	require.NoError(t, err)
	assert.False(t, allowed, "quota exhausted for the day")

	now = now.AddDate(0, 0, 1)

	allowed, err = meter.IncrementUsage(log, 2)
	require.NoError(t, err)
	assert.True(t, allowed, "first request of a new day always succeeds")
}

func TestIncrementUsageUnlimitedTier(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)

	assignments.rows[9] = &entities.TierAssignment{
		UserID: 9, Tier: platform.TierEnterprise,
		LastRequestDate:  meter.today(),
		RequestsToday:    100000,
		FeaturesOverride: entities.FeatureMap{},
	}

	for i := 0; i < 10; i++ {
		allowed, err := meter.IncrementUsage(log, 9)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestIncrementUsageFailsClosedOnStorageError(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)
	assignments.getErr = errors.New("storage unavailable")

	allowed, err := meter.IncrementUsage(log, 1)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestExpiredTierDowngradesLazily(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)

	expired := time.Now().Add(-time.Hour)
	assignments.rows[5] = &entities.TierAssignment{
		UserID: 5, Tier: platform.TierPro, Expiry: &expired,
		FeaturesOverride: entities.FeatureMap{},
	}

	assignment, err := meter.GetUserTier(log, 5)
	require.NoError(t, err)
	assert.Equal(t, platform.TierFree, assignment.Tier)
	assert.Nil(t, assignment.Expiry)

	stored := assignments.rows[5]
	assert.Equal(t, platform.TierFree, stored.Tier, "downgrade must be persisted")
	assert.Nil(t, stored.Expiry)
}

func TestSetUserTierComputesExpiry(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)

	ok, msg := meter.SetUserTier(log, 3, platform.TierPremium, 7)
	require.True(t, ok, msg)

	stored := assignments.rows[3]
	require.NotNil(t, stored.Expiry)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *stored.Expiry, time.Minute)
}

func TestSetUserTierPermanentWithoutDuration(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)

	ok, _ := meter.SetUserTier(log, 3, platform.TierPro, 0)
	require.True(t, ok)
	assert.Nil(t, assignments.rows[3].Expiry)
}

func TestSetUserTierRejectsUnknownTier(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)

	ok, msg := meter.SetUserTier(log, 3, "platinum", 30)
	assert.False(t, ok)
	assert.Contains(t, msg, "platinum")
	assert.Empty(t, assignments.rows, "failed assignment must not mutate storage")
}

func TestSetUserTierKeepsUsageCounters(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)

	assignments.rows[4] = &entities.TierAssignment{
		UserID: 4, Tier: platform.TierFree,
		RequestsToday: 17, LastRequestDate: meter.today(),
		FeaturesOverride: entities.FeatureMap{},
	}

	ok, _ := meter.SetUserTier(log, 4, platform.TierPremium, 30)
	require.True(t, ok)
	assert.Equal(t, 17, assignments.rows[4].RequestsToday)
}

func TestFeatureOverrideBeatsTierDefault(t *testing.T) {
	meter, _, _, log := newTestMeter(t)

	assert.False(t, meter.CanUseFeature(log, 8, entities.FeatureRemoveAds), "free tier default is false")

	require.NoError(t, meter.OverrideFeature(log, 8, entities.FeatureRemoveAds, true))
	assert.True(t, meter.CanUseFeature(log, 8, entities.FeatureRemoveAds))

	require.NoError(t, meter.ClearFeatureOverride(log, 8, entities.FeatureRemoveAds))
	assert.False(t, meter.CanUseFeature(log, 8, entities.FeatureRemoveAds), "clearing restores tier default")

	require.NoError(t, meter.OverrideFeature(log, 8, entities.FeatureRemoveAds, false))
	assert.False(t, meter.CanUseFeature(log, 8, entities.FeatureRemoveAds))
}

func TestCanUseFeatureUnknownFeature(t *testing.T) {
	meter, _, _, log := newTestMeter(t)
	assert.False(t, meter.CanUseFeature(log, 8, "time_travel"))
}

func TestCanUseFeatureFailsOpenOnStorageError(t *testing.T) {
	meter, _, assignments, log := newTestMeter(t)
	assignments.getErr = errors.New("storage unavailable")

	assert.True(t, meter.CanUseFeature(log, 8, entities.FeatureCanDownload), "falls back to free tier defaults")
	assert.False(t, meter.CanUseFeature(log, 8, entities.FeatureRemoveAds))
}

func TestInitializeSeedsBuiltinTiers(t *testing.T) {
	tiers := newFakeTiers()
	tiers.tiers = map[string]*entities.Tier{}
	meter := NewMeter(tiers, newFakeAssignments(), time.UTC)

	require.NoError(t, meter.Initialize(tracing.NewConsoleLogger()))
	assert.Len(t, tiers.tiers, 4)
	assert.Contains(t, tiers.tiers, platform.TierFree)
}

func TestDeleteTierRefusesFreeAndFallsBack(t *testing.T) {
	meter, tiers, assignments, log := newTestMeter(t)

	assert.ErrorIs(t, meter.DeleteTier(log, platform.TierFree), repository.ErrTierReserved)
	assert.ErrorIs(t, meter.DeleteTier(log, "ghost"), repository.ErrTierNotFound)

	require.NoError(t, meter.DeleteTier(log, platform.TierPro))
	assert.NotContains(t, tiers.tiers, platform.TierPro)

	// A user still assigned to the deleted tier is limited as free.
	assignments.rows[9] = &entities.TierAssignment{UserID: 9, Tier: platform.TierPro}
	limit, err := meter.dailyLimit(log, platform.TierPro)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
}
