package metering

import (
	"errors"
	"fmt"
	"time"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/repository"
	"autofilter/sources/tracing"
)

// TierStore is the slice of the tiers repository the meter needs.
type TierStore interface {
	GetByName(log *tracing.Logger, name string) (*entities.Tier, error)
	GetAll(log *tracing.Logger) ([]*entities.Tier, error)
	Seed(log *tracing.Logger, tier *entities.Tier) error
	UpdateConfig(log *tracing.Logger, name string, patch map[string]any) error
	Delete(log *tracing.Logger, name string) error
}

// AssignmentStore is the slice of the assignments repository the meter
// needs.
type AssignmentStore interface {
	Get(log *tracing.Logger, userID int64) (*entities.TierAssignment, error)
	SetTier(log *tracing.Logger, userID int64, tier string, expiry *time.Time) error
	ResetUsage(log *tracing.Logger, userID int64, requests int, day string) error
	IncrementRequests(log *tracing.Logger, userID int64) (int, error)
	SetOverride(log *tracing.Logger, userID int64, feature string, allowed bool) error
	ClearOverride(log *tracing.Logger, userID int64, feature string) error
	ListByTier(log *tracing.Logger, tier string) ([]*entities.TierAssignment, error)
	TierStats(log *tracing.Logger) ([]repository.TierStat, error)
}

// Meter is the single source of truth for "what may this user do right
// now": the static per-tier policy table plus the per-user day counters.
//
// Two deliberate asymmetries, kept from the observed behavior of the
// system this replaces: quota checks fail closed (a storage error denies
// the request, nothing unmetered slips through), while read-only feature
// checks fail open to the free tier's defaults so that non-critical paths
// keep working through a storage outage.
type Meter struct {
	tiers       TierStore
	assignments AssignmentStore
	loc         *time.Location
	now         func() time.Time
}

func NewMeter(tiers TierStore, assignments AssignmentStore, loc *time.Location) *Meter {
	if loc == nil {
		loc = time.Local
	}
	return &Meter{
		tiers:       tiers,
		assignments: assignments,
		loc:         loc,
		now:         time.Now,
	}
}

func (x *Meter) today() string {
	return x.now().In(x.loc).Format(platform.DayFormat)
}

// Initialize upserts the built-in tier definitions. Idempotent; safe on
// every process start. Admin customizations to non-policy columns survive.
func (x *Meter) Initialize(log *tracing.Logger) error {
	defer tracing.ProfilePoint(log, "Meter initialize completed", "metering.initialize")()

	for _, tier := range DefaultTiers() {
		if err := x.tiers.Seed(log, tier); err != nil {
			return fmt.Errorf("failed to seed tier %s: %w", tier.Name, err)
		}
	}

	log.I("Built-in tiers seeded")
	return nil
}

// GetUserTier returns the user's current assignment. Users with no stored
// assignment get a transient free-tier default that is not persisted. For
// stored assignments a stale day counter is reset to zero as a side effect
// of the read; re-reading within the same day never resets twice.
func (x *Meter) GetUserTier(log *tracing.Logger, userID int64) (*entities.TierAssignment, error) {
	defer tracing.ProfilePoint(log, "Meter get user tier completed", "metering.get.user.tier", tracing.UserId, userID)()

	assignment, err := x.assignments.Get(log, userID)
	if errors.Is(err, repository.ErrAssignmentNotFound) {
		return x.defaultAssignment(userID), nil
	}
	if err != nil {
		return nil, err
	}

	if x.expired(assignment) {
		if err := x.downgrade(log, assignment); err != nil {
			return nil, err
		}
	}

	today := x.today()
	if assignment.LastRequestDate != today {
		if err := x.assignments.ResetUsage(log, userID, 0, today); err != nil {
			return nil, err
		}
		assignment.RequestsToday = 0
		assignment.LastRequestDate = today
	}

	return assignment, nil
}

// SetUserTier is the only path that changes tier membership. A
// non-positive duration makes the assignment permanent. Usage counters
// are left untouched.
func (x *Meter) SetUserTier(log *tracing.Logger, userID int64, tierName string, durationDays int) (bool, string) {
	defer tracing.ProfilePoint(log, "Meter set user tier completed", "metering.set.user.tier", tracing.UserId, userID, tracing.Tier, tierName)()

	if _, err := x.tiers.GetByName(log, tierName); err != nil {
		if errors.Is(err, repository.ErrTierNotFound) {
			return false, fmt.Sprintf("Tier '%s' does not exist", tierName)
		}
		log.E("Failed to resolve tier", tracing.InnerError, err)
		return false, "Tier storage is unavailable, try again later"
	}

	var expiry *time.Time
	if durationDays > 0 {
		t := x.now().AddDate(0, 0, durationDays)
		expiry = &t
	}

	if err := x.assignments.SetTier(log, userID, tierName, expiry); err != nil {
		return false, "Failed to store the tier assignment"
	}

	if expiry == nil {
		return true, fmt.Sprintf("User %d has been assigned to tier '%s' permanently", userID, tierName)
	}
	return true, fmt.Sprintf("User %d has been assigned to tier '%s' for %d days", userID, tierName, durationDays)
}

// IncrementUsage is the quota gate, invoked once per metered action. The
// counter is persisted on every call whether or not the request is
// admitted. Storage failures deny (fail closed).
func (x *Meter) IncrementUsage(log *tracing.Logger, userID int64) (bool, error) {
	defer tracing.ProfilePoint(log, "Meter increment usage completed", "metering.increment.usage", tracing.UserId, userID)()

	assignment, err := x.assignments.Get(log, userID)
	if errors.Is(err, repository.ErrAssignmentNotFound) {
		assignment = x.defaultAssignment(userID)
	} else if err != nil {
		return false, err
	}

	if x.expired(assignment) {
		if err := x.downgrade(log, assignment); err != nil {
			return false, err
		}
	}

	limit, err := x.dailyLimit(log, assignment.Tier)
	if err != nil {
		return false, err
	}

	today := x.today()
	if assignment.LastRequestDate != today {
		// First metered request of the day always succeeds; the upsert also
		// creates the row for users never assigned explicitly.
		if err := x.assignments.ResetUsage(log, userID, 1, today); err != nil {
			return false, err
		}
		return true, nil
	}

	count, err := x.assignments.IncrementRequests(log, userID)
	if err != nil {
		return false, err
	}

	if limit > 0 && count > limit {
		log.I("Daily quota exceeded", tracing.UserId, userID, tracing.Tier, assignment.Tier, "count", count, "limit", limit)
		return false, nil
	}

	return true, nil
}

// CanUseFeature resolves a feature flag: explicit per-user override first,
// tier default second, false for features unknown to both. Read-only, so
// storage failures fall back to free-tier defaults (fail open).
func (x *Meter) CanUseFeature(log *tracing.Logger, userID int64, feature string) bool {
	defer tracing.ProfilePoint(log, "Meter can use feature completed", "metering.can.use.feature", tracing.UserId, userID, tracing.Feature, feature)()

	tierName := platform.TierFree

	assignment, err := x.assignments.Get(log, userID)
	switch {
	case err == nil:
		if allowed, ok := assignment.FeaturesOverride[feature]; ok {
			return allowed
		}
		tierName = assignment.Tier
	case errors.Is(err, repository.ErrAssignmentNotFound):
		// transient free default
	default:
		log.W("Assignment lookup failed, assuming free tier", tracing.InnerError, err)
	}

	tier, err := x.tiers.GetByName(log, tierName)
	if err != nil && tierName != platform.TierFree {
		tier, err = x.tiers.GetByName(log, platform.TierFree)
	}
	if err != nil {
		log.W("Tier lookup failed, using built-in free defaults", tracing.InnerError, err)
		tier = builtinFree()
	}

	return tier.Features[feature]
}

// OverrideFeature records a sparse per-user exception. The tier's shared
// definition is not touched.
func (x *Meter) OverrideFeature(log *tracing.Logger, userID int64, feature string, allowed bool) error {
	return x.assignments.SetOverride(log, userID, feature, allowed)
}

// ClearFeatureOverride restores tier-default behavior for the feature.
func (x *Meter) ClearFeatureOverride(log *tracing.Logger, userID int64, feature string) error {
	return x.assignments.ClearOverride(log, userID, feature)
}

func (x *Meter) GetAllTiers(log *tracing.Logger) ([]*entities.Tier, error) {
	return x.tiers.GetAll(log)
}

func (x *Meter) GetTier(log *tracing.Logger, name string) (*entities.Tier, error) {
	return x.tiers.GetByName(log, name)
}

func (x *Meter) UpdateTierConfig(log *tracing.Logger, name string, patch map[string]any) error {
	return x.tiers.UpdateConfig(log, name, patch)
}

// DeleteTier removes a custom tier. Assignments pointing at it stay in
// place and resolve to the free tier's policy on their next lookup.
func (x *Meter) DeleteTier(log *tracing.Logger, name string) error {
	return x.tiers.Delete(log, name)
}

func (x *Meter) GetUsersByTier(log *tracing.Logger, tierName string) ([]*entities.TierAssignment, error) {
	return x.assignments.ListByTier(log, tierName)
}

func (x *Meter) GetTierStats(log *tracing.Logger) ([]repository.TierStat, error) {
	return x.assignments.TierStats(log)
}

func (x *Meter) defaultAssignment(userID int64) *entities.TierAssignment {
	return &entities.TierAssignment{
		UserID:           userID,
		Tier:             platform.TierFree,
		FeaturesOverride: entities.FeatureMap{},
	}
}

func (x *Meter) expired(assignment *entities.TierAssignment) bool {
	return assignment.Expiry != nil && assignment.Expiry.Before(x.now())
}

// downgrade persists the lazy expiry correction: back to free, expiry
// cleared. There is no background sweeper; expiry is only ever observed
// here.
func (x *Meter) downgrade(log *tracing.Logger, assignment *entities.TierAssignment) error {
	log.I("Tier expired, downgrading to free", tracing.UserId, assignment.UserID, tracing.Tier, assignment.Tier)

	if err := x.assignments.SetTier(log, assignment.UserID, platform.TierFree, nil); err != nil {
		return err
	}

	assignment.Tier = platform.TierFree
	assignment.Expiry = nil
	return nil
}

func (x *Meter) dailyLimit(log *tracing.Logger, tierName string) (int, error) {
	tier, err := x.tiers.GetByName(log, tierName)
	if err != nil {
		if errors.Is(err, repository.ErrTierNotFound) && tierName != platform.TierFree {
			tier, err = x.tiers.GetByName(log, platform.TierFree)
		}
		if err != nil {
			return 0, err
		}
	}
	return tier.MaxRequestsPerDay, nil
}
