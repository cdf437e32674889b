package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAssignmentNotFound = errors.New("tier assignment not found")

type TierStat struct {
	Tier  string        `gorm:"column:tier"`
	Count int64         `gorm:"column:count"`
	Users pq.Int64Array `gorm:"column:users;type:bigint[]"`
}

type AssignmentsRepository struct {
	db *gorm.DB
}

func NewAssignmentsRepository(db *gorm.DB) *AssignmentsRepository {
	return &AssignmentsRepository{db: db}
}

func (x *AssignmentsRepository) Get(log *tracing.Logger, userID int64) (*entities.TierAssignment, error) {
	defer tracing.ProfilePoint(log, "Assignments get completed", "repository.assignments.get", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var assignment entities.TierAssignment
	err := x.db.WithContext(ctx).Where("user_id = ?", userID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment for user %d: %w", userID, err)
	}

	return &assignment, nil
}

// SetTier upserts the user's tier membership. Usage counters of an existing
// assignment are deliberately left untouched.
func (x *AssignmentsRepository) SetTier(log *tracing.Logger, userID int64, tier string, expiry *time.Time) error {
	defer tracing.ProfilePoint(log, "Assignments set tier completed", "repository.assignments.set.tier", tracing.UserId, userID, tracing.Tier, tier)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	assignment := &entities.TierAssignment{
		UserID:    userID,
		Tier:      tier,
		Expiry:    expiry,
		UpdatedAt: time.Now(),
	}

	err := x.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier", "expiry", "updated_at"}),
	}).Create(assignment).Error
	if err != nil {
		log.E("Failed to set user tier", tracing.InnerError, err)
		return err
	}

	log.I("User tier set", tracing.UserId, userID, tracing.Tier, tier)
	return nil
}

// ResetUsage upserts the day counter, creating the assignment row (free
// tier) for users seen for the first time.
func (x *AssignmentsRepository) ResetUsage(log *tracing.Logger, userID int64, requests int, day string) error {
	defer tracing.ProfilePoint(log, "Assignments reset usage completed", "repository.assignments.reset.usage", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	assignment := &entities.TierAssignment{
		UserID:          userID,
		Tier:            platform.TierFree,
		RequestsToday:   requests,
		LastRequestDate: day,
		UpdatedAt:       time.Now(),
	}

	err := x.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"requests_today", "last_request_date"}),
	}).Create(assignment).Error
	if err != nil {
		log.E("Failed to reset usage", tracing.InnerError, err)
		return err
	}

	return nil
}

// IncrementRequests bumps the counter server-side and returns the new
// value, so concurrent requests never lose an increment.
func (x *AssignmentsRepository) IncrementRequests(log *tracing.Logger, userID int64) (int, error) {
	defer tracing.ProfilePoint(log, "Assignments increment requests completed", "repository.assignments.increment.requests", tracing.UserId, userID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var assignment entities.TierAssignment
	res := x.db.WithContext(ctx).
		Model(&assignment).
		Clauses(clause.Returning{}).
		Where("user_id = ?", userID).
		Update("requests_today", gorm.Expr("requests_today + 1"))
	if res.Error != nil {
		log.E("Failed to increment requests", tracing.InnerError, res.Error)
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrAssignmentNotFound
	}

	return assignment.RequestsToday, nil
}

func (x *AssignmentsRepository) SetOverride(log *tracing.Logger, userID int64, feature string, allowed bool) error {
	defer tracing.ProfilePoint(log, "Assignments set override completed", "repository.assignments.set.override", tracing.UserId, userID, tracing.Feature, feature)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	res := x.db.WithContext(ctx).
		Model(&entities.TierAssignment{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"features_override": gorm.Expr("jsonb_set(features_override, ?, ?::jsonb)", pq.StringArray{feature}, fmt.Sprintf("%t", allowed)),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		log.E("Failed to set feature override", tracing.InnerError, res.Error)
		return res.Error
	}

	if res.RowsAffected == 0 {
		assignment := &entities.TierAssignment{
			UserID:           userID,
			Tier:             platform.TierFree,
			FeaturesOverride: entities.FeatureMap{feature: allowed},
			UpdatedAt:        time.Now(),
		}
		if err := x.db.WithContext(ctx).Create(assignment).Error; err != nil {
			log.E("Failed to create assignment with override", tracing.InnerError, err)
			return err
		}
	}

	log.I("Feature override set", tracing.UserId, userID, tracing.Feature, feature, "allowed", allowed)
	return nil
}

func (x *AssignmentsRepository) ClearOverride(log *tracing.Logger, userID int64, feature string) error {
	defer tracing.ProfilePoint(log, "Assignments clear override completed", "repository.assignments.clear.override", tracing.UserId, userID, tracing.Feature, feature)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).
		Model(&entities.TierAssignment{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"features_override": gorm.Expr("features_override - ?", feature),
			"updated_at":        time.Now(),
		}).Error
	if err != nil {
		log.E("Failed to clear feature override", tracing.InnerError, err)
		return err
	}

	return nil
}

func (x *AssignmentsRepository) ListByTier(log *tracing.Logger, tier string) ([]*entities.TierAssignment, error) {
	defer tracing.ProfilePoint(log, "Assignments list by tier completed", "repository.assignments.list.by.tier", tracing.Tier, tier)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var assignments []*entities.TierAssignment
	err := x.db.WithContext(ctx).Where("tier = ?", tier).Order("user_id").Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for tier %s: %w", tier, err)
	}

	return assignments, nil
}

func (x *AssignmentsRepository) TierStats(log *tracing.Logger) ([]TierStat, error) {
	defer tracing.ProfilePoint(log, "Assignments tier stats completed", "repository.assignments.tier.stats")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var stats []TierStat
	err := x.db.WithContext(ctx).
		Model(&entities.TierAssignment{}).
		Select("tier, count(*) as count, array_agg(user_id order by user_id) as users").
		Group("tier").
		Order("count desc").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tier stats: %w", err)
	}

	return stats, nil
}
