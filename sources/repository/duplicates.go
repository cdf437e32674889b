package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDuplicateNotFound = errors.New("duplicate group not found")

type DuplicatesRepository struct {
	db *gorm.DB
}

func NewDuplicatesRepository(db *gorm.DB) *DuplicatesRepository {
	return &DuplicatesRepository{db: db}
}

// Upsert replaces the group keyed by its duplicate id, members included.
// Re-running a detection pass therefore converges instead of accumulating
// duplicate-of-duplicates records.
func (x *DuplicatesRepository) Upsert(ctx context.Context, log *tracing.Logger, group *entities.DuplicateGroup) error {
	defer tracing.ProfilePoint(log, "Duplicates upsert completed", "repository.duplicates.upsert", tracing.DuplicateId, group.DuplicateID)()

	members := group.Members
	group.Members = nil

	return x.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "duplicate_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"method", "original_file_id", "original_file_name", "original_size", "status", "detected_at",
			}),
		}).Create(group).Error
		if err != nil {
			return fmt.Errorf("failed to upsert duplicate group: %w", err)
		}

		err = tx.Where("group_id = ?", group.DuplicateID).Delete(&entities.DuplicateMember{}).Error
		if err != nil {
			return fmt.Errorf("failed to clear group members: %w", err)
		}

		for i := range members {
			members[i].GroupID = group.DuplicateID
			members[i].Position = i
		}
		if len(members) > 0 {
			if err := tx.Create(&members).Error; err != nil {
				return fmt.Errorf("failed to insert group members: %w", err)
			}
		}

		group.Members = members
		return nil
	})
}

func (x *DuplicatesRepository) List(log *tracing.Logger, status string, limit int) ([]*entities.DuplicateGroup, error) {
	defer tracing.ProfilePoint(log, "Duplicates list completed", "repository.duplicates.list", "status", status)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var groups []*entities.DuplicateGroup
	err := x.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("status = ?", status).
		Order("detected_at desc").
		Limit(limit).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicates: %w", err)
	}

	return groups, nil
}

// MarkResolved transitions unresolved -> resolved and stamps resolved_at.
// Resolving an already-resolved group is a no-op, not an error.
func (x *DuplicatesRepository) MarkResolved(log *tracing.Logger, duplicateID string) error {
	defer tracing.ProfilePoint(log, "Duplicates mark resolved completed", "repository.duplicates.mark.resolved", tracing.DuplicateId, duplicateID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var group entities.DuplicateGroup
	err := x.db.WithContext(ctx).Where("duplicate_id = ?", duplicateID).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDuplicateNotFound
		}
		return fmt.Errorf("failed to load duplicate group: %w", err)
	}

	if group.Status == entities.StatusResolved {
		return nil
	}

	now := time.Now()
	err = x.db.WithContext(ctx).
		Model(&entities.DuplicateGroup{}).
		Where("duplicate_id = ? AND status = ?", duplicateID, entities.StatusUnresolved).
		Updates(map[string]any{"status": entities.StatusResolved, "resolved_at": now}).Error
	if err != nil {
		log.E("Failed to mark duplicate as resolved", tracing.InnerError, err)
		return err
	}

	log.I("Duplicate resolved", tracing.DuplicateId, duplicateID)
	return nil
}

// FlagMemberDeleted marks every member entry matching the file id across
// all groups. Groups stay in place and actual file storage is untouched;
// this is bookkeeping for the admin review workflow.
func (x *DuplicatesRepository) FlagMemberDeleted(log *tracing.Logger, fileID string) (int64, error) {
	defer tracing.ProfilePoint(log, "Duplicates flag member deleted completed", "repository.duplicates.flag.member.deleted", tracing.FileId, fileID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	now := time.Now()
	res := x.db.WithContext(ctx).
		Model(&entities.DuplicateMember{}).
		Where("file_id = ? AND deleted = false", fileID).
		Updates(map[string]any{"deleted": true, "deleted_at": now})
	if res.Error != nil {
		log.E("Failed to flag duplicate member", tracing.InnerError, res.Error)
		return 0, res.Error
	}

	return res.RowsAffected, nil
}
