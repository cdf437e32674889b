package repository

import (
	"context"
	"fmt"
	"time"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"gorm.io/gorm"
)

type AccessesRepository struct {
	db *gorm.DB
}

func NewAccessesRepository(db *gorm.DB) *AccessesRepository {
	return &AccessesRepository{db: db}
}

func (x *AccessesRepository) Record(log *tracing.Logger, fileID string, userID int64) error {
	defer tracing.ProfilePoint(log, "Accesses record completed", "repository.accesses.record", tracing.FileId, fileID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	access := &entities.FileAccess{
		FileID:     fileID,
		UserID:     userID,
		AccessedAt: time.Now(),
	}

	if err := x.db.WithContext(ctx).Create(access).Error; err != nil {
		log.E("Failed to record file access", tracing.InnerError, err)
		return err
	}

	return nil
}

type AccessCount struct {
	FileID string `gorm:"column:file_id"`
	Count  int64  `gorm:"column:count"`
}

func (x *AccessesRepository) MostAccessed(log *tracing.Logger, since time.Time, limit int) ([]AccessCount, error) {
	defer tracing.ProfilePoint(log, "Accesses most accessed completed", "repository.accesses.most.accessed")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var counts []AccessCount
	err := x.db.WithContext(ctx).
		Model(&entities.FileAccess{}).
		Select("file_id, count(*) as count").
		Where("accessed_at >= ?", since).
		Group("file_id").
		Order("count desc").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate file accesses: %w", err)
	}

	return counts, nil
}
