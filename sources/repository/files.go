package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"gorm.io/gorm"
)

var ErrFileNotFound = errors.New("file not found")

type FilesRepository struct {
	db *gorm.DB
}

func NewFilesRepository(db *gorm.DB) *FilesRepository {
	return &FilesRepository{db: db}
}

func (x *FilesRepository) GetByID(log *tracing.Logger, fileID string) (*entities.File, error) {
	defer tracing.ProfilePoint(log, "Files get by id completed", "repository.files.get.by.id", tracing.FileId, fileID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var file entities.File
	err := x.db.WithContext(ctx).Where("file_id = ?", fileID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return &file, nil
}

// Search matches every keyword against name, caption and the keyword
// column. Keywords are AND-ed, each matched case-insensitively.
func (x *FilesRepository) Search(log *tracing.Logger, keywords []string, limit int) ([]*entities.File, error) {
	defer tracing.ProfilePoint(log, "Files search completed", "repository.files.search", "keywords", keywords)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	q := x.db.WithContext(ctx).Model(&entities.File{})
	for _, kw := range keywords {
		like := "%" + kw + "%"
		q = q.Where("file_name ILIKE ? OR caption ILIKE ? OR ? = ANY(keywords)", like, like, kw)
	}

	var files []*entities.File
	err := q.Order("created_at desc").Limit(limit).Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}

	return files, nil
}

// Similar returns catalog entries of the same type within two years of the
// reference file, the reference itself excluded.
func (x *FilesRepository) Similar(log *tracing.Logger, file *entities.File, limit int) ([]*entities.File, error) {
	defer tracing.ProfilePoint(log, "Files similar completed", "repository.files.similar", tracing.FileId, file.FileID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	q := x.db.WithContext(ctx).Model(&entities.File{}).Where("file_id <> ?", file.FileID)

	if file.Type != nil {
		q = q.Where("type = ?", *file.Type)
	}
	if file.Year != nil {
		if year, err := strconv.Atoi(*file.Year); err == nil {
			q = q.Where("year >= ? AND year <= ?", strconv.Itoa(year-2), strconv.Itoa(year+2))
		}
	}
	if file.Genre != nil && *file.Genre != "" {
		q = q.Where("genre = ?", *file.Genre)
	}

	var files []*entities.File
	err := q.Limit(limit).Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find similar files: %w", err)
	}

	return files, nil
}

// ListAll streams the whole catalog in insertion order. Used by the
// similarity detector and the bulk exporter; both are bounded-catalog
// batch paths, which is why this takes the caller's context instead of
// cutting its own timeout.
func (x *FilesRepository) ListAll(ctx context.Context, log *tracing.Logger) ([]*entities.File, error) {
	defer tracing.ProfilePoint(log, "Files list all completed", "repository.files.list.all")()

	var files []*entities.File
	err := x.db.WithContext(ctx).Order("created_at").Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

type SizeGroup struct {
	Size  int64
	Files []*entities.File
}

// SizeGroups returns files sharing an identical positive size, largest
// groups first, members in catalog order.
func (x *FilesRepository) SizeGroups(ctx context.Context, log *tracing.Logger, limit int) ([]SizeGroup, error) {
	defer tracing.ProfilePoint(log, "Files size groups completed", "repository.files.size.groups")()

	var sizes []int64
	err := x.db.WithContext(ctx).
		Model(&entities.File{}).
		Select("size").
		Where("size > 0").
		Group("size").
		Having("count(*) > 1").
		Order("count(*) desc").
		Limit(limit).
		Scan(&sizes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group files by size: %w", err)
	}

	groups := make([]SizeGroup, 0, len(sizes))
	for _, size := range sizes {
		var files []*entities.File
		err := x.db.WithContext(ctx).Where("size = ?", size).Order("created_at").Find(&files).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load size group %d: %w", size, err)
		}
		groups = append(groups, SizeGroup{Size: size, Files: files})
	}

	return groups, nil
}

type TypeYearGroup struct {
	Type  string
	Year  string
	Files []*entities.File
}

// TypeYearGroups returns files sharing a (type, year) pair, largest groups
// first, members sorted by descending size.
func (x *FilesRepository) TypeYearGroups(ctx context.Context, log *tracing.Logger, limit int) ([]TypeYearGroup, error) {
	defer tracing.ProfilePoint(log, "Files type year groups completed", "repository.files.type.year.groups")()

	var keys []struct {
		Type string
		Year string
	}
	err := x.db.WithContext(ctx).
		Model(&entities.File{}).
		Select("type, year").
		Where("type IS NOT NULL AND year IS NOT NULL").
		Group("type, year").
		Having("count(*) > 1").
		Order("count(*) desc").
		Limit(limit).
		Scan(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group files by type and year: %w", err)
	}

	groups := make([]TypeYearGroup, 0, len(keys))
	for _, key := range keys {
		var files []*entities.File
		err := x.db.WithContext(ctx).
			Where("type = ? AND year = ?", key.Type, key.Year).
			Order("size desc").
			Find(&files).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load type group %s/%s: %w", key.Type, key.Year, err)
		}
		groups = append(groups, TypeYearGroup{Type: key.Type, Year: key.Year, Files: files})
	}

	return groups, nil
}
