package deduplication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autofilter/sources/configuration"
	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/repository"
	"autofilter/sources/tracing"

	"github.com/adrg/strutil"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultSimilarityThreshold = 0.85
	defaultGroupLimit          = 20
)

// Catalog is the slice of the files repository the detector needs.
type Catalog interface {
	ListAll(ctx context.Context, log *tracing.Logger) ([]*entities.File, error)
	SizeGroups(ctx context.Context, log *tracing.Logger, limit int) ([]repository.SizeGroup, error)
	TypeYearGroups(ctx context.Context, log *tracing.Logger, limit int) ([]repository.TypeYearGroup, error)
}

// GroupStore is the slice of the duplicates repository the detector needs.
type GroupStore interface {
	Upsert(ctx context.Context, log *tracing.Logger, group *entities.DuplicateGroup) error
	List(log *tracing.Logger, status string, limit int) ([]*entities.DuplicateGroup, error)
	MarkResolved(log *tracing.Logger, duplicateID string) error
	FlagMemberDeleted(log *tracing.Logger, fileID string) (int64, error)
}

// Detector finds probable duplicates in the file catalog with three
// independent strategies and persists each cluster under a deterministic
// id derived from the strategy and the original file. Re-running a pass
// overwrites earlier results for the same originals instead of piling up
// new groups.
type Detector struct {
	catalog Catalog
	groups  GroupStore
	config  *configuration.Config
	metric  strutil.StringMetric
}

func NewDetector(catalog Catalog, groups GroupStore, config *configuration.Config) *Detector {
	return &Detector{catalog: catalog, groups: groups, config: config, metric: sequenceRatio{}}
}

// normalizeName folds a filename for comparison. NFKC takes care of
// full-width and composed variants that show up in catalogs fed from
// Telegram captions.
func normalizeName(name string) string {
	return strings.ToLower(norm.NFKC.String(name))
}

func (x *Detector) effectiveThreshold(threshold float64) float64 {
	if threshold > 0 && threshold <= 1 {
		return threshold
	}
	if x.config.Deduplication.SimilarityThreshold > 0 {
		return x.config.Deduplication.SimilarityThreshold
	}
	return defaultSimilarityThreshold
}

func (x *Detector) effectiveLimit(limit int) int {
	if limit > 0 {
		return limit
	}
	if x.config.Deduplication.DefaultLimit > 0 {
		return x.config.Deduplication.DefaultLimit
	}
	return defaultGroupLimit
}

// FindByFilenameSimilarity clusters files whose normalized names score at
// or above the threshold. Single pairwise pass over the catalog in
// insertion order, quadratic in catalog size. A file absorbed by an
// earlier group never seeds a group of its own, so the earliest file of
// a cluster becomes its original; it can still turn up as a member of a
// later group whose original it resembles.
func (x *Detector) FindByFilenameSimilarity(ctx context.Context, log *tracing.Logger, threshold float64, limit int) ([]*entities.DuplicateGroup, error) {
	defer tracing.ProfilePoint(log, "Filename similarity pass completed", "deduplication.similarity")()

	threshold = x.effectiveThreshold(threshold)
	limit = x.effectiveLimit(limit)

	files, err := x.catalog.ListAll(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	names := make([]string, len(files))
	for i, file := range files {
		names[i] = normalizeName(file.FileName)
	}

	absorbed := make([]bool, len(files))
	var groups []*entities.DuplicateGroup

	for i := 0; i < len(files) && len(groups) < limit; i++ {
		if absorbed[i] {
			continue
		}

		original := files[i]
		members := []entities.DuplicateMember{memberOf(original, scoreOf(1), 0)}

		for j := i + 1; j < len(files); j++ {
			score := strutil.Similarity(names[i], names[j], x.metric)
			if score < threshold {
				continue
			}
			absorbed[j] = true
			members = append(members, memberOf(files[j], scoreOf(score), len(members)))
		}

		if len(members) < 2 {
			continue
		}

		group := x.newGroup(platform.MethodFilenameSimilarity, "sim_", original, members)
		if err := x.groups.Upsert(ctx, log, group); err != nil {
			return nil, fmt.Errorf("failed to store similarity group: %w", err)
		}
		groups = append(groups, group)
	}

	log.I("Filename similarity pass finished", tracing.Method, platform.MethodFilenameSimilarity, tracing.GroupCount, len(groups), "threshold", threshold)
	return groups, nil
}

// FindBySizeMatch clusters files with identical byte sizes. Zero-sized
// entries are ignored upstream. The earliest catalog entry of each
// cluster is the original.
func (x *Detector) FindBySizeMatch(ctx context.Context, log *tracing.Logger, limit int) ([]*entities.DuplicateGroup, error) {
	defer tracing.ProfilePoint(log, "Size match pass completed", "deduplication.size")()

	sizeGroups, err := x.catalog.SizeGroups(ctx, log, x.effectiveLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load size groups: %w", err)
	}

	var groups []*entities.DuplicateGroup
	for _, sg := range sizeGroups {
		if len(sg.Files) < 2 {
			continue
		}

		original := sg.Files[0]
		members := make([]entities.DuplicateMember, 0, len(sg.Files))
		for position, file := range sg.Files {
			members = append(members, memberOf(file, nil, position))
		}

		group := x.newGroup(platform.MethodSizeMatch, "size_", original, members)
		if err := x.groups.Upsert(ctx, log, group); err != nil {
			return nil, fmt.Errorf("failed to store size group: %w", err)
		}
		groups = append(groups, group)
	}

	log.I("Size match pass finished", tracing.Method, platform.MethodSizeMatch, tracing.GroupCount, len(groups))
	return groups, nil
}

// FindByContentType clusters files sharing a (type, year) pair. Members
// arrive sorted by descending size, so the largest file of each cluster
// is the original; smaller copies are the review candidates.
func (x *Detector) FindByContentType(ctx context.Context, log *tracing.Logger, limit int) ([]*entities.DuplicateGroup, error) {
	defer tracing.ProfilePoint(log, "Content type pass completed", "deduplication.content")()

	typeGroups, err := x.catalog.TypeYearGroups(ctx, log, x.effectiveLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load type groups: %w", err)
	}

	var groups []*entities.DuplicateGroup
	for _, tg := range typeGroups {
		if len(tg.Files) < 2 {
			continue
		}

		original := tg.Files[0]
		members := make([]entities.DuplicateMember, 0, len(tg.Files))
		for position, file := range tg.Files {
			members = append(members, memberOf(file, nil, position))
		}

		group := x.newGroup(platform.MethodContentType, "content_", original, members)
		if err := x.groups.Upsert(ctx, log, group); err != nil {
			return nil, fmt.Errorf("failed to store content type group: %w", err)
		}
		groups = append(groups, group)
	}

	log.I("Content type pass finished", tracing.Method, platform.MethodContentType, tracing.GroupCount, len(groups))
	return groups, nil
}

// GetAllDuplicates returns stored groups filtered by status, newest
// detections first. Empty status means unresolved.
func (x *Detector) GetAllDuplicates(log *tracing.Logger, status string, limit int) ([]*entities.DuplicateGroup, error) {
	if status == "" {
		status = entities.StatusUnresolved
	}
	return x.groups.List(log, status, x.effectiveLimit(limit))
}

// MarkAsResolved closes a group after admin review.
func (x *Detector) MarkAsResolved(log *tracing.Logger, duplicateID string) error {
	return x.groups.MarkResolved(log, duplicateID)
}

// DeleteDuplicate flags a file as removed in every group that mentions
// it and reports how many member rows were touched. The catalog entry
// itself is owned by the indexer and stays in place.
func (x *Detector) DeleteDuplicate(log *tracing.Logger, fileID string) (int64, error) {
	return x.groups.FlagMemberDeleted(log, fileID)
}

func (x *Detector) newGroup(method, prefix string, original *entities.File, members []entities.DuplicateMember) *entities.DuplicateGroup {
	return &entities.DuplicateGroup{
		DuplicateID:      prefix + original.FileID,
		Method:           method,
		OriginalFileID:   original.FileID,
		OriginalFileName: original.FileName,
		OriginalSize:     original.Size,
		Status:           entities.StatusUnresolved,
		DetectedAt:       time.Now(),
		Members:          members,
	}
}

func memberOf(file *entities.File, similarity *float64, position int) entities.DuplicateMember {
	return entities.DuplicateMember{
		FileID:     file.FileID,
		FileName:   file.FileName,
		Size:       file.Size,
		Similarity: similarity,
		Position:   position,
	}
}

func scoreOf(score float64) *float64 {
	return &score
}
