package search

import (
	"time"

	"autofilter/sources/configuration"
	"autofilter/sources/persistence/entities"
	"autofilter/sources/repository"
	"autofilter/sources/tracing"
)

const popularWindow = 7 * 24 * time.Hour

// Engine ties query understanding to the catalog. Quota and feature
// gating happen at the command layer; the engine assumes the caller is
// already allowed to search.
type Engine struct {
	files     *repository.FilesRepository
	accesses  *repository.AccessesRepository
	extractor *KeywordExtractor
	config    *configuration.Config
}

func NewEngine(files *repository.FilesRepository, accesses *repository.AccessesRepository, extractor *KeywordExtractor, config *configuration.Config) *Engine {
	return &Engine{files: files, accesses: accesses, extractor: extractor, config: config}
}

func (x *Engine) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	if x.config.Search.ResultLimit > 0 {
		return x.config.Search.ResultLimit
	}
	return 10
}

// Search runs a plain keyword query. All keywords must match.
func (x *Engine) Search(log *tracing.Logger, query string, limit int) ([]*entities.File, error) {
	defer tracing.ProfilePoint(log, "Search completed", "search.query", tracing.Query, query)()

	keywords := Tokenize(query)
	if len(keywords) == 0 {
		return nil, nil
	}

	return x.files.Search(log, keywords, x.limit(limit))
}

// NLPSearch runs the query through the keyword extractor first. Falls
// back to plain tokenization inside the extractor, so results are never
// worse than Search.
func (x *Engine) NLPSearch(log *tracing.Logger, query string, limit int) ([]*entities.File, error) {
	defer tracing.ProfilePoint(log, "NLP search completed", "search.nlp", tracing.Query, query)()

	keywords := x.extractor.Extract(log, query)
	if len(keywords) == 0 {
		return nil, nil
	}

	return x.files.Search(log, keywords, x.limit(limit))
}

// Get resolves one catalog entry by id.
func (x *Engine) Get(log *tracing.Logger, fileID string) (*entities.File, error) {
	return x.files.GetByID(log, fileID)
}

// Popular returns the most requested files of the last week.
func (x *Engine) Popular(log *tracing.Logger, limit int) ([]*entities.File, error) {
	defer tracing.ProfilePoint(log, "Popular files completed", "search.popular")()

	counts, err := x.accesses.MostAccessed(log, time.Now().Add(-popularWindow), x.limit(limit))
	if err != nil {
		return nil, err
	}

	files := make([]*entities.File, 0, len(counts))
	for _, count := range counts {
		file, err := x.files.GetByID(log, count.FileID)
		if err != nil {
			// The catalog entry may have been re-indexed away; skip it.
			log.W("Popular file vanished from catalog", tracing.FileId, count.FileID, tracing.InnerError, err)
			continue
		}
		files = append(files, file)
	}

	return files, nil
}

// SimilarTo recommends catalog entries near the given file by type, year
// and genre.
func (x *Engine) SimilarTo(log *tracing.Logger, fileID string, limit int) ([]*entities.File, error) {
	defer tracing.ProfilePoint(log, "Similar files completed", "search.similar", tracing.FileId, fileID)()

	file, err := x.files.GetByID(log, fileID)
	if err != nil {
		return nil, err
	}

	return x.files.Similar(log, file, x.limit(limit))
}

// RecordAccess notes that a user received a file, feeding Popular.
func (x *Engine) RecordAccess(log *tracing.Logger, fileID string, userID int64) error {
	return x.accesses.Record(log, fileID, userID)
}
