package deduplication

import (
	"context"
	"testing"

	"autofilter/sources/configuration"
	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/repository"
	"autofilter/sources/tracing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	files      []*entities.File
	sizeGroups []repository.SizeGroup
	typeGroups []repository.TypeYearGroup
}

func (x *fakeCatalog) ListAll(ctx context.Context, log *tracing.Logger) ([]*entities.File, error) {
	return x.files, nil
}

func (x *fakeCatalog) SizeGroups(ctx context.Context, log *tracing.Logger, limit int) ([]repository.SizeGroup, error) {
	if limit < len(x.sizeGroups) {
		return x.sizeGroups[:limit], nil
	}
	return x.sizeGroups, nil
}

func (x *fakeCatalog) TypeYearGroups(ctx context.Context, log *tracing.Logger, limit int) ([]repository.TypeYearGroup, error) {
	if limit < len(x.typeGroups) {
		return x.typeGroups[:limit], nil
	}
	return x.typeGroups, nil
}

type fakeGroups struct {
	stored map[string]*entities.DuplicateGroup
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{stored: map[string]*entities.DuplicateGroup{}}
}

func (x *fakeGroups) Upsert(ctx context.Context, log *tracing.Logger, group *entities.DuplicateGroup) error {
	x.stored[group.DuplicateID] = group
	return nil
}

func (x *fakeGroups) List(log *tracing.Logger, status string, limit int) ([]*entities.DuplicateGroup, error) {
	var result []*entities.DuplicateGroup
	for _, group := range x.stored {
		if group.Status == status && len(result) < limit {
			result = append(result, group)
		}
	}
	return result, nil
}

func (x *fakeGroups) MarkResolved(log *tracing.Logger, duplicateID string) error {
	group, ok := x.stored[duplicateID]
	if !ok {
		return repository.ErrDuplicateNotFound
	}
	group.Status = entities.StatusResolved
	return nil
}

func (x *fakeGroups) FlagMemberDeleted(log *tracing.Logger, fileID string) (int64, error) {
	var flagged int64
	for _, group := range x.stored {
		for i := range group.Members {
			if group.Members[i].FileID == fileID && !group.Members[i].Deleted {
				group.Members[i].Deleted = true
				flagged++
			}
		}
	}
	return flagged, nil
}

func file(id, name string, size int64) *entities.File {
	return &entities.File{FileID: id, FileName: name, Size: size}
}

func newTestDetector(catalog *fakeCatalog) (*Detector, *fakeGroups, *tracing.Logger) {
	groups := newFakeGroups()
	detector := NewDetector(catalog, groups, &configuration.Config{})
	return detector, groups, tracing.NewConsoleLogger()
}

func TestFilenameSimilarityGroupsNearIdenticalNames(t *testing.T) {
	catalog := &fakeCatalog{files: []*entities.File{
		file("f1", "The.Matrix.1999.mkv", 700),
		file("f2", "The Matrix 1999.mkv", 701),
		file("f3", "Inception.2010.mkv", 800),
	}}
	detector, _, log := newTestDetector(catalog)

	groups, err := detector.FindByFilenameSimilarity(context.Background(), log, 0.85, 0)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Equal(t, "sim_f1", group.DuplicateID)
	assert.Equal(t, platform.MethodFilenameSimilarity, group.Method)
	assert.Equal(t, "f1", group.OriginalFileID)
	assert.Equal(t, entities.StatusUnresolved, group.Status)

	require.Len(t, group.Members, 2)
	assert.Equal(t, "f1", group.Members[0].FileID)
	assert.Equal(t, "f2", group.Members[1].FileID)
	require.NotNil(t, group.Members[1].Similarity)
	assert.GreaterOrEqual(t, *group.Members[1].Similarity, 0.85)
}

func TestFilenameSimilarityRejectsNearMissNames(t *testing.T) {
	// Distinct releases share long runs of characters; the sequence ratio
	// keeps them apart where positional metrics would merge them.
	catalog := &fakeCatalog{files: []*entities.File{
		file("f1", "The.Matrix.1999.mkv", 700),
		file("f2", "The.Mask.1994.mkv", 650),
		file("f3", "The.Martian.2015.mkv", 900),
	}}
	detector, groups, log := newTestDetector(catalog)

	found, err := detector.FindByFilenameSimilarity(context.Background(), log, 0.85, 0)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Empty(t, groups.stored)
}

func TestSequenceRatio(t *testing.T) {
	metric := sequenceRatio{}

	assert.Equal(t, 1.0, metric.Compare("the matrix 1999.mkv", "the matrix 1999.mkv"))
	assert.InDelta(t, 0.8947, metric.Compare("the.matrix.1999.mkv", "the matrix 1999.mkv"), 0.0001)
	assert.InDelta(t, 0.7778, metric.Compare("the.matrix.1999.mkv", "the.mask.1994.mkv"), 0.0001)
	assert.Equal(t, 1.0, metric.Compare("", ""))
	assert.Equal(t, 0.0, metric.Compare("abc", "xyz"))
}

func TestFilenameSimilarityAbsorbedFileJoinsLaterGroups(t *testing.T) {
	// "b" resembles both "a" and "c", while "a" and "c" fall short of the
	// threshold against each other. Absorbing "b" into the first group must
	// not hide the second pairing; "b" only stops seeding groups itself.
	catalog := &fakeCatalog{files: []*entities.File{
		file("a", "vacation video 2020.mp4 (copy)", 10),
		file("c", "my vacation video 2020.mp4", 11),
		file("b", "vacation video 2020.mp4", 12),
	}}
	detector, groups, log := newTestDetector(catalog)

	found, err := detector.FindByFilenameSimilarity(context.Background(), log, 0.85, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "sim_a", found[0].DuplicateID)
	assert.Equal(t, "sim_c", found[1].DuplicateID)
	require.Len(t, found[0].Members, 2)
	require.Len(t, found[1].Members, 2)
	assert.Equal(t, "b", found[0].Members[1].FileID)
	assert.Equal(t, "b", found[1].Members[1].FileID)
	assert.Len(t, groups.stored, 2)
}

func TestFilenameSimilarityEarliestFileClaimsTheGroup(t *testing.T) {
	catalog := &fakeCatalog{files: []*entities.File{
		file("a", "report 2020 final.pdf", 10),
		file("b", "report 2020 final.pdf", 11),
		file("c", "report 2020 final v2.pdf", 12),
	}}
	detector, groups, log := newTestDetector(catalog)

	found, err := detector.FindByFilenameSimilarity(context.Background(), log, 0.85, 0)
	require.NoError(t, err)

	require.Len(t, found, 1, "later files already claimed must not seed their own groups")
	assert.Equal(t, "sim_a", found[0].DuplicateID)
	assert.Len(t, found[0].Members, 3)
	assert.Len(t, groups.stored, 1)
}

func TestFilenameSimilarityRerunOverwritesSameGroup(t *testing.T) {
	catalog := &fakeCatalog{files: []*entities.File{
		file("f1", "The.Matrix.1999.mkv", 700),
		file("f2", "The Matrix 1999.mkv", 701),
	}}
	detector, groups, log := newTestDetector(catalog)

	_, err := detector.FindByFilenameSimilarity(context.Background(), log, 0.85, 0)
	require.NoError(t, err)
	_, err = detector.FindByFilenameSimilarity(context.Background(), log, 0.85, 0)
	require.NoError(t, err)

	assert.Len(t, groups.stored, 1, "deterministic ids must keep reruns idempotent")
}

func TestFilenameSimilarityRespectsGroupLimit(t *testing.T) {
	catalog := &fakeCatalog{files: []*entities.File{
		file("a1", "alpha movie 2001.mkv", 1),
		file("a2", "alpha movie 2001.mkv", 2),
		file("b1", "bravo series 2002.mkv", 3),
		file("b2", "bravo series 2002.mkv", 4),
	}}
	detector, _, log := newTestDetector(catalog)

	groups, err := detector.FindByFilenameSimilarity(context.Background(), log, 0.85, 1)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestFilenameSimilarityNormalizesUnicodeNames(t *testing.T) {
	// Full-width latin letters fold to their ascii forms under NFKC.
	catalog := &fakeCatalog{files: []*entities.File{
		file("f1", "ＴＨＥ ＭＡＴＲＩＸ 1999.mkv", 700),
		file("f2", "the matrix 1999.mkv", 701),
	}}
	detector, _, log := newTestDetector(catalog)

	groups, err := detector.FindByFilenameSimilarity(context.Background(), log, 0.85, 0)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestSizeMatchUsesEarliestFileAsOriginal(t *testing.T) {
	catalog := &fakeCatalog{sizeGroups: []repository.SizeGroup{
		{Size: 500, Files: []*entities.File{
			file("old", "first_upload.mkv", 500),
			file("new", "second_upload.mkv", 500),
		}},
	}}
	detector, _, log := newTestDetector(catalog)

	groups, err := detector.FindBySizeMatch(context.Background(), log, 0)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Equal(t, "size_old", group.DuplicateID)
	assert.Equal(t, platform.MethodSizeMatch, group.Method)
	assert.Equal(t, "old", group.OriginalFileID)
	assert.Len(t, group.Members, 2)
	assert.Nil(t, group.Members[0].Similarity, "size matches carry no similarity score")
}

func TestContentTypeUsesLargestFileAsOriginal(t *testing.T) {
	catalog := &fakeCatalog{typeGroups: []repository.TypeYearGroup{
		{Type: "movie", Year: "1999", Files: []*entities.File{
			file("big", "matrix_1080p.mkv", 2000),
			file("small", "matrix_480p.mkv", 700),
		}},
	}}
	detector, _, log := newTestDetector(catalog)

	groups, err := detector.FindByContentType(context.Background(), log, 0)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Equal(t, "content_big", group.DuplicateID)
	assert.Equal(t, platform.MethodContentType, group.Method)
	assert.Equal(t, "big", group.OriginalFileID)
	assert.Equal(t, int64(2000), group.OriginalSize)
}

func TestGetAllDuplicatesDefaultsToUnresolved(t *testing.T) {
	catalog := &fakeCatalog{sizeGroups: []repository.SizeGroup{
		{Size: 500, Files: []*entities.File{
			file("a", "a.mkv", 500),
			file("b", "b.mkv", 500),
		}},
	}}
	detector, _, log := newTestDetector(catalog)

	_, err := detector.FindBySizeMatch(context.Background(), log, 0)
	require.NoError(t, err)

	unresolved, err := detector.GetAllDuplicates(log, "", 0)
	require.NoError(t, err)
	assert.Len(t, unresolved, 1)

	require.NoError(t, detector.MarkAsResolved(log, "size_a"))

	unresolved, err = detector.GetAllDuplicates(log, "", 0)
	require.NoError(t, err)
	assert.Empty(t, unresolved)

	resolved, err := detector.GetAllDuplicates(log, entities.StatusResolved, 0)
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestDeleteDuplicateFlagsEveryMention(t *testing.T) {
	catalog := &fakeCatalog{
		sizeGroups: []repository.SizeGroup{
			{Size: 500, Files: []*entities.File{
				file("a", "a.mkv", 500),
				file("b", "b.mkv", 500),
			}},
		},
		typeGroups: []repository.TypeYearGroup{
			{Type: "movie", Year: "1999", Files: []*entities.File{
				file("b", "b.mkv", 500),
				file("c", "c.mkv", 400),
			}},
		},
	}
	detector, _, log := newTestDetector(catalog)

	_, err := detector.FindBySizeMatch(context.Background(), log, 0)
	require.NoError(t, err)
	_, err = detector.FindByContentType(context.Background(), log, 0)
	require.NoError(t, err)

	flagged, err := detector.DeleteDuplicate(log, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), flagged)

	flagged, err = detector.DeleteDuplicate(log, "b")
	require.NoError(t, err)
	assert.Zero(t, flagged, "flagging is idempotent")
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "the matrix 1999.mkv", normalizeName("The Matrix 1999.MKV"))
	assert.Equal(t, "abc.mkv", normalizeName("ＡＢＣ.mkv"))
}
