package augment

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedeck/enrich/pkg/course"
)

func TestAugmenter_Run(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	writeCourseFile(t, dir, "b-course.json", `{"id": "b", "title": "B", "items": [{"id": "i1", "title": "Needs work"}]}`)
	writeCourseFile(t, dir, "a-course.json", `{"id": "a", "title": "A", "items": [{"id": "i1", "title": "Needs work"}]}`)
	writeCourseFile(t, dir, "notes.txt", "not a course file")

	a := testAugmenter(Options{LocalOnly: true})

	summary, err := a.Run(ctx, dir, "")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 2, summary.Written)
	assert.Zero(t, summary.Failed)

	// Both course files got backups; the stray text file is untouched.
	_, err = os.Stat(dir + "/a-course.json" + course.BackupSuffix)
	require.NoError(t, err)
	_, err = os.Stat(dir + "/b-course.json" + course.BackupSuffix)
	require.NoError(t, err)
	_, err = os.Stat(dir + "/notes.txt" + course.BackupSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestAugmenter_Run_StemFilter(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	writeCourseFile(t, dir, "alpha.json", `{"id": "a", "title": "A", "items": [{"id": "i1", "title": "Needs work"}]}`)
	writeCourseFile(t, dir, "beta.json", `{"id": "b", "title": "B", "items": [{"id": "i1", "title": "Needs work"}]}`)

	a := testAugmenter(Options{LocalOnly: true})

	summary, err := a.Run(ctx, dir, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 1, summary.Written)

	_, err = os.Stat(dir + "/beta.json" + course.BackupSuffix)
	assert.True(t, os.IsNotExist(err), "filtered-out file must not be touched")
}

func TestAugmenter_Run_FailureIsolation(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	writeCourseFile(t, dir, "a-broken.json", `{not json at all`)
	writeCourseFile(t, dir, "b-good.json", `{"id": "b", "title": "B", "items": [{"id": "i1", "title": "Needs work"}]}`)

	a := testAugmenter(Options{LocalOnly: true})

	summary, err := a.Run(ctx, dir, "")
	require.NoError(t, err, "file-level errors are contained at the batch level")
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Written)

	// The good file after the broken one was still processed.
	doc, _, err := course.Load(ctx, dir+"/b-good.json")
	require.NoError(t, err)
	assert.False(t, doc.Items[0].NeedsSummary())
}

func TestAugmenter_Run_SkipsBackupFiles(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	writeCourseFile(t, dir, "a.json", `{"id": "a", "title": "A", "items": [{"id": "i1", "title": "Needs work"}]}`)

	a := testAugmenter(Options{LocalOnly: true})

	// First run creates a.json.bak; the second run must not treat the
	// backup as a course file.
	_, err := a.Run(ctx, dir, "")
	require.NoError(t, err)

	summary, err := a.Run(ctx, dir, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)
	assert.Zero(t, summary.Written, "second run over augmented directory writes nothing")

	_, err = os.Stat(dir + "/a.json.bak" + course.BackupSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestAugmenter_Run_IgnoreGlobs(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	writeCourseFile(t, dir, "draft-a.json", `{"id": "a", "title": "A", "items": [{"id": "i1", "title": "Needs work"}]}`)
	writeCourseFile(t, dir, "b.json", `{"id": "b", "title": "B", "items": [{"id": "i1", "title": "Needs work"}]}`)

	a := testAugmenter(Options{LocalOnly: true, Ignore: []string{"draft-*"}})

	summary, err := a.Run(ctx, dir, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)

	_, err = os.Stat(dir + "/draft-a.json" + course.BackupSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestAugmenter_Run_DryRunPlannedCount(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	writeCourseFile(t, dir, "a.json", `{
  "id": "a",
  "title": "A",
  "items": [
    {"id": "i1", "title": "Missing both"},
    {"id": "i2", "title": "Complete", "summary": "Done", "estimated_minutes": 10},
    {"id": "i3", "title": "Missing estimate", "summary": "Done"}
  ]
}`)

	console := testConsole()
	a := testAugmenter(Options{DryRun: true, Console: console})

	summary, err := a.Run(ctx, dir, "")
	require.NoError(t, err)
	assert.Zero(t, summary.Written)
	assert.Equal(t, 2, summary.Planned, "one intent per item missing at least one field")
}

func TestAugmenter_Run_MissingDirectory(t *testing.T) {
	ctx := testContext(t)
	a := testAugmenter(Options{LocalOnly: true})

	_, err := a.Run(ctx, t.TempDir()+"/nope", "")
	require.Error(t, err)
}
