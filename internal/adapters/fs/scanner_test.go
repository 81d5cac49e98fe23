package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gimport/internal/adapters/fs"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setMTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func mtimeOf(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime()
}

func newScanner(t *testing.T) *fs.Scanner {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return fs.NewScanner(fs.NewResolver(), log)
}

func TestScanner_NoSidecarIsNoop(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "m.go")
	writeFile(t, src, "package main")
	writeFile(t, filepath.Join(tmpDir, "m.inc"), "1")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	setMTime(t, src, base)
	setMTime(t, filepath.Join(tmpDir, "m.inc"), base.Add(time.Minute))

	require.NoError(t, newScanner(t).CheckAndTouch(src))
	assert.True(t, mtimeOf(t, src).Equal(base))
}

func TestScanner_TouchesToNewestDependency(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "m.go")
	writeFile(t, src, "package main")
	writeFile(t, filepath.Join(tmpDir, "a.inc"), "a")
	writeFile(t, filepath.Join(tmpDir, "inc", "b.inc"), "b")
	writeFile(t, domain.DependencyFile(src), "# includes\na.inc\n\n  inc/*.inc  \nmissing_*.inc\n")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	setMTime(t, src, base)
	setMTime(t, domain.DependencyFile(src), base.Add(-time.Minute))
	setMTime(t, filepath.Join(tmpDir, "a.inc"), base.Add(10*time.Second))
	setMTime(t, filepath.Join(tmpDir, "inc", "b.inc"), base.Add(20*time.Second))

	require.NoError(t, newScanner(t).CheckAndTouch(src))
	assert.True(t, mtimeOf(t, src).Equal(base.Add(20*time.Second)))
}

func TestScanner_OlderDependenciesLeaveSourceAlone(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "m.go")
	writeFile(t, src, "package main")
	writeFile(t, filepath.Join(tmpDir, "a.inc"), "a")
	writeFile(t, domain.DependencyFile(src), "a.inc\n")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	setMTime(t, src, base)
	setMTime(t, domain.DependencyFile(src), base.Add(-time.Minute))
	setMTime(t, filepath.Join(tmpDir, "a.inc"), base.Add(-time.Minute))

	require.NoError(t, newScanner(t).CheckAndTouch(src))
	assert.True(t, mtimeOf(t, src).Equal(base))
}

func TestScanner_SidecarsCountAsDependencies(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "m.go")
	writeFile(t, src, "package main")
	writeFile(t, domain.DependencyFile(src), "")
	writeFile(t, domain.CustomizationFile(src), "tags: [x]\n")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	setMTime(t, src, base)
	setMTime(t, domain.DependencyFile(src), base.Add(5*time.Second))
	setMTime(t, domain.CustomizationFile(src), base.Add(9*time.Second))

	require.NoError(t, newScanner(t).CheckAndTouch(src))
	assert.True(t, mtimeOf(t, src).Equal(base.Add(9*time.Second)))
}

func TestScanner_BadPattern(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "m.go")
	writeFile(t, src, "package main")
	writeFile(t, domain.DependencyFile(src), "[\n")

	err := newScanner(t).CheckAndTouch(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrDependencyScanFailed.Error())
}

func TestScanner_MissingSource(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "m.go")
	writeFile(t, domain.DependencyFile(src), "")

	err := newScanner(t).CheckAndTouch(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrDependencyScanFailed.Error())
}

func TestScanner_Dependencies(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "m.go")
	writeFile(t, src, "package main")
	writeFile(t, filepath.Join(tmpDir, "b.inc"), "b")
	writeFile(t, filepath.Join(tmpDir, "a.inc"), "a")
	writeFile(t, domain.DependencyFile(src), "*.inc\n")
	writeFile(t, domain.CustomizationFile(src), "tags: [x]\n")

	deps, err := newScanner(t).Dependencies(src)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "a.inc"),
		filepath.Join(tmpDir, "b.inc"),
		domain.DependencyFile(src),
		domain.CustomizationFile(src),
	}, deps)

	none, err := newScanner(t).Dependencies(filepath.Join(tmpDir, "other.go"))
	require.NoError(t, err)
	assert.Nil(t, none)
}
