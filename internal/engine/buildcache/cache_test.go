package buildcache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gimport/internal/adapters/cas"
	"go.trai.ch/gimport/internal/adapters/fs"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/gimport/internal/core/ports/mocks"
	"go.trai.ch/gimport/internal/engine/buildcache"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	dir        string
	module     domain.ModuleIdentity
	compiler   *mocks.MockCompiler
	customizer *mocks.MockCustomizer
	logger     *mocks.MockLogger
	cache      *buildcache.Cache
}

func newFixture(t *testing.T, settings buildcache.Settings) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "m.go")
	require.NoError(t, os.WriteFile(src, []byte("package main\n"), 0o600))
	setMTime(t, src, time.Now().Add(-time.Hour))

	f := &fixture{
		dir:        dir,
		module:     domain.NewModuleIdentity("plugins.m", src),
		compiler:   mocks.NewMockCompiler(ctrl),
		customizer: mocks.NewMockCustomizer(ctrl),
		logger:     mocks.NewMockLogger(ctrl),
	}
	f.customizer.EXPECT().Customize(gomock.Any(), gomock.Any()).Return(domain.BuildSpec{}, nil).AnyTimes()
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	f.cache = buildcache.New(
		f.customizer,
		f.compiler,
		cas.NewStore(),
		fs.NewHasher(),
		fs.NewArtifacts(),
		f.logger,
		settings,
	)
	return f
}

func setMTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// compileOK writes the artifact into the requested output directory.
func compileOK(_ context.Context, req domain.CompileRequest) (domain.CompileResult, error) {
	if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
		return domain.CompileResult{}, err
	}
	out := filepath.Join(req.OutputDir, req.Module.ArtifactName())
	if err := os.WriteFile(out, []byte("plugin"), 0o600); err != nil {
		return domain.CompileResult{}, err
	}
	return domain.CompileResult{ArtifactPath: out, Output: []byte("# m\n")}, nil
}

func TestCache_BuildsOnceWhileUpToDate(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK).Times(1)

	first, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)
	second, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.dir, domain.BuildDirName, "m.so"), first)
	assert.Equal(t, first, second)
	assert.DirExists(t, filepath.Join(f.dir, domain.BuildDirName, domain.RecordsDirName))
}

func TestCache_SourceChangeRebuilds(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK).Times(2)

	_, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)

	setMTime(t, f.module.SourcePath, time.Now().Add(time.Hour))

	_, err = f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)
}

func TestCache_CustomizationChangeRebuilds(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK).Times(2)

	gbld := domain.CustomizationFile(f.module.SourcePath)
	require.NoError(t, os.WriteFile(gbld, []byte("flags: [-v]\n"), 0o600))
	setMTime(t, gbld, time.Now().Add(-time.Hour))

	_, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)

	setMTime(t, gbld, time.Now().Add(time.Hour))

	_, err = f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)
}

func TestCache_ForceRebuilds(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK).Times(2)

	_, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)
	_, err = f.cache.Build(context.Background(), f.module, domain.BuildOptions{domain.OptionForce: "true"})
	require.NoError(t, err)
}

func TestCache_OptionChanges(t *testing.T) {
	f := newFixture(t, buildcache.Settings{Defaults: domain.BuildOptions{domain.OptionTags: "a"}})
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK).Times(2)

	_, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)

	// verbose does not change the output.
	_, err = f.cache.Build(context.Background(), f.module, domain.BuildOptions{domain.OptionVerbose: "true"})
	require.NoError(t, err)

	_, err = f.cache.Build(context.Background(), f.module, domain.BuildOptions{domain.OptionTags: "b"})
	require.NoError(t, err)
}

func TestCache_MergesOptionLayers(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, buildcache.Settings{Defaults: domain.BuildOptions{"tags": "a", "race": "true"}})
	customizer := mocks.NewMockCustomizer(ctrl)
	customizer.EXPECT().Customize(gomock.Any(), f.module).Return(domain.BuildSpec{
		Options: domain.BuildOptions{"tags": "c"},
	}, nil)
	cache := buildcache.New(customizer, f.compiler, cas.NewStore(), fs.NewHasher(), fs.NewArtifacts(), f.logger,
		buildcache.Settings{Defaults: domain.BuildOptions{"tags": "a", "race": "true"}})

	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req domain.CompileRequest) (domain.CompileResult, error) {
			assert.Equal(t, domain.BuildOptions{"tags": "c", "race": "false", "gcflags": "-N"}, req.Options)
			return compileOK(ctx, req)
		})

	_, err := cache.Build(context.Background(), f.module, domain.BuildOptions{"tags": "b", "race": "false", "gcflags": "-N"})
	require.NoError(t, err)
}

func TestCache_GlobalBuildDir(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t, buildcache.Settings{BuildDir: root})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK)

	artifact, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)

	want := filepath.Join(root, "m-"+fs.NewHasher().PathDigest(f.module.SourcePath), "m.so")
	assert.Equal(t, want, artifact)
	assert.Equal(t, filepath.Dir(want), f.cache.OutputDir(f.module, nil))
	assert.NoDirExists(t, filepath.Join(f.dir, domain.BuildDirName))
}

func TestCache_InPlace(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK).Times(1)
	opts := domain.BuildOptions{domain.OptionInPlace: "true"}

	artifact, err := f.cache.Build(context.Background(), f.module, opts)
	require.NoError(t, err)
	_, err = f.cache.Build(context.Background(), f.module, opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.dir, "m.so"), artifact)
	assert.DirExists(t, filepath.Join(f.dir, domain.BuildDirName, domain.RecordsDirName))
}

func TestCache_NoRecordComparesArtifactMTime(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	out := filepath.Join(f.dir, domain.BuildDirName)
	require.NoError(t, os.MkdirAll(out, 0o750))
	artifact := filepath.Join(out, "m.so")
	require.NoError(t, os.WriteFile(artifact, []byte("prebuilt"), 0o600))

	// Artifact newer than the source: reused.
	setMTime(t, artifact, time.Now())
	got, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)
	assert.Equal(t, artifact, got)

	// Reuse writes no record, so an older artifact is stale.
	setMTime(t, artifact, time.Now().Add(-2*time.Hour))
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK)

	_, err = f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)
}

func TestCache_RelativeArtifactPath(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.CompileRequest) (domain.CompileResult, error) {
			require.NoError(t, os.MkdirAll(filepath.Join(f.dir, "lib"), 0o750))
			require.NoError(t, os.WriteFile(filepath.Join(f.dir, "lib", "m.so"), []byte("x"), 0o600))
			return domain.CompileResult{ArtifactPath: filepath.Join("lib", "m.so")}, nil
		})

	artifact, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, "lib", "m.so"), artifact)
}

func TestCache_ArtifactMissing(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(
		domain.CompileResult{ArtifactPath: filepath.Join(f.dir, "ghost.so")}, nil)

	_, err := f.cache.Build(context.Background(), f.module, nil)
	require.ErrorIs(t, err, domain.ErrArtifactMissing)
}

func TestCache_SourceNotFound(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	missing := domain.NewModuleIdentity("gone", filepath.Join(f.dir, "gone.go"))

	_, err := f.cache.Build(context.Background(), missing, nil)
	require.ErrorIs(t, err, domain.ErrSourceNotFound)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "gone", zErr.Metadata()["module"])
}

func TestCache_ExtraSourceMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, buildcache.Settings{})
	customizer := mocks.NewMockCustomizer(ctrl)
	customizer.EXPECT().Customize(gomock.Any(), gomock.Any()).Return(domain.BuildSpec{
		Sources: []string{filepath.Join(f.dir, "helper.go")},
	}, nil)
	cache := buildcache.New(customizer, f.compiler, cas.NewStore(), fs.NewHasher(), fs.NewArtifacts(), f.logger,
		buildcache.Settings{})

	_, err := cache.Build(context.Background(), f.module, nil)
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestCache_CompileErrorsPassThrough(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(
		domain.CompileResult{}, zerr.Wrap(domain.ErrBuildFailed, "./m.go:3:1: syntax error"))

	_, err := f.cache.Build(context.Background(), f.module, nil)
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Contains(t, err.Error(), "syntax error")
	assert.NoDirExists(t, filepath.Join(f.dir, domain.BuildDirName, domain.RecordsDirName))
}

func TestCache_CustomizationErrorsPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, buildcache.Settings{})
	customizer := mocks.NewMockCustomizer(ctrl)
	customizer.EXPECT().Customize(gomock.Any(), gomock.Any()).Return(domain.BuildSpec{},
		zerr.Wrap(domain.ErrEmptyCustomization, domain.ErrCustomizationFailed.Error()))
	cache := buildcache.New(customizer, f.compiler, cas.NewStore(), fs.NewHasher(), fs.NewArtifacts(), f.logger,
		buildcache.Settings{})

	_, err := cache.Build(context.Background(), f.module, nil)
	require.ErrorIs(t, err, domain.ErrEmptyCustomization)
}

func TestCache_RemovesPartialOutputs(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	out := filepath.Join(f.dir, domain.BuildDirName)
	require.NoError(t, os.MkdirAll(out, 0o750))

	partial := filepath.Join(out, domain.PartialArtifactName("m", "abc"))
	other := filepath.Join(out, "m_x.so")
	reloadCopy := filepath.Join(out, "m.so.reload1")
	for _, p := range []string{partial, other, reloadCopy} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}

	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK)

	_, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)

	assert.NoFileExists(t, partial)
	assert.FileExists(t, other)
	assert.FileExists(t, reloadCopy)
}

func TestCache_VerboseLogsCompilerOutput(t *testing.T) {
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK)
	f.logger.EXPECT().Info("# m")

	_, err := f.cache.Build(context.Background(), f.module, domain.BuildOptions{domain.OptionVerbose: "1"})
	require.NoError(t, err)
}

func TestCache_HitMarksVertexCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, buildcache.Settings{})
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK)

	artifact, err := f.cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)

	vertex := mocks.NewMockVertex(ctrl)
	gomock.InOrder(
		vertex.EXPECT().Log(domain.LogLevelInfo, "up to date: "+artifact),
		vertex.EXPECT().Cached(),
	)
	ctx := ports.ContextWithVertex(context.Background(), vertex)

	_, err = f.cache.Build(ctx, f.module, nil)
	require.NoError(t, err)
}

func TestCache_LogsRebuildReasonOnVertex(t *testing.T) {
	tests := []struct {
		name   string
		change func(t *testing.T, f *fixture)
		opts   domain.BuildOptions
		want   string
	}{
		{
			name: "Missing Artifact",
			change: func(t *testing.T, f *fixture) {
				require.NoError(t, os.RemoveAll(filepath.Join(f.dir, domain.BuildDirName, "m.so")))
			},
			want: "rebuilding: artifact missing",
		},
		{
			name:   "Forced",
			change: func(*testing.T, *fixture) {},
			opts:   domain.BuildOptions{domain.OptionForce: "true"},
			want:   "rebuilding: forced",
		},
		{
			name:   "Options Changed",
			change: func(*testing.T, *fixture) {},
			opts:   domain.BuildOptions{domain.OptionTags: "extra"},
			want:   "rebuilding: build options changed",
		},
		{
			name:   "Inputs Changed",
			change: func(t *testing.T, f *fixture) { setMTime(t, f.module.SourcePath, time.Now()) },
			want:   "rebuilding: inputs changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			f := newFixture(t, buildcache.Settings{})
			f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK).Times(2)

			_, err := f.cache.Build(context.Background(), f.module, nil)
			require.NoError(t, err)
			tt.change(t, f)

			vertex := mocks.NewMockVertex(ctrl)
			vertex.EXPECT().Log(domain.LogLevelInfo, tt.want)
			ctx := ports.ContextWithVertex(context.Background(), vertex)

			_, err = f.cache.Build(ctx, f.module, tt.opts)
			require.NoError(t, err)
		})
	}
}

func TestCache_RecordFailuresAreWarnings(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, buildcache.Settings{})
	store := mocks.NewMockBuildRecordStore(ctrl)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("corrupt"))
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("read-only"))
	f.logger.EXPECT().Warn(gomock.Any()).Times(2)
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(compileOK)

	cache := buildcache.New(f.customizer, f.compiler, store, fs.NewHasher(), fs.NewArtifacts(), f.logger,
		buildcache.Settings{})

	_, err := cache.Build(context.Background(), f.module, nil)
	require.NoError(t, err)
}
