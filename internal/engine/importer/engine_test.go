package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gimport/internal/adapters/cas"
	"go.trai.ch/gimport/internal/adapters/fs"
	"go.trai.ch/gimport/internal/adapters/sidecar"
	"go.trai.ch/gimport/internal/adapters/telemetry"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/gimport/internal/core/ports/mocks"
	"go.trai.ch/gimport/internal/engine/importer"
	"go.uber.org/mock/gomock"
)

// textCompiler "links" a module by concatenating its sources and every *.inc
// file beside them.
type textCompiler struct {
	builds int
}

func (c *textCompiler) Compile(_ context.Context, req domain.CompileRequest) (domain.CompileResult, error) {
	c.builds++

	var b strings.Builder
	for _, src := range req.Sources() {
		data, err := os.ReadFile(src)
		if err != nil {
			return domain.CompileResult{}, err
		}
		b.Write(data)
	}
	incs, _ := filepath.Glob(filepath.Join(req.Module.SourceDir(), "*.inc"))
	sort.Strings(incs)
	for _, inc := range incs {
		data, err := os.ReadFile(inc)
		if err != nil {
			return domain.CompileResult{}, err
		}
		b.Write(data)
	}

	if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
		return domain.CompileResult{}, err
	}
	out := filepath.Join(req.OutputDir, req.Module.ArtifactName())
	if err := os.WriteFile(out, []byte(b.String()), 0o600); err != nil {
		return domain.CompileResult{}, err
	}
	return domain.CompileResult{ArtifactPath: out}, nil
}

// textLoader opens an artifact by reading it.
type textLoader struct{}

func (textLoader) Open(name, path string) (ports.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &textModule{name: name, origin: path, text: string(data)}, nil
}

type textModule struct {
	name   string
	origin string
	text   string
}

func (m *textModule) Name() string   { return m.name }
func (m *textModule) Origin() string { return m.origin }
func (m *textModule) Lookup(string) (any, error) {
	return m.text, nil
}

func newEngine(t *testing.T, dir string, reload bool) (*importer.Engine, *textCompiler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	compiler := &textCompiler{}
	cfg := domain.Config{SearchPaths: []string{dir}, ReloadSupport: reload}
	deps := importer.Deps{
		Logger:     log,
		Telemetry:  telemetry.NewNoOp(),
		Scanner:    fs.NewScanner(fs.NewResolver(), log),
		Customizer: sidecar.NewCustomizer(log),
		Compiler:   compiler,
		Store:      cas.NewStore(),
		Hasher:     fs.NewHasher(),
		Artifacts:  fs.NewArtifacts(),
		Dynamic:    textLoader{},
	}
	return importer.New(cfg, fs.NewModuleResolver(cfg.Extensions, cfg.SearchPaths), deps), compiler
}

func write(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func text(t *testing.T, mod ports.Module) string {
	t.Helper()
	v, err := mod.Lookup("Value")
	require.NoError(t, err)
	return v.(string)
}

func TestEngine_LoadWithoutSidecars(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "m.go"), "package main\n", time.Now().Add(-time.Hour))
	e, _ := newEngine(t, dir, false)

	mod, err := e.Chain.Import(context.Background(), "m", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, domain.BuildDirName, "m.so"), mod.Origin())
	assert.Equal(t, "m", mod.Name())
	assert.Nil(t, e.Versioner)
}

func TestEngine_DependencyChangeRebuilds(t *testing.T) {
	dir := t.TempDir()
	past := time.Now().Add(-time.Hour)
	src := filepath.Join(dir, "m.go")
	write(t, src, "package main\n", past)
	write(t, filepath.Join(dir, "m.gdep"), "inc.inc\n", past)
	write(t, filepath.Join(dir, "inc.inc"), "const pi = 3.14\n", past)
	e, compiler := newEngine(t, dir, true)

	mod, err := e.Chain.Import(context.Background(), "m", nil)
	require.NoError(t, err)
	assert.Contains(t, text(t, mod), "3.14")

	write(t, filepath.Join(dir, "inc.inc"), "const pi = 1.23\n", time.Now().Add(time.Hour))

	mod, err = e.Chain.Reload(context.Background(), "m", nil)
	require.NoError(t, err)
	assert.Contains(t, text(t, mod), "1.23")
	assert.Equal(t, 2, compiler.builds)
}

func TestEngine_ReloadVersions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "m.go")
	write(t, src, "package main\n", time.Now().Add(-time.Hour))
	e, compiler := newEngine(t, dir, true)
	ctx := context.Background()

	first, err := e.Loader.Load(ctx, "m", src)
	require.NoError(t, err)
	second, err := e.Loader.Load(ctx, "m", src)
	require.NoError(t, err)

	assert.Equal(t, first.Origin(), second.Origin())
	assert.True(t, domain.IsReloadCopy(first.Origin()))
	assert.Equal(t, 1, compiler.builds)

	write(t, src, "package main\n// changed\n", time.Now().Add(time.Hour))

	third, err := e.Loader.Load(ctx, "m", src)
	require.NoError(t, err)

	assert.NotEqual(t, first.Origin(), third.Origin())
	assert.True(t, domain.IsReloadCopy(third.Origin()))
	assert.FileExists(t, first.Origin())
	assert.Contains(t, text(t, third), "// changed")
}

func TestEngine_UnknownNameIsNotFound(t *testing.T) {
	dir := t.TempDir()
	e, compiler := newEngine(t, dir, false)

	res := e.Importer.Find("missing", nil)
	assert.Equal(t, domain.ResolutionNotFound, res.Kind)
	require.NoError(t, res.Err)

	_, err := e.Chain.Import(context.Background(), "missing", nil)
	require.ErrorIs(t, err, domain.ErrModuleNotFound)
	assert.Zero(t, compiler.builds)
}

func TestEngine_WithoutReloadKeepsFirstModule(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "m.go")
	write(t, src, "package main\n", time.Now().Add(-time.Hour))
	e, compiler := newEngine(t, dir, false)

	first, err := e.Chain.Import(context.Background(), "m", nil)
	require.NoError(t, err)

	write(t, src, "package main\n// changed\n", time.Now().Add(time.Hour))

	again, err := e.Chain.Reload(context.Background(), "m", nil)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, compiler.builds)
}

func TestEngine_BuildFailureIsImportError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "m.go")
	write(t, src, "package main\n", time.Now().Add(-time.Hour))
	write(t, filepath.Join(dir, "m.gbld"), "sources: [missing.go]\n", time.Now().Add(-time.Hour))
	e, _ := newEngine(t, dir, false)

	_, err := e.Chain.Import(context.Background(), "m", nil)
	require.ErrorIs(t, err, domain.ErrImportFailed)
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.Contains(t, err.Error(), "building module m failed")
}
