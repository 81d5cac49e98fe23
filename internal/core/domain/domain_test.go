package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"m", "m"},
		{"pkg.sub.m", "m"},
		{"example.com/plugins/m", "m"},
		{"trailing.", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.BaseName(tt.in))
		})
	}
}

func TestNewModuleIdentity(t *testing.T) {
	id := domain.NewModuleIdentity("plugins.m", "/src/m.go")

	assert.Equal(t, "m", id.Name)
	assert.Equal(t, "/src", id.SourceDir())
	assert.Equal(t, "m.so", id.ArtifactName())
	assert.NotEqual(t, id.Key(), domain.NewModuleIdentity("m", "/other/m.go").Key())
}

func TestSidecarPaths(t *testing.T) {
	assert.Equal(t, "/src/m.gdep", domain.DependencyFile("/src/m.go"))
	assert.Equal(t, "/src/m.gbld", domain.CustomizationFile("/src/m.go"))
	assert.Equal(t, "/src/noext.gdep", domain.DependencyFile("/src/noext"))
}

func TestReloadPath(t *testing.T) {
	p := domain.ReloadPath("/out/m.so", 7)

	assert.Equal(t, "/out/m.so.reload7", p)
	assert.True(t, domain.IsReloadCopy(p))
	assert.False(t, domain.IsReloadCopy("/out/m.so"))
	assert.False(t, domain.IsReloadCopy("/out/m.so.reload"))
	assert.False(t, domain.IsReloadCopy("/out/m.so.reloadx"))
}

func TestPartialArtifacts(t *testing.T) {
	assert.Equal(t, "m_partial1x.so", domain.PartialArtifactName("m", "1x"))
	assert.Equal(t, "/out/m_partial*.so", domain.PartialArtifactPattern("/out", "m"))
}

func TestMergeOptions(t *testing.T) {
	defaults := domain.BuildOptions{"verbose": "false", "tags": "a"}
	invocation := domain.BuildOptions{"verbose": "true"}
	sidecar := domain.BuildOptions{"tags": "b", "race": "1"}

	merged := domain.MergeOptions(defaults, invocation, sidecar)

	assert.Equal(t, domain.BuildOptions{"verbose": "true", "tags": "b", "race": "1"}, merged)
	assert.True(t, merged.Bool(domain.OptionVerbose))
	assert.True(t, merged.Bool(domain.OptionRace))
	assert.False(t, merged.Bool(domain.OptionForce))
	assert.Equal(t, []string{"race", "tags", "verbose"}, merged.Keys())

	// Layers are not mutated.
	assert.Equal(t, "false", defaults["verbose"])
}

func TestBuildOptions_BoolMalformed(t *testing.T) {
	opts := domain.BuildOptions{"force": "sometimes"}
	assert.False(t, opts.Bool(domain.OptionForce))
}

func TestAffects(t *testing.T) {
	assert.False(t, domain.Affects(domain.OptionVerbose))
	assert.False(t, domain.Affects(domain.OptionForce))
	assert.True(t, domain.Affects(domain.OptionTags))
	assert.True(t, domain.Affects("custom"))
}

func TestBuildSpec_CgoEnv(t *testing.T) {
	spec := domain.BuildSpec{
		Libraries:   []string{"m", "lapack"},
		LibraryDirs: []string{"/opt/lib"},
		IncludeDirs: []string{"/opt/include"},
		Env:         map[string]string{"CGO_LDFLAGS": "-static", "CC": "clang"},
	}

	env := spec.CgoEnv()

	assert.Equal(t, "-I/opt/include", env["CGO_CFLAGS"])
	assert.Equal(t, "-static -L/opt/lib -lm -llapack", env["CGO_LDFLAGS"])
	assert.Equal(t, "clang", env["CC"])
}

func TestBuildSpec_MergeAndEmpty(t *testing.T) {
	assert.True(t, domain.BuildSpec{}.IsEmpty())

	base := domain.BuildSpec{Sources: []string{"/a.go"}, Options: domain.BuildOptions{"tags": "x"}}
	over := domain.BuildSpec{Sources: []string{"/b.go"}, Options: domain.BuildOptions{"tags": "y"}}

	merged := base.Merge(over)

	assert.Equal(t, []string{"/a.go", "/b.go"}, merged.Sources)
	assert.Equal(t, "y", merged.Options["tags"])
	assert.False(t, merged.IsEmpty())
	assert.Equal(t, []string{"/a.go"}, base.Sources)
}

func TestCompileRequest_Sources(t *testing.T) {
	req := domain.CompileRequest{
		Module: domain.NewModuleIdentity("m", "/src/m.go"),
		Spec:   domain.BuildSpec{Sources: []string{"/src/helper.go"}},
	}
	assert.Equal(t, []string{"/src/m.go", "/src/helper.go"}, req.Sources())
}

func TestImportError(t *testing.T) {
	cause := zerr.Wrap(domain.ErrBuildFailed, "undefined: x")
	err := error(domain.NewImportError("m", cause))

	require.ErrorIs(t, err, domain.ErrImportFailed)
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Contains(t, err.Error(), "building module m failed")
	assert.Contains(t, err.Error(), "undefined: x")

	var importErr *domain.ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, "m", importErr.Module)
	assert.Equal(t, "building module m failed", importErr.Message())
}

func TestResolution(t *testing.T) {
	assert.True(t, domain.Found("/a.go").IsFound())
	assert.False(t, domain.NotFound().IsFound())

	failed := domain.Failed(domain.ErrInvalidModuleName)
	assert.Equal(t, domain.ResolutionFailed, failed.Kind)
	assert.Equal(t, "failed", failed.Kind.String())
	assert.Equal(t, "not found", domain.NotFound().Kind.String())
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := domain.Config{}.WithDefaults()

	assert.Equal(t, domain.DefaultMaxReloadGenerations, cfg.MaxReloadGenerations)
	assert.Equal(t, []string{".go"}, cfg.Extensions)
	assert.NotNil(t, cfg.BuildOptions)

	custom := domain.Config{MaxReloadGenerations: 3, Extensions: []string{".gox", ".go"}}.WithDefaults()
	assert.Equal(t, 3, custom.MaxReloadGenerations)
	assert.Equal(t, []string{".gox", ".go"}, custom.Extensions)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", domain.LogLevelDebug.String())
	assert.Equal(t, "WARN", domain.LogLevelWarn.String())
	assert.Equal(t, "ERROR", domain.LogLevelError.String())
	assert.Equal(t, "INFO", domain.LogLevel(42).String())
}
