package gotool_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gimport/internal/adapters/gotool"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/gimport/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// fakeGo writes an executable standing in for the go command. It records its
// arguments and working directory, then runs body with $out set to the -o value.
func fakeGo(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "go")
	script := `#!/bin/sh
printf '%s\n' "$@" > "` + filepath.Join(dir, "args") + `"
pwd > "` + filepath.Join(dir, "pwd") + `"
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
` + body + "\n"
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700))
	return path
}

func newRequest(t *testing.T, goBin string) domain.CompileRequest {
	t.Helper()
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "m.go")
	require.NoError(t, os.WriteFile(src, []byte("package main\n"), 0o600))
	return domain.CompileRequest{
		Module:    domain.NewModuleIdentity("m", src),
		Options:   domain.BuildOptions{domain.OptionGoBinary: goBin},
		OutputDir: filepath.Join(srcDir, domain.BuildDirName),
	}
}

func newCompiler(t *testing.T, diag *bytes.Buffer) *gotool.Compiler {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return gotool.NewCompiler(log, diag)
}

func TestCompiler_Compile_Success(t *testing.T) {
	goBin := fakeGo(t, `echo "compiling m"; printf elf > "$out"`)
	req := newRequest(t, goBin)

	res, err := newCompiler(t, &bytes.Buffer{}).Compile(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(req.OutputDir, "m.so"), res.ArtifactPath)
	assert.Contains(t, string(res.Output), "compiling m")

	data, err := os.ReadFile(res.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))

	leftovers, err := filepath.Glob(domain.PartialArtifactPattern(req.OutputDir, "m"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	pwd, err := os.ReadFile(filepath.Join(filepath.Dir(goBin), "pwd"))
	require.NoError(t, err)
	wantDir, err := filepath.EvalSymlinks(req.Module.SourceDir())
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(string(bytes.TrimSpace(pwd)))
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

func TestCompiler_Compile_UniqueBuildStamp(t *testing.T) {
	stampCopy := filepath.Join(t.TempDir(), "stamp")
	goBin := fakeGo(t, `cat `+gotool.StampFilePrefix+`*.go > "`+stampCopy+`"; printf elf > "$out"`)
	req := newRequest(t, goBin)
	compiler := newCompiler(t, &bytes.Buffer{})

	readFile := func(path string) string {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(data)
	}
	argsFile := filepath.Join(filepath.Dir(goBin), "args")

	_, err := compiler.Compile(context.Background(), req)
	require.NoError(t, err)
	firstArgs, firstStamp := readFile(argsFile), readFile(stampCopy)

	_, err = compiler.Compile(context.Background(), req)
	require.NoError(t, err)
	secondArgs, secondStamp := readFile(argsFile), readFile(stampCopy)

	assert.NotContains(t, firstArgs, "-pluginpath")
	assert.Contains(t, firstArgs, gotool.StampFilePrefix)
	assert.Contains(t, firstStamp, "package main")
	assert.NotEqual(t, firstStamp, secondStamp)
	assert.NotEqual(t, firstArgs, secondArgs)

	leftovers, err := filepath.Glob(filepath.Join(req.Module.SourceDir(), gotool.StampFilePrefix+"*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCompiler_Compile_BuildFailed(t *testing.T) {
	goBin := fakeGo(t, `echo "./m.go:3:2: undefined: x" >&2; exit 2`)
	req := newRequest(t, goBin)

	res, err := newCompiler(t, &bytes.Buffer{}).Compile(context.Background(), req)
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Contains(t, err.Error(), "undefined: x")
	assert.Contains(t, string(res.Output), "undefined: x")
}

func TestCompiler_Compile_ArtifactMissing(t *testing.T) {
	goBin := fakeGo(t, `exit 0`)
	req := newRequest(t, goBin)

	_, err := newCompiler(t, &bytes.Buffer{}).Compile(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArtifactMissing)
}

func TestCompiler_Compile_Interrupted(t *testing.T) {
	goBin := fakeGo(t, `echo "partial output"; exec sleep 10`)
	req := newRequest(t, goBin)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var diag bytes.Buffer
	_, err := newCompiler(t, &diag).Compile(ctx, req)
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrInterrupted)
	assert.Contains(t, diag.String(), "partial output")
}

func TestCompiler_Compile_StreamsToVertex(t *testing.T) {
	ctrl := gomock.NewController(t)
	goBin := fakeGo(t, `echo "hello from go"; printf elf > "$out"`)
	req := newRequest(t, goBin)

	var vertexOut bytes.Buffer
	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Stderr().Return(&vertexOut).AnyTimes()

	ctx := ports.ContextWithVertex(context.Background(), vertex)
	_, err := newCompiler(t, &bytes.Buffer{}).Compile(ctx, req)
	require.NoError(t, err)

	assert.Contains(t, vertexOut.String(), "hello from go")
}

func TestCompiler_Compile_ModuleEnvironment(t *testing.T) {
	goBin := fakeGo(t, `echo "ldflags=$CGO_LDFLAGS cc=$CC"; printf elf > "$out"`)
	req := newRequest(t, goBin)
	req.Spec = domain.BuildSpec{
		Libraries: []string{"m"},
		Env:       map[string]string{"CC": "clang"},
	}
	t.Setenv("CGO_LDFLAGS", "")

	res, err := newCompiler(t, &bytes.Buffer{}).Compile(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, string(res.Output), "ldflags=-lm cc=clang")
}
