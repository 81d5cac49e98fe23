// Package gotool compiles source modules into Go plugins with the go command.
package gotool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

const (
	defaultGoBinary = "go"
	// waitDelay bounds how long a canceled build may hold its output pipes open.
	waitDelay = 2 * time.Second
)

// Compiler implements ports.Compiler by running `go build -buildmode=plugin`.
type Compiler struct {
	logger ports.Logger
	diag   io.Writer
}

// NewCompiler creates a Compiler. diag receives the captured output of
// interrupted builds; nil means os.Stderr.
func NewCompiler(logger ports.Logger, diag io.Writer) *Compiler {
	if diag == nil {
		diag = os.Stderr
	}
	return &Compiler{logger: logger, diag: diag}
}

// Compile builds req into req.OutputDir. The plugin is linked under a unique
// partial name and renamed to `<name>.so` once complete, so an artifact already
// mapped by the process is never written to. Partial outputs of failed builds
// are left in place.
//
// Every build adds a generated stamp file to the package. The go command
// derives the plugin path from the package contents, and the runtime refuses
// to open a second plugin with a path it has already loaded, so the stamp
// keeps each rebuild loadable. The stamp file is written beside the source and
// removed when the build ends.
func (c *Compiler) Compile(ctx context.Context, req domain.CompileRequest) (domain.CompileResult, error) {
	name := req.Module.Name
	stamp := strconv.FormatInt(time.Now().UnixNano(), 36)
	tmpOut := filepath.Join(req.OutputDir, domain.PartialArtifactName(name, stamp))
	finalOut := filepath.Join(req.OutputDir, req.Module.ArtifactName())

	if err := os.MkdirAll(req.OutputDir, domain.DirPerm); err != nil {
		return domain.CompileResult{}, zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", req.OutputDir)
	}

	goBin := req.Options.Get(domain.OptionGoBinary)
	if goBin == "" {
		goBin = defaultGoBinary
	}

	cmdEnv := resolveEnvironment(os.Environ(), req.Spec.CgoEnv())

	executable := goBin
	if !filepath.IsAbs(goBin) {
		if lp, err := lookPath(goBin, cmdEnv); err == nil {
			executable = lp
		}
	}

	stampFile, err := writeStamp(req.Module.SourceDir(), stamp)
	if err != nil {
		return domain.CompileResult{}, err
	}
	defer func() { _ = os.Remove(stampFile) }()

	args := buildArgs(req, tmpOut, stampFile)
	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // go binary is configured by the user
	if len(cmd.Args) > 0 {
		cmd.Args[0] = goBin
	}
	cmd.Dir = req.Module.SourceDir()
	cmd.Env = cmdEnv
	cmd.WaitDelay = waitDelay

	var output bytes.Buffer
	var sink io.Writer = &output
	if vertex, ok := ports.VertexFromContext(ctx); ok {
		sink = io.MultiWriter(&output, vertex.Stderr())
	}
	cmd.Stdout = sink
	cmd.Stderr = sink

	c.logger.Debug(fmt.Sprintf("%s %s", goBin, strings.Join(args, " ")))

	err = cmd.Run()
	if ctx.Err() != nil {
		_, _ = c.diag.Write(output.Bytes())
		return domain.CompileResult{Output: output.Bytes()}, zerr.With(
			zerr.Wrap(domain.ErrInterrupted, "go build canceled"), "module", name)
	}
	if err != nil {
		return domain.CompileResult{Output: output.Bytes()}, buildFailed(name, err, output.Bytes())
	}

	if _, statErr := os.Stat(tmpOut); statErr != nil {
		return domain.CompileResult{Output: output.Bytes()}, zerr.With(
			zerr.Wrap(domain.ErrArtifactMissing, "go build reported success without an artifact"),
			"artifact", tmpOut)
	}
	if err := os.Rename(tmpOut, finalOut); err != nil {
		return domain.CompileResult{Output: output.Bytes()}, zerr.With(
			zerr.Wrap(err, "failed to rename artifact"), "artifact", finalOut)
	}

	return domain.CompileResult{ArtifactPath: finalOut, Output: output.Bytes()}, nil
}

func buildFailed(name string, err error, output []byte) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	msg := strings.TrimSpace(string(output))
	if msg == "" {
		msg = err.Error()
	}

	wrapped := zerr.Wrap(domain.ErrBuildFailed, msg)
	wrapped = zerr.With(wrapped, "module", name)
	return zerr.With(wrapped, "exit_code", exitCode)
}

// StampFilePrefix starts the name of the generated stamp file of a build.
const StampFilePrefix = "zz_gimport_stamp_"

func stampFileName(stamp string) string {
	return StampFilePrefix + stamp + ".go"
}

func writeStamp(dir, stamp string) (string, error) {
	path := filepath.Join(dir, stampFileName(stamp))
	content := "// Code generated by gimport. DO NOT EDIT.\n\npackage main\n\nconst gimportBuildStamp = \"" + stamp + "\"\n"
	if err := os.WriteFile(path, []byte(content), domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to write build stamp"), "path", path)
	}
	return path, nil
}

func buildArgs(req domain.CompileRequest, out, stampFile string) []string {
	args := []string{"build", "-buildmode=plugin"}

	if tags := req.Options.Get(domain.OptionTags); tags != "" {
		args = append(args, "-tags="+tags)
	}
	if gcflags := req.Options.Get(domain.OptionGCFlags); gcflags != "" {
		args = append(args, "-gcflags="+gcflags)
	}

	if ldflags := req.Options.Get(domain.OptionLDFlags); ldflags != "" {
		args = append(args, "-ldflags="+ldflags)
	}

	if req.Options.Bool(domain.OptionTrimPath) {
		args = append(args, "-trimpath")
	}
	if req.Options.Bool(domain.OptionRace) {
		args = append(args, "-race")
	}
	if req.Options.Bool(domain.OptionVerbose) {
		args = append(args, "-x")
	}

	args = append(args, req.Spec.Flags...)
	args = append(args, "-o", out)
	args = append(args, req.Sources()...)
	if stampFile != "" {
		args = append(args, stampFile)
	}
	return args
}

// cgoAppendVars are extended rather than replaced when a module adds to them.
var cgoAppendVars = map[string]struct{}{
	"CGO_CFLAGS":  {},
	"CGO_LDFLAGS": {},
}

// resolveEnvironment merges the module's environment over the system's.
// Plugins require cgo, so CGO_ENABLED defaults to 1.
func resolveEnvironment(sysEnv []string, moduleEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}

	if _, ok := envMap["CGO_ENABLED"]; !ok {
		envMap["CGO_ENABLED"] = "1"
	}

	for k, v := range moduleEnv {
		if _, appendable := cgoAppendVars[k]; appendable {
			if existing := envMap[k]; existing != "" {
				envMap[k] = existing + " " + v
				continue
			}
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
