// Package sidecar evaluates the per-module build customization sidecar.
package sidecar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.Customizer = (*Customizer)(nil)

// Environment variables exported to a customization command.
const (
	ModuleEnv = "GIMPORT_MODULE"
	SourceEnv = "GIMPORT_SOURCE"
)

// Customizer implements ports.Customizer over `<base>.gbld` YAML sidecars.
type Customizer struct {
	logger ports.Logger
}

// NewCustomizer creates a new Customizer.
func NewCustomizer(logger ports.Logger) *Customizer {
	return &Customizer{logger: logger}
}

// Customize evaluates the sidecar beside module's source. Without a sidecar the
// empty spec is returned. A sidecar that yields nothing is an error.
func (c *Customizer) Customize(ctx context.Context, module domain.ModuleIdentity) (domain.BuildSpec, error) {
	path := domain.CustomizationFile(module.SourcePath)

	//nolint:gosec // sidecar path derives from the module source
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.BuildSpec{}, nil
	}
	if err != nil {
		return domain.BuildSpec{}, zerr.With(zerr.Wrap(err, domain.ErrCustomizationFailed.Error()), "path", path)
	}

	c.logger.Debug(fmt.Sprintf("evaluating build customization %s", path))

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.BuildSpec{}, zerr.With(zerr.Wrap(err, domain.ErrCustomizationFailed.Error()), "path", path)
	}

	dir := filepath.Dir(path)
	spec := toSpec(&file, dir)

	if len(file.Command) > 0 {
		generated, err := c.runCommand(ctx, file.Command, dir, module)
		if err != nil {
			return domain.BuildSpec{}, zerr.With(zerr.Wrap(err, domain.ErrCustomizationFailed.Error()), "path", path)
		}
		spec = spec.Merge(toSpec(generated, dir))
	}

	if spec.IsEmpty() {
		return domain.BuildSpec{}, zerr.With(zerr.Wrap(domain.ErrEmptyCustomization, domain.ErrCustomizationFailed.Error()), "path", path)
	}

	return spec, nil
}

// runCommand runs the escape-hatch command in the sidecar directory and decodes
// its standard output.
func (c *Customizer) runCommand(
	ctx context.Context,
	command []string,
	dir string,
	module domain.ModuleIdentity,
) (*File, error) {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...) //nolint:gosec // command is declared by the module author
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		ModuleEnv+"="+module.Name,
		SourceEnv+"="+module.SourcePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug(fmt.Sprintf("running customization command %s", strings.Join(command, " ")))

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "customization command failed"
		}
		return nil, zerr.With(zerr.Wrap(err, msg), "command", command[0])
	}

	var generated File
	if err := yaml.Unmarshal(stdout.Bytes(), &generated); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse customization command output"), "command", command[0])
	}
	return &generated, nil
}

func toSpec(file *File, dir string) domain.BuildSpec {
	spec := domain.BuildSpec{
		Sources:     resolvePaths(dir, file.Sources),
		Flags:       file.Flags,
		Libraries:   file.Libraries,
		LibraryDirs: resolvePaths(dir, file.LibraryDirs),
		IncludeDirs: resolvePaths(dir, file.IncludeDirs),
		Env:         file.Env,
	}
	if len(file.Options) > 0 {
		spec.Options = make(domain.BuildOptions, len(file.Options))
		for k, v := range file.Options {
			spec.Options[k] = fmt.Sprint(v)
		}
	}
	return spec
}

func resolvePaths(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		resolved = append(resolved, p)
	}
	return resolved
}
