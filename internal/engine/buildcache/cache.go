// Package buildcache turns a source module into an up-to-date plugin artifact,
// compiling only when the artifact is missing or stale.
package buildcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Builder = (*Cache)(nil)

// Settings are the process-wide build settings.
type Settings struct {
	// Defaults are the process-wide default build options.
	Defaults domain.BuildOptions
	// BuildDir is the global build root. Empty means a build directory beside each source.
	BuildDir string
}

// Cache builds modules and reuses artifacts whose inputs are unchanged.
type Cache struct {
	customizer ports.Customizer
	compiler   ports.Compiler
	store      ports.BuildRecordStore
	hasher     ports.Hasher
	fs         ports.ArtifactFS
	logger     ports.Logger
	settings   Settings
	now        func() time.Time
}

// New creates a new Cache.
func New(
	customizer ports.Customizer,
	compiler ports.Compiler,
	store ports.BuildRecordStore,
	hasher ports.Hasher,
	fs ports.ArtifactFS,
	logger ports.Logger,
	settings Settings,
) *Cache {
	return &Cache{
		customizer: customizer,
		compiler:   compiler,
		store:      store,
		hasher:     hasher,
		fs:         fs,
		logger:     logger,
		settings:   settings,
		now:        time.Now,
	}
}

// plan is the evaluated state of one build request.
type plan struct {
	module      domain.ModuleIdentity
	spec        domain.BuildSpec
	options     domain.BuildOptions
	outputDir   string
	recordsDir  string
	artifact    string
	inputMTime  time.Time
	fingerprint string
}

// Build returns the path of an up-to-date artifact for module.
func (c *Cache) Build(ctx context.Context, module domain.ModuleIdentity, options domain.BuildOptions) (string, error) {
	if !c.fs.Exists(module.SourcePath) {
		return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrSourceNotFound, "cannot build module"),
			"module", module.Name), "source", module.SourcePath)
	}

	p, err := c.plan(ctx, module, options)
	if err != nil {
		return "", err
	}

	record, err := c.store.Get(p.recordsDir, module.Key())
	if err != nil {
		c.logger.Warn(fmt.Sprintf("ignoring build record of %s: %v", module.Name, err))
		record = nil
	}

	vertex, hasVertex := ports.VertexFromContext(ctx)
	reason := c.staleReason(p, record)
	if reason == "" {
		c.logger.Debug(fmt.Sprintf("%s is up to date", p.artifact))
		if hasVertex {
			vertex.Log(domain.LogLevelInfo, "up to date: "+p.artifact)
			vertex.Cached()
		}
		return p.artifact, nil
	}

	c.logger.Debug(fmt.Sprintf("rebuilding %s: %s", module.Name, reason))
	if hasVertex {
		vertex.Log(domain.LogLevelInfo, "rebuilding: "+reason)
	}

	artifact, err := c.compile(ctx, p)
	if err != nil {
		return "", err
	}

	c.cleanup(p, artifact)

	err = c.store.Put(p.recordsDir, module.Key(), domain.BuildRecord{
		Module:       module.Name,
		SourcePath:   module.SourcePath,
		ArtifactPath: artifact,
		InputMTime:   p.inputMTime,
		Fingerprint:  p.fingerprint,
		BuiltAt:      c.now(),
	})
	if err != nil {
		c.logger.Warn(fmt.Sprintf("failed to save build record of %s: %v", module.Name, err))
	}

	return artifact, nil
}

func (c *Cache) plan(ctx context.Context, module domain.ModuleIdentity, options domain.BuildOptions) (plan, error) {
	spec, err := c.customizer.Customize(ctx, module)
	if err != nil {
		return plan{}, err
	}

	merged := domain.MergeOptions(c.settings.Defaults, options, spec.Options)
	outputDir := c.outputDir(module, merged)

	recordsDir := outputDir
	if merged.Bool(domain.OptionInPlace) {
		recordsDir = filepath.Join(module.SourceDir(), domain.BuildDirName)
	}

	inputMTime, err := c.newestInput(module, spec)
	if err != nil {
		return plan{}, err
	}

	return plan{
		module:      module,
		spec:        spec,
		options:     merged,
		outputDir:   outputDir,
		recordsDir:  recordsDir,
		artifact:    filepath.Join(outputDir, module.ArtifactName()),
		inputMTime:  inputMTime,
		fingerprint: c.hasher.Fingerprint(merged, spec),
	}, nil
}

// OutputDir returns the directory module is built into under options.
func (c *Cache) OutputDir(module domain.ModuleIdentity, options domain.BuildOptions) string {
	return c.outputDir(module, domain.MergeOptions(c.settings.Defaults, options))
}

func (c *Cache) outputDir(module domain.ModuleIdentity, options domain.BuildOptions) string {
	switch {
	case options.Bool(domain.OptionInPlace):
		return module.SourceDir()
	case c.settings.BuildDir != "":
		return filepath.Join(c.settings.BuildDir, module.Name+"-"+c.hasher.PathDigest(module.SourcePath))
	default:
		return filepath.Join(module.SourceDir(), domain.BuildDirName)
	}
}

func (c *Cache) newestInput(module domain.ModuleIdentity, spec domain.BuildSpec) (time.Time, error) {
	newest, err := c.fs.ModTime(module.SourcePath)
	if err != nil {
		return time.Time{}, err
	}

	for _, src := range spec.Sources {
		if !c.fs.Exists(src) {
			return time.Time{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrSourceNotFound, "extra source missing"),
				"module", module.Name), "source", src)
		}
		mtime, err := c.fs.ModTime(src)
		if err != nil {
			return time.Time{}, err
		}
		if mtime.After(newest) {
			newest = mtime
		}
	}

	if gbld := domain.CustomizationFile(module.SourcePath); c.fs.Exists(gbld) {
		mtime, err := c.fs.ModTime(gbld)
		if err != nil {
			return time.Time{}, err
		}
		if mtime.After(newest) {
			newest = mtime
		}
	}

	return newest, nil
}

// Reasons a build is stale.
const (
	reasonForced         = "forced"
	reasonMissing        = "artifact missing"
	reasonOptionsChanged = "build options changed"
	reasonInputsChanged  = "inputs changed"
	reasonNewerInputs    = "inputs newer than artifact"
)

// staleReason returns why p must be rebuilt, or "" when its artifact is up to date.
func (c *Cache) staleReason(p plan, record *domain.BuildRecord) string {
	if p.options.Bool(domain.OptionForce) {
		return reasonForced
	}
	if !c.fs.Exists(p.artifact) {
		return reasonMissing
	}
	if record != nil {
		switch {
		case record.Fingerprint != p.fingerprint:
			return reasonOptionsChanged
		case !record.InputMTime.Equal(p.inputMTime):
			return reasonInputsChanged
		default:
			return ""
		}
	}
	built, err := c.fs.ModTime(p.artifact)
	if err != nil || p.inputMTime.After(built) {
		return reasonNewerInputs
	}
	return ""
}

func (c *Cache) compile(ctx context.Context, p plan) (string, error) {
	c.logger.Debug(fmt.Sprintf("building %s from %s", p.module.Name, p.module.SourcePath))

	res, err := c.compiler.Compile(ctx, domain.CompileRequest{
		Module:    p.module,
		Spec:      p.spec,
		Options:   p.options,
		OutputDir: p.outputDir,
	})
	if err != nil {
		return "", err
	}

	artifact := res.ArtifactPath
	if !filepath.IsAbs(artifact) {
		artifact = filepath.Join(p.module.SourceDir(), artifact)
	}
	if !c.fs.Exists(artifact) {
		return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "reported artifact does not exist"),
			"module", p.module.Name), "artifact", artifact)
	}

	if p.options.Bool(domain.OptionVerbose) {
		if out := strings.TrimSpace(string(res.Output)); out != "" {
			c.logger.Info(out)
		}
	}

	return artifact, nil
}

// cleanup removes partial outputs that earlier failed or interrupted builds
// left in the output directory.
func (c *Cache) cleanup(p plan, artifact string) {
	matches, err := c.fs.Glob(domain.PartialArtifactPattern(p.outputDir, p.module.Name))
	if err != nil {
		c.logger.Warn(fmt.Sprintf("failed to list partial outputs of %s: %v", p.module.Name, err))
		return
	}
	for _, m := range matches {
		if m == artifact || domain.IsReloadCopy(m) {
			continue
		}
		if err := c.fs.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn(fmt.Sprintf("failed to remove %s: %v", m, err))
		}
	}
}
