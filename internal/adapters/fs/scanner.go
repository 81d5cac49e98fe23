package fs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DependencyScanner = (*Scanner)(nil)

// Scanner implements ports.DependencyScanner over the dependency sidecar.
type Scanner struct {
	resolver *Resolver
	logger   ports.Logger
}

// NewScanner creates a new Scanner.
func NewScanner(resolver *Resolver, logger ports.Logger) *Scanner {
	return &Scanner{resolver: resolver, logger: logger}
}

// CheckAndTouch sets the source's mtime to that of its newest dependency when a
// dependency is newer. The dependency sidecar and the customization sidecar
// count as dependencies. Without a dependency sidecar this is a no-op.
func (s *Scanner) CheckAndTouch(sourcePath string) error {
	files, err := s.Dependencies(sourcePath)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := s.touchIfNewer(sourcePath, file); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrDependencyScanFailed.Error()), "path", file)
		}
	}
	return nil
}

// Dependencies resolves the dependency sidecar of sourcePath. It returns nil
// when there is no sidecar.
func (s *Scanner) Dependencies(sourcePath string) ([]string, error) {
	depFile := domain.DependencyFile(sourcePath)

	patterns, err := readPatterns(depFile)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDependencyScanFailed.Error()), "path", depFile)
	}

	files, err := s.resolver.ResolvePatterns(patterns, filepath.Dir(depFile))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDependencyScanFailed.Error()), "path", depFile)
	}
	files = append(files, depFile)
	if bld := domain.CustomizationFile(sourcePath); fileExists(bld) {
		files = append(files, bld)
	}
	return files, nil
}

// touchIfNewer re-stats the source each time so that the final mtime is the newest dependency's.
func (s *Scanner) touchIfNewer(sourcePath, dep string) error {
	src, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}
	info, err := os.Stat(dep)
	if err != nil {
		return err
	}
	if !info.ModTime().After(src.ModTime()) {
		return nil
	}

	s.logger.Debug(fmt.Sprintf("rebuilding %s because of %s", sourcePath, dep))
	return os.Chtimes(sourcePath, info.ModTime(), info.ModTime())
}

// readPatterns returns the trimmed, non-blank lines of path. Lines starting with # are comments.
func readPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // sidecar path derives from the module source
	if err != nil {
		return nil, err
	}

	var patterns []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, sc.Err()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
