package fs

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes build fingerprints with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint hashes every option that affects the artifact together with the
// build spec. Option order does not matter; list order does.
func (h *Hasher) Fingerprint(options domain.BuildOptions, spec domain.BuildSpec) string {
	hasher := xxhash.New()

	h.hashOptions(options, hasher)
	h.hashList(spec.Sources, hasher)
	h.hashList(spec.Flags, hasher)
	h.hashList(spec.Libraries, hasher)
	h.hashList(spec.LibraryDirs, hasher)
	h.hashList(spec.IncludeDirs, hasher)
	h.hashEnv(spec.Env, hasher)

	return fmt.Sprintf("%016x", hasher.Sum64())
}

// PathDigest returns the 16 hex digit XXHash of path.
func (h *Hasher) PathDigest(path string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(path))
}

func (h *Hasher) hashOptions(options domain.BuildOptions, hasher *xxhash.Digest) {
	for _, k := range options.Keys() {
		if !domain.Affects(k) {
			continue
		}
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.WriteString(options[k])
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})
}

func (h *Hasher) hashList(items []string, hasher *xxhash.Digest) {
	for _, item := range items {
		_, _ = hasher.WriteString(item)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})
}

func (h *Hasher) hashEnv(env map[string]string, hasher *xxhash.Digest) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.WriteString(env[k])
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})
}
