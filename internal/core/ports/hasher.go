package ports

import "go.trai.ch/gimport/internal/core/domain"

// Hasher defines the interface for computing build fingerprints.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Fingerprint hashes the options and spec that affect the compiled artifact.
	Fingerprint(options domain.BuildOptions, spec domain.BuildSpec) string
	// PathDigest returns a short stable digest of a path.
	PathDigest(path string) string
}
