package ports

import "go.trai.ch/gimport/internal/core/domain"

// BuildRecordStore defines the interface for storing and retrieving build records.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildRecordStore interface {
	// Get retrieves the build record stored under key in dir.
	// Returns nil, nil if not found.
	Get(dir, key string) (*domain.BuildRecord, error)

	// Put stores the build record under key in dir.
	Put(dir, key string, record domain.BuildRecord) error
}
