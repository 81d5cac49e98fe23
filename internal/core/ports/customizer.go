package ports

import (
	"context"

	"go.trai.ch/gimport/internal/core/domain"
)

// Customizer evaluates a module's build customization sidecar.
//
//go:generate mockgen -source=customizer.go -destination=mocks/mock_customizer.go -package=mocks
type Customizer interface {
	// Customize returns the build spec for module. A missing sidecar yields an empty spec.
	Customize(ctx context.Context, module domain.ModuleIdentity) (domain.BuildSpec, error)
}
