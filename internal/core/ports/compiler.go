package ports

import (
	"context"

	"go.trai.ch/gimport/internal/core/domain"
)

// Compiler turns source modules into loadable artifacts.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile builds req into req.OutputDir and reports the produced artifact path.
	// Compiler output is captured and returned rather than streamed.
	Compile(ctx context.Context, req domain.CompileRequest) (domain.CompileResult, error)
}
