package sidecar

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gimport/internal/adapters/logger"
	"go.trai.ch/gimport/internal/core/ports"
)

// NodeID is the unique identifier for the build customizer Graft node.
const NodeID graft.ID = "adapter.customizer"

func init() {
	graft.Register(graft.Node[ports.Customizer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Customizer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewCustomizer(log), nil
		},
	})
}
