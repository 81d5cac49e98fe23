package goplugin

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gimport/internal/core/ports"
)

// NodeID is the unique identifier for the dynamic loader Graft node.
const NodeID graft.ID = "adapter.dynamic_loader"

func init() {
	graft.Register(graft.Node[ports.DynamicLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.DynamicLoader, error) {
			return NewLoader(), nil
		},
	})
}
