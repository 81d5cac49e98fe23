package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gimport/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/gimport/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/gimport/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/gimport/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/gimport/internal/engine/importer"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			importer.DepsNodeID,
			fs.WalkerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	deps, err := graft.Dep[importer.Deps](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	newWatcher := func() (ports.Watcher, error) {
		return watcher.NewWatcher(deps.Logger)
	}

	return New(loader, deps, walker, newWatcher), nil
}
