package importer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gimport/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gimport/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gimport/internal/adapters/goplugin"           //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gimport/internal/adapters/gotool"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gimport/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gimport/internal/adapters/sidecar"            //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gimport/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gimport/internal/core/ports"
)

// DepsNodeID is the unique identifier for the engine dependencies Graft node.
const DepsNodeID graft.ID = "engine.importer.deps"

func init() {
	graft.Register(graft.Node[Deps]{
		ID:        DepsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			progrock.NodeID,
			fs.ScannerNodeID,
			sidecar.NodeID,
			gotool.NodeID,
			cas.NodeID,
			fs.HasherNodeID,
			fs.ArtifactsNodeID,
			goplugin.NodeID,
		},
		Run: runDepsNode,
	})
}

func runDepsNode(ctx context.Context) (Deps, error) {
	var (
		d   Deps
		err error
	)

	if d.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return Deps{}, err
	}
	if d.Telemetry, err = graft.Dep[ports.Telemetry](ctx); err != nil {
		return Deps{}, err
	}
	if d.Scanner, err = graft.Dep[ports.DependencyScanner](ctx); err != nil {
		return Deps{}, err
	}
	if d.Customizer, err = graft.Dep[ports.Customizer](ctx); err != nil {
		return Deps{}, err
	}
	if d.Compiler, err = graft.Dep[ports.Compiler](ctx); err != nil {
		return Deps{}, err
	}
	if d.Store, err = graft.Dep[ports.BuildRecordStore](ctx); err != nil {
		return Deps{}, err
	}
	if d.Hasher, err = graft.Dep[ports.Hasher](ctx); err != nil {
		return Deps{}, err
	}
	if d.Artifacts, err = graft.Dep[ports.ArtifactFS](ctx); err != nil {
		return Deps{}, err
	}
	if d.Dynamic, err = graft.Dep[ports.DynamicLoader](ctx); err != nil {
		return Deps{}, err
	}
	return d, nil
}
