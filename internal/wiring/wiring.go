// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/gimport/internal/adapters/cas"
	_ "go.trai.ch/gimport/internal/adapters/config"
	_ "go.trai.ch/gimport/internal/adapters/fs"
	_ "go.trai.ch/gimport/internal/adapters/goplugin"
	_ "go.trai.ch/gimport/internal/adapters/gotool"
	_ "go.trai.ch/gimport/internal/adapters/logger"
	_ "go.trai.ch/gimport/internal/adapters/sidecar"
	_ "go.trai.ch/gimport/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/gimport/internal/app"
	_ "go.trai.ch/gimport/internal/engine/importer"
)
