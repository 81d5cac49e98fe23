package gimport

import "go.trai.ch/gimport/internal/core/domain"

// ResetInstall forgets the installed importer.
// This is exported for testing purposes only.
func ResetInstall() {
	installMu.Lock()
	defer installMu.Unlock()
	installed = nil
}

// ConfigOf returns the effective configuration of imp.
// This is exported for testing purposes only.
func ConfigOf(imp *Importer) domain.Config {
	return imp.engine.Config
}
