package coursescmd

// FeatureGates exposes runtime toggles consulted by course command handlers.
// Callers supply closures reading Config.Features so handlers stay decoupled
// from configuration.
type FeatureGates struct {
	CommandsEnabled func() bool
}

func (g FeatureGates) commandsEnabled() bool {
	if g.CommandsEnabled == nil {
		return true
	}
	return g.CommandsEnabled()
}
