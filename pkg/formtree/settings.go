package formtree

import (
	"time"

	"github.com/randalmurphal/formtree/pkg/formtree/config"
)

// Settings bundles tree-wide engine configuration, loadable from a config
// file and applied with WithSettings.
type Settings struct {
	// DefaultUpdateOn is the root fallback update strategy for controls
	// that neither set one nor inherit one. UpdateOnDefault keeps the
	// engine default (change).
	DefaultUpdateOn UpdateOn

	// AsyncTimeout bounds each async validation run. Zero disables the
	// bound.
	AsyncTimeout time.Duration

	// Metrics enables OpenTelemetry metrics recording.
	Metrics bool

	// Tracing enables OpenTelemetry span creation.
	Tracing bool
}

// DefaultSettings returns the engine defaults: change strategy, no async
// timeout, observability off.
func DefaultSettings() Settings {
	return Settings{}
}

// SettingsFromConfig reads Settings from a Config.
//
// Recognized keys: update_on, async_timeout, metrics, tracing. Unknown
// keys are ignored; an unrecognized update_on value is an error.
func SettingsFromConfig(cfg config.Config) (Settings, error) {
	s := DefaultSettings()

	updateOn, err := ParseUpdateOn(cfg.String("update_on", ""))
	if err != nil {
		return Settings{}, err
	}
	s.DefaultUpdateOn = updateOn
	s.AsyncTimeout = cfg.Duration("async_timeout", 0)
	s.Metrics = cfg.Bool("metrics", false)
	s.Tracing = cfg.Bool("tracing", false)
	return s, nil
}
