// Package prefs remembers the last particle settings between runs.
package prefs

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/flux-particles/internal/config"
)

const (
	AppName = "flux_particles"

	prefsObject   = "preferences"
	prefsProperty = "particles"
)

// Store loads and saves config.Particles through gdata. A Store without a
// manager works in memory only.
type Store struct {
	manager *gdata.Manager
	logger  *zap.Logger
}

// Open creates a Store for appName. If the platform storage cannot be
// opened, the Store degrades to memory-only and the error is returned for
// logging; the Store is still usable.
func Open(appName string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{logger: logger.Named("prefs")}
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return s, fmt.Errorf("open preferences storage: %w", err)
	}
	s.manager = manager
	return s, nil
}

// NewStore wraps an existing manager, which may be nil.
func NewStore(manager *gdata.Manager, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{manager: manager, logger: logger.Named("prefs")}
}

// Load overlays saved preferences on base. Nothing saved, or a degraded
// store, returns base unchanged. Saved values that fail validation are
// discarded.
func (s *Store) Load(base config.Particles) (config.Particles, error) {
	if s.manager == nil || !s.manager.ObjectPropExists(prefsObject, prefsProperty) {
		return base, nil
	}
	data, err := s.manager.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		return base, fmt.Errorf("load preferences: %w", err)
	}

	loaded := base
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return base, fmt.Errorf("unmarshal preferences: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return base, fmt.Errorf("saved preferences: %w", err)
	}
	s.logger.Debug("preferences loaded", zap.Stringer("shape", loaded.Shape), zap.Int("count", loaded.Count))
	return loaded, nil
}

// Save persists p. A degraded store does nothing.
func (s *Store) Save(p config.Particles) error {
	if s.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := s.manager.SaveObjectProp(prefsObject, prefsProperty, data); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	s.logger.Debug("preferences saved")
	return nil
}
