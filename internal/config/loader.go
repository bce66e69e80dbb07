package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/preset files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "presets", "default.yaml")
}
func (p Paths) PresetPath(name string) string {
	return filepath.Join(p.BaseDir, "presets", name+".yaml")
}

// Loader reads YAML presets and merges default → named preset.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: preset name or "$default"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// LoadMerged loads and merges default → preset (preset optional; empty
// name returns the defaults alone). The merged RawConfig is cached until
// Invalidate.
func (l *Loader) LoadMerged(preset string) (RawConfig, error) {
	key := preset
	if key == "" {
		key = "$default"
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if preset != "" {
		presetCfg, err := readYAML(l.paths.PresetPath(preset))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read preset %q: %w", preset, err)
		}
		merged = mergeRaw(defCfg, presetCfg)
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears the cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// WatchPaths lists the files the hot-reload watcher should poll.
func (l *Loader) WatchPaths(presets ...string) []string {
	paths := []string{l.paths.DefaultPath()}
	for _, p := range presets {
		paths = append(paths, l.paths.PresetPath(p))
	}
	return paths
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where non-zero/non-nil.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// game
	switch {
	case out.Game == nil && b.Game != nil:
		c := *b.Game
		out.Game = &c
	case out.Game != nil && b.Game != nil:
		g := *out.Game
		if b.Game.Jokers != nil {
			g.Jokers = b.Game.Jokers
		}
		if b.Game.InclusiveBudget != nil {
			g.InclusiveBudget = b.Game.InclusiveBudget
		}
		if b.Game.Threshold != nil {
			g.Threshold = b.Game.Threshold
		}
		if b.Game.ShowFailed != nil {
			g.ShowFailed = b.Game.ShowFailed
		}
		out.Game = &g
	}

	// simulation
	switch {
	case out.Simulation == nil && b.Simulation != nil:
		c := *b.Simulation
		out.Simulation = &c
	case out.Simulation != nil && b.Simulation != nil:
		s := *out.Simulation
		if b.Simulation.Trials != nil {
			s.Trials = b.Simulation.Trials
		}
		if b.Simulation.Seed != nil {
			s.Seed = b.Simulation.Seed
		}
		if b.Simulation.Workers != nil {
			s.Workers = b.Simulation.Workers
		}
		out.Simulation = &s
	}

	// sweep
	switch {
	case out.Sweep == nil && b.Sweep != nil:
		c := *b.Sweep
		out.Sweep = &c
	case out.Sweep != nil && b.Sweep != nil:
		w := *out.Sweep
		if b.Sweep.JokerMin != nil {
			w.JokerMin = b.Sweep.JokerMin
		}
		if b.Sweep.JokerMax != nil {
			w.JokerMax = b.Sweep.JokerMax
		}
		if b.Sweep.BudgetMin != nil {
			w.BudgetMin = b.Sweep.BudgetMin
		}
		if b.Sweep.BudgetMax != nil {
			w.BudgetMax = b.Sweep.BudgetMax
		}
		if b.Sweep.ThresholdMin != nil {
			w.ThresholdMin = b.Sweep.ThresholdMin
		}
		if b.Sweep.ThresholdMax != nil {
			w.ThresholdMax = b.Sweep.ThresholdMax
		}
		if b.Sweep.ThresholdStep != nil {
			w.ThresholdStep = b.Sweep.ThresholdStep
		}
		out.Sweep = &w
	}

	return out
}
