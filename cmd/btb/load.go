package main

import (
	"fmt"

	"github.com/btb-suite/beatthebox/internal/config"
)

// loadRaw merges the preset (if any) over the defaults from --config-dir.
// With no --config-dir everything falls back to built-in defaults.
func loadRaw() (config.RawConfig, *config.Loader, error) {
	if flagConfigDir == "" {
		if flagPreset != "" {
			return config.RawConfig{}, nil, fmt.Errorf("--preset requires --config-dir")
		}
		return config.RawConfig{}, nil, nil
	}
	loader := config.NewLoader(flagConfigDir)
	raw, err := loader.LoadMerged(flagPreset)
	if err != nil {
		return config.RawConfig{}, nil, err
	}
	if err := config.ValidateRaw(raw); err != nil {
		return config.RawConfig{}, nil, err
	}
	return raw, loader, nil
}
