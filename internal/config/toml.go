// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Storage  StorageConfig  `toml:"storage"`
	Recorder RecorderConfig `toml:"recorder"`
	Replay   ReplayConfig   `toml:"replay"`
}

// StorageConfig maps where records and the catalog live.
type StorageConfig struct {
	Dir     *string `toml:"dir"`
	Catalog *string `toml:"catalog"`
}

// RecorderConfig maps recorder settings.
type RecorderConfig struct {
	MaxTrials      *int              `toml:"max-trials"`
	Surface        *int              `toml:"surface"`
	EventReleaseMs *int              `toml:"event-release-ms"`
	FPS            *int              `toml:"fps"`
	// Keys maps command names to key names.
	Keys           map[string]string `toml:"keys"`
}

// ReplayConfig maps replay settings.
type ReplayConfig struct {
	MaxParticipants *int              `toml:"max-participants"`
	MaxTrials       *int              `toml:"max-trials"`
	DelayCapMs      *int              `toml:"delay-cap-ms"`
	Surface         *int              `toml:"surface"`
	FPS             *int              `toml:"fps"`
	Keys            map[string]string `toml:"keys"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
