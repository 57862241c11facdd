// Package cli holds the flag, config and logging plumbing shared by the
// recorder and replay commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/pursuit/internal/canvas"
	"github.com/verte-zerg/pursuit/internal/config"
	"github.com/verte-zerg/pursuit/internal/keymap"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/playback"
)

// DefaultFPS is the default screen refresh rate.
const DefaultFPS = 60

// ApplyStringConfig copies a config value into target unless the flag was set.
func ApplyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// ApplyIntConfig copies a config value into target unless the flag was set.
func ApplyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func stringOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}

func millis(value *int, fallback time.Duration) time.Duration {
	if value == nil {
		return fallback
	}
	return time.Duration(*value) * time.Millisecond
}

// RecorderSettings resolves recorder settings from the config file. Flag
// values are applied by the caller.
func RecorderSettings(fc config.FileConfig) (model.RecorderConfig, keymap.Bindings, error) {
	cfg := model.RecorderConfig{
		DataDir:      stringOr(fc.Storage.Dir, config.DefaultDataDir),
		CatalogPath:  stringOr(fc.Storage.Catalog, config.DefaultCatalogPath()),
		MaxTrials:    intOr(fc.Recorder.MaxTrials, model.MaxTrials),
		Surface:      intOr(fc.Recorder.Surface, canvas.DefaultSurface),
		EventRelease: millis(fc.Recorder.EventReleaseMs, keymap.DefaultEventRelease),
		FPS:          intOr(fc.Recorder.FPS, DefaultFPS),
	}
	bindings, err := keymap.RecorderDefaults().Override(fc.Recorder.Keys)
	if err != nil {
		return model.RecorderConfig{}, nil, fmt.Errorf("invalid [recorder.keys]: %w", err)
	}
	return cfg, bindings, nil
}

// ReplaySettings resolves replay settings from the config file.
func ReplaySettings(fc config.FileConfig) (model.ReplayConfig, keymap.Bindings, error) {
	cfg := model.ReplayConfig{
		DataDir:         stringOr(fc.Storage.Dir, config.DefaultDataDir),
		CatalogPath:     stringOr(fc.Storage.Catalog, config.DefaultCatalogPath()),
		MaxParticipants: intOr(fc.Replay.MaxParticipants, model.MaxParticipants),
		MaxTrials:       intOr(fc.Replay.MaxTrials, model.MaxTrials),
		DelayCap:        millis(fc.Replay.DelayCapMs, playback.DefaultDelayCap),
		Surface:         intOr(fc.Replay.Surface, canvas.DefaultSurface),
		FPS:             intOr(fc.Replay.FPS, DefaultFPS),
	}
	bindings, err := keymap.ReplayDefaults().Override(fc.Replay.Keys)
	if err != nil {
		return model.ReplayConfig{}, nil, fmt.Errorf("invalid [replay.keys]: %w", err)
	}
	return cfg, bindings, nil
}

// ValidateRecorder checks recorder settings after flags are applied.
func ValidateRecorder(cfg model.RecorderConfig) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("--data-dir must not be empty")
	}
	if cfg.MaxTrials <= 0 {
		return fmt.Errorf("--max-trials must be > 0")
	}
	if cfg.Surface <= 0 {
		return fmt.Errorf("surface must be > 0")
	}
	if cfg.EventRelease <= 0 {
		return fmt.Errorf("event-release-ms must be > 0")
	}
	if cfg.FPS <= 0 {
		return fmt.Errorf("fps must be > 0")
	}
	return nil
}

// ValidateReplay checks replay settings after flags are applied.
func ValidateReplay(cfg model.ReplayConfig) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("--data-dir must not be empty")
	}
	if cfg.MaxParticipants <= 0 {
		return fmt.Errorf("max-participants must be > 0")
	}
	if cfg.MaxTrials <= 0 {
		return fmt.Errorf("max-trials must be > 0")
	}
	if cfg.DelayCap <= 0 {
		return fmt.Errorf("delay-cap-ms must be > 0")
	}
	if cfg.Surface <= 0 {
		return fmt.Errorf("surface must be > 0")
	}
	if cfg.FPS <= 0 {
		return fmt.Errorf("fps must be > 0")
	}
	return nil
}

// LogErrf writes a formatted message to stderr.
func LogErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

// LogErrln writes a line to stderr.
func LogErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
