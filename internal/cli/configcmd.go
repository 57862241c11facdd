package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/pursuit/internal/canvas"
	"github.com/verte-zerg/pursuit/internal/config"
	"github.com/verte-zerg/pursuit/internal/keymap"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/playback"
)

// NewConfigCmd returns the command that creates and opens the config file.
// path is read when the command runs so a --config flag can change it.
func NewConfigCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := EnsureConfig(*path); err != nil {
				return err
			}
			return openEditor(*path)
		},
	}
}

// EnsureConfig writes the commented default config to path if it does not
// exist yet.
func EnsureConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(DefaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func openEditor(path string) error {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// DefaultConfigTemplate returns the config file written by the config command.
func DefaultConfigTemplate() string {
	return fmt.Sprintf(`# pursuit configuration
# Uncomment a value to enable it. CLI flags override config values.

[storage]
# dir = %q                   # Directory holding SHSA_<participant>_<trial>.csv records
# catalog = %q               # SQLite trial catalog

[recorder]
# max-trials = %d               # Trials per participant
# surface = %d               # Side of the logical drawing surface
# event-release-ms = %d        # Event key counts as released after this long without a repeat
# fps = %d                      # Screen refresh rate

[recorder.keys]
# start = "s"
# stop = "q"
# yes = "y"
# no = "n"
# event = "space"
# quit = "esc"

[replay]
# max-participants = %d         # Highest participant accepted by the selection screen
# max-trials = %d               # Highest trial accepted by the selection screen
# delay-cap-ms = %d            # Longest pause between two replayed samples
# surface = %d
# fps = %d

[replay.keys]
# load = "l"
# pause = "p"
# stop-replay = "q"
# restart = "r"
# quit = "esc"
`,
		config.DefaultDataDir,
		config.DefaultCatalogPath(),
		model.MaxTrials,
		canvas.DefaultSurface,
		keymap.DefaultEventRelease.Milliseconds(),
		DefaultFPS,
		model.MaxParticipants,
		model.MaxTrials,
		playback.DefaultDelayCap.Milliseconds(),
		canvas.DefaultSurface,
		DefaultFPS,
	)
}
