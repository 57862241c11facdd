// Package main provides the CLI entrypoint for vp-record.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pursuit/internal/cli"
	"github.com/verte-zerg/pursuit/internal/clock"
	"github.com/verte-zerg/pursuit/internal/config"
	"github.com/verte-zerg/pursuit/internal/keymap"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/recordui"
	"github.com/verte-zerg/pursuit/internal/store"
	"github.com/verte-zerg/pursuit/internal/trajectory"
	"github.com/verte-zerg/pursuit/internal/trial"
)

var (
	configPath string

	recordDataDir   string
	recordMaxTrials int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vp-record",
		Short:         "Record pointer trajectories for Vertex Pursuit trials",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRecordCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&recordDataDir, "data-dir", config.DefaultDataDir, "directory holding trajectory records")
	rootCmd.Flags().IntVar(&recordMaxTrials, "max-trials", model.MaxTrials, "trials per participant")

	rootCmd.AddCommand(cli.NewConfigCmd(&configPath))
	rootCmd.AddCommand(newNextParticipantCmd())

	return rootCmd
}

func loadSettings(cmd *cobra.Command) (model.RecorderConfig, keymap.Bindings, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return model.RecorderConfig{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg, bindings, err := cli.RecorderSettings(fileCfg)
	if err != nil {
		return model.RecorderConfig{}, nil, err
	}
	cli.ApplyStringConfig(cmd, "data-dir", &recordDataDir, fileCfg.Storage.Dir)
	cfg.DataDir = recordDataDir
	if cmd.Flags().Lookup("max-trials") != nil {
		cli.ApplyIntConfig(cmd, "max-trials", &recordMaxTrials, fileCfg.Recorder.MaxTrials)
		cfg.MaxTrials = recordMaxTrials
	}
	if err := cli.ValidateRecorder(cfg); err != nil {
		return model.RecorderConfig{}, nil, err
	}
	return cfg, bindings, nil
}

func runRecordCmd(cmd *cobra.Command, _ []string) error {
	cfg, bindings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	dir := trajectory.NewDir(cfg.DataDir)
	participant, err := dir.NextParticipantID()
	if err != nil {
		return fmt.Errorf("failed to scan records: %w", err)
	}
	if err := dir.Ensure(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	var catalog recordui.Catalog
	st, err := store.Open(cfg.CatalogPath)
	if err != nil {
		cli.LogErrln("trial catalog unavailable, records are still saved:", err)
	} else {
		catalog = st
		defer func() {
			if cerr := st.Close(); cerr != nil {
				cli.LogErrf("failed to close catalog: %v\n", cerr)
			}
		}()
	}

	clk := clock.NewRealClock()
	session := trial.NewSession(dir, clk, participant, cfg.MaxTrials)
	keys := keymap.NewTranslator(bindings, cfg.EventRelease)
	m := recordui.NewModel(cfg, session, keys, clk, catalog)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newNextParticipantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-participant",
		Short: "Print the participant id the next recording will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			id, err := trajectory.NewDir(cfg.DataDir).NextParticipantID()
			if err != nil {
				return fmt.Errorf("failed to scan records: %w", err)
			}
			fmt.Println(id)
			return nil
		},
	}
}
