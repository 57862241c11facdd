// Package main provides the CLI entrypoint for vp-replay.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pursuit/internal/canvas"
	"github.com/verte-zerg/pursuit/internal/cli"
	"github.com/verte-zerg/pursuit/internal/clock"
	"github.com/verte-zerg/pursuit/internal/config"
	"github.com/verte-zerg/pursuit/internal/keymap"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/playback"
	"github.com/verte-zerg/pursuit/internal/replayui"
	"github.com/verte-zerg/pursuit/internal/report"
	"github.com/verte-zerg/pursuit/internal/store"
	"github.com/verte-zerg/pursuit/internal/trajectory"
)

var (
	configPath    string
	replayDataDir string

	replayParticipant int
	replayTrial       int

	listParticipant int
	listDisk        bool

	renderParticipant int
	renderTrial       int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vp-replay",
		Short:         "Replay recorded Vertex Pursuit trajectories",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReplayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&replayDataDir, "data-dir", config.DefaultDataDir, "directory holding trajectory records")
	rootCmd.Flags().IntVar(&replayParticipant, "participant", 0, "participant to load on start")
	rootCmd.Flags().IntVar(&replayTrial, "trial", 0, "trial to load on start")

	rootCmd.AddCommand(cli.NewConfigCmd(&configPath))
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRenderCmd())

	return rootCmd
}

func loadSettings(cmd *cobra.Command) (model.ReplayConfig, keymap.Bindings, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return model.ReplayConfig{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg, bindings, err := cli.ReplaySettings(fileCfg)
	if err != nil {
		return model.ReplayConfig{}, nil, err
	}
	cli.ApplyStringConfig(cmd, "data-dir", &replayDataDir, fileCfg.Storage.Dir)
	cfg.DataDir = replayDataDir
	if err := cli.ValidateReplay(cfg); err != nil {
		return model.ReplayConfig{}, nil, err
	}
	return cfg, bindings, nil
}

func runReplayCmd(cmd *cobra.Command, _ []string) error {
	cfg, bindings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dir := trajectory.NewDir(cfg.DataDir)
	clk := clock.NewRealClock()
	keys := keymap.NewTranslator(bindings, 0)
	m := replayui.NewModel(cfg, dir, keys, clk)

	if cmd.Flags().Changed("participant") || cmd.Flags().Changed("trial") {
		p, t, err := replayui.ParseSelection(fmt.Sprint(replayParticipant), fmt.Sprint(replayTrial), cfg.MaxParticipants, cfg.MaxTrials)
		if err != nil {
			return err
		}
		if err := m.Load(p, t); err != nil {
			cli.LogErrf("%v\n", err)
		}
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded trials",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	cmd.Flags().IntVar(&listParticipant, "participant", 0, "only list this participant")
	cmd.Flags().BoolVar(&listDisk, "disk", false, "scan the data directory instead of the catalog")
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if listDisk {
		refs, err := trajectory.NewDir(cfg.DataDir).List()
		if err != nil {
			return fmt.Errorf("failed to scan records: %w", err)
		}
		if listParticipant > 0 {
			filtered := refs[:0]
			for _, ref := range refs {
				if ref.Participant == listParticipant {
					filtered = append(filtered, ref)
				}
			}
			refs = filtered
		}
		return report.RenderRefs(os.Stdout, refs)
	}

	st, err := store.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			cli.LogErrf("failed to close catalog: %v\n", cerr)
		}
	}()
	entries, err := st.ListTrials(context.Background(), listParticipant)
	if err != nil {
		return fmt.Errorf("failed to list trials: %w", err)
	}
	return report.RenderTrials(os.Stdout, entries)
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the final frame of a replay",
		Args:  cobra.NoArgs,
		RunE:  runRenderCmd,
	}
	cmd.Flags().IntVar(&renderParticipant, "participant", 0, "participant number")
	cmd.Flags().IntVar(&renderTrial, "trial", 0, "trial number")
	_ = cmd.MarkFlagRequired("participant")
	_ = cmd.MarkFlagRequired("trial")
	return cmd
}

func runRenderCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dir := trajectory.NewDir(cfg.DataDir)
	rec, warnings, err := dir.Load(renderParticipant, renderTrial)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", trajectory.FileName(renderParticipant, renderTrial), err)
	}
	for _, w := range warnings {
		cli.LogErrf("Warning: %v\n", w)
	}

	engine := playback.New(rec, cfg.DelayCap)
	engine.SkipToEnd()

	width, height := canvas.TerminalSize()
	cols, rows := canvas.Fit(width, height-1)
	c := canvas.New(cfg.Surface, cols, rows)
	replayui.DrawReplay(c, engine)
	fmt.Println(c.Render())
	status := fmt.Sprintf("%s | %d samples | %d events | %.2fs",
		trajectory.FileName(renderParticipant, renderTrial),
		rec.Len(), rec.EventCount(), rec.Duration())
	fmt.Println(canvas.StatusLine(status, cols))
	return nil
}
