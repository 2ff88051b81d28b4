package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/buildinfo"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/logger"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	repo     string
	logLevel string
}

// root returns the absolute workspace root.
func (g *globals) root() (string, error) {
	abs, err := filepath.Abs(g.repo)
	if err != nil {
		return "", fmt.Errorf("resolving workspace path: %w", err)
	}
	return abs, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Import bank statements into a categorized, deduplicated ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return attachLogger(cmd, g)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.repo, "repo", "C", ".", "workspace directory")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides tally.yaml")

	rootCmd.AddCommand(
		newInitCommand(g),
		newImportCommand(g),
		newBatchesCommand(g),
		newRulesCommand(g),
		newAccountsCommand(g),
	)

	return rootCmd
}

// attachLogger builds the logger from the workspace config and stores it in
// the command context.
func attachLogger(cmd *cobra.Command, g *globals) error {
	root, err := g.root()
	if err != nil {
		return err
	}
	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	log, err := logger.New(level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}
