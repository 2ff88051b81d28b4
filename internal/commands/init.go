package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
)

func newInitCommand(g *globals) *cobra.Command {
	var useGit bool
	var backend string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := g.repo
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default()
			cfg.Ledger.Backend = backend
			if backend == "sqlite" {
				cfg.Ledger.Path = "ledger/tally.db"
			}
			cfg.Git.AutoCommit = useGit

			if err := runInit(absDir, cfg); err != nil {
				return err
			}
			if useGit {
				if err := gitops.Init(cmd.Context(), absDir); err != nil {
					return err
				}
				author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
				if _, err := gitops.CommitAll(cmd.Context(), absDir, "init: initialize tally workspace", author); err != nil {
					return fmt.Errorf("initial commit: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit after every import")
	cmd.Flags().StringVar(&backend, "backend", "csv", "ledger backend (csv or sqlite)")

	return cmd
}

func runInit(dir string, cfg *config.Config) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	// Create directory structure.
	dirs := []string{
		"accounts",
		"rules",
		"ledger",
		"logs",
		cfg.Import.Dir,
		filepath.Join(cfg.Import.Dir, "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := categorize.SaveRules(filepath.Join(dir, cfg.Rules.GlobalPath), categorize.DefaultGlobalRules()); err != nil {
		return fmt.Errorf("writing global rules: %w", err)
	}
	if err := categorize.SaveRules(filepath.Join(dir, cfg.Rules.UserPath), nil); err != nil {
		return fmt.Errorf("writing user rules: %w", err)
	}

	if err := accounts.NewService(nil).Save(dir); err != nil {
		return fmt.Errorf("writing own accounts: %w", err)
	}

	gitignore := ".env\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, cfg.Import.Dir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}
	return nil
}
