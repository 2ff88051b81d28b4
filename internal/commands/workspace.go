package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/importlog"
	"github.com/tally-dev/tally/internal/ingest"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
)

// workspace is an opened tally repository: config, ledger, rules and own
// accounts.
type workspace struct {
	root     string
	cfg      *config.Config
	store    ledger.Store
	accounts *accounts.Service
	global   []model.CategoryRule
	user     []model.CategoryRule
	now      func() time.Time
}

func openWorkspace(g *globals) (*workspace, error) {
	root, err := g.root()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(config.Resolve(root, config.FileName)); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a tally workspace (run \"tally init\")", root)
	}
	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return nil, err
	}

	global, err := loadGlobalRules(config.Resolve(root, cfg.Rules.GlobalPath))
	if err != nil {
		return nil, err
	}
	user, err := categorize.LoadRules(config.Resolve(root, cfg.Rules.UserPath))
	if err != nil {
		return nil, err
	}
	own, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}
	store, err := ledger.Open(cfg.Ledger.Backend, config.Resolve(root, cfg.Ledger.Path))
	if err != nil {
		return nil, err
	}

	return &workspace{
		root:     root,
		cfg:      cfg,
		store:    store,
		accounts: own,
		global:   global,
		user:     user,
		now:      time.Now,
	}, nil
}

// loadGlobalRules falls back to the built-in rules when the file is absent.
func loadGlobalRules(path string) ([]model.CategoryRule, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return categorize.DefaultGlobalRules(), nil
	}
	return categorize.LoadRules(path)
}

func (w *workspace) Close() error {
	return w.store.Close()
}

func (w *workspace) engine() *categorize.Engine {
	return categorize.NewEngine(w.global, w.user, w.accounts.Numbers())
}

func (w *workspace) importService() *ingest.Service {
	pipeline := ingest.NewPipeline(importer.DefaultRegistry(), w.engine(), ingest.Options{
		Workers:        w.cfg.Import.Workers,
		StrictDecoding: !w.cfg.Import.AllowLossyDecoding,
		Now:            w.now,
	})
	return ingest.NewService(w.store, pipeline)
}

func (w *workspace) importDir() string {
	return config.Resolve(w.root, w.cfg.Import.Dir)
}

// record appends to the import log and, when enabled, commits the workspace.
func (w *workspace) record(ctx context.Context, entry importlog.Entry, message string) error {
	entry.Timestamp = w.now()
	if err := importlog.Append(w.root, entry); err != nil {
		return err
	}
	return w.commit(ctx, message)
}

func (w *workspace) commit(ctx context.Context, message string) error {
	if !w.cfg.Git.AutoCommit || !gitops.IsRepo(w.root) {
		return nil
	}
	author := gitops.Author{Name: w.cfg.Git.AuthorName, Email: w.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(ctx, w.root, message, author)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("committing workspace: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("commit", hash).Msg("workspace committed")
	return nil
}
