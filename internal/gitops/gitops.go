// Package gitops versions the workspace with git so every import and batch
// deletion can be reviewed and reverted.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by CommitAll when the tree is clean.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author identifies the committer of workspace changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string { return fmt.Sprintf("%s <%s>", a.Name, a.Email) }

func git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return out, nil
}

// Init initializes a new git repository at dir.
func Init(ctx context.Context, dir string) error {
	_, err := git(ctx, dir, "init")
	return err
}

// HasChanges reports whether the working tree differs from HEAD.
func HasChanges(ctx context.Context, dir string) (bool, error) {
	out, err := git(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}

// CommitAll stages all files and creates a commit. Returns the short commit
// hash, or ErrNothingToCommit when there is nothing staged.
func CommitAll(ctx context.Context, dir, message string, author Author) (string, error) {
	if _, err := git(ctx, dir, "add", "-A"); err != nil {
		return "", err
	}

	changed, err := HasChanges(ctx, dir)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", ErrNothingToCommit
	}

	// The author doubles as committer so commits work without a global git identity.
	if _, err := git(ctx, dir,
		"-c", "user.name="+author.Name,
		"-c", "user.email="+author.Email,
		"commit", "-m", message, "--author", author.String(),
	); err != nil {
		return "", err
	}

	out, err := git(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
