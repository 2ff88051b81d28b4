package accounts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tally-dev/tally/internal/model"
)

// File is the own-accounts registry, relative to the repo root.
const File = "accounts/own-accounts.csv"

// ErrDuplicateAccount is returned when adding a number already registered.
var ErrDuplicateAccount = errors.New("account already registered")

// Service provides in-memory lookup over the user's own accounts.
type Service struct {
	accounts []model.OwnAccount
	byNumber map[string]model.OwnAccount
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.OwnAccount) *Service {
	s := &Service{byNumber: make(map[string]model.OwnAccount, len(accounts))}
	for _, a := range accounts {
		s.accounts = append(s.accounts, a)
		s.byNumber[model.NormalizeAccountNumber(a.Number)] = a
	}
	return s
}

// Load reads accounts/own-accounts.csv from a repo root. A missing file
// yields an empty registry.
func Load(repoRoot string) (*Service, error) {
	f, err := os.Open(filepath.Join(repoRoot, File))
	if errors.Is(err, fs.ErrNotExist) {
		return NewService(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening own accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading own accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts in file order.
func (s *Service) All() []model.OwnAccount {
	return s.accounts
}

// Numbers returns the raw account numbers, for the categorization engine.
func (s *Service) Numbers() []string {
	out := make([]string, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = a.Number
	}
	return out
}

// IsOwn reports whether number is one of the user's accounts.
func (s *Service) IsOwn(number string) bool {
	n := model.NormalizeAccountNumber(number)
	if n == "" {
		return false
	}
	_, ok := s.byNumber[n]
	return ok
}

// Add registers an account.
func (s *Service) Add(acct model.OwnAccount) error {
	key := model.NormalizeAccountNumber(acct.Number)
	if key == "" {
		return fmt.Errorf("account number is empty")
	}
	if _, ok := s.byNumber[key]; ok {
		return fmt.Errorf("%s: %w", acct.Number, ErrDuplicateAccount)
	}
	s.accounts = append(s.accounts, acct)
	s.byNumber[key] = acct
	return nil
}

// Save writes the registry to accounts/own-accounts.csv.
func (s *Service) Save(repoRoot string) error {
	path := filepath.Join(repoRoot, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating own accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing own accounts: %w", err)
	}
	return f.Close()
}
