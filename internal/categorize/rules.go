package categorize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tally-dev/tally/internal/model"
)

// RuleFile is the on-disk shape of a rules YAML file.
type RuleFile struct {
	Rules []model.CategoryRule `yaml:"rules"`
}

// LoadRules reads a rules file. A missing file yields no rules. Types and
// directions are canonicalized; an invalid rule fails the whole load.
func LoadRules(path string) ([]model.CategoryRule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}

	rules := make([]model.CategoryRule, 0, len(rf.Rules))
	for i, r := range rf.Rules {
		r, err := canonicalize(r)
		if err != nil {
			return nil, fmt.Errorf("%s: rule %d: %w", path, i+1, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// SaveRules writes rules to path, creating parent directories.
func SaveRules(path string, rules []model.CategoryRule) error {
	if rules == nil {
		rules = []model.CategoryRule{}
	}
	data, err := yaml.Marshal(RuleFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// NewRule validates and canonicalizes user input into a rule.
func NewRule(pattern, category, txType, direction string) (model.CategoryRule, error) {
	return canonicalize(model.CategoryRule{
		Pattern:   pattern,
		Category:  category,
		Type:      model.TransactionType(txType),
		Direction: model.Direction(direction),
	})
}

func canonicalize(r model.CategoryRule) (model.CategoryRule, error) {
	if err := r.Validate(); err != nil {
		return r, err
	}
	t, _ := model.ParseTransactionType(string(r.Type))
	d, _ := model.ParseDirection(string(r.Direction))
	r.Type = t
	r.Direction = d
	return r, nil
}
