package model

import (
	"strings"
	"unicode"
)

// OwnAccount is one of the user's own bank accounts. Money moving between two
// own accounts is an internal transfer, not income or spending.
type OwnAccount struct {
	Number      string
	Name        string
	Currency    string
	Description string
}

// NormalizeAccountNumber strips all whitespace and upper-cases an account
// number so "CZ65 0800 0000" and "cz6508000000" compare equal.
func NormalizeAccountNumber(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
