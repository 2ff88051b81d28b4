// Package amount parses monetary amounts written in either US or European
// separator conventions into exact decimals.
package amount

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string is not a number in any
// supported convention. Callers must not substitute zero.
var ErrInvalidAmount = errors.New("invalid amount")

var (
	commaDecimal = regexp.MustCompile(`,\d{2}$`)
	canonical    = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// Parse converts raw into an exact decimal.
//
//	"-41,060.93" -> -41060.93
//	"-5,00"      -> -5.00
//	"1.200,50"   -> 1200.50
//	"1,000"      -> 1000
//
// When both separators appear, the later one is the decimal point. A lone
// comma is a decimal point only when followed by exactly two trailing digits.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '\u2212':
			return '-'
		}
		return r
	}, raw)

	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if commaDecimal.MatchString(s) {
			s = s[:comma] + "." + s[comma+1:]
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	if !canonical.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}
	return d, nil
}
