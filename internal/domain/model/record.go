// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// CrimeRecord is one melted cell of a Met Police extract: the count of
// a (major, minor) crime category in one borough for one month.
type CrimeRecord struct {
	Borough string // borough name as it appears in the extract
	Major   string // major category, e.g. "Robbery"
	Minor   string // minor category, e.g. "Robbery of Personal Property"
	Month   string // canonical YYYY-MM
	Count   int
}

// Fingerprint identifies a record across overlapping extracts. Two
// extracts reporting the same cell produce the same fingerprint.
func (r CrimeRecord) Fingerprint() string {
	return strings.Join([]string{
		NormalizeBorough(r.Borough),
		r.Major,
		r.Minor,
		r.Month,
	}, "|")
}

// NormalizeBorough canonicalizes a borough name for joining: trimmed,
// internal whitespace collapsed, lower-cased.
func NormalizeBorough(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ParseMonth converts a month column header to canonical YYYY-MM.
// Accepted inputs: YYYYMM and YYYY-MM.
func ParseMonth(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 6: // YYYYMM
		if !allDigits(s) {
			return "", fmt.Errorf("invalid month %q", s)
		}
		return s[:4] + "-" + s[4:], nil
	case 7: // YYYY-MM
		if s[4] != '-' || !allDigits(s[:4]) || !allDigits(s[5:]) {
			return "", fmt.Errorf("invalid month %q", s)
		}
		return s, nil
	default:
		return "", fmt.Errorf("invalid month %q", s)
	}
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
