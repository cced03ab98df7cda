// Package namematch decides whether two author name strings plausibly refer to
// the same person, e.g. "John Smith", "J. Smith", "Smith, John" and
// "John A. Smith", or "Ho Kei Cheng" and "HK Cheng".
//
// Surnames must agree (a single letter may abbreviate a surname); given names
// may be abbreviated to initials, collapsed into a run of initials, or carry
// an extra middle name on one side.
package namematch

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	whitespaceExpr = regexp.MustCompile(`\s+`)
	camelCaseExpr  = regexp.MustCompile(`([a-z])([A-Z])`)

	// MaxPartsDifference is the largest difference in name part counts still
	// considered for a match.
	MaxPartsDifference = 2
)

// Normalize lowercases and collapses whitespace.
func Normalize(name string) string {
	name = strings.ToLower(name)
	name = whitespaceExpr.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Parts splits a name into lowercase components.  CamelCase runs ("JunGyu")
// and hyphenated names ("Joon-Young") are split, and trailing dots of
// abbreviations ("J.") are dropped.
func Parts(name string) []string {
	name = camelCaseExpr.ReplaceAllString(name, "${1} ${2}")
	name = strings.Replace(name, "-", " ", -1)
	name = Normalize(name)

	parts := []string{}
	for _, p := range strings.Fields(name) {
		if p = strings.TrimRight(p, "."); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Initials returns the concatenated first letters of each part.
func Initials(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		if p = strings.TrimRight(p, "."); p != "" {
			r, _ := utf8.DecodeRuneInString(p)
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Match reports whether name1 and name2 plausibly denote the same author.
func Match(name1 string, name2 string) bool {
	if name1 == "" || name2 == "" {
		return false
	}
	if Normalize(name1) == Normalize(name2) {
		return true
	}

	var (
		parts1 = orderedParts(name1)
		parts2 = orderedParts(name2)
	)
	if len(parts1) == 0 || len(parts2) == 0 {
		return false
	}
	if abs(len(parts1)-len(parts2)) > MaxPartsDifference {
		return false
	}

	surname := sharedSuffix(parts1, parts2)
	if surname == 0 {
		last1, last2 := parts1[len(parts1)-1], parts2[len(parts2)-1]
		if !abbreviates(last1, last2) && !abbreviates(last2, last1) {
			return false
		}
		surname = 1
	}

	var (
		given1 = parts1[:len(parts1)-surname]
		given2 = parts2[:len(parts2)-surname]
	)

	switch {
	case len(given1) == 0 && len(given2) == 0:
		return true
	case len(given1) == 0:
		return len(given2) == 1 && runeLen(given2[0]) == 1
	case len(given2) == 0:
		return len(given1) == 1 && runeLen(given1[0]) == 1
	}

	var (
		forward  = matchGiven(given1, given2)
		backward = matchGiven(given2, given1)
	)
	if forward && backward {
		return true
	}
	// One side may carry an extra middle name.
	if forward && len(given1) <= len(given2) {
		return true
	}
	if backward && len(given2) <= len(given1) {
		return true
	}
	return false
}

// orderedParts returns the name parts in "given ... surname" order, undoing a
// "Surname, Given" layout.
func orderedParts(name string) []string {
	parts := Parts(name)
	comma := strings.Index(name, ",")
	if comma == -1 {
		return parts
	}
	reordered := append(Parts(Normalize(name[comma+1:])), Parts(Normalize(name[:comma]))...)
	if len(reordered) == 0 {
		return parts
	}
	return reordered
}

// sharedSuffix returns how many trailing parts the two names have in common.
func sharedSuffix(a []string, b []string) int {
	i := 1
	for i <= len(a) && i <= len(b) {
		if strings.Join(a[len(a)-i:], " ") != strings.Join(b[len(b)-i:], " ") {
			break
		}
		i++
	}
	return i - 1
}

// matchGiven reports whether every given-name part of a finds a distinct
// counterpart in b, allowing initials, prefixes and collapsed initials runs.
func matchGiven(a []string, b []string) bool {
	a = trimDots(a)
	b = trimDots(b)
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	if len(b) == 1 && isInitialsOf(b[0], a) {
		return true
	}
	if len(a) == 1 && isInitialsOf(a[0], b) {
		return true
	}

	used := map[int]struct{}{}
	for _, pa := range a {
		found := false
		for i, pb := range b {
			if _, ok := used[i]; ok {
				continue
			}
			if pa == pb || abbreviates(pa, pb) || abbreviates(pb, pa) || prefixes(pa, pb) || prefixes(pb, pa) {
				used[i] = struct{}{}
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// isInitialsOf reports whether abbrev (e.g. "hk") is the initials run of parts
// (e.g. "ho", "kei").
func isInitialsOf(abbrev string, parts []string) bool {
	n := runeLen(abbrev)
	if n < 2 || n > len(parts) || !isAlpha(abbrev) {
		return false
	}
	return strings.ToLower(Initials(parts)) == strings.ToLower(abbrev)
}

// abbreviates reports whether short is a single-letter abbreviation of long.
func abbreviates(short string, long string) bool {
	return runeLen(short) == 1 && strings.HasPrefix(strings.ToLower(long), strings.ToLower(short))
}

// prefixes reports whether the multi-letter short is a prefix of long.
func prefixes(short string, long string) bool {
	return runeLen(short) > 1 && strings.HasPrefix(strings.ToLower(long), strings.ToLower(short))
}

func trimDots(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimRight(p, "."); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
