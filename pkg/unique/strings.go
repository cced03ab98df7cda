package unique

import (
	"sort"
	"strings"
)

// Strings returns a unique subset of the string slice provided, preserving the
// order of first appearance.
func Strings(input []string) []string {
	u := make([]string, 0, len(input))
	m := map[string]struct{}{}
	for _, val := range input {
		if _, ok := m[val]; !ok {
			m[val] = struct{}{}
			u = append(u, val)
		}
	}
	return u
}

// StringsSorted sorts the result before returning it.
func StringsSorted(input []string) []string {
	u := Strings(input)
	sort.Strings(u)
	return u
}

// Names cleans an author byline: surrounding whitespace is trimmed, blank
// entries are dropped and repeats removed, keeping first appearance order.
func Names(input []string) []string {
	trimmed := make([]string, 0, len(input))
	for _, name := range input {
		if name = strings.TrimSpace(name); name != "" {
			trimmed = append(trimmed, name)
		}
	}
	return Strings(trimmed)
}
