package cover

import (
	"sort"
)

// Set is a collection of identity names.
type Set map[string]struct{}

// NewSet constructs a set from the provided names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func (s Set) Add(name string) { s[name] = struct{}{} }

func (s Set) Remove(name string) { delete(s, name) }

func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Len() int { return len(s) }

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for name, _ := range s {
		c[name] = struct{}{}
	}
	return c
}

// Slice returns the members of the set in sorted order.
func (s Set) Slice() []string {
	names := make([]string, 0, len(s))
	for name, _ := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both sets hold exactly the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for name, _ := range s {
		if _, ok := other[name]; !ok {
			return false
		}
	}
	return true
}
