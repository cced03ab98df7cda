package namematch

import (
	"sort"
	"sync"
)

// Resolver maps raw author strings onto a fixed set of canonical names.
type Resolver struct {
	normalized map[string]string   // Normalize(name) -> canonical name.
	bySurname  map[string][]string // Surname part -> canonical names, sorted.
	cache      map[string]resolution
	mu         sync.Mutex
}

type resolution struct {
	name string
	ok   bool
}

// NewResolver indexes the canonical names.  When several canonical names
// normalize identically, the lexically smallest one wins.
func NewResolver(canonical []string) *Resolver {
	names := make([]string, len(canonical))
	copy(names, canonical)
	sort.Strings(names)

	r := &Resolver{
		normalized: map[string]string{},
		bySurname:  map[string][]string{},
		cache:      map[string]resolution{},
	}
	for _, name := range names {
		key := Normalize(name)
		if _, ok := r.normalized[key]; !ok {
			r.normalized[key] = name
		}
		if parts := orderedParts(name); len(parts) > 0 {
			surname := parts[len(parts)-1]
			r.bySurname[surname] = append(r.bySurname[surname], name)
		}
	}
	return r
}

// Resolve returns the canonical name raw refers to.  Exact matches (modulo
// case and whitespace) win; otherwise the first canonical name, in sorted
// order, sharing raw's surname and satisfying Match is returned.
func (r *Resolver) Resolve(raw string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.cache[raw]; ok {
		return res.name, res.ok
	}

	res := r.resolve(raw)
	r.cache[raw] = res
	return res.name, res.ok
}

func (r *Resolver) resolve(raw string) resolution {
	if name, ok := r.normalized[Normalize(raw)]; ok {
		return resolution{name: name, ok: true}
	}
	parts := orderedParts(raw)
	if len(parts) == 0 {
		return resolution{}
	}
	for _, candidate := range r.bySurname[parts[len(parts)-1]] {
		if Match(raw, candidate) {
			return resolution{name: candidate, ok: true}
		}
	}
	return resolution{}
}

// Len returns the number of canonical names indexed.
func (r *Resolver) Len() int {
	return len(r.normalized)
}
