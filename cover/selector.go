// Package cover selects a small sequence of items whose covered identities
// span a target universe, using the greedy maximum-marginal-gain heuristic.
//
// The greedy rule: on every round choose the item newly covering the most
// still-uncovered identities, the first such item in input order on ties,
// and stop once the universe is covered or no remaining item makes progress.
// Identities no item covers are reported through Result.Uncovered, they are
// not an error.
package cover

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPriorIndex = errors.New("prior selection index is out of range or repeated")
	ErrPriorGain  = errors.New("prior selection item no longer covers any uncovered identity")
	ErrStrategy   = errors.New("unknown selection strategy")
)

const (
	DefaultPruneInterval     = 10
	DefaultAdvisoryThreshold = 99.5
)

// Item is anything covering a subset of identities.
type Item interface {
	Covers() []string
}

// Strategy chooses how the selector finds the best item each round.  Both
// strategies produce identical selections.
type Strategy int

const (
	// Scan re-examines every live candidate each round and drops exhausted
	// candidates every PruneInterval rounds.
	Scan Strategy = iota
	// Lazy keeps candidates in a max-heap keyed by a gain upper bound which is
	// only recomputed when a candidate reaches the top.
	Lazy
)

func (s Strategy) String() string {
	switch s {
	case Scan:
		return "scan"
	case Lazy:
		return "lazy"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a strategy name, as returned by String, to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "scan":
		return Scan, nil
	case "lazy":
		return Lazy, nil
	default:
		return Scan, fmt.Errorf("%w: %q", ErrStrategy, name)
	}
}

// Pick is a single selected item.
type Pick struct {
	Index int  // Position of the item in the input slice.
	Item  Item // The selected item.
	Gain  int  // Identities newly covered when the item was chosen.
}

// Result holds the outcome of a selection run.
type Result struct {
	Selection []Pick
	Uncovered Set // Universe members left uncovered; empty on full coverage.
	Relevant  int // Number of input items intersecting the universe.
}

// Indices returns the input positions of the selected items in pick order.
func (r *Result) Indices() []int {
	idx := make([]int, len(r.Selection))
	for i, p := range r.Selection {
		idx[i] = p.Index
	}
	return idx
}

// Items returns the selected items in pick order.
func (r *Result) Items() []Item {
	items := make([]Item, len(r.Selection))
	for i, p := range r.Selection {
		items[i] = p.Item
	}
	return items
}

// Selector is the minimal cover selector.  A Selector holds configuration
// only and may be reused; each call works on private copies of its inputs.
type Selector struct {
	Strategy          Strategy
	PruneInterval     int     // Scan only; <= 0 prunes every round.
	AdvisoryThreshold float64 // Coverage percentage reported via Progress.PastThreshold.
	Observer          Observer
}

// Option configures a Selector.
type Option func(*Selector)

func WithStrategy(strategy Strategy) Option {
	return func(s *Selector) { s.Strategy = strategy }
}

func WithPruneInterval(k int) Option {
	return func(s *Selector) { s.PruneInterval = k }
}

func WithAdvisoryThreshold(pct float64) Option {
	return func(s *Selector) { s.AdvisoryThreshold = pct }
}

func WithObserver(o Observer) Option {
	return func(s *Selector) { s.Observer = o }
}

func New(opts ...Option) *Selector {
	s := &Selector{
		Strategy:          Scan,
		PruneInterval:     DefaultPruneInterval,
		AdvisoryThreshold: DefaultAdvisoryThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select greedily chooses items until the universe is covered or no item can
// make further progress.  Neither universe nor items are modified.
func (s *Selector) Select(universe Set, items []Item) *Result {
	// Without prior picks Continue cannot fail.
	res, _ := s.Continue(universe, items, nil)
	return res
}

// Continue resumes a selection whose first picks are already known, given as
// indices into items in the order they were chosen.  The prior picks are
// replayed first, then the greedy rounds carry on over the remaining items.
// Because each round depends only on the uncovered set and the remaining pool,
// the outcome equals an uninterrupted Select over the same inputs.
func (s *Selector) Continue(universe Set, items []Item, prior []int) (*Result, error) {
	st := newState(s, universe)

	seen := make(map[int]struct{}, len(prior))
	for _, idx := range prior {
		if idx < 0 || idx >= len(items) {
			return nil, ErrPriorIndex
		}
		if _, ok := seen[idx]; ok {
			return nil, ErrPriorIndex
		}
		seen[idx] = struct{}{}
	}

	pool := make([]*candidate, 0, len(items))
	byIndex := map[int]*candidate{}
	for i, item := range items {
		c := &candidate{
			index:  i,
			item:   item,
			covers: intersect(item, universe),
		}
		if len(c.covers) == 0 {
			if _, ok := seen[i]; !ok {
				continue
			}
		} else {
			st.relevant++
		}
		if _, ok := seen[i]; ok {
			byIndex[i] = c
			continue
		}
		pool = append(pool, c)
	}

	for _, idx := range prior {
		c := byIndex[idx]
		g := c.gain(st.uncovered)
		if g == 0 {
			return nil, ErrPriorGain
		}
		st.pick(c, g, len(pool))
	}

	switch s.Strategy {
	case Lazy:
		st.lazy(pool)
	default:
		st.scan(pool)
	}

	return st.result(), nil
}

type state struct {
	selector  *Selector
	total     int
	uncovered Set
	selection []Pick
	relevant  int
}

func newState(s *Selector, universe Set) *state {
	st := &state{
		selector:  s,
		total:     universe.Len(),
		uncovered: universe.Clone(),
		selection: []Pick{},
	}
	return st
}

func (st *state) result() *Result {
	res := &Result{
		Selection: st.selection,
		Uncovered: st.uncovered,
		Relevant:  st.relevant,
	}
	return res
}

// pick records c as the next selection and subtracts its identities from the
// uncovered set.
func (st *state) pick(c *candidate, gain int, remaining int) {
	p := Pick{
		Index: c.index,
		Item:  c.item,
		Gain:  gain,
	}
	st.selection = append(st.selection, p)
	for _, name := range c.covers {
		st.uncovered.Remove(name)
	}

	if st.selector.Observer != nil {
		prog := Progress{
			Iteration:  len(st.selection),
			Pick:       p,
			Covered:    st.total - st.uncovered.Len(),
			Total:      st.total,
			Candidates: remaining,
		}
		prog.PastThreshold = prog.Percent() >= st.selector.AdvisoryThreshold
		st.selector.Observer.Picked(prog)
	}
}

// scan is the reference strategy: a full pass over the live pool per round,
// where only a strictly greater gain displaces the current best.
func (st *state) scan(pool []*candidate) {
	interval := st.selector.PruneInterval
	rounds := 0

	for st.uncovered.Len() > 0 && len(pool) > 0 {
		rounds++

		var (
			bestIdx  = -1
			bestGain = 0
		)
		for i, c := range pool {
			if g := c.gain(st.uncovered); g > bestGain {
				bestGain = g
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			return
		}

		best := pool[bestIdx]
		pool = append(pool[:bestIdx], pool[bestIdx+1:]...)
		st.pick(best, bestGain, len(pool))

		if interval <= 0 || rounds%interval == 0 {
			pool = prune(pool, st.uncovered)
		}
	}
}

// lazy pops the candidate with the highest gain bound.  Bounds only ever
// shrink, so a popped candidate whose recomputed gain still equals its bound
// is a true maximum, and the index tie-break in the heap ordering makes it
// the first such candidate in input order.
func (st *state) lazy(pool []*candidate) {
	h := newCandidatesHeap(candidatesByBound)
	for _, c := range pool {
		if c.bound = c.gain(st.uncovered); c.bound > 0 {
			h.CandidatePush(c)
		}
	}

	for st.uncovered.Len() > 0 {
		c := h.CandidatePop()
		if c == nil {
			return
		}
		g := c.gain(st.uncovered)
		if g == 0 {
			continue
		}
		if g < c.bound {
			c.bound = g
			h.CandidatePush(c)
			continue
		}
		st.pick(c, g, h.Len())
	}
}

// prune drops candidates that no longer cover anything uncovered, keeping the
// survivors in their original order.
func prune(pool []*candidate, uncovered Set) []*candidate {
	live := pool[:0]
	for _, c := range pool {
		if c.gain(uncovered) > 0 {
			live = append(live, c)
		}
	}
	for i := len(live); i < len(pool); i++ {
		pool[i] = nil
	}
	return live
}

// intersect returns the distinct identities of item that belong to universe,
// in the order the item lists them.
func intersect(item Item, universe Set) []string {
	var (
		names  = item.Covers()
		out    = make([]string, 0, len(names))
		isDupe = make(map[string]struct{}, len(names))
	)
	for _, name := range names {
		if !universe.Contains(name) {
			continue
		}
		if _, ok := isDupe[name]; ok {
			continue
		}
		isDupe[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
