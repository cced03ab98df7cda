package cover

import (
	"container/heap"
)

// candidate is the selector's private working copy of an input item: the
// deduplicated subset of the universe the item covers, plus the last known
// upper bound on its marginal gain.
type candidate struct {
	index  int
	item   Item
	covers []string
	bound  int
}

// gain returns the number of still-uncovered identities this candidate would
// newly cover.
func (c *candidate) gain(uncovered Set) int {
	n := 0
	for _, name := range c.covers {
		if uncovered.Contains(name) {
			n++
		}
	}
	return n
}

// candidatesHeap facilitates building prioritized collections of candidates.
type candidatesHeap struct {
	Candidates []*candidate
	LessFunc   candidatesLessFunc
}

type candidatesLessFunc func(a, b *candidate) bool

func newCandidatesHeap(lessFn candidatesLessFunc) *candidatesHeap {
	ch := &candidatesHeap{
		Candidates: []*candidate{},
		LessFunc:   lessFn,
	}
	heap.Init(ch)

	return ch
}

func (ch candidatesHeap) Len() int { return len(ch.Candidates) }
func (ch candidatesHeap) Less(i, j int) bool {
	return ch.LessFunc(ch.Candidates[i], ch.Candidates[j])
}
func (ch candidatesHeap) Swap(i, j int) {
	ch.Candidates[i], ch.Candidates[j] = ch.Candidates[j], ch.Candidates[i]
}

func (ch *candidatesHeap) Push(x interface{}) {
	// Push and Pop use pointer receivers because they modify the slice's length,
	// not just its contents.
	ch.Candidates = append(ch.Candidates, x.(*candidate))
}
func (ch *candidatesHeap) CandidatePush(c *candidate) {
	heap.Push(ch, c)
}

func (ch *candidatesHeap) Pop() interface{} {
	old := ch.Candidates
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	ch.Candidates = old[0 : n-1]
	return x
}
func (ch *candidatesHeap) CandidatePop() *candidate {
	if len(ch.Candidates) == 0 {
		return nil
	}
	return heap.Pop(ch).(*candidate)
}

// Slice drains a copy of the heap and returns the candidates in priority
// order, leaving the heap itself untouched.
func (ch *candidatesHeap) Slice() []*candidate {
	orig := make([]*candidate, ch.Len())
	copy(orig, ch.Candidates)

	s := make([]*candidate, 0, ch.Len())
	for ch.Len() > 0 {
		s = append(s, ch.CandidatePop())
	}

	ch.Candidates = orig

	return s
}

// candidatesByBound orders by descending gain bound, then by ascending input
// position so that equal gains resolve to the first item encountered.
var candidatesByBound = func(a, b *candidate) bool {
	if a.bound != b.bound {
		return a.bound > b.bound
	}
	return a.index < b.index
}
