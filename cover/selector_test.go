package cover

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

type testItem []string

func (ti testItem) Covers() []string { return ti }

func items(covers ...[]string) []Item {
	out := make([]Item, len(covers))
	for i, c := range covers {
		out[i] = testItem(c)
	}
	return out
}

var strategies = []Strategy{Scan, Lazy}

func TestSelectFullCoverage(t *testing.T) {
	for _, strategy := range strategies {
		var (
			universe = NewSet("A", "B", "C")
			in       = items([]string{"A"}, []string{"B", "C"})
			res      = New(WithStrategy(strategy)).Select(universe, in)
		)
		if expected, actual := []int{1, 0}, res.Indices(); !reflect.DeepEqual(actual, expected) {
			t.Errorf("[%v] Expected selection indices=%v but actual=%v", strategy, expected, actual)
		}
		if expected, actual := []int{2, 1}, gains(res); !reflect.DeepEqual(actual, expected) {
			t.Errorf("[%v] Expected gains=%v but actual=%v", strategy, expected, actual)
		}
		if expected, actual := 0, res.Uncovered.Len(); actual != expected {
			t.Errorf("[%v] Expected uncovered=%v but actual=%v (%v)", strategy, expected, actual, res.Uncovered.Slice())
		}
	}
}

func TestSelectPartialCoverage(t *testing.T) {
	for _, strategy := range strategies {
		var (
			universe = NewSet("A", "B", "X")
			in       = items([]string{"A", "B"})
			res      = New(WithStrategy(strategy)).Select(universe, in)
		)
		if expected, actual := []int{0}, res.Indices(); !reflect.DeepEqual(actual, expected) {
			t.Errorf("[%v] Expected selection indices=%v but actual=%v", strategy, expected, actual)
		}
		if expected, actual := []string{"X"}, res.Uncovered.Slice(); !reflect.DeepEqual(actual, expected) {
			t.Errorf("[%v] Expected uncovered=%v but actual=%v", strategy, expected, actual)
		}
	}
}

func TestSelectTieBreakFirstWins(t *testing.T) {
	for _, strategy := range strategies {
		var (
			universe = NewSet("A", "B")
			in       = items([]string{"A"}, []string{"B"})
			res      = New(WithStrategy(strategy)).Select(universe, in)
		)
		if expected, actual := []int{0, 1}, res.Indices(); !reflect.DeepEqual(actual, expected) {
			t.Errorf("[%v] Expected selection indices=%v but actual=%v", strategy, expected, actual)
		}
	}

	// An earlier item whose gain has shrunk to equal a later item's gain still
	// wins the tie.
	for _, strategy := range strategies {
		var (
			universe = NewSet("A", "B", "C", "D", "E", "F", "G")
			in       = items(
				[]string{"A", "B", "C"},
				[]string{"C", "D", "E"},
				[]string{"F", "G"},
			)
			res = New(WithStrategy(strategy)).Select(universe, in)
		)
		if expected, actual := []int{0, 1, 2}, res.Indices(); !reflect.DeepEqual(actual, expected) {
			t.Errorf("[%v] Expected selection indices=%v but actual=%v", strategy, expected, actual)
		}
		if expected, actual := []int{3, 2, 2}, gains(res); !reflect.DeepEqual(actual, expected) {
			t.Errorf("[%v] Expected gains=%v but actual=%v", strategy, expected, actual)
		}
	}
}

func TestSelectEmptyItems(t *testing.T) {
	for _, strategy := range strategies {
		var (
			universe = NewSet("A", "B")
			res      = New(WithStrategy(strategy)).Select(universe, nil)
		)
		if expected, actual := 0, len(res.Selection); actual != expected {
			t.Errorf("[%v] Expected selection len=%v but actual=%v", strategy, expected, actual)
		}
		if !res.Uncovered.Equal(universe) {
			t.Errorf("[%v] Expected uncovered=%v but actual=%v", strategy, universe.Slice(), res.Uncovered.Slice())
		}
	}
}

func TestSelectIgnoresIrrelevantAndDuplicateIdentities(t *testing.T) {
	var (
		universe = NewSet("A", "B")
		in       = items(
			[]string{"Z", "Y"},
			[]string{"A", "A", "A", "Q"},
			[]string{"A", "B"},
		)
		res = New().Select(universe, in)
	)
	if expected, actual := []int{2}, res.Indices(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected selection indices=%v but actual=%v", expected, actual)
	}
	if expected, actual := 2, res.Relevant; actual != expected {
		t.Errorf("Expected relevant=%v but actual=%v", expected, actual)
	}
}

func TestSelectDoesNotMutateInputs(t *testing.T) {
	var (
		universe = NewSet("A", "B", "C")
		in       = items([]string{"A"}, []string{"B", "C"}, []string{"C"})
		before   = fmt.Sprintf("%v", in)
	)
	New(WithPruneInterval(1)).Select(universe, in)
	New(WithStrategy(Lazy)).Select(universe, in)

	if expected, actual := 3, universe.Len(); actual != expected {
		t.Errorf("Expected universe len=%v but actual=%v", expected, actual)
	}
	if expected, actual := before, fmt.Sprintf("%v", in); actual != expected {
		t.Errorf("Expected items=%v but actual=%v", expected, actual)
	}
}

// TestSelectProperties checks the invariants on randomized inputs for both
// strategies and several prune intervals.
func TestSelectProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 60; round++ {
		universe, in := randomInstance(rng, 5+rng.Intn(60), rng.Intn(120))

		reference := New(WithStrategy(Scan), WithPruneInterval(DefaultPruneInterval)).Select(universe, in)

		for _, sel := range []*Selector{
			New(WithStrategy(Scan), WithPruneInterval(1)),
			New(WithStrategy(Scan), WithPruneInterval(0)),
			New(WithStrategy(Scan), WithPruneInterval(7)),
			New(WithStrategy(Scan), WithPruneInterval(1000)),
			New(WithStrategy(Lazy)),
		} {
			var (
				prevUncovered = universe.Len()
				observed      = 0
			)
			sel.Observer = ObserverFunc(func(p Progress) {
				observed++
				if expected, actual := observed, p.Iteration; actual != expected {
					t.Errorf("[round=%v] Expected iteration=%v but actual=%v", round, expected, actual)
				}
				uncovered := p.Total - p.Covered
				if uncovered >= prevUncovered {
					t.Errorf("[round=%v] Uncovered count did not strictly decrease: %v -> %v", round, prevUncovered, uncovered)
				}
				if p.Pick.Gain <= 0 {
					t.Errorf("[round=%v] Selected item with non-positive gain=%v", round, p.Pick.Gain)
				}
				if expected, actual := prevUncovered-p.Pick.Gain, uncovered; actual != expected {
					t.Errorf("[round=%v] Expected uncovered=%v after gain=%v but actual=%v", round, expected, p.Pick.Gain, actual)
				}
				prevUncovered = uncovered
			})

			res := sel.Select(universe, in)

			if expected, actual := reference.Indices(), res.Indices(); !reflect.DeepEqual(actual, expected) {
				t.Fatalf("[round=%v strategy=%v prune=%v] Expected selection=%v but actual=%v", round, sel.Strategy, sel.PruneInterval, expected, actual)
			}
			if !res.Uncovered.Equal(reference.Uncovered) {
				t.Fatalf("[round=%v] Uncovered sets differ between strategies", round)
			}
			if expected, actual := len(res.Selection), observed; actual != expected {
				t.Errorf("[round=%v] Expected %v observer notifications but actual=%v", round, expected, actual)
			}
		}

		// Termination bound.
		if l := len(reference.Selection); l > universe.Len() {
			t.Errorf("[round=%v] Selection len=%v exceeds universe size=%v", round, l, universe.Len())
		}

		// Remainder is exactly the universe minus everything selected.
		expectedRemainder := universe.Clone()
		for _, item := range reference.Items() {
			for _, name := range item.Covers() {
				expectedRemainder.Remove(name)
			}
		}
		if !reference.Uncovered.Equal(expectedRemainder) {
			t.Errorf("[round=%v] Expected remainder=%v but actual=%v", round, expectedRemainder.Slice(), reference.Uncovered.Slice())
		}

		// At the fixed point no leftover item covers anything uncovered.
		picked := map[int]struct{}{}
		for _, idx := range reference.Indices() {
			picked[idx] = struct{}{}
		}
		for i, item := range in {
			if _, ok := picked[i]; ok {
				continue
			}
			for _, name := range item.Covers() {
				if reference.Uncovered.Contains(name) {
					t.Errorf("[round=%v] Unselected item %v still covers uncovered identity %q", round, i, name)
				}
			}
		}

		// Determinism.
		again := New().Select(universe, in)
		if !reflect.DeepEqual(again.Indices(), reference.Indices()) {
			t.Errorf("[round=%v] Selection is not deterministic", round)
		}
	}
}

func TestSelectGreedyChoiceIsMaximal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	universe, in := randomInstance(rng, 40, 80)

	var (
		res       = New().Select(universe, in)
		uncovered = universe.Clone()
		picked    = map[int]struct{}{}
	)
	for _, p := range res.Selection {
		for i, item := range in {
			if _, ok := picked[i]; ok {
				continue
			}
			g := newCandidate(i, item, universe).gain(uncovered)
			if g > p.Gain || (g == p.Gain && i < p.Index) {
				t.Fatalf("Item %v (gain=%v) should have been chosen over %v (gain=%v)", i, g, p.Index, p.Gain)
			}
		}
		picked[p.Index] = struct{}{}
		for _, name := range p.Item.Covers() {
			uncovered.Remove(name)
		}
	}
}

func TestContinueMatchesSelect(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for round := 0; round < 25; round++ {
		universe, in := randomInstance(rng, 10+rng.Intn(40), 20+rng.Intn(60))

		full := New().Select(universe, in)
		indices := full.Indices()

		for cut := 0; cut <= len(indices); cut++ {
			for _, strategy := range strategies {
				res, err := New(WithStrategy(strategy)).Continue(universe, in, indices[:cut])
				if err != nil {
					t.Fatalf("[round=%v cut=%v] %s", round, cut, err)
				}
				if expected, actual := indices, res.Indices(); !reflect.DeepEqual(actual, expected) {
					t.Fatalf("[round=%v cut=%v strategy=%v] Expected selection=%v but actual=%v", round, cut, strategy, expected, actual)
				}
				if !res.Uncovered.Equal(full.Uncovered) {
					t.Fatalf("[round=%v cut=%v] Uncovered sets differ", round, cut)
				}
			}
		}
	}
}

func TestContinueRejectsBadPrior(t *testing.T) {
	var (
		universe = NewSet("A", "B")
		in       = items([]string{"A"}, []string{"A", "B"}, []string{"Z"})
		sel      = New()
	)
	testCases := []struct {
		prior []int
		err   error
	}{
		{prior: []int{-1}, err: ErrPriorIndex},
		{prior: []int{3}, err: ErrPriorIndex},
		{prior: []int{1, 1}, err: ErrPriorIndex},
		{prior: []int{1, 0}, err: ErrPriorGain},
		{prior: []int{2}, err: ErrPriorGain},
		{prior: []int{1}, err: nil},
	}
	for i, testCase := range testCases {
		if _, err := sel.Continue(universe, in, testCase.prior); err != testCase.err {
			t.Errorf("[i=%v] Expected err=%v but actual=%v", i, testCase.err, err)
		}
	}
}

func TestAdvisoryThresholdDoesNotStopSelection(t *testing.T) {
	var (
		universe = NewSet("A", "B", "C", "D")
		in       = items([]string{"A", "B", "C"}, []string{"D"})
		flags    []bool
		sel      = New(
			WithAdvisoryThreshold(50),
			WithObserver(ObserverFunc(func(p Progress) {
				flags = append(flags, p.PastThreshold)
			})),
		)
		res = sel.Select(universe, in)
	)
	if expected, actual := []bool{true, true}, flags; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected advisory flags=%v but actual=%v", expected, actual)
	}
	if expected, actual := 2, len(res.Selection); actual != expected {
		t.Errorf("Expected selection len=%v but actual=%v", expected, actual)
	}
}

func TestMultiObserver(t *testing.T) {
	var a, b int
	mo := MultiObserver{
		ObserverFunc(func(_ Progress) { a++ }),
		nil,
		ObserverFunc(func(_ Progress) { b++ }),
	}
	New(WithObserver(mo)).Select(NewSet("A", "B"), items([]string{"A"}, []string{"B"}))
	if a != 2 || b != 2 {
		t.Errorf("Expected both observers to be notified twice, actual a=%v b=%v", a, b)
	}
}

func gains(res *Result) []int {
	g := make([]int, len(res.Selection))
	for i, p := range res.Selection {
		g[i] = p.Gain
	}
	return g
}

func newCandidate(i int, item Item, universe Set) *candidate {
	return &candidate{
		index:  i,
		item:   item,
		covers: intersect(item, universe),
	}
}

// randomInstance builds a universe of n identities and m items.  Items draw
// from n+5 names so some reference identities outside the universe, and some
// universe members may end up unreachable.
func randomInstance(rng *rand.Rand, n int, m int) (Set, []Item) {
	universe := NewSet()
	for i := 0; i < n; i++ {
		universe.Add(fmt.Sprintf("id-%03d", i))
	}
	in := make([]Item, m)
	for i := 0; i < m; i++ {
		k := rng.Intn(6)
		ti := make(testItem, 0, k)
		for j := 0; j < k; j++ {
			ti = append(ti, fmt.Sprintf("id-%03d", rng.Intn(n+5)))
		}
		in[i] = ti
	}
	return universe, in
}

func TestParseStrategy(t *testing.T) {
	testCases := []struct {
		in       string
		strategy Strategy
		ok       bool
	}{
		{in: "", strategy: Scan, ok: true},
		{in: "scan", strategy: Scan, ok: true},
		{in: " Lazy ", strategy: Lazy, ok: true},
		{in: "heap", ok: false},
	}
	for i, testCase := range testCases {
		strategy, err := ParseStrategy(testCase.in)
		if !testCase.ok {
			if !errors.Is(err, ErrStrategy) {
				t.Errorf("[i=%v] Expected err=%s but actual=%v", i, ErrStrategy, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("[i=%v] Unexpected error: %s", i, err)
			continue
		}
		if expected, actual := testCase.strategy, strategy; actual != expected {
			t.Errorf("[i=%v] Expected strategy=%v but actual=%v", i, expected, actual)
		}
		if parsed, _ := ParseStrategy(strategy.String()); parsed != strategy {
			t.Errorf("[i=%v] Expected %v to round trip through String", i, strategy)
		}
	}
}
