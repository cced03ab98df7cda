package cover

// Progress describes the selection state right after a pick.
type Progress struct {
	Iteration  int  // 1-based pick number.
	Pick       Pick // The pick just made.
	Covered    int  // Universe members covered so far.
	Total      int  // Universe size.
	Candidates int  // Candidates still in the pool.

	// PastThreshold is advisory: coverage has reached the selector's
	// AdvisoryThreshold.  Selection continues regardless.
	PastThreshold bool
}

// Percent returns the covered share of the universe as a percentage.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Covered) / float64(p.Total) * 100
}

// Observer receives progress notifications.  Observers must not retain or
// modify the picked item's covered identities.
type Observer interface {
	Picked(p Progress)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(p Progress)

func (fn ObserverFunc) Picked(p Progress) { fn(p) }

// MultiObserver fans notifications out to several observers in order.
type MultiObserver []Observer

func (mo MultiObserver) Picked(p Progress) {
	for _, o := range mo {
		if o != nil {
			o.Picked(p)
		}
	}
}
