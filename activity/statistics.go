package activity

import (
	"sort"

	"github.com/Yuheng-Li/citation/domain"
)

// AuthorCount pairs an author with the number of bylines they appear in.
type AuthorCount struct {
	Name   string
	Papers int
}

// Stats summarizes author frequencies across a paper collection.
type Stats struct {
	TotalPapers  int
	TotalEntries int           // Author entries across all bylines, repeats included.
	Authors      []AuthorCount // Sorted by paper count desc, then name.
	Distribution map[int]int   // Paper count -> number of authors with that count.
}

func (s *Stats) UniqueAuthors() int { return len(s.Authors) }

// WithPapers returns how many authors appear in exactly n bylines.
func (s *Stats) WithPapers(n int) int { return s.Distribution[n] }

// AveragePapers is the mean number of bylines per unique author.
func (s *Stats) AveragePapers() float64 {
	if len(s.Authors) == 0 {
		return 0
	}
	return float64(s.TotalEntries) / float64(len(s.Authors))
}

// Statistics counts every raw author entry, names taken verbatim.
func Statistics(papers []*domain.Paper) *Stats {
	var (
		counts = map[string]int{}
		stats  = &Stats{
			TotalPapers:  len(papers),
			Distribution: map[int]int{},
		}
	)
	for _, paper := range papers {
		for _, author := range paper.Authors {
			counts[author]++
			stats.TotalEntries++
		}
	}

	stats.Authors = make([]AuthorCount, 0, len(counts))
	for name, n := range counts {
		stats.Authors = append(stats.Authors, AuthorCount{Name: name, Papers: n})
		stats.Distribution[n]++
	}
	sort.Slice(stats.Authors, func(i, j int) bool {
		if stats.Authors[i].Papers != stats.Authors[j].Papers {
			return stats.Authors[i].Papers > stats.Authors[j].Papers
		}
		return stats.Authors[i].Name < stats.Authors[j].Name
	})

	return stats
}
