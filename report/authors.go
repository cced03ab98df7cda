package report

import (
	"io"
	"sort"

	"github.com/Yuheng-Li/citation/activity"
)

// WriteActiveAuthorsText writes the active author classification report.
func WriteActiveAuthorsText(w io.Writer, analysis *activity.Analysis) error {
	ew := &errWriter{w: w}
	c := analysis.Criteria

	ew.printf("%v\nActive Authors\n%v\n\n", rule, rule)
	ew.printf("Criteria: >= %d first-author papers, or >= %d last-author papers, or >= %d middle-author papers\n", c.MinFirstOrLast, c.MinFirstOrLast, c.MinMiddle)
	if len(c.Conferences) > 0 {
		ew.printf("Conferences: %v\n", c.Conferences)
	}
	ew.printf("\nTotal papers: %d\n", analysis.TotalPapers)
	ew.printf("Papers with authors: %d\n", analysis.PapersWithAuthors)
	ew.printf("Unique authors: %d\n", analysis.UniqueAuthors())
	ew.printf("Active authors: %d (%.1f%%)\n", len(analysis.Active), percent(len(analysis.Active), analysis.UniqueAuthors()))
	ew.printf("  via first or last authorships: %d\n", analysis.FirstOrLastActive())
	ew.printf("  via middle authorships only: %d\n", analysis.MiddleOnlyActive())

	ew.printf("\n%v\n%-8v %-50v %6v %6v %6v %6v\n", rule, "Rank", "Author Name", "Total", "First", "Last", "Middle")
	ew.printf("%v\n", dashes)
	for i, a := range analysis.Active {
		ew.printf("%-8d %-50v %6d %6d %6d %6d\n", i+1, a.Name, a.Total, a.First, a.Last, a.Middle)
	}
	return ew.err
}

// WriteStatisticsText writes the author frequency report.
func WriteStatisticsText(w io.Writer, stats *activity.Stats) error {
	ew := &errWriter{w: w}
	unique := stats.UniqueAuthors()

	ew.printf("%v\nConference Paper Author Statistics\n%v\n\n", rule, rule)
	ew.printf("Total papers: %d\n", stats.TotalPapers)
	ew.printf("Total author entries: %d\n", stats.TotalEntries)
	ew.printf("Unique authors: %d\n", unique)
	ew.printf("Authors with only 1 paper: %d (%.1f%%)\n", stats.WithPapers(1), percent(stats.WithPapers(1), unique))
	ew.printf("Authors with only 2 papers: %d (%.1f%%)\n", stats.WithPapers(2), percent(stats.WithPapers(2), unique))
	ew.printf("Average papers per author: %.2f\n", stats.AveragePapers())

	counts := make([]int, 0, len(stats.Distribution))
	for n := range stats.Distribution {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	ew.printf("\n%v\nPaper Count Distribution\n%v\n\n", rule, rule)
	for _, n := range counts {
		ew.printf("%3d papers: %8d authors\n", n, stats.Distribution[n])
	}

	ew.printf("\n%v\nAll Authors Sorted by Paper Count\n%v\n\n", rule, rule)
	ew.printf("%-8v %-60v %-10v\n", "Rank", "Author Name", "Papers")
	ew.printf("%v\n", dashes)
	for i, a := range stats.Authors {
		ew.printf("%-8d %-60v %-10d\n", i+1, a.Name, a.Papers)
	}
	return ew.err
}

func percent(n int, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
