// Package report renders selection outcomes for humans: plain text reports,
// console tables and spreadsheets.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Yuheng-Li/citation/cover"
	"github.com/Yuheng-Li/citation/dataset"
	"github.com/Yuheng-Li/citation/domain"
	"github.com/Yuheng-Li/citation/pkg/unique"
)

var (
	// MaxListedAuthors caps how many authors are printed per selected paper.
	MaxListedAuthors = 5

	rule    = strings.Repeat("=", 80)
	dashes  = strings.Repeat("-", 80)
	printer = message.NewPrinter(language.English)
)

// Verify recomputes which universe identities the given papers cover from
// their author lists alone, independently of the selector's bookkeeping.
// A nil resolver only counts verbatim (trimmed) names.
func Verify(universe cover.Set, papers []*domain.Paper, resolver dataset.NameResolver) cover.Set {
	covered := cover.NewSet()
	for _, paper := range papers {
		for _, name := range unique.Names(paper.Authors) {
			if !universe.Contains(name) && resolver != nil {
				if resolved, ok := resolver.Resolve(name); ok {
					name = resolved
				}
			}
			if universe.Contains(name) {
				covered.Add(name)
			}
		}
	}
	return covered
}

// Summary holds the headline numbers of a selection run.
type Summary struct {
	TotalPapers int
	Targets     int
	Selected    int
	Covered     int
	Elapsed     time.Duration
}

// CompressionRatio is the selected share of all papers, in percent.
func (s Summary) CompressionRatio() float64 {
	if s.TotalPapers == 0 {
		return 0
	}
	return float64(s.Selected) / float64(s.TotalPapers) * 100
}

// CoveragePercent is the covered share of the targets.  An empty target set
// counts as fully covered.
func (s Summary) CoveragePercent() float64 {
	if s.Targets == 0 {
		return 100
	}
	return float64(s.Covered) / float64(s.Targets) * 100
}

// WriteText writes the summary followed by a numbered listing of the selected
// papers.
func WriteText(w io.Writer, summary Summary, papers []*domain.Paper) error {
	ew := &errWriter{w: w}

	ew.printf("%v\nMinimal Paper Set - Greedy Cover of Active Authors\n%v\n\n", rule, rule)
	ew.printf("Total papers: %d\n", summary.TotalPapers)
	ew.printf("Target authors: %d\n", summary.Targets)
	ew.printf("Selected papers: %d\n", summary.Selected)
	ew.printf("Compression ratio: %.2f%%\n", summary.CompressionRatio())
	ew.printf("Covered authors: %d\n", summary.Covered)
	ew.printf("Coverage: %.2f%%\n", summary.CoveragePercent())
	ew.printf("Elapsed: %v\n", summary.Elapsed.Round(100*time.Millisecond))

	ew.printf("\n%v\nSelected Papers\n%v\n\n", rule, rule)
	for i, paper := range papers {
		venue := paper.Venue
		if venue == "" {
			venue = "N/A"
		}
		ew.printf("%d. %v\n", i+1, paper.Title)
		ew.printf("   Venue: %v\n", venue)
		ew.printf("   Authors (%d): %v\n\n", len(paper.Authors), listAuthors(paper.Authors))
	}
	return ew.err
}

func listAuthors(authors []string) string {
	if len(authors) <= MaxListedAuthors {
		return strings.Join(authors, ", ")
	}
	return fmt.Sprintf("%v ... and %d more", strings.Join(authors[:MaxListedAuthors], ", "), len(authors)-MaxListedAuthors)
}

// errWriter remembers the first write error and turns later writes into
// no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = printer.Fprintf(ew.w, format, args...)
}
