// Package activity classifies authors by how they appear in paper bylines.
//
// An author is considered active in the field when they hold at least
// MinFirstOrLast first authorships, or at least MinFirstOrLast last
// authorships, or at least MinMiddle middle authorships.
package activity

import (
	"sort"
	"strings"

	"github.com/Yuheng-Li/citation/domain"
)

var (
	DefaultMinFirstOrLast = 2
	DefaultMinMiddle      = 4
)

// Criteria configures the activity classification.
type Criteria struct {
	MinFirstOrLast int
	MinMiddle      int

	// Conferences optionally restricts the analysis to papers whose source
	// file name starts with one of these (case-insensitive) prefixes.
	Conferences []string
}

func NewCriteria() *Criteria {
	c := &Criteria{
		MinFirstOrLast: DefaultMinFirstOrLast,
		MinMiddle:      DefaultMinMiddle,
	}
	return c
}

// IsActive reports whether the authorship counts satisfy the criteria.
func (c *Criteria) IsActive(a domain.Authorship) bool {
	return a.First >= c.MinFirstOrLast || a.Last >= c.MinFirstOrLast || a.Middle >= c.MinMiddle
}

// Includes reports whether a paper falls within the conference filter.
func (c *Criteria) Includes(paper *domain.Paper) bool {
	if len(c.Conferences) == 0 {
		return true
	}
	src := strings.ToLower(paper.SourceFile)
	for _, conf := range c.Conferences {
		if strings.HasPrefix(src, strings.ToLower(conf)) {
			return true
		}
	}
	return false
}

// Analysis is the outcome of classifying every author in a paper collection.
type Analysis struct {
	Criteria          Criteria
	TotalPapers       int
	PapersWithAuthors int
	Active            []*domain.ActiveAuthor // Sorted by total papers desc, then name.
	Inactive          []*domain.ActiveAuthor // Same ordering as Active.
}

// UniqueAuthors returns the number of distinct author names seen.
func (a *Analysis) UniqueAuthors() int {
	return len(a.Active) + len(a.Inactive)
}

// FirstOrLastActive counts active authors qualifying through first or last
// authorships.
func (a *Analysis) FirstOrLastActive() int {
	n := 0
	for _, aa := range a.Active {
		if aa.First >= a.Criteria.MinFirstOrLast || aa.Last >= a.Criteria.MinFirstOrLast {
			n++
		}
	}
	return n
}

// MiddleOnlyActive counts active authors qualifying only through middle
// authorships.
func (a *Analysis) MiddleOnlyActive() int {
	return len(a.Active) - a.FirstOrLastActive()
}

// Analyze tallies byline positions per author and splits authors into active
// and inactive.  Blank names are skipped, other names are only trimmed.
func Analyze(papers []*domain.Paper, criteria *Criteria) *Analysis {
	if criteria == nil {
		criteria = NewCriteria()
	}

	var (
		stats    = map[string]*domain.Authorship{}
		analysis = &Analysis{
			Criteria: *criteria,
		}
	)

	for _, paper := range papers {
		if !criteria.Includes(paper) {
			continue
		}
		analysis.TotalPapers++
		if len(paper.Authors) == 0 {
			continue
		}
		analysis.PapersWithAuthors++

		n := len(paper.Authors)
		for idx, author := range paper.Authors {
			name := strings.TrimSpace(author)
			if name == "" {
				continue
			}
			a, ok := stats[name]
			if !ok {
				a = &domain.Authorship{}
				stats[name] = a
			}
			a.Record(idx, n)
		}
	}

	for name, a := range stats {
		aa := domain.NewActiveAuthor(name, *a)
		if criteria.IsActive(*a) {
			analysis.Active = append(analysis.Active, aa)
		} else {
			analysis.Inactive = append(analysis.Inactive, aa)
		}
	}
	sortByTotal(analysis.Active)
	sortByTotal(analysis.Inactive)

	return analysis
}

func sortByTotal(authors []*domain.ActiveAuthor) {
	sort.Slice(authors, func(i, j int) bool {
		if authors[i].Total != authors[j].Total {
			return authors[i].Total > authors[j].Total
		}
		return authors[i].Name < authors[j].Name
	})
}
