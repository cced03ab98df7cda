// Package proceedings extracts paper listings from conference proceedings
// websites.
package proceedings

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"github.com/Yuheng-Li/citation/domain"
)

// BaseURL is the CVF Open Access site, used to fetch listings and to
// absolutize the relative links they contain.
var BaseURL = "https://openaccess.thecvf.com"

// CVFListingURL returns the all-days listing page of a CVF venue.
func CVFListingURL(base string, conference string, year int) string {
	return fmt.Sprintf("%v/%v%v?day=all", strings.TrimRight(base, "/"), conference, year)
}

// ExtractCVF fetches and parses a CVF venue listing with a default Fetcher.
func ExtractCVF(ctx context.Context, conference string, year int) ([]*domain.Paper, error) {
	return NewFetcher().CVF(ctx, conference, year)
}

// CVF fetches and parses a CVF venue listing.
func (f *Fetcher) CVF(ctx context.Context, conference string, year int) ([]*domain.Paper, error) {
	u := CVFListingURL(f.BaseURL, conference, year)
	body, err := f.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	papers, err := ParseCVF(body, conference, year)
	if err != nil {
		return nil, fmt.Errorf("parsing %v: %s", u, err)
	}
	log.WithField("conference", conference).WithField("year", year).WithField("papers", len(papers)).Info("Extracted CVF listing")
	return papers, nil
}

// ParseCVF reads a CVF Open Access listing page.  Every paper is a <dt> whose
// first link carries the title, followed by a <dd> holding one author search
// form per author and the "pdf" link.  Entries without a title link are
// skipped.
func ParseCVF(r io.Reader, conference string, year int) ([]*domain.Paper, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	titles := doc.Find("dt.ptitle")
	if titles.Length() == 0 {
		titles = doc.Find("dt")
	}

	var (
		venue  = fmt.Sprintf("%v %v", conference, year)
		papers = []*domain.Paper{}
	)
	titles.Each(func(_ int, dt *goquery.Selection) {
		link := dt.Find("a").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		paper := &domain.Paper{
			Title:   collapse(link.Text()),
			Authors: []string{},
			Venue:   venue,
			Year:    year,
			URL:     absolute(href),
		}

		dd := dt.NextAllFiltered("dd").First()
		dd.Find("form.authsearch input[name=query_author]").Each(func(_ int, input *goquery.Selection) {
			if name := strings.TrimSpace(input.AttrOr("value", "")); name != "" {
				paper.Authors = append(paper.Authors, name)
			}
		})
		dd.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.Contains(strings.ToLower(a.Text()), "pdf") {
				paper.PDFURL = absolute(a.AttrOr("href", ""))
				return false
			}
			return true
		})

		papers = append(papers, paper)
	})
	return papers, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// absolute resolves a site-relative link against BaseURL.
func absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(BaseURL)
	if err != nil {
		return BaseURL + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return BaseURL + href
	}
	return base.ResolveReference(ref).String()
}
