// Package dataset loads and persists the JSON files the toolkit works on: the
// per-venue conference paper listings and the active authors listing.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Yuheng-Li/citation/cover"
	"github.com/Yuheng-Li/citation/domain"
	"github.com/Yuheng-Li/citation/pkg/unique"
)

var (
	ErrInputMissing = errors.New("required input is missing")

	// LoadConcurrency bounds how many paper files are decoded at once.
	LoadConcurrency = 8
)

// LoadActiveAuthors reads an active authors listing.
func LoadActiveAuthors(path string) ([]*domain.ActiveAuthor, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("active authors file %q: %w", path, ErrInputMissing)
		}
		return nil, err
	}
	defer f.Close()

	authors := []*domain.ActiveAuthor{}
	if err := json.NewDecoder(f).Decode(&authors); err != nil {
		return nil, fmt.Errorf("decoding active authors file %q: %s", path, err)
	}
	return authors, nil
}

// PaperFiles lists the *.json files of a conference papers directory in
// sorted order.
func PaperFiles(dir string) ([]string, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("papers directory %q: %w", dir, ErrInputMissing)
		}
		return nil, err
	}
	files := []string{}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			continue
		}
		files = append(files, info.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JSON files in papers directory %q: %w", dir, ErrInputMissing)
	}
	sort.Strings(files)
	return files, nil
}

// LoadConferencePapers reads every paper listing in dir.  Files are decoded
// concurrently but the result keeps sorted file order, and every paper is
// tagged with the name of the file it came from.  Files which fail to decode
// are skipped with a warning.
func LoadConferencePapers(ctx context.Context, dir string) ([]*domain.Paper, error) {
	files, err := PaperFiles(dir)
	if err != nil {
		return nil, err
	}

	var (
		perFile = make([][]*domain.Paper, len(files))
		g, gctx = errgroup.WithContext(ctx)
		sem     = make(chan struct{}, concurrency())
	)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			papers, err := readPapersFile(filepath.Join(dir, name))
			if err != nil {
				log.WithField("file", name).Warnf("Skipping unreadable papers file: %s", err)
				return nil
			}
			for _, paper := range papers {
				paper.SourceFile = name
			}
			perFile[i] = papers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := []*domain.Paper{}
	for _, papers := range perFile {
		all = append(all, papers...)
	}
	log.WithField("files", len(files)).WithField("papers", len(all)).Debug("Loaded conference papers")
	return all, nil
}

func concurrency() int {
	if LoadConcurrency < 1 {
		return 1
	}
	return LoadConcurrency
}

func readPapersFile(path string) ([]*domain.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPapers(f)
}

// ReadPapers decodes a JSON array of papers.  Null entries are dropped.
func ReadPapers(r io.Reader) ([]*domain.Paper, error) {
	var papers []*domain.Paper
	if err := json.NewDecoder(r).Decode(&papers); err != nil {
		return nil, err
	}
	out := papers[:0]
	for _, paper := range papers {
		if paper != nil {
			out = append(out, paper)
		}
	}
	return out, nil
}

// Universe builds the set of active author names.
func Universe(authors []*domain.ActiveAuthor) cover.Set {
	universe := cover.NewSet()
	for _, a := range authors {
		universe.Add(a.Name)
	}
	return universe
}

// NameResolver maps a raw byline name onto a universe identity.
type NameResolver interface {
	Resolve(raw string) (string, bool)
}

// Candidate wraps a paper with the universe identities it covers.
type Candidate struct {
	Paper      *domain.Paper
	Identities []string
}

func (c *Candidate) Covers() []string { return c.Identities }

// Relevant keeps the papers whose cleaned byline intersects the universe, in
// input order.  With a resolver, names absent from the universe are mapped
// through it first.
func Relevant(universe cover.Set, papers []*domain.Paper, resolver NameResolver) []*Candidate {
	relevant := []*Candidate{}
	for _, paper := range papers {
		ids := []string{}
		for _, name := range unique.Names(paper.Authors) {
			if !universe.Contains(name) && resolver != nil {
				if resolved, ok := resolver.Resolve(name); ok {
					name = resolved
				}
			}
			if universe.Contains(name) {
				ids = append(ids, name)
			}
		}
		if ids = unique.Strings(ids); len(ids) > 0 {
			relevant = append(relevant, &Candidate{Paper: paper, Identities: ids})
		}
	}
	return relevant
}

// Items adapts candidates to the selector's item interface.
func Items(candidates []*Candidate) []cover.Item {
	items := make([]cover.Item, len(candidates))
	for i, c := range candidates {
		items[i] = c
	}
	return items
}

// WritePapers stores papers as an indented JSON array.
func WritePapers(path string, papers []*domain.Paper) error {
	if papers == nil {
		papers = []*domain.Paper{}
	}
	return writeJSON(path, papers)
}

// WriteActiveAuthors stores an active authors listing.
func WriteActiveAuthors(path string, authors []*domain.ActiveAuthor) error {
	if authors == nil {
		authors = []*domain.ActiveAuthor{}
	}
	return writeJSON(path, authors)
}

func writeJSON(path string, v interface{}) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, os.FileMode(int(0755))); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err = enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %q: %s", path, err)
	}
	return nil
}
