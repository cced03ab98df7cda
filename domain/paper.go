package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// knownPaperFields are the JSON keys mapped onto Paper struct fields.
var knownPaperFields = []string{
	"title",
	"authors",
	"venue",
	"year",
	"url",
	"pdf_url",
	"source_file",
}

// scratchPaperFields are bookkeeping keys older tooling left in paper records.
// They are dropped on load and never written back.
var scratchPaperFields = []string{
	"target_authors",
}

// Paper is a single proceedings entry.  Fields not modelled here are kept in
// Extra and written back untouched.
type Paper struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Venue      string   `json:"venue,omitempty"`
	Year       int      `json:"year,omitempty"`
	URL        string   `json:"url,omitempty"`
	PDFURL     string   `json:"pdf_url,omitempty"`
	SourceFile string   `json:"source_file,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// paperFields mirrors Paper without its methods so the default encoder can be
// used from within the custom (un)marshallers.
type paperFields Paper

func NewPaper(title string, authors ...string) *Paper {
	paper := &Paper{
		Title:   title,
		Authors: authors,
	}
	return paper
}

// Covers returns the paper's author names, which are the identities the
// paper covers.
func (paper *Paper) Covers() []string {
	return paper.Authors
}

func (paper *Paper) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	year, yearOK := raw["year"]
	delete(raw, "year")

	stripped, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	fields := paperFields{}
	if err := json.Unmarshal(stripped, &fields); err != nil {
		return err
	}
	*paper = Paper(fields)

	for _, key := range knownPaperFields {
		delete(raw, key)
	}
	for _, key := range scratchPaperFields {
		delete(raw, key)
	}

	if yearOK {
		if y, ok := parseYear(year); ok {
			paper.Year = y
		} else {
			// Keep unparseable years as-is rather than losing them.
			raw["year"] = year
		}
	}

	if len(raw) > 0 {
		paper.Extra = raw
	}
	return nil
}

func (paper Paper) MarshalJSON() ([]byte, error) {
	bs, err := marshal(paperFields(paper))
	if err != nil {
		return nil, err
	}
	if len(paper.Extra) == 0 {
		return bs, nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(bs, &merged); err != nil {
		return nil, err
	}
	for key, value := range paper.Extra {
		if _, ok := merged[key]; ok {
			continue
		}
		merged[key] = value
	}
	return marshal(merged)
}

// marshal is json.Marshal without HTML escaping, titles routinely carry "&".
func marshal(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// parseYear accepts both numeric and quoted-numeric year values.
func parseYear(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, true
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		if s == "" {
			return 0, true
		}
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return y, true
	}
	y, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false
	}
	return y, true
}
