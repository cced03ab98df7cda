package dataset

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Yuheng-Li/citation/cover"
	"github.com/Yuheng-Li/citation/domain"
	"github.com/Yuheng-Li/citation/namematch"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "citation-dataset")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func writeFile(t *testing.T, path string, content string) {
	if err := ioutil.WriteFile(path, []byte(content), os.FileMode(int(0600))); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConferencePapers(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, filepath.Join(dir, "iccv_2023.json"), `[{"title":"C","authors":["Carol"]}]`)
	writeFile(t, filepath.Join(dir, "cvpr_2024.json"), `[{"title":"A","authors":["Alice"]},null,{"title":"B","authors":["Bob"]}]`)
	writeFile(t, filepath.Join(dir, "broken.json"), `[{"title":`)
	writeFile(t, filepath.Join(dir, "notes.txt"), `ignored`)
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0700); err != nil {
		t.Fatal(err)
	}

	LoadConcurrency = 2
	defer func() { LoadConcurrency = 8 }()

	papers, err := LoadConferencePapers(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	titles := []string{}
	sources := []string{}
	for _, p := range papers {
		titles = append(titles, p.Title)
		sources = append(sources, p.SourceFile)
	}
	if expected, actual := []string{"A", "B", "C"}, titles; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected titles=%v but actual=%v", expected, actual)
	}
	if expected, actual := []string{"cvpr_2024.json", "cvpr_2024.json", "iccv_2023.json"}, sources; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected sources=%v but actual=%v", expected, actual)
	}
}

func TestLoadMissingInputs(t *testing.T) {
	dir := tempDir(t)

	if _, err := LoadActiveAuthors(filepath.Join(dir, "active_authors.json")); !errors.Is(err, ErrInputMissing) {
		t.Errorf("Expected ErrInputMissing for missing authors file but actual=%v", err)
	}
	if _, err := LoadConferencePapers(context.Background(), filepath.Join(dir, "nope")); !errors.Is(err, ErrInputMissing) {
		t.Errorf("Expected ErrInputMissing for missing directory but actual=%v", err)
	}
	if _, err := LoadConferencePapers(context.Background(), dir); !errors.Is(err, ErrInputMissing) {
		t.Errorf("Expected ErrInputMissing for empty directory but actual=%v", err)
	}
}

func TestActiveAuthorsRoundTrip(t *testing.T) {
	var (
		path    = filepath.Join(tempDir(t), "out", "active_authors.json")
		authors = []*domain.ActiveAuthor{
			domain.NewActiveAuthor("Kaiming He", domain.Authorship{Total: 3, First: 2, Middle: 1}),
			domain.NewActiveAuthor("Zoë Müller", domain.Authorship{Total: 4, Last: 4}),
		}
	)
	if err := WriteActiveAuthors(path, authors); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadActiveAuthors(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, authors) {
		t.Errorf("Expected loaded=%+v but actual=%+v", authors, loaded)
	}

	universe := Universe(loaded)
	if expected, actual := []string{"Kaiming He", "Zoë Müller"}, universe.Slice(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected universe=%v but actual=%v", expected, actual)
	}
}

func TestRelevant(t *testing.T) {
	var (
		universe = cover.NewSet("Kaiming He", "Ross Girshick")
		papers   = []*domain.Paper{
			domain.NewPaper("none", "Piotr Dollar"),
			domain.NewPaper("both", " Kaiming He", "Ross Girshick", "Kaiming He "),
			domain.NewPaper("abbrev", "K. He", "Piotr Dollar"),
			domain.NewPaper("empty"),
		}
	)

	plain := Relevant(universe, papers, nil)
	if expected, actual := 1, len(plain); actual != expected {
		t.Fatalf("Expected %v relevant papers but actual=%v", expected, actual)
	}
	if expected, actual := []string{"Kaiming He", "Ross Girshick"}, plain[0].Covers(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected identities=%v but actual=%v", expected, actual)
	}

	resolved := Relevant(universe, papers, namematch.NewResolver(universe.Slice()))
	if expected, actual := 2, len(resolved); actual != expected {
		t.Fatalf("Expected %v relevant papers but actual=%v", expected, actual)
	}
	if expected, actual := []string{"Kaiming He"}, resolved[1].Covers(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected identities=%v but actual=%v", expected, actual)
	}
	if expected, actual := "abbrev", resolved[1].Paper.Title; actual != expected {
		t.Errorf("Expected title=%v but actual=%v", expected, actual)
	}
}

func TestWritePapersKeepsPayload(t *testing.T) {
	var (
		dir  = tempDir(t)
		path = filepath.Join(dir, "selection.json")
	)
	writeFile(t, filepath.Join(dir, "in.json"), `[{"title":"A & B","authors":["Alice"],"arxiv_id":"1234.5678","target_authors":["Alice"]}]`)

	f, err := os.Open(filepath.Join(dir, "in.json"))
	if err != nil {
		t.Fatal(err)
	}
	papers, err := ReadPapers(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}

	if err := WritePapers(path, papers); err != nil {
		t.Fatal(err)
	}
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	const expected = `[
  {
    "arxiv_id": "1234.5678",
    "authors": [
      "Alice"
    ],
    "title": "A & B"
  }
]
`
	if actual := string(bs); actual != expected {
		t.Errorf("Expected written JSON=%v but actual=%v", expected, actual)
	}
}
