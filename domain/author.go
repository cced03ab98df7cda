package domain

// Authorship tracks how often an author appears in each byline position.
type Authorship struct {
	Total  int `json:"total_papers"`
	First  int `json:"first_author"`
	Last   int `json:"last_author"`
	Middle int `json:"middle_author"`
}

// Record counts one appearance at position idx of a byline with n authors.
// A single-author paper counts as a first authorship.
func (a *Authorship) Record(idx int, n int) {
	a.Total++
	switch {
	case idx == 0:
		a.First++
	case idx == n-1 && n > 1:
		a.Last++
	default:
		a.Middle++
	}
}

// ActiveAuthor is an entry of the active authors listing, the universe the
// minimal paper set has to cover.
type ActiveAuthor struct {
	Name string `json:"name"`
	Authorship
}

func NewActiveAuthor(name string, authorship Authorship) *ActiveAuthor {
	aa := &ActiveAuthor{
		Name:       name,
		Authorship: authorship,
	}
	return aa
}
